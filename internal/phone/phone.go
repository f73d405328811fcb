// Package phone maps Hangul jamo to phone labels and transcribes text into
// phone sequences.
package phone

import (
	"slices"
	"strings"
)

// Phone is a single phone label such as "a", "ng" or "sil".
type Phone string

const (
	// Silence marks leading and trailing silence in decoder output.
	Silence Phone = "sil"
	// Pause is the short inter-word pause.
	Pause Phone = "sp"
)

// Sequence is an ordered run of phones. Duplicates are meaningful.
type Sequence []Phone

// String joins the sequence with single spaces.
func (s Sequence) String() string {
	parts := make([]string, len(s))
	for i, p := range s {
		parts[i] = string(p)
	}
	return strings.Join(parts, " ")
}

// Last returns the final phone, or "" for an empty sequence.
func (s Sequence) Last() Phone {
	if len(s) == 0 {
		return ""
	}
	return s[len(s)-1]
}

// ParseSequence splits a space-separated phone string.
func ParseSequence(s string) Sequence {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil
	}
	seq := make(Sequence, len(fields))
	for i, f := range fields {
		seq[i] = Phone(f)
	}
	return seq
}

// IsVowel reports whether p is one of the medial phones.
func IsVowel(p Phone) bool {
	_, ok := vowels[p]
	return ok
}

// Inventory returns the surface phones, plus sil and sp, sorted. Coda
// clusters such as "lg" are left out since the rules always realize them.
func Inventory() []Phone {
	return slices.Clone(inventory)
}

// UnderlyingInventory is Inventory plus the coda clusters the table emits
// before rules run.
func UnderlyingInventory() []Phone {
	return slices.Clone(underlying)
}

// IsCluster reports whether p is an underlying coda cluster.
func IsCluster(p Phone) bool {
	_, ok := clusters[p]
	return ok
}

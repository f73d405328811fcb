package phone

import (
	"fmt"

	"github.com/mgpai22/kalign/internal/hangul"
)

// UnmappedSymbolError records a jamo key with no table entry. It is
// collected for diagnostics and never stops transcription.
type UnmappedSymbolError struct {
	Key string
}

func (e *UnmappedSymbolError) Error() string {
	return fmt.Sprintf("no phone for jamo %q", e.Key)
}

// Stats counts what a Transcriber dropped.
type Stats struct {
	Unmapped int // jamo keys missing from the table
	Skipped  int // characters that are neither syllables nor spaces
}

// LookupFunc resolves a jamo key to a phone.
type LookupFunc func(key string) (Phone, bool)

// Transcriber converts text to phones and keeps running stats. It is not
// safe for concurrent use; create one per goroutine.
type Transcriber struct {
	lookup   LookupFunc
	stats    Stats
	unmapped []error
}

// NewTranscriber returns a Transcriber backed by the built-in table.
func NewTranscriber() *Transcriber {
	return &Transcriber{lookup: Lookup}
}

// NewTranscriberWithLookup uses fn instead of the built-in table.
func NewTranscriberWithLookup(fn LookupFunc) *Transcriber {
	return &Transcriber{lookup: fn}
}

// Transcribe returns the underlying phone sequence of text. A literal space
// emits sp unless the sequence is empty or already ends in sp; other
// non-syllable characters are skipped.
func (t *Transcriber) Transcribe(text string) Sequence {
	var seq Sequence
	for _, r := range text {
		if r == ' ' {
			if len(seq) > 0 && seq.Last() != Pause {
				seq = append(seq, Pause)
			}
			continue
		}

		syl, ok := hangul.Decompose(r)
		if !ok {
			t.stats.Skipped++
			continue
		}

		initial, medial, final := syl.Symbols()
		seq = t.emit(seq, initial)
		seq = t.emit(seq, medial)
		if syl.HasFinal() {
			seq = t.emit(seq, FinalKey(final))
		}
	}
	return seq
}

func (t *Transcriber) emit(seq Sequence, key string) Sequence {
	p, ok := t.lookup(key)
	if !ok {
		t.stats.Unmapped++
		t.unmapped = append(t.unmapped, &UnmappedSymbolError{Key: key})
		return seq
	}
	if p == "" {
		return seq
	}
	return append(seq, p)
}

// Stats returns the counts accumulated so far.
func (t *Transcriber) Stats() Stats {
	return t.stats
}

// Unmapped returns one *UnmappedSymbolError per miss, in order.
func (t *Transcriber) Unmapped() []error {
	return t.unmapped
}

// Transcribe converts text using a fresh Transcriber.
func Transcribe(text string) Sequence {
	return NewTranscriber().Transcribe(text)
}

// Package hangul decomposes precomposed Hangul syllables into their jamo
// slots and derives ASCII word labels from them.
package hangul

const (
	// SyllableBase is U+AC00, the first precomposed syllable (가).
	SyllableBase rune = 0xAC00
	// SyllableLast is U+D7A3, the last precomposed syllable (힣).
	SyllableLast rune = 0xD7A3

	NumInitials = 19
	NumMedials  = 21
	NumFinals   = 28

	medialStride  = NumFinals                // 28
	initialStride = NumMedials * medialStride // 588
)

// Syllable holds the jamo indices of one precomposed syllable. Final is 0
// when the syllable has no coda.
type Syllable struct {
	Initial int
	Medial  int
	Final   int
}

// HasFinal reports whether the syllable carries a coda.
func (s Syllable) HasFinal() bool {
	return s.Final > 0
}

// Symbols returns the compatibility jamo for each slot. The final symbol is
// empty when there is no coda.
func (s Syllable) Symbols() (initial, medial, final string) {
	return Initials[s.Initial], Medials[s.Medial], Finals[s.Final]
}

// IsSyllable reports whether r lies in the precomposed syllable block.
func IsSyllable(r rune) bool {
	return r >= SyllableBase && r <= SyllableLast
}

// Decompose splits r into jamo indices. ok is false for anything outside the
// syllable block; callers treat those runes as pass-through or boundaries.
func Decompose(r rune) (Syllable, bool) {
	if !IsSyllable(r) {
		return Syllable{}, false
	}
	code := int(r - SyllableBase)
	return Syllable{
		Initial: code / initialStride,
		Medial:  (code % initialStride) / medialStride,
		Final:   code % medialStride,
	}, true
}

// Compose is the inverse of Decompose. ok is false when an index is out of
// range.
func Compose(s Syllable) (rune, bool) {
	if s.Initial < 0 || s.Initial >= NumInitials ||
		s.Medial < 0 || s.Medial >= NumMedials ||
		s.Final < 0 || s.Final >= NumFinals {
		return 0, false
	}
	return SyllableBase + rune(s.Initial*initialStride+s.Medial*medialStride+s.Final), true
}

// ContainsHangul reports whether text holds at least one precomposed syllable.
func ContainsHangul(text string) bool {
	for _, r := range text {
		if IsSyllable(r) {
			return true
		}
	}
	return false
}

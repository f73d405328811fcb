package hangul

import (
	"strings"
	"unicode"
)

// SyllableName returns the suffix of the Unicode character name of r, so
// 가 yields "GA" and 닭 yields "DALG". ok is false outside the syllable block.
func SyllableName(r rune) (string, bool) {
	s, ok := Decompose(r)
	if !ok {
		return "", false
	}
	return initialNames[s.Initial] + medialNames[s.Medial] + finalNames[s.Final], true
}

// Romanize turns a word into an ASCII label usable as a decoder dictionary
// key. Syllables become their character-name suffixes, ASCII digits are kept
// and everything else is dropped. The result may be empty.
func Romanize(word string) string {
	var b strings.Builder
	for _, r := range word {
		if name, ok := SyllableName(r); ok {
			b.WriteString(name)
			continue
		}
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// RomanizeLine romanizes each whitespace-separated word and drops words that
// produce an empty label.
func RomanizeLine(line string) []string {
	var out []string
	for _, w := range strings.Fields(line) {
		if label := Romanize(w); label != "" {
			out = append(out, label)
		}
	}
	return out
}

// Clean strips punctuation and symbols from a transcript word, keeping
// letters, digits and marks.
func Clean(word string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) {
			return r
		}
		return -1
	}, word)
}

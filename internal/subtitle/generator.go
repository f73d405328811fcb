package subtitle

import (
	"slices"
	"strings"
	"time"
	"unicode/utf8"
)

// DefaultGenerator groups aligned words into cues.
type DefaultGenerator struct {
	MaxCharsPerLine int
	MaxLinesPerSub  int
	MaxDuration     time.Duration
	// a silence at least this long between words starts a new cue
	MaxGap time.Duration
	// one cue per word
	PerWord bool
}

func NewDefaultGenerator() *DefaultGenerator {
	return &DefaultGenerator{
		MaxCharsPerLine: 42, // Standard subtitle line length
		MaxLinesPerSub:  2,  // Most players support 2 lines
		MaxDuration:     7 * time.Second,
		MaxGap:          500 * time.Millisecond,
	}
}

// NewWordGenerator emits every word as its own cue.
func NewWordGenerator() *DefaultGenerator {
	g := NewDefaultGenerator()
	g.PerWord = true
	return g
}

// converts aligned words to subtitle cues
func (g *DefaultGenerator) Generate(segments []Segment) (*Subtitle, error) {
	var entries []Entry
	var words []Segment

	flush := func() {
		if len(words) == 0 {
			return
		}
		texts := make([]string, len(words))
		for i, w := range words {
			texts[i] = w.Text
		}
		entries = append(entries, Entry{
			Index:     len(entries) + 1,
			StartTime: words[0].StartTime,
			EndTime:   words[len(words)-1].EndTime,
			Text:      g.formatText(strings.Join(texts, " ")),
			Words:     slices.Clone(words),
		})
		words = words[:0]
	}

	for _, seg := range segments {
		seg.Text = strings.TrimSpace(seg.Text)
		if seg.Text == "" {
			continue
		}
		if len(words) > 0 && g.breaksBefore(words, seg) {
			flush()
		}
		words = append(words, seg)
	}
	flush()

	if entries == nil {
		entries = []Entry{}
	}
	return &Subtitle{
		Entries: entries,
		Format:  string(FormatSRT),
	}, nil
}

func (g *DefaultGenerator) breaksBefore(words []Segment, next Segment) bool {
	if g.PerWord {
		return true
	}
	last := words[len(words)-1]
	if g.MaxGap > 0 && next.StartTime-last.EndTime >= g.MaxGap {
		return true
	}
	if g.MaxDuration > 0 && next.EndTime-words[0].StartTime > g.MaxDuration {
		return true
	}

	chars := utf8.RuneCountInString(next.Text)
	for _, w := range words {
		chars += utf8.RuneCountInString(w.Text) + 1
	}
	return chars > g.MaxCharsPerLine*g.MaxLinesPerSub
}

// formatText formats text for display with line wrapping
func (g *DefaultGenerator) formatText(text string) string {
	text = strings.TrimSpace(text)
	runeCount := utf8.RuneCountInString(text)

	// if text fits on one line, return as is
	if g.MaxCharsPerLine <= 0 || runeCount <= g.MaxCharsPerLine {
		return text
	}

	words := strings.Fields(text)
	if len(words) < 2 {
		return text
	}

	// find the best split point (closest to middle)
	middle := runeCount / 2
	bestSplit := 0
	bestDiff := runeCount

	currentLen := 0
	for i, word := range words[:len(words)-1] {
		currentLen += utf8.RuneCountInString(word)
		if i > 0 {
			currentLen++ // space
		}

		diff := abs(currentLen - middle)
		if diff < bestDiff {
			bestDiff = diff
			bestSplit = i + 1
		}
	}

	line1 := strings.Join(words[:bestSplit], " ")
	line2 := strings.Join(words[bestSplit:], " ")
	return line1 + "\n" + line2
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

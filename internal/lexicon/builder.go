package lexicon

import (
	"strings"

	"github.com/mgpai22/kalign/internal/hangul"
	"github.com/mgpai22/kalign/internal/phone"
	"github.com/mgpai22/kalign/internal/rules"
)

// Options control dictionary generation.
type Options struct {
	// AppendPause adds a trailing sp to every generated entry.
	AppendPause bool
	// Romanize files entries under their ASCII syllable-name label instead
	// of the Hangul word.
	Romanize bool
	// IncludeSilence adds the "sil sil" and "sp sp" definitions.
	IncludeSilence bool
}

// Skipped is a word left out of a built dictionary.
type Skipped struct {
	Word   string
	Reason string
}

func (s Skipped) String() string {
	return s.Word + ": " + s.Reason
}

const (
	ReasonEmptyPronunciation = "empty pronunciation"
	ReasonEmptyLabel         = "no usable label"
)

// Builder turns words into dictionary entries.
type Builder struct {
	opts   Options
	engine *rules.Engine
	stats  phone.Stats
}

// NewBuilder creates a Builder using the default rule engine.
func NewBuilder(opts Options) *Builder {
	return &Builder{opts: opts, engine: rules.Default()}
}

// WithEngine swaps the rule engine.
func (b *Builder) WithEngine(e *rules.Engine) *Builder {
	b.engine = e
	return b
}

// Label returns the dictionary key Build would use for word.
func (b *Builder) Label(word string) string {
	if b.opts.Romanize {
		return hangul.Romanize(word)
	}
	return word
}

// Pronounce returns the surface phones of a single word, lowercased.
func (b *Builder) Pronounce(word string) phone.Sequence {
	t := phone.NewTranscriber()
	seq := b.engine.ApplySequence(t.Transcribe(word))
	st := t.Stats()
	b.stats.Unmapped += st.Unmapped
	b.stats.Skipped += st.Skipped

	for i, p := range seq {
		seq[i] = phone.Phone(strings.ToLower(string(p)))
	}
	return seq
}

// Build creates a dictionary from words. Each distinct word is transcribed
// once; words whose pronunciation or label comes out empty are returned as
// Skipped instead of being written.
func (b *Builder) Build(words []string) (*Dictionary, []Skipped) {
	seen := make(map[string]struct{}, len(words))
	var entries []Entry
	var skipped []Skipped

	if b.opts.IncludeSilence {
		entries = append(entries,
			Entry{Word: string(phone.Silence), Label: string(phone.Silence), Phones: phone.Sequence{phone.Silence}},
			Entry{Word: string(phone.Pause), Label: string(phone.Pause), Phones: phone.Sequence{phone.Pause}},
		)
	}

	for _, w := range words {
		if w == "" {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}

		seq := b.Pronounce(w)
		if len(seq) == 0 {
			skipped = append(skipped, Skipped{Word: w, Reason: ReasonEmptyPronunciation})
			continue
		}
		label := b.Label(w)
		if label == "" {
			skipped = append(skipped, Skipped{Word: w, Reason: ReasonEmptyLabel})
			continue
		}
		if b.opts.AppendPause {
			seq = append(seq, phone.Pause)
		}
		entries = append(entries, Entry{Word: w, Label: label, Phones: seq})
	}

	return NewDictionary(entries...), skipped
}

// Stats returns transcription counts accumulated across Build calls.
func (b *Builder) Stats() phone.Stats {
	return b.stats
}

// Words splits text into distinct transcript words in first-seen order,
// stripping punctuation.
func Words(text string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, f := range strings.Fields(text) {
		w := hangul.Clean(f)
		if w == "" {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

package alignment

import (
	"bufio"
	"io"
	"regexp"
	"strings"

	"github.com/mgpai22/kalign/internal/hangul"
)

// Vocabulary reports whether the decoder dictionary knows a label.
type Vocabulary interface {
	Has(label string) bool
}

// LabelOptions shape the word list handed to the decoder.
type LabelOptions struct {
	// Surround is a comma-separated list of tokens placed at both ends,
	// usually "sil".
	Surround string
	// Between is inserted after every word except the last.
	Between string
	// Romanize converts Hangul words to their ASCII syllable-name labels.
	Romanize bool
}

// Transcript is a transcript prepared for alignment.
type Transcript struct {
	Words []string
	// Skipped lists words missing from the vocabulary, in order.
	Skipped []string
	// Originals maps a label back to the transcript word it came from.
	Originals map[string]string
}

var (
	noiseMarkers = strings.NewReplacer(
		"{breath}", "{BR}",
		"&lt;noise&gt;", "{NS}",
		"{laughter}", "{LG}",
		"{laugh}", "{LG}",
		"{cough}", "{CG}",
		"{lipsmack}", "{LS}",
	)
	noiseToken = regexp.MustCompile(`^\{[A-Z]+\}$`)
	hyphenated = regexp.MustCompile(`([A-Za-z]+)-([A-Za-z]+)`)
)

// PrepareWords turns transcript text into decoder labels. Words are cleaned
// the same way lexicon.Words cleans them, so every word a generated
// dictionary holds finds its entry. Non-Hangul words are also tried in upper
// case, the form model dictionaries use. Words the vocabulary does not know
// are skipped and reported.
func PrepareWords(text string, vocab Vocabulary, opts LabelOptions) Transcript {
	tr := Transcript{Originals: make(map[string]string)}
	surround := splitTokens(opts.Surround)
	tr.Words = append(tr.Words, surround...)

	for _, line := range strings.Split(text, "\n") {
		line = noiseMarkers.Replace(line)
		line = hyphenated.ReplaceAllString(line, "$1 $2")

		for _, f := range strings.Fields(line) {
			w := f
			if !noiseToken.MatchString(f) {
				if w = hangul.Clean(f); w == "" {
					continue
				}
			}

			label, ok := lookupLabel(w, vocab, opts.Romanize)
			if !ok {
				tr.Skipped = append(tr.Skipped, w)
				continue
			}
			if _, seen := tr.Originals[label]; !seen {
				tr.Originals[label] = w
			}
			tr.Words = append(tr.Words, label)
			if opts.Between != "" {
				tr.Words = append(tr.Words, opts.Between)
			}
		}
	}

	if opts.Between != "" && len(tr.Words) > len(surround) &&
		tr.Words[len(tr.Words)-1] == opts.Between {
		tr.Words = tr.Words[:len(tr.Words)-1]
	}
	tr.Words = append(tr.Words, surround...)
	return tr
}

func lookupLabel(w string, vocab Vocabulary, romanize bool) (string, bool) {
	if hangul.ContainsHangul(w) {
		label := w
		if romanize {
			label = hangul.Romanize(w)
		}
		return label, label != "" && vocab.Has(label)
	}
	if vocab.Has(w) {
		return w, true
	}
	if upper := strings.ToUpper(w); vocab.Has(upper) {
		return upper, true
	}
	return "", false
}

func splitTokens(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// WriteLabels writes words as a single-utterance master label file.
func WriteLabels(w io.Writer, words []string) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("#!MLF!#\n")
	bw.WriteString("\"*/tmp.lab\"\n")
	for _, word := range words {
		bw.WriteString(word + "\n")
	}
	bw.WriteString(".\n")
	return bw.Flush()
}

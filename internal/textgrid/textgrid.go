// Package textgrid renders word spans as two-tier Praat TextGrid documents
// in the short text format.
package textgrid

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/mgpai22/kalign/internal/alignment"
)

var (
	ErrNoPhones = errors.New("alignment has no phone segments")
	ErrNoWords  = errors.New("alignment has no words")
)

const (
	DefaultPhoneTier = "phone"
	DefaultWordTier  = "word"
)

// Interval is one labeled stretch of a tier.
type Interval struct {
	Start float64
	End   float64
	Label string
}

// Tier is an ordered run of intervals.
type Tier struct {
	Name      string
	Intervals []Interval
}

// Grid is a TextGrid with its overall extent.
type Grid struct {
	XMin  float64
	XMax  float64
	Tiers []Tier
}

// Options names the tiers.
type Options struct {
	PhoneTier string
	WordTier  string
}

func (o Options) withDefaults() Options {
	if o.PhoneTier == "" {
		o.PhoneTier = DefaultPhoneTier
	}
	if o.WordTier == "" {
		o.WordTier = DefaultWordTier
	}
	return o
}

// Build lays spans out as a phone tier and a word tier. Every segment goes
// on the phone tier. Pause spans and spans without segments are left off the
// word tier; the first word starts with the first phone, each word runs until
// the next word starts and the last word ends with the last phone.
func Build(spans []alignment.WordSpan, opts Options) (*Grid, error) {
	opts = opts.withDefaults()

	var phones []Interval
	for _, s := range spans {
		for _, seg := range s.Segments {
			phones = append(phones, Interval{Start: seg.Start, End: seg.End, Label: string(seg.Phone)})
		}
	}
	if len(phones) == 0 {
		return nil, ErrNoPhones
	}

	var words []alignment.WordSpan
	for _, s := range spans {
		if len(s.Segments) == 0 || s.IsPause() {
			continue
		}
		words = append(words, s)
	}
	if len(words) == 0 {
		return nil, ErrNoWords
	}

	xmin := phones[0].Start
	xmax := phones[len(phones)-1].End

	wordTier := make([]Interval, len(words))
	for i, w := range words {
		start, end := w.Start(), xmax
		if i == 0 {
			start = xmin
		}
		if i+1 < len(words) {
			end = words[i+1].Start()
		}
		wordTier[i] = Interval{Start: start, End: end, Label: w.Label}
	}

	return &Grid{
		XMin: xmin,
		XMax: xmax,
		Tiers: []Tier{
			{Name: opts.PhoneTier, Intervals: phones},
			{Name: opts.WordTier, Intervals: wordTier},
		},
	}, nil
}

// Encode writes g in the short ooTextFile layout.
func (g *Grid) Encode(w io.Writer) error {
	bw := bufio.NewWriter(w)
	line := func(s string) {
		bw.WriteString(s)
		bw.WriteByte('\n')
	}

	line(`File type = "ooTextFile short"`)
	line(`"TextGrid"`)
	line("")
	line(FormatSeconds(g.XMin))
	line(FormatSeconds(g.XMax))
	line("<exists>")
	line(strconv.Itoa(len(g.Tiers)))
	for _, t := range g.Tiers {
		line(`"IntervalTier"`)
		line(quote(t.Name))
		line(FormatSeconds(g.XMin))
		line(FormatSeconds(g.XMax))
		line(strconv.Itoa(len(t.Intervals)))
		for _, iv := range t.Intervals {
			line(FormatSeconds(iv.Start))
			line(FormatSeconds(iv.End))
			line(quote(iv.Label))
		}
	}
	return bw.Flush()
}

// Write builds and encodes spans.
func Write(w io.Writer, spans []alignment.WordSpan, opts Options) error {
	g, err := Build(spans, opts)
	if err != nil {
		return err
	}
	return g.Encode(w)
}

// WriteFile writes spans to path.
func WriteFile(path string, spans []alignment.WordSpan, opts Options) error {
	g, err := Build(spans, opts)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create TextGrid file: %w", err)
	}
	if err := g.Encode(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write TextGrid: %w", err)
	}
	return f.Close()
}

// FormatSeconds renders f with the shortest round-trip digits and a decimal
// point, in exponent form below 1e-4 and from 1e16 up.
func FormatSeconds(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case f == 0:
		if math.Signbit(f) {
			return "-0.0"
		}
		return "0.0"
	}

	abs := math.Abs(f)
	if abs < 1e-4 || abs >= 1e16 {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// quote wraps s in double quotes, doubling embedded quotes as Praat does.
func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Package alignment reads decoder alignment output into word spans and
// writes the label files the decoder takes as input.
package alignment

import "github.com/mgpai22/kalign/internal/phone"

// Segment is one aligned phone with times in seconds.
type Segment struct {
	Phone phone.Phone
	Start float64
	End   float64
}

// Duration returns End - Start.
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// WordSpan groups the segments aligned to one word. Segments are contiguous
// and in time order.
type WordSpan struct {
	Label    string
	Segments []Segment
}

// Start returns the first segment's start, or 0 for an empty span.
func (w WordSpan) Start() float64 {
	if len(w.Segments) == 0 {
		return 0
	}
	return w.Segments[0].Start
}

// End returns the last segment's end, or 0 for an empty span.
func (w WordSpan) End() float64 {
	if len(w.Segments) == 0 {
		return 0
	}
	return w.Segments[len(w.Segments)-1].End
}

// IsPause reports whether the span was split off as a standalone pause.
func (w WordSpan) IsPause() bool {
	return w.Label == string(phone.Pause) &&
		len(w.Segments) == 1 && w.Segments[0].Phone == phone.Pause
}

// ExtractPauses moves a trailing sp segment out of every span into a pause
// span placed directly after it. A word span holding only sp is left empty;
// existing pause spans pass through.
func ExtractPauses(spans []WordSpan) []WordSpan {
	out := make([]WordSpan, 0, len(spans))
	for _, w := range spans {
		n := len(w.Segments)
		if !w.IsPause() && n > 0 && w.Segments[n-1].Phone == phone.Pause {
			sp := w.Segments[n-1]
			w.Segments = w.Segments[:n-1:n-1]
			out = append(out, w, WordSpan{
				Label:    string(phone.Pause),
				Segments: []Segment{sp},
			})
			continue
		}
		out = append(out, w)
	}
	return out
}

// Relabel replaces span labels found in names. Pause spans and labels with no
// mapping keep their label.
func Relabel(spans []WordSpan, names map[string]string) []WordSpan {
	out := make([]WordSpan, len(spans))
	for i, w := range spans {
		if name, ok := names[w.Label]; ok && !w.IsPause() && name != "" {
			w.Label = name
		}
		out[i] = w
	}
	return out
}

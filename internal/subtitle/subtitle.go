// Package subtitle exports aligned words as subtitle cues and reads cue text
// from subtitle files used as transcripts.
package subtitle

import (
	"time"

	"github.com/mgpai22/kalign/internal/alignment"
	"github.com/mgpai22/kalign/internal/phone"
)

// represents single subtitle entry
type Entry struct {
	Index     int
	StartTime time.Duration
	EndTime   time.Duration
	Text      string
	// aligned words of the cue, in order; empty for parsed files
	Words []Segment
}

// represents complete subtitle track
type Subtitle struct {
	Entries []Entry
	Format  string
}

// represents supported subtitle formats
type Format string

const (
	FormatSRT Format = "srt"
	FormatVTT Format = "vtt"
	FormatASS Format = "ass"
)

// interface for subtitle generation
type Generator interface {
	Generate(segments []Segment) (*Subtitle, error)
}

// represents one aligned word
type Segment struct {
	StartTime time.Duration
	EndTime   time.Duration
	Text      string
}

// interface for writing subtitles to files
type Writer interface {
	Write(subtitle *Subtitle, path string) error
}

// FromSpans turns word spans into timed words. Pauses, silences and spans
// without segments are left out; each word ends with its last phone.
func FromSpans(spans []alignment.WordSpan) []Segment {
	var segments []Segment
	for _, s := range spans {
		if len(s.Segments) == 0 || s.IsPause() || s.Label == string(phone.Silence) {
			continue
		}
		segments = append(segments, Segment{
			StartTime: seconds(s.Start()),
			EndTime:   seconds(s.End()),
			Text:      s.Label,
		})
	}
	return segments
}

func seconds(f float64) time.Duration {
	return time.Duration(f * float64(time.Second)).Round(time.Millisecond)
}

package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// trackEncoder renders a whole cue track.
type trackEncoder interface {
	encode(bw *bufio.Writer, sub *Subtitle)
}

// SRTWriter writes SubRip cues. SubRip has no word timing, so only cue
// bounds are kept.
type SRTWriter struct{}

// VTTWriter writes WebVTT. With WordTimes every word after the first in a
// cue is preceded by an inline timestamp tag.
type VTTWriter struct {
	WordTimes bool
}

// ASSWriter writes Advanced SubStation Alpha. With Karaoke each word carries
// a \k tag holding its length, so players highlight words as they are spoken.
type ASSWriter struct {
	Title    string
	FontName string
	FontSize int
	Karaoke  bool
}

func NewWriter(format Format) (Writer, error) {
	switch format {
	case FormatSRT:
		return &SRTWriter{}, nil
	case FormatVTT:
		return &VTTWriter{WordTimes: true}, nil
	case FormatASS:
		return &ASSWriter{
			Title:    "kalign word alignment",
			FontName: "Noto Sans CJK KR",
			FontSize: 20,
			Karaoke:  true,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

func (w *SRTWriter) Write(sub *Subtitle, path string) error { return createTrack(path, w, sub) }
func (w *VTTWriter) Write(sub *Subtitle, path string) error { return createTrack(path, w, sub) }
func (w *ASSWriter) Write(sub *Subtitle, path string) error { return createTrack(path, w, sub) }

func (w *SRTWriter) encode(bw *bufio.Writer, sub *Subtitle) {
	for i, e := range sub.Entries {
		writeCue(bw, i+1, srtTime(e.StartTime), srtTime(e.EndTime), e.Text)
	}
}

func (w *VTTWriter) encode(bw *bufio.Writer, sub *Subtitle) {
	bw.WriteString("WEBVTT\n\n")
	for i, e := range sub.Entries {
		text := e.Text
		if w.WordTimes {
			text = tagWords(e, func(n int, word Segment) string {
				if n == 0 {
					return ""
				}
				return "<" + vttTime(word.StartTime) + ">"
			})
		}
		writeCue(bw, i+1, vttTime(e.StartTime), vttTime(e.EndTime), text)
	}
}

func writeCue(bw *bufio.Writer, n int, start, end, text string) {
	fmt.Fprintf(bw, "%d\n%s --> %s\n%s\n\n", n, start, end, text)
}

const assHeader = `[Script Info]
Title: %s
ScriptType: v4.00+
WrapStyle: 0
ScaledBorderAndShadow: yes

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
Style: Word,%s,%d,&H00FFFFFF,&H0000FFFF,&H00000000,&H80000000,0,0,0,0,100,100,0,0,1,2,1,2,10,10,24,1

[Events]
Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text
`

func (w *ASSWriter) encode(bw *bufio.Writer, sub *Subtitle) {
	fmt.Fprintf(bw, assHeader, w.Title, w.FontName, w.FontSize)
	for _, e := range sub.Entries {
		text := e.Text
		if w.Karaoke {
			text = tagWords(e, func(n int, word Segment) string {
				next := e.EndTime
				if n+1 < len(e.Words) {
					next = e.Words[n+1].StartTime
				}
				return fmt.Sprintf(`{\k%d}`, (next-word.StartTime)/(10*time.Millisecond))
			})
		}
		fmt.Fprintf(bw, "Dialogue: 0,%s,%s,Word,,0,0,0,,%s\n",
			assTime(e.StartTime), assTime(e.EndTime), strings.ReplaceAll(text, "\n", `\N`))
	}
}

// tagWords inserts tag(n, word) in front of each timed word of a cue. A cue
// whose text no longer holds its words in order is returned untouched.
func tagWords(e Entry, tag func(n int, word Segment) string) string {
	if len(e.Words) == 0 {
		return e.Text
	}
	var b strings.Builder
	rest := e.Text
	for n, word := range e.Words {
		at := strings.Index(rest, word.Text)
		if at < 0 {
			return e.Text
		}
		b.WriteString(rest[:at])
		b.WriteString(tag(n, word))
		b.WriteString(word.Text)
		rest = rest[at+len(word.Text):]
	}
	b.WriteString(rest)
	return b.String()
}

// Encode writes sub in format to w.
func Encode(w io.Writer, sub *Subtitle, format Format) error {
	writer, err := NewWriter(format)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	writer.(trackEncoder).encode(bw, sub)
	return bw.Flush()
}

func createTrack(path string, enc trackEncoder, sub *Subtitle) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create subtitle file: %w", err)
	}
	bw := bufio.NewWriter(f)
	enc.encode(bw, sub)
	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("failed to write subtitle file: %w", err)
	}
	return f.Close()
}

// clock splits d into hours, minutes, seconds and milliseconds.
func clock(d time.Duration) (h, m, s, ms int) {
	ms = int(d.Milliseconds())
	return ms / 3_600_000, ms / 60_000 % 60, ms / 1000 % 60, ms % 1000
}

func srtTime(d time.Duration) string {
	h, m, s, ms := clock(d)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

func vttTime(d time.Duration) string {
	h, m, s, ms := clock(d)
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}

// ASS counts in centiseconds
func assTime(d time.Duration) string {
	h, m, s, ms := clock(d)
	return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, ms/10)
}

// subtitle format based on file extension
func GetFormatFromExtension(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".vtt":
		return FormatVTT
	case ".ass", ".ssa":
		return FormatASS
	default:
		return FormatSRT
	}
}

// file extension for a format
func GetExtensionForFormat(format Format) string {
	switch format {
	case FormatVTT:
		return ".vtt"
	case FormatASS:
		return ".ass"
	default:
		return ".srt"
	}
}

// IsSubtitleFile reports whether path has a subtitle extension.
func IsSubtitleFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".srt", ".vtt", ".ass", ".ssa":
		return true
	}
	return false
}

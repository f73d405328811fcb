package subtitle

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/mgpai22/kalign/internal/textio"
)

var (
	htmlTagRegex      = regexp.MustCompile(`</?[a-zA-Z][^>]*>`)
	timestampTagRegex = regexp.MustCompile(`<\d+:\d{2}(:\d{2})?\.\d{3}>`)
	overrideTagRegex  = regexp.MustCompile(`\{[^}]*\}`)
)

// Open reads a subtitle file in any supported text encoding.
func Open(path string) (*Subtitle, error) {
	content, _, err := textio.ReadFile(path)
	if err != nil && content == "" {
		return nil, err
	}

	format := GetFormatFromExtension(path)
	var entries []Entry
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".srt":
		entries, err = parseSRT(content)
	case ".vtt":
		entries, err = parseVTT(content)
	case ".ass", ".ssa":
		entries, err = parseASS(content)
	default:
		return nil, fmt.Errorf("unsupported subtitle format: %s", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &Subtitle{Entries: entries, Format: string(format)}, nil
}

// Transcript returns the cue text of a subtitle file, one cue per line,
// with markup removed.
func Transcript(path string) (string, error) {
	sub, err := Open(path)
	if err != nil {
		return "", err
	}
	return sub.Text(), nil
}

// Text joins the cue texts with newlines.
func (s *Subtitle) Text() string {
	lines := make([]string, 0, len(s.Entries))
	for _, e := range s.Entries {
		text := StripMarkup(e.Text)
		if text != "" {
			lines = append(lines, text)
		}
	}
	return strings.Join(lines, "\n")
}

// StripMarkup drops HTML-style tags, WebVTT timestamp tags and ASS override
// tags and folds line breaks.
func StripMarkup(text string) string {
	text = htmlTagRegex.ReplaceAllString(text, "")
	text = timestampTagRegex.ReplaceAllString(text, "")
	text = overrideTagRegex.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(text), " ")
}

package alignment

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mgpai22/kalign/internal/phone"
)

const (
	ticksPerSecond = 10000000.0
	// FrameOffset compensates for the decoder's analysis window lag.
	FrameOffset = 0.0125
	// LegacyRate is decoded with a slightly stretched clock.
	LegacyRate = 11025
)

var legacyScale = 11000.0 / 11025.0

// Options control tick conversion.
type Options struct {
	SampleRate int
	// WaveStart is added to every time so results line up with the
	// untrimmed recording.
	WaveStart float64
}

// FormatError reports decoder output that cannot be parsed.
type FormatError struct {
	Line int
	Msg  string
}

func (e *FormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("alignment format error at line %d: %s", e.Line, e.Msg)
	}
	return "alignment format error: " + e.Msg
}

// Seconds converts a decoder tick count to seconds, before any wave-start
// offset.
func Seconds(tick float64, sampleRate int) float64 {
	sec := tick/ticksPerSecond + FrameOffset
	if sampleRate == LegacyRate {
		sec *= legacyScale
	}
	return sec
}

// Parse reads a master label file produced by forced alignment. After two
// header lines each line holds "start end score phone [word]" up to a "."
// terminator; HTK's "start end phone score [word]" order is also accepted.
// A word field opens a new span, except that leading segments seen before
// any word are claimed by the first word. Segments whose converted start is
// not before their end are dropped. Trailing sp segments are split into
// pause spans.
func Parse(r io.Reader, opts Options) ([]WordSpan, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), " \t\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(lines) < 3 {
		return nil, &FormatError{Msg: fmt.Sprintf("expected at least 3 lines, got %d", len(lines))}
	}

	var spans []WordSpan
	cur := -1
	pending := false // spans[cur] collected segments before any word label

	for i := 2; ; i++ {
		if i >= len(lines) {
			return nil, &FormatError{Line: i, Msg: "missing \".\" terminator"}
		}
		line := lines[i]
		if line == "." {
			break
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		ph, word, err := splitFields(fields)
		if err != nil {
			return nil, &FormatError{Line: i + 1, Msg: err.Error()}
		}
		startTick, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, &FormatError{Line: i + 1, Msg: "bad start time " + strconv.Quote(fields[0])}
		}
		endTick, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, &FormatError{Line: i + 1, Msg: "bad end time " + strconv.Quote(fields[1])}
		}

		switch {
		case word != "" && pending:
			spans[cur].Label = word
			pending = false
		case word != "":
			spans = append(spans, WordSpan{Label: word})
			cur = len(spans) - 1
		case cur < 0:
			spans = append(spans, WordSpan{})
			cur = 0
			pending = true
		}

		st := Seconds(startTick, opts.SampleRate)
		en := Seconds(endTick, opts.SampleRate)
		if st < en {
			spans[cur].Segments = append(spans[cur].Segments, Segment{
				Phone: phone.Phone(ph),
				Start: st + opts.WaveStart,
				End:   en + opts.WaveStart,
			})
		}
	}

	return ExtractPauses(spans), nil
}

// splitFields picks the phone and optional word out of one record. The
// third field is the score when it is numeric, otherwise it is the phone.
func splitFields(fields []string) (ph, word string, err error) {
	switch {
	case len(fields) == 3:
		return fields[2], "", nil
	case len(fields) < 3:
		return "", "", fmt.Errorf("expected at least 3 fields, got %d", len(fields))
	}

	if isNumber(fields[2]) {
		ph = fields[3]
	} else {
		ph = fields[2]
	}
	if len(fields) >= 5 {
		word = fields[4]
	}
	return ph, word, nil
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// ParseFile parses the alignment output at path.
func ParseFile(path string, opts Options) ([]WordSpan, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	spans, err := Parse(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return spans, nil
}

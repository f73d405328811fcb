package subtitle

import (
	"bufio"
	"fmt"
	"regexp"
	"strings"
)

var (
	vttTimestampRegex = regexp.MustCompile(
		`(\d{2,}):(\d{2}):(\d{2})\.(\d{3})\s*-->\s*(\d{2,}):(\d{2}):(\d{2})\.(\d{3})`,
	)
	vttShortTimestampRegex = regexp.MustCompile(
		`(\d{2}):(\d{2})\.(\d{3})\s*-->\s*(\d{2}):(\d{2})\.(\d{3})`,
	)
)

func parseVTT(content string) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var currentEntry *Entry
	var textLines []string
	lineNum := 0

	flush := func() {
		if currentEntry != nil && len(textLines) > 0 {
			currentEntry.Text = strings.Join(textLines, "\n")
			entries = append(entries, *currentEntry)
		}
		currentEntry = nil
		textLines = nil
	}

	skipBlock := func() {
		for scanner.Scan() {
			lineNum++
			if strings.TrimSpace(scanner.Text()) == "" {
				break
			}
		}
	}

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		lineNum++
		trimmed := strings.TrimSpace(line)

		if lineNum == 1 {
			if !strings.HasPrefix(trimmed, "WEBVTT") {
				return nil, fmt.Errorf("missing WEBVTT header")
			}
			skipBlock()
			continue
		}

		if currentEntry == nil &&
			(strings.HasPrefix(trimmed, "NOTE") || strings.HasPrefix(trimmed, "STYLE") || strings.HasPrefix(trimmed, "REGION")) {
			skipBlock()
			continue
		}

		if trimmed == "" {
			flush()
			continue
		}

		if matches := vttTimestampRegex.FindStringSubmatch(line); len(matches) == 9 {
			flush()
			currentEntry = &Entry{
				Index:     len(entries) + 1,
				StartTime: parseTimestamp(matches[1], matches[2], matches[3], matches[4]),
				EndTime:   parseTimestamp(matches[5], matches[6], matches[7], matches[8]),
			}
			continue
		}
		if matches := vttShortTimestampRegex.FindStringSubmatch(line); len(matches) == 7 {
			flush()
			currentEntry = &Entry{
				Index:     len(entries) + 1,
				StartTime: parseTimestamp("0", matches[1], matches[2], matches[3]),
				EndTime:   parseTimestamp("0", matches[4], matches[5], matches[6]),
			}
			continue
		}

		// cue identifiers precede the timing line
		if currentEntry != nil {
			textLines = append(textLines, line)
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading VTT: %w", err)
	}
	return entries, nil
}

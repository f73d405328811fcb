package subtitle

import (
	"bufio"
	"fmt"
	"regexp"
	"strings"
	"time"
)

var assTimeRegex = regexp.MustCompile(`^(\d+):(\d{2}):(\d{2})\.(\d{2})$`)

// parseASS reads Dialogue events; override tags stay in the text.
func parseASS(content string) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var columns []string
	inEvents := false
	lineNum := 0

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		lineNum++

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			inEvents = strings.EqualFold(line, "[events]")
			continue
		}
		if !inEvents {
			continue
		}

		if strings.HasPrefix(line, "Format:") {
			columns = strings.Split(strings.TrimPrefix(line, "Format:"), ",")
			for i, col := range columns {
				columns[i] = strings.ToLower(strings.TrimSpace(col))
			}
			continue
		}
		if !strings.HasPrefix(line, "Dialogue:") {
			continue
		}
		if columns == nil {
			return nil, fmt.Errorf("line %d: Dialogue before Format line", lineNum)
		}

		fields := splitASSFields(strings.TrimSpace(strings.TrimPrefix(line, "Dialogue:")), len(columns))
		if len(fields) < len(columns) {
			return nil, fmt.Errorf("line %d: expected %d fields, got %d", lineNum, len(columns), len(fields))
		}

		entry := Entry{Index: len(entries) + 1}
		for i, col := range columns {
			switch col {
			case "start":
				entry.StartTime = parseASSTime(fields[i])
			case "end":
				entry.EndTime = parseASSTime(fields[i])
			case "text":
				entry.Text = strings.ReplaceAll(fields[i], `\N`, "\n")
			}
		}
		entries = append(entries, entry)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading ASS: %w", err)
	}
	return entries, nil
}

// the last field keeps its commas
func splitASSFields(content string, numFields int) []string {
	if numFields <= 0 {
		return nil
	}
	return strings.SplitN(content, ",", numFields)
}

func parseASSTime(s string) time.Duration {
	m := assTimeRegex.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0
	}
	return parseTimestamp(m[1], m[2], m[3], m[4]+"0")
}

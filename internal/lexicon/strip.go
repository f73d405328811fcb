package lexicon

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mgpai22/kalign/internal/phone"
)

// BackupSuffix is appended to a dictionary path by StripPauseFile before it
// rewrites the file.
const BackupSuffix = ".with_sp_backup"

func isSilenceDefinition(line string) bool {
	return line == "sil sil" || line == "sp sp"
}

// StripPause copies r to w, dropping a trailing sp from every entry that has
// at least one other phone. The sil and sp definitions and blank lines are
// kept as they are. It returns the number of entries changed.
func StripPause(r io.Reader, w io.Writer) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	bw := bufio.NewWriter(w)
	removed := 0

	for scanner.Scan() {
		line := scanner.Text()
		out := line
		if strings.TrimSpace(line) != "" && !isSilenceDefinition(line) {
			parts := strings.Fields(line)
			if len(parts) > 2 && parts[len(parts)-1] == string(phone.Pause) {
				out = strings.Join(parts[:len(parts)-1], " ")
				removed++
			}
		}
		if _, err := bw.WriteString(out + "\n"); err != nil {
			return removed, err
		}
	}
	if err := scanner.Err(); err != nil {
		return removed, err
	}
	return removed, bw.Flush()
}

// StripPauseFile rewrites path in place after copying the original to
// path+BackupSuffix.
func StripPauseFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read dictionary: %w", err)
	}
	if err := os.WriteFile(path+BackupSuffix, data, 0644); err != nil {
		return 0, fmt.Errorf("failed to write backup: %w", err)
	}

	var sb strings.Builder
	n, err := StripPause(strings.NewReader(string(data)), &sb)
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		return 0, fmt.Errorf("failed to write dictionary: %w", err)
	}
	return n, nil
}

// PauseStats counts entries with and without a trailing sp.
type PauseStats struct {
	Total     int
	WithPause int
	Without   int
}

// AnalyzePause reports how many entries of d end in sp.
func AnalyzePause(d *Dictionary) PauseStats {
	var st PauseStats
	for _, e := range d.Entries {
		st.Total++
		if len(e.Phones) > 1 && e.Phones.Last() == phone.Pause {
			st.WithPause++
		} else {
			st.Without++
		}
	}
	return st
}

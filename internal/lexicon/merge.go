package lexicon

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

// Merge returns the sorted union of dicts with duplicate lines removed.
// It is commutative, associative and idempotent over line content.
func Merge(dicts ...*Dictionary) *Dictionary {
	var all []Entry
	for _, d := range dicts {
		if d == nil {
			continue
		}
		all = append(all, d.Entries...)
	}
	return NewDictionary(all...)
}

// MergeLines is the line-level form of Merge: each input line has its
// whitespace collapsed, blanks are dropped, and the result is sorted and
// unique. Lines are not parsed, so entries of any shape survive.
func MergeLines(srcs ...io.Reader) ([]string, error) {
	var lines []string
	for i, r := range srcs {
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := strings.Join(strings.Fields(scanner.Text()), " ")
			if line != "" {
				lines = append(lines, line)
			}
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("source %d: %w", i, err)
		}
	}
	slices.Sort(lines)
	return slices.Compact(lines), nil
}

const lockRetryDelay = 100 * time.Millisecond

// MergeFiles merges the dictionary files srcs into dst, holding an advisory
// lock on dst.lock while writing. dst may itself be one of srcs. Missing
// sources are an error; empty paths are ignored.
func MergeFiles(ctx context.Context, dst string, srcs ...string) (int, error) {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return 0, fmt.Errorf("failed to create output directory: %w", err)
	}

	lock := flock.New(dst + ".lock")
	ok, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return 0, fmt.Errorf("acquire dictionary lock: %w", err)
	}
	if !ok {
		return 0, fmt.Errorf("dictionary %s is locked by another process", dst)
	}
	defer lock.Unlock()

	var readers []io.Reader
	for _, src := range srcs {
		if src == "" {
			continue
		}
		f, err := os.Open(src)
		if err != nil {
			return 0, fmt.Errorf("failed to open dictionary: %w", err)
		}
		defer f.Close()
		readers = append(readers, f)
	}

	lines, err := MergeLines(readers...)
	if err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".dict-*")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	bw := bufio.NewWriter(tmp)
	for _, line := range lines {
		if _, err := bw.WriteString(line + "\n"); err != nil {
			tmp.Close()
			return 0, fmt.Errorf("failed to write merged dictionary: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		tmp.Close()
		return 0, fmt.Errorf("failed to write merged dictionary: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, err
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return 0, fmt.Errorf("failed to replace %s: %w", dst, err)
	}
	return len(lines), nil
}

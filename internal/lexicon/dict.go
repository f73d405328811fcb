// Package lexicon builds, reads and merges pronunciation dictionaries in the
// "WORD PHONE1 PHONE2 ..." line format the decoder consumes.
package lexicon

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/mgpai22/kalign/internal/phone"
)

// Entry is a single pronunciation. Label is the key written to the file;
// Word is the orthographic form it was built from and equals Label for
// entries read back from disk.
type Entry struct {
	Word   string
	Label  string
	Phones phone.Sequence
}

// Line renders the entry in dictionary file form.
func (e Entry) Line() string {
	if len(e.Phones) == 0 {
		return e.Label
	}
	return e.Label + " " + e.Phones.String()
}

// Dictionary holds entries sorted by line with no duplicate lines.
type Dictionary struct {
	Entries []Entry
}

// NewDictionary creates a dictionary from entries, sorting and removing
// duplicate lines.
func NewDictionary(entries ...Entry) *Dictionary {
	d := &Dictionary{Entries: slices.Clone(entries)}
	d.normalize()
	return d
}

func (d *Dictionary) normalize() {
	slices.SortStableFunc(d.Entries, func(a, b Entry) int {
		return strings.Compare(a.Line(), b.Line())
	})
	d.Entries = slices.CompactFunc(d.Entries, func(a, b Entry) bool {
		return a.Line() == b.Line()
	})
}

// Add inserts an entry, keeping the dictionary sorted and unique.
func (d *Dictionary) Add(e Entry) {
	d.Entries = append(d.Entries, e)
	d.normalize()
}

// Len returns the number of entries.
func (d *Dictionary) Len() int {
	return len(d.Entries)
}

// Lookup returns all pronunciations filed under label.
func (d *Dictionary) Lookup(label string) []Entry {
	var out []Entry
	for _, e := range d.Entries {
		if e.Label == label {
			out = append(out, e)
		}
	}
	return out
}

// Has reports whether label has at least one pronunciation.
func (d *Dictionary) Has(label string) bool {
	for _, e := range d.Entries {
		if e.Label == label {
			return true
		}
	}
	return false
}

// Labels returns the distinct labels in sorted order.
func (d *Dictionary) Labels() []string {
	labels := make([]string, 0, len(d.Entries))
	for _, e := range d.Entries {
		if n := len(labels); n == 0 || labels[n-1] != e.Label {
			labels = append(labels, e.Label)
		}
	}
	return labels
}

// Phones returns every distinct phone used by the entries, sorted.
func (d *Dictionary) Phones() []phone.Phone {
	seen := make(map[phone.Phone]struct{})
	for _, e := range d.Entries {
		for _, p := range e.Phones {
			seen[p] = struct{}{}
		}
	}
	out := make([]phone.Phone, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

// Load reads a dictionary. Blank lines and lines starting with # are
// ignored; whitespace inside a line is collapsed.
func Load(r io.Reader) (*Dictionary, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, fmt.Errorf("line %d: expected a word and at least one phone", lineNum)
		}
		entries = append(entries, Entry{
			Word:   fields[0],
			Label:  fields[0],
			Phones: phone.ParseSequence(strings.Join(fields[1:], " ")),
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return NewDictionary(entries...), nil
}

// LoadFile opens and loads a dictionary file.
func LoadFile(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	d, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Write emits one line per entry.
func (d *Dictionary) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, e := range d.Entries {
		if _, err := bw.WriteString(e.Line() + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteFile writes the dictionary to path, replacing any existing file.
func (d *Dictionary) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create dictionary file: %w", err)
	}
	if err := d.Write(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write dictionary: %w", err)
	}
	return f.Close()
}

// WritePhoneList writes the phones used by d, one per line.
func WritePhoneList(w io.Writer, d *Dictionary) error {
	bw := bufio.NewWriter(w)
	for _, p := range d.Phones() {
		if _, err := bw.WriteString(string(p) + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

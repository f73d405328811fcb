package textgrid

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Read parses a short-format TextGrid holding interval tiers.
func Read(r io.Reader) (*Grid, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, strings.TrimSpace(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	p := &reader{lines: lines}
	if got := p.next(); got != `File type = "ooTextFile short"` {
		return nil, fmt.Errorf("not a short TextGrid: %q", got)
	}
	if got := p.next(); got != `"TextGrid"` {
		return nil, fmt.Errorf("unexpected object class %q", got)
	}
	p.next() // blank

	g := &Grid{}
	g.XMin = p.float()
	g.XMax = p.float()
	if got := p.next(); got != "<exists>" {
		return nil, fmt.Errorf("expected <exists>, got %q", got)
	}
	n := p.int()

	for i := 0; i < n && p.err == nil; i++ {
		if got := p.next(); got != `"IntervalTier"` {
			return nil, fmt.Errorf("tier %d: unsupported tier class %s", i+1, got)
		}
		t := Tier{Name: p.str()}
		p.float()
		p.float()
		count := p.int()
		for j := 0; j < count && p.err == nil; j++ {
			t.Intervals = append(t.Intervals, Interval{
				Start: p.float(),
				End:   p.float(),
				Label: p.str(),
			})
		}
		g.Tiers = append(g.Tiers, t)
	}
	if p.err != nil {
		return nil, p.err
	}
	return g, nil
}

// ReadFile parses the TextGrid at path.
func ReadFile(path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	g, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// Tier returns the tier called name.
func (g *Grid) Tier(name string) (Tier, bool) {
	for _, t := range g.Tiers {
		if t.Name == name {
			return t, true
		}
	}
	return Tier{}, false
}

// reader walks lines and remembers the first error.
type reader struct {
	lines []string
	pos   int
	err   error
}

func (p *reader) next() string {
	if p.err != nil {
		return ""
	}
	if p.pos >= len(p.lines) {
		p.err = io.ErrUnexpectedEOF
		return ""
	}
	s := p.lines[p.pos]
	p.pos++
	return s
}

func (p *reader) float() float64 {
	s := p.next()
	if p.err != nil {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		p.err = fmt.Errorf("line %d: bad number %q", p.pos, s)
	}
	return f
}

func (p *reader) int() int {
	s := p.next()
	if p.err != nil {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		p.err = fmt.Errorf("line %d: bad count %q", p.pos, s)
	}
	return n
}

func (p *reader) str() string {
	s := p.next()
	if p.err != nil {
		return ""
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		p.err = fmt.Errorf("line %d: expected quoted string, got %q", p.pos, s)
		return ""
	}
	return strings.ReplaceAll(s[1:len(s)-1], `""`, `"`)
}

package textgrid

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mgpai22/kalign/internal/alignment"
)

func sampleSpans() []alignment.WordSpan {
	return []alignment.WordSpan{
		{Label: "sil", Segments: []alignment.Segment{{Phone: "sil", Start: 0.0125, End: 0.5}}},
		{Label: "ANNYEONG", Segments: []alignment.Segment{
			{Phone: "a", Start: 0.5, End: 0.6},
			{Phone: "n", Start: 0.6, End: 0.75},
		}},
		{Label: "sp", Segments: []alignment.Segment{{Phone: "sp", Start: 0.75, End: 0.8}}},
		{Label: "HASEYO", Segments: []alignment.Segment{{Phone: "h", Start: 0.8, End: 2}}},
	}
}

func TestWrite(t *testing.T) {
	var b strings.Builder
	if err := Write(&b, sampleSpans(), Options{}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	want := strings.Join([]string{
		`File type = "ooTextFile short"`,
		`"TextGrid"`,
		``,
		`0.0125`,
		`2.0`,
		`<exists>`,
		`2`,
		`"IntervalTier"`,
		`"phone"`,
		`0.0125`,
		`2.0`,
		`5`,
		`0.0125`, `0.5`, `"sil"`,
		`0.5`, `0.6`, `"a"`,
		`0.6`, `0.75`, `"n"`,
		`0.75`, `0.8`, `"sp"`,
		`0.8`, `2.0`, `"h"`,
		`"IntervalTier"`,
		`"word"`,
		`0.0125`,
		`2.0`,
		`3`,
		`0.0125`, `0.5`, `"sil"`,
		`0.5`, `0.8`, `"ANNYEONG"`,
		`0.8`, `2.0`, `"HASEYO"`,
	}, "\n") + "\n"

	if got := b.String(); got != want {
		t.Errorf("Write() mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestWriteErrors(t *testing.T) {
	var b strings.Builder
	if err := Write(&b, nil, Options{}); !errors.Is(err, ErrNoPhones) {
		t.Errorf("expected ErrNoPhones, got %v", err)
	}

	onlyPause := []alignment.WordSpan{
		{Label: "sp", Segments: []alignment.Segment{{Phone: "sp", Start: 0, End: 1}}},
		{Label: "EMPTY"},
	}
	if err := Write(&b, onlyPause, Options{}); !errors.Is(err, ErrNoWords) {
		t.Errorf("expected ErrNoWords, got %v", err)
	}
}

func TestBuildWordTierCoversLeadingPause(t *testing.T) {
	spans := []alignment.WordSpan{
		{Label: "sp", Segments: []alignment.Segment{{Phone: "sp", Start: 0.0125, End: 0.3}}},
		{Label: "EMPTY"},
		{Label: "ANNYEONG", Segments: []alignment.Segment{{Phone: "a", Start: 0.3, End: 0.9}}},
		{Label: "HASEYO", Segments: []alignment.Segment{{Phone: "h", Start: 0.9, End: 1.5}}},
	}

	g, err := Build(spans, Options{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	words := g.Tiers[1].Intervals
	if len(words) != 2 {
		t.Fatalf("word tier = %+v", words)
	}
	if words[0].Start != g.XMin || words[0].Label != "ANNYEONG" {
		t.Errorf("first word = %+v, want start %v", words[0], g.XMin)
	}
	if words[len(words)-1].End != g.XMax {
		t.Errorf("last word = %+v, want end %v", words[len(words)-1], g.XMax)
	}
	for i := 1; i < len(words); i++ {
		if words[i].Start != words[i-1].End {
			t.Errorf("gap between %+v and %+v", words[i-1], words[i])
		}
	}
}

func TestFormatSeconds(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.0"},
		{2, "2.0"},
		{0.0125, "0.0125"},
		{0.1 + 0.2, "0.30000000000000004"},
		{0.0001, "0.0001"},
		{0.00001, "1e-05"},
		{123.5, "123.5"},
		{1e16, "1e+16"},
		{9999999999999998, "9999999999999998.0"},
		{(0.1 + 0.0125) * (11000.0 / 11025.0), "0.11224489795918367"},
	}

	for _, tt := range tests {
		if got := FormatSeconds(tt.in); got != tt.want {
			t.Errorf("FormatSeconds(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestQuoteDoublesQuotes(t *testing.T) {
	if got := quote(`say "hi"`); got != `"say ""hi"""` {
		t.Errorf("quote() = %s", got)
	}
}

func TestReadRoundTrip(t *testing.T) {
	spans := sampleSpans()
	spans[1].Label = `AN"NYEONG`

	var b strings.Builder
	if err := Write(&b, spans, Options{WordTier: "words"}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	g, err := Read(strings.NewReader(b.String()))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if g.XMin != 0.0125 || g.XMax != 2 || len(g.Tiers) != 2 {
		t.Fatalf("Read() grid = %+v", g)
	}
	words, ok := g.Tier("words")
	if !ok {
		t.Fatal("word tier not found")
	}
	if len(words.Intervals) != 3 || words.Intervals[1].Label != `AN"NYEONG` {
		t.Errorf("word tier = %+v", words.Intervals)
	}

	if _, err := Read(strings.NewReader("File type = \"ooTextFile\"\n")); err == nil {
		t.Error("expected error for long-format header")
	}
	if _, err := Read(strings.NewReader(b.String()[:80])); err == nil {
		t.Error("expected error for truncated input")
	}
}

func TestConvertBatch(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.mlf")
	bad := filepath.Join(dir, "bad.mlf")
	mlf := strings.Join([]string{
		"#!MLF!#",
		`"*/tmp.rec"`,
		"0 500000 sil -1 sil",
		"500000 1000000 a -1 ANNYEONG",
		"1000000 1500000 n -1",
		".",
	}, "\n") + "\n"
	if err := os.WriteFile(good, []byte(mlf), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	if err := os.WriteFile(bad, []byte("#!MLF!#\n"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	jobs := []Job{
		{Input: good, Output: filepath.Join(dir, "good.TextGrid"), Parse: alignment.Options{SampleRate: 16000},
			Relabel: map[string]string{"ANNYEONG": "안녕"}},
		{Input: bad, Output: filepath.Join(dir, "bad.TextGrid")},
		{Input: filepath.Join(dir, "missing.mlf"), Output: filepath.Join(dir, "missing.TextGrid")},
	}

	results := ConvertBatch(context.Background(), jobs, 2, Options{})
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for i, r := range results {
		if r.Job.Index != i {
			t.Errorf("result %d has index %d", i, r.Job.Index)
		}
	}

	if results[0].Err != nil {
		t.Fatalf("good file failed: %v", results[0].Err)
	}
	if results[0].Words != 2 || results[0].Phones != 3 {
		t.Errorf("good result = %+v", results[0])
	}
	var fe *alignment.FormatError
	if !errors.As(results[1].Err, &fe) {
		t.Errorf("bad file error = %v, want FormatError", results[1].Err)
	}
	if results[2].Err == nil {
		t.Error("missing file should fail")
	}

	g, err := ReadFile(jobs[0].Output)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	words, _ := g.Tier(DefaultWordTier)
	if words.Intervals[1].Label != "안녕" {
		t.Errorf("word label = %q, want relabeled Hangul", words.Intervals[1].Label)
	}
}

func TestConvertBatchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := ConvertBatch(ctx, []Job{{Input: "x"}, {Input: "y"}}, 1, Options{})
	for _, r := range results {
		if !errors.Is(r.Err, context.Canceled) {
			t.Errorf("result %+v, want context.Canceled", r)
		}
	}
}

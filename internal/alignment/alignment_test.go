package alignment

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"testing"

	"github.com/mgpai22/kalign/internal/lexicon"
	"github.com/mgpai22/kalign/internal/phone"
)

const eps = 1e-9

func near(a, b float64) bool {
	return math.Abs(a-b) < eps
}

func checkSegment(t *testing.T, got Segment, ph string, start, end float64) {
	t.Helper()
	if string(got.Phone) != ph || !near(got.Start, start) || !near(got.End, end) {
		t.Errorf(
			"segment = %s %.6f-%.6f, want %s %.6f-%.6f",
			got.Phone, got.Start, got.End, ph, start, end,
		)
	}
}

func TestParseTrailingWordLabel(t *testing.T) {
	in := strings.Join([]string{
		"#!MLF!#",
		"\"*/tmp.rec\"",
		"0 500000 -100 sil",
		"500000 1000000 -50 g",
		"1000000 1200000 -50 sp word1",
		".",
	}, "\n")

	spans, err := Parse(strings.NewReader(in), Options{SampleRate: 16000})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(spans) != 2 {
		t.Fatalf("got %d spans, want 2: %+v", len(spans), spans)
	}

	word := spans[0]
	if word.Label != "word1" || len(word.Segments) != 2 {
		t.Fatalf("word span = %+v", word)
	}
	checkSegment(t, word.Segments[0], "sil", 0.0125, 0.0625)
	checkSegment(t, word.Segments[1], "g", 0.0625, 0.1125)

	pause := spans[1]
	if !pause.IsPause() {
		t.Fatalf("second span is not a pause: %+v", pause)
	}
	checkSegment(t, pause.Segments[0], "sp", 0.1125, 0.1325)
}

func TestParseHTKOrder(t *testing.T) {
	in := strings.Join([]string{
		"#!MLF!#",
		"\"*/tmp.rec\"",
		"0 1000000 sil -120.5 sil",
		"1000000 1500000 a -60.1 ANNYEONG",
		"1500000 2000000 n -30.0",
		"2000000 2000000 n -1.0",
		"2000000 2500000 sp -2.0",
		"2500000 3000000 sil -80.0 sil",
		".",
	}, "\n")

	spans, err := Parse(strings.NewReader(in), Options{SampleRate: 16000, WaveStart: 1.5})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	var labels []string
	for _, s := range spans {
		labels = append(labels, s.Label)
	}
	if want := []string{"sil", "ANNYEONG", "sp", "sil"}; !reflect.DeepEqual(labels, want) {
		t.Fatalf("labels = %v, want %v", labels, want)
	}

	// zero-length segment dropped, sp moved out
	word := spans[1]
	if len(word.Segments) != 2 {
		t.Fatalf("word segments = %+v", word.Segments)
	}
	checkSegment(t, word.Segments[0], "a", 1.6125, 1.6625)
	checkSegment(t, word.Segments[1], "n", 1.6625, 1.7125)
	for _, seg := range word.Segments {
		if seg.Phone == phone.Pause {
			t.Error("word span still contains sp")
		}
	}
	if !near(spans[2].Start(), 1.7125) || !near(spans[3].End(), 1.8125) {
		t.Errorf("unexpected pause/sil bounds: %+v %+v", spans[2], spans[3])
	}
}

func TestParseLegacyRate(t *testing.T) {
	in := "#!MLF!#\n\"*/tmp.rec\"\n0 1000000 -1 a W\n.\n"
	spans, err := Parse(strings.NewReader(in), Options{SampleRate: 11025})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	scale := 11000.0 / 11025.0
	checkSegment(t, spans[0].Segments[0], "a", 0.0125*scale, 0.1125*scale)
}

func TestParseDurationsPositive(t *testing.T) {
	var b strings.Builder
	b.WriteString("#!MLF!#\n\"*/a.rec\"\n")
	for i := 0; i < 50; i++ {
		start := i * 100000
		b.WriteString(
			strings.Join([]string{
				strconv.Itoa(start), strconv.Itoa(start + 100000), "-1", "a", "W" + strconv.Itoa(i),
			}, " ") + "\n",
		)
	}
	b.WriteString(".\n")

	for _, rate := range []int{8000, 11025, 16000} {
		spans, err := Parse(strings.NewReader(b.String()), Options{SampleRate: rate})
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		for _, s := range spans {
			for _, seg := range s.Segments {
				if seg.Duration() <= 0 {
					t.Errorf("rate %d: non-positive duration %+v", rate, seg)
				}
			}
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"too short", "#!MLF!#\n\"*/tmp.rec\"\n"},
		{"empty", ""},
		{"missing terminator", "#!MLF!#\n\"*/tmp.rec\"\n0 10 -1 a W\n"},
		{"too few fields", "#!MLF!#\n\"*/tmp.rec\"\n0 10\n.\n"},
		{"bad tick", "#!MLF!#\n\"*/tmp.rec\"\nzero 10 -1 a W\n.\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.in), Options{SampleRate: 16000})
			var fe *FormatError
			if !errors.As(err, &fe) {
				t.Fatalf("expected *FormatError, got %v", err)
			}
		})
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.mlf")
	if err := os.WriteFile(path, []byte("#!MLF!#\n"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	_, err := ParseFile(path, Options{})
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("expected wrapped *FormatError, got %v", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Errorf("error %q does not name the file", err)
	}
}

func TestExtractPauses(t *testing.T) {
	spans := []WordSpan{
		{Label: "A", Segments: []Segment{{"a", 0, 1}, {"sp", 1, 2}}},
		{Label: "B", Segments: []Segment{{"b", 2, 3}}},
		{Label: "sp", Segments: []Segment{{"sp", 3, 4}}},
	}
	out := ExtractPauses(spans)
	if len(out) != 4 {
		t.Fatalf("got %d spans, want 4", len(out))
	}
	if len(out[0].Segments) != 1 || !out[1].IsPause() {
		t.Errorf("pause not split from A: %+v", out[:2])
	}
	if again := ExtractPauses(out); !reflect.DeepEqual(again, out) {
		t.Errorf("ExtractPauses is not stable: %+v", again)
	}
	if len(spans[0].Segments) != 2 {
		t.Error("input span was modified")
	}
}

func TestRelabel(t *testing.T) {
	spans := []WordSpan{
		{Label: "ANNYEONG", Segments: []Segment{{"a", 0, 1}}},
		{Label: "sp", Segments: []Segment{{"sp", 1, 2}}},
		{Label: "sil", Segments: []Segment{{"sil", 2, 3}}},
	}
	out := Relabel(spans, map[string]string{"ANNYEONG": "안녕", "sp": "x"})
	if out[0].Label != "안녕" || out[1].Label != "sp" || out[2].Label != "sil" {
		t.Errorf("Relabel() = %+v", out)
	}
}

type vocab map[string]bool

func (v vocab) Has(label string) bool { return v[label] }

func TestPrepareWords(t *testing.T) {
	v := vocab{"ANNYEONG": true, "HASEYO": true, "TWENTY": true, "TWO": true}
	text := "안녕, 하세요!\ntwenty-two 모름 {breath}"

	tr := PrepareWords(text, v, LabelOptions{Surround: "sil", Romanize: true})
	want := []string{"sil", "ANNYEONG", "HASEYO", "TWENTY", "TWO", "sil"}
	if !reflect.DeepEqual(tr.Words, want) {
		t.Errorf("Words = %v, want %v", tr.Words, want)
	}
	if !reflect.DeepEqual(tr.Skipped, []string{"모름", "{BR}"}) {
		t.Errorf("Skipped = %v", tr.Skipped)
	}
	if tr.Originals["ANNYEONG"] != "안녕" {
		t.Errorf("Originals = %v", tr.Originals)
	}

	tr = PrepareWords("안녕 하세요", v, LabelOptions{Between: "sp", Romanize: true})
	if want := []string{"ANNYEONG", "sp", "HASEYO"}; !reflect.DeepEqual(tr.Words, want) {
		t.Errorf("Words with between = %v, want %v", tr.Words, want)
	}
}

func TestPrepareWordsMatchesGeneratedDictionary(t *testing.T) {
	text := "안녕~ “세계” 좋아요…\n세계·안녕!"

	tests := []struct {
		name     string
		romanize bool
		want     []string
	}{
		{"hangul labels", false, []string{"sil", "안녕", "세계", "좋아요", "세계안녕", "sil"}},
		{"romanized labels", true, []string{"sil", "ANNYEONG", "SEGYE", "JOHAYO", "SEGYEANNYEONG", "sil"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dict, skipped := lexicon.NewBuilder(lexicon.Options{Romanize: tt.romanize}).
				Build(lexicon.Words(text))
			if len(skipped) != 0 {
				t.Fatalf("Build() skipped %v", skipped)
			}

			tr := PrepareWords(text, dict, LabelOptions{Surround: "sil", Romanize: tt.romanize})
			if len(tr.Skipped) != 0 {
				t.Errorf("Skipped = %v, want none", tr.Skipped)
			}
			if !reflect.DeepEqual(tr.Words, tt.want) {
				t.Errorf("Words = %v, want %v", tr.Words, tt.want)
			}
			for _, w := range tr.Words[1 : len(tr.Words)-1] {
				if !dict.Has(w) {
					t.Errorf("label %q not in dictionary", w)
				}
			}
		})
	}
}

func TestWriteLabels(t *testing.T) {
	var b strings.Builder
	if err := WriteLabels(&b, []string{"sil", "ANNYEONG", "sil"}); err != nil {
		t.Fatalf("WriteLabels() error = %v", err)
	}
	want := "#!MLF!#\n\"*/tmp.lab\"\nsil\nANNYEONG\nsil\n.\n"
	if b.String() != want {
		t.Errorf("WriteLabels() = %q, want %q", b.String(), want)
	}
}

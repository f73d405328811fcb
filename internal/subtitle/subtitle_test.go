package subtitle

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mgpai22/kalign/internal/alignment"
	"github.com/mgpai22/kalign/internal/phone"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	return path
}

func TestOpenSRT(t *testing.T) {
	content := "\ufeff1\r\n00:00:01,000 --> 00:00:04,000\r\n<i>안녕하세요</i>\r\n\r\n" +
		"2\n00:00:05,500 --> 00:00:08,200\n반갑습니다.\n두 줄.\n"
	path := writeFile(t, t.TempDir(), "talk.srt", content)

	sub, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if len(sub.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(sub.Entries))
	}
	if sub.Entries[0].StartTime != time.Second || sub.Entries[0].EndTime != 4*time.Second {
		t.Errorf("entry 0 times = %v-%v", sub.Entries[0].StartTime, sub.Entries[0].EndTime)
	}
	if sub.Entries[1].StartTime != 5500*time.Millisecond {
		t.Errorf("entry 1 start = %v", sub.Entries[1].StartTime)
	}
	if sub.Entries[1].Text != "반갑습니다.\n두 줄." {
		t.Errorf("entry 1 text = %q", sub.Entries[1].Text)
	}

	want := "안녕하세요\n반갑습니다. 두 줄."
	if got := sub.Text(); got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
}

func TestOpenSRTBadTimestamp(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.srt", "1\nnot a time\ntext\n")
	if _, err := Open(path); err == nil {
		t.Fatal("expected error for missing timestamp")
	}
}

func TestOpenVTT(t *testing.T) {
	content := `WEBVTT
Kind: captions

NOTE this is
a comment

intro
00:00:01.000 --> 00:00:02.500 align:start
<v 화자>첫 번째

00:03.000 --> 00:04.000
두 번째
`
	path := writeFile(t, t.TempDir(), "talk.vtt", content)

	sub, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if len(sub.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %+v", sub.Entries)
	}
	if sub.Entries[1].StartTime != 3*time.Second {
		t.Errorf("short timestamp start = %v", sub.Entries[1].StartTime)
	}
	if got := sub.Text(); got != "첫 번째\n두 번째" {
		t.Errorf("Text() = %q", got)
	}

	bad := writeFile(t, t.TempDir(), "bad.vtt", "00:01.000 --> 00:02.000\nx\n")
	if _, err := Open(bad); err == nil {
		t.Error("expected error without WEBVTT header")
	}
}

func TestOpenASS(t *testing.T) {
	content := `[Script Info]
Title: test

[Events]
Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text
Dialogue: 0,0:00:01.50,0:00:03.00,Default,,0,0,0,,{\an8}하나, 둘\N셋
Comment: 0,0:00:04.00,0:00:05.00,Default,,0,0,0,,skip
`
	path := writeFile(t, t.TempDir(), "talk.ass", content)

	text, err := Transcript(path)
	if err != nil {
		t.Fatalf("Transcript() error = %v", err)
	}
	if text != "하나, 둘 셋" {
		t.Errorf("Transcript() = %q", text)
	}

	sub, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if sub.Entries[0].StartTime != 1500*time.Millisecond || sub.Entries[0].EndTime != 3*time.Second {
		t.Errorf("ASS times = %v-%v", sub.Entries[0].StartTime, sub.Entries[0].EndTime)
	}
}

func TestOpenUnsupported(t *testing.T) {
	path := writeFile(t, t.TempDir(), "talk.txt", "hello")
	if _, err := Open(path); err == nil {
		t.Fatal("expected error for .txt")
	}
}

func TestOpenCP949(t *testing.T) {
	// "1\n00:00:00,000 --> 00:00:01,000\n가\n" with 가 as EUC-KR 0xB0A1
	content := []byte("1\n00:00:00,000 --> 00:00:01,000\n\xb0\xa1\n")
	path := filepath.Join(t.TempDir(), "legacy.srt")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	text, err := Transcript(path)
	if err != nil {
		t.Fatalf("Transcript() error = %v", err)
	}
	if text != "가" {
		t.Errorf("Transcript() = %q, want 가", text)
	}
}

func spans() []alignment.WordSpan {
	seg := func(ph string, s, e float64) alignment.Segment {
		return alignment.Segment{Phone: phone.Phone(ph), Start: s, End: e}
	}
	return []alignment.WordSpan{
		{Label: "sil", Segments: []alignment.Segment{{Phone: "sil", Start: 0, End: 0.5}}},
		{Label: "안녕", Segments: []alignment.Segment{seg("a", 0.5, 0.7), seg("n", 0.7, 0.9)}},
		{Label: "하세요", Segments: []alignment.Segment{seg("h", 0.9, 1.4)}},
		{Label: "sp", Segments: []alignment.Segment{{Phone: "sp", Start: 1.4, End: 2.2}}},
		{Label: "반가워요", Segments: []alignment.Segment{seg("b", 2.2, 3.0)}},
		{Label: "sil", Segments: []alignment.Segment{{Phone: "sil", Start: 3.0, End: 3.5}}},
	}
}

func TestFromSpans(t *testing.T) {
	segs := FromSpans(spans())
	if len(segs) != 3 {
		t.Fatalf("got %d segments, want 3: %+v", len(segs), segs)
	}
	if segs[0].Text != "안녕" || segs[0].StartTime != 500*time.Millisecond || segs[0].EndTime != 900*time.Millisecond {
		t.Errorf("first word = %+v", segs[0])
	}
}

func TestGenerate(t *testing.T) {
	segs := FromSpans(spans())

	sub, err := NewDefaultGenerator().Generate(segs)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(sub.Entries) != 2 {
		t.Fatalf("expected pause to split into 2 cues, got %+v", sub.Entries)
	}
	if sub.Entries[0].Text != "안녕 하세요" || sub.Entries[0].EndTime != 1400*time.Millisecond {
		t.Errorf("cue 0 = %+v", sub.Entries[0])
	}
	if sub.Entries[1].Index != 2 {
		t.Errorf("cue 1 index = %d", sub.Entries[1].Index)
	}

	words, err := NewWordGenerator().Generate(segs)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(words.Entries) != 3 {
		t.Errorf("per-word cues = %d, want 3", len(words.Entries))
	}

	empty, _ := NewDefaultGenerator().Generate(nil)
	if empty.Entries == nil || len(empty.Entries) != 0 {
		t.Errorf("empty input = %+v", empty)
	}
}

func TestGenerateLimits(t *testing.T) {
	g := NewDefaultGenerator()
	g.MaxCharsPerLine = 5
	g.MaxLinesPerSub = 2
	var segs []Segment
	for i := 0; i < 6; i++ {
		start := time.Duration(i) * 100 * time.Millisecond
		segs = append(segs, Segment{StartTime: start, EndTime: start + 100*time.Millisecond, Text: "가나"})
	}

	sub, _ := g.Generate(segs)
	for _, e := range sub.Entries {
		if n := len([]rune(strings.ReplaceAll(e.Text, "\n", " "))); n > 10 {
			t.Errorf("cue %q has %d chars", e.Text, n)
		}
	}
	if len(sub.Entries) != 2 {
		t.Errorf("got %d cues, want 2", len(sub.Entries))
	}
	if !strings.Contains(sub.Entries[0].Text, "\n") {
		t.Errorf("long cue not wrapped: %q", sub.Entries[0].Text)
	}
}

func TestEncode(t *testing.T) {
	sub := &Subtitle{Entries: []Entry{
		{Index: 1, StartTime: 500 * time.Millisecond, EndTime: 3723456 * time.Millisecond, Text: "안녕\n하세요"},
	}}

	tests := []struct {
		format Format
		want   []string
	}{
		{FormatSRT, []string{"1\n00:00:00,500 --> 01:02:03,456\n안녕\n하세요\n\n"}},
		{FormatVTT, []string{"WEBVTT\n\n", "00:00:00.500 --> 01:02:03.456\n"}},
		{FormatASS, []string{"[Events]\n", "Dialogue: 0,0:00:00.50,1:02:03.45,Word,,0,0,0,,안녕\\N하세요\n"}},
	}
	for _, tt := range tests {
		var b strings.Builder
		if err := Encode(&b, sub, tt.format); err != nil {
			t.Fatalf("Encode(%s) error = %v", tt.format, err)
		}
		for _, want := range tt.want {
			if !strings.Contains(b.String(), want) {
				t.Errorf("Encode(%s) = %q, missing %q", tt.format, b.String(), want)
			}
		}
	}

	if err := Encode(&strings.Builder{}, sub, "txt"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestEncodeWordTiming(t *testing.T) {
	sub, err := NewDefaultGenerator().Generate(FromSpans(spans()))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(sub.Entries[0].Words) != 2 {
		t.Fatalf("cue words = %+v", sub.Entries[0].Words)
	}

	tests := []struct {
		format Format
		want   string
	}{
		{FormatSRT, "00:00:00,500 --> 00:00:01,400\n안녕 하세요\n"},
		{FormatVTT, "00:00:00.500 --> 00:00:01.400\n안녕 <00:00:00.900>하세요\n"},
		{FormatASS, "Dialogue: 0,0:00:00.50,0:00:01.40,Word,,0,0,0,,{\\k40}안녕 {\\k50}하세요\n"},
	}
	for _, tt := range tests {
		var b strings.Builder
		if err := Encode(&b, sub, tt.format); err != nil {
			t.Fatalf("Encode(%s) error = %v", tt.format, err)
		}
		if !strings.Contains(b.String(), tt.want) {
			t.Errorf("Encode(%s) = %q, missing %q", tt.format, b.String(), tt.want)
		}
	}
}

func TestTagWordsKeepsLineBreaks(t *testing.T) {
	e := Entry{
		EndTime: 2 * time.Second,
		Text:    "가나\n다라",
		Words: []Segment{
			{StartTime: 0, Text: "가나"},
			{StartTime: time.Second, Text: "다라"},
		},
	}
	got := tagWords(e, func(n int, _ Segment) string { return fmt.Sprintf("<%d>", n) })
	if got != "<0>가나\n<1>다라" {
		t.Errorf("tagWords() = %q", got)
	}

	e.Text = "edited"
	if got := tagWords(e, func(int, Segment) string { return "x" }); got != "edited" {
		t.Errorf("tagWords() on edited text = %q", got)
	}
}

func TestStripMarkup(t *testing.T) {
	in := "<c.word>안녕</c> <00:00:00.900>하세요 {\\k40}반가워요\n<b>네</b>"
	if got := StripMarkup(in); got != "안녕 하세요 반가워요 네" {
		t.Errorf("StripMarkup() = %q", got)
	}
}

func TestWriterRoundTrip(t *testing.T) {
	dir := t.TempDir()
	sub, _ := NewDefaultGenerator().Generate(FromSpans(spans()))

	for _, format := range []Format{FormatSRT, FormatVTT, FormatASS} {
		path := filepath.Join(dir, "out", "talk"+GetExtensionForFormat(format))
		w, err := NewWriter(format)
		if err != nil {
			t.Fatalf("NewWriter(%s) error = %v", format, err)
		}
		if err := w.Write(sub, path); err != nil {
			t.Fatalf("Write(%s) error = %v", format, err)
		}
		if GetFormatFromExtension(path) != format || !IsSubtitleFile(path) {
			t.Errorf("extension mapping broken for %s", path)
		}

		back, err := Open(path)
		if err != nil {
			t.Fatalf("Open(%s) error = %v", path, err)
		}
		if got := back.Text(); got != "안녕 하세요\n반가워요" {
			t.Errorf("%s round trip text = %q", format, got)
		}
		if back.Entries[1].StartTime != 2200*time.Millisecond {
			t.Errorf("%s round trip start = %v", format, back.Entries[1].StartTime)
		}
	}
}

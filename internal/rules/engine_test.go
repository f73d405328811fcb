package rules

import (
	"math/rand/v2"
	"slices"
	"strings"
	"testing"

	"github.com/mgpai22/kalign/internal/hangul"
	"github.com/mgpai22/kalign/internal/phone"
)

func TestPronounce(t *testing.T) {
	tests := []struct {
		word string
		want string
	}{
		{"안녕", "a n n yeo ng"},
		{"밥먹다", "b a m m eo g d a"},
		{"좋고", "j o k o"},
		{"놓는", "n o n n eu n"},
		{"좋아", "j o a"},
		{"닭", "d a g"},
		{"닭이", "d a l g i"},
		{"읽히다", "i l k i d a"},
		{"앉다", "a n d a"},
		{"많아", "m a n a"},
		{"않다", "a n t a"},
		{"끊다", "gg eu n t a"},
		{"싫어", "s i r eo"},
		{"잃다", "i l t a"},
		{"일이", "i r i"},
		{"있다", "i d a"},
		{"낫다", "n a d a"},
		{"옷만", "o n m a n"},
		{"깨끗하다", "gg ae gg eu t a d a"},
		{"부엌", "b u eo k"},
		{"부엌도", "b u eo g d o"},
		{"값", "g a b"},
		{"값이", "g a b s i"},
		{"삶", "s a m"},
		{"젊은", "j eo l m eu n"},
		{"여덟", "yeo d eo l"},
		{"넓게", "n eo b g e"},
		{"밟다", "b a l d a"},
		{"읊다", "eu b d a"},
		{"핥다", "h a l d a"},
		{"몫", "m o g"},
		{"외곬", "oe g o l"},
		{"밥물", "b a m m u l"},
		{"감나무", "g a m m a m u"},
		{"얘기", "yae g i"},
		{"걔", "g ye"},
		{"얘", "ye"},
		{"궤도", "g oe d o"},
		{"웨", "we"},
		{"국 밥", "g u g sp b a b"},
	}

	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			if got := Pronounce(tt.word).String(); got != tt.want {
				t.Errorf("Pronounce(%q) = %q, want %q", tt.word, got, tt.want)
			}
		})
	}
}

func TestApplyIdempotent(t *testing.T) {
	words := []string{
		"안녕", "읽히다", "깨끗하다", "괜찮아", "밥먹다", "값이",
		"얘기", "궤도", "끊다", "국 밥", "있다", "싫어",
	}
	for _, w := range words {
		once := Apply(phone.Transcribe(w).String())
		twice := Apply(once)
		if once != twice {
			t.Errorf("Apply not idempotent for %q: %q then %q", w, once, twice)
		}
	}
}

func TestApplyIdempotentAllSyllablePairs(t *testing.T) {
	// every coda against a spread of onsets and vowels
	for f := 0; f < hangul.NumFinals; f++ {
		for i := 0; i < hangul.NumInitials; i++ {
			for _, m := range []int{0, 3, 15, 20} {
				a, _ := hangul.Compose(hangul.Syllable{Initial: 2, Medial: 0, Final: f})
				b, _ := hangul.Compose(hangul.Syllable{Initial: i, Medial: m})
				word := string([]rune{a, b})

				once := Pronounce(word).String()
				if twice := Apply(once); twice != once {
					t.Fatalf(
						"Apply not idempotent for %q: %q then %q",
						word, once, twice,
					)
				}
			}
		}
	}
}

func TestApplyIdempotentRandomSequences(t *testing.T) {
	tokens := phone.UnderlyingInventory()
	rng := rand.New(rand.NewPCG(7, 11))

	for range 20000 {
		parts := make([]string, 1+rng.IntN(6))
		for i := range parts {
			parts[i] = string(tokens[rng.IntN(len(tokens))])
		}
		in := strings.Join(parts, " ")

		once := Apply(in)
		if twice := Apply(once); twice != once {
			t.Fatalf("Apply not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestApplyReachesFixedPoint(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		// aspiration needs a following vowel
		{"n lh d jj", "n l d jj"},
		{"n lh d a", "n l t a"},
		{"a nh g i", "a n k i"},
		// nasalization feeds h-assimilation
		{"h d n a", "n n n a"},
		{"h d bs n", "n n m m"},
		{"a h d n a", "a n n n a"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Apply(tt.in); got != tt.want {
				t.Errorf("Apply(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestApplyNormalizesWhitespace(t *testing.T) {
	if got := Apply("  a  n   n yeo ng "); got != "a n n yeo ng" {
		t.Errorf("Apply() = %q", got)
	}
	if got := Apply(""); got != "" {
		t.Errorf("Apply(\"\") = %q, want empty", got)
	}
}

func TestEndOfSequenceIsNotConsonant(t *testing.T) {
	// tense and aspirated codas survive at the end of a word
	for _, in := range []string{"gg o ch", "b a gg", "b u eo k"} {
		if got := Apply(in); got != in {
			t.Errorf("Apply(%q) = %q, want unchanged", in, got)
		}
	}
	if got := Apply("b a k sp"); got != "b a g sp" {
		t.Errorf("Apply() before sp = %q, want %q", got, "b a g sp")
	}
}

func TestApplySequenceDoesNotMutateInput(t *testing.T) {
	in := phone.Sequence{"i", "ss", "d", "a"}
	orig := slices.Clone(in)
	out := Default().ApplySequence(in)
	if !slices.Equal(in, orig) {
		t.Errorf("input mutated: %v", in)
	}
	if out.String() != "i d a" {
		t.Errorf("ApplySequence() = %q, want %q", out.String(), "i d a")
	}
}

func TestCustomEngine(t *testing.T) {
	e := NewEngine(Stage{
		Name: "demo",
		Rules: []Rule{{
			Name:    "a-to-o",
			Match:   []Set{setOf("a")},
			When:    beforeConsonant,
			Rewrite: to("o"),
		}},
	})
	if got := e.Apply("a n a"); got != "o n a" {
		t.Errorf("Apply() = %q, want %q", got, "o n a")
	}
	if names := e.Stages(); !slices.Equal(names, []string{"demo"}) {
		t.Errorf("Stages() = %v", names)
	}
}

func TestDefaultStageOrder(t *testing.T) {
	want := []string{
		"coda-neutralization",
		"cluster-simplification",
		"h-interaction",
		"nasalization",
		"liquid-alternation",
		"cleanup",
	}
	if got := Default().Stages(); !slices.Equal(got, want) {
		t.Errorf("Stages() = %v, want %v", got, want)
	}
}

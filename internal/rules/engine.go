package rules

import (
	"slices"

	"github.com/mgpai22/kalign/internal/phone"
)

// Stage is a named group of rules applied in order.
type Stage struct {
	Name  string
	Rules []Rule
}

// Engine applies stages in order; each rule sees the output of the rules
// before it. An Engine holds no mutable state and is safe for concurrent use.
type Engine struct {
	stages []Stage
}

// NewEngine builds an engine from custom stages.
func NewEngine(stages ...Stage) *Engine {
	return &Engine{stages: stages}
}

// Default returns an engine running DefaultStages.
func Default() *Engine {
	return defaultEngine
}

var defaultEngine = NewEngine(DefaultStages()...)

// Stages returns the engine's stage names in application order.
func (e *Engine) Stages() []string {
	names := make([]string, len(e.stages))
	for i, s := range e.stages {
		names[i] = s.Name
	}
	return names
}

// maxPasses bounds the rerun of all stages; the default stages settle in
// three.
const maxPasses = 8

// ApplySequence rewrites seq and returns a new sequence; seq is not modified.
// The stages are rerun until a pass changes nothing, since a later stage can
// create input for an earlier one (nasalization turns "h d n" into "h n n").
func (e *Engine) ApplySequence(seq phone.Sequence) phone.Sequence {
	out := slices.Clone([]phone.Phone(seq))
	for range maxPasses {
		next := e.pass(slices.Clone(out))
		if slices.Equal(next, out) {
			break
		}
		out = next
	}
	if len(out) == 0 {
		return nil
	}
	return phone.Sequence(out)
}

func (e *Engine) pass(seq []phone.Phone) []phone.Phone {
	for _, stage := range e.stages {
		for _, r := range stage.Rules {
			seq = r.apply(seq)
		}
	}
	return seq
}

// Apply rewrites a space-separated phone string. Extra whitespace in the
// input is normalized to single spaces.
func (e *Engine) Apply(s string) string {
	return e.ApplySequence(phone.ParseSequence(s)).String()
}

// Apply runs the default engine over a space-separated phone string.
func Apply(s string) string {
	return defaultEngine.Apply(s)
}

// Pronounce transcribes text and realizes it with the default engine.
func Pronounce(text string) phone.Sequence {
	return defaultEngine.ApplySequence(phone.Transcribe(text))
}

// Package rules realizes underlying phone sequences as surface
// pronunciations through ordered, context-sensitive rewrite stages.
package rules

import (
	"slices"

	"github.com/mgpai22/kalign/internal/phone"
)

// Set is a set of phones a rule position accepts.
type Set map[phone.Phone]struct{}

func setOf(ps ...phone.Phone) Set {
	s := make(Set, len(ps))
	for _, p := range ps {
		s[p] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s Set) Has(p phone.Phone) bool {
	_, ok := s[p]
	return ok
}

// Context is the neighbourhood of a matched run of tokens.
type Context struct {
	seq        []phone.Phone
	start, end int
}

// Prev returns the token before the match.
func (c Context) Prev() (phone.Phone, bool) {
	if c.start == 0 {
		return "", false
	}
	return c.seq[c.start-1], true
}

// Next returns the token after the match.
func (c Context) Next() (phone.Phone, bool) {
	if c.end >= len(c.seq) {
		return "", false
	}
	return c.seq[c.end], true
}

// First reports whether the match starts the sequence.
func (c Context) First() bool { return c.start == 0 }

// Last reports whether the match ends the sequence.
func (c Context) Last() bool { return c.end == len(c.seq) }

// Predicate decides whether a rule fires in a given context.
type Predicate func(Context) bool

// Direction is the order in which a rule visits positions. Rules keyed on
// the right context scan backward and rules keyed on the left scan forward,
// so a rewrite is visible to the next position examined.
type Direction int

const (
	Backward Direction = iota
	Forward
)

// Rule rewrites a run of consecutive tokens, one Set per token, when its
// predicate holds. Rewrite receives a copy of the matched tokens.
type Rule struct {
	Name    string
	Match   []Set
	When    Predicate
	Rewrite func(matched []phone.Phone) []phone.Phone
	Dir     Direction
}

func (r Rule) matchAt(seq []phone.Phone, i int) bool {
	for k, s := range r.Match {
		if !s.Has(seq[i+k]) {
			return false
		}
	}
	if r.When == nil {
		return true
	}
	return r.When(Context{seq: seq, start: i, end: i + len(r.Match)})
}

func (r Rule) rewriteAt(seq []phone.Phone, i int) []phone.Phone {
	n := len(r.Match)
	rep := r.Rewrite(slices.Clone(seq[i : i+n]))
	return slices.Replace(seq, i, i+n, rep...)
}

// apply runs one pass of the rule over seq.
func (r Rule) apply(seq []phone.Phone) []phone.Phone {
	n := len(r.Match)
	if n == 0 {
		return seq
	}

	if r.Dir == Backward {
		for i := len(seq) - n; i >= 0; i-- {
			if i+n > len(seq) {
				continue
			}
			if r.matchAt(seq, i) {
				seq = r.rewriteAt(seq, i)
			}
		}
		return seq
	}

	for i := 0; i+n <= len(seq); {
		if !r.matchAt(seq, i) {
			i++
			continue
		}
		before := len(seq)
		seq = r.rewriteAt(seq, i)
		// a shrinking rewrite pulls the next token into position i
		if len(seq) >= before {
			i++
		}
	}
	return seq
}

// rewrite helpers

func to(ps ...phone.Phone) func([]phone.Phone) []phone.Phone {
	return func([]phone.Phone) []phone.Phone {
		return slices.Clone(ps)
	}
}

func mapFirst(m map[phone.Phone]phone.Phone) func([]phone.Phone) []phone.Phone {
	return func(matched []phone.Phone) []phone.Phone {
		return []phone.Phone{m[matched[0]]}
	}
}

func drop([]phone.Phone) []phone.Phone { return nil }

// predicates

func beforeVowel(c Context) bool {
	next, ok := c.Next()
	return ok && phone.IsVowel(next)
}

// beforeConsonant is true when a non-vowel token follows. The end of the
// sequence does not count.
func beforeConsonant(c Context) bool {
	next, ok := c.Next()
	return ok && !phone.IsVowel(next)
}

func atEnd(c Context) bool { return c.Last() }

func before(s Set) Predicate {
	return func(c Context) bool {
		next, ok := c.Next()
		return ok && s.Has(next)
	}
}

func after(s Set) Predicate {
	return func(c Context) bool {
		prev, ok := c.Prev()
		return ok && s.Has(prev)
	}
}

func afterVowelOr(s Set) Predicate {
	return func(c Context) bool {
		prev, ok := c.Prev()
		return ok && (phone.IsVowel(prev) || s.Has(prev))
	}
}

func afterVowel(c Context) bool {
	prev, ok := c.Prev()
	return ok && phone.IsVowel(prev)
}

func allOf(ps ...Predicate) Predicate {
	return func(c Context) bool {
		for _, p := range ps {
			if !p(c) {
				return false
			}
		}
		return true
	}
}

func anyOf(ps ...Predicate) Predicate {
	return func(c Context) bool {
		for _, p := range ps {
			if p(c) {
				return true
			}
		}
		return false
	}
}

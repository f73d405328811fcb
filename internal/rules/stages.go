package rules

import "github.com/mgpai22/kalign/internal/phone"

var (
	nasals     = setOf("n", "m")
	sonorants  = setOf("m", "n", "ng", "l", "r")
	laxStops   = setOf("g", "d", "b", "j")
	aspirated  = map[phone.Phone]phone.Phone{"g": "k", "d": "t", "b": "p", "j": "ch"}
	hOnly      = setOf("h")
	sibilants  = setOf("s", "ss")
	tenseOrAsp = map[phone.Phone]phone.Phone{
		"gg": "g", "dd": "d", "bb": "b", "jj": "j",
		"k": "g", "t": "d", "p": "b", "ch": "j",
	}
)

func keysOf(m map[phone.Phone]phone.Phone) Set {
	s := make(Set, len(m))
	for k := range m {
		s[k] = struct{}{}
	}
	return s
}

func codaNeutralization() Stage {
	return Stage{
		Name: "coda-neutralization",
		Rules: []Rule{
			{
				Name:    "lax-before-consonant",
				Match:   []Set{keysOf(tenseOrAsp)},
				When:    beforeConsonant,
				Rewrite: mapFirst(tenseOrAsp),
			},
			{
				Name:    "sibilant-before-nasal",
				Match:   []Set{sibilants},
				When:    before(nasals),
				Rewrite: to("n"),
			},
			{
				Name:    "sibilant-before-consonant",
				Match:   []Set{sibilants},
				When:    beforeConsonant,
				Rewrite: to("d"),
			},
			{
				Name:    "collapse-dd",
				Match:   []Set{setOf("d"), setOf("d")},
				Rewrite: to("d"),
				Dir:     Forward,
			},
		},
	}
}

// clusterRules expands a coda cluster into records for the vowel, consonant
// and end-of-sequence contexts, in that order.
func clusterRules(cluster phone.Phone, vowel, consonant, end []phone.Phone) []Rule {
	m := []Set{setOf(cluster)}
	name := string(cluster)
	return []Rule{
		{Name: name + "-before-vowel", Match: m, When: beforeVowel, Rewrite: to(vowel...)},
		{Name: name + "-before-consonant", Match: m, When: beforeConsonant, Rewrite: to(consonant...)},
		{Name: name + "-final", Match: m, When: atEnd, Rewrite: to(end...)},
	}
}

func finalCluster(cluster phone.Phone, out phone.Phone) Rule {
	return Rule{
		Name:    string(cluster) + "-final",
		Match:   []Set{setOf(cluster)},
		When:    atEnd,
		Rewrite: to(out),
	}
}

func clusterSimplification() Stage {
	var rs []Rule
	rs = append(rs, clusterRules("gs", []phone.Phone{"g", "s"}, []phone.Phone{"g"}, []phone.Phone{"g"})...)
	rs = append(rs, clusterRules("nj", []phone.Phone{"n", "j"}, []phone.Phone{"n"}, []phone.Phone{"n"})...)

	// lg keeps both members before h so the stop can aspirate
	rs = append(rs,
		Rule{
			Name:    "lg-before-vowel-or-h",
			Match:   []Set{setOf("lg")},
			When:    anyOf(beforeVowel, before(hOnly)),
			Rewrite: to("l", "g"),
		},
		Rule{Name: "lg-before-consonant", Match: []Set{setOf("lg")}, When: beforeConsonant, Rewrite: to("g")},
		finalCluster("lg", "g"),
	)

	rs = append(rs, clusterRules("lm", []phone.Phone{"l", "m"}, []phone.Phone{"m"}, []phone.Phone{"m"})...)

	rs = append(rs,
		Rule{Name: "lb-before-vowel", Match: []Set{setOf("lb")}, When: beforeVowel, Rewrite: to("l", "b")},
		Rule{Name: "lb-before-g", Match: []Set{setOf("lb")}, When: before(setOf("g")), Rewrite: to("b")},
		Rule{Name: "lb-before-consonant", Match: []Set{setOf("lb")}, When: beforeConsonant, Rewrite: to("l")},
		finalCluster("lb", "l"),
	)

	rs = append(rs, clusterRules("ls", []phone.Phone{"l", "s"}, []phone.Phone{"l"}, []phone.Phone{"l"})...)
	rs = append(rs, clusterRules("lt", []phone.Phone{"l", "t"}, []phone.Phone{"l"}, []phone.Phone{"l"})...)
	rs = append(rs, clusterRules("lp", []phone.Phone{"l", "p"}, []phone.Phone{"b"}, []phone.Phone{"b"})...)
	rs = append(rs, clusterRules("bs", []phone.Phone{"b", "s"}, []phone.Phone{"b"}, []phone.Phone{"b"})...)

	return Stage{Name: "cluster-simplification", Rules: rs}
}

// hClusterRules realizes nh and lh: h drops before a vowel and aspirates a
// following d, g or j when a vowel comes next.
func hClusterRules(cluster, keep phone.Phone) []Rule {
	m := setOf(cluster)
	name := string(cluster)
	return []Rule{
		{Name: name + "-before-vowel", Match: []Set{m}, When: beforeVowel, Rewrite: to(keep)},
		{
			Name:  name + "-aspirate",
			Match: []Set{m, setOf("d", "g", "j")},
			When:  beforeVowel,
			Rewrite: func(matched []phone.Phone) []phone.Phone {
				return []phone.Phone{keep, aspirated[matched[1]]}
			},
		},
		{Name: name + "-simplify", Match: []Set{m}, Rewrite: to(keep)},
	}
}

func hInteraction() Stage {
	rs := []Rule{
		{
			Name:  "stop-h-aspiration",
			Match: []Set{laxStops, hOnly},
			When:  beforeVowel,
			Rewrite: func(matched []phone.Phone) []phone.Phone {
				return []phone.Phone{aspirated[matched[0]]}
			},
		},
		{
			Name:  "h-stop-aspiration",
			Match: []Set{hOnly, laxStops},
			When:  beforeVowel,
			Rewrite: func(matched []phone.Phone) []phone.Phone {
				return []phone.Phone{aspirated[matched[1]]}
			},
		},
	}
	rs = append(rs, hClusterRules("nh", "n")...)
	rs = append(rs, hClusterRules("lh", "l")...)
	rs = append(rs,
		Rule{
			Name:    "h-deletion",
			Match:   []Set{hOnly},
			When:    allOf(afterVowelOr(sonorants), beforeVowel),
			Rewrite: drop,
			Dir:     Forward,
		},
		Rule{
			Name:    "h-nasal-assimilation",
			Match:   []Set{hOnly, setOf("n")},
			Rewrite: to("n", "n"),
			Dir:     Forward,
		},
	)
	return Stage{Name: "h-interaction", Rules: rs}
}

func nasalization() Stage {
	obstruents := map[phone.Phone]phone.Phone{
		"d": "n", "dd": "n", "t": "n",
		"b": "m", "bb": "m", "p": "m",
	}
	return Stage{
		Name: "nasalization",
		Rules: []Rule{
			{
				Name:    "stop-before-nasal",
				Match:   []Set{keysOf(obstruents)},
				When:    before(nasals),
				Rewrite: mapFirst(obstruents),
			},
			{
				Name:    "n-after-m",
				Match:   []Set{setOf("n")},
				When:    after(setOf("m")),
				Rewrite: to("m"),
				Dir:     Forward,
			},
		},
	}
}

func liquidAlternation() Stage {
	return Stage{
		Name: "liquid-alternation",
		Rules: []Rule{
			{
				Name:    "lateralization",
				Match:   []Set{setOf("l"), setOf("r")},
				Rewrite: to("l", "l"),
				Dir:     Forward,
			},
			{
				Name:    "intervocalic-flap",
				Match:   []Set{setOf("l")},
				When:    allOf(afterVowel, beforeVowel),
				Rewrite: to("r"),
			},
		},
	}
}

func cleanup() Stage {
	return Stage{
		Name: "cleanup",
		Rules: []Rule{
			finalCluster("lm", "m"),
			finalCluster("lg", "g"),
			finalCluster("gs", "g"),
			{
				Name:  "yae-to-ye",
				Match: []Set{setOf("yae")},
				When: func(c Context) bool {
					return !c.First() || c.Last()
				},
				Rewrite: to("ye"),
			},
			{
				Name:  "we-to-oe",
				Match: []Set{setOf("we")},
				When: func(c Context) bool {
					return !c.First() && !c.Last()
				},
				Rewrite: to("oe"),
			},
		},
	}
}

// DefaultStages returns the standard pronunciation pipeline.
func DefaultStages() []Stage {
	return []Stage{
		codaNeutralization(),
		clusterSimplification(),
		hInteraction(),
		nasalization(),
		liquidAlternation(),
		cleanup(),
	}
}

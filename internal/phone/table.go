package phone

import (
	"slices"

	"github.com/mgpai22/kalign/internal/hangul"
)

// FinalSuffix marks a consonant key as coda position.
const FinalSuffix = "_f"

// FinalKey returns the table key of a coda jamo.
func FinalKey(symbol string) string {
	return symbol + FinalSuffix
}

var initialPhones = [hangul.NumInitials]Phone{
	"g", "gg", "n", "d", "dd", "r", "m", "b", "bb", "s",
	"ss", "", "j", "jj", "ch", "k", "t", "p", "h",
}

var medialPhones = [hangul.NumMedials]Phone{
	"a", "ae", "ya", "yae", "eo", "e", "yeo", "ye", "o", "wa",
	"wae", "oe", "yo", "u", "wo", "we", "wi", "yu", "eu", "ui",
	"i",
}

// coda phones are the underlying forms; clusters are realized by the rules
var finalPhones = [hangul.NumFinals]Phone{
	"", "g", "gg", "gs", "n", "nj", "nh", "d", "l", "lg",
	"lm", "lb", "ls", "lt", "lp", "lh", "m", "b", "bs", "s",
	"ss", "ng", "j", "ch", "k", "t", "p", "h",
}

var (
	table      map[string]Phone
	vowels     map[Phone]struct{}
	clusters   map[Phone]struct{}
	inventory  []Phone
	underlying []Phone
)

func init() {
	table = make(map[string]Phone, hangul.NumInitials+hangul.NumMedials+hangul.NumFinals)
	vowels = make(map[Phone]struct{}, hangul.NumMedials)
	clusters = make(map[Phone]struct{})
	seen := map[Phone]struct{}{Silence: {}, Pause: {}}

	for i, sym := range hangul.Initials {
		table[sym] = initialPhones[i]
		seen[initialPhones[i]] = struct{}{}
	}
	for i, sym := range hangul.Medials {
		table[sym] = medialPhones[i]
		vowels[medialPhones[i]] = struct{}{}
		seen[medialPhones[i]] = struct{}{}
	}
	surface := make(map[Phone]struct{}, len(seen))
	for p := range seen {
		surface[p] = struct{}{}
	}
	for i := 1; i < hangul.NumFinals; i++ {
		p := finalPhones[i]
		table[FinalKey(hangul.Finals[i])] = p
		// a coda that is neither an onset phone nor l/ng is a cluster
		if _, ok := surface[p]; !ok && p != "l" && p != "ng" {
			clusters[p] = struct{}{}
		}
		seen[p] = struct{}{}
	}

	delete(seen, "")
	for p := range seen {
		underlying = append(underlying, p)
		if _, ok := clusters[p]; !ok {
			inventory = append(inventory, p)
		}
	}
	slices.Sort(inventory)
	slices.Sort(underlying)
}

// Lookup returns the phone for a jamo key. Coda consonants use FinalKey.
// The zero onset ㅇ is present and maps to the empty phone.
func Lookup(key string) (Phone, bool) {
	p, ok := table[key]
	return p, ok
}

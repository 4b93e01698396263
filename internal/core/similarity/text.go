// Package similarity holds the string, set and numeric similarity functions
// used to compare entities. Every function returns a value in [0, 1].
package similarity

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fixed scores of the equality ladder.
const (
	ExactScore           = 1.0
	CaseInsensitiveScore = 0.95
	NormalizedScore      = 0.9
	InitialsScore        = 0.85
	ContainmentScore     = 0.7
)

var stopwords = map[string]bool{
	"of": true, "and": true, "the": true, "for": true, "&": true, "de": true,
}

// Canonical trims and applies NFC so visually identical labels compare equal.
func Canonical(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// Fold applies NFKC and Unicode case folding.
func Fold(s string) string {
	return cases.Fold().String(norm.NFKC.String(strings.TrimSpace(s)))
}

var stripPunct = runes.Remove(runes.Predicate(func(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}))

// Normalize folds s, removes punctuation and symbols and collapses runs of
// whitespace.
func Normalize(s string) string {
	out, _, err := transform.String(stripPunct, Fold(s))
	if err != nil {
		out = Fold(s)
	}
	return strings.Join(strings.Fields(out), " ")
}

// Tokenize splits the folded text on anything that is not a letter or digit.
func Tokenize(s string) []string {
	return strings.FieldsFunc(Fold(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

func ExactMatch(a, b string) float64 {
	if Canonical(a) == Canonical(b) {
		return ExactScore
	}
	return 0
}

func CaseInsensitiveMatch(a, b string) float64 {
	if Fold(a) == Fold(b) {
		return CaseInsensitiveScore
	}
	return 0
}

// NormalizedMatch ignores case, punctuation and whitespace.
func NormalizedMatch(a, b string) float64 {
	na := strings.ReplaceAll(Normalize(a), " ", "")
	nb := strings.ReplaceAll(Normalize(b), " ", "")
	if na != "" && na == nb {
		return NormalizedScore
	}
	return 0
}

// Abbreviation scores InitialsScore when the shorter string spells the
// initials of the longer one ("IBM" / "International Business Machines"),
// ContainmentScore when one literally contains the other, and 0 otherwise.
func Abbreviation(a, b string) float64 {
	short, long := a, b
	if len([]rune(short)) > len([]rune(long)) {
		short, long = long, short
	}
	compact := strings.Join(Tokenize(short), "")
	if compact == "" {
		return 0
	}

	words := Tokenize(long)
	if len(words) >= 2 {
		var all, content strings.Builder
		for _, w := range words {
			first := string([]rune(w)[0])
			all.WriteString(first)
			if !stopwords[w] {
				content.WriteString(first)
			}
		}
		if compact == all.String() || compact == content.String() {
			return InitialsScore
		}
	}

	fs, fl := Normalize(short), Normalize(long)
	if fs != "" && fs != fl && strings.Contains(fl, fs) {
		return ContainmentScore
	}
	return 0
}

// TokenJaccard is the Jaccard index of the token sets.
func TokenJaccard(a, b string) float64 {
	return jaccard(toSet(Tokenize(a)), toSet(Tokenize(b)))
}

// NGramJaccard is the Jaccard index of character n-grams of the folded
// strings. Strings shorter than n contribute themselves as a single gram.
func NGramJaccard(a, b string, n int) float64 {
	if n <= 0 {
		n = 3
	}
	return jaccard(ngrams(Normalize(a), n), ngrams(Normalize(b), n))
}

func ngrams(s string, n int) map[string]struct{} {
	r := []rune(s)
	set := make(map[string]struct{})
	if len(r) == 0 {
		return set
	}
	if len(r) < n {
		set[s] = struct{}{}
		return set
	}
	for i := 0; i+n <= len(r); i++ {
		set[string(r[i:i+n])] = struct{}{}
	}
	return set
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[it] = struct{}{}
	}
	return set
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for k := range a {
		if _, ok := b[k]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

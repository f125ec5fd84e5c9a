package grading

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Comparator decides whether a free-text answer matches an expected string.
type Comparator interface {
	Equal(expected, given string) bool
}

// ComparatorFunc adapts a plain function to Comparator.
type ComparatorFunc func(expected, given string) bool

func (f ComparatorFunc) Equal(expected, given string) bool { return f(expected, given) }

const (
	PolicyExact  = "exact"
	PolicyFolded = "folded"
	PolicyFuzzy  = "fuzzy"
)

// Exact compares normalized strings for equality.
var Exact Comparator = ComparatorFunc(func(expected, given string) bool {
	return Normalize(expected) == Normalize(given)
})

// Folded applies Unicode case folding and NFKC before comparing, so that
// typographic apostrophes and full-width letters match their plain forms.
var Folded Comparator = ComparatorFunc(func(expected, given string) bool {
	return fold(expected) == fold(given)
})

// Fuzzy accepts an exact match or a normalized edit distance within maxEdit.
func Fuzzy(maxEdit int) Comparator {
	return ComparatorFunc(func(expected, given string) bool {
		ne, ng := Normalize(expected), Normalize(given)
		if ne == ng {
			return true
		}
		return ng != "" && maxEdit > 0 && levenshtein(ne, ng) <= maxEdit
	})
}

var apostrophes = strings.NewReplacer("’", "'", "‘", "'", "ʼ", "'")

func fold(s string) string {
	s = norm.NFKC.String(strings.TrimSpace(s))
	return cases.Fold().String(apostrophes.Replace(s))
}

// Comparators is a registry of comparator policies keyed by name.
type Comparators map[string]Comparator

// DefaultComparators returns the built-in policies.
func DefaultComparators() Comparators {
	return Comparators{
		PolicyExact:  Exact,
		PolicyFolded: Folded,
		PolicyFuzzy:  Fuzzy(1),
	}
}

// Lookup resolves a policy name; the empty name is the exact policy.
func (c Comparators) Lookup(name string) (Comparator, bool) {
	if name == "" {
		name = PolicyExact
	}
	cmp, ok := c[name]
	return cmp, ok && cmp != nil
}

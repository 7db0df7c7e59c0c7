// Package ngram generates contiguous n-grams and order-insensitive n-terms
// from token sequences.
package ngram

import (
	"slices"
	"strings"
)

// keySep joins gram members into a comparable key. It cannot occur in
// space-split tokens of lowercased text.
const keySep = "\x1f"

// Gram is one window of tokens.
type Gram []string

// Key returns a comparable encoding of the gram.
func (g Gram) Key() string {
	return strings.Join(g, keySep)
}

// NGrams returns the contiguous windows of length n in order.
// The result has max(0, len(tokens)-n+1) entries; n < 1 yields none.
func NGrams(tokens []string, n int) []Gram {
	if n < 1 || len(tokens) < n {
		return []Gram{}
	}
	grams := make([]Gram, 0, len(tokens)-n+1)
	for i := 0; i+n <= len(tokens); i++ {
		grams = append(grams, Gram(tokens[i:i+n:i+n]))
	}
	return grams
}

// NTerms returns the distinct windows of length n with member order
// discarded. Each window is canonicalized by sorting its members by value;
// entries appear in order of first occurrence.
func NTerms(tokens []string, n int) []Gram {
	grams := NGrams(tokens, n)
	seen := make(map[string]struct{}, len(grams))
	terms := make([]Gram, 0, len(grams))
	for _, g := range grams {
		term := slices.Clone(g)
		slices.Sort(term)
		key := term.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		terms = append(terms, term)
	}
	return terms
}

// Keys returns the comparable keys of grams.
func Keys(grams []Gram) []string {
	keys := make([]string, len(grams))
	for i, g := range grams {
		keys[i] = g.Key()
	}
	return keys
}

// Package textnorm turns paper text fields into token sequences: raw
// space-split tokens, stop-word filtered tokens, and stemmed tokens.
package textnorm

import (
	"strings"
)

// StopWords reports whether a token is a stop word.
type StopWords interface {
	Contains(token string) bool
}

// Stemmer maps a token to its stem.
type Stemmer interface {
	Stem(token string) string
}

// Variants holds the three normalization states of one text field.
type Variants struct {
	Raw     []string // Lowercased, split on single spaces
	NoStop  []string // Raw with stop words removed, order preserved
	Stemmed []string // NoStop mapped through the stemmer, one stem per token
}

// Normalizer produces token variants using injected language resources.
type Normalizer struct {
	stop StopWords
	stem Stemmer
}

// NewNormalizer creates a normalizer from a stop-word set and stemmer.
func NewNormalizer(stop StopWords, stem Stemmer) *Normalizer {
	return &Normalizer{stop: stop, stem: stem}
}

// Tokenize lowercases text and splits it on the space character only.
// Consecutive spaces produce empty tokens.
func Tokenize(text string) []string {
	return strings.Split(strings.ToLower(text), " ")
}

// Normalize returns all three variants of text.
func (n *Normalizer) Normalize(text string) Variants {
	raw := Tokenize(text)

	noStop := make([]string, 0, len(raw))
	for _, tok := range raw {
		if !n.stop.Contains(tok) {
			noStop = append(noStop, tok)
		}
	}

	stemmed := make([]string, len(noStop))
	for i, tok := range noStop {
		stemmed[i] = n.stem.Stem(tok)
	}

	return Variants{Raw: raw, NoStop: noStop, Stemmed: stemmed}
}

// WordSet is a stop-word set backed by a map.
type WordSet map[string]struct{}

// NewWordSet builds a WordSet from words.
func NewWordSet(words ...string) WordSet {
	s := make(WordSet, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

// Contains implements StopWords.
func (s WordSet) Contains(token string) bool {
	_, ok := s[token]
	return ok
}

// IdentityStemmer leaves tokens unchanged.
type IdentityStemmer struct{}

// Stem implements Stemmer.
func (IdentityStemmer) Stem(token string) string { return token }

package textnorm

import (
	"fmt"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/registry"

	// Register English stop words and the Porter stemmer.
	_ "github.com/blevesearch/bleve/v2/analysis/lang/en"
	_ "github.com/blevesearch/bleve/v2/analysis/token/porter"
)

// Built-in Bleve component names.
const (
	englishStopFilterName = "stop_en"
	porterStemmerName     = "stemmer_porter"
)

// FilterStopWords adapts a Bleve stop-token filter to StopWords.
type FilterStopWords struct {
	filter analysis.TokenFilter
}

// Contains implements StopWords.
func (f *FilterStopWords) Contains(token string) bool {
	out := f.filter.Filter(analysis.TokenStream{{Term: []byte(token)}})
	return len(out) == 0
}

// FilterStemmer adapts a Bleve stemming token filter to Stemmer.
type FilterStemmer struct {
	filter analysis.TokenFilter
}

// Stem implements Stemmer.
func (f *FilterStemmer) Stem(token string) string {
	out := f.filter.Filter(analysis.TokenStream{{Term: []byte(token)}})
	if len(out) == 0 {
		return token
	}
	return string(out[0].Term)
}

// EnglishStopWords returns Bleve's English stop-word filter.
func EnglishStopWords(cache *registry.Cache) (*FilterStopWords, error) {
	filter, err := cache.TokenFilterNamed(englishStopFilterName)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", englishStopFilterName, err)
	}
	return &FilterStopWords{filter: filter}, nil
}

// PorterStemmer returns Bleve's Porter stemmer filter.
func PorterStemmer(cache *registry.Cache) (*FilterStemmer, error) {
	filter, err := cache.TokenFilterNamed(porterStemmerName)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", porterStemmerName, err)
	}
	return &FilterStemmer{filter: filter}, nil
}

// LoadStopWordsFile reads a stop-word list, one word per line. Lines may
// carry "#" or "|" comments as in Snowball word lists.
func LoadStopWordsFile(path string) (WordSet, error) {
	tokens := analysis.NewTokenMap()
	if err := tokens.LoadFile(path); err != nil {
		return nil, fmt.Errorf("loading stop words: %w", err)
	}
	set := make(WordSet, len(tokens))
	for w := range tokens {
		set[w] = struct{}{}
	}
	return set, nil
}

// NewEnglishNormalizer builds a normalizer on Bleve's English stop words and
// Porter stemmer. A non-empty stopWordsFile replaces the built-in list.
func NewEnglishNormalizer(stopWordsFile string) (*Normalizer, error) {
	cache := registry.NewCache()

	stem, err := PorterStemmer(cache)
	if err != nil {
		return nil, err
	}

	if stopWordsFile != "" {
		stop, err := LoadStopWordsFile(stopWordsFile)
		if err != nil {
			return nil, err
		}
		return NewNormalizer(stop, stem), nil
	}

	stop, err := EnglishStopWords(cache)
	if err != nil {
		return nil, err
	}
	return NewNormalizer(stop, stem), nil
}

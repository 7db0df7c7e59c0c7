// Package feature assembles one fixed-width feature vector per citation
// pair from the token caches and the citation graphs.
package feature

import (
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/matsen/citefeat/internal/textnorm"
)

// Kind identifies how a column is computed.
type Kind int

const (
	KindLexical Kind = iota
	KindAdamicAdar
	KindMeanAuthorCitation
	KindYearGap
)

// Gram selects the token representation a lexical column compares.
type Gram int

const (
	Tokens Gram = iota
	NGrams
	NTerms
)

// Metric selects the set-overlap coefficient.
type Metric int

const (
	Jaccard Metric = iota
	Dice
)

func (m Metric) String() string {
	if m == Dice {
		return "dice"
	}
	return "jaccard"
}

// Column describes one position of the feature vector.
type Column struct {
	Name string `json:"name"`
	Kind Kind   `json:"-"`

	// Lexical columns only.
	Field   textnorm.Field   `json:"-"`
	Variant textnorm.Variant `json:"-"`
	Gram    Gram             `json:"-"`
	N       int              `json:"-"`
	Metric  Metric           `json:"-"`
}

// Schema is an ordered, immutable list of columns.
type Schema struct {
	columns []Column
	byName  map[string]int
}

// NewSchema validates column names and builds a schema.
func NewSchema(columns []Column) (*Schema, error) {
	byName := make(map[string]int, len(columns))
	for i, c := range columns {
		if c.Name == "" {
			return nil, fmt.Errorf("column %d has no name", i)
		}
		if _, dup := byName[c.Name]; dup {
			return nil, fmt.Errorf("duplicate column %q", c.Name)
		}
		if c.Kind == KindLexical && c.Gram != Tokens && c.N < 2 {
			return nil, fmt.Errorf("column %q: n-gram width must be >= 2", c.Name)
		}
		byName[c.Name] = i
	}
	return &Schema{columns: append([]Column(nil), columns...), byName: byName}, nil
}

var gramNames = map[int][2]string{
	2: {"bigram", "biterm"},
	3: {"trigram", "triterm"},
	4: {"fourgram", "fourterm"},
}

func lexical(field textnorm.Field, variant textnorm.Variant, gram Gram, n int, metric Metric) Column {
	parts := []string{field.String()}
	if variant != textnorm.Raw {
		parts = append(parts, variant.String())
	}
	switch gram {
	case NGrams:
		parts = append(parts, gramNames[n][0])
	case NTerms:
		parts = append(parts, gramNames[n][1])
	}
	parts = append(parts, metric.String())
	return Column{
		Name:    strings.Join(parts, "_"),
		Kind:    KindLexical,
		Field:   field,
		Variant: variant,
		Gram:    gram,
		N:       n,
		Metric:  metric,
	}
}

// DefaultColumns returns the standard column order:
//
//	0-7    title: raw and stop-word filtered, tokens and bigrams, jaccard/dice
//	8-21   abstract raw: jaccard over tokens, 2-4 grams, 2-4 terms; then dice
//	22-35  abstract stop-word filtered, same layout
//	36-39  stemmed title and abstract tokens, jaccard/dice
//	40     adamic_adar
//	41     mean_author_citation
//	42     year_gap
func DefaultColumns() []Column {
	var cols []Column

	for _, v := range []textnorm.Variant{textnorm.Raw, textnorm.NoStop} {
		cols = append(cols,
			lexical(textnorm.Title, v, Tokens, 1, Jaccard),
			lexical(textnorm.Title, v, Tokens, 1, Dice),
			lexical(textnorm.Title, v, NGrams, 2, Jaccard),
			lexical(textnorm.Title, v, NGrams, 2, Dice),
		)
	}

	for _, v := range []textnorm.Variant{textnorm.Raw, textnorm.NoStop} {
		for _, m := range []Metric{Jaccard, Dice} {
			cols = append(cols, lexical(textnorm.Abstract, v, Tokens, 1, m))
			for n := 2; n <= 4; n++ {
				cols = append(cols, lexical(textnorm.Abstract, v, NGrams, n, m))
			}
			for n := 2; n <= 4; n++ {
				cols = append(cols, lexical(textnorm.Abstract, v, NTerms, n, m))
			}
		}
	}

	for _, f := range []textnorm.Field{textnorm.Title, textnorm.Abstract} {
		cols = append(cols,
			lexical(f, textnorm.Stemmed, Tokens, 1, Jaccard),
			lexical(f, textnorm.Stemmed, Tokens, 1, Dice),
		)
	}

	return append(cols,
		Column{Name: "adamic_adar", Kind: KindAdamicAdar},
		Column{Name: "mean_author_citation", Kind: KindMeanAuthorCitation},
		Column{Name: "year_gap", Kind: KindYearGap},
	)
}

// DefaultSchema returns the schema of DefaultColumns.
func DefaultSchema() *Schema {
	s, err := NewSchema(DefaultColumns())
	if err != nil {
		panic(err)
	}
	return s
}

// Len returns the number of columns.
func (s *Schema) Len() int { return len(s.columns) }

// Columns returns the columns in order. Callers must not modify the slice.
func (s *Schema) Columns() []Column { return s.columns }

// Names returns the column names in order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.columns))
	for i, c := range s.columns {
		names[i] = c.Name
	}
	return names
}

// Index returns the position of a named column.
func (s *Schema) Index(name string) (int, bool) {
	i, ok := s.byName[name]
	return i, ok
}

// Fingerprint is a stable hash of the column names and their order.
// Matrices with equal fingerprints have the same column identity.
func (s *Schema) Fingerprint() string {
	return FingerprintNames(s.Names())
}

// FingerprintNames hashes an ordered list of column names the way
// Schema.Fingerprint does, so stored column lists can be checked.
func FingerprintNames(names []string) string {
	sum := blake2b.Sum256([]byte(strings.Join(names, "\n")))
	return hex.EncodeToString(sum[:16])
}

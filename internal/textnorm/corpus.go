package textnorm

import (
	"fmt"

	"github.com/matsen/citefeat/internal/reference"
)

// Field selects a text field of a paper.
type Field int

const (
	Title Field = iota
	Abstract
)

func (f Field) String() string {
	switch f {
	case Title:
		return "title"
	case Abstract:
		return "abstract"
	default:
		return fmt.Sprintf("Field(%d)", int(f))
	}
}

// Variant selects a normalization state.
type Variant int

const (
	Raw Variant = iota
	NoStop
	Stemmed
)

func (v Variant) String() string {
	switch v {
	case Raw:
		return "raw"
	case NoStop:
		return "nostop"
	case Stemmed:
		return "stem"
	default:
		return fmt.Sprintf("Variant(%d)", int(v))
	}
}

// Select returns the token sequence for a variant.
func (v Variants) Select(variant Variant) []string {
	switch variant {
	case NoStop:
		return v.NoStop
	case Stemmed:
		return v.Stemmed
	default:
		return v.Raw
	}
}

// Corpus caches the token variants of every paper, indexed by catalog row.
// It is written once by Build and read concurrently afterwards.
type Corpus struct {
	titles    []Variants
	abstracts []Variants
}

// Build normalizes the title and abstract of every catalog paper.
// progress, if non-nil, is called after each paper with (done, total).
func Build(catalog *reference.Catalog, n *Normalizer, progress func(done, total int)) *Corpus {
	total := catalog.Len()
	c := &Corpus{
		titles:    make([]Variants, total),
		abstracts: make([]Variants, total),
	}
	for i, p := range catalog.Papers() {
		c.titles[i] = n.Normalize(p.Title)
		c.abstracts[i] = n.Normalize(p.Abstract)
		if progress != nil {
			progress(i+1, total)
		}
	}
	return c
}

// Len returns the number of cached papers.
func (c *Corpus) Len() int {
	return len(c.titles)
}

// Field returns the cached variants of a field for a catalog row.
func (c *Corpus) Field(row int, field Field) Variants {
	if field == Abstract {
		return c.abstracts[row]
	}
	return c.titles[row]
}

// Tokens returns one cached token sequence.
func (c *Corpus) Tokens(row int, field Field, variant Variant) []string {
	return c.Field(row, field).Select(variant)
}

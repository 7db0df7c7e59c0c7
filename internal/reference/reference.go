// Package reference defines the core domain types for papers and citation pairs.
package reference

import (
	"errors"
	"fmt"
)

// Paper represents one row of the node-information table.
type Paper struct {
	ID       int     `json:"id"`
	Year     int     `json:"year"`
	Title    string  `json:"title"`
	Authors  Authors `json:"authors"`
	Journal  string  `json:"journal,omitempty"`
	Abstract string  `json:"abstract"` // Lowercase, punctuation-free except intra-word dashes
}

// Pair is an ordered (source, target) candidate citation.
type Pair struct {
	SourceID int `json:"source"`
	TargetID int `json:"target"`

	// Label is only meaningful when Labeled is set (training data).
	Label   int  `json:"label,omitempty"`
	Labeled bool `json:"labeled,omitempty"`
}

// IsPositive reports whether the pair is a labeled true citation.
func (p Pair) IsPositive() bool {
	return p.Labeled && p.Label == 1
}

// Positives returns the labeled true citations in input order.
func Positives(pairs []Pair) []Pair {
	var out []Pair
	for _, p := range pairs {
		if p.IsPositive() {
			out = append(out, p)
		}
	}
	return out
}

// ErrDuplicatePaperID is returned when the node table repeats an ID.
var ErrDuplicatePaperID = errors.New("duplicate paper id")

// Catalog holds the papers of a run and their ID -> row index mapping.
// It is built once and never mutated afterwards.
type Catalog struct {
	papers   []Paper
	position map[int]int
}

// NewCatalog indexes papers by ID in input order.
func NewCatalog(papers []Paper) (*Catalog, error) {
	position := make(map[int]int, len(papers))
	for i, p := range papers {
		if _, dup := position[p.ID]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicatePaperID, p.ID)
		}
		position[p.ID] = i
	}
	return &Catalog{papers: papers, position: position}, nil
}

// Len returns the number of papers.
func (c *Catalog) Len() int {
	return len(c.papers)
}

// Papers returns all papers in row order. Callers must not modify the slice.
func (c *Catalog) Papers() []Paper {
	return c.papers
}

// Position returns the row index of a paper ID.
func (c *Catalog) Position(id int) (int, bool) {
	i, ok := c.position[id]
	return i, ok
}

// At returns the paper at a row index.
func (c *Catalog) At(i int) *Paper {
	return &c.papers[i]
}

// Lookup returns the paper with the given ID, or nil.
func (c *Catalog) Lookup(id int) *Paper {
	i, ok := c.position[id]
	if !ok {
		return nil
	}
	return &c.papers[i]
}

// Has reports whether the catalog contains the ID.
func (c *Catalog) Has(id int) bool {
	_, ok := c.position[id]
	return ok
}

package citegraph

import (
	"errors"
	"fmt"

	"github.com/matsen/citefeat/internal/reference"
)

// Graphs bundles the frozen graphs of one run.
type Graphs struct {
	Papers  *PaperGraph
	Authors *AuthorGraph

	// MissingAuthorPositives counts positive pairs that contributed no
	// author lines because one side lacked author data.
	MissingAuthorPositives int
}

// BuildPaperGraph registers every catalog paper and adds one edge per
// positive pair.
func BuildPaperGraph(catalog *reference.Catalog, positives []reference.Pair) (*PaperGraph, error) {
	ids := make([]int, catalog.Len())
	for i, p := range catalog.Papers() {
		ids[i] = p.ID
	}

	g := NewPaperGraph()
	if err := g.AddVertices(ids); err != nil {
		return nil, fmt.Errorf("adding paper vertices: %w", err)
	}
	if err := g.BuildIndex(); err != nil {
		return nil, fmt.Errorf("indexing papers: %w", err)
	}
	if err := g.AddEdges(positives); err != nil {
		return nil, fmt.Errorf("adding citation edges: %w", err)
	}
	g.Freeze()
	return g, nil
}

// BuildAuthorGraph registers every author in the catalog and adds the
// author cross product of each positive pair.
func BuildAuthorGraph(catalog *reference.Catalog, positives []reference.Pair) (*AuthorGraph, int, error) {
	g := NewAuthorGraph()
	if err := g.AddVertices(AuthorNames(catalog)); err != nil {
		return nil, 0, fmt.Errorf("adding author vertices: %w", err)
	}
	if err := g.BuildIndex(); err != nil {
		return nil, 0, fmt.Errorf("indexing authors: %w", err)
	}

	missing := 0
	var lines []AuthorPair
	for _, pair := range positives {
		citing := catalog.Lookup(pair.SourceID)
		cited := catalog.Lookup(pair.TargetID)
		if citing == nil || cited == nil {
			return nil, 0, fmt.Errorf("%w: pair %d -> %d", ErrUnknownVertex, pair.SourceID, pair.TargetID)
		}
		edges, err := g.CitationEdges(citing.Authors, cited.Authors)
		if errors.Is(err, ErrMissingAuthorData) {
			missing++
			continue
		}
		if err != nil {
			return nil, 0, fmt.Errorf("author edges for %d -> %d: %w", pair.SourceID, pair.TargetID, err)
		}
		lines = append(lines, edges...)
	}

	if err := g.AddEdges(lines); err != nil {
		return nil, 0, fmt.Errorf("adding author edges: %w", err)
	}
	g.Freeze()
	return g, missing, nil
}

// Build constructs both graphs from the catalog and the positive
// training pairs.
func Build(catalog *reference.Catalog, positives []reference.Pair) (*Graphs, error) {
	papers, err := BuildPaperGraph(catalog, positives)
	if err != nil {
		return nil, err
	}
	authors, missing, err := BuildAuthorGraph(catalog, positives)
	if err != nil {
		return nil, err
	}
	return &Graphs{Papers: papers, Authors: authors, MissingAuthorPositives: missing}, nil
}

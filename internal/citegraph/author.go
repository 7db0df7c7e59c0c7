package citegraph

import (
	"errors"
	"sort"

	"github.com/matsen/citefeat/internal/reference"
)

// ErrMissingAuthorData is returned when a paper's author field is absent.
// It is a data-shape condition, unlike the structural errors.
var ErrMissingAuthorData = errors.New("missing author data")

// AuthorPair is a directed (citing author, cited author) vertex pair.
type AuthorPair struct {
	From int64
	To   int64
}

// AuthorGraph is the directed author co-citation multigraph. Every
// citing -> cited paper edge contributes one line per author pair, so
// parallel lines record repeated co-citations.
type AuthorGraph struct {
	*labeled[string]
}

// NewAuthorGraph creates an empty author graph.
func NewAuthorGraph() *AuthorGraph {
	return &AuthorGraph{labeled: newLabeled[string]()}
}

// AuthorNames returns the distinct non-empty author names in the catalog,
// sorted. Papers with missing author data contribute nothing.
func AuthorNames(catalog *reference.Catalog) []string {
	seen := make(map[string]struct{})
	for _, p := range catalog.Papers() {
		if !p.Authors.Known {
			continue
		}
		for _, name := range p.Authors.Names {
			if name != "" {
				seen[name] = struct{}{}
			}
		}
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// AddVertices registers the deduplicated, non-empty author names.
// It may be called once.
func (a *AuthorGraph) AddVertices(names []string) error {
	seen := make(map[string]struct{}, len(names))
	unique := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		unique = append(unique, n)
	}
	return a.addVertices(unique)
}

// BuildIndex builds the author name -> vertex index mapping.
func (a *AuthorGraph) BuildIndex() error {
	return a.buildIndex()
}

// Freeze makes the graph read-only.
func (a *AuthorGraph) Freeze() {
	a.freeze()
}

// Index returns the vertex index of an author name.
func (a *AuthorGraph) Index(name string) (int64, error) {
	return a.lookup(name)
}

// Name returns the author name of a vertex index.
func (a *AuthorGraph) Name(i int64) (string, error) {
	if err := a.checkIndex(i); err != nil {
		return "", err
	}
	return a.labels[i], nil
}

// VertexCount returns the number of authors.
func (a *AuthorGraph) VertexCount() int { return len(a.labels) }

// EdgeCount returns the number of author lines, with multiplicity.
func (a *AuthorGraph) EdgeCount() int { return a.edges }

// CitationEdges returns the cross product of citing and cited author
// indices, skipping empty names. It returns ErrMissingAuthorData if either
// side's author list is unknown; a known but empty product yields an empty,
// non-nil slice.
func (a *AuthorGraph) CitationEdges(citing, cited reference.Authors) ([]AuthorPair, error) {
	if err := a.requireIndex(); err != nil {
		return nil, err
	}
	if !citing.Known || !cited.Known {
		return nil, ErrMissingAuthorData
	}

	from, err := a.indices(citing.NonEmpty())
	if err != nil {
		return nil, err
	}
	to, err := a.indices(cited.NonEmpty())
	if err != nil {
		return nil, err
	}

	pairs := make([]AuthorPair, 0, len(from)*len(to))
	for _, f := range from {
		for _, t := range to {
			pairs = append(pairs, AuthorPair{From: f, To: t})
		}
	}
	return pairs, nil
}

func (a *AuthorGraph) indices(names []string) ([]int64, error) {
	out := make([]int64, len(names))
	for i, n := range names {
		idx, err := a.lookup(n)
		if err != nil {
			return nil, err
		}
		out[i] = idx
	}
	return out, nil
}

// AddEdges inserts every pair as a directed line. Duplicates are kept.
func (a *AuthorGraph) AddEdges(edges []AuthorPair) error {
	for _, e := range edges {
		if err := a.addLine(e.From, e.To); err != nil {
			return err
		}
	}
	return nil
}

// CountOutgoing returns how many lines run from one author to another.
func (a *AuthorGraph) CountOutgoing(from, to int64) (int, error) {
	if err := a.checkIndex(from); err != nil {
		return 0, err
	}
	if err := a.checkIndex(to); err != nil {
		return 0, err
	}
	return a.multiplicity(from, to), nil
}

// AuthorEdge is a distinct author citation with its multiplicity.
type AuthorEdge struct {
	From  string
	To    string
	Count int
}

// Edges lists the distinct author citations in vertex order.
func (a *AuthorGraph) Edges() []AuthorEdge {
	var out []AuthorEdge
	a.distinctLines(func(u, v int64, n int) {
		out = append(out, AuthorEdge{From: a.labels[u], To: a.labels[v], Count: n})
	})
	return out
}

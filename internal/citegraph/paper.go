package citegraph

import (
	"math"

	"github.com/matsen/citefeat/internal/reference"
)

// PaperGraph is the directed citation graph over paper IDs.
type PaperGraph struct {
	*labeled[int]
}

// NewPaperGraph creates an empty paper graph.
func NewPaperGraph() *PaperGraph {
	return &PaperGraph{labeled: newLabeled[int]()}
}

// AddVertices registers every paper ID. It may be called once.
func (p *PaperGraph) AddVertices(ids []int) error {
	return p.addVertices(ids)
}

// BuildIndex builds the paper ID -> vertex index mapping.
func (p *PaperGraph) BuildIndex() error {
	return p.buildIndex()
}

// Freeze makes the graph read-only.
func (p *PaperGraph) Freeze() {
	p.freeze()
}

// Index returns the vertex index of a paper ID.
func (p *PaperGraph) Index(id int) (int64, error) {
	return p.lookup(id)
}

// AddEdges inserts one source -> target edge per pair.
func (p *PaperGraph) AddEdges(pairs []reference.Pair) error {
	for _, pair := range pairs {
		from, err := p.lookup(pair.SourceID)
		if err != nil {
			return err
		}
		to, err := p.lookup(pair.TargetID)
		if err != nil {
			return err
		}
		if err := p.addLine(from, to); err != nil {
			return err
		}
	}
	return nil
}

// VertexCount returns the number of papers.
func (p *PaperGraph) VertexCount() int { return len(p.labels) }

// EdgeCount returns the number of citation edges, with multiplicity.
func (p *PaperGraph) EdgeCount() int { return p.edges }

// Neighbors returns the distinct neighbors of a paper.
func (p *PaperGraph) Neighbors(id int, mode Mode) ([]int, error) {
	v, err := p.lookup(id)
	if err != nil {
		return nil, err
	}
	idx := p.neighbors(v, mode)
	ids := make([]int, len(idx))
	for i, n := range idx {
		ids[i] = p.labels[n]
	}
	return ids, nil
}

// Degree returns the number of edges incident to a paper in the given mode.
func (p *PaperGraph) Degree(id int, mode Mode) (int, error) {
	v, err := p.lookup(id)
	if err != nil {
		return 0, err
	}
	return p.degree(v, mode), nil
}

// AdamicAdarResult is the result of an Adamic-Adar query.
type AdamicAdarResult struct {
	Score float64
	// Common is the number of shared neighbors.
	Common int
	// Singletons counts shared neighbors of degree 1. They contribute 0,
	// since 1/ln(1) is undefined.
	Singletons int
}

// AdamicAdar sums 1/ln(degree(v)) over the common neighbors v of two
// papers. Neighbors and degrees follow mode.
func (p *PaperGraph) AdamicAdar(source, target int, mode Mode) (AdamicAdarResult, error) {
	i, err := p.lookup(source)
	if err != nil {
		return AdamicAdarResult{}, err
	}
	j, err := p.lookup(target)
	if err != nil {
		return AdamicAdarResult{}, err
	}

	ni, nj := p.neighbors(i, mode), p.neighbors(j, mode)

	var res AdamicAdarResult
	for a, b := 0, 0; a < len(ni) && b < len(nj); {
		switch {
		case ni[a] < nj[b]:
			a++
		case ni[a] > nj[b]:
			b++
		default:
			v := ni[a]
			a++
			b++
			res.Common++
			d := p.degree(v, mode)
			if d <= 1 {
				res.Singletons++
				continue
			}
			res.Score += 1 / math.Log(float64(d))
		}
	}
	return res, nil
}

// PaperEdge is a distinct citation with its multiplicity.
type PaperEdge struct {
	SourceID int
	TargetID int
	Count    int
}

// Edges lists the distinct citations in vertex order.
func (p *PaperGraph) Edges() []PaperEdge {
	var out []PaperEdge
	p.distinctLines(func(u, v int64, n int) {
		out = append(out, PaperEdge{SourceID: p.labels[u], TargetID: p.labels[v], Count: n})
	})
	return out
}

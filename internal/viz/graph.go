package viz

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matsen/citefeat/internal/citegraph"
	"github.com/matsen/citefeat/internal/reference"
)

// FromPaperGraph builds GraphData from a citation graph. Papers with fewer
// than minDegree incident edges (counting multiplicity) are left out, along
// with their edges; isolated papers are always left out.
func FromPaperGraph(catalog *reference.Catalog, g *citegraph.PaperGraph, minDegree int) (*GraphData, error) {
	minDegree = max(minDegree, 1)

	keep := make(map[int]bool)
	var nodes []Node
	for _, p := range catalog.Papers() {
		d, err := g.Degree(p.ID, citegraph.All)
		if err != nil {
			return nil, fmt.Errorf("degree of paper %d: %w", p.ID, err)
		}
		if d < minDegree {
			continue
		}
		keep[p.ID] = true
		nodes = append(nodes, newPaperNode(p, d))
	}

	var edges []Edge
	for _, e := range g.Edges() {
		if keep[e.SourceID] && keep[e.TargetID] {
			edges = append(edges, Edge{
				Source: strconv.Itoa(e.SourceID),
				Target: strconv.Itoa(e.TargetID),
				Count:  e.Count,
			})
		}
	}

	return &GraphData{Nodes: nodes, Edges: edges}, nil
}

// FromAuthorGraph builds GraphData from an author citation graph, with the
// same degree filter as FromPaperGraph.
func FromAuthorGraph(g *citegraph.AuthorGraph, minDegree int) *GraphData {
	minDegree = max(minDegree, 1)

	all := g.Edges()
	degree := make(map[string]int)
	for _, e := range all {
		degree[e.From] += e.Count
		degree[e.To] += e.Count
	}

	var nodes []Node
	for i := 0; i < g.VertexCount(); i++ {
		name, err := g.Name(int64(i))
		if err != nil {
			continue
		}
		if degree[name] < minDegree {
			continue
		}
		nodes = append(nodes, Node{ID: name, Type: NodeTypeAuthor, Label: name, Degree: degree[name]})
	}

	var edges []Edge
	for _, e := range all {
		if degree[e.From] >= minDegree && degree[e.To] >= minDegree {
			edges = append(edges, Edge{Source: e.From, Target: e.To, Count: e.Count})
		}
	}

	return &GraphData{Nodes: nodes, Edges: edges}
}

// newPaperNode creates a visualization node from a paper.
func newPaperNode(p reference.Paper, degree int) Node {
	return Node{
		ID:      strconv.Itoa(p.ID),
		Type:    NodeTypePaper,
		Label:   strconv.Itoa(p.ID),
		Title:   p.Title,
		Authors: strings.Join(p.Authors.NonEmpty(), ", "),
		Year:    p.Year,
		Journal: p.Journal,
		Degree:  degree,
	}
}

// Package viz renders citation graphs for Cytoscape.js.
package viz

// Node types.
const (
	NodeTypePaper  = "paper"
	NodeTypeAuthor = "author"
)

// GraphData contains all data needed to render the visualization.
type GraphData struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node represents a paper or author in the graph.
type Node struct {
	ID   string `json:"id"`
	Type string `json:"type"` // "paper" or "author"

	// Display
	Label string `json:"label"`

	// Paper-specific fields (for tooltips)
	Title   string `json:"title,omitempty"`
	Authors string `json:"authors,omitempty"`
	Year    int    `json:"year,omitempty"`
	Journal string `json:"journal,omitempty"`

	// Sizing
	Degree int `json:"degree"`
}

// Edge is a directed citation with its multiplicity.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Count  int    `json:"count"`
}

// IsEmpty returns true if the graph has no nodes.
func (g *GraphData) IsEmpty() bool {
	return len(g.Nodes) == 0
}

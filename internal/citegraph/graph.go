// Package citegraph holds the paper citation graph and the author
// co-citation graph. Both are directed multigraphs with a vertex-label ->
// index mapping that is built once, after all vertices are registered.
//
// Lifecycle: AddVertices, BuildIndex, AddEdges (any number of times), Freeze.
// Queries are valid from BuildIndex on; after Freeze the graph is read-only
// and safe for concurrent readers.
package citegraph

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/multi"
)

// Structural errors. These indicate call-order bugs and abort a batch.
var (
	ErrVerticesAdded   = errors.New("vertices already added")
	ErrNoVertices      = errors.New("vertices must be added before building the index")
	ErrAlreadyIndexed  = errors.New("index already built")
	ErrNotIndexed      = errors.New("graph queried before the index was built")
	ErrFrozen          = errors.New("graph is frozen")
	ErrUnknownVertex   = errors.New("unknown vertex")
	ErrDuplicateVertex = errors.New("duplicate vertex")
)

// Mode selects which edge direction neighbor and degree queries follow.
type Mode int

const (
	Out Mode = iota
	In
	All
)

func (m Mode) String() string {
	switch m {
	case Out:
		return "out"
	case In:
		return "in"
	case All:
		return "all"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses "out", "in" or "all".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "out":
		return Out, nil
	case "in":
		return In, nil
	case "all", "":
		return All, nil
	}
	return All, fmt.Errorf("invalid mode %q (want out, in or all)", s)
}

type phase int

const (
	phaseEmpty phase = iota
	phaseVertices
	phaseIndexed
	phaseFrozen
)

// labeled is a directed multigraph whose vertices carry comparable labels.
// Vertex indices are dense, in registration order.
type labeled[K comparable] struct {
	g      *multi.DirectedGraph
	labels []K
	index  map[K]int64
	phase  phase

	outDeg []int
	inDeg  []int
	edges  int

	// adj[mode][v] holds the distinct neighbors of v, ascending. Filled by
	// freeze.
	adj [All + 1][][]int64
}

func newLabeled[K comparable]() *labeled[K] {
	return &labeled[K]{g: multi.NewDirectedGraph()}
}

func (l *labeled[K]) addVertices(labels []K) error {
	if l.phase != phaseEmpty {
		return ErrVerticesAdded
	}
	seen := make(map[K]struct{}, len(labels))
	for _, k := range labels {
		if _, dup := seen[k]; dup {
			return fmt.Errorf("%w: %v", ErrDuplicateVertex, k)
		}
		seen[k] = struct{}{}
	}

	l.labels = append([]K(nil), labels...)
	for i := range l.labels {
		l.g.AddNode(multi.Node(int64(i)))
	}
	l.outDeg = make([]int, len(l.labels))
	l.inDeg = make([]int, len(l.labels))
	l.phase = phaseVertices
	return nil
}

func (l *labeled[K]) buildIndex() error {
	switch l.phase {
	case phaseEmpty:
		return ErrNoVertices
	case phaseIndexed, phaseFrozen:
		return ErrAlreadyIndexed
	}
	l.index = make(map[K]int64, len(l.labels))
	for i, k := range l.labels {
		l.index[k] = int64(i)
	}
	l.phase = phaseIndexed
	return nil
}

func (l *labeled[K]) requireIndex() error {
	if l.phase < phaseIndexed {
		return ErrNotIndexed
	}
	return nil
}

func (l *labeled[K]) lookup(k K) (int64, error) {
	if err := l.requireIndex(); err != nil {
		return 0, err
	}
	i, ok := l.index[k]
	if !ok {
		return 0, fmt.Errorf("%w: %v", ErrUnknownVertex, k)
	}
	return i, nil
}

func (l *labeled[K]) checkIndex(i int64) error {
	if err := l.requireIndex(); err != nil {
		return err
	}
	if i < 0 || i >= int64(len(l.labels)) {
		return fmt.Errorf("%w: index %d", ErrUnknownVertex, i)
	}
	return nil
}

// addLine inserts one directed line. Parallel lines and self loops are kept.
func (l *labeled[K]) addLine(from, to int64) error {
	if l.phase == phaseFrozen {
		return ErrFrozen
	}
	if err := l.checkIndex(from); err != nil {
		return err
	}
	if err := l.checkIndex(to); err != nil {
		return err
	}
	l.g.SetLine(l.g.NewLine(l.g.Node(from), l.g.Node(to)))
	l.outDeg[from]++
	l.inDeg[to]++
	l.edges++
	return nil
}

func (l *labeled[K]) freeze() {
	if l.phase != phaseIndexed {
		return
	}
	for _, mode := range []Mode{Out, In, All} {
		lists := make([][]int64, len(l.labels))
		for v := range lists {
			lists[v] = l.collectNeighbors(int64(v), mode)
		}
		l.adj[mode] = lists
	}
	l.phase = phaseFrozen
}

// multiplicity counts the lines from u to v.
func (l *labeled[K]) multiplicity(u, v int64) int {
	return countLines(l.g.Lines(u, v))
}

func countLines(it graph.Lines) int {
	if it == nil {
		return 0
	}
	n := 0
	for it.Next() {
		n++
	}
	return n
}

// neighbors returns the distinct neighbor indices of v, ascending. After
// freeze the result is shared and must not be modified.
func (l *labeled[K]) neighbors(v int64, mode Mode) []int64 {
	if l.phase == phaseFrozen && mode >= Out && mode <= All {
		return l.adj[mode][v]
	}
	return l.collectNeighbors(v, mode)
}

func (l *labeled[K]) collectNeighbors(v int64, mode Mode) []int64 {
	set := make(map[int64]struct{})
	if mode == Out || mode == All {
		collect(set, l.g.From(v))
	}
	if mode == In || mode == All {
		collect(set, l.g.To(v))
	}
	out := make([]int64, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func collect(set map[int64]struct{}, it graph.Nodes) {
	if it == nil {
		return
	}
	for it.Next() {
		set[it.Node().ID()] = struct{}{}
	}
}

// degree counts incident lines with multiplicity. In All mode a self loop
// counts twice.
func (l *labeled[K]) degree(v int64, mode Mode) int {
	switch mode {
	case Out:
		return l.outDeg[v]
	case In:
		return l.inDeg[v]
	default:
		return l.outDeg[v] + l.inDeg[v]
	}
}

// distinctLines calls fn once per ordered vertex pair joined by at least
// one line, in ascending index order, with the pair's multiplicity.
func (l *labeled[K]) distinctLines(fn func(u, v int64, n int)) {
	for u := range l.labels {
		for _, v := range l.neighbors(int64(u), Out) {
			fn(int64(u), v, l.multiplicity(int64(u), v))
		}
	}
}

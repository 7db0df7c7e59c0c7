package citegraph

import (
	"errors"
	"reflect"
	"testing"

	"github.com/matsen/citefeat/internal/reference"
)

func testCatalog(t *testing.T) *reference.Catalog {
	t.Helper()
	c, err := reference.NewCatalog([]reference.Paper{
		{ID: 1, Authors: reference.SomeAuthors("alice", "bob")},
		{ID: 2, Authors: reference.SomeAuthors("carol")},
		{ID: 3, Authors: reference.NoAuthors()},
		{ID: 4, Authors: reference.SomeAuthors("", "alice")},
		{ID: 5, Authors: reference.SomeAuthors("")},
	})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func indexedAuthorGraph(t *testing.T, names ...string) *AuthorGraph {
	t.Helper()
	g := NewAuthorGraph()
	if err := g.AddVertices(names); err != nil {
		t.Fatalf("AddVertices() error = %v", err)
	}
	if err := g.BuildIndex(); err != nil {
		t.Fatalf("BuildIndex() error = %v", err)
	}
	return g
}

func TestAuthorNames(t *testing.T) {
	got := AuthorNames(testCatalog(t))
	want := []string{"alice", "bob", "carol"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("AuthorNames() = %v, want %v", got, want)
	}
}

func TestAuthorGraph_AddVerticesDedupes(t *testing.T) {
	g := indexedAuthorGraph(t, "a", "", "b", "a")
	if g.VertexCount() != 2 {
		t.Errorf("VertexCount() = %d, want 2", g.VertexCount())
	}
	if _, err := g.Index(""); !errors.Is(err, ErrUnknownVertex) {
		t.Errorf("Index(\"\") = %v, want ErrUnknownVertex", err)
	}
}

func TestAuthorGraph_CitationEdges(t *testing.T) {
	g := indexedAuthorGraph(t, "alice", "bob", "carol")
	idx := func(name string) int64 {
		i, err := g.Index(name)
		if err != nil {
			t.Fatal(err)
		}
		return i
	}

	tests := []struct {
		name    string
		citing  reference.Authors
		cited   reference.Authors
		want    []AuthorPair
		wantErr error
	}{
		{
			name:   "cross product",
			citing: reference.SomeAuthors("alice", "bob"),
			cited:  reference.SomeAuthors("carol"),
			want:   []AuthorPair{{idx("alice"), idx("carol")}, {idx("bob"), idx("carol")}},
		},
		{
			name:   "empty names skipped",
			citing: reference.SomeAuthors("", "alice"),
			cited:  reference.SomeAuthors("bob", ""),
			want:   []AuthorPair{{idx("alice"), idx("bob")}},
		},
		{
			name:   "no shared pairs is empty, not missing",
			citing: reference.SomeAuthors(""),
			cited:  reference.SomeAuthors("bob"),
			want:   []AuthorPair{},
		},
		{
			name:    "missing citing authors",
			citing:  reference.NoAuthors(),
			cited:   reference.SomeAuthors("bob"),
			wantErr: ErrMissingAuthorData,
		},
		{
			name:    "missing cited authors",
			citing:  reference.SomeAuthors("bob"),
			cited:   reference.NoAuthors(),
			wantErr: ErrMissingAuthorData,
		},
		{
			name:    "unknown author",
			citing:  reference.SomeAuthors("dave"),
			cited:   reference.SomeAuthors("bob"),
			wantErr: ErrUnknownVertex,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := g.CitationEdges(tt.citing, tt.cited)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("CitationEdges() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				if got != nil {
					t.Errorf("CitationEdges() = %v, want nil on error", got)
				}
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("CitationEdges() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAuthorGraph_CitationEdgesBeforeIndex(t *testing.T) {
	g := NewAuthorGraph()
	if err := g.AddVertices([]string{"a"}); err != nil {
		t.Fatal(err)
	}
	_, err := g.CitationEdges(reference.SomeAuthors("a"), reference.SomeAuthors("a"))
	if !errors.Is(err, ErrNotIndexed) {
		t.Errorf("CitationEdges() = %v, want ErrNotIndexed", err)
	}
}

func TestAuthorGraph_CountOutgoingMultiplicity(t *testing.T) {
	g := indexedAuthorGraph(t, "a", "b")
	a, _ := g.Index("a")
	b, _ := g.Index("b")

	if err := g.AddEdges([]AuthorPair{{a, b}, {a, b}, {b, a}, {a, a}}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		from, to int64
		want     int
	}{
		{a, b, 2},
		{b, a, 1},
		{a, a, 1},
		{b, b, 0},
	}
	for _, tt := range tests {
		got, err := g.CountOutgoing(tt.from, tt.to)
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("CountOutgoing(%d, %d) = %d, want %d", tt.from, tt.to, got, tt.want)
		}
	}

	if _, err := g.CountOutgoing(a, 99); !errors.Is(err, ErrUnknownVertex) {
		t.Errorf("CountOutgoing(a, 99) = %v, want ErrUnknownVertex", err)
	}
}

func TestBuild(t *testing.T) {
	catalog := testCatalog(t)
	positives := pairs([2]int{1, 2}, [2]int{1, 2}, [2]int{3, 1}, [2]int{4, 2})

	graphs, err := Build(catalog, positives)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if graphs.Papers.VertexCount() != 5 || graphs.Papers.EdgeCount() != 4 {
		t.Errorf("paper graph = %d vertices, %d edges, want 5, 4",
			graphs.Papers.VertexCount(), graphs.Papers.EdgeCount())
	}
	if graphs.MissingAuthorPositives != 1 {
		t.Errorf("MissingAuthorPositives = %d, want 1", graphs.MissingAuthorPositives)
	}

	alice, _ := graphs.Authors.Index("alice")
	carol, _ := graphs.Authors.Index("carol")
	// 1->2 twice and 4->2 once, each with alice citing carol.
	n, err := graphs.Authors.CountOutgoing(alice, carol)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("CountOutgoing(alice, carol) = %d, want 3", n)
	}
	// (1->2) x2 gives alice,bob -> carol = 4 lines, plus alice -> carol from 4.
	if graphs.Authors.EdgeCount() != 5 {
		t.Errorf("author EdgeCount() = %d, want 5", graphs.Authors.EdgeCount())
	}

	if err := graphs.Authors.AddEdges([]AuthorPair{{alice, carol}}); !errors.Is(err, ErrFrozen) {
		t.Errorf("AddEdges() after Build = %v, want ErrFrozen", err)
	}
}

func TestAuthorGraph_Edges(t *testing.T) {
	g := indexedAuthorGraph(t, "a", "b")
	a, _ := g.Index("a")
	b, _ := g.Index("b")
	if err := g.AddEdges([]AuthorPair{{a, b}, {b, a}, {a, b}}); err != nil {
		t.Fatal(err)
	}

	got := g.Edges()
	want := []AuthorEdge{{From: "a", To: "b", Count: 2}, {From: "b", To: "a", Count: 1}}
	if len(got) != len(want) {
		t.Fatalf("Edges() = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Edges()[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

package feature

import (
	"testing"

	"github.com/matsen/citefeat/internal/textnorm"
)

func TestDefaultSchema_Order(t *testing.T) {
	s := DefaultSchema()
	if s.Len() != 43 {
		t.Fatalf("Len() = %d, want 43", s.Len())
	}

	tests := []struct {
		index int
		name  string
	}{
		{0, "title_jaccard"},
		{1, "title_dice"},
		{2, "title_bigram_jaccard"},
		{3, "title_bigram_dice"},
		{4, "title_nostop_jaccard"},
		{7, "title_nostop_bigram_dice"},
		{8, "abstract_jaccard"},
		{9, "abstract_bigram_jaccard"},
		{11, "abstract_fourgram_jaccard"},
		{12, "abstract_biterm_jaccard"},
		{14, "abstract_fourterm_jaccard"},
		{15, "abstract_dice"},
		{21, "abstract_fourterm_dice"},
		{22, "abstract_nostop_jaccard"},
		{29, "abstract_nostop_dice"},
		{35, "abstract_nostop_fourterm_dice"},
		{36, "title_stem_jaccard"},
		{39, "abstract_stem_dice"},
		{40, "adamic_adar"},
		{41, "mean_author_citation"},
		{42, "year_gap"},
	}

	names := s.Names()
	for _, tt := range tests {
		if names[tt.index] != tt.name {
			t.Errorf("column %d = %q, want %q", tt.index, names[tt.index], tt.name)
		}
		if i, ok := s.Index(tt.name); !ok || i != tt.index {
			t.Errorf("Index(%q) = %d, %v, want %d", tt.name, i, ok, tt.index)
		}
	}
}

func TestDefaultSchema_LexicalAttributes(t *testing.T) {
	s := DefaultSchema()
	i, _ := s.Index("abstract_nostop_triterm_dice")
	col := s.Columns()[i]
	if col.Kind != KindLexical || col.Field != textnorm.Abstract || col.Variant != textnorm.NoStop ||
		col.Gram != NTerms || col.N != 3 || col.Metric != Dice {
		t.Errorf("abstract_nostop_triterm_dice = %+v", col)
	}
}

func TestSchema_Fingerprint(t *testing.T) {
	a := DefaultSchema().Fingerprint()
	b := DefaultSchema().Fingerprint()
	if a != b {
		t.Errorf("fingerprint not stable: %s vs %s", a, b)
	}
	if len(a) != 32 {
		t.Errorf("fingerprint length = %d, want 32", len(a))
	}

	cols := DefaultColumns()
	cols[0], cols[1] = cols[1], cols[0]
	swapped, err := NewSchema(cols)
	if err != nil {
		t.Fatal(err)
	}
	if swapped.Fingerprint() == a {
		t.Error("reordering columns did not change the fingerprint")
	}
	if got := FingerprintNames(DefaultSchema().Names()); got != a {
		t.Errorf("FingerprintNames() = %s, want %s", got, a)
	}
}

func TestNewSchema_Invalid(t *testing.T) {
	tests := []struct {
		name string
		cols []Column
	}{
		{"empty name", []Column{{Kind: KindYearGap}}},
		{"duplicate", []Column{{Name: "x", Kind: KindYearGap}, {Name: "x", Kind: KindAdamicAdar}}},
		{"ngram width", []Column{{Name: "g", Kind: KindLexical, Gram: NGrams, N: 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewSchema(tt.cols); err == nil {
				t.Error("NewSchema() should fail")
			}
		})
	}
}

func TestMatrix(t *testing.T) {
	s, err := NewSchema([]Column{{Name: "a", Kind: KindYearGap}, {Name: "b", Kind: KindAdamicAdar}})
	if err != nil {
		t.Fatal(err)
	}
	m := NewMatrix(s, 3)
	m.Set(1, 1, 5)
	m.Row(2)[0] = 7

	if m.Rows() != 3 || m.Cols() != 2 {
		t.Errorf("shape = %dx%d, want 3x2", m.Rows(), m.Cols())
	}
	if m.At(1, 1) != 5 || m.At(2, 0) != 7 || m.At(0, 0) != 0 {
		t.Errorf("values = %v", m.values)
	}

	col, err := m.Column("b")
	if err != nil {
		t.Fatal(err)
	}
	if col[0] != 0 || col[1] != 5 || col[2] != 0 {
		t.Errorf("Column(b) = %v", col)
	}
	if _, err := m.Column("zzz"); err == nil {
		t.Error("Column(zzz) should fail")
	}

	row := m.Row(0)
	if cap(row) != 2 {
		t.Errorf("cap(Row(0)) = %d, want 2", cap(row))
	}
}

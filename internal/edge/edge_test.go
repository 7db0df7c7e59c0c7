package edge

import (
	"errors"
	"testing"

	"github.com/matsen/citefeat/internal/reference"
)

func testCatalog(t *testing.T, ids ...int) *reference.Catalog {
	t.Helper()
	papers := make([]reference.Paper, len(ids))
	for i, id := range ids {
		papers[i] = reference.Paper{ID: id}
	}
	c, err := reference.NewCatalog(papers)
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}
	return c
}

func TestDetectOrphanedPairs(t *testing.T) {
	catalog := testCatalog(t, 1, 2, 3)

	tests := []struct {
		name       string
		pairs      []reference.Pair
		wantRows   []int
		wantReason []string
	}{
		{
			name:  "all endpoints known",
			pairs: []reference.Pair{{SourceID: 1, TargetID: 2}, {SourceID: 3, TargetID: 1}},
		},
		{
			name:       "missing source",
			pairs:      []reference.Pair{{SourceID: 1, TargetID: 2}, {SourceID: 9, TargetID: 2}},
			wantRows:   []int{1},
			wantReason: []string{ReasonMissingSource},
		},
		{
			name:       "missing target",
			pairs:      []reference.Pair{{SourceID: 1, TargetID: 7}},
			wantRows:   []int{0},
			wantReason: []string{ReasonMissingTarget},
		},
		{
			name:       "missing both",
			pairs:      []reference.Pair{{SourceID: 8, TargetID: 7}, {SourceID: 2, TargetID: 3}, {SourceID: 1, TargetID: 5}},
			wantRows:   []int{0, 2},
			wantReason: []string{ReasonMissingBoth, ReasonMissingTarget},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectOrphanedPairs(tt.pairs, catalog)
			if len(got) != len(tt.wantRows) {
				t.Fatalf("DetectOrphanedPairs() returned %d orphans, want %d", len(got), len(tt.wantRows))
			}
			for i, o := range got {
				if o.Row != tt.wantRows[i] {
					t.Errorf("orphan %d row = %d, want %d", i, o.Row, tt.wantRows[i])
				}
				if o.Reason != tt.wantReason[i] {
					t.Errorf("orphan %d reason = %q, want %q", i, o.Reason, tt.wantReason[i])
				}
			}
		})
	}
}

func TestValidate(t *testing.T) {
	catalog := testCatalog(t, 1, 2)

	tests := []struct {
		name    string
		pairs   []reference.Pair
		wantErr error
	}{
		{
			name:  "valid labeled pairs",
			pairs: []reference.Pair{{SourceID: 1, TargetID: 2, Label: 1, Labeled: true}},
		},
		{
			name:    "bad label",
			pairs:   []reference.Pair{{SourceID: 1, TargetID: 2, Label: 2, Labeled: true}},
			wantErr: ErrInvalidLabel,
		},
		{
			name:    "orphaned pair",
			pairs:   []reference.Pair{{SourceID: 1, TargetID: 4}},
			wantErr: ErrOrphanedPairs,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.pairs, catalog)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestFindDuplicatePairs(t *testing.T) {
	pairs := []reference.Pair{
		{SourceID: 1, TargetID: 2},
		{SourceID: 1, TargetID: 2},
		{SourceID: 2, TargetID: 1},
		{SourceID: 1, TargetID: 2},
	}

	dups := FindDuplicatePairs(pairs)
	if len(dups) != 1 {
		t.Fatalf("FindDuplicatePairs() returned %d keys, want 1", len(dups))
	}
	if got := dups[PairKey{SourceID: 1, TargetID: 2}]; got != 3 {
		t.Errorf("count for 1->2 = %d, want 3", got)
	}
}

func TestCountSelfPairs(t *testing.T) {
	pairs := []reference.Pair{{SourceID: 1, TargetID: 1}, {SourceID: 1, TargetID: 2}, {SourceID: 3, TargetID: 3}}
	if got := CountSelfPairs(pairs); got != 2 {
		t.Errorf("CountSelfPairs() = %d, want 2", got)
	}
}

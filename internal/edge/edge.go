// Package edge validates candidate citation pairs against the node table.
package edge

import (
	"errors"
	"fmt"

	"github.com/matsen/citefeat/internal/reference"
)

// Validation errors.
var (
	ErrOrphanedPairs = errors.New("pairs reference papers missing from node information")
	ErrInvalidLabel  = errors.New("label must be 0 or 1")
)

// Orphan reasons.
const (
	ReasonMissingSource = "missing_source"
	ReasonMissingTarget = "missing_target"
	ReasonMissingBoth   = "missing_both"
)

// OrphanedPairInfo describes a pair with at least one unknown endpoint.
type OrphanedPairInfo struct {
	Row      int    `json:"row"`
	SourceID int    `json:"source_id"`
	TargetID int    `json:"target_id"`
	Reason   string `json:"reason"`
}

// DetectOrphanedPairs finds pairs that reference papers not in the catalog.
// Rows are 0-based positions in the input.
func DetectOrphanedPairs(pairs []reference.Pair, catalog *reference.Catalog) []OrphanedPairInfo {
	var orphaned []OrphanedPairInfo
	for i, p := range pairs {
		sourceOK := catalog.Has(p.SourceID)
		targetOK := catalog.Has(p.TargetID)
		if sourceOK && targetOK {
			continue
		}

		info := OrphanedPairInfo{Row: i, SourceID: p.SourceID, TargetID: p.TargetID}
		switch {
		case !sourceOK && !targetOK:
			info.Reason = ReasonMissingBoth
		case !sourceOK:
			info.Reason = ReasonMissingSource
		default:
			info.Reason = ReasonMissingTarget
		}
		orphaned = append(orphaned, info)
	}
	return orphaned
}

// Validate checks labels and endpoints of a pair list.
// The first orphan is included in the error message.
func Validate(pairs []reference.Pair, catalog *reference.Catalog) error {
	for i, p := range pairs {
		if p.Labeled && p.Label != 0 && p.Label != 1 {
			return fmt.Errorf("row %d: %w (got %d)", i, ErrInvalidLabel, p.Label)
		}
	}
	if orphaned := DetectOrphanedPairs(pairs, catalog); len(orphaned) > 0 {
		first := orphaned[0]
		return fmt.Errorf("%w: %d pairs, first at row %d (%d -> %d, %s)",
			ErrOrphanedPairs, len(orphaned), first.Row, first.SourceID, first.TargetID, first.Reason)
	}
	return nil
}

// PairKey is the identity of a directed pair.
type PairKey struct {
	SourceID int
	TargetID int
}

// FindDuplicatePairs finds directed pairs that appear more than once.
// Returns a map of PairKey to count for keys that appear more than once.
func FindDuplicatePairs(pairs []reference.Pair) map[PairKey]int {
	counts := make(map[PairKey]int)
	for _, p := range pairs {
		counts[PairKey{SourceID: p.SourceID, TargetID: p.TargetID}]++
	}

	duplicates := make(map[PairKey]int)
	for key, count := range counts {
		if count > 1 {
			duplicates[key] = count
		}
	}
	return duplicates
}

// CountSelfPairs returns how many pairs have the same source and target.
func CountSelfPairs(pairs []reference.Pair) int {
	n := 0
	for _, p := range pairs {
		if p.SourceID == p.TargetID {
			n++
		}
	}
	return n
}

package feature

import (
	"log/slog"
	"sync/atomic"
)

// Diagnostics counts data-shape conditions recovered during assembly.
// Counters are safe for concurrent use.
type Diagnostics struct {
	rows                atomic.Int64
	missingAuthorData   atomic.Int64
	noSharedAuthorPairs atomic.Int64
	singletonNeighbors  atomic.Int64
	clampedPositives    atomic.Int64
}

// DiagnosticsSnapshot is a point-in-time copy of the counters.
type DiagnosticsSnapshot struct {
	Rows                int64 `json:"rows"`
	MissingAuthorData   int64 `json:"missing_author_data"`
	NoSharedAuthorPairs int64 `json:"no_shared_author_pairs"`
	SingletonNeighbors  int64 `json:"singleton_neighbors"`
	ClampedPositives    int64 `json:"clamped_positives"`
}

// Snapshot returns the current counts.
func (d *Diagnostics) Snapshot() DiagnosticsSnapshot {
	return DiagnosticsSnapshot{
		Rows:                d.rows.Load(),
		MissingAuthorData:   d.missingAuthorData.Load(),
		NoSharedAuthorPairs: d.noSharedAuthorPairs.Load(),
		SingletonNeighbors:  d.singletonNeighbors.Load(),
		ClampedPositives:    d.clampedPositives.Load(),
	}
}

// LogValue implements slog.LogValuer.
func (s DiagnosticsSnapshot) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("rows", s.Rows),
		slog.Int64("missing_author_data", s.MissingAuthorData),
		slog.Int64("no_shared_author_pairs", s.NoSharedAuthorPairs),
		slog.Int64("singleton_neighbors", s.SingletonNeighbors),
		slog.Int64("clamped_positives", s.ClampedPositives),
	)
}

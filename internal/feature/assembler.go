package feature

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/matsen/citefeat/internal/citegraph"
	"github.com/matsen/citefeat/internal/ngram"
	"github.com/matsen/citefeat/internal/reference"
	"github.com/matsen/citefeat/internal/similarity"
	"github.com/matsen/citefeat/internal/textnorm"
)

// ErrUnknownPaper is returned when a pair references a paper outside the catalog.
var ErrUnknownPaper = errors.New("pair references unknown paper")

// progressStride is how many rows a worker finishes between progress reports.
const progressStride = 256

// AuthorOutcome classifies how mean_author_citation was derived.
type AuthorOutcome int

const (
	AuthorCounted       AuthorOutcome = iota // Mean over at least one author pair
	AuthorMissingData                        // One side had no author field
	AuthorNoSharedPairs                      // Known authors, empty cross product
)

// Assembler computes feature vectors from frozen caches and graphs.
// All of its inputs are read-only, so rows can be computed concurrently.
type Assembler struct {
	schema  *Schema
	catalog *reference.Catalog
	corpus  *textnorm.Corpus
	graphs  *citegraph.Graphs

	mode             citegraph.Mode
	workers          int
	logger           *slog.Logger
	progressInterval time.Duration
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithSchema replaces the default column schema.
func WithSchema(s *Schema) Option {
	return func(a *Assembler) { a.schema = s }
}

// WithMode sets the neighbor direction used for Adamic-Adar.
func WithMode(m citegraph.Mode) Option {
	return func(a *Assembler) { a.mode = m }
}

// WithWorkers sets the number of concurrent workers. n <= 0 uses GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(a *Assembler) { a.workers = n }
}

// WithLogger sets the logger for progress and diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(a *Assembler) { a.logger = l }
}

// WithProgressInterval sets the minimum time between progress reports.
func WithProgressInterval(d time.Duration) Option {
	return func(a *Assembler) { a.progressInterval = d }
}

// New creates an assembler over a catalog, its token cache and its graphs.
func New(catalog *reference.Catalog, corpus *textnorm.Corpus, graphs *citegraph.Graphs, opts ...Option) *Assembler {
	a := &Assembler{
		schema:  DefaultSchema(),
		catalog: catalog,
		corpus:  corpus,
		graphs:  graphs,
		mode:    citegraph.All,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.workers <= 0 {
		a.workers = runtime.GOMAXPROCS(0)
	}
	return a
}

// Schema returns the column schema.
func (a *Assembler) Schema() *Schema { return a.schema }

// Run computes the feature matrix for pairs, in input order.
// A structural error in any row cancels the batch and is returned.
func (a *Assembler) Run(ctx context.Context, pairs []reference.Pair) (*Matrix, DiagnosticsSnapshot, error) {
	m := NewMatrix(a.schema, len(pairs))
	diag := &Diagnostics{}
	progress := NewProgress(a.logger, "assembling features", a.progressInterval)

	total := len(pairs)
	var done atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)

	chunk := chunkSize(total, a.workers)
	for start := 0; start < total; start += chunk {
		end := min(start+chunk, total)
		g.Go(func() error {
			for r := start; r < end; r++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := a.fill(m.Row(r), pairs[r], diag); err != nil {
					return fmt.Errorf("row %d (%d -> %d): %w", r, pairs[r].SourceID, pairs[r].TargetID, err)
				}
				n := done.Add(1)
				if n%progressStride == 0 || int(n) == total {
					progress.Report(int(n), total)
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, diag.Snapshot(), err
	}

	snap := diag.Snapshot()
	a.logger.Info("feature diagnostics", "diagnostics", snap)
	return m, snap, nil
}

// Vector computes the feature vector of a single pair.
func (a *Assembler) Vector(pair reference.Pair) ([]float64, DiagnosticsSnapshot, error) {
	diag := &Diagnostics{}
	row := make([]float64, a.schema.Len())
	if err := a.fill(row, pair, diag); err != nil {
		return nil, diag.Snapshot(), err
	}
	return row, diag.Snapshot(), nil
}

func chunkSize(total, workers int) int {
	if total == 0 {
		return 1
	}
	// Four chunks per worker.
	c := total / (workers * 4)
	return max(c, 1)
}

// rowContext carries per-pair state while a row is filled.
type rowContext struct {
	pair           reference.Pair
	source, target int // catalog rows
	sets           map[setKey][2]similarity.Set[string]
}

type setKey struct {
	field   textnorm.Field
	variant textnorm.Variant
	gram    Gram
	n       int
}

func (a *Assembler) fill(dst []float64, pair reference.Pair, diag *Diagnostics) error {
	source, ok := a.catalog.Position(pair.SourceID)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownPaper, pair.SourceID)
	}
	target, ok := a.catalog.Position(pair.TargetID)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownPaper, pair.TargetID)
	}

	rc := &rowContext{
		pair:   pair,
		source: source,
		target: target,
		sets:   make(map[setKey][2]similarity.Set[string]),
	}

	for c, col := range a.schema.Columns() {
		v, err := a.value(rc, col, diag)
		if err != nil {
			return fmt.Errorf("column %s: %w", col.Name, err)
		}
		dst[c] = v
	}
	diag.rows.Add(1)
	return nil
}

func (a *Assembler) value(rc *rowContext, col Column, diag *Diagnostics) (float64, error) {
	switch col.Kind {
	case KindLexical:
		return a.lexical(rc, col), nil
	case KindAdamicAdar:
		res, err := a.graphs.Papers.AdamicAdar(rc.pair.SourceID, rc.pair.TargetID, a.mode)
		if err != nil {
			return 0, err
		}
		if res.Singletons > 0 {
			diag.singletonNeighbors.Add(int64(res.Singletons))
			a.logger.Debug("degree-1 common neighbors skipped",
				"source", rc.pair.SourceID, "target", rc.pair.TargetID, "count", res.Singletons)
		}
		return res.Score, nil
	case KindMeanAuthorCitation:
		return a.meanAuthorCitation(rc.pair, diag)
	case KindYearGap:
		return yearGap(a.catalog.At(rc.source), a.catalog.At(rc.target)), nil
	}
	return 0, fmt.Errorf("unsupported column kind %d", col.Kind)
}

func (a *Assembler) lexical(rc *rowContext, col Column) float64 {
	key := setKey{field: col.Field, variant: col.Variant, gram: col.Gram, n: col.N}
	sets, ok := rc.sets[key]
	if !ok {
		sets = [2]similarity.Set[string]{
			a.tokenSet(rc.source, key),
			a.tokenSet(rc.target, key),
		}
		rc.sets[key] = sets
	}
	if col.Metric == Dice {
		return similarity.DiceSets(sets[0], sets[1])
	}
	return similarity.JaccardSets(sets[0], sets[1])
}

func (a *Assembler) tokenSet(row int, key setKey) similarity.Set[string] {
	tokens := a.corpus.Tokens(row, key.field, key.variant)
	switch key.gram {
	case NGrams:
		return similarity.NewSet(ngram.Keys(ngram.NGrams(tokens, key.n)))
	case NTerms:
		return similarity.NewSet(ngram.Keys(ngram.NTerms(tokens, key.n)))
	default:
		return similarity.NewSet(tokens)
	}
}

// MeanAuthorCitation returns the mean, over the author cross product of the
// pair, of how often the citing author cites the cited author in the
// author graph. Missing author data and empty products both yield 0.
func (a *Assembler) MeanAuthorCitation(pair reference.Pair) (float64, AuthorOutcome, error) {
	citing := a.catalog.Lookup(pair.SourceID)
	if citing == nil {
		return 0, AuthorMissingData, fmt.Errorf("%w: %d", ErrUnknownPaper, pair.SourceID)
	}
	cited := a.catalog.Lookup(pair.TargetID)
	if cited == nil {
		return 0, AuthorMissingData, fmt.Errorf("%w: %d", ErrUnknownPaper, pair.TargetID)
	}

	authors := a.graphs.Authors
	edges, err := authors.CitationEdges(citing.Authors, cited.Authors)
	if errors.Is(err, citegraph.ErrMissingAuthorData) {
		return 0, AuthorMissingData, nil
	}
	if err != nil {
		return 0, AuthorMissingData, err
	}
	if len(edges) == 0 {
		return 0, AuthorNoSharedPairs, nil
	}

	counts := make([]float64, len(edges))
	for i, e := range edges {
		n, err := authors.CountOutgoing(e.From, e.To)
		if err != nil {
			return 0, AuthorCounted, err
		}
		counts[i] = float64(n)
	}
	return stat.Mean(counts, nil), AuthorCounted, nil
}

// meanAuthorCitation applies the self-count correction for labeled
// positives: the author graph already contains the pair's own lines, so one
// is subtracted. A result of exactly -1, a mean of 0, is clamped to 0.
func (a *Assembler) meanAuthorCitation(pair reference.Pair, diag *Diagnostics) (float64, error) {
	mean, outcome, err := a.MeanAuthorCitation(pair)
	if err != nil {
		return 0, err
	}

	switch outcome {
	case AuthorMissingData:
		diag.missingAuthorData.Add(1)
		a.logger.Debug("missing author data", "source", pair.SourceID, "target", pair.TargetID)
	case AuthorNoSharedPairs:
		diag.noSharedAuthorPairs.Add(1)
		a.logger.Debug("no shared author pairs", "source", pair.SourceID, "target", pair.TargetID)
	}

	if !pair.IsPositive() {
		return mean, nil
	}
	v := mean - 1
	if v == -1 {
		diag.clampedPositives.Add(1)
		return 0, nil
	}
	return v, nil
}

// yearGap is the source year minus the target year, or 0 when the source
// is older.
func yearGap(source, target *reference.Paper) float64 {
	d := source.Year - target.Year
	if d < 0 {
		return 0
	}
	return float64(d)
}

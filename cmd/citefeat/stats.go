package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/matsen/citefeat/internal/citegraph"
	"github.com/matsen/citefeat/internal/config"
	"github.com/matsen/citefeat/internal/edge"
	"github.com/matsen/citefeat/internal/feature"
	"github.com/matsen/citefeat/internal/reference"
)

var (
	statsInputs   inputFlags
	statsAssemble bool
)

func init() {
	statsInputs.register(statsCmd)
	statsInputs.registerMode(statsCmd)
	statsCmd.Flags().BoolVar(&statsAssemble, "assemble", false, "Also assemble training features to collect diagnostics")
	rootCmd.AddCommand(statsCmd)
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show input and graph statistics",
	Long: `Show pair counts, graph sizes and data-shape diagnostics.

With --assemble the training matrix is computed (and discarded) so the
per-feature diagnostics can be reported.`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

// StatsResult is the response for the stats command.
type StatsResult struct {
	Papers                 int                          `json:"papers"`
	TrainPairs             int                          `json:"train_pairs"`
	TestPairs              int                          `json:"test_pairs"`
	Positives              int                          `json:"positives"`
	DuplicatePairs         int                          `json:"duplicate_pairs"`
	SelfPairs              int                          `json:"self_pairs"`
	SelfPairsSkipped       int                          `json:"self_pairs_skipped"`
	PaperGraph             GraphStats                   `json:"paper_graph"`
	AuthorGraph            GraphStats                   `json:"author_graph"`
	MissingAuthorPositives int                          `json:"missing_author_positives"`
	Diagnostics            *feature.DiagnosticsSnapshot `json:"diagnostics,omitempty"`
}

// GraphStats reports graph size.
type GraphStats struct {
	Vertices int `json:"vertices"`
	Edges    int `json:"edges"`
}

func runStats(cmd *cobra.Command, args []string) error {
	mode, err := statsInputs.resolve(cmd, cfg)
	exitOnError(err)

	res, err := collectStats(cmd.Context(), cfg, mode, statsAssemble, slog.Default())
	exitOnError(err)

	if humanOutput {
		printStatsHuman(res)
		return nil
	}
	return outputJSON(res)
}

func collectStats(ctx context.Context, c *config.Config, mode citegraph.Mode, assemble bool, logger *slog.Logger) (*StatsResult, error) {
	p, err := loadPipeline(c, mode, logger)
	if err != nil {
		return nil, err
	}

	all := append(append([]reference.Pair(nil), p.train...), p.test...)
	res := &StatsResult{
		Papers:                 p.catalog.Len(),
		TrainPairs:             len(p.train),
		TestPairs:              len(p.test),
		Positives:              len(reference.Positives(p.train)),
		DuplicatePairs:         len(edge.FindDuplicatePairs(all)),
		SelfPairs:              edge.CountSelfPairs(all),
		SelfPairsSkipped:       p.selfPairsSkipped,
		PaperGraph:             GraphStats{Vertices: p.graphs.Papers.VertexCount(), Edges: p.graphs.Papers.EdgeCount()},
		AuthorGraph:            GraphStats{Vertices: p.graphs.Authors.VertexCount(), Edges: p.graphs.Authors.EdgeCount()},
		MissingAuthorPositives: p.graphs.MissingAuthorPositives,
	}

	if assemble {
		_, diag, err := p.assembler.Run(ctx, p.train)
		if err != nil {
			return nil, withCode(ExitError, err)
		}
		res.Diagnostics = &diag
	}
	return res, nil
}

func printStatsHuman(res *StatsResult) {
	outputHuman("Papers:          %d\n", res.Papers)
	outputHuman("Training pairs:  %d (%d positive)\n", res.TrainPairs, res.Positives)
	outputHuman("Test pairs:      %d\n", res.TestPairs)
	outputHuman("Duplicates:      %d distinct pairs repeated\n", res.DuplicatePairs)
	outputHuman("Self pairs:      %d (%d skipped)\n\n", res.SelfPairs, res.SelfPairsSkipped)
	outputHuman("Paper graph:     %d vertices, %d edges\n", res.PaperGraph.Vertices, res.PaperGraph.Edges)
	outputHuman("Author graph:    %d vertices, %d edges\n", res.AuthorGraph.Vertices, res.AuthorGraph.Edges)
	outputHuman("Positives without author data: %d\n", res.MissingAuthorPositives)
	if d := res.Diagnostics; d != nil {
		outputHuman("\nFeature diagnostics over %d rows:\n", d.Rows)
		outputHuman("  missing author data:    %d\n", d.MissingAuthorData)
		outputHuman("  no shared author pairs: %d\n", d.NoSharedAuthorPairs)
		outputHuman("  degree-1 neighbors:     %d\n", d.SingletonNeighbors)
		outputHuman("  clamped positives:      %d\n", d.ClampedPositives)
	}
}

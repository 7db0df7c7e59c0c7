package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/matsen/citefeat/internal/citegraph"
	"github.com/matsen/citefeat/internal/config"
	"github.com/matsen/citefeat/internal/feature"
	"github.com/matsen/citefeat/internal/reference"
	"github.com/matsen/citefeat/internal/storage"
)

var (
	extractInputs    inputFlags
	extractOutputDir string
	extractFormat    string
)

func init() {
	extractInputs.register(extractCmd)
	extractInputs.registerMode(extractCmd)
	extractCmd.Flags().StringVarP(&extractOutputDir, "output-dir", "o", "", "Output directory (overrides config)")
	extractCmd.Flags().StringVar(&extractFormat, "format", "", "Output format: csv, jsonl or sqlite (overrides config)")
	rootCmd.AddCommand(extractCmd)
}

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Build feature matrices for training and test pairs",
	Long: `Build feature matrices for the training pairs and, if configured, the test pairs.

Graphs are built from the positive training pairs only. Each matrix is
written to the output directory in the configured format along with its
column schema fingerprint.`,
	Args: cobra.NoArgs,
	RunE: runExtract,
}

// ExtractResult is the response for the extract command.
type ExtractResult struct {
	Status      string                                 `json:"status"`
	Papers      int                                    `json:"papers"`
	Fingerprint string                                 `json:"fingerprint"`
	Outputs     []storage.Result                       `json:"outputs"`
	Diagnostics map[string]feature.DiagnosticsSnapshot `json:"diagnostics"`
}

func runExtract(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("output-dir") {
		cfg.OutputDir = config.ExpandPath(extractOutputDir)
	}
	if cmd.Flags().Changed("format") {
		cfg.Format = extractFormat
	}
	mode, err := extractInputs.resolve(cmd, cfg)
	exitOnError(err)

	res, err := extract(cmd.Context(), cfg, mode, slog.Default())
	exitOnError(err)

	if humanOutput {
		printExtractHuman(res)
		return nil
	}
	return outputJSON(res)
}

func extract(ctx context.Context, c *config.Config, mode citegraph.Mode, logger *slog.Logger) (*ExtractResult, error) {
	format, err := storage.ParseFormat(c.Format)
	if err != nil {
		return nil, withCode(ExitConfigError, err)
	}

	p, err := loadPipeline(c, mode, logger)
	if err != nil {
		return nil, err
	}

	res := &ExtractResult{
		Status:      "ok",
		Papers:      p.catalog.Len(),
		Fingerprint: p.assembler.Schema().Fingerprint(),
		Outputs:     []storage.Result{},
		Diagnostics: make(map[string]feature.DiagnosticsSnapshot),
	}

	splits := []struct {
		name  string
		pairs []reference.Pair
	}{
		{"train", p.train},
		{"test", p.test},
	}
	for _, s := range splits {
		if s.name == "test" && c.Test == "" {
			continue
		}
		logger.Info("assembling split", "split", s.name, "pairs", len(s.pairs))
		m, diag, err := p.assembler.Run(ctx, s.pairs)
		if err != nil {
			return nil, withCode(ExitError, fmt.Errorf("%s features: %w", s.name, err))
		}
		out, err := storage.WriteMatrix(c.OutputDir, s.name, format, m, s.pairs)
		if err != nil {
			return nil, withCode(ExitError, fmt.Errorf("writing %s features: %w", s.name, err))
		}
		res.Outputs = append(res.Outputs, out)
		res.Diagnostics[s.name] = diag
	}
	return res, nil
}

func printExtractHuman(res *ExtractResult) {
	outputHuman("Extracted features for %d papers (schema %s)\n\n", res.Papers, res.Fingerprint)
	for _, out := range res.Outputs {
		outputHuman("  %-5s  %8d rows  %s\n", out.Split, out.Rows, out.Path)
		if out.RunID != "" {
			outputHuman("         run %s\n", out.RunID)
		}
		d := res.Diagnostics[out.Split]
		outputHuman("         missing authors: %d, no author pairs: %d, degree-1 neighbors: %d, clamped positives: %d\n",
			d.MissingAuthorData, d.NoSharedAuthorPairs, d.SingletonNeighbors, d.ClampedPositives)
	}
}

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/citefeat/internal/config"
	"github.com/matsen/citefeat/internal/feature"
	"github.com/matsen/citefeat/internal/storage"
)

var (
	verifyOutputDir string
	verifyFormat    string
)

func init() {
	verifyCmd.Flags().StringVarP(&verifyOutputDir, "output-dir", "o", "", "Output directory (overrides config)")
	verifyCmd.Flags().StringVar(&verifyFormat, "format", "", "Output format: csv, jsonl or sqlite (overrides config)")
	rootCmd.AddCommand(verifyCmd)
}

var verifyCmd = &cobra.Command{
	Use:   "verify [split...]",
	Short: "Check written matrices against the current schema",
	Long: `Read back the matrices in the output directory and check them.

Every row must have one value per column, the row count must match the
recorded count, and the recorded fingerprint must match both the stored
column names and the current schema. Splits default to train, plus test
when a test file is configured.`,
	RunE: runVerify,
}

// VerifyResult is the response for the verify command.
type VerifyResult struct {
	Status      string             `json:"status"`
	Fingerprint string             `json:"fingerprint"`
	Outputs     []*storage.Summary `json:"outputs"`
}

func runVerify(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("output-dir") {
		cfg.OutputDir = config.ExpandPath(verifyOutputDir)
	}
	if cmd.Flags().Changed("format") {
		cfg.Format = verifyFormat
	}

	res, err := verifyOutputs(cfg, args, feature.DefaultSchema())
	exitOnError(err)

	if humanOutput {
		outputHuman("All outputs match schema %s\n\n", res.Fingerprint)
		for _, s := range res.Outputs {
			outputHuman("  %-5s  %8d rows  %s\n", s.Split, s.Rows, s.Path)
		}
		return nil
	}
	return outputJSON(res)
}

func verifyOutputs(c *config.Config, splits []string, schema *feature.Schema) (*VerifyResult, error) {
	format, err := storage.ParseFormat(c.Format)
	if err != nil {
		return nil, withCode(ExitConfigError, err)
	}
	if len(splits) == 0 {
		splits = []string{"train"}
		if c.Test != "" {
			splits = append(splits, "test")
		}
	}

	current := schema.Fingerprint()
	res := &VerifyResult{Status: "ok", Fingerprint: current}
	for _, split := range splits {
		sum, err := storage.Inspect(c.OutputDir, split, format)
		if errors.Is(err, storage.ErrUnknownFormat) {
			return nil, withCode(ExitConfigError, err)
		}
		if err != nil {
			return nil, withCode(ExitDataError, err)
		}
		if sum.Fingerprint != current {
			return nil, withCode(ExitDataError, fmt.Errorf("%s was written with schema %s, current schema is %s", sum.Path, sum.Fingerprint, current))
		}
		res.Outputs = append(res.Outputs, sum)
	}
	return res, nil
}

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/citefeat/internal/config"
	"github.com/matsen/citefeat/internal/storage"
)

var runsOutputDir string

func init() {
	runsCmd.Flags().StringVarP(&runsOutputDir, "output-dir", "o", "", "Output directory (overrides config)")
	rootCmd.AddCommand(runsCmd)
}

var runsCmd = &cobra.Command{
	Use:   "runs [run-id]",
	Short: "List the runs stored in features.db",
	Long: `List the runs stored in the SQLite feature store of the output directory,
oldest first. With a run ID, show that run and its columns.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRuns,
}

// RunsResult is the response for the runs command without arguments.
type RunsResult struct {
	Path string        `json:"path"`
	Runs []storage.Run `json:"runs"`
}

// RunDetail is the response for the runs command with a run ID.
type RunDetail struct {
	storage.Run
	Columns []string `json:"columns"`
}

func runRuns(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("output-dir") {
		cfg.OutputDir = config.ExpandPath(runsOutputDir)
	}

	if len(args) == 1 {
		detail, err := showRun(cfg.OutputDir, args[0])
		exitOnError(err)
		if humanOutput {
			outputHuman("Run %s (%s, %d rows, %s)\n", detail.ID, detail.Split, detail.Rows, detail.CreatedAt)
			outputHuman("Schema %s\n\n", detail.Fingerprint)
			for i, name := range detail.Columns {
				outputHuman("  %2d  %s\n", i, name)
			}
			return nil
		}
		return outputJSON(detail)
	}

	res, err := listRuns(cfg.OutputDir)
	exitOnError(err)
	if humanOutput {
		if len(res.Runs) == 0 {
			outputHuman("No runs in %s\n", res.Path)
			return nil
		}
		for _, r := range res.Runs {
			outputHuman("%s  %-5s  %8d rows  %s  %s\n", r.ID, r.Split, r.Rows, r.Fingerprint, r.CreatedAt)
		}
		return nil
	}
	return outputJSON(res)
}

// openFeatureDB opens an existing feature store without creating one.
func openFeatureDB(dir string) (*storage.DB, string, error) {
	path := storage.DBPath(dir)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, path, withCode(ExitDataError, fmt.Errorf("%w: %s", storage.ErrMissingOutput, path))
		}
		return nil, path, withCode(ExitError, err)
	}
	db, err := storage.OpenDB(path)
	if err != nil {
		return nil, path, withCode(ExitError, err)
	}
	return db, path, nil
}

func listRuns(dir string) (*RunsResult, error) {
	db, path, err := openFeatureDB(dir)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	runs, err := db.Runs()
	if err != nil {
		return nil, withCode(ExitError, err)
	}
	if runs == nil {
		runs = []storage.Run{}
	}
	return &RunsResult{Path: path, Runs: runs}, nil
}

func showRun(dir, id string) (*RunDetail, error) {
	db, _, err := openFeatureDB(dir)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	run, err := db.GetRun(id)
	if errors.Is(err, storage.ErrRunNotFound) {
		return nil, withCode(ExitDataError, err)
	}
	if err != nil {
		return nil, withCode(ExitError, err)
	}
	cols, err := db.Columns(id)
	if err != nil {
		return nil, withCode(ExitError, err)
	}
	return &RunDetail{Run: *run, Columns: cols}, nil
}

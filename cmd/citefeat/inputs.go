package main

import (
	"github.com/spf13/cobra"

	"github.com/matsen/citefeat/internal/citegraph"
	"github.com/matsen/citefeat/internal/config"
)

// inputFlags are shared by the commands that load data.
type inputFlags struct {
	nodes        string
	train        string
	test         string
	workers      int
	stopWords    string
	neighborMode string
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.nodes, "nodes", "", "Node information CSV (overrides config)")
	cmd.Flags().StringVar(&f.train, "train", "", "Labeled training pairs (overrides config)")
	cmd.Flags().StringVar(&f.test, "test", "", "Unlabeled test pairs (overrides config)")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "Concurrent workers, 0 for GOMAXPROCS (overrides config)")
	cmd.Flags().StringVar(&f.stopWords, "stopwords", "", "Stop-word file replacing the English list")
}

// registerMode adds --neighbor-mode for commands that compute features.
func (f *inputFlags) registerMode(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.neighborMode, "neighbor-mode", "all", "Adamic-Adar neighbor direction: out, in or all")
}

// apply copies changed flags over c.
func (f *inputFlags) apply(cmd *cobra.Command, c *config.Config) {
	if cmd.Flags().Changed("nodes") {
		c.Nodes = config.ExpandPath(f.nodes)
	}
	if cmd.Flags().Changed("train") {
		c.Train = config.ExpandPath(f.train)
	}
	if cmd.Flags().Changed("test") {
		c.Test = config.ExpandPath(f.test)
	}
	if cmd.Flags().Changed("workers") {
		c.Workers = f.workers
	}
	if cmd.Flags().Changed("stopwords") {
		c.StopWordsFile = config.ExpandPath(f.stopWords)
	}
}

// resolve applies flags, validates the result and parses the neighbor mode.
// Without registerMode the mode is All.
func (f *inputFlags) resolve(cmd *cobra.Command, c *config.Config) (citegraph.Mode, error) {
	f.apply(cmd, c)
	if err := c.Validate(true); err != nil {
		return citegraph.All, withCode(ExitConfigError, err)
	}
	mode, err := citegraph.ParseMode(f.neighborMode)
	if err != nil {
		return citegraph.All, withCode(ExitConfigError, err)
	}
	return mode, nil
}

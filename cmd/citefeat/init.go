package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/citefeat/internal/config"
)

var initForce bool

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter " + config.DefaultFile,
	Long: `Write a config file with the default settings and the usual input file
names. The file goes to --config if given, otherwise ./` + config.DefaultFile + `.`,
	Args: cobra.NoArgs,
	// The config file may not exist yet, so skip loading it.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE:              runInit,
}

// InitResult is the response for the init command.
type InitResult struct {
	Status string `json:"status"`
	Path   string `json:"path"`
}

func runInit(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		path = config.DefaultFile
	}
	res, err := initConfig(config.ExpandPath(path), initForce)
	exitOnError(err)

	if humanOutput {
		outputHuman("Wrote %s\n", res.Path)
		return nil
	}
	return outputJSON(res)
}

func initConfig(path string, force bool) (*InitResult, error) {
	if _, err := os.Stat(path); err == nil && !force {
		return nil, withCode(ExitError, fmt.Errorf("%s already exists (use --force to overwrite)", path))
	}

	c := config.Default()
	c.Nodes = "node_information.csv"
	c.Train = "training_set.txt"
	c.Test = "testing_set.txt"
	if err := c.Save(path); err != nil {
		return nil, withCode(ExitError, err)
	}
	return &InitResult{Status: "created", Path: path}, nil
}

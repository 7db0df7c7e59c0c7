package main

import (
	"github.com/spf13/cobra"

	"github.com/matsen/citefeat/internal/feature"
)

func init() {
	rootCmd.AddCommand(schemaCmd)
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the feature column schema",
	Long:  `Print the ordered feature columns and the schema fingerprint written with every matrix.`,
	Args:  cobra.NoArgs,
	RunE:  runSchema,
}

// SchemaResult is the response for the schema command.
type SchemaResult struct {
	Fingerprint string         `json:"fingerprint"`
	Columns     []SchemaColumn `json:"columns"`
}

// SchemaColumn is one column of the schema output.
type SchemaColumn struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
}

func runSchema(cmd *cobra.Command, args []string) error {
	res := describeSchema(feature.DefaultSchema())
	if humanOutput {
		outputHuman("Schema %s (%d columns)\n\n", res.Fingerprint, len(res.Columns))
		for _, c := range res.Columns {
			outputHuman("  %2d  %s\n", c.Index, c.Name)
		}
		return nil
	}
	return outputJSON(res)
}

func describeSchema(s *feature.Schema) SchemaResult {
	names := s.Names()
	cols := make([]SchemaColumn, len(names))
	for i, n := range names {
		cols[i] = SchemaColumn{Index: i, Name: n}
	}
	return SchemaResult{Fingerprint: s.Fingerprint(), Columns: cols}
}

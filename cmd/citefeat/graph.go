package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/citefeat/internal/viz"
)

var (
	graphInputs    inputFlags
	graphAuthors   bool
	graphMinDegree int
	graphHTML      bool
	graphLayout    string
	graphOutput    string
)

func init() {
	graphInputs.register(graphCmd)
	graphCmd.Flags().BoolVar(&graphAuthors, "authors", false, "Export the author citation graph instead of the paper graph")
	graphCmd.Flags().IntVar(&graphMinDegree, "min-degree", 1, "Drop vertices with fewer incident edges")
	graphCmd.Flags().BoolVar(&graphHTML, "html", false, "Write a self-contained HTML page instead of Cytoscape JSON")
	graphCmd.Flags().StringVar(&graphLayout, "layout", "force", "HTML layout: force, circle or grid")
	graphCmd.Flags().StringVarP(&graphOutput, "output", "o", "", "Output file (default stdout)")
	rootCmd.AddCommand(graphCmd)
}

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the training citation graph for visualization",
	Long: `Export the graph built from the positive training pairs as Cytoscape.js
JSON or as an HTML page. Edge weights are citation multiplicities.`,
	Args: cobra.NoArgs,
	RunE: runGraph,
}

func runGraph(cmd *cobra.Command, args []string) error {
	mode, err := graphInputs.resolve(cmd, cfg)
	exitOnError(err)

	p, err := loadPipeline(cfg, mode, slog.Default())
	exitOnError(err)

	var data *viz.GraphData
	if graphAuthors {
		data = viz.FromAuthorGraph(p.graphs.Authors, graphMinDegree)
	} else {
		data, err = viz.FromPaperGraph(p.catalog, p.graphs.Papers, graphMinDegree)
		if err != nil {
			exitWithError(ExitError, "building graph: %v", err)
		}
	}

	var out string
	if graphHTML {
		opts := viz.DefaultOptions()
		opts.Layout = graphLayout
		if graphAuthors {
			opts.Title = "Author Citation Graph"
		}
		out, err = viz.GenerateHTML(data, opts)
	} else {
		out, err = data.ToCytoscapeJSON()
	}
	if err != nil {
		exitWithError(ExitError, "rendering graph: %v", err)
	}

	if graphOutput == "" {
		fmt.Println(out)
		return nil
	}
	if err := os.WriteFile(graphOutput, []byte(out), 0644); err != nil {
		exitWithError(ExitError, "writing %s: %v", graphOutput, err)
	}
	if humanOutput {
		outputHuman("Wrote %d vertices and %d edges to %s\n", len(data.Nodes), len(data.Edges), graphOutput)
		return nil
	}
	return outputJSON(GraphResult{Path: graphOutput, Vertices: len(data.Nodes), Edges: len(data.Edges)})
}

// GraphResult is the response for the graph command when writing a file.
type GraphResult struct {
	Path     string `json:"path"`
	Vertices int    `json:"vertices"`
	Edges    int    `json:"edges"`
}

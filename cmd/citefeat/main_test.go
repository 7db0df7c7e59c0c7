package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matsen/citefeat/internal/citegraph"
	"github.com/matsen/citefeat/internal/config"
	"github.com/matsen/citefeat/internal/edge"
	"github.com/matsen/citefeat/internal/feature"
	"github.com/matsen/citefeat/internal/reference"
	"github.com/matsen/citefeat/internal/storage"
)

const testNodes = `1,2000,graph theory methods,"Alice, Bob",J1,we study graph methods
2,1998,methods for graph analysis,Carol,J2,we study graph analysis
3,2001,an unrelated paper,,,nothing in common
4,2002,graph analysis again,"Carol, Dave",J1,graph analysis of citation graphs
`

func writeInputs(t *testing.T, train, test string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		return path
	}

	c := config.Default()
	c.Nodes = write("node_information.csv", testNodes)
	c.Train = write("training_set.txt", train)
	if test != "" {
		c.Test = write("testing_set.txt", test)
	}
	c.OutputDir = filepath.Join(dir, "out")
	c.Workers = 2
	return c
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func exitCode(err error) int {
	var ce *codedError
	if errors.As(err, &ce) {
		return ce.code
	}
	return ExitError
}

func TestLoadPipeline(t *testing.T) {
	c := writeInputs(t, "1 2 1\n4 2 1\n3 1 0\n1 1 0\n", "3 4\n")
	c.SkipSelfPairs = true

	p, err := loadPipeline(c, citegraph.All, quietLogger())
	if err != nil {
		t.Fatalf("loadPipeline() error = %v", err)
	}
	if p.catalog.Len() != 4 {
		t.Errorf("papers = %d, want 4", p.catalog.Len())
	}
	if len(p.train) != 3 || p.selfPairsSkipped != 1 {
		t.Errorf("train = %d pairs, skipped %d; want 3, 1", len(p.train), p.selfPairsSkipped)
	}
	if len(p.test) != 1 || p.test[0].Labeled {
		t.Errorf("test = %+v", p.test)
	}
	if p.graphs.Papers.EdgeCount() != 2 {
		t.Errorf("paper edges = %d, want 2", p.graphs.Papers.EdgeCount())
	}
	// alice->carol, bob->carol, carol->carol, dave->carol
	if p.graphs.Authors.EdgeCount() != 4 {
		t.Errorf("author edges = %d, want 4", p.graphs.Authors.EdgeCount())
	}
}

func TestLoadPipeline_Errors(t *testing.T) {
	tests := []struct {
		name     string
		train    string
		modify   func(*config.Config)
		wantCode int
		wantErr  error
	}{
		{
			name:     "orphaned pair",
			train:    "1 2 1\n1 99 0\n",
			wantCode: ExitDataError,
			wantErr:  edge.ErrOrphanedPairs,
		},
		{
			name:     "bad label",
			train:    "1 2 7\n",
			wantCode: ExitDataError,
			wantErr:  edge.ErrInvalidLabel,
		},
		{
			name:     "malformed line",
			train:    "1 2 1\n1\n",
			wantCode: ExitDataError,
		},
		{
			name:     "missing nodes file",
			train:    "1 2 1\n",
			modify:   func(c *config.Config) { c.Nodes = filepath.Join(t.TempDir(), "nope.csv") },
			wantCode: ExitDataError,
		},
		{
			name:     "missing stop-word file",
			train:    "1 2 1\n",
			modify:   func(c *config.Config) { c.StopWordsFile = filepath.Join(t.TempDir(), "nope.txt") },
			wantCode: ExitConfigError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := writeInputs(t, tt.train, "")
			if tt.modify != nil {
				tt.modify(c)
			}
			_, err := loadPipeline(c, citegraph.All, quietLogger())
			if err == nil {
				t.Fatal("loadPipeline() should fail")
			}
			if got := exitCode(err); got != tt.wantCode {
				t.Errorf("exit code = %d, want %d (%v)", got, tt.wantCode, err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestExtract(t *testing.T) {
	c := writeInputs(t, "1 2 1\n4 2 1\n3 1 0\n", "3 4\n1 4\n")

	res, err := extract(context.Background(), c, citegraph.All, quietLogger())
	if err != nil {
		t.Fatalf("extract() error = %v", err)
	}
	if len(res.Outputs) != 2 {
		t.Fatalf("outputs = %d, want 2", len(res.Outputs))
	}
	if res.Outputs[0].Split != "train" || res.Outputs[0].Rows != 3 {
		t.Errorf("train output = %+v", res.Outputs[0])
	}
	if res.Outputs[1].Split != "test" || res.Outputs[1].Rows != 2 {
		t.Errorf("test output = %+v", res.Outputs[1])
	}

	data, err := os.ReadFile(filepath.Join(c.OutputDir, "train.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("train.csv has %d lines, want 4", len(lines))
	}
	if !strings.HasPrefix(lines[0], "source,target,label,title_jaccard,") || !strings.HasSuffix(lines[0], ",year_gap") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "1,2,1,0.4,") {
		t.Errorf("first row = %q", lines[1])
	}

	sf, err := storage.ReadSchemaFile(filepath.Join(c.OutputDir, "test.schema.json"))
	if err != nil {
		t.Fatal(err)
	}
	if sf.Fingerprint != res.Fingerprint || len(sf.Columns) != 43 {
		t.Errorf("schema file = %+v", sf)
	}
}

func TestExtract_SQLite(t *testing.T) {
	c := writeInputs(t, "1 2 1\n3 1 0\n", "")
	c.Format = "sqlite"

	res, err := extract(context.Background(), c, citegraph.All, quietLogger())
	if err != nil {
		t.Fatalf("extract() error = %v", err)
	}
	if len(res.Outputs) != 1 || res.Outputs[0].RunID == "" {
		t.Fatalf("outputs = %+v", res.Outputs)
	}

	db, err := storage.OpenDB(res.Outputs[0].Path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	records, err := db.Records(res.Outputs[0].RunID)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 || len(records[0].Features) != 43 {
		t.Errorf("records = %+v", records)
	}
}

func TestExtract_BadFormat(t *testing.T) {
	c := writeInputs(t, "1 2 1\n", "")
	c.Format = "parquet"
	_, err := extract(context.Background(), c, citegraph.All, quietLogger())
	if exitCode(err) != ExitConfigError {
		t.Errorf("extract() error = %v, want config error", err)
	}
}

func TestCollectStats(t *testing.T) {
	c := writeInputs(t, "1 2 1\n1 2 1\n3 1 0\n2 2 0\n", "3 4\n")

	res, err := collectStats(context.Background(), c, citegraph.All, true, quietLogger())
	if err != nil {
		t.Fatalf("collectStats() error = %v", err)
	}

	tests := []struct {
		name string
		got  int
		want int
	}{
		{"papers", res.Papers, 4},
		{"train pairs", res.TrainPairs, 4},
		{"test pairs", res.TestPairs, 1},
		{"positives", res.Positives, 2},
		{"duplicate pairs", res.DuplicatePairs, 1},
		{"self pairs", res.SelfPairs, 1},
		{"paper vertices", res.PaperGraph.Vertices, 4},
		{"paper edges", res.PaperGraph.Edges, 2},
		{"author vertices", res.AuthorGraph.Vertices, 4},
		{"author edges", res.AuthorGraph.Edges, 4},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %d, want %d", tt.name, tt.got, tt.want)
		}
	}
	if res.Diagnostics == nil || res.Diagnostics.Rows != 4 || res.Diagnostics.MissingAuthorData != 1 {
		t.Errorf("diagnostics = %+v", res.Diagnostics)
	}
}

func TestParsePairArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		label   int
		want    reference.Pair
		wantErr bool
	}{
		{"unlabeled", []string{"1", "2"}, -1, reference.Pair{SourceID: 1, TargetID: 2}, false},
		{"positive", []string{"1", "2"}, 1, reference.Pair{SourceID: 1, TargetID: 2, Label: 1, Labeled: true}, false},
		{"negative", []string{"3", "4"}, 0, reference.Pair{SourceID: 3, TargetID: 4, Labeled: true}, false},
		{"bad source", []string{"x", "2"}, -1, reference.Pair{}, true},
		{"bad target", []string{"1", "y"}, -1, reference.Pair{}, true},
		{"bad label", []string{"1", "2"}, 5, reference.Pair{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parsePairArgs(tt.args, tt.label)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parsePairArgs() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parsePairArgs() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDescribeSchema(t *testing.T) {
	res := describeSchema(feature.DefaultSchema())
	if len(res.Columns) != 43 {
		t.Fatalf("columns = %d, want 43", len(res.Columns))
	}
	if res.Columns[40].Name != "adamic_adar" || res.Columns[40].Index != 40 {
		t.Errorf("column 40 = %+v", res.Columns[40])
	}
	if res.Fingerprint == "" {
		t.Error("fingerprint is empty")
	}
}

func TestDropSelfPairs(t *testing.T) {
	pairs := []reference.Pair{{SourceID: 1, TargetID: 1}, {SourceID: 1, TargetID: 2}, {SourceID: 3, TargetID: 3}}
	kept, n := dropSelfPairs(pairs)
	if n != 2 || len(kept) != 1 || kept[0].TargetID != 2 {
		t.Errorf("dropSelfPairs() = %+v, %d", kept, n)
	}
}

func TestNeighborModeFlag(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"extract", true},
		{"pair", true},
		{"stats", true},
		{"graph", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, _, err := rootCmd.Find([]string{tt.name})
			if err != nil {
				t.Fatal(err)
			}
			if got := cmd.Flags().Lookup("neighbor-mode") != nil; got != tt.want {
				t.Errorf("%s has --neighbor-mode = %v, want %v", tt.name, got, tt.want)
			}
			if cmd.Flags().Lookup("nodes") == nil {
				t.Errorf("%s is missing --nodes", tt.name)
			}
		})
	}
}

func TestVerifyOutputs(t *testing.T) {
	for _, format := range []string{"csv", "jsonl", "sqlite"} {
		t.Run(format, func(t *testing.T) {
			c := writeInputs(t, "1 2 1\n4 2 1\n3 1 0\n", "3 4\n")
			c.Format = format
			if _, err := extract(context.Background(), c, citegraph.All, quietLogger()); err != nil {
				t.Fatal(err)
			}

			res, err := verifyOutputs(c, nil, feature.DefaultSchema())
			if err != nil {
				t.Fatalf("verifyOutputs() error = %v", err)
			}
			if len(res.Outputs) != 2 || res.Outputs[0].Rows != 3 || res.Outputs[1].Rows != 1 {
				t.Errorf("outputs = %+v", res.Outputs)
			}
			if res.Fingerprint != feature.DefaultSchema().Fingerprint() {
				t.Errorf("Fingerprint = %s", res.Fingerprint)
			}
		})
	}
}

func TestVerifyOutputs_Errors(t *testing.T) {
	c := writeInputs(t, "1 2 1\n3 1 0\n", "")
	if _, err := extract(context.Background(), c, citegraph.All, quietLogger()); err != nil {
		t.Fatal(err)
	}

	other, err := feature.NewSchema(feature.DefaultColumns()[:2])
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		splits   []string
		schema   *feature.Schema
		format   string
		wantCode int
	}{
		{"missing split", []string{"test"}, feature.DefaultSchema(), "csv", ExitDataError},
		{"stale schema", nil, other, "csv", ExitDataError},
		{"bad format", nil, feature.DefaultSchema(), "parquet", ExitConfigError},
		{"missing database", nil, feature.DefaultSchema(), "sqlite", ExitDataError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cc := *c
			cc.Format = tt.format
			_, err := verifyOutputs(&cc, tt.splits, tt.schema)
			if err == nil {
				t.Fatal("verifyOutputs() should fail")
			}
			if got := exitCode(err); got != tt.wantCode {
				t.Errorf("exit code = %d, want %d (%v)", got, tt.wantCode, err)
			}
		})
	}
}

func TestRuns(t *testing.T) {
	c := writeInputs(t, "1 2 1\n3 1 0\n", "3 4\n")
	c.Format = "sqlite"
	res, err := extract(context.Background(), c, citegraph.All, quietLogger())
	if err != nil {
		t.Fatal(err)
	}

	list, err := listRuns(c.OutputDir)
	if err != nil {
		t.Fatalf("listRuns() error = %v", err)
	}
	if len(list.Runs) != 2 || list.Runs[0].Split != "train" || list.Runs[1].Split != "test" {
		t.Fatalf("runs = %+v", list.Runs)
	}
	if list.Runs[0].ID != res.Outputs[0].RunID {
		t.Errorf("first run = %s, want %s", list.Runs[0].ID, res.Outputs[0].RunID)
	}

	detail, err := showRun(c.OutputDir, res.Outputs[1].RunID)
	if err != nil {
		t.Fatalf("showRun() error = %v", err)
	}
	if detail.Rows != 1 || len(detail.Columns) != 43 || detail.Columns[0] != "title_jaccard" {
		t.Errorf("detail = %+v", detail)
	}

	if _, err := showRun(c.OutputDir, "no-such-run"); exitCode(err) != ExitDataError {
		t.Errorf("showRun(unknown) error = %v, want data error", err)
	}
	if _, err := listRuns(t.TempDir()); exitCode(err) != ExitDataError {
		t.Errorf("listRuns(empty dir) error = %v, want data error", err)
	}
}

func TestInitConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.DefaultFile)

	if _, err := initConfig(path, false); err != nil {
		t.Fatalf("initConfig() error = %v", err)
	}
	loaded, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Nodes != "node_information.csv" || loaded.Format != "csv" || loaded.ProgressInterval != config.Default().ProgressInterval {
		t.Errorf("loaded = %+v", loaded)
	}

	if _, err := initConfig(path, false); err == nil {
		t.Error("initConfig() over an existing file should fail")
	}
	if _, err := initConfig(path, true); err != nil {
		t.Errorf("initConfig(force) error = %v", err)
	}
}

package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/matsen/citefeat/internal/citegraph"
	"github.com/matsen/citefeat/internal/config"
	"github.com/matsen/citefeat/internal/edge"
	"github.com/matsen/citefeat/internal/feature"
	"github.com/matsen/citefeat/internal/importer"
	"github.com/matsen/citefeat/internal/reference"
	"github.com/matsen/citefeat/internal/textnorm"
)

// maxReportedErrors caps the parse errors included in a failure message.
const maxReportedErrors = 5

// pipeline holds the prepared state of a run: the catalog, its token
// cache, the graphs built from the training positives and an assembler
// over them.
type pipeline struct {
	catalog   *reference.Catalog
	train     []reference.Pair
	test      []reference.Pair
	corpus    *textnorm.Corpus
	graphs    *citegraph.Graphs
	assembler *feature.Assembler

	selfPairsSkipped int
}

// loadPipeline reads inputs, validates pairs and builds caches and graphs.
// Failures carry the exit code they should produce.
func loadPipeline(c *config.Config, mode citegraph.Mode, logger *slog.Logger) (*pipeline, error) {
	papers, errs := importer.ReadNodeInfoFile(c.Nodes)
	if err := parseFailure("node information", errs); err != nil {
		return nil, err
	}
	catalog, err := reference.NewCatalog(papers)
	if err != nil {
		return nil, withCode(ExitDataError, err)
	}
	logger.Info("loaded node information", "papers", catalog.Len())

	p := &pipeline{catalog: catalog}

	if p.train, err = loadPairs("training", c.Train, catalog, c.SkipSelfPairs, &p.selfPairsSkipped, logger); err != nil {
		return nil, err
	}
	if c.Test != "" {
		if p.test, err = loadPairs("test", c.Test, catalog, c.SkipSelfPairs, &p.selfPairsSkipped, logger); err != nil {
			return nil, err
		}
	}

	norm, err := textnorm.NewEnglishNormalizer(c.StopWordsFile)
	if err != nil {
		return nil, withCode(ExitConfigError, err)
	}
	progress := feature.NewProgress(logger, "normalizing text", c.ProgressInterval)
	p.corpus = textnorm.Build(catalog, norm, progress.Report)
	logger.Debug("normalized text", "papers", p.corpus.Len())

	positives := reference.Positives(p.train)
	p.graphs, err = citegraph.Build(catalog, positives)
	if err != nil {
		return nil, withCode(ExitError, fmt.Errorf("building graphs: %w", err))
	}
	logger.Info("built graphs",
		"positives", len(positives),
		"paper_edges", p.graphs.Papers.EdgeCount(),
		"authors", p.graphs.Authors.VertexCount(),
		"author_edges", p.graphs.Authors.EdgeCount(),
		"missing_author_positives", p.graphs.MissingAuthorPositives,
	)

	p.assembler = feature.New(catalog, p.corpus, p.graphs,
		feature.WithMode(mode),
		feature.WithWorkers(c.Workers),
		feature.WithLogger(logger),
		feature.WithProgressInterval(c.ProgressInterval),
	)
	return p, nil
}

func loadPairs(split, path string, catalog *reference.Catalog, skipSelf bool, skipped *int, logger *slog.Logger) ([]reference.Pair, error) {
	pairs, errs := importer.ReadPairsFile(path)
	if err := parseFailure(split+" pairs", errs); err != nil {
		return nil, err
	}

	if skipSelf {
		var n int
		pairs, n = dropSelfPairs(pairs)
		*skipped += n
		if n > 0 {
			logger.Info("skipped self pairs", "split", split, "count", n)
		}
	}

	if err := edge.Validate(pairs, catalog); err != nil {
		return nil, withCode(ExitDataError, fmt.Errorf("%s pairs: %w", split, err))
	}
	if dups := edge.FindDuplicatePairs(pairs); len(dups) > 0 {
		logger.Warn("duplicate pairs", "split", split, "distinct", len(dups))
	}

	logger.Info("loaded pairs", "split", split, "pairs", len(pairs))
	return pairs, nil
}

// parseFailure folds importer errors into one data error.
func parseFailure(what string, errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	shown := errs
	if len(shown) > maxReportedErrors {
		shown = shown[:maxReportedErrors]
	}
	err := fmt.Errorf("parsing %s: %d errors: %w", what, len(errs), errors.Join(shown...))
	return withCode(ExitDataError, err)
}

// dropSelfPairs removes pairs whose source and target are equal.
func dropSelfPairs(pairs []reference.Pair) ([]reference.Pair, int) {
	kept := make([]reference.Pair, 0, len(pairs))
	for _, p := range pairs {
		if p.SourceID != p.TargetID {
			kept = append(kept, p)
		}
	}
	return kept, len(pairs) - len(kept)
}

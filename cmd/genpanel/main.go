// genpanel produces the synthetic assessment tables: one panel per snapshot,
// the merged cohort export, and a sample of per-company report artifacts.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/edihlab/maturity/internal/cohort"
	"github.com/edihlab/maturity/internal/config"
	"github.com/edihlab/maturity/internal/dataset"
	"github.com/edihlab/maturity/internal/panel"
	"github.com/edihlab/maturity/internal/report"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	weights, err := cfg.WeightConfig()
	if err != nil {
		logger.Error("invalid scoring config", "error", err)
		os.Exit(1)
	}

	gen := cfg.GeneratorConfig()
	n := cfg.Generator.Companies

	before, err := panel.Generate(n, panel.SnapshotBefore, cfg.Generator.SeedBefore, gen, weights)
	if err != nil {
		logger.Error("failed to generate before panel", "error", err)
		os.Exit(1)
	}
	after, err := panel.Generate(n, panel.SnapshotAfter, cfg.Generator.SeedAfter, gen, weights)
	if err != nil {
		logger.Error("failed to generate after panel", "error", err)
		os.Exit(1)
	}
	panel.EnforceImprovementFloor(before, after, cfg.Generator.ImprovementFloor)
	logger.Info("panels generated", "companies", n,
		"seed_before", cfg.Generator.SeedBefore, "seed_after", cfg.Generator.SeedAfter)

	for _, path := range []string{cfg.Data.BeforePath, cfg.Data.AfterPath, cfg.Data.MergedPath} {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				logger.Error("failed to create data dir", "dir", dir, "error", err)
				os.Exit(1)
			}
		}
	}

	if err := dataset.WritePanel(cfg.Data.BeforePath, before); err != nil {
		logger.Error("failed to write before panel", "error", err)
		os.Exit(1)
	}
	if err := dataset.WritePanel(cfg.Data.AfterPath, after); err != nil {
		logger.Error("failed to write after panel", "error", err)
		os.Exit(1)
	}

	merged := cohort.Merge(before, after)
	if err := dataset.WriteMerged(cfg.Data.MergedPath, merged); err != nil {
		logger.Error("failed to write merged table", "error", err)
		os.Exit(1)
	}
	logger.Info("tables written",
		"before", cfg.Data.BeforePath, "after", cfg.Data.AfterPath, "merged", cfg.Data.MergedPath)

	// Sample report artifacts for the first few companies
	sample := merged
	if cfg.Reports.SampleSize < len(sample) {
		sample = sample[:cfg.Reports.SampleSize]
	}
	batch := report.NewBatch(cfg.Reports.Workers, logger)
	result, err := batch.Run(context.Background(), sample)
	if err != nil {
		logger.Error("report batch failed", "error", err)
		os.Exit(1)
	}
	if err := report.WriteArtifacts(cfg.Reports.Dir, result.Reports); err != nil {
		logger.Error("failed to write report artifacts", "error", err)
		os.Exit(1)
	}
	logger.Info("report artifacts written", "dir", cfg.Reports.Dir,
		"count", len(result.Reports), "run_id", result.RunID)
}

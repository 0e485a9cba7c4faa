package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/edihlab/maturity/internal/api"
	"github.com/edihlab/maturity/internal/cohort"
	"github.com/edihlab/maturity/internal/config"
	"github.com/edihlab/maturity/internal/dataset"
	"github.com/edihlab/maturity/internal/panel"
	"github.com/edihlab/maturity/internal/predict"
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
	logger = newLogger(cfg)
	slog.SetDefault(logger)

	weights, err := cfg.WeightConfig()
	if err != nil {
		logger.Error("invalid scoring config", "error", err)
		os.Exit(1)
	}
	logger.Info("scoring weights loaded", "version", weights.Version)

	// Assessment tables
	before, err := dataset.LoadPanel(cfg.Data.BeforePath, panel.SnapshotBefore)
	if err != nil {
		logger.Error("failed to load before panel", "path", cfg.Data.BeforePath, "error", err)
		os.Exit(1)
	}
	after, err := dataset.LoadPanel(cfg.Data.AfterPath, panel.SnapshotAfter)
	if err != nil {
		logger.Error("failed to load after panel", "path", cfg.Data.AfterPath, "error", err)
		os.Exit(1)
	}
	logger.Info("panels loaded", "before", len(before.Orgs), "after", len(after.Orgs))

	merged := cohort.Merge(before, after)
	logger.Info("cohort merged", "companies", len(merged))

	// Significance (optional on small cohorts)
	var significance *cohort.SignificanceResult
	var sigNote string
	if sig, err := cohort.PairedTTest(merged); err != nil {
		if !errors.Is(err, cohort.ErrInsufficientSample) {
			logger.Error("paired test failed", "error", err)
			os.Exit(1)
		}
		sigNote = "cohort too small for a paired test"
		logger.Warn("skipping significance test", "reason", err)
	} else {
		significance = &sig
		logger.Info("significance computed", "statistic", sig.Statistic, "p_value", sig.PValue)
	}

	// Predictor (optional on small cohorts)
	var model *predict.Model
	if m, err := predict.Fit(after); err != nil {
		if !errors.Is(err, predict.ErrUnderdeterminedFit) {
			logger.Error("model fit failed", "error", err)
			os.Exit(1)
		}
		logger.Warn("predictor disabled", "reason", err)
	} else {
		model = m
		logger.Info("model fitted", "trained_on", m.TrainedOn)
	}

	// API server
	router := api.NewRouter(merged, after, significance, sigNote, model, logger)
	apiServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Metrics server
	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler: api.NewMetricsRouter(),
	}

	go func() {
		logger.Info("API server starting", "port", cfg.Server.Port)
		if err := apiServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("API server error", "error", err)
		}
	}()

	go func() {
		logger.Info("metrics server starting", "port", cfg.Server.MetricsPort)
		if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = apiServer.Shutdown(shutdownCtx)
	_ = metricsServer.Shutdown(shutdownCtx)

	logger.Info("shutdown complete")
}

func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Logging.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

// Package main is the entry point for the OptionSentry risk monitoring engine.
// It watches a short-option/equity portfolio snapshot, evaluates position,
// portfolio and capital health against configurable thresholds, and serves
// results plus roll recommendations over HTTP.
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/optionsentry/optionsentry/internal/config"
	"github.com/optionsentry/optionsentry/internal/database"
	"github.com/optionsentry/optionsentry/internal/modules/monitoring"
	monitoringhandlers "github.com/optionsentry/optionsentry/internal/modules/monitoring/handlers"
	"github.com/optionsentry/optionsentry/internal/modules/pricing"
	"github.com/optionsentry/optionsentry/internal/modules/rolls"
	rollshandlers "github.com/optionsentry/optionsentry/internal/modules/rolls/handlers"
	"github.com/optionsentry/optionsentry/internal/modules/suggestions"
	"github.com/optionsentry/optionsentry/internal/scheduler"
	"github.com/optionsentry/optionsentry/internal/server"
	"github.com/optionsentry/optionsentry/internal/telemetry"
	"github.com/optionsentry/optionsentry/pkg/logger"
)

// defaultRiskFreeRate feeds stress-scenario repricing. Precision barely
// matters there, so a fixed rate beats wiring a rates feed.
const defaultRiskFreeRate = 0.04

// main orchestrates the startup sequence:
// 1. Load configuration from environment variables
// 2. Initialize logging
// 3. Load threshold configuration (defaults overlaid with YAML)
// 4. Open the runs database and restore per-position delta memory
// 5. Build the monitoring pipeline and roll calculator
// 6. Register the periodic monitoring cycle
// 7. Start the HTTP server and wait for shutdown
func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting OptionSentry")

	monitorCfg, err := config.LoadMonitorConfig(cfg.ThresholdPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.ThresholdPath).Msg("Failed to load threshold configuration")
	}

	runsDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "runs.db"),
		Profile: database.ProfileStandard,
		Name:    "runs",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open runs database")
	}
	defer runsDB.Close()

	runRepo := monitoring.NewRunRepository(runsDB, log)
	if err := runRepo.InitSchema(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize runs schema")
	}

	// Delta memory survives restarts so delta-change checks keep their
	// baseline across cycles.
	history := monitoring.NewDeltaHistory(filepath.Join(cfg.DataDir, "delta_history.msgpack"))
	if err := history.Load(); err != nil {
		log.Warn().Err(err).Msg("Failed to load delta history, starting fresh")
	}

	metrics := telemetry.NewMetrics()
	suggestionGen := suggestions.NewGenerator(log)
	pricingEngine := pricing.NewEngine(defaultRiskFreeRate)
	pipeline := monitoring.NewPipeline(monitorCfg, pricingEngine, history, suggestionGen, log)

	cycleJob := scheduler.NewMonitorCycleJob(
		&scheduler.FileSnapshotSource{Path: cfg.SnapshotPath},
		pipeline,
		runRepo,
		history,
		metrics,
		log,
	)

	sched := scheduler.New(log)
	if err := sched.AddJob(cfg.CycleCron, cycleJob); err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.CycleCron).Msg("Failed to register monitoring cycle")
	}
	sched.Start()
	defer sched.Stop()

	rollCalc := rolls.NewCalculator(monitorCfg.Roll, log)

	srv := server.New(server.Config{
		Log:     log,
		Config:  cfg,
		RunsDB:  runsDB,
		Metrics: metrics,
		Port:    cfg.Port,
		DevMode: cfg.DevMode,
		Monitor: monitoringhandlers.NewHandler(cycleJob, runRepo, log),
		Rolls:   rollshandlers.NewHandler(rollCalc, log),
	})

	go func() {
		if err := srv.Start(); err != nil {
			log.Error().Err(err).Msg("HTTP server stopped")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	if err := history.Save(); err != nil {
		log.Error().Err(err).Msg("Failed to persist delta history on shutdown")
	}

	log.Info().Msg("Server stopped")
}

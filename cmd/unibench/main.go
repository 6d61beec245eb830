package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/unibench/unibench/internal/config"
	"github.com/unibench/unibench/internal/db"
	"github.com/unibench/unibench/internal/harness"
	"github.com/unibench/unibench/internal/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to the YAML configuration file")
	scalesFlag := flag.String("scales", "", "Comma-separated student scales, overriding the config (e.g. 1000,10000)")
	outputDir := flag.String("output", "", "Output directory for the report and charts, overriding the config")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	if *scalesFlag != "" {
		scales, err := parseScales(*scalesFlag)
		if err != nil {
			logger.Error().Err(err).Str("scales", *scalesFlag).Msg("Invalid -scales value")
			os.Exit(1)
		}
		cfg.Benchmark.Scales = scales
	}
	if *outputDir != "" {
		cfg.Report.OutputDir = *outputDir
	}

	logger.Configure(logger.Config{
		Level:  logger.LogLevel(cfg.Logging.Level),
		Pretty: cfg.Logging.Format != "json",
	})
	lgr := logger.Default()

	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		os.Exit(1)
	}
	defer database.Close()

	// Interrupt cancels the run; the per-query timeout already bounds every
	// individual store call.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rep, err := harness.New(cfg, database, lgr).Run(ctx)
	if err != nil {
		lgr.Error().Err(err).Msg("Benchmark run failed")
		if rep != nil {
			lgr.Info().Msg("Partial report written over completed measurements")
		}
		os.Exit(1)
	}

	lgr.Info().Msg("Benchmark finished")
}

// parseScales parses a comma-separated list of strictly increasing scales
func parseScales(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	scales := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		scales = append(scales, n)
	}
	return scales, nil
}

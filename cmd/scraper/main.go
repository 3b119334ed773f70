package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/sih-agent/backend/internal/metrics"
	"github.com/sih-agent/backend/internal/scraper"
	"github.com/sih-agent/backend/pkg/config"
	"github.com/sih-agent/backend/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	metrics.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := scraper.New(
		cfg.Scraper.BaseURL,
		time.Duration(cfg.Scraper.TimeoutSec)*time.Second,
		time.Duration(cfg.Scraper.DelaySec)*time.Second,
	)

	logger.Info("Scrape starting",
		zap.String("base_url", cfg.Scraper.BaseURL),
		zap.String("output_dir", cfg.Data.JSONDir),
	)
	return s.ScrapeAll(ctx, cfg.Data.JSONDir)
}

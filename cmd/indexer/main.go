package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/sih-agent/backend/internal/ingestion"
	"github.com/sih-agent/backend/internal/llm"
	"github.com/sih-agent/backend/internal/metrics"
	"github.com/sih-agent/backend/internal/vector"
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
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	metrics.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()

	docs, err := ingestion.LoadDirectory(cfg.Data.JSONDir)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}
	metrics.DocumentsLoaded.Add(float64(len(docs)))
	logger.Info("Documents loaded",
		zap.String("dir", cfg.Data.JSONDir),
		zap.Int("documents", len(docs)),
	)

	splitter := ingestion.NewSplitter(ingestion.DefaultChunkSize, ingestion.DefaultChunkOverlap)
	chunks := splitter.SplitDocuments(docs)
	logger.Info("Documents split", zap.Int("chunks", len(chunks)))

	client := llm.NewClient(
		cfg.LLM.APIKey,
		cfg.LLM.Model,
		cfg.LLM.EmbeddingModel,
		cfg.LLM.EmbeddingDim,
		cfg.LLM.Temperature,
		cfg.LLM.MaxTokens,
		time.Duration(cfg.LLM.TimeoutSec)*time.Second,
	)

	store, err := vector.Build(ctx, chunks, client)
	if err != nil {
		return fmt.Errorf("failed to build index: %w", err)
	}
	metrics.ChunksIndexed.Add(float64(store.Size()))

	if err := store.Save(cfg.Index.Path); err != nil {
		return fmt.Errorf("failed to save index: %w", err)
	}

	logger.Info("Index built",
		zap.String("path", cfg.Index.Path),
		zap.Int("chunks", store.Size()),
		zap.String("embedding_model", store.Model()),
		zap.Int("embedding_dim", store.Dim()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/sih-agent/backend/internal/chat"
	"github.com/sih-agent/backend/internal/guard"
	"github.com/sih-agent/backend/internal/llm"
	"github.com/sih-agent/backend/internal/metrics"
	"github.com/sih-agent/backend/internal/query"
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
	metrics.Serve(cfg.Metrics.ListenAddr)

	index, err := vector.Load(cfg.Index.Path, cfg.LLM.EmbeddingModel, cfg.LLM.EmbeddingDim)
	if err != nil {
		if errors.Is(err, vector.ErrLoad) {
			return fmt.Errorf("index at %s is missing or unusable (run the indexer first): %w", cfg.Index.Path, err)
		}
		return err
	}
	logger.Info("Index loaded",
		zap.String("path", cfg.Index.Path),
		zap.Int("chunks", index.Size()),
	)

	client := llm.NewClient(
		cfg.LLM.APIKey,
		cfg.LLM.Model,
		cfg.LLM.EmbeddingModel,
		cfg.LLM.EmbeddingDim,
		cfg.LLM.Temperature,
		cfg.LLM.MaxTokens,
		time.Duration(cfg.LLM.TimeoutSec)*time.Second,
	)

	engine := query.NewEngine(client, index, cfg.Index.TopK)

	estimator := guard.NewTokenEstimator()
	logger.Info("Token estimator selected", zap.String("estimator", estimator.Name()))

	session := chat.NewSession(
		engine,
		guard.NewValidator(cfg.Chat.MaxInputChars, cfg.Chat.MaxInputTokens, estimator),
		guard.NewLimiter(cfg.Chat.RateLimitRequests, time.Duration(cfg.Chat.RateLimitWindowSec)*time.Second),
		chat.NewHistory(cfg.Chat.MaxHistoryTurns, cfg.Chat.MaxStoredAnswerLen),
	)
	logger.Info("Session started", zap.String("session_id", session.ID()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return chat.NewLoop(session, os.Stdin, os.Stdout).Run(ctx)
}

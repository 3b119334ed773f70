package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sih-agent/backend/internal/guard"
	"github.com/sih-agent/backend/internal/metrics"
	"github.com/sih-agent/backend/internal/query"
	"github.com/sih-agent/backend/internal/storage/models"
	"github.com/sih-agent/backend/pkg/logger"
)

// Asker runs the retrieval chain for one question.
type Asker interface {
	Ask(ctx context.Context, question string, history []models.ChatTurn) (*query.Answer, error)
}

// Session is the explicit per-conversation state: history and rate window are
// owned here, never ambient. A Session processes one question at a time and
// is not safe for concurrent use; independent sessions may freely share the
// underlying index.
type Session struct {
	id        string
	engine    Asker
	validator *guard.Validator
	limiter   *guard.Limiter
	history   *History
}

func NewSession(engine Asker, validator *guard.Validator, limiter *guard.Limiter, history *History) *Session {
	return &Session{
		id:        uuid.New().String(),
		engine:    engine,
		validator: validator,
		limiter:   limiter,
		history:   history,
	}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) History() *History {
	return s.history
}

// Ask gates, answers, and records one question. Validation failures never
// consume a rate-limit slot; upstream failures leave the history unmodified.
// All returned errors are recoverable: the caller reports them and the
// session continues.
func (s *Session) Ask(ctx context.Context, input string) (string, error) {
	if err := s.validator.Validate(input); err != nil {
		if rej, ok := err.(*guard.Rejection); ok {
			metrics.RejectionsTotal.WithLabelValues(rej.Reason).Inc()
			logger.Debug("Input rejected",
				zap.String("session", s.id),
				zap.String("reason", rej.Reason),
			)
		}
		metrics.TurnsTotal.WithLabelValues("rejected").Inc()
		return "", err
	}

	if !s.limiter.Allow() {
		metrics.RejectionsTotal.WithLabelValues(guard.ReasonRateLimit).Inc()
		metrics.TurnsTotal.WithLabelValues("rejected").Inc()
		return "", &guard.Rejection{
			Reason:  guard.ReasonRateLimit,
			Message: "Rate limit exceeded. Please wait a minute.",
		}
	}

	start := time.Now()
	answer, err := s.engine.Ask(ctx, input, s.history.Turns())
	if err != nil {
		metrics.TurnsTotal.WithLabelValues("error").Inc()
		logger.Warn("Turn failed",
			zap.String("session", s.id),
			zap.Error(err),
		)
		return "", fmt.Errorf("upstream call failed: %w", err)
	}

	s.history.Record(input, answer.Text)

	metrics.TurnsTotal.WithLabelValues("ok").Inc()
	metrics.TurnDuration.Observe(time.Since(start).Seconds())
	logger.Info("Turn completed",
		zap.String("session", s.id),
		zap.String("standalone_query", answer.RewrittenQuery),
		zap.Int("sources", len(answer.Sources)),
		zap.Duration("latency", time.Since(start)),
	)

	return answer.Text, nil
}

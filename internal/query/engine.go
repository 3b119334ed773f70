package query

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sih-agent/backend/internal/metrics"
	"github.com/sih-agent/backend/internal/storage/models"
	"github.com/sih-agent/backend/pkg/logger"
)

const DefaultTopK = 8

// LanguageModel is the generative collaborator the engine drives.
type LanguageModel interface {
	RewriteQuestion(ctx context.Context, question string, history []models.ChatTurn) (string, error)
	Answer(ctx context.Context, question, contextText string, history []models.ChatTurn) (string, error)
	CreateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// Retriever is the similarity index the engine searches. It must be safe for
// concurrent readers.
type Retriever interface {
	Search(query []float32, k int) []models.SearchResult
}

// Engine runs the retrieval chain for one question: rewrite the question into
// a standalone query using the history, embed it, retrieve the top-k chunks,
// and compose a grounded answer. The engine never mutates history; the
// session owns that.
type Engine struct {
	llm   LanguageModel
	index Retriever
	topK  int
}

// Answer is the outcome of one chain invocation.
type Answer struct {
	Text           string
	RewrittenQuery string
	Sources        []models.SearchResult
}

func NewEngine(llm LanguageModel, index Retriever, topK int) *Engine {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Engine{llm: llm, index: index, topK: topK}
}

// Ask processes one question against the current (pre-update) history.
// Each stage failure is an upstream error the caller reports and recovers
// from; the chain has no partial results.
func (e *Engine) Ask(ctx context.Context, question string, history []models.ChatTurn) (*Answer, error) {
	standalone, err := e.llm.RewriteQuestion(ctx, question, history)
	if err != nil {
		return nil, fmt.Errorf("failed to rewrite question: %w", err)
	}
	if standalone != question {
		logger.Debug("Question rewritten",
			zap.String("question", question),
			zap.String("standalone", standalone),
		)
	}

	embedding, err := e.llm.CreateEmbedding(ctx, standalone)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	results := e.index.Search(embedding, e.topK)
	metrics.RetrievalResults.Observe(float64(len(results)))
	logger.Debug("Chunks retrieved",
		zap.Int("count", len(results)),
		zap.Int("top_k", e.topK),
	)

	answer, err := e.llm.Answer(ctx, question, stuffChunks(results), history)
	if err != nil {
		return nil, fmt.Errorf("failed to compose answer: %w", err)
	}

	return &Answer{
		Text:           answer,
		RewrittenQuery: standalone,
		Sources:        results,
	}, nil
}

// stuffChunks concatenates retrieved chunk texts, in retrieval order,
// separated by a blank line.
func stuffChunks(results []models.SearchResult) string {
	texts := make([]string, 0, len(results))
	for _, result := range results {
		texts = append(texts, result.Chunk.Text)
	}
	return strings.Join(texts, "\n\n")
}

package guard

import (
	prose "github.com/jdkato/prose/v2"
	"go.uber.org/zap"

	"github.com/sih-agent/backend/pkg/logger"
)

// TokenEstimator approximates how many model tokens a text costs.
type TokenEstimator interface {
	Name() string
	Estimate(text string) int
}

// NewTokenEstimator picks the tokenizer-backed estimator when the tokenizer
// can be constructed, falling back to the characters/4 heuristic otherwise.
// The choice is made once at startup, not per request.
func NewTokenEstimator() TokenEstimator {
	if _, err := tokenize("probe"); err != nil {
		logger.Warn("Tokenizer unavailable, using heuristic token estimate", zap.Error(err))
		return HeuristicEstimator{}
	}
	return TokenizerEstimator{}
}

// TokenizerEstimator counts tokens with a real tokenizer.
type TokenizerEstimator struct{}

func (TokenizerEstimator) Name() string { return "tokenizer" }

func (TokenizerEstimator) Estimate(text string) int {
	tokens, err := tokenize(text)
	if err != nil {
		return HeuristicEstimator{}.Estimate(text)
	}
	return tokens
}

// HeuristicEstimator approximates one token per four characters.
type HeuristicEstimator struct{}

func (HeuristicEstimator) Name() string { return "heuristic" }

func (HeuristicEstimator) Estimate(text string) int {
	return len(text) / 4
}

func tokenize(text string) (int, error) {
	doc, err := prose.NewDocument(text,
		prose.WithSegmentation(false),
		prose.WithTagging(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return 0, err
	}
	return len(doc.Tokens()), nil
}

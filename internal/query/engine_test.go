package query

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sih-agent/backend/internal/storage/models"
)

type fakeLLM struct {
	rewriteFn   func(question string, history []models.ChatTurn) (string, error)
	embedFn     func(text string) ([]float32, error)
	answerFn    func(question, contextText string, history []models.ChatTurn) (string, error)
	rewriteCall int
	lastContext string
}

func (f *fakeLLM) RewriteQuestion(_ context.Context, question string, history []models.ChatTurn) (string, error) {
	f.rewriteCall++
	if f.rewriteFn != nil {
		return f.rewriteFn(question, history)
	}
	if len(history) == 0 {
		return question, nil
	}
	return "standalone: " + question, nil
}

func (f *fakeLLM) CreateEmbedding(_ context.Context, text string) ([]float32, error) {
	if f.embedFn != nil {
		return f.embedFn(text)
	}
	return []float32{1, 0, 0}, nil
}

func (f *fakeLLM) Answer(_ context.Context, question, contextText string, history []models.ChatTurn) (string, error) {
	f.lastContext = contextText
	if f.answerFn != nil {
		return f.answerFn(question, contextText, history)
	}
	return "answer to " + question, nil
}

type fakeIndex struct {
	results []models.SearchResult
	gotK    int
}

func (f *fakeIndex) Search(_ []float32, k int) []models.SearchResult {
	f.gotK = k
	if k > len(f.results) {
		k = len(f.results)
	}
	return f.results[:k]
}

func chunkResult(id, text string) models.SearchResult {
	return models.SearchResult{
		Chunk: models.Chunk{ID: id, Text: text},
		Score: 1,
	}
}

func TestAskHappyPath(t *testing.T) {
	llm := &fakeLLM{}
	index := &fakeIndex{results: []models.SearchResult{
		chunkResult("c1", "registration opens in August"),
		chunkResult("c2", "the finale runs for 36 hours"),
	}}
	engine := NewEngine(llm, index, 8)

	answer, err := engine.Ask(context.Background(), "When does registration open?", nil)
	require.NoError(t, err)

	assert.Equal(t, "answer to When does registration open?", answer.Text)
	assert.Equal(t, "When does registration open?", answer.RewrittenQuery,
		"empty history keeps the question verbatim")
	assert.Len(t, answer.Sources, 2)
	assert.Equal(t, 8, index.gotK)
}

func TestAskStuffsChunksInRetrievalOrder(t *testing.T) {
	llm := &fakeLLM{}
	index := &fakeIndex{results: []models.SearchResult{
		chunkResult("c1", "first chunk"),
		chunkResult("c2", "second chunk"),
		chunkResult("c3", "third chunk"),
	}}
	engine := NewEngine(llm, index, 3)

	_, err := engine.Ask(context.Background(), "anything", nil)
	require.NoError(t, err)
	assert.Equal(t, "first chunk\n\nsecond chunk\n\nthird chunk", llm.lastContext,
		"chunks are joined by a blank line in retrieval order")
}

func TestAskUsesRewrittenQueryForRetrieval(t *testing.T) {
	var embedded string
	llm := &fakeLLM{
		embedFn: func(text string) ([]float32, error) {
			embedded = text
			return []float32{1}, nil
		},
	}
	engine := NewEngine(llm, &fakeIndex{}, 8)

	history := []models.ChatTurn{{Role: models.RoleHuman, Text: "Tell me about SIH 2025"}}
	_, err := engine.Ask(context.Background(), "When is it?", history)
	require.NoError(t, err)
	assert.Equal(t, "standalone: When is it?", embedded,
		"retrieval must use the rewritten query, not the raw question")
}

func TestAskFollowUpScenario(t *testing.T) {
	// "When is it?" after talking about SIH 2025 must retrieve through a
	// standalone restatement that names SIH 2025.
	llm := &fakeLLM{
		rewriteFn: func(question string, history []models.ChatTurn) (string, error) {
			require.NotEmpty(t, history)
			return "When is SIH 2025?", nil
		},
		embedFn: func(text string) ([]float32, error) {
			if strings.Contains(text, "SIH 2025") {
				return []float32{1, 0}, nil
			}
			return []float32{0, 1}, nil
		},
	}
	index := &fakeIndex{results: []models.SearchResult{
		chunkResult("c1", `{"q": "When is SIH 2025?", "a": "September"}`),
	}}
	engine := NewEngine(llm, index, 8)

	history := []models.ChatTurn{{Role: models.RoleHuman, Text: "Tell me about SIH 2025"}}
	answer, err := engine.Ask(context.Background(), "When is it?", history)
	require.NoError(t, err)

	assert.Equal(t, "When is SIH 2025?", answer.RewrittenQuery)
	assert.Contains(t, llm.lastContext, "September",
		"the grounding context must carry the retrieved record")
}

func TestAskStageFailures(t *testing.T) {
	boom := errors.New("provider unavailable")

	cases := []struct {
		name string
		llm  *fakeLLM
	}{
		{"rewrite fails", &fakeLLM{rewriteFn: func(string, []models.ChatTurn) (string, error) {
			return "", boom
		}}},
		{"embed fails", &fakeLLM{embedFn: func(string) ([]float32, error) {
			return nil, boom
		}}},
		{"compose fails", &fakeLLM{answerFn: func(string, string, []models.ChatTurn) (string, error) {
			return "", boom
		}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			engine := NewEngine(tc.llm, &fakeIndex{}, 8)
			_, err := engine.Ask(context.Background(), "q", nil)
			require.ErrorIs(t, err, boom)
		})
	}
}

func TestNewEngineDefaultTopK(t *testing.T) {
	index := &fakeIndex{results: make([]models.SearchResult, 0)}
	engine := NewEngine(&fakeLLM{}, index, 0)
	_, err := engine.Ask(context.Background(), "q", nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultTopK, index.gotK)
}

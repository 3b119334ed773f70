package chat

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sih-agent/backend/internal/storage/models"
)

func TestHistoryRecordsExchange(t *testing.T) {
	h := NewHistory(16, 250)
	h.Record("When is SIH 2025?", "SIH 2025 runs in September.")

	turns := h.Turns()
	require.Len(t, turns, 2)
	assert.Equal(t, models.RoleHuman, turns[0].Role)
	assert.Equal(t, "When is SIH 2025?", turns[0].Text)
	assert.Equal(t, models.RoleAssistant, turns[1].Role)
	assert.Equal(t, "SIH 2025 runs in September.", turns[1].Text)
}

func TestHistoryCapFIFO(t *testing.T) {
	h := NewHistory(16, 250)
	for i := 0; i < 20; i++ {
		h.Record(fmt.Sprintf("question %d", i), fmt.Sprintf("answer %d", i))
	}

	turns := h.Turns()
	assert.Len(t, turns, 16, "history never exceeds the cap")
	assert.Equal(t, "question 12", turns[0].Text, "oldest turns are evicted first")
	assert.Equal(t, "answer 19", turns[len(turns)-1].Text, "newest turns are retained")
}

func TestHistoryTruncatesAnswers(t *testing.T) {
	h := NewHistory(16, 250)
	long := strings.Repeat("x", 400)
	h.Record("q", long)

	turns := h.Turns()
	require.Len(t, turns, 2)
	assert.Equal(t, strings.Repeat("x", 250)+"...", turns[1].Text)
	assert.Len(t, turns[1].Text, 253)
}

func TestHistoryTruncatesOnRuneBoundary(t *testing.T) {
	h := NewHistory(16, 250)
	// "न" is three bytes; 250 is not a multiple of three, so a byte-exact
	// cut would split a character.
	h.Record("q", strings.Repeat("न", 120))

	turns := h.Turns()
	require.Len(t, turns, 2)
	stored := turns[1].Text
	assert.True(t, utf8.ValidString(stored), "stored answer is not valid UTF-8: %q", stored)
	assert.True(t, strings.HasSuffix(stored, "..."))
	assert.LessOrEqual(t, len(stored), 253)
}

func TestHistoryKeepsShortAnswersIntact(t *testing.T) {
	h := NewHistory(16, 250)
	exact := strings.Repeat("y", 250)
	h.Record("q", exact)

	turns := h.Turns()
	assert.Equal(t, exact, turns[1].Text, "answers at the limit are not marked")
}

func TestHistoryQuestionsNeverTruncated(t *testing.T) {
	h := NewHistory(16, 250)
	long := strings.Repeat("q", 400)
	h.Record(long, "a")

	assert.Equal(t, long, h.Turns()[0].Text)
}

func TestHistoryTurnsReturnsCopy(t *testing.T) {
	h := NewHistory(16, 250)
	h.Record("q", "a")

	turns := h.Turns()
	turns[0].Text = "mutated"
	assert.Equal(t, "q", h.Turns()[0].Text)
}

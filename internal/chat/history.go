package chat

import (
	"unicode/utf8"

	"github.com/sih-agent/backend/internal/storage/models"
)

const (
	DefaultMaxHistoryTurns    = 16
	DefaultMaxStoredAnswerLen = 250
)

// History is the bounded conversation memory of one session. It keeps at most
// maxTurns turns, evicting the oldest first, and truncates assistant turns to
// maxAnswerLen characters before storing them: the history is a lossy summary
// of what was said, not a transcript.
type History struct {
	turns        []models.ChatTurn
	maxTurns     int
	maxAnswerLen int
}

func NewHistory(maxTurns, maxAnswerLen int) *History {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxHistoryTurns
	}
	if maxAnswerLen <= 0 {
		maxAnswerLen = DefaultMaxStoredAnswerLen
	}
	return &History{maxTurns: maxTurns, maxAnswerLen: maxAnswerLen}
}

// Record appends a completed exchange and evicts the oldest turns beyond the
// cap. It is called only after a successful turn; failed turns leave the
// history untouched.
func (h *History) Record(question, answer string) {
	h.turns = append(h.turns,
		models.ChatTurn{Role: models.RoleHuman, Text: question},
		models.ChatTurn{Role: models.RoleAssistant, Text: h.truncate(answer)},
	)
	if len(h.turns) > h.maxTurns {
		h.turns = h.turns[len(h.turns)-h.maxTurns:]
	}
}

// Turns returns a copy of the retained turns, oldest first.
func (h *History) Turns() []models.ChatTurn {
	return append([]models.ChatTurn(nil), h.turns...)
}

func (h *History) Len() int {
	return len(h.turns)
}

func (h *History) truncate(answer string) string {
	if len(answer) <= h.maxAnswerLen {
		return answer
	}
	// Back off to a rune boundary so the stored text stays valid UTF-8.
	cut := h.maxAnswerLen
	for cut > 0 && !utf8.RuneStart(answer[cut]) {
		cut--
	}
	return answer[:cut] + "..."
}

package llm

import (
	"context"
	"fmt"

	"github.com/sih-agent/backend/internal/storage/models"
)

const rewriteSystemPrompt = `Given a chat history and the latest user question ` +
	`which might reference context in the chat history, formulate a standalone question ` +
	`which can be understood without the chat history. Do NOT answer the question, ` +
	`just reformulate it if needed and otherwise return it as is.`

const answerSystemPrompt = `You are an assistant for question-answering tasks about Smart India Hackathon (SIH). ` +
	`Use the following pieces of retrieved context to answer the question. ` +
	`If you don't know the answer, just say that you don't know. ` +
	`Be specific about SIH details like registration, themes, problem statements, and dates.

%s`

// RewriteQuestion turns a follow-up question into a standalone query using
// the history for pronoun and reference resolution. With an empty history the
// question already stands alone, so no model call is made.
func (c *Client) RewriteQuestion(ctx context.Context, question string, history []models.ChatTurn) (string, error) {
	if len(history) == 0 {
		return question, nil
	}
	return c.Complete(ctx, rewriteSystemPrompt, history, question)
}

// Answer composes a grounded answer from the retrieved context, the
// conversation history, and the current question. One pass, no refinement.
func (c *Client) Answer(ctx context.Context, question, contextText string, history []models.ChatTurn) (string, error) {
	return c.Complete(ctx, fmt.Sprintf(answerSystemPrompt, contextText), history, question)
}

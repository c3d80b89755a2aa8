// Package assistant answers questions about a user's notes with a hosted
// language model.
package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"ai-notes-backend/internal/assistant/prompts"
	"ai-notes-backend/internal/domain"
	llmHandlers "ai-notes-backend/internal/llm_handlers"
	"ai-notes-backend/internal/models"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

// NoteLister returns a user's notes, most recently updated first.
type NoteLister interface {
	List(ctx context.Context, userID uuid.UUID) ([]models.Note, error)
}

type Agent struct {
	llmClient llmHandlers.Client
	notes     NoteLister
	policy    *bluemonday.Policy
	log       *slog.Logger
}

func NewAgent(llmClient llmHandlers.Client, notes NoteLister, log *slog.Logger) *Agent {
	return &Agent{
		llmClient: llmClient,
		notes:     notes,
		policy:    answerPolicy(),
		log:       log.With("service", "assistant"),
	}
}

// Ask sends every note of the user, the prior chat history and the new
// question to the model and returns the sanitized HTML answer. History is
// never stored here, on failure the caller can retry with the same input.
func (a *Agent) Ask(ctx context.Context, userID uuid.UUID, history []models.ChatMessage, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", domain.NewValidationError("question", "What do you want to ask?")
	}

	notes, err := a.notes.List(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("load notes: %w", err)
	}

	systemMessage := prompts.BuildSystemPrompt(notes)

	messages := make([]llmHandlers.Message, 0, len(history)+1)
	for _, m := range history {
		messages = append(messages, llmHandlers.Message{Role: models.ParseRole(string(m.Role)), Content: m.Content})
	}
	messages = append(messages, llmHandlers.Message{
		Role:    models.RoleUser,
		Content: question,
	})

	response, err := a.llmClient.Chat(ctx, systemMessage, messages)
	if err != nil {
		a.log.ErrorContext(ctx, "assistant request failed",
			slog.String("user_id", userID.String()),
			slog.Int("notes", len(notes)),
			slog.Any("error", err))
		return "", fmt.Errorf("LLM chat error: %w", err)
	}

	return a.policy.Sanitize(stripCodeFence(response)), nil
}

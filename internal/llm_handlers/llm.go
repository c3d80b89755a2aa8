package llmHandlers

import (
	"context"

	"ai-notes-backend/internal/models"
)

// Message is one conversation turn sent to a provider.
type Message struct {
	Role    models.Role
	Content string
}

// Client sends a system instruction plus turns to a hosted model and returns
// the complete text answer.
type Client interface {
	Chat(ctx context.Context, systemMessage string, messages []Message) (string, error)
}

package workflow

import (
	"context"

	"ai-notes-backend/internal/api/middleware"
	"ai-notes-backend/internal/domain"
	"ai-notes-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Asker answers a question about the user's notes.
type Asker interface {
	Ask(ctx context.Context, userID uuid.UUID, history []models.ChatMessage, question string) (string, error)
}

type Workflow struct {
	agent Asker
}

func NewWorkflow(agent Asker) *Workflow {
	return &Workflow{agent: agent}
}

// TriggerChatWorkflow handles one chat question. The client owns the history
// and resends it with every question.
func (w *Workflow) TriggerChatWorkflow(c *fiber.Ctx) error {
	identity := middleware.CurrentIdentity(c)
	if identity == nil {
		return domain.ErrUnauthorized
	}

	var dto struct {
		Question string               `json:"question"`
		History  []models.ChatMessage `json:"history"`
	}
	if err := c.BodyParser(&dto); err != nil {
		return domain.NewValidationError("body", "Invalid request body")
	}

	answer, err := w.agent.Ask(c.UserContext(), identity.UserID, dto.History, dto.Question)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"errorMessage": nil,
		"answer":       answer,
	})
}

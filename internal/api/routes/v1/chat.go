package v1

import (
	"time"

	"ai-notes-backend/internal/api/middleware"
	"ai-notes-backend/internal/assistant/workflow"
	"ai-notes-backend/internal/libraries"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// registerChat wires the assistant endpoint and the editor websocket.
func registerChat(r fiber.Router, deps Dependencies) {
	chatWorkflow := workflow.NewWorkflow(deps.Agent)

	chatLimiter := limiter.New(limiter.Config{
		Max:        deps.Config.Chat.RequestsPerMinute,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			if id := middleware.CurrentIdentity(c); id != nil {
				return id.UserID.String()
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"errorMessage": "Too many questions, please wait a moment",
			})
		},
	})

	r.Post("/chat", chatLimiter, chatWorkflow.TriggerChatWorkflow)

	r.Get("/ws", libraries.WebSocketHandler(deps.Hub, deps.Notes, deps.Config.Notes.AutosaveDelay, deps.Log))
}

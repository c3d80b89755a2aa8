package v1

import (
	"log/slog"

	"ai-notes-backend/internal/api/middleware"
	"ai-notes-backend/internal/assistant"
	"ai-notes-backend/internal/auth"
	"ai-notes-backend/internal/config"
	"ai-notes-backend/internal/handlers"
	"ai-notes-backend/internal/libraries"
	"ai-notes-backend/internal/notes"

	"github.com/gofiber/fiber/v2"
)

// Dependencies are the services the routes are wired to.
type Dependencies struct {
	Config *config.Config
	Log    *slog.Logger
	DB     handlers.Pinger
	Auth   *auth.Gateway
	Notes  *notes.Service
	Agent  *assistant.Agent
	Hub    *libraries.Hub
}

func RegisterRoutes(r fiber.Router, deps Dependencies) {
	registerHealth(r, deps)

	authed := r.Group("", middleware.RequireAuth(deps.Auth, deps.Config.Auth.CookieName))
	registerNotes(authed, deps)
	registerChat(authed, deps)
}

package v1

import (
	"ai-notes-backend/internal/handlers"

	"github.com/gofiber/fiber/v2"
)

func registerHealth(r fiber.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler(deps.DB)
	r.Get("/health", healthHandler.Health)
}

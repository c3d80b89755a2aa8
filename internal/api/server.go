package api

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"ai-notes-backend/internal/api/middleware"
	"ai-notes-backend/internal/config"
	"ai-notes-backend/internal/domain"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// ErrorResponse is the uniform failure body.
type ErrorResponse struct {
	ErrorMessage string `json:"errorMessage"`
}

func NewServer(cfg config.ServerConfig, log *slog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler:          customErrorHandler(log),
		AppName:               "AI Notes Backend",
		DisableStartupMessage: true,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.RequestLogger(log))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: !strings.Contains(cfg.CORSOrigins, "*"),
	}))
	// Middleware to allow WebSocket upgrade
	app.Use("/api/v1/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	return app
}

// customErrorHandler writes {"errorMessage": ...} with the status matching
// the error. Internal details are logged, never returned.
func customErrorHandler(log *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := middleware.ErrorStatus(err)

		message := domain.UserMessage(err)
		var fe *fiber.Error
		if errors.As(err, &fe) {
			message = fe.Message
		}

		if code >= fiber.StatusInternalServerError {
			log.ErrorContext(c.UserContext(), "request failed",
				slog.String("path", c.Path()),
				slog.Any("error", err))
		}

		return c.Status(code).JSON(ErrorResponse{ErrorMessage: message})
	}
}

func StartServer(app *fiber.App, cfg config.ServerConfig, log *slog.Logger) error {
	log.Info("server starting", slog.String("addr", cfg.Addr()))
	return app.Listen(cfg.Addr())
}

// Shutdown stops accepting connections and waits for in-flight requests up
// to timeout.
func Shutdown(app *fiber.App, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return app.ShutdownWithContext(ctx)
}

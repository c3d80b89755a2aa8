package middleware

import (
	"errors"
	"log/slog"
	"time"

	"ai-notes-backend/internal/domain"

	"github.com/gofiber/fiber/v2"
)

// ErrorStatus is the HTTP status sent for err.
func ErrorStatus(err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return domain.HTTPStatus(err)
}

// RequestLogger logs one line per request. It must run after requestid.
func RequestLogger(log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		// The error handler has not written the response yet, the status is
		// taken from the error in that case.
		status := c.Response().StatusCode()
		if err != nil {
			status = ErrorStatus(err)
		}

		attrs := []any{
			slog.String("request_id", c.GetRespHeader(fiber.HeaderXRequestID)),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Int("status", status),
			slog.Duration("duration", time.Since(start)),
		}
		if id := CurrentIdentity(c); id != nil {
			attrs = append(attrs, slog.String("user_id", id.UserID.String()))
		}
		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
		}

		level := slog.LevelInfo
		if status >= fiber.StatusInternalServerError {
			level = slog.LevelError
		}
		log.Log(c.UserContext(), level, "request", attrs...)
		return err
	}
}

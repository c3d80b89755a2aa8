package middleware

import (
	"context"
	"errors"
	"strings"

	"ai-notes-backend/internal/auth"
	"ai-notes-backend/internal/domain"
	"ai-notes-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// SessionResolver turns a raw session token into an identity, nil when the
// token is missing or no longer valid.
type SessionResolver interface {
	CurrentUser(ctx context.Context, token string) (*auth.Identity, error)
}

// LatestNoteFinder returns the most recently updated note of a user or an
// error wrapping domain.ErrNotFound.
type LatestNoteFinder interface {
	Latest(ctx context.Context, userID uuid.UUID) (*models.Note, error)
}

const (
	LoginPath      = "/login"
	SignUpPath     = "/sign-up"
	HomePath       = "/"
	CreateNotePath = "/api/create-note"
)

func isAuthRoute(path string) bool {
	return strings.HasPrefix(path, LoginPath) || strings.HasPrefix(path, SignUpPath)
}

// Guard runs once per page request:
//   - anonymous outside the auth pages goes to /login
//   - signed in on an auth page goes home
//   - signed in at home without ?noteId goes to the latest note, or to
//     /api/create-note when there is none
func Guard(sessions SessionResolver, notes LatestNoteFinder, cookieName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, err := sessions.CurrentUser(c.UserContext(), sessionToken(c, cookieName))
		if err != nil {
			return err
		}
		if identity != nil {
			c.Locals(IdentityKey, identity)
		}

		path := c.Path()
		authRoute := isAuthRoute(path)

		if identity == nil && !authRoute {
			return c.Redirect(LoginPath, fiber.StatusFound)
		}
		if identity != nil && authRoute {
			return c.Redirect(HomePath, fiber.StatusFound)
		}

		if path != HomePath || c.Method() != fiber.MethodGet || c.Query("noteId") != "" {
			return c.Next()
		}

		latest, err := notes.Latest(c.UserContext(), identity.UserID)
		switch {
		case err == nil:
			return c.Redirect(HomePath+"?noteId="+latest.ID.String(), fiber.StatusFound)
		case errors.Is(err, domain.ErrNotFound):
			return c.Redirect(CreateNotePath, fiber.StatusFound)
		default:
			return err
		}
	}
}

// sessionToken reads the token from the session cookie, falling back to a
// bearer Authorization header.
func sessionToken(c *fiber.Ctx, cookieName string) string {
	if token := c.Cookies(cookieName); token != "" {
		return token
	}
	header := c.Get(fiber.HeaderAuthorization)
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

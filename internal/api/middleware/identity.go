package middleware

import (
	"ai-notes-backend/internal/auth"

	"github.com/gofiber/fiber/v2"
)

// IdentityKey is the locals key holding the *auth.Identity of the request.
const IdentityKey = "identity"

// CurrentIdentity returns the signed-in user or nil.
func CurrentIdentity(c *fiber.Ctx) *auth.Identity {
	id, _ := c.Locals(IdentityKey).(*auth.Identity)
	return id
}

// IdentityFromLocals reads the identity through a websocket connection's
// Locals accessor.
func IdentityFromLocals(locals func(key string, value ...interface{}) interface{}) *auth.Identity {
	id, _ := locals(IdentityKey).(*auth.Identity)
	return id
}

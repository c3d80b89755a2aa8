package middleware

import (
	"ai-notes-backend/internal/auth"
	"ai-notes-backend/internal/domain"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const tokenContextKey = "session_token"

// RequireAuth accepts a session token from the Authorization bearer header
// or the session cookie, and rejects requests whose session is gone.
func RequireAuth(gw *auth.Gateway, cookieName string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:  jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: gw.Tokens().Secret()},
		Claims:      &auth.Claims{},
		ContextKey:  tokenContextKey,
		TokenLookup: "header:" + fiber.HeaderAuthorization + ",cookie:" + cookieName,
		AuthScheme:  "Bearer",
		SuccessHandler: func(c *fiber.Ctx) error {
			token, ok := c.Locals(tokenContextKey).(*jwt.Token)
			if !ok {
				return domain.ErrUnauthorized
			}
			claims, ok := token.Claims.(*auth.Claims)
			if !ok {
				return domain.ErrUnauthorized
			}

			identity, err := gw.Resolve(c.UserContext(), claims)
			if err != nil {
				return err
			}
			if identity == nil {
				return domain.ErrUnauthorized
			}
			c.Locals(IdentityKey, identity)
			return c.Next()
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return domain.ErrUnauthorized
		},
	})
}

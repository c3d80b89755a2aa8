package handlers

import (
	"context"
	"time"

	"ai-notes-backend/internal/api/middleware"
	"ai-notes-backend/internal/auth"
	"ai-notes-backend/internal/domain"
	"ai-notes-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type AuthGateway interface {
	SignIn(ctx context.Context, input auth.SignInInput) (*auth.Identity, string, error)
	SignUp(ctx context.Context, input auth.SignUpInput) (*auth.Identity, string, error)
	SignOut(ctx context.Context, identity *auth.Identity) error
	SessionTTL() time.Duration
}

type CookieConfig struct {
	Name   string
	Secure bool
}

type AuthHandler struct {
	gw     AuthGateway
	cookie CookieConfig
}

func NewAuthHandler(gw AuthGateway, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{gw: gw, cookie: cookie}
}

// authPage describes an auth form for the client to render.
type authPage struct {
	Page         string `json:"page"`
	Title        string `json:"title"`
	Action       string `json:"action"`
	SubmitLabel  string `json:"submitLabel"`
	AlternateURL string `json:"alternateUrl"`
}

func (h *AuthHandler) LoginPage(c *fiber.Ctx) error {
	return c.JSON(authPage{
		Page:         "login",
		Title:        "Login",
		Action:       middleware.LoginPath,
		SubmitLabel:  "Login",
		AlternateURL: middleware.SignUpPath,
	})
}

func (h *AuthHandler) SignUpPage(c *fiber.Ctx) error {
	return c.JSON(authPage{
		Page:         "sign-up",
		Title:        "Sign Up",
		Action:       middleware.SignUpPath,
		SubmitLabel:  "Sign Up",
		AlternateURL: middleware.LoginPath,
	})
}

func parseCredentials(c *fiber.Ctx) (auth.Credentials, error) {
	var creds auth.Credentials
	if err := c.BodyParser(&creds); err != nil {
		return creds, domain.NewValidationError("body", "Invalid request body")
	}
	return creds, nil
}

func sessionMetadata(c *fiber.Ctx) models.SessionMetadata {
	return models.SessionMetadata{UserAgent: c.Get(fiber.HeaderUserAgent), IP: c.IP()}
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	creds, err := parseCredentials(c)
	if err != nil {
		return err
	}

	_, token, err := h.gw.SignIn(c.UserContext(), auth.SignInInput{Credentials: creds, Meta: sessionMetadata(c)})
	if err != nil {
		return err
	}
	h.setSessionCookie(c, token)
	return c.JSON(fiber.Map{"errorMessage": nil, "token": token})
}

func (h *AuthHandler) SignUp(c *fiber.Ctx) error {
	creds, err := parseCredentials(c)
	if err != nil {
		return err
	}

	identity, token, err := h.gw.SignUp(c.UserContext(), auth.SignUpInput{Credentials: creds, Meta: sessionMetadata(c)})
	if err != nil {
		return err
	}
	h.setSessionCookie(c, token)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"errorMessage": nil, "token": token, "user": identity})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	identity := middleware.CurrentIdentity(c)
	if identity == nil {
		return domain.ErrUnauthorized
	}
	if err := h.gw.SignOut(c.UserContext(), identity); err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(fiber.Map{"errorMessage": nil})
}

func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.gw.SessionTTL()),
		HTTPOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

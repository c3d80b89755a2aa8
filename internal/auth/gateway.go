// Package auth issues and checks session tokens. A token is only honoured
// while the session row it names is neither revoked nor expired.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ai-notes-backend/internal/config"
	"ai-notes-backend/internal/domain"
	"ai-notes-backend/internal/models"
	"ai-notes-backend/internal/repo"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Identity is the signed-in user behind a request.
type Identity struct {
	UserID    uuid.UUID `json:"userId"`
	Email     string    `json:"email"`
	SessionID uuid.UUID `json:"-"`
}

type Gateway struct {
	users      repo.UserRepoInterface
	sessions   repo.SessionRepoInterface
	tokens     *TokenManager
	sessionTTL time.Duration
	hashCost   int
	log        *slog.Logger
}

func NewGateway(users repo.UserRepoInterface, sessions repo.SessionRepoInterface, cfg config.AuthConfig, log *slog.Logger) *Gateway {
	return &Gateway{
		users:      users,
		sessions:   sessions,
		tokens:     NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer),
		sessionTTL: cfg.SessionTTL,
		hashCost:   bcrypt.DefaultCost,
		log:        log.With("service", "auth"),
	}
}

// Tokens exposes the token manager for the JWT middleware.
func (g *Gateway) Tokens() *TokenManager {
	return g.tokens
}

// SessionTTL is how long issued tokens stay valid.
func (g *Gateway) SessionTTL() time.Duration {
	return g.sessionTTL
}

// SignUp creates the user and signs them in.
func (g *Gateway) SignUp(ctx context.Context, input SignUpInput) (*Identity, string, error) {
	input.normalize()
	if err := input.validate(true); err != nil {
		return nil, "", err
	}

	hash, err := hashPassword(input.Password, g.hashCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user, err := g.users.Create(ctx, input.Email, hash)
	if err != nil {
		return nil, "", fmt.Errorf("sign up: %w", err)
	}
	g.log.InfoContext(ctx, "user signed up", slog.String("user_id", user.ID.String()))

	return g.startSession(ctx, user.ID, user.Email, input.Meta)
}

// SignIn checks the password and opens a new session. Unknown email and
// wrong password fail the same way.
func (g *Gateway) SignIn(ctx context.Context, input SignInInput) (*Identity, string, error) {
	input.normalize()
	if err := input.validate(false); err != nil {
		return nil, "", err
	}

	user, err := g.users.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", domain.ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("sign in: %w", err)
	}
	if !checkPassword(user.PasswordHash, input.Password) {
		return nil, "", domain.ErrInvalidCredentials
	}

	g.log.InfoContext(ctx, "user signed in", slog.String("user_id", user.ID.String()))
	return g.startSession(ctx, user.ID, user.Email, input.Meta)
}

// SignOut revokes the identity's session. Tokens naming it stop working
// immediately even though they have not expired.
func (g *Gateway) SignOut(ctx context.Context, id *Identity) error {
	if id == nil {
		return domain.ErrUnauthorized
	}
	if err := g.sessions.Revoke(ctx, id.SessionID); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	g.log.InfoContext(ctx, "user signed out", slog.String("user_id", id.UserID.String()))
	return nil
}

// CurrentUser resolves a raw token. It returns nil, nil when the token is
// missing or no longer valid; errors are reserved for storage failures.
func (g *Gateway) CurrentUser(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, nil
	}
	claims, err := g.tokens.Parse(token)
	if err != nil {
		return nil, nil
	}
	return g.Resolve(ctx, claims)
}

// Resolve checks already verified claims against the session store.
func (g *Gateway) Resolve(ctx context.Context, claims *Claims) (*Identity, error) {
	if claims == nil || claims.Issuer != g.tokens.issuer {
		return nil, nil
	}
	userID, sessionID, err := claims.IDs()
	if err != nil {
		return nil, nil
	}

	session, err := g.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("resolve session: %w", err)
	}
	if session.UserID != userID || !session.Active(time.Now()) {
		return nil, nil
	}

	user, err := g.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("resolve user: %w", err)
	}

	return &Identity{UserID: user.ID, Email: user.Email, SessionID: sessionID}, nil
}

func (g *Gateway) startSession(ctx context.Context, userID uuid.UUID, email string, meta models.SessionMetadata) (*Identity, string, error) {
	expiresAt := time.Now().Add(g.sessionTTL)
	session, err := g.sessions.Create(ctx, userID, expiresAt, meta)
	if err != nil {
		return nil, "", fmt.Errorf("create session: %w", err)
	}

	token, err := g.tokens.Issue(userID, email, session.ID, expiresAt)
	if err != nil {
		return nil, "", err
	}
	return &Identity{UserID: userID, Email: email, SessionID: session.ID}, token, nil
}

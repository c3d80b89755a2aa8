package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ai-notes-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SessionRepo struct {
	db *gorm.DB
}

type SessionRepoInterface interface {
	Create(ctx context.Context, userID uuid.UUID, expiresAt time.Time, meta models.SessionMetadata) (*models.Session, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Session, error)
	Revoke(ctx context.Context, id uuid.UUID) error
}

func NewSessionRepository(db *gorm.DB) SessionRepoInterface {
	return &SessionRepo{db: db}
}

func (r *SessionRepo) Create(ctx context.Context, userID uuid.UUID, expiresAt time.Time, meta models.SessionMetadata) (*models.Session, error) {
	raw, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("marshal session metadata: %w", err)
	}

	session := &models.Session{
		ID:        uuid.New(),
		UserID:    userID,
		ExpiresAt: expiresAt,
		Metadata:  datatypes.JSON(raw),
		CreatedAt: time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		return nil, mapError(err, "session", session.ID)
	}
	return session, nil
}

func (r *SessionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	var session models.Session
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&session).Error; err != nil {
		return nil, mapError(err, "session", id)
	}
	return &session, nil
}

// Revoke marks the session as signed out. Revoking twice is a no-op.
func (r *SessionRepo) Revoke(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).
		Model(&models.Session{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Update("revoked_at", time.Now().UTC()).Error
	return mapError(err, "session", id)
}

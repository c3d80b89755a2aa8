package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Session backs a signed session token; its ID is the token's jti.
type Session struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"userId"`
	ExpiresAt time.Time      `gorm:"not null" json:"expiresAt"`
	RevokedAt *time.Time     `json:"revokedAt,omitempty"`
	Metadata  datatypes.JSON `json:"metadata"`
	CreatedAt time.Time      `json:"createdAt"`
}

// SessionMetadata is stored in Session.Metadata.
type SessionMetadata struct {
	UserAgent string `json:"userAgent,omitempty"`
	IP        string `json:"ip,omitempty"`
}

// Active reports whether the session can still authenticate requests at now.
func (s *Session) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}

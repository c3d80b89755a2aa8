package models

import (
	"time"

	"github.com/google/uuid"
)

// Note represents a user-owned text note. Version is bumped on every
// accepted edit and lets clients detect concurrent overwrites.
type Note struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AuthorID  uuid.UUID `gorm:"type:uuid;not null;index:idx_notes_author_updated,priority:1" json:"authorId"`
	Text      string    `gorm:"type:text;not null;default:''" json:"text"`
	Version   int64     `gorm:"not null;default:1" json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `gorm:"index:idx_notes_author_updated,priority:2,sort:desc" json:"updatedAt"`
}

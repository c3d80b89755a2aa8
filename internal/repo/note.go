package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ai-notes-backend/internal/domain"
	"ai-notes-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NoteRepo represents the repository for the note model.
// Every query is scoped by author, a note owned by someone else behaves
// exactly like a missing one.
type NoteRepo struct {
	db *gorm.DB
}

type NoteRepoInterface interface {
	Create(ctx context.Context, authorID uuid.UUID, text string) (*models.Note, error)
	GetByID(ctx context.Context, noteID, authorID uuid.UUID) (*models.Note, error)
	GetLatest(ctx context.Context, authorID uuid.UUID) (*models.Note, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]models.Note, error)
	UpdateText(ctx context.Context, noteID, authorID uuid.UUID, text string, baseVersion int64) (*models.Note, error)
	Delete(ctx context.Context, noteID, authorID uuid.UUID) error
}

func NewNoteRepository(db *gorm.DB) NoteRepoInterface {
	return &NoteRepo{db: db}
}

func (r *NoteRepo) Create(ctx context.Context, authorID uuid.UUID, text string) (*models.Note, error) {
	now := time.Now().UTC()
	note := &models.Note{
		ID:        uuid.New(),
		AuthorID:  authorID,
		Text:      text,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.db.WithContext(ctx).Create(note).Error; err != nil {
		return nil, mapError(err, "note", note.ID)
	}
	return note, nil
}

func (r *NoteRepo) GetByID(ctx context.Context, noteID, authorID uuid.UUID) (*models.Note, error) {
	var note models.Note
	err := r.db.WithContext(ctx).
		Where("id = ? AND author_id = ?", noteID, authorID).
		First(&note).Error
	if err != nil {
		return nil, mapError(err, "note", noteID)
	}
	return &note, nil
}

// GetLatest returns the most recently updated note of the author.
func (r *NoteRepo) GetLatest(ctx context.Context, authorID uuid.UUID) (*models.Note, error) {
	var note models.Note
	err := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("updated_at desc").
		First(&note).Error
	if err != nil {
		return nil, mapError(err, "latest note of", authorID)
	}
	return &note, nil
}

func (r *NoteRepo) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]models.Note, error) {
	notes := []models.Note{}
	err := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("updated_at desc").
		Find(&notes).Error
	if err != nil {
		return nil, mapError(err, "notes of", authorID)
	}
	return notes, nil
}

// UpdateText replaces the note body and bumps its version. A baseVersion of 0
// means last-write-wins; any other value must match the stored version or
// domain.ErrConflict is returned.
func (r *NoteRepo) UpdateText(ctx context.Context, noteID, authorID uuid.UUID, text string, baseVersion int64) (*models.Note, error) {
	var updated models.Note

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.Model(&models.Note{}).Where("id = ? AND author_id = ?", noteID, authorID)
		if baseVersion > 0 {
			query = query.Where("version = ?", baseVersion)
		}

		result := query.Updates(map[string]any{
			"text":       text,
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now().UTC(),
		})
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			// Tell a stale version apart from a missing (or foreign) note.
			var count int64
			if err := tx.Model(&models.Note{}).
				Where("id = ? AND author_id = ?", noteID, authorID).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return domain.ErrConflict
			}
			return gorm.ErrRecordNotFound
		}

		return tx.Where("id = ?", noteID).First(&updated).Error
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("note %s version %d: %w", noteID, baseVersion, err)
		}
		return nil, mapError(err, "note", noteID)
	}
	return &updated, nil
}

func (r *NoteRepo) Delete(ctx context.Context, noteID, authorID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND author_id = ?", noteID, authorID).
		Delete(&models.Note{})
	if result.Error != nil {
		return mapError(result.Error, "note", noteID)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("note %s: %w", noteID, domain.ErrNotFound)
	}
	return nil
}

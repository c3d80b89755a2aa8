// Package notes implements the note actions: create, read, update, delete,
// list and search, all scoped to the signed-in user.
package notes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"ai-notes-backend/internal/autosave"
	"ai-notes-backend/internal/cache"
	"ai-notes-backend/internal/domain"
	"ai-notes-backend/internal/models"
	"ai-notes-backend/internal/repo"

	"github.com/google/uuid"
)

type Service struct {
	notes repo.NoteRepoInterface
	cache *cache.NoteListCache
	log   *slog.Logger
}

func NewService(notes repo.NoteRepoInterface, listings *cache.NoteListCache, log *slog.Logger) *Service {
	return &Service{
		notes: notes,
		cache: listings,
		log:   log.With("service", "notes"),
	}
}

// Create adds a note for userID. An empty text is allowed.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, text string) (*models.Note, error) {
	note, err := s.notes.Create(ctx, userID, text)
	if err != nil {
		return nil, fmt.Errorf("create note: %w", err)
	}
	s.cache.Invalidate(userID)
	s.log.InfoContext(ctx, "note created", "user_id", userID, "note_id", note.ID)
	return note, nil
}

func (s *Service) Get(ctx context.Context, userID, noteID uuid.UUID) (*models.Note, error) {
	note, err := s.notes.GetByID(ctx, noteID, userID)
	if err != nil {
		return nil, fmt.Errorf("get note: %w", err)
	}
	return note, nil
}

// Latest returns the most recently updated note. It fails with
// domain.ErrNotFound when the user has none.
func (s *Service) Latest(ctx context.Context, userID uuid.UUID) (*models.Note, error) {
	note, err := s.notes.GetLatest(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("latest note: %w", err)
	}
	return note, nil
}

// EnsureDefault returns the latest note, creating an empty one when the user
// has no notes yet.
func (s *Service) EnsureDefault(ctx context.Context, userID uuid.UUID) (*models.Note, error) {
	note, err := s.Latest(ctx, userID)
	if err == nil {
		return note, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	return s.Create(ctx, userID, "")
}

// Update replaces the text of a note. baseVersion 0 overwrites
// unconditionally, otherwise a stale version fails with domain.ErrConflict.
func (s *Service) Update(ctx context.Context, userID, noteID uuid.UUID, text string, baseVersion int64) (*models.Note, error) {
	if baseVersion < 0 {
		return nil, domain.NewValidationError("version", "Version must not be negative")
	}
	note, err := s.notes.UpdateText(ctx, noteID, userID, text, baseVersion)
	if err != nil {
		return nil, fmt.Errorf("update note: %w", err)
	}
	s.cache.Invalidate(userID)
	return note, nil
}

func (s *Service) Delete(ctx context.Context, userID, noteID uuid.UUID) error {
	if err := s.notes.Delete(ctx, noteID, userID); err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	s.cache.Invalidate(userID)
	s.log.InfoContext(ctx, "note deleted", "user_id", userID, "note_id", noteID)
	return nil
}

// List returns the user's notes, most recently updated first.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]models.Note, error) {
	listing, err := s.listing(ctx, userID)
	if err != nil {
		return nil, err
	}
	return slices.Clone(listing.Notes), nil
}

// Search ranks the user's notes by fuzzy similarity of their text to query.
// A blank query returns List order.
func (s *Service) Search(ctx context.Context, userID uuid.UUID, query string) ([]models.Note, error) {
	listing, err := s.listing(ctx, userID)
	if err != nil {
		return nil, err
	}
	return listing.Index.Search(query), nil
}

// Saver returns the autosave write function for userID's editor session.
// Autosave is last-write-wins, the debounce already drops stale texts.
func (s *Service) Saver(userID uuid.UUID) autosave.SaveFunc {
	return func(ctx context.Context, noteID uuid.UUID, text string) error {
		_, err := s.Update(ctx, userID, noteID, text, 0)
		return err
	}
}

func (s *Service) listing(ctx context.Context, userID uuid.UUID) (*cache.Listing, error) {
	if listing, ok := s.cache.Get(userID); ok {
		return listing, nil
	}
	gen := s.cache.Generation(userID)
	notes, err := s.notes.ListByAuthor(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return s.cache.Put(userID, gen, notes), nil
}

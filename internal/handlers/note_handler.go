package handlers

import (
	"context"
	"errors"

	"ai-notes-backend/internal/api/middleware"
	"ai-notes-backend/internal/domain"
	"ai-notes-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type NoteService interface {
	Create(ctx context.Context, userID uuid.UUID, text string) (*models.Note, error)
	Get(ctx context.Context, userID, noteID uuid.UUID) (*models.Note, error)
	Update(ctx context.Context, userID, noteID uuid.UUID, text string, baseVersion int64) (*models.Note, error)
	Delete(ctx context.Context, userID, noteID uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID) ([]models.Note, error)
	Search(ctx context.Context, userID uuid.UUID, query string) ([]models.Note, error)
}

// for simple crud operations the service only adds caching
type NoteHandler struct {
	notes NoteService
}

func NewNoteHandler(notes NoteService) *NoteHandler {
	return &NoteHandler{notes: notes}
}

func requireIdentity(c *fiber.Ctx) (uuid.UUID, error) {
	id := middleware.CurrentIdentity(c)
	if id == nil {
		return uuid.Nil, domain.ErrUnauthorized
	}
	return id.UserID, nil
}

func noteIDParam(c *fiber.Ctx) (uuid.UUID, error) {
	noteID, err := uuid.Parse(c.Params("noteId"))
	if err != nil {
		return uuid.Nil, domain.NewValidationError("noteId", "Invalid note ID")
	}
	return noteID, nil
}

// GetAllNotes lists the user's notes, most recently updated first. With ?q=
// the notes are fuzzy-ranked against the query instead.
func (h *NoteHandler) GetAllNotes(c *fiber.Ctx) error {
	userID, err := requireIdentity(c)
	if err != nil {
		return err
	}

	notes, err := h.notes.Search(c.UserContext(), userID, c.Query("q"))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"errorMessage": nil,
		"notes":        notes,
	})
}

func (h *NoteHandler) CreateNote(c *fiber.Ctx) error {
	userID, err := requireIdentity(c)
	if err != nil {
		return err
	}

	var dto struct {
		Text string `json:"text"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&dto); err != nil {
			return domain.NewValidationError("body", "Invalid request body")
		}
	}

	note, err := h.notes.Create(c.UserContext(), userID, dto.Text)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"errorMessage": nil,
		"note":         note,
	})
}

func (h *NoteHandler) GetNoteByID(c *fiber.Ctx) error {
	userID, err := requireIdentity(c)
	if err != nil {
		return err
	}
	noteID, err := noteIDParam(c)
	if err != nil {
		return err
	}

	note, err := h.notes.Get(c.UserContext(), userID, noteID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"errorMessage": nil,
		"note":         note,
	})
}

// UpdateNote replaces the note text. "version" is optional; when sent it must
// match the stored version.
func (h *NoteHandler) UpdateNote(c *fiber.Ctx) error {
	userID, err := requireIdentity(c)
	if err != nil {
		return err
	}
	noteID, err := noteIDParam(c)
	if err != nil {
		return err
	}

	var dto struct {
		Text    *string `json:"text"`
		Version int64   `json:"version"`
	}
	if err := c.BodyParser(&dto); err != nil {
		return domain.NewValidationError("body", "Invalid request body")
	}
	if dto.Text == nil {
		return domain.NewValidationError("text", "Text is required")
	}

	note, err := h.notes.Update(c.UserContext(), userID, noteID, *dto.Text, dto.Version)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"errorMessage": nil,
		"note":         note,
	})
}

func (h *NoteHandler) DeleteNote(c *fiber.Ctx) error {
	userID, err := requireIdentity(c)
	if err != nil {
		return err
	}
	noteID, err := noteIDParam(c)
	if err != nil {
		return err
	}

	if err := h.notes.Delete(c.UserContext(), userID, noteID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"errorMessage": nil})
}

// CreateNotePage creates an empty note and opens it on the home page.
func (h *NoteHandler) CreateNotePage(c *fiber.Ctx) error {
	userID, err := requireIdentity(c)
	if err != nil {
		return err
	}

	note, err := h.notes.Create(c.UserContext(), userID, "")
	if err != nil {
		return err
	}
	return c.Redirect(middleware.HomePath+"?noteId="+note.ID.String(), fiber.StatusFound)
}

// Home returns what the home page shows: the user, the note list and the
// selected note (null when ?noteId names nothing the user owns).
func (h *NoteHandler) Home(c *fiber.Ctx) error {
	identity := middleware.CurrentIdentity(c)
	if identity == nil {
		return domain.ErrUnauthorized
	}

	notes, err := h.notes.List(c.UserContext(), identity.UserID)
	if err != nil {
		return err
	}

	var selected *models.Note
	if noteID, err := uuid.Parse(c.Query("noteId")); err == nil {
		selected, err = h.notes.Get(c.UserContext(), identity.UserID, noteID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
	}

	return c.JSON(fiber.Map{
		"errorMessage": nil,
		"user":         identity,
		"notes":        notes,
		"note":         selected,
	})
}

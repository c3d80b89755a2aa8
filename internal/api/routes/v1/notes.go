package v1

import (
	"ai-notes-backend/internal/handlers"

	"github.com/gofiber/fiber/v2"
)

func registerNotes(r fiber.Router, deps Dependencies) {
	noteHandler := handlers.NewNoteHandler(deps.Notes)

	r.Get("/notes", noteHandler.GetAllNotes)
	r.Post("/notes", noteHandler.CreateNote)
	r.Get("/notes/:noteId", noteHandler.GetNoteByID)
	r.Put("/notes/:noteId", noteHandler.UpdateNote)
	r.Delete("/notes/:noteId", noteHandler.DeleteNote)
}

package prompts

import (
	"fmt"
	"strings"
	"time"

	"ai-notes-backend/internal/models"
)

var NOTES_PROMPT = `
<SYSTEM>
  <IDENTITY>
    You are a helpful assistant that answers questions about a user's notes.
    Assume all questions are related to the user's notes.
  </IDENTITY>

  <STYLE>
    Make sure that your answers are not too verbose and you speak succinctly.
  </STYLE>

  <FORMAT>
    Your responses MUST be formatted in clean, valid HTML with proper structure.
    Use tags like <p>, <strong>, <em>, <ul>, <ol>, <li>, <h1> to <h6>, and <br> when appropriate.
    Do NOT wrap the entire response in a single <p> tag unless it's a single paragraph.
    Avoid inline styles, JavaScript, or custom attributes.
  </FORMAT>
</SYSTEM>

Here are the user's notes:
%s
`

// BuildSystemPrompt renders NOTES_PROMPT with one line per note, in the
// order given.
func BuildSystemPrompt(notes []models.Note) string {
	lines := make([]string, 0, len(notes))
	for _, n := range notes {
		lines = append(lines, fmt.Sprintf("Note: %s. Created at: %s. Updated at: %s",
			n.Text, n.CreatedAt.UTC().Format(time.RFC3339), n.UpdatedAt.UTC().Format(time.RFC3339)))
	}
	return fmt.Sprintf(NOTES_PROMPT, strings.Join(lines, "\n"))
}

package models

import "strings"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one turn of a conversation with the assistant. It only
// lives on the client; the server never stores chat history.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ParseRole normalizes a role coming from a client. "model" is accepted as
// an alias of assistant; anything else is treated as the user.
func ParseRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "assistant", "model":
		return RoleAssistant
	default:
		return RoleUser
	}
}

func (r Role) IsAssistant() bool {
	return r == RoleAssistant
}

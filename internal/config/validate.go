package config

import (
	"fmt"
	"strings"
)

// Validate performs business-rule validation on the loaded configuration.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}
	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("auth.session_ttl must be > 0")
	}
	if c.Notes.AutosaveDelay <= 0 {
		return fmt.Errorf("notes.autosave_delay must be > 0 (got %s)", c.Notes.AutosaveDelay)
	}
	if c.Notes.SearchThreshold < 0 || c.Notes.SearchThreshold > 1 {
		return fmt.Errorf("notes.search_threshold must be within [0, 1] (got %v)", c.Notes.SearchThreshold)
	}
	if c.Notes.ListCacheSize <= 0 {
		return fmt.Errorf("notes.list_cache_size must be > 0")
	}
	if c.Chat.RequestsPerMinute <= 0 {
		return fmt.Errorf("chat.requests_per_minute must be > 0")
	}
	if err := c.LLM.validate(); err != nil {
		return fmt.Errorf("llm: %w", err)
	}
	return nil
}

func (l *LLMConfig) validate() error {
	l.Provider = strings.ToLower(strings.TrimSpace(l.Provider))

	switch l.Provider {
	case "gemini":
		if l.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY must be set for provider gemini")
		}
	case "openai":
		if l.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY must be set for provider openai")
		}
	case "groq":
		if l.GroqAPIKey == "" || l.GroqModel == "" {
			return fmt.Errorf("GROQ_API_KEY and GROQ_MODEL_NAME must be set for provider groq")
		}
	case "vertex_anthropic":
		if l.VertexProjectID == "" || l.VertexClaudeModel == "" || l.VertexCredentials == "" {
			return fmt.Errorf("GOOGLE_CLOUD_PROJECT_ID, CLAUDE_VERTEX_MODEL and GCP_SERVICE_ACCOUNT_CREDENTIALS must be set for provider vertex_anthropic")
		}
	default:
		return fmt.Errorf("unknown provider %q (valid: gemini, openai, groq, vertex_anthropic)", l.Provider)
	}

	if l.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0")
	}
	return nil
}

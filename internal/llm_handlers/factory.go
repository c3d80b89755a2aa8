package llmHandlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ai-notes-backend/internal/config"
	"ai-notes-backend/internal/domain"
)

type Provider string

const (
	ProviderGemini       Provider = "gemini"
	ProviderOpenAI       Provider = "openai"
	ProviderGroq         Provider = "groq"
	ProviderVertexClaude Provider = "vertex_anthropic"
)

// NewLLMClient builds the client for the configured provider. Calls made
// through it are bounded by cfg.Timeout and provider failures wrap
// domain.ErrUpstream.
func NewLLMClient(ctx context.Context, cfg config.LLMConfig) (Client, error) {
	var (
		client Client
		err    error
	)

	switch Provider(cfg.Provider) {
	case ProviderGemini:
		var gemini *GenaiGeminiClient
		gemini, err = NewGenaiGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err == nil {
			gemini.Temperature = cfg.Temperature
			gemini.MaxTokens = cfg.MaxTokens
		}
		client = gemini
	case ProviderOpenAI:
		client, err = NewLangChainClient(LangChainConfig{
			Model:       cfg.OpenAIModel,
			APIKey:      cfg.OpenAIAPIKey,
			Temperature: float64(cfg.Temperature),
			MaxTokens:   int(cfg.MaxTokens),
		})
	case ProviderGroq:
		client, err = NewLangChainClient(LangChainConfig{
			Model:       cfg.GroqModel,
			BaseURL:     cfg.GroqBaseURL,
			APIKey:      cfg.GroqAPIKey,
			Temperature: float64(cfg.Temperature),
			MaxTokens:   int(cfg.MaxTokens),
		})
	case ProviderVertexClaude:
		client, err = NewVertexAnthropicClient(ctx, VertexConfig{
			ProjectID:   cfg.VertexProjectID,
			Location:    cfg.VertexLocation,
			Model:       cfg.VertexClaudeModel,
			Credentials: cfg.VertexCredentials,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
		})
	default:
		return nil, fmt.Errorf("unknown provider %s", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("init %s client: %w", cfg.Provider, err)
	}

	return WithUpstreamErrors(client, Provider(cfg.Provider), cfg.Timeout), nil
}

type upstreamClient struct {
	inner    Client
	provider Provider
	timeout  time.Duration
}

// WithUpstreamErrors bounds every call by timeout (when > 0) and marks
// failures as domain.ErrUpstream. Cancellation by the caller is passed
// through unchanged.
func WithUpstreamErrors(c Client, provider Provider, timeout time.Duration) Client {
	return &upstreamClient{inner: c, provider: provider, timeout: timeout}
}

func (c *upstreamClient) Chat(ctx context.Context, systemMessage string, messages []Message) (string, error) {
	callCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	answer, err := c.inner.Chat(callCtx, systemMessage, messages)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%s: timed out after %s: %w", c.provider, c.timeout, domain.ErrUpstream)
		}
		return "", fmt.Errorf("%s: %v: %w", c.provider, err, domain.ErrUpstream)
	}
	return answer, nil
}

package llmHandlers

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// LangChainClient talks to OpenAI or any OpenAI-compatible API (Groq).
type LangChainClient struct {
	llm         llms.Model
	temperature float64
	maxTokens   int
}

type LangChainConfig struct {
	Model       string // e.g. "gpt-4.1", "llama-3.1-70b-versatile"
	BaseURL     string // optional: for Groq or other OpenAI-compatible APIs
	APIKey      string
	Temperature float64
	MaxTokens   int
}

func NewLangChainClient(cfg LangChainConfig) (*LangChainClient, error) {
	opts := []openai.Option{
		openai.WithModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	if cfg.APIKey != "" {
		opts = append(opts, openai.WithToken(cfg.APIKey))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create langchain openai client: %w", err)
	}

	return &LangChainClient{llm: llm, temperature: cfg.Temperature, maxTokens: cfg.MaxTokens}, nil
}

func buildMessageContents(systemMessage string, messages []Message) []llms.MessageContent {
	msgContents := make([]llms.MessageContent, 0, len(messages)+1)
	if systemMessage != "" {
		msgContents = append(msgContents, llms.TextParts(llms.ChatMessageTypeSystem, systemMessage))
	}
	for _, m := range messages {
		msgType := llms.ChatMessageTypeHuman
		if m.Role.IsAssistant() {
			msgType = llms.ChatMessageTypeAI
		}
		msgContents = append(msgContents, llms.TextParts(msgType, m.Content))
	}
	return msgContents
}

func (c *LangChainClient) Chat(ctx context.Context, systemMessage string, messages []Message) (string, error) {
	var opts []llms.CallOption
	if c.temperature > 0 {
		opts = append(opts, llms.WithTemperature(c.temperature))
	}
	if c.maxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(c.maxTokens))
	}

	resp, err := c.llm.GenerateContent(ctx, buildMessageContents(systemMessage, messages), opts...)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from LLM")
	}
	return resp.Choices[0].Content, nil
}

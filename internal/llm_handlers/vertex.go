package llmHandlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const anthropicVertexVersion = "vertex-2023-10-16"

// VertexAnthropicClient calls Claude through Vertex AI rawPredict.
type VertexAnthropicClient struct {
	httpClient  *http.Client
	endpoint    string
	maxTokens   int32
	temperature float32
}

type VertexConfig struct {
	ProjectID string
	Location  string // e.g. "us-east5"
	Model     string // e.g. "claude-sonnet-4-5@20250929"
	// Credentials is a base64 encoded service account JSON.
	Credentials string
	MaxTokens   int32
	Temperature float32
}

func NewVertexAnthropicClient(ctx context.Context, cfg VertexConfig) (*VertexAnthropicClient, error) {
	saJSON, err := base64.StdEncoding.DecodeString(cfg.Credentials)
	if err != nil {
		return nil, fmt.Errorf("decode sa json: %w", err)
	}

	creds, err := google.CredentialsFromJSON(ctx, saJSON, "https://www.googleapis.com/auth/cloud-platform")
	if err != nil {
		return nil, fmt.Errorf("CredentialsFromJSON: %w", err)
	}

	endpoint := fmt.Sprintf(
		"https://%s-aiplatform.googleapis.com/v1/projects/%s/locations/%s/publishers/anthropic/models/%s:rawPredict",
		cfg.Location, cfg.ProjectID, cfg.Location, cfg.Model,
	)
	// The client outlives ctx, token refreshes must not be tied to it.
	httpClient := oauth2.NewClient(context.Background(), creds.TokenSource)

	return newVertexAnthropicClient(httpClient, endpoint, cfg.MaxTokens, cfg.Temperature), nil
}

func newVertexAnthropicClient(httpClient *http.Client, endpoint string, maxTokens int32, temperature float32) *VertexAnthropicClient {
	return &VertexAnthropicClient{
		httpClient:  httpClient,
		endpoint:    endpoint,
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeRequest struct {
	AnthropicVersion string          `json:"anthropic_version"`
	System           string          `json:"system,omitempty"`
	Messages         []claudeMessage `json:"messages"`
	MaxTokens        int32           `json:"max_tokens"`
	Temperature      float32         `json:"temperature"`
	Stream           bool            `json:"stream"`
}

type claudeResponse struct {
	StopReason string `json:"stop_reason"`
	Content    []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (c *VertexAnthropicClient) Chat(ctx context.Context, systemMessage string, messages []Message) (string, error) {
	body := claudeRequest{
		AnthropicVersion: anthropicVertexVersion,
		System:           systemMessage,
		Messages:         make([]claudeMessage, 0, len(messages)),
		MaxTokens:        c.maxTokens,
		Temperature:      c.temperature,
	}
	for _, m := range messages {
		role := "user"
		if m.Role.IsAssistant() {
			role = "assistant"
		}
		body.Messages = append(body.Messages, claudeMessage{Role: role, Content: m.Content})
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("vertex error %d: %s", resp.StatusCode, msg)
	}

	var cr claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	texts := make([]string, 0, len(cr.Content))
	for _, block := range cr.Content {
		if block.Type == "text" {
			texts = append(texts, block.Text)
		}
	}
	return strings.Join(texts, "\n\n"), nil
}

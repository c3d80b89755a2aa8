package llmHandlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ai-notes-backend/internal/config"
	"ai-notes-backend/internal/domain"
	"ai-notes-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"google.golang.org/genai"
)

var conversation = []Message{
	{Role: models.RoleUser, Content: "what is on my list?"},
	{Role: models.RoleAssistant, Content: "<p>Milk</p>"},
	{Role: models.RoleUser, Content: "anything else?"},
}

func TestConvertMessagesToGenaiContent(t *testing.T) {
	contents := convertMessagesToGenaiContent(conversation)

	require.Len(t, contents, 3)
	assert.Equal(t, genai.RoleUser, contents[0].Role)
	assert.Equal(t, genai.RoleModel, contents[1].Role)
	assert.Equal(t, genai.RoleUser, contents[2].Role)
	assert.Equal(t, "<p>Milk</p>", contents[1].Parts[0].Text)
}

func TestBuildMessageContents(t *testing.T) {
	contents := buildMessageContents("be brief", conversation)

	require.Len(t, contents, 4)
	assert.Equal(t, llms.ChatMessageTypeSystem, contents[0].Role)
	assert.Equal(t, llms.ChatMessageTypeHuman, contents[1].Role)
	assert.Equal(t, llms.ChatMessageTypeAI, contents[2].Role)
	assert.Equal(t, llms.TextContent{Text: "anything else?"}, contents[3].Parts[0])

	assert.Len(t, buildMessageContents("", conversation), 3)
}

func TestVertexAnthropicClient_Chat(t *testing.T) {
	var got claudeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"stop_reason":"end_turn","content":[{"type":"text","text":"<p>Eggs</p>"},{"type":"text","text":"<p>Bread</p>"}]}`))
	}))
	defer srv.Close()

	c := newVertexAnthropicClient(srv.Client(), srv.URL, 256, 0.2)
	answer, err := c.Chat(context.Background(), "system text", conversation)
	require.NoError(t, err)

	assert.Equal(t, "<p>Eggs</p>\n\n<p>Bread</p>", answer)
	assert.Equal(t, anthropicVertexVersion, got.AnthropicVersion)
	assert.Equal(t, "system text", got.System)
	assert.Equal(t, int32(256), got.MaxTokens)
	require.Len(t, got.Messages, 3)
	assert.Equal(t, "assistant", got.Messages[1].Role)
}

func TestVertexAnthropicClient_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := newVertexAnthropicClient(srv.Client(), srv.URL, 256, 0.2)
	_, err := c.Chat(context.Background(), "", conversation)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "quota exceeded")
}

type stubClient struct {
	answer string
	err    error
	delay  time.Duration
}

func (s stubClient) Chat(ctx context.Context, _ string, _ []Message) (string, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return s.answer, s.err
}

func TestWithUpstreamErrors(t *testing.T) {
	t.Run("success passes through", func(t *testing.T) {
		c := WithUpstreamErrors(stubClient{answer: "ok"}, ProviderGemini, time.Second)
		answer, err := c.Chat(context.Background(), "", nil)
		require.NoError(t, err)
		assert.Equal(t, "ok", answer)
	})

	t.Run("provider error is upstream", func(t *testing.T) {
		c := WithUpstreamErrors(stubClient{err: errors.New("503")}, ProviderGemini, time.Second)
		_, err := c.Chat(context.Background(), "", nil)
		assert.ErrorIs(t, err, domain.ErrUpstream)
		assert.Contains(t, err.Error(), "gemini")
	})

	t.Run("timeout is upstream", func(t *testing.T) {
		c := WithUpstreamErrors(stubClient{delay: time.Second}, ProviderGroq, 10*time.Millisecond)
		_, err := c.Chat(context.Background(), "", nil)
		assert.ErrorIs(t, err, domain.ErrUpstream)
	})

	t.Run("caller cancellation is not upstream", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		c := WithUpstreamErrors(stubClient{delay: time.Second}, ProviderGroq, time.Second)
		_, err := c.Chat(ctx, "", nil)
		assert.ErrorIs(t, err, context.Canceled)
		assert.NotErrorIs(t, err, domain.ErrUpstream)
	})
}

func TestNewLLMClient_UnknownProvider(t *testing.T) {
	_, err := NewLLMClient(context.Background(), config.LLMConfig{Provider: "mystery"})
	assert.Error(t, err)
}

package libraries

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"ai-notes-backend/internal/autosave"
	"ai-notes-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(discardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		hub.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-stopped
	})
	return hub
}

func receive(t *testing.T, client *Client) WebSocketMessage {
	t.Helper()
	select {
	case raw, ok := <-client.Send:
		require.True(t, ok, "client channel closed")
		var msg WebSocketMessage
		require.NoError(t, json.Unmarshal(raw, &msg))
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
		return WebSocketMessage{}
	}
}

func assertSilent(t *testing.T, client *Client) {
	t.Helper()
	select {
	case raw := <-client.Send:
		t.Fatalf("unexpected message %s", raw)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestParseWebSocketMessage(t *testing.T) {
	msg, err := parseWebSocketMessage([]byte(`{"type":"note_edit","data":{"note_id":"abc","text":"hi"}}`))
	require.NoError(t, err)
	assert.Equal(t, WebSocketMessageTypeNoteEdit, msg.Type)
	assert.Equal(t, &NoteEditPayload{NoteID: "abc", Text: "hi"}, msg.Data)

	msg, err = parseWebSocketMessage([]byte(`{"type":"ping"}`))
	require.NoError(t, err)
	assert.Nil(t, msg.Data)

	_, err = parseWebSocketMessage([]byte(`{"type":"note_flush","data":"nope"}`))
	assert.Error(t, err)

	_, err = parseWebSocketMessage([]byte(`not json`))
	assert.Error(t, err)
}

func TestHub_BroadcastToUserSkipsSenderAndOtherUsers(t *testing.T) {
	hub := startHub(t)
	alice := uuid.New()

	sender := NewClient(alice, nil)
	sibling := NewClient(alice, nil)
	stranger := NewClient(uuid.New(), nil)
	for _, c := range []*Client{sender, sibling, stranger} {
		require.True(t, hub.Register(c))
	}

	hub.BroadcastToUser(alice, sender.ID, []byte(`{"type":"notes_changed"}`))

	assert.Equal(t, WebSocketMessageTypeNotesChanged, receive(t, sibling).Type)
	assertSilent(t, sender)
	assertSilent(t, stranger)
}

func TestHub_UnregisterClosesClient(t *testing.T) {
	hub := startHub(t)
	client := NewClient(uuid.New(), nil)
	require.True(t, hub.Register(client))

	hub.Unregister(client)

	_, ok := <-client.Send
	assert.False(t, ok)
	assert.False(t, client.enqueue([]byte("late")))
}

func TestHub_RunClosesClientsOnCancel(t *testing.T) {
	hub := NewHub(discardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		hub.Run(ctx)
	}()

	client := NewClient(uuid.New(), nil)
	require.True(t, hub.Register(client))

	cancel()
	<-stopped

	_, ok := <-client.Send
	assert.False(t, ok)
	assert.False(t, hub.Register(NewClient(uuid.New(), nil)))
	hub.Unregister(client)
	hub.BroadcastToUser(client.UserID, "", []byte("{}"))
}

type saveCall struct {
	noteID uuid.UUID
	text   string
}

type fakeSaver struct {
	mu    sync.Mutex
	calls []saveCall
	err   error
}

func (f *fakeSaver) Saver(uuid.UUID) autosave.SaveFunc {
	return func(_ context.Context, noteID uuid.UUID, text string) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.calls = append(f.calls, saveCall{noteID: noteID, text: text})
		return f.err
	}
}

func (f *fakeSaver) Calls() []saveCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]saveCall(nil), f.calls...)
}

func newTestSession(t *testing.T, saver *fakeSaver) (*editorSession, *Client, *Client) {
	t.Helper()
	hub := startHub(t)
	user := uuid.New()

	client := NewClient(user, nil)
	other := NewClient(user, nil)
	require.True(t, hub.Register(client))
	require.True(t, hub.Register(other))

	session := newEditorSession(hub, client, saver, time.Hour, discardLogger())
	t.Cleanup(session.close)
	return session, client, other
}

func TestEditorSession_Ping(t *testing.T) {
	session, client, _ := newTestSession(t, &fakeSaver{})

	session.handle([]byte(`{"type":"ping"}`))
	assert.Equal(t, WebSocketMessageTypePong, receive(t, client).Type)
}

func TestEditorSession_InvalidMessages(t *testing.T) {
	session, client, _ := newTestSession(t, &fakeSaver{})

	cases := map[string]string{
		`{`:                     "Invalid JSON format",
		`{"type":"bogus"}`:      "Type is invalid or not provided",
		`{"type":"note_edit"}`:  "Note edit payload is required",
		`{"type":"note_flush"}`: "Note flush payload is required",
		`{"type":"note_edit","data":{"note_id":"x","text":"a"}}`: "Note ID is invalid",
	}
	for raw, want := range cases {
		session.handle([]byte(raw))
		msg := receive(t, client)
		assert.Equal(t, WebSocketMessageTypeError, msg.Type, raw)
		assert.Equal(t, map[string]any{"message": want}, msg.Data, raw)
	}
}

func TestEditorSession_FlushSavesLatestEditAndNotifiesSiblings(t *testing.T) {
	saver := &fakeSaver{}
	session, client, other := newTestSession(t, saver)
	noteID := uuid.New()

	session.handle([]byte(`{"type":"note_edit","data":{"note_id":"` + noteID.String() + `","text":"a"}}`))
	session.handle([]byte(`{"type":"note_edit","data":{"note_id":"` + noteID.String() + `","text":"ab"}}`))
	session.handle([]byte(`{"type":"note_flush","data":{"note_id":"` + noteID.String() + `"}}`))

	assert.Equal(t, []saveCall{{noteID: noteID, text: "ab"}}, saver.Calls())

	saved := receive(t, client)
	assert.Equal(t, WebSocketMessageTypeNoteSaved, saved.Type)
	assert.Equal(t, map[string]any{"note_id": noteID.String()}, saved.Data)

	assert.Equal(t, WebSocketMessageTypeNotesChanged, receive(t, other).Type)
	assertSilent(t, client)
}

func TestEditorSession_SaveFailure(t *testing.T) {
	saver := &fakeSaver{err: errors.Join(errors.New("row gone"), domain.ErrNotFound)}
	session, client, other := newTestSession(t, saver)
	noteID := uuid.New()

	session.handle([]byte(`{"type":"note_edit","data":{"note_id":"` + noteID.String() + `","text":"a"}}`))
	session.handle([]byte(`{"type":"note_flush","data":{"note_id":"` + noteID.String() + `"}}`))

	msg := receive(t, client)
	assert.Equal(t, WebSocketMessageTypeNoteSaveFailed, msg.Type)
	assert.Equal(t, map[string]any{"note_id": noteID.String(), "message": "Note not found"}, msg.Data)
	assertSilent(t, other)
}

func TestEditorSession_CloseFlushesPendingEdit(t *testing.T) {
	saver := &fakeSaver{}
	session, _, _ := newTestSession(t, saver)
	noteID := uuid.New()

	session.handle([]byte(`{"type":"note_edit","data":{"note_id":"` + noteID.String() + `","text":"unsaved"}}`))
	assert.Empty(t, saver.Calls())

	session.close()
	assert.Equal(t, []saveCall{{noteID: noteID, text: "unsaved"}}, saver.Calls())
}

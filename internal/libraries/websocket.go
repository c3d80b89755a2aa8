package libraries

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"ai-notes-backend/internal/api/middleware"
	"ai-notes-backend/internal/autosave"
	"ai-notes-backend/internal/domain"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// WebSocketMessageType names the editor protocol messages.
type WebSocketMessageType string

const (
	WebSocketMessageTypePing           WebSocketMessageType = "ping"
	WebSocketMessageTypePong           WebSocketMessageType = "pong"
	WebSocketMessageTypeError          WebSocketMessageType = "error"
	WebSocketMessageTypeNoteEdit       WebSocketMessageType = "note_edit"
	WebSocketMessageTypeNoteFlush      WebSocketMessageType = "note_flush"
	WebSocketMessageTypeNoteSaved      WebSocketMessageType = "note_saved"
	WebSocketMessageTypeNoteSaveFailed WebSocketMessageType = "note_save_failed"
	WebSocketMessageTypeNotesChanged   WebSocketMessageType = "notes_changed"
)

type WebSocketMessage struct {
	Type WebSocketMessageType `json:"type"`
	Data interface{}          `json:"data,omitempty"`
}

type NoteEditPayload struct {
	NoteID string `json:"note_id"`
	Text   string `json:"text"`
}

type NoteRefPayload struct {
	NoteID string `json:"note_id"`
}

type NoteSaveFailedPayload struct {
	NoteID  string `json:"note_id"`
	Message string `json:"message"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

const sendBufferSize = 256

// Client is one editor connection of a user.
type Client struct {
	ID     string
	UserID uuid.UUID
	Conn   *websocket.Conn
	Send   chan []byte

	mu     sync.Mutex
	closed bool
}

func NewClient(userID uuid.UUID, conn *websocket.Conn) *Client {
	return &Client{
		ID:     uuid.NewString(),
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, sendBufferSize),
	}
}

// enqueue queues msg without blocking. It reports false when the client is
// gone or too slow to keep up.
func (c *Client) enqueue(msg []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}

type userMessage struct {
	userID uuid.UUID
	except string
	data   []byte
}

// Hub tracks the open editor connections of every user.
type Hub struct {
	clients    map[uuid.UUID]map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan userMessage
	done       chan struct{}
	log        *slog.Logger
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan userMessage, sendBufferSize),
		done:       make(chan struct{}),
		log:        log.With("component", "ws_hub"),
	}
}

// Run serves the hub until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		for _, set := range h.clients {
			for _, client := range set {
				client.close()
			}
		}
		h.clients = nil
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			set, ok := h.clients[client.UserID]
			if !ok {
				set = make(map[string]*Client)
				h.clients[client.UserID] = set
			}
			set[client.ID] = client
		case client := <-h.unregister:
			if set, ok := h.clients[client.UserID]; ok {
				delete(set, client.ID)
				if len(set) == 0 {
					delete(h.clients, client.UserID)
				}
			}
			client.close()
		case msg := <-h.broadcast:
			for id, client := range h.clients[msg.userID] {
				if id == msg.except {
					continue
				}
				if !client.enqueue(msg.data) {
					h.log.Warn("dropping message for slow client", "client_id", id, "user_id", msg.userID)
				}
			}
		}
	}
}

func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
		client.close()
	}
}

// BroadcastToUser sends message to every connection of userID except the
// one with id except.
func (h *Hub) BroadcastToUser(userID uuid.UUID, except string, message []byte) {
	select {
	case h.broadcast <- userMessage{userID: userID, except: except, data: message}:
	case <-h.done:
	}
}

func (h *Hub) SendMessage(client *Client, message []byte) {
	if !client.enqueue(message) {
		h.log.Debug("message not delivered", "client_id", client.ID)
	}
}

func (h *Hub) send(client *Client, msgType WebSocketMessageType, data interface{}) {
	b, err := json.Marshal(WebSocketMessage{Type: msgType, Data: data})
	if err != nil {
		h.log.Error("failed to marshal websocket message", "type", msgType, "error", err)
		return
	}
	h.SendMessage(client, b)
}

// SendErrorMessage sends a standardized error message to a client
func SendErrorMessage(hub *Hub, client *Client, errorMsg string) {
	hub.send(client, WebSocketMessageTypeError, &ErrorPayload{Message: errorMsg})
}

// parseWebSocketMessage decodes the envelope and the payload of known types.
func parseWebSocketMessage(msg []byte) (*WebSocketMessage, error) {
	var rawMessage struct {
		Type WebSocketMessageType `json:"type"`
		Data json.RawMessage      `json:"data,omitempty"`
	}
	if err := json.Unmarshal(msg, &rawMessage); err != nil {
		return nil, err
	}

	message := &WebSocketMessage{Type: rawMessage.Type}
	if len(rawMessage.Data) == 0 {
		return message, nil
	}

	switch rawMessage.Type {
	case WebSocketMessageTypeNoteEdit:
		var payload NoteEditPayload
		if err := json.Unmarshal(rawMessage.Data, &payload); err != nil {
			return nil, err
		}
		message.Data = &payload
	case WebSocketMessageTypeNoteFlush:
		var payload NoteRefPayload
		if err := json.Unmarshal(rawMessage.Data, &payload); err != nil {
			return nil, err
		}
		message.Data = &payload
	}
	return message, nil
}

// NoteSaver provides the autosave write function of a user.
type NoteSaver interface {
	Saver(userID uuid.UUID) autosave.SaveFunc
}

// editorSession connects one client to its own autosave controller.
type editorSession struct {
	hub    *Hub
	client *Client
	saves  *autosave.Controller
	log    *slog.Logger
}

func newEditorSession(hub *Hub, client *Client, notes NoteSaver, delay time.Duration, log *slog.Logger) *editorSession {
	s := &editorSession{hub: hub, client: client, log: log}
	s.saves = autosave.New(delay, notes.Saver(client.UserID),
		autosave.WithLogger(log),
		autosave.WithOnSaved(s.saved),
		autosave.WithOnError(s.saveFailed),
	)
	return s
}

func (s *editorSession) saved(noteID uuid.UUID) {
	s.hub.send(s.client, WebSocketMessageTypeNoteSaved, &NoteRefPayload{NoteID: noteID.String()})

	b, err := json.Marshal(WebSocketMessage{Type: WebSocketMessageTypeNotesChanged, Data: struct{}{}})
	if err == nil {
		s.hub.BroadcastToUser(s.client.UserID, s.client.ID, b)
	}
}

func (s *editorSession) saveFailed(noteID uuid.UUID, err error) {
	s.hub.send(s.client, WebSocketMessageTypeNoteSaveFailed, &NoteSaveFailedPayload{
		NoteID:  noteID.String(),
		Message: domain.UserMessage(err),
	})
}

func (s *editorSession) handle(raw []byte) {
	message, err := parseWebSocketMessage(raw)
	if err != nil {
		SendErrorMessage(s.hub, s.client, "Invalid JSON format")
		return
	}

	switch message.Type {
	case WebSocketMessageTypePing:
		s.hub.send(s.client, WebSocketMessageTypePong, nil)

	case WebSocketMessageTypeNoteEdit:
		payload, ok := message.Data.(*NoteEditPayload)
		if !ok {
			SendErrorMessage(s.hub, s.client, "Note edit payload is required")
			return
		}
		noteID, err := uuid.Parse(payload.NoteID)
		if err != nil {
			SendErrorMessage(s.hub, s.client, "Note ID is invalid")
			return
		}
		s.saves.Edit(noteID, payload.Text)

	case WebSocketMessageTypeNoteFlush:
		payload, ok := message.Data.(*NoteRefPayload)
		if !ok {
			SendErrorMessage(s.hub, s.client, "Note flush payload is required")
			return
		}
		noteID, err := uuid.Parse(payload.NoteID)
		if err != nil {
			SendErrorMessage(s.hub, s.client, "Note ID is invalid")
			return
		}
		// Outcome is reported through the saved and failed callbacks.
		_ = s.saves.Flush(noteID)

	default:
		SendErrorMessage(s.hub, s.client, "Type is invalid or not provided")
	}
}

// close flushes pending edits before the client goes away.
func (s *editorSession) close() {
	s.saves.Close()
}

// WebSocketHandler serves the editor socket. The route must sit behind the
// auth middleware so the identity is present in the locals.
func WebSocketHandler(hub *Hub, notes NoteSaver, autosaveDelay time.Duration, log *slog.Logger) fiber.Handler {
	log = log.With("component", "editor_ws")

	return websocket.New(func(conn *websocket.Conn) {
		identity := middleware.IdentityFromLocals(conn.Locals)
		if identity == nil {
			_ = conn.WriteJSON(WebSocketMessage{Type: WebSocketMessageTypeError, Data: &ErrorPayload{Message: domain.UserMessage(domain.ErrUnauthorized)}})
			_ = conn.Close()
			return
		}

		client := NewClient(identity.UserID, conn)
		if !hub.Register(client) {
			_ = conn.Close()
			return
		}
		session := newEditorSession(hub, client, notes, autosaveDelay, log)

		// Write loop
		writerDone := make(chan struct{})
		go func() {
			defer close(writerDone)
			for msg := range client.Send {
				if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					log.Debug("write error", "client_id", client.ID, "error", err)
					_ = conn.Close()
					return
				}
			}
		}()

		// Read loop
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				log.Debug("read error", "client_id", client.ID, "error", err)
				break
			}
			session.handle(msg)
		}

		session.close()
		hub.Unregister(client)
		<-writerDone
		_ = conn.Close()
	})
}

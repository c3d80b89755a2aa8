// Package mock provides in-memory repositories for tests.
package mock

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"ai-notes-backend/internal/domain"
	"ai-notes-backend/internal/models"
	"ai-notes-backend/internal/repo"

	"github.com/google/uuid"
)

var (
	_ repo.NoteRepoInterface    = (*NoteRepository)(nil)
	_ repo.UserRepoInterface    = (*UserRepository)(nil)
	_ repo.SessionRepoInterface = (*SessionRepository)(nil)
)

// clock hands out strictly increasing timestamps so ordering by UpdatedAt is
// deterministic.
type clock struct {
	last time.Time
}

func (c *clock) now() time.Time {
	t := time.Now().UTC()
	if !t.After(c.last) {
		t = c.last.Add(time.Millisecond)
	}
	c.last = t
	return t
}

// NoteRepository is an in-memory NoteRepoInterface. Setting Err makes every
// call fail with it.
type NoteRepository struct {
	mu    sync.RWMutex
	notes map[uuid.UUID]models.Note
	clock clock

	Err error
}

func NewNoteRepository() *NoteRepository {
	return &NoteRepository{notes: make(map[uuid.UUID]models.Note)}
}

func (m *NoteRepository) Create(_ context.Context, authorID uuid.UUID, text string) (*models.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}

	now := m.clock.now()
	note := models.Note{ID: uuid.New(), AuthorID: authorID, Text: text, Version: 1, CreatedAt: now, UpdatedAt: now}
	m.notes[note.ID] = note
	return &note, nil
}

func (m *NoteRepository) GetByID(_ context.Context, noteID, authorID uuid.UUID) (*models.Note, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	note, ok := m.notes[noteID]
	if !ok || note.AuthorID != authorID {
		return nil, fmt.Errorf("note %s: %w", noteID, domain.ErrNotFound)
	}
	return &note, nil
}

func (m *NoteRepository) GetLatest(ctx context.Context, authorID uuid.UUID) (*models.Note, error) {
	notes, err := m.ListByAuthor(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if len(notes) == 0 {
		return nil, fmt.Errorf("latest note of %s: %w", authorID, domain.ErrNotFound)
	}
	return &notes[0], nil
}

func (m *NoteRepository) ListByAuthor(_ context.Context, authorID uuid.UUID) ([]models.Note, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	notes := []models.Note{}
	for _, n := range m.notes {
		if n.AuthorID == authorID {
			notes = append(notes, n)
		}
	}
	slices.SortFunc(notes, func(a, b models.Note) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	return notes, nil
}

func (m *NoteRepository) UpdateText(_ context.Context, noteID, authorID uuid.UUID, text string, baseVersion int64) (*models.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}

	note, ok := m.notes[noteID]
	if !ok || note.AuthorID != authorID {
		return nil, fmt.Errorf("note %s: %w", noteID, domain.ErrNotFound)
	}
	if baseVersion > 0 && baseVersion != note.Version {
		return nil, fmt.Errorf("note %s version %d: %w", noteID, baseVersion, domain.ErrConflict)
	}

	note.Text = text
	note.Version++
	note.UpdatedAt = m.clock.now()
	m.notes[noteID] = note
	return &note, nil
}

func (m *NoteRepository) Delete(_ context.Context, noteID, authorID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}

	note, ok := m.notes[noteID]
	if !ok || note.AuthorID != authorID {
		return fmt.Errorf("note %s: %w", noteID, domain.ErrNotFound)
	}
	delete(m.notes, noteID)
	return nil
}

// Len returns the number of stored notes of every author.
func (m *NoteRepository) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.notes)
}

type UserRepository struct {
	mu    sync.RWMutex
	users map[uuid.UUID]models.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[uuid.UUID]models.User)}
}

func (m *UserRepository) Create(_ context.Context, email, passwordHash string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range m.users {
		if u.Email == email {
			return nil, fmt.Errorf("user %s: %w", email, domain.ErrAlreadyExists)
		}
	}
	now := time.Now().UTC()
	user := models.User{ID: uuid.New(), Email: email, PasswordHash: passwordHash, CreatedAt: now, UpdatedAt: now}
	m.users[user.ID] = user
	return &user, nil
}

func (m *UserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", email, domain.ErrNotFound)
}

func (m *UserRepository) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	return &u, nil
}

// Remove deletes a user, as if the account was dropped by an operator.
func (m *UserRepository) Remove(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
}

type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]models.Session
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{sessions: make(map[uuid.UUID]models.Session)}
}

func (m *SessionRepository) Create(_ context.Context, userID uuid.UUID, expiresAt time.Time, meta models.SessionMetadata) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	raw, err := json.Marshal(meta)
	if err != nil {
		return nil, err
	}
	s := models.Session{ID: uuid.New(), UserID: userID, ExpiresAt: expiresAt, Metadata: raw, CreatedAt: time.Now().UTC()}
	m.sessions[s.ID] = s
	return &s, nil
}

func (m *SessionRepository) GetByID(_ context.Context, id uuid.UUID) (*models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
	}
	return &s, nil
}

func (m *SessionRepository) Revoke(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok || s.RevokedAt != nil {
		return nil
	}
	now := time.Now().UTC()
	s.RevokedAt = &now
	m.sessions[id] = s
	return nil
}

// Active returns the sessions that are neither revoked nor expired, oldest first.
func (m *SessionRepository) Active() []models.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := time.Now()
	out := []models.Session{}
	for _, s := range m.sessions {
		if s.Active(now) {
			out = append(out, s)
		}
	}
	slices.SortFunc(out, func(a, b models.Session) int { return cmp.Compare(a.CreatedAt.UnixNano(), b.CreatedAt.UnixNano()) })
	return out
}

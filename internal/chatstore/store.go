// Package chatstore keeps the CLI's local state: the chat history under the
// "messages" key and the session token of the last login.
package chatstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"ai-notes-backend/internal/models"

	"github.com/spf13/afero"
)

const (
	MessagesFile = "messages.json"
	TokenFile    = "token"
)

type Store struct {
	fs  afero.Fs
	dir string
}

func New(fsys afero.Fs, dir string) *Store {
	return &Store{fs: fsys, dir: dir}
}

// Messages returns the saved history, empty when nothing was saved yet.
func (s *Store) Messages() ([]models.ChatMessage, error) {
	data, err := afero.ReadFile(s.fs, s.path(MessagesFile))
	if errors.Is(err, fs.ErrNotExist) {
		return []models.ChatMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read chat history: %w", err)
	}

	var messages []models.ChatMessage
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("decode chat history: %w", err)
	}
	if messages == nil {
		messages = []models.ChatMessage{}
	}
	return messages, nil
}

// Append adds messages to the end of the history.
func (s *Store) Append(messages ...models.ChatMessage) error {
	history, err := s.Messages()
	if err != nil {
		return err
	}
	return s.writeJSON(MessagesFile, append(history, messages...))
}

// Clear drops the whole history.
func (s *Store) Clear() error {
	err := s.fs.Remove(s.path(MessagesFile))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("clear chat history: %w", err)
	}
	return nil
}

// Token returns the stored session token, "" when logged out.
func (s *Store) Token() (string, error) {
	data, err := afero.ReadFile(s.fs, s.path(TokenFile))
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *Store) SaveToken(token string) error {
	return s.writeFile(TokenFile, []byte(token), 0o600)
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *Store) writeJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return s.writeFile(name, data, 0o644)
}

// writeFile replaces name through a temp file and rename so a crash never
// leaves a half written file behind.
func (s *Store) writeFile(name string, data []byte, perm fs.FileMode) error {
	if err := s.fs.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("create state dir %s: %w", s.dir, err)
	}

	tmp, err := afero.TempFile(s.fs, s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer s.fs.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := s.fs.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("chmod %s: %w", name, err)
	}
	if err := s.fs.Rename(tmpPath, s.path(name)); err != nil {
		return fmt.Errorf("rename %s: %w", name, err)
	}
	return nil
}

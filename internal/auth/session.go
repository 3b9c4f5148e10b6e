package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/lorrc/service-desk-console/internal/core/domain"
	apperrors "github.com/lorrc/service-desk-console/internal/core/errors"
	"github.com/lorrc/service-desk-console/internal/core/ports"
)

// FileSessionStore persists the session (token + user) as a JSON file so the
// console can resume across restarts. The file is owner-readable only.
type FileSessionStore struct {
	path string
	mu   sync.Mutex
}

var _ ports.SessionStore = (*FileSessionStore)(nil)

func NewFileSessionStore(path string) *FileSessionStore {
	return &FileSessionStore{path: path}
}

// Load reads the persisted session. Returns apperrors.ErrNoSession when no
// file exists or the stored session's token has an invalid shape.
func (s *FileSessionStore) Load() (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.ErrNoSession
		}
		return nil, fmt.Errorf("reading session file: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decoding session file: %w", err)
	}
	if session.Token == "" || session.User.ID == "" {
		return nil, apperrors.ErrNoSession
	}
	if _, err := InspectToken(session.Token); err != nil {
		return nil, apperrors.ErrNoSession
	}
	return &session, nil
}

// Save writes the session atomically via a temp file rename.
func (s *FileSessionStore) Save(session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating session directory: %w", err)
	}

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing session file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing session file: %w", err)
	}
	return nil
}

// Clear removes the persisted session. Missing files are not an error.
func (s *FileSessionStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing session file: %w", err)
	}
	return nil
}

package auth_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/service-desk-console/internal/auth"
	"github.com/lorrc/service-desk-console/internal/core/domain"
	apperrors "github.com/lorrc/service-desk-console/internal/core/errors"
)

func sessionPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "nested", "session.json")
}

func validSession(t *testing.T) *domain.Session {
	t.Helper()
	tm := auth.NewTokenManager("test-secret", time.Hour)
	token, err := tm.GenerateToken("u1", "agent")
	require.NoError(t, err)
	return &domain.Session{
		Token: token,
		User:  domain.User{ID: "u1", Email: "a@example.com", Role: domain.RoleAgent},
	}
}

func TestFileSessionStore_SaveAndLoad(t *testing.T) {
	path := sessionPath(t)
	store := auth.NewFileSessionStore(path)
	session := validSession(t)

	require.NoError(t, store.Save(session))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, session.Token, loaded.Token)
	assert.Equal(t, "u1", loaded.UserID())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileSessionStore_Load_NoSession(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		store := auth.NewFileSessionStore(sessionPath(t))
		_, err := store.Load()
		assert.ErrorIs(t, err, apperrors.ErrNoSession)
	})

	t.Run("empty token", func(t *testing.T) {
		path := sessionPath(t)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
		require.NoError(t, os.WriteFile(path, []byte(`{"token":"","user":{"id":"u1"}}`), 0o600))

		_, err := auth.NewFileSessionStore(path).Load()
		assert.ErrorIs(t, err, apperrors.ErrNoSession)
	})

	t.Run("malformed token", func(t *testing.T) {
		path := sessionPath(t)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
		require.NoError(t, os.WriteFile(path, []byte(`{"token":"garbage","user":{"id":"u1"}}`), 0o600))

		_, err := auth.NewFileSessionStore(path).Load()
		assert.ErrorIs(t, err, apperrors.ErrNoSession)
	})
}

func TestFileSessionStore_Clear(t *testing.T) {
	path := sessionPath(t)
	store := auth.NewFileSessionStore(path)

	require.NoError(t, store.Save(validSession(t)))
	require.NoError(t, store.Clear())

	_, err := store.Load()
	assert.ErrorIs(t, err, apperrors.ErrNoSession)

	// Clearing an already-cleared store is fine.
	assert.NoError(t, store.Clear())
}

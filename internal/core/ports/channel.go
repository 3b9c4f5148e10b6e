package ports

import (
	"context"
	"encoding/json"

	"github.com/lorrc/service-desk-console/internal/core/domain"
)

// EventChannelNewNotification is the inbound event carrying a notification
// record for the joined user's room.
const EventChannelNewNotification = "new-notification"

// EventHandler receives the raw payload of one channel event.
type EventHandler func(data json.RawMessage)

// EventChannel is a persistent, reconnecting connection to the desk's event
// push endpoint, scoped to one user via a room-join handshake that repeats
// on every reconnect. Connection failures are logged and retried, never
// raised to callers.
type EventChannel interface {
	// Connect is idempotent: a live connection for the same user is reused.
	// It returns once the connect loop is running, not once connected.
	Connect(ctx context.Context, userID string)

	// Reconnect restarts the retry loop after the bounded attempts were
	// exhausted. A no-op while the channel is live.
	Reconnect()

	// On registers a handler for a named event and returns its remover.
	On(event string, handler EventHandler) (off func())

	Connected() bool
	Close() error
}

// SessionStore persists the session identity across process restarts.
type SessionStore interface {
	// Load returns apperrors.ErrNoSession when nothing is persisted.
	Load() (*domain.Session, error)
	Save(session *domain.Session) error
	Clear() error
}

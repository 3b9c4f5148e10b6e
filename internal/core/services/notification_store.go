package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/lorrc/service-desk-console/internal/core/domain"
	"github.com/lorrc/service-desk-console/internal/core/ports"
)

// dedupeWindow bounds the set of recently seen notification ids used to
// absorb transport redeliveries.
const dedupeWindow = 128

// NotificationStore is the process-wide notification feed: an ordered,
// newest-first list of records plus a derived unread count. It is mutated by
// the initial bulk fetch, by channel pushes, and by the bulk mark-all-read
// call; records are never individually deleted.
type NotificationStore struct {
	api    ports.NotificationAPI
	logger *slog.Logger

	mu        sync.Mutex
	records   []domain.NotificationRecord
	seen      map[string]struct{}
	seenOrder []string
	ready     bool

	listeners    map[int]func()
	nextListener int
}

// NewNotificationStore creates an empty, uninitialized store.
func NewNotificationStore(api ports.NotificationAPI, logger *slog.Logger) *NotificationStore {
	return &NotificationStore{
		api:       api,
		logger:    logger.With("component", "notification_store"),
		seen:      make(map[string]struct{}),
		listeners: make(map[int]func()),
	}
}

// Attach subscribes the store to the channel's new-notification event. The
// store is the event's only steady-state consumer; the returned func detaches
// it again.
func (s *NotificationStore) Attach(channel ports.EventChannel) (off func()) {
	return channel.On(ports.EventChannelNewNotification, func(data json.RawMessage) {
		var record domain.NotificationRecord
		if err := json.Unmarshal(data, &record); err != nil {
			s.logger.Warn("dropping malformed notification push", "error", err)
			return
		}
		s.OnPush(record)
	})
}

// LoadInitial fetches the existing feed from the server of record and
// replaces the list wholesale. On failure the list is left empty rather than
// stale; the store is ready either way.
func (s *NotificationStore) LoadInitial(ctx context.Context) error {
	records, err := s.api.List(ctx)

	s.mu.Lock()
	s.ready = true
	if err != nil {
		s.records = nil
	} else {
		s.records = records
		for _, r := range records {
			s.remember(r.ID)
		}
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("initial notification fetch failed, starting empty", "error", err)
		return err
	}
	s.notify()
	return nil
}

// OnPush prepends a pushed record. Arrival order is trusted: the list is
// never re-sorted by timestamp. Redelivered ids within the dedupe window are
// dropped.
func (s *NotificationStore) OnPush(record domain.NotificationRecord) {
	s.mu.Lock()
	if _, dup := s.seen[record.ID]; dup {
		s.mu.Unlock()
		s.logger.Debug("ignoring duplicate notification push", "id", record.ID)
		return
	}
	s.remember(record.ID)
	s.records = append([]domain.NotificationRecord{record}, s.records...)
	s.mu.Unlock()

	s.logger.Debug("notification received", "id", record.ID, "type", record.Type)
	s.notify()
}

// MarkAllRead calls the bulk mark-read endpoint and, on success, clears the
// local list entirely. Dependent views assume an empty feed after this call,
// so records are cleared rather than re-flagged. On failure the list is left
// untouched.
func (s *NotificationStore) MarkAllRead(ctx context.Context) error {
	if err := s.api.MarkAllRead(ctx); err != nil {
		s.logger.Warn("mark-all-read failed", "error", err)
		return err
	}

	s.mu.Lock()
	s.records = nil
	s.mu.Unlock()

	s.notify()
	return nil
}

// Records returns a copy of the feed, newest first.
func (s *NotificationStore) Records() []domain.NotificationRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.NotificationRecord, len(s.records))
	copy(out, s.records)
	return out
}

// UnreadCount is derived from the list contents on every call; it is never
// stored independently.
func (s *NotificationStore) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, r := range s.records {
		if !r.Read {
			count++
		}
	}
	return count
}

// Ready reports whether the initial load has completed (successfully or not).
func (s *NotificationStore) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// Subscribe registers a listener invoked after every feed change. The
// returned func removes it.
func (s *NotificationStore) Subscribe(fn func()) (off func()) {
	s.mu.Lock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// remember records an id in the bounded dedupe set. Caller holds s.mu.
func (s *NotificationStore) remember(id string) {
	if _, ok := s.seen[id]; ok {
		return
	}
	s.seen[id] = struct{}{}
	s.seenOrder = append(s.seenOrder, id)
	if len(s.seenOrder) > dedupeWindow {
		oldest := s.seenOrder[0]
		s.seenOrder = s.seenOrder[1:]
		delete(s.seen, oldest)
	}
}

// notify calls listeners outside the lock.
func (s *NotificationStore) notify() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

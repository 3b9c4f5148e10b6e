package domain

import (
	"encoding/json"
	"time"
)

// NotificationType classifies a pushed notification. The set is open on the
// wire; unrecognized values render through the fallback bucket.
type NotificationType string

const (
	NotificationTicketCreated       NotificationType = "ticket.created"
	NotificationTicketUpdated       NotificationType = "ticket.updated"
	NotificationTicketStatusUpdated NotificationType = "ticket.status.updated"
	NotificationOther               NotificationType = "other"
)

// Known reports whether the type is one of the conventional values.
func (t NotificationType) Known() bool {
	switch t {
	case NotificationTicketCreated, NotificationTicketUpdated, NotificationTicketStatusUpdated:
		return true
	}
	return false
}

// Classify maps unrecognized wire values onto the fallback bucket.
func (t NotificationType) Classify() NotificationType {
	if t.Known() {
		return t
	}
	return NotificationOther
}

// NotificationRecord is a single entry in the notification feed. Payload is
// opaque and type-dependent; the console never interprets it beyond display.
type NotificationRecord struct {
	ID        string           `json:"id"`
	Type      NotificationType `json:"type"`
	Payload   json.RawMessage  `json:"payload,omitempty"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"createdAt"`
}

package rest

import (
	"context"
	"net/http"

	"github.com/lorrc/service-desk-console/internal/core/domain"
	"github.com/lorrc/service-desk-console/internal/core/ports"
)

// NotificationClient implements ports.NotificationAPI against the desk's
// notification endpoints.
type NotificationClient struct {
	c *Client
}

var _ ports.NotificationAPI = (*NotificationClient)(nil)

func NewNotificationClient(c *Client) *NotificationClient {
	return &NotificationClient{c: c}
}

func (n *NotificationClient) List(ctx context.Context) ([]domain.NotificationRecord, error) {
	var records []domain.NotificationRecord
	if err := n.c.do(ctx, http.MethodGet, "/notifications", nil, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// MarkAllRead bulk-marks the feed read. The endpoint takes no body; the
// caller clears its local list on success.
func (n *NotificationClient) MarkAllRead(ctx context.Context) error {
	return n.c.do(ctx, http.MethodPut, "/notifications/mark-as-read", nil, nil, nil)
}

package services

import (
	"context"
	"log/slog"

	"github.com/lorrc/service-desk-console/internal/core/domain"
	"github.com/lorrc/service-desk-console/internal/core/ports"
)

// TicketDesk drives the ticket table: list, file, and update tickets with
// the shared reconciliation policy.
type TicketDesk struct {
	api  ports.TicketAPI
	list *ListController[domain.Ticket]
	rec  *Reconciler[domain.Ticket]
}

func NewTicketDesk(api ports.TicketAPI, opts ListControllerOptions, logger *slog.Logger) *TicketDesk {
	list := NewListController("tickets", api.List, opts, logger)
	return &TicketDesk{
		api:  api,
		list: list,
		rec:  NewReconciler(list, func(t domain.Ticket) string { return t.ID }, logger),
	}
}

// List exposes the underlying controller for paging and filtering.
func (d *TicketDesk) List() *ListController[domain.Ticket] {
	return d.list
}

// Create files a new ticket and refetches page 1 under current filters.
func (d *TicketDesk) Create(ctx context.Context, params ports.CreateTicketParams) (*domain.Ticket, error) {
	return d.rec.ApplyCreate(ctx, func(ctx context.Context) (*domain.Ticket, error) {
		return d.api.Create(ctx, params)
	})
}

// Update edits a ticket (fields, status, assignee) and reconciles the
// displayed page.
func (d *TicketDesk) Update(ctx context.Context, id string, params ports.UpdateTicketParams) (*domain.Ticket, error) {
	return d.rec.ApplyUpdate(ctx, func(ctx context.Context) (*domain.Ticket, error) {
		return d.api.Update(ctx, id, params)
	})
}

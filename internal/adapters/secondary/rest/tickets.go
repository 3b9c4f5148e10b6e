package rest

import (
	"context"
	"net/http"

	"github.com/lorrc/service-desk-console/internal/core/domain"
	"github.com/lorrc/service-desk-console/internal/core/ports"
)

// TicketClient implements ports.TicketAPI against the desk's ticket
// endpoints.
type TicketClient struct {
	c *Client
}

var _ ports.TicketAPI = (*TicketClient)(nil)

func NewTicketClient(c *Client) *TicketClient {
	return &TicketClient{c: c}
}

func (t *TicketClient) List(ctx context.Context, query domain.ListQuery) (*domain.Page[domain.Ticket], error) {
	page := &domain.Page[domain.Ticket]{}
	if err := t.c.do(ctx, http.MethodGet, "/tickets", query.Values(), nil, page); err != nil {
		return nil, err
	}
	return page, nil
}

func (t *TicketClient) Get(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket := &domain.Ticket{}
	if err := t.c.do(ctx, http.MethodGet, "/tickets/"+id, nil, nil, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

type createTicketRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Priority    string `json:"priority"`
}

func (t *TicketClient) Create(ctx context.Context, params ports.CreateTicketParams) (*domain.Ticket, error) {
	body := createTicketRequest{
		Name:        params.Name,
		Description: params.Description,
		Category:    params.Category,
		Priority:    string(params.Priority),
	}
	ticket := &domain.Ticket{}
	if err := t.c.do(ctx, http.MethodPost, "/tickets", nil, body, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

type updateTicketRequest struct {
	Name          *string `json:"name,omitempty"`
	Description   *string `json:"description,omitempty"`
	Category      *string `json:"category,omitempty"`
	Priority      *string `json:"priority,omitempty"`
	Status        *string `json:"status,omitempty"`
	AssignedAgent *string `json:"assignedAgent,omitempty"`
}

func (t *TicketClient) Update(ctx context.Context, id string, params ports.UpdateTicketParams) (*domain.Ticket, error) {
	body := updateTicketRequest{
		Name:          params.Name,
		Description:   params.Description,
		Category:      params.Category,
		AssignedAgent: params.AssignedAgent,
	}
	if params.Priority != nil {
		value := string(*params.Priority)
		body.Priority = &value
	}
	if params.Status != nil {
		value := string(*params.Status)
		body.Status = &value
	}
	ticket := &domain.Ticket{}
	if err := t.c.do(ctx, http.MethodPut, "/tickets/"+id, nil, body, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

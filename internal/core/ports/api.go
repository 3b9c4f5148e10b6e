package ports

import (
	"context"

	"github.com/lorrc/service-desk-console/internal/core/domain"
)

// CreateTicketParams defines the input for filing a new ticket.
type CreateTicketParams struct {
	Name        string
	Description string
	Category    string
	Priority    domain.TicketPriority
}

// UpdateTicketParams defines the input for updating a ticket. Nil fields are
// left unchanged by the server.
type UpdateTicketParams struct {
	Name          *string
	Description   *string
	Category      *string
	Priority      *domain.TicketPriority
	Status        *domain.TicketStatus
	AssignedAgent *string
}

// CategoryParams defines the input for creating or renaming a category.
type CategoryParams struct {
	Name string
}

// UpdateUserParams defines the input for editing a user account.
type UpdateUserParams struct {
	Name  *string
	Email *string
	Role  *domain.Role
}

// AuthAPI is the login surface of the desk API.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*domain.Session, error)
	CurrentUser(ctx context.Context) (*domain.User, error)
}

// TicketAPI covers the paginated ticket list and its mutations.
type TicketAPI interface {
	List(ctx context.Context, query domain.ListQuery) (*domain.Page[domain.Ticket], error)
	Get(ctx context.Context, id string) (*domain.Ticket, error)
	Create(ctx context.Context, params CreateTicketParams) (*domain.Ticket, error)
	Update(ctx context.Context, id string, params UpdateTicketParams) (*domain.Ticket, error)
}

// CategoryAPI covers the paginated category list and its mutations.
type CategoryAPI interface {
	List(ctx context.Context, query domain.ListQuery) (*domain.Page[domain.Category], error)
	ListActive(ctx context.Context) ([]domain.Category, error)
	Create(ctx context.Context, params CategoryParams) (*domain.Category, error)
	Update(ctx context.Context, id string, params CategoryParams) (*domain.Category, error)
	ToggleStatus(ctx context.Context, id string, isActive bool) (*domain.Category, error)
}

// UserAPI covers the paginated user list and its mutations.
type UserAPI interface {
	List(ctx context.Context, query domain.ListQuery) (*domain.Page[domain.User], error)
	Update(ctx context.Context, id string, params UpdateUserParams) (*domain.User, error)
	ToggleStatus(ctx context.Context, id string, isActive bool) (*domain.User, error)
}

// NotificationAPI is the server of record for the notification feed.
type NotificationAPI interface {
	List(ctx context.Context) ([]domain.NotificationRecord, error)
	MarkAllRead(ctx context.Context) error
}

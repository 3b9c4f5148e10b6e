package services

import (
	"context"
	"log/slog"

	"github.com/lorrc/service-desk-console/internal/core/domain"
	apperrors "github.com/lorrc/service-desk-console/internal/core/errors"
	"github.com/lorrc/service-desk-console/internal/core/ports"
)

// UserAdmin drives the user management table: a list controller over the
// paginated user endpoint plus the user mutations, reconciled through the
// shared policy.
type UserAdmin struct {
	api     ports.UserAPI
	list    *ListController[domain.User]
	rec     *Reconciler[domain.User]
	session *domain.Session
}

// NewUserAdmin wires a user table for the given session. The session
// identifies the acting user's own row, which must never be deactivated from
// this view.
func NewUserAdmin(api ports.UserAPI, session *domain.Session, opts ListControllerOptions, logger *slog.Logger) *UserAdmin {
	list := NewListController("users", api.List, opts, logger)
	return &UserAdmin{
		api:     api,
		list:    list,
		rec:     NewReconciler(list, func(u domain.User) string { return u.ID }, logger),
		session: session,
	}
}

// List exposes the underlying controller for paging and filtering.
func (a *UserAdmin) List() *ListController[domain.User] {
	return a.list
}

// CanToggle reports whether the toggle action is available for the given
// row. The acting user's own row is always disabled.
func (a *UserAdmin) CanToggle(userID string) bool {
	return userID != a.session.UserID()
}

// ToggleStatus flips a user's active flag. Toggling the session's own
// account is rejected locally; no request is issued.
func (a *UserAdmin) ToggleStatus(ctx context.Context, userID string, isActive bool) (*domain.User, error) {
	if !a.CanToggle(userID) {
		return nil, apperrors.ErrSelfDeactivation
	}
	return a.rec.ApplyUpdate(ctx, func(ctx context.Context) (*domain.User, error) {
		return a.api.ToggleStatus(ctx, userID, isActive)
	})
}

// Update edits a user account and reconciles the displayed page.
func (a *UserAdmin) Update(ctx context.Context, userID string, params ports.UpdateUserParams) (*domain.User, error) {
	return a.rec.ApplyUpdate(ctx, func(ctx context.Context) (*domain.User, error) {
		return a.api.Update(ctx, userID, params)
	})
}

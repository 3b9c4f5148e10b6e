package services

import (
	"context"
	"log/slog"

	"github.com/lorrc/service-desk-console/internal/core/domain"
	"github.com/lorrc/service-desk-console/internal/core/ports"
)

// CategoryAdmin drives the category management table.
type CategoryAdmin struct {
	api  ports.CategoryAPI
	list *ListController[domain.Category]
	rec  *Reconciler[domain.Category]
}

func NewCategoryAdmin(api ports.CategoryAPI, opts ListControllerOptions, logger *slog.Logger) *CategoryAdmin {
	list := NewListController("categories", api.List, opts, logger)
	return &CategoryAdmin{
		api:  api,
		list: list,
		rec:  NewReconciler(list, func(c domain.Category) string { return c.ID }, logger),
	}
}

// List exposes the underlying controller for paging and filtering.
func (a *CategoryAdmin) List() *ListController[domain.Category] {
	return a.list
}

// Create files a new category and refetches page 1 under current filters.
func (a *CategoryAdmin) Create(ctx context.Context, params ports.CategoryParams) (*domain.Category, error) {
	return a.rec.ApplyCreate(ctx, func(ctx context.Context) (*domain.Category, error) {
		return a.api.Create(ctx, params)
	})
}

// Update renames a category and reconciles the displayed page.
func (a *CategoryAdmin) Update(ctx context.Context, id string, params ports.CategoryParams) (*domain.Category, error) {
	return a.rec.ApplyUpdate(ctx, func(ctx context.Context) (*domain.Category, error) {
		return a.api.Update(ctx, id, params)
	})
}

// ToggleStatus flips a category's active flag and reconciles the displayed
// page.
func (a *CategoryAdmin) ToggleStatus(ctx context.Context, id string, isActive bool) (*domain.Category, error) {
	return a.rec.ApplyUpdate(ctx, func(ctx context.Context) (*domain.Category, error) {
		return a.api.ToggleStatus(ctx, id, isActive)
	})
}

package services

import (
	"context"
	"log/slog"
)

// Mutation performs one create/update call against the desk API and returns
// the server's copy of the entity. State changes only after the server
// confirms; nothing is applied optimistically.
type Mutation[T any] func(ctx context.Context) (*T, error)

// Reconciler decides how a list controller's displayed page must change
// after a mutation succeeds against its resource. Every mutation first
// clears the previously surfaced error so a stale error never lingers
// beside a fresh result.
type Reconciler[T any] struct {
	list   *ListController[T]
	id     func(T) string
	logger *slog.Logger
}

// NewReconciler binds a reconciler to a controller. id extracts the entity
// id used to match rows for in-place patches.
func NewReconciler[T any](list *ListController[T], id func(T) string, logger *slog.Logger) *Reconciler[T] {
	return &Reconciler[T]{
		list:   list,
		id:     id,
		logger: logger.With("component", "reconciler", "resource", list.name),
	}
}

// ApplyCreate runs a create mutation. On success it refetches page 1 under
// the current filters: the new record may not belong on the viewed page and
// the total counts have changed.
func (r *Reconciler[T]) ApplyCreate(ctx context.Context, do Mutation[T]) (*T, error) {
	r.list.ClearError()

	entity, err := do(ctx)
	if err != nil {
		return nil, err
	}

	r.list.FirstPage(ctx)
	return entity, nil
}

// ApplyUpdate runs an update mutation. When the server returns the updated
// entity and its row is on the displayed page, the row is patched in place;
// otherwise the current page is refetched. The update is never silently
// dropped.
func (r *Reconciler[T]) ApplyUpdate(ctx context.Context, do Mutation[T]) (*T, error) {
	r.list.ClearError()

	entity, err := do(ctx)
	if err != nil {
		return nil, err
	}

	if entity != nil {
		entityID := r.id(*entity)
		if r.list.Patch(func(row T) bool { return r.id(row) == entityID }, *entity) {
			r.logger.Debug("patched row in place", "id", entityID)
			return entity, nil
		}
	}

	r.list.Refresh(ctx)
	return entity, nil
}

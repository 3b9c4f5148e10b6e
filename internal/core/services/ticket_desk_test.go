package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/service-desk-console/internal/core/domain"
	"github.com/lorrc/service-desk-console/internal/core/mocks"
	"github.com/lorrc/service-desk-console/internal/core/ports"
	"github.com/lorrc/service-desk-console/internal/core/services"
)

func deskOptions() services.ListControllerOptions {
	return services.ListControllerOptions{PageSize: 10, SearchSettle: time.Minute}
}

func waitTicketList(t *testing.T, c *services.ListController[domain.Ticket]) {
	t.Helper()
	require.Eventually(t, func() bool {
		return !c.Loading()
	}, time.Second, 5*time.Millisecond)
}

func ticketPage(items ...domain.Ticket) *domain.Page[domain.Ticket] {
	return &domain.Page[domain.Ticket]{
		Items:        items,
		TotalRecords: len(items),
		TotalPages:   1,
		CurrentPage:  1,
	}
}

func TestTicketDesk_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("success refetches page 1 under current filters", func(t *testing.T) {
		mockAPI := mocks.NewMockTicketAPI()
		desk := services.NewTicketDesk(mockAPI, deskOptions(), testLogger())
		defer desk.List().Stop()

		created := &domain.Ticket{ID: "t9", Name: "New printer", Status: domain.StatusOpen}
		mockAPI.On("Create", ctx, mock.AnythingOfType("ports.CreateTicketParams")).Return(created, nil)
		mockAPI.On("List", ctx, mock.MatchedBy(func(q domain.ListQuery) bool {
			return q.Page == 1 && q.Filter("status") == "open"
		})).Return(ticketPage(*created), nil)

		desk.List().SetFilter(ctx, "status", "open")
		waitTicketList(t, desk.List())

		ticket, err := desk.Create(ctx, ports.CreateTicketParams{
			Name:     "New printer",
			Priority: domain.PriorityLow,
		})
		waitTicketList(t, desk.List())

		require.NoError(t, err)
		assert.Equal(t, "t9", ticket.ID)
		assert.Equal(t, 1, desk.List().Page().CurrentPage)
		mockAPI.AssertExpectations(t)
	})

	t.Run("failure issues no refetch and surfaces the error", func(t *testing.T) {
		mockAPI := mocks.NewMockTicketAPI()
		desk := services.NewTicketDesk(mockAPI, deskOptions(), testLogger())
		defer desk.List().Stop()

		mockAPI.On("Create", ctx, mock.AnythingOfType("ports.CreateTicketParams")).
			Return(nil, errors.New("validation failed"))

		ticket, err := desk.Create(ctx, ports.CreateTicketParams{Name: "x"})

		require.Error(t, err)
		assert.Nil(t, ticket)
		mockAPI.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
	})
}

func TestTicketDesk_Update(t *testing.T) {
	ctx := context.Background()
	newName := "Renamed"

	t.Run("patches the displayed row in place", func(t *testing.T) {
		mockAPI := mocks.NewMockTicketAPI()
		desk := services.NewTicketDesk(mockAPI, deskOptions(), testLogger())
		defer desk.List().Stop()

		mockAPI.On("List", ctx, mock.Anything).
			Return(ticketPage(domain.Ticket{ID: "t1", Name: "Old"}, domain.Ticket{ID: "t2"}), nil).Once()

		desk.List().Refresh(ctx)
		waitTicketList(t, desk.List())

		updated := &domain.Ticket{ID: "t1", Name: newName}
		mockAPI.On("Update", ctx, "t1", mock.AnythingOfType("ports.UpdateTicketParams")).Return(updated, nil)

		ticket, err := desk.Update(ctx, "t1", ports.UpdateTicketParams{Name: &newName})

		require.NoError(t, err)
		assert.Equal(t, newName, ticket.Name)

		page := desk.List().Page()
		assert.Equal(t, newName, page.Items[0].Name)
		assert.Equal(t, 2, page.TotalRecords, "in-place patch leaves totals untouched")
		// A single List call: the update itself triggered no refetch.
		mockAPI.AssertNumberOfCalls(t, "List", 1)
	})

	t.Run("row not on the displayed page falls back to a refetch", func(t *testing.T) {
		mockAPI := mocks.NewMockTicketAPI()
		desk := services.NewTicketDesk(mockAPI, deskOptions(), testLogger())
		defer desk.List().Stop()

		mockAPI.On("List", ctx, mock.Anything).
			Return(ticketPage(domain.Ticket{ID: "t1"}), nil)

		desk.List().Refresh(ctx)
		waitTicketList(t, desk.List())

		updated := &domain.Ticket{ID: "elsewhere", Name: newName}
		mockAPI.On("Update", ctx, "elsewhere", mock.AnythingOfType("ports.UpdateTicketParams")).Return(updated, nil)

		_, err := desk.Update(ctx, "elsewhere", ports.UpdateTicketParams{Name: &newName})
		waitTicketList(t, desk.List())

		require.NoError(t, err)
		mockAPI.AssertNumberOfCalls(t, "List", 2)
	})

	t.Run("clears a stale error before the mutation", func(t *testing.T) {
		mockAPI := mocks.NewMockTicketAPI()
		desk := services.NewTicketDesk(mockAPI, deskOptions(), testLogger())
		defer desk.List().Stop()

		mockAPI.On("List", ctx, mock.Anything).Return(nil, errors.New("down")).Once()
		desk.List().Refresh(ctx)
		waitTicketList(t, desk.List())
		require.Error(t, desk.List().Err())

		updated := &domain.Ticket{ID: "t1"}
		mockAPI.On("Update", ctx, "t1", mock.AnythingOfType("ports.UpdateTicketParams")).Return(updated, nil)
		mockAPI.On("List", ctx, mock.Anything).Return(ticketPage(*updated), nil)

		_, err := desk.Update(ctx, "t1", ports.UpdateTicketParams{Name: &newName})
		waitTicketList(t, desk.List())

		require.NoError(t, err)
		assert.NoError(t, desk.List().Err())
	})
}

package stub_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/service-desk-console/internal/adapters/primary/channel"
	"github.com/lorrc/service-desk-console/internal/adapters/secondary/rest"
	"github.com/lorrc/service-desk-console/internal/auth"
	"github.com/lorrc/service-desk-console/internal/core/domain"
	apperrors "github.com/lorrc/service-desk-console/internal/core/errors"
	"github.com/lorrc/service-desk-console/internal/core/ports"
	"github.com/lorrc/service-desk-console/internal/stub"
)

type fixture struct {
	srv      *httptest.Server
	store    *stub.Store
	admin    domain.User
	agent    domain.User
	customer domain.User
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := stub.NewStore()
	admin := domain.User{ID: uuid.NewString(), Name: "Ada", Email: "admin@example.com", Role: domain.RoleAdmin, IsActive: true}
	agent := domain.User{ID: uuid.NewString(), Name: "Avery", Email: "agent@example.com", Role: domain.RoleAgent, IsActive: true}
	customer := domain.User{ID: uuid.NewString(), Name: "Casey", Email: "customer@example.com", Role: domain.RoleCustomer, IsActive: true}
	store.AddAccount(admin, "admin123")
	store.AddAccount(agent, "agent123")
	store.AddAccount(customer, "customer123")

	tokens := auth.NewTokenManager("test-secret", time.Hour)
	server := stub.NewServer(store, tokens, testLogger())
	srv := httptest.NewServer(server.Handler())
	t.Cleanup(srv.Close)

	return &fixture{srv: srv, store: store, admin: admin, agent: agent, customer: customer}
}

func (f *fixture) login(t *testing.T, email, password string) (*rest.Client, *domain.Session) {
	t.Helper()
	client, err := rest.NewClient(rest.Config{BaseURL: f.srv.URL}, testLogger())
	require.NoError(t, err)
	session, err := rest.NewAuthClient(client).Login(context.Background(), email, password)
	require.NoError(t, err)
	return client, session
}

func (f *fixture) wsURL() string {
	return "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/ws"
}

func TestStubDesk_LoginAndCurrentUser(t *testing.T) {
	f := newFixture(t)

	t.Run("valid credentials", func(t *testing.T) {
		client, session := f.login(t, "agent@example.com", "agent123")

		assert.NotEmpty(t, session.Token)
		assert.Equal(t, domain.RoleAgent, session.User.Role)

		user, err := rest.NewAuthClient(client).CurrentUser(context.Background())
		require.NoError(t, err)
		assert.Equal(t, f.agent.ID, user.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		client, err := rest.NewClient(rest.Config{BaseURL: f.srv.URL}, testLogger())
		require.NoError(t, err)

		_, err = rest.NewAuthClient(client).Login(context.Background(), "agent@example.com", "nope")
		assert.ErrorIs(t, err, apperrors.ErrSessionExpired)
	})

	t.Run("no token is unauthorized", func(t *testing.T) {
		client, err := rest.NewClient(rest.Config{BaseURL: f.srv.URL}, testLogger())
		require.NoError(t, err)

		_, err = rest.NewTicketClient(client).List(context.Background(), domain.NewListQuery(10))
		assert.ErrorIs(t, err, apperrors.ErrSessionExpired)
	})
}

func TestStubDesk_TicketLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	client, _ := f.login(t, "customer@example.com", "customer123")
	tickets := rest.NewTicketClient(client)

	created, err := tickets.Create(ctx, createParams("Printer down"))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOpen, created.Status)
	assert.Equal(t, f.customer.ID, created.Customer)

	page, err := tickets.List(ctx, domain.NewListQuery(10))
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalRecords)

	status := domain.StatusInProgress
	updated, err := tickets.Update(ctx, created.ID, updateStatus(status))
	require.NoError(t, err)
	assert.Equal(t, status, updated.Status)

	got, err := tickets.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, status, got.Status)
}

func TestStubDesk_TicketFilters(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	client, _ := f.login(t, "customer@example.com", "customer123")
	tickets := rest.NewTicketClient(client)

	_, err := tickets.Create(ctx, createParams("Printer down"))
	require.NoError(t, err)
	second, err := tickets.Create(ctx, createParams("VPN broken"))
	require.NoError(t, err)

	status := domain.StatusResolved
	_, err = tickets.Update(ctx, second.ID, updateStatus(status))
	require.NoError(t, err)

	query := domain.NewListQuery(10)
	query.SetFilter("status", "resolved")
	page, err := tickets.List(ctx, query)
	require.NoError(t, err)
	require.Equal(t, 1, page.TotalRecords)
	assert.Equal(t, "VPN broken", page.Items[0].Name)

	query = domain.NewListQuery(10)
	query.Search = "printer"
	page, err = tickets.List(ctx, query)
	require.NoError(t, err)
	require.Equal(t, 1, page.TotalRecords)
	assert.Equal(t, "Printer down", page.Items[0].Name)
}

func TestStubDesk_Pagination(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	client, _ := f.login(t, "customer@example.com", "customer123")
	tickets := rest.NewTicketClient(client)

	for i := 0; i < 5; i++ {
		_, err := tickets.Create(ctx, createParams("Ticket "+string(rune('A'+i))))
		require.NoError(t, err)
	}

	query := domain.NewListQuery(2)
	query.Page = 2
	page, err := tickets.List(ctx, query)
	require.NoError(t, err)
	assert.Equal(t, 5, page.TotalRecords)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 2, page.CurrentPage)
	assert.Len(t, page.Items, 2)
}

func TestStubDesk_SelfDeactivationRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	client, session := f.login(t, "admin@example.com", "admin123")
	users := rest.NewUserClient(client)

	_, err := users.ToggleStatus(ctx, session.User.ID, false)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	// Another account toggles fine.
	toggled, err := users.ToggleStatus(ctx, f.agent.ID, false)
	require.NoError(t, err)
	assert.False(t, toggled.IsActive)
}

func TestStubDesk_Categories(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	client, _ := f.login(t, "admin@example.com", "admin123")
	categories := rest.NewCategoryClient(client)

	billing, err := categories.Create(ctx, categoryParams("Billing"))
	require.NoError(t, err)
	hardware, err := categories.Create(ctx, categoryParams("Hardware"))
	require.NoError(t, err)

	_, err = categories.ToggleStatus(ctx, hardware.ID, false)
	require.NoError(t, err)

	active, err := categories.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, billing.ID, active[0].ID)

	renamed, err := categories.Update(ctx, billing.ID, categoryParams("Billing & Invoices"))
	require.NoError(t, err)
	assert.Equal(t, "Billing & Invoices", renamed.Name)
}

func TestStubDesk_NotificationFlow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	adminClient, adminSession := f.login(t, "admin@example.com", "admin123")
	customerClient, _ := f.login(t, "customer@example.com", "customer123")

	// Admin joins their room over the push channel.
	ch := channel.New(channel.Config{
		URL:         f.wsURL(),
		DialTimeout: time.Second,
		MaxAttempts: 3,
		BaseDelay:   10 * time.Millisecond,
		MaxDelay:    50 * time.Millisecond,
	}, testLogger())
	defer ch.Close()

	received := make(chan domain.NotificationRecord, 4)
	ch.On("new-notification", func(data json.RawMessage) {
		var record domain.NotificationRecord
		if err := json.Unmarshal(data, &record); err == nil {
			received <- record
		}
	})
	ch.Connect(ctx, adminSession.User.ID)
	require.Eventually(t, ch.Connected, 2*time.Second, 10*time.Millisecond)

	// A customer filing a ticket notifies everyone who triages.
	created, err := rest.NewTicketClient(customerClient).Create(ctx, createParams("No sound"))
	require.NoError(t, err)

	select {
	case record := <-received:
		assert.Equal(t, domain.NotificationTicketCreated, record.Type)
		assert.False(t, record.Read)

		var ticket domain.Ticket
		require.NoError(t, json.Unmarshal(record.Payload, &ticket))
		assert.Equal(t, created.ID, ticket.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("push never arrived")
	}

	// The feed endpoint has the record too, and mark-as-read drains it.
	notifications := rest.NewNotificationClient(adminClient)
	records, err := notifications.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)

	require.NoError(t, notifications.MarkAllRead(ctx))
	records, err = notifications.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func createParams(name string) ports.CreateTicketParams {
	return ports.CreateTicketParams{
		Name:        name,
		Description: "details",
		Priority:    domain.PriorityMedium,
	}
}

func updateStatus(status domain.TicketStatus) ports.UpdateTicketParams {
	return ports.UpdateTicketParams{Status: &status}
}

func categoryParams(name string) ports.CategoryParams {
	return ports.CategoryParams{Name: name}
}

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/lorrc/service-desk-console/internal/core/domain"
	"github.com/lorrc/service-desk-console/internal/core/ports"
)

// MockNotificationAPI is a mock implementation of ports.NotificationAPI
type MockNotificationAPI struct {
	mock.Mock
}

func NewMockNotificationAPI() *MockNotificationAPI {
	return &MockNotificationAPI{}
}

func (m *MockNotificationAPI) List(ctx context.Context) ([]domain.NotificationRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.NotificationRecord), args.Error(1)
}

func (m *MockNotificationAPI) MarkAllRead(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockTicketAPI is a mock implementation of ports.TicketAPI
type MockTicketAPI struct {
	mock.Mock
}

func NewMockTicketAPI() *MockTicketAPI {
	return &MockTicketAPI{}
}

func (m *MockTicketAPI) List(ctx context.Context, query domain.ListQuery) (*domain.Page[domain.Ticket], error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Page[domain.Ticket]), args.Error(1)
}

func (m *MockTicketAPI) Get(ctx context.Context, id string) (*domain.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketAPI) Create(ctx context.Context, params ports.CreateTicketParams) (*domain.Ticket, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketAPI) Update(ctx context.Context, id string, params ports.UpdateTicketParams) (*domain.Ticket, error) {
	args := m.Called(ctx, id, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

// MockCategoryAPI is a mock implementation of ports.CategoryAPI
type MockCategoryAPI struct {
	mock.Mock
}

func NewMockCategoryAPI() *MockCategoryAPI {
	return &MockCategoryAPI{}
}

func (m *MockCategoryAPI) List(ctx context.Context, query domain.ListQuery) (*domain.Page[domain.Category], error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Page[domain.Category]), args.Error(1)
}

func (m *MockCategoryAPI) ListActive(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Category), args.Error(1)
}

func (m *MockCategoryAPI) Create(ctx context.Context, params ports.CategoryParams) (*domain.Category, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *MockCategoryAPI) Update(ctx context.Context, id string, params ports.CategoryParams) (*domain.Category, error) {
	args := m.Called(ctx, id, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *MockCategoryAPI) ToggleStatus(ctx context.Context, id string, isActive bool) (*domain.Category, error) {
	args := m.Called(ctx, id, isActive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

// MockUserAPI is a mock implementation of ports.UserAPI
type MockUserAPI struct {
	mock.Mock
}

func NewMockUserAPI() *MockUserAPI {
	return &MockUserAPI{}
}

func (m *MockUserAPI) List(ctx context.Context, query domain.ListQuery) (*domain.Page[domain.User], error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Page[domain.User]), args.Error(1)
}

func (m *MockUserAPI) Update(ctx context.Context, id string, params ports.UpdateUserParams) (*domain.User, error) {
	args := m.Called(ctx, id, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserAPI) ToggleStatus(ctx context.Context, id string, isActive bool) (*domain.User, error) {
	args := m.Called(ctx, id, isActive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockAuthAPI is a mock implementation of ports.AuthAPI
type MockAuthAPI struct {
	mock.Mock
}

func NewMockAuthAPI() *MockAuthAPI {
	return &MockAuthAPI{}
}

func (m *MockAuthAPI) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockAuthAPI) CurrentUser(ctx context.Context) (*domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockSessionStore is a mock implementation of ports.SessionStore
type MockSessionStore struct {
	mock.Mock
}

func NewMockSessionStore() *MockSessionStore {
	return &MockSessionStore{}
}

func (m *MockSessionStore) Load() (*domain.Session, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockSessionStore) Save(session *domain.Session) error {
	args := m.Called(session)
	return args.Error(0)
}

func (m *MockSessionStore) Clear() error {
	args := m.Called()
	return args.Error(0)
}

// MockEventChannel is a mock implementation of ports.EventChannel
type MockEventChannel struct {
	mock.Mock
}

func NewMockEventChannel() *MockEventChannel {
	return &MockEventChannel{}
}

func (m *MockEventChannel) Connect(ctx context.Context, userID string) {
	m.Called(ctx, userID)
}

func (m *MockEventChannel) Reconnect() {
	m.Called()
}

func (m *MockEventChannel) On(event string, handler ports.EventHandler) func() {
	args := m.Called(event, handler)
	if fn, ok := args.Get(0).(func()); ok {
		return fn
	}
	return func() {}
}

func (m *MockEventChannel) Connected() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockEventChannel) Close() error {
	args := m.Called()
	return args.Error(0)
}

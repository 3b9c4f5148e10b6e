// Package stub is an in-memory stand-in for the desk API, serving the same
// REST and event-push surface the console consumes in production. It backs
// cmd/stubdesk for local development and the integration-style tests.
package stub

import (
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lorrc/service-desk-console/internal/core/domain"
)

// Account pairs a user with its login password.
type Account struct {
	User     domain.User
	Password string
}

// Store holds the stub's entities. All access is serialized by one mutex;
// fidelity matters here, not throughput.
type Store struct {
	mu            sync.Mutex
	accounts      map[string]*Account // keyed by email
	users         []domain.User
	categories    []domain.Category
	tickets       []domain.Ticket
	notifications map[string][]domain.NotificationRecord // keyed by user id, newest first
}

func NewStore() *Store {
	return &Store{
		accounts:      make(map[string]*Account),
		notifications: make(map[string][]domain.NotificationRecord),
	}
}

// AddAccount registers a login and its user row.
func (s *Store) AddAccount(user domain.User, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[user.Email] = &Account{User: user, Password: password}
	s.users = append(s.users, user)
}

// Authenticate returns the account for matching credentials.
func (s *Store) Authenticate(email, password string) (*Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[email]
	if !ok || account.Password != password {
		return nil, false
	}
	return account, true
}

// UserByID returns a copy of the user row.
func (s *Store) UserByID(id string) (domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			return u, true
		}
	}
	return domain.User{}, false
}

// UsersByRole returns the ids of all users holding one of the given roles.
func (s *Store) UsersByRole(roles ...domain.Role) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for _, u := range s.users {
		for _, r := range roles {
			if u.Role == r {
				ids = append(ids, u.ID)
				break
			}
		}
	}
	return ids
}

// AddCategory inserts a category and returns the stored copy.
func (s *Store) AddCategory(name, createdBy string) domain.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	category := domain.Category{
		ID:        uuid.NewString(),
		Name:      name,
		IsActive:  true,
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.categories = append(s.categories, category)
	return category
}

// UpdateCategory applies fn to the matching category.
func (s *Store) UpdateCategory(id string, fn func(*domain.Category)) (domain.Category, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.categories {
		if s.categories[i].ID == id {
			fn(&s.categories[i])
			s.categories[i].UpdatedAt = time.Now().UTC()
			return s.categories[i], true
		}
	}
	return domain.Category{}, false
}

// UpdateUser applies fn to the matching user.
func (s *Store) UpdateUser(id string, fn func(*domain.User)) (domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].ID == id {
			fn(&s.users[i])
			s.users[i].UpdatedAt = time.Now().UTC()
			updated := s.users[i]
			if account, ok := s.accounts[updated.Email]; ok {
				account.User = updated
			}
			return updated, true
		}
	}
	return domain.User{}, false
}

// AddTicket inserts a ticket and returns the stored copy.
func (s *Store) AddTicket(name, description, category string, priority domain.TicketPriority, customer string) domain.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	ticket := domain.Ticket{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Category:    category,
		Priority:    priority,
		Status:      domain.StatusOpen,
		Customer:    customer,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.tickets = append(s.tickets, ticket)
	return ticket
}

// TicketByID returns a copy of the ticket.
func (s *Store) TicketByID(id string) (domain.Ticket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tickets {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Ticket{}, false
}

// UpdateTicket applies fn to the matching ticket.
func (s *Store) UpdateTicket(id string, fn func(*domain.Ticket)) (domain.Ticket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tickets {
		if s.tickets[i].ID == id {
			fn(&s.tickets[i])
			s.tickets[i].UpdatedAt = time.Now().UTC()
			return s.tickets[i], true
		}
	}
	return domain.Ticket{}, false
}

// AddNotification stores a pushed record at the head of a user's feed and
// returns it.
func (s *Store) AddNotification(userID string, kind domain.NotificationType, payload any) domain.NotificationRecord {
	data, _ := json.Marshal(payload)
	record := domain.NotificationRecord{
		ID:        uuid.NewString(),
		Type:      kind,
		Payload:   data,
		Read:      false,
		CreatedAt: time.Now().UTC(),
	}
	s.mu.Lock()
	s.notifications[userID] = append([]domain.NotificationRecord{record}, s.notifications[userID]...)
	s.mu.Unlock()
	return record
}

// Notifications returns a copy of one user's feed, newest first.
func (s *Store) Notifications(userID string) []domain.NotificationRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.NotificationRecord, len(s.notifications[userID]))
	copy(out, s.notifications[userID])
	return out
}

// ClearNotifications empties one user's feed, mirroring the production
// mark-as-read behavior the console depends on.
func (s *Store) ClearNotifications(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.notifications, userID)
}

// ListTickets applies the ticket filters and paginates.
func (s *Store) ListTickets(query domain.ListQuery) domain.Page[domain.Ticket] {
	s.mu.Lock()
	defer s.mu.Unlock()

	var filtered []domain.Ticket
	for _, t := range s.tickets {
		if query.Search != "" && !containsFold(t.Name, query.Search) && !containsFold(t.Description, query.Search) {
			continue
		}
		if v := query.Filter("status"); v != "" && string(t.Status) != v {
			continue
		}
		if v := query.Filter("priority"); v != "" && string(t.Priority) != v {
			continue
		}
		if v := query.Filter("category"); v != "" && t.Category != v {
			continue
		}
		filtered = append(filtered, t)
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})
	return paginate(filtered, query)
}

// ListCategories applies the category filters and paginates.
func (s *Store) ListCategories(query domain.ListQuery) domain.Page[domain.Category] {
	s.mu.Lock()
	defer s.mu.Unlock()

	var filtered []domain.Category
	for _, c := range s.categories {
		if query.Search != "" && !containsFold(c.Name, query.Search) {
			continue
		}
		if v := query.Filter("isActive"); v != "" && boolString(c.IsActive) != v {
			continue
		}
		filtered = append(filtered, c)
	}
	return paginate(filtered, query)
}

// ActiveCategories returns every active category, unpaginated.
func (s *Store) ActiveCategories() []domain.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Category
	for _, c := range s.categories {
		if c.IsActive {
			out = append(out, c)
		}
	}
	return out
}

// ListUsers applies the user filters and paginates.
func (s *Store) ListUsers(query domain.ListQuery) domain.Page[domain.User] {
	s.mu.Lock()
	defer s.mu.Unlock()

	var filtered []domain.User
	for _, u := range s.users {
		if query.Search != "" && !containsFold(u.Name, query.Search) && !containsFold(u.Email, query.Search) {
			continue
		}
		if v := query.Filter("role"); v != "" && string(u.Role) != v {
			continue
		}
		if v := query.Filter("isActive"); v != "" && boolString(u.IsActive) != v {
			continue
		}
		filtered = append(filtered, u)
	}
	return paginate(filtered, query)
}

func paginate[T any](items []T, query domain.ListQuery) domain.Page[T] {
	limit := query.Limit
	if limit <= 0 {
		limit = 10
	}
	page := query.Page
	if page < 1 {
		page = 1
	}

	total := len(items)
	totalPages := (total + limit - 1) / limit
	if totalPages < 1 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * limit
	end := start + limit
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	out := make([]T, end-start)
	copy(out, items[start:end])
	return domain.Page[T]{
		Items:        out,
		TotalRecords: total,
		TotalPages:   totalPages,
		CurrentPage:  page,
	}
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func boolString(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

package stub

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/lorrc/service-desk-console/internal/auth"
	"github.com/lorrc/service-desk-console/internal/core/domain"
)

type contextKey string

const claimsKey contextKey = "claims"

// Server exposes the stub desk over HTTP: the REST surface the console's
// list controllers and reconciler consume, plus the websocket push endpoint.
type Server struct {
	store  *Store
	hub    *Hub
	tokens *auth.TokenManager
	logger *slog.Logger
	router chi.Router

	upgrader websocket.Upgrader
}

func NewServer(store *Store, tokens *auth.TokenManager, logger *slog.Logger) *Server {
	s := &Server{
		store:  store,
		hub:    NewHub(logger),
		tokens: tokens,
		logger: logger.With("component", "stub_server"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Local development stub; origin checks are the real server's job.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	s.router = s.routes()
	return s
}

// Handler returns the root handler for the stub.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Hub exposes the push hub so callers can push events directly.
func (s *Server) Hub() *Hub {
	return s.hub
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/auth/login", s.handleLogin)
	r.Get("/ws", s.handleWS)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)

		r.Get("/auth/getCurrentUser", s.handleCurrentUser)

		r.Route("/tickets", func(r chi.Router) {
			r.Get("/", s.handleListTickets)
			r.Post("/", s.handleCreateTicket)
			r.Get("/{id}", s.handleGetTicket)
			r.Put("/{id}", s.handleUpdateTicket)
		})

		r.Route("/category", func(r chi.Router) {
			r.Get("/", s.handleListCategories)
			r.Post("/", s.handleCreateCategory)
			r.Get("/active/list", s.handleActiveCategories)
			r.Put("/{id}", s.handleUpdateCategory)
			r.Patch("/{id}/status", s.handleToggleCategory)
		})

		r.Route("/user", func(r chi.Router) {
			r.Get("/", s.handleListUsers)
			r.Put("/{id}", s.handleUpdateUser)
			r.Patch("/{id}/status", s.handleToggleUser)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", s.handleListNotifications)
			r.Put("/mark-as-read", s.handleMarkAllRead)
		})
	})

	return r
}

// requireAuth validates the bearer token and stashes its claims.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		parts := strings.Split(header, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			s.writeError(w, http.StatusUnauthorized, "authorization header required")
			return
		}
		claims, err := s.tokens.ValidateToken(parts[1])
		if err != nil {
			s.writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) claims(r *http.Request) *auth.Claims {
	claims, _ := r.Context().Value(claimsKey).(*auth.Claims)
	return claims
}

// --- Response envelope ---

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func (s *Server) writeData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Success: true, Data: data}); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Success: false, Message: message}); err != nil {
		s.logger.Error("failed to encode error response", "error", err)
	}
}

func decode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// parseListQuery reads page/limit/search plus the named filters. Absent
// parameters stay absent; the stub distinguishes missing from empty the way
// the real API does.
func parseListQuery(r *http.Request, filterKeys ...string) domain.ListQuery {
	values := r.URL.Query()
	query := domain.NewListQuery(10)
	if page, err := strconv.Atoi(values.Get("page")); err == nil && page > 0 {
		query.Page = page
	}
	if limit, err := strconv.Atoi(values.Get("limit")); err == nil && limit > 0 {
		query.Limit = limit
	}
	query.Search = values.Get("search")
	for _, key := range filterKeys {
		if values.Has(key) {
			query.SetFilter(key, values.Get(key))
		}
	}
	return query
}

// --- Auth ---

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	account, ok := s.store.Authenticate(req.Email, req.Password)
	if !ok {
		s.writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if !account.User.IsActive {
		s.writeError(w, http.StatusForbidden, "account is deactivated")
		return
	}
	token, err := s.tokens.GenerateToken(account.User.ID, string(account.User.Role))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}
	s.writeData(w, http.StatusOK, domain.Session{Token: token, User: account.User})
}

func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, ok := s.store.UserByID(s.claims(r).UserID)
	if !ok {
		s.writeError(w, http.StatusNotFound, "user not found")
		return
	}
	s.writeData(w, http.StatusOK, user)
}

// --- Tickets ---

func (s *Server) handleListTickets(w http.ResponseWriter, r *http.Request) {
	query := parseListQuery(r, "status", "priority", "category")
	s.writeData(w, http.StatusOK, s.store.ListTickets(query))
}

type createTicketRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Priority    string `json:"priority"`
}

func (s *Server) handleCreateTicket(w http.ResponseWriter, r *http.Request) {
	var req createTicketRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		s.writeError(w, http.StatusUnprocessableEntity, "name is required")
		return
	}
	priority := domain.TicketPriority(req.Priority)
	if !priority.Valid() {
		s.writeError(w, http.StatusUnprocessableEntity, "invalid priority")
		return
	}

	ticket := s.store.AddTicket(req.Name, req.Description, req.Category, priority, s.claims(r).UserID)

	// Announce the new ticket to everyone who triages.
	for _, userID := range s.store.UsersByRole(domain.RoleAdmin, domain.RoleAgent) {
		s.notify(userID, domain.NotificationTicketCreated, ticket)
	}

	s.writeData(w, http.StatusCreated, ticket)
}

func (s *Server) handleGetTicket(w http.ResponseWriter, r *http.Request) {
	ticket, ok := s.store.TicketByID(chi.URLParam(r, "id"))
	if !ok {
		s.writeError(w, http.StatusNotFound, "ticket not found")
		return
	}
	s.writeData(w, http.StatusOK, ticket)
}

type updateTicketRequest struct {
	Name          *string `json:"name"`
	Description   *string `json:"description"`
	Category      *string `json:"category"`
	Priority      *string `json:"priority"`
	Status        *string `json:"status"`
	AssignedAgent *string `json:"assignedAgent"`
}

func (s *Server) handleUpdateTicket(w http.ResponseWriter, r *http.Request) {
	var req updateTicketRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Status != nil && !domain.TicketStatus(*req.Status).Valid() {
		s.writeError(w, http.StatusUnprocessableEntity, "invalid status")
		return
	}

	statusChanged := false
	ticket, ok := s.store.UpdateTicket(chi.URLParam(r, "id"), func(t *domain.Ticket) {
		if req.Name != nil {
			t.Name = *req.Name
		}
		if req.Description != nil {
			t.Description = *req.Description
		}
		if req.Category != nil {
			t.Category = *req.Category
		}
		if req.Priority != nil {
			t.Priority = domain.TicketPriority(*req.Priority)
		}
		if req.Status != nil && t.Status != domain.TicketStatus(*req.Status) {
			t.Status = domain.TicketStatus(*req.Status)
			statusChanged = true
		}
		if req.AssignedAgent != nil {
			t.AssignedAgent = *req.AssignedAgent
		}
	})
	if !ok {
		s.writeError(w, http.StatusNotFound, "ticket not found")
		return
	}

	kind := domain.NotificationTicketUpdated
	if statusChanged {
		kind = domain.NotificationTicketStatusUpdated
	}
	s.notify(ticket.Customer, kind, ticket)

	s.writeData(w, http.StatusOK, ticket)
}

// --- Categories ---

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	query := parseListQuery(r, "isActive")
	s.writeData(w, http.StatusOK, s.store.ListCategories(query))
}

func (s *Server) handleActiveCategories(w http.ResponseWriter, r *http.Request) {
	s.writeData(w, http.StatusOK, s.store.ActiveCategories())
}

type categoryRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decode(r, &req); err != nil || req.Name == "" {
		s.writeError(w, http.StatusUnprocessableEntity, "name is required")
		return
	}
	s.writeData(w, http.StatusCreated, s.store.AddCategory(req.Name, s.claims(r).UserID))
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decode(r, &req); err != nil || req.Name == "" {
		s.writeError(w, http.StatusUnprocessableEntity, "name is required")
		return
	}
	category, ok := s.store.UpdateCategory(chi.URLParam(r, "id"), func(c *domain.Category) {
		c.Name = req.Name
	})
	if !ok {
		s.writeError(w, http.StatusNotFound, "category not found")
		return
	}
	s.writeData(w, http.StatusOK, category)
}

type toggleStatusRequest struct {
	IsActive bool `json:"isActive"`
}

func (s *Server) handleToggleCategory(w http.ResponseWriter, r *http.Request) {
	var req toggleStatusRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	category, ok := s.store.UpdateCategory(chi.URLParam(r, "id"), func(c *domain.Category) {
		c.IsActive = req.IsActive
	})
	if !ok {
		s.writeError(w, http.StatusNotFound, "category not found")
		return
	}
	s.writeData(w, http.StatusOK, category)
}

// --- Users ---

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	query := parseListQuery(r, "role", "isActive")
	s.writeData(w, http.StatusOK, s.store.ListUsers(query))
}

type updateUserRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Role  *string `json:"role"`
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Role != nil && !domain.Role(*req.Role).Valid() {
		s.writeError(w, http.StatusUnprocessableEntity, "invalid role")
		return
	}
	user, ok := s.store.UpdateUser(chi.URLParam(r, "id"), func(u *domain.User) {
		if req.Name != nil {
			u.Name = *req.Name
		}
		if req.Email != nil {
			u.Email = *req.Email
		}
		if req.Role != nil {
			u.Role = domain.Role(*req.Role)
		}
	})
	if !ok {
		s.writeError(w, http.StatusNotFound, "user not found")
		return
	}
	s.writeData(w, http.StatusOK, user)
}

func (s *Server) handleToggleUser(w http.ResponseWriter, r *http.Request) {
	var req toggleStatusRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	// The server enforces the self-deactivation rule independently of the
	// console's local guard.
	if chi.URLParam(r, "id") == s.claims(r).UserID && !req.IsActive {
		s.writeError(w, http.StatusForbidden, "cannot deactivate your own account")
		return
	}
	user, ok := s.store.UpdateUser(chi.URLParam(r, "id"), func(u *domain.User) {
		u.IsActive = req.IsActive
	})
	if !ok {
		s.writeError(w, http.StatusNotFound, "user not found")
		return
	}
	s.writeData(w, http.StatusOK, user)
}

// --- Notifications ---

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	s.writeData(w, http.StatusOK, s.store.Notifications(s.claims(r).UserID))
}

func (s *Server) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	s.store.ClearNotifications(s.claims(r).UserID)
	s.writeData(w, http.StatusOK, nil)
}

// notify stores a record in the recipient's feed and pushes it to their
// room.
func (s *Server) notify(userID string, kind domain.NotificationType, payload any) {
	record := s.store.AddNotification(userID, kind, payload)
	s.hub.Push(userID, "new-notification", record)
}

// --- WebSocket ---

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	s.hub.Serve(conn)
}

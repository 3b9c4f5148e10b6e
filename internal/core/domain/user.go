package domain

import "time"

// Role is the closed set of user roles known to the desk.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleAgent    Role = "agent"
	RoleCustomer Role = "customer"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleAgent, RoleCustomer:
		return true
	}
	return false
}

// Role-based gating for console actions. These are UX affordances only;
// the server re-validates authorization on every mutation endpoint.

// CanManageUsers reports whether the role may list and edit user accounts.
func (r Role) CanManageUsers() bool {
	return r == RoleAdmin
}

// CanManageCategories reports whether the role may create or toggle categories.
func (r Role) CanManageCategories() bool {
	return r == RoleAdmin
}

// CanTriageTickets reports whether the role may assign agents and change
// ticket status.
func (r Role) CanTriageTickets() bool {
	return r == RoleAdmin || r == RoleAgent
}

// CanCreateTickets reports whether the role may file new tickets.
func (r Role) CanCreateTickets() bool {
	return r == RoleCustomer || r == RoleAdmin
}

// User mirrors the user entity served by the desk API.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

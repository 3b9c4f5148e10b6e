package domain

// Session is the authenticated identity for one console process: the bearer
// token issued at login and the user it belongs to. The role on User gates
// console actions; the server independently enforces authorization.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// UserID returns the session owner's id, or "" for a zero session.
func (s *Session) UserID() string {
	if s == nil {
		return ""
	}
	return s.User.ID
}

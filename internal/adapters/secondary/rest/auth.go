package rest

import (
	"context"
	"net/http"

	"github.com/lorrc/service-desk-console/internal/core/domain"
	"github.com/lorrc/service-desk-console/internal/core/ports"
)

// AuthClient implements ports.AuthAPI against the desk's auth endpoints.
type AuthClient struct {
	c *Client
}

var _ ports.AuthAPI = (*AuthClient)(nil)

func NewAuthClient(c *Client) *AuthClient {
	return &AuthClient{c: c}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a session and installs the issued token on
// the underlying client.
func (a *AuthClient) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	session := &domain.Session{}
	if err := a.c.do(ctx, http.MethodPost, "/auth/login", nil, loginRequest{Email: email, Password: password}, session); err != nil {
		return nil, err
	}
	a.c.SetToken(session.Token)
	return session, nil
}

func (a *AuthClient) CurrentUser(ctx context.Context) (*domain.User, error) {
	user := &domain.User{}
	if err := a.c.do(ctx, http.MethodGet, "/auth/getCurrentUser", nil, nil, user); err != nil {
		return nil, err
	}
	return user, nil
}

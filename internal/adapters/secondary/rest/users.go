package rest

import (
	"context"
	"net/http"

	"github.com/lorrc/service-desk-console/internal/core/domain"
	"github.com/lorrc/service-desk-console/internal/core/ports"
)

// UserClient implements ports.UserAPI against the desk's user endpoints.
type UserClient struct {
	c *Client
}

var _ ports.UserAPI = (*UserClient)(nil)

func NewUserClient(c *Client) *UserClient {
	return &UserClient{c: c}
}

func (u *UserClient) List(ctx context.Context, query domain.ListQuery) (*domain.Page[domain.User], error) {
	page := &domain.Page[domain.User]{}
	if err := u.c.do(ctx, http.MethodGet, "/user", query.Values(), nil, page); err != nil {
		return nil, err
	}
	return page, nil
}

type updateUserRequest struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
	Role  *string `json:"role,omitempty"`
}

func (u *UserClient) Update(ctx context.Context, id string, params ports.UpdateUserParams) (*domain.User, error) {
	body := updateUserRequest{
		Name:  params.Name,
		Email: params.Email,
	}
	if params.Role != nil {
		value := string(*params.Role)
		body.Role = &value
	}
	user := &domain.User{}
	if err := u.c.do(ctx, http.MethodPut, "/user/"+id, nil, body, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (u *UserClient) ToggleStatus(ctx context.Context, id string, isActive bool) (*domain.User, error) {
	user := &domain.User{}
	if err := u.c.do(ctx, http.MethodPatch, "/user/"+id+"/status", nil, toggleStatusRequest{IsActive: isActive}, user); err != nil {
		return nil, err
	}
	return user, nil
}

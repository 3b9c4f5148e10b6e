package rest

import (
	"context"
	"net/http"

	"github.com/lorrc/service-desk-console/internal/core/domain"
	"github.com/lorrc/service-desk-console/internal/core/ports"
)

// CategoryClient implements ports.CategoryAPI against the desk's category
// endpoints.
type CategoryClient struct {
	c *Client
}

var _ ports.CategoryAPI = (*CategoryClient)(nil)

func NewCategoryClient(c *Client) *CategoryClient {
	return &CategoryClient{c: c}
}

func (cc *CategoryClient) List(ctx context.Context, query domain.ListQuery) (*domain.Page[domain.Category], error) {
	page := &domain.Page[domain.Category]{}
	if err := cc.c.do(ctx, http.MethodGet, "/category", query.Values(), nil, page); err != nil {
		return nil, err
	}
	return page, nil
}

func (cc *CategoryClient) ListActive(ctx context.Context) ([]domain.Category, error) {
	var categories []domain.Category
	if err := cc.c.do(ctx, http.MethodGet, "/category/active/list", nil, nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

type categoryRequest struct {
	Name string `json:"name"`
}

func (cc *CategoryClient) Create(ctx context.Context, params ports.CategoryParams) (*domain.Category, error) {
	category := &domain.Category{}
	if err := cc.c.do(ctx, http.MethodPost, "/category", nil, categoryRequest{Name: params.Name}, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (cc *CategoryClient) Update(ctx context.Context, id string, params ports.CategoryParams) (*domain.Category, error) {
	category := &domain.Category{}
	if err := cc.c.do(ctx, http.MethodPut, "/category/"+id, nil, categoryRequest{Name: params.Name}, category); err != nil {
		return nil, err
	}
	return category, nil
}

type toggleStatusRequest struct {
	IsActive bool `json:"isActive"`
}

func (cc *CategoryClient) ToggleStatus(ctx context.Context, id string, isActive bool) (*domain.Category, error) {
	category := &domain.Category{}
	if err := cc.c.do(ctx, http.MethodPatch, "/category/"+id+"/status", nil, toggleStatusRequest{IsActive: isActive}, category); err != nil {
		return nil, err
	}
	return category, nil
}

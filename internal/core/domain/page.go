package domain

import (
	"net/url"
	"strconv"
)

// Page is one page of a paginated list response. It is replaced wholesale on
// every successful fetch and never merged or appended.
type Page[T any] struct {
	Items        []T `json:"items"`
	TotalRecords int `json:"totalRecords"`
	TotalPages   int `json:"totalPages"`
	CurrentPage  int `json:"currentPage"`
}

// ListQuery holds the filter and page state for one paginated list endpoint.
// Filters with empty values are treated as absent and never serialized; the
// server may treat an empty filter differently from a missing one.
type ListQuery struct {
	Page    int
	Limit   int
	Search  string
	Filters map[string]string
}

// NewListQuery returns a query positioned on the first page.
func NewListQuery(limit int) ListQuery {
	return ListQuery{Page: 1, Limit: limit, Filters: make(map[string]string)}
}

// Clone returns a deep copy so a controller can hand out its query without
// sharing the filter map.
func (q ListQuery) Clone() ListQuery {
	out := q
	out.Filters = make(map[string]string, len(q.Filters))
	for k, v := range q.Filters {
		out.Filters[k] = v
	}
	return out
}

// SetFilter stores a filter value. An empty value removes the filter.
func (q *ListQuery) SetFilter(key, value string) {
	if q.Filters == nil {
		q.Filters = make(map[string]string)
	}
	if value == "" {
		delete(q.Filters, key)
		return
	}
	q.Filters[key] = value
}

// Filter returns the current value for key, or "" when absent.
func (q ListQuery) Filter(key string) string {
	return q.Filters[key]
}

// Values encodes the query as URL parameters, omitting absent filters and
// empty search text.
func (q ListQuery) Values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("limit", strconv.Itoa(q.Limit))
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	for key, value := range q.Filters {
		if value != "" {
			v.Set(key, value)
		}
	}
	return v
}

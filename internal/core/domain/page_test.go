package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lorrc/service-desk-console/internal/core/domain"
)

func TestListQuery_SetFilter(t *testing.T) {
	query := domain.NewListQuery(10)

	query.SetFilter("status", "open")
	assert.Equal(t, "open", query.Filter("status"))

	// An empty value removes the filter instead of storing "".
	query.SetFilter("status", "")
	assert.Equal(t, "", query.Filter("status"))
	assert.NotContains(t, query.Filters, "status")
}

func TestListQuery_Values(t *testing.T) {
	query := domain.NewListQuery(25)
	query.Page = 3
	query.Search = "printer"
	query.SetFilter("priority", "high")
	query.SetFilter("category", "")

	values := query.Values()

	assert.Equal(t, "3", values.Get("page"))
	assert.Equal(t, "25", values.Get("limit"))
	assert.Equal(t, "printer", values.Get("search"))
	assert.Equal(t, "high", values.Get("priority"))
	assert.False(t, values.Has("category"))

	query.Search = ""
	assert.False(t, query.Values().Has("search"))
}

func TestListQuery_Clone(t *testing.T) {
	query := domain.NewListQuery(10)
	query.SetFilter("status", "open")

	clone := query.Clone()
	clone.SetFilter("status", "closed")
	clone.Page = 9

	assert.Equal(t, "open", query.Filter("status"))
	assert.Equal(t, 1, query.Page)
}

func TestNotificationType_Classify(t *testing.T) {
	assert.Equal(t, domain.NotificationTicketCreated, domain.NotificationTicketCreated.Classify())
	assert.Equal(t, domain.NotificationTicketStatusUpdated, domain.NotificationTicketStatusUpdated.Classify())
	assert.Equal(t, domain.NotificationOther, domain.NotificationType("billing.invoice").Classify())
	assert.Equal(t, domain.NotificationOther, domain.NotificationType("").Classify())
}

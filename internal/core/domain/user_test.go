package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lorrc/service-desk-console/internal/core/domain"
)

func TestRole_Valid(t *testing.T) {
	assert.True(t, domain.RoleAdmin.Valid())
	assert.True(t, domain.RoleAgent.Valid())
	assert.True(t, domain.RoleCustomer.Valid())
	assert.False(t, domain.Role("superuser").Valid())
	assert.False(t, domain.Role("").Valid())
}

func TestRole_Gating(t *testing.T) {
	tests := []struct {
		role        domain.Role
		users       bool
		categories  bool
		triage      bool
		fileTickets bool
	}{
		{domain.RoleAdmin, true, true, true, true},
		{domain.RoleAgent, false, false, true, false},
		{domain.RoleCustomer, false, false, false, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.users, tt.role.CanManageUsers())
			assert.Equal(t, tt.categories, tt.role.CanManageCategories())
			assert.Equal(t, tt.triage, tt.role.CanTriageTickets())
			assert.Equal(t, tt.fileTickets, tt.role.CanCreateTickets())
		})
	}
}

package access

import (
	"testing"

	domainauth "github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/domain/auth"
	"github.com/stretchr/testify/assert"
)

func TestRouteDashboard_Total(t *testing.T) {
	tests := []struct {
		name string
		role domainauth.Role
		want string
	}{
		{name: "admin", role: domainauth.RoleAdmin, want: "/admin"},
		{name: "caregiver", role: domainauth.RoleCaregiver, want: "/caregiver"},
		{name: "client", role: domainauth.RoleClient, want: "/client"},
		{name: "none", role: domainauth.RoleNone, want: "/auth/login"},
		{name: "out of range", role: domainauth.Role("guest"), want: "/auth/login"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := RouteDashboard(false, tt.role)
			assert.Equal(t, ViewRedirect, d.View)
			assert.Equal(t, tt.want, d.Location)
		})
	}
}

func TestRouteDashboard_PendingMatchesGuardLoading(t *testing.T) {
	guard := NewGuard("/dashboard").Decision()
	for _, r := range []domainauth.Role{domainauth.RoleNone, domainauth.RoleAdmin} {
		assert.Equal(t, guard, RouteDashboard(true, r))
	}
}

func TestAreaFor(t *testing.T) {
	assert.Equal(t, "/caregiver", AreaFor(domainauth.RoleCaregiver))
	assert.Empty(t, AreaFor(domainauth.RoleNone))
}

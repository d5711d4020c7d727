package access

import domainauth "github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/domain/auth"

// Landing areas per role.
const (
	AdminArea     = "/admin"
	CaregiverArea = "/caregiver"
	ClientArea    = "/client"
	DashboardPath = "/dashboard"
)

// RouteDashboard maps a role decision to a landing location.
// While resolution is pending it returns the same Loading decision as the guard.
// Anything outside the three roles, RoleNone included, goes to login.
func RouteDashboard(pending bool, role domainauth.Role) Decision {
	if pending {
		return Loading()
	}
	switch role {
	case domainauth.RoleAdmin:
		return Redirect(AdminArea)
	case domainauth.RoleCaregiver:
		return Redirect(CaregiverArea)
	case domainauth.RoleClient:
		return Redirect(ClientArea)
	default:
		return Redirect(LoginPath)
	}
}

// AreaFor returns the landing area for a role, or "" for no role.
func AreaFor(role domainauth.Role) string {
	d := RouteDashboard(false, role)
	if d.Location == LoginPath {
		return ""
	}
	return d.Location
}

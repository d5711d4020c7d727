package auth

// Package auth contains domain-level types for authentication, sessions and role resolution.
// It is pure and free of framework/adapter concerns.

import (
	"strings"
	"time"
)

// Role represents the access class assigned to an identity.
// Keep string form for easy persistence and cookies.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleCaregiver Role = "caregiver"
	RoleClient    Role = "client"

	// RoleNone is the pre-resolution state and the answer for "no session".
	RoleNone Role = ""
)

// Valid reports whether r is one of the three assignable roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleCaregiver, RoleClient:
		return true
	default:
		return false
	}
}

// Profile markers stored in profiles.user_role. Caregiver and client use the
// localized labels written by the registration forms.
const (
	MarkerAdmin     = "admin"
	MarkerCaregiver = "cuidador"
	MarkerClient    = "cliente"
)

// ParseUserRole maps a profile role marker to a Role.
// Unknown or empty markers return RoleNone, false.
func ParseUserRole(marker string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(marker)) {
	case MarkerAdmin:
		return RoleAdmin, true
	case MarkerCaregiver:
		return RoleCaregiver, true
	case MarkerClient:
		return RoleClient, true
	default:
		return RoleNone, false
	}
}

// NormalizeEmail lower-cases and trims an email for equality lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Identity represents the authenticated principal returned by an IdP.
// Adapters map provider-specific claims into this shape.
type Identity struct {
	UserID    string // stable user identifier (sub)
	FirstName string
	LastName  string
	Email     string
	Groups    []string
	ExpiresAt time.Time // absolute expiry from IdP token
}

// DisplayName joins the name parts, falling back to the email.
func (i Identity) DisplayName() string {
	name := strings.TrimSpace(i.FirstName + " " + i.LastName)
	if name == "" {
		return i.Email
	}
	return name
}

// Session is the server-side record we persist for an authenticated user.
// ID is an opaque session identifier (e.g., random URL-safe string).
// Role caches the last resolution so other handlers can read it without re-running the cascade.
type Session struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Email       string    `json:"email"`
	Role        Role      `json:"role"`
	AccessToken string    `json:"access_token,omitempty"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Identity returns the identity view of the session.
func (s Session) Identity() Identity {
	return Identity{
		UserID:    s.UserID,
		FirstName: s.FirstName,
		LastName:  s.LastName,
		Email:     s.Email,
		ExpiresAt: s.ExpiresAt,
	}
}

// ProfileSource names the store a RoleProfile was read from.
type ProfileSource string

const (
	SourceAllowList  ProfileSource = "allowlist"
	SourceProfiles   ProfileSource = "profiles"
	SourceCandidates ProfileSource = "candidates"
	SourceDefault    ProfileSource = "default"
)

// RoleProfile is the evidence record attached to a resolved role.
// Allow-list and default resolutions carry a synthesized record holding only the email.
type RoleProfile struct {
	Source   ProfileSource `json:"source"`
	ID       string        `json:"id,omitempty"`
	Email    string        `json:"email"`
	FullName string        `json:"full_name,omitempty"`
	UserRole string        `json:"user_role,omitempty"`
	Status   string        `json:"status,omitempty"`
}

// Resolution is the outcome of running the role cascade for one identity.
type Resolution struct {
	Role    Role        `json:"role"`
	Profile RoleProfile `json:"profile"`
}

// NoRole is the resolution for an absent identity.
func NoRole() Resolution { return Resolution{Role: RoleNone} }

// Package authroles holds the static role evidence compiled into the binary.
package authroles

import (
	"slices"

	domainauth "github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/domain/auth"
)

// AdminEmails is the administrator allow-list. It is not runtime-configurable;
// changing it requires a rebuild.
var AdminEmails = []string{
	"admin@careconnect.com",
}

// AllowList answers membership questions against a fixed set of emails.
type AllowList struct {
	emails []string
}

// DefaultAllowList returns the allow-list built from AdminEmails.
func DefaultAllowList() AllowList {
	return NewAllowList(AdminEmails)
}

// NewAllowList normalizes the given emails.
func NewAllowList(emails []string) AllowList {
	out := make([]string, 0, len(emails))
	for _, e := range emails {
		if n := domainauth.NormalizeEmail(e); n != "" {
			out = append(out, n)
		}
	}
	return AllowList{emails: out}
}

// Contains reports whether email is on the list. It performs no I/O.
func (a AllowList) Contains(email string) bool {
	n := domainauth.NormalizeEmail(email)
	if n == "" {
		return false
	}
	return slices.Contains(a.emails, n)
}

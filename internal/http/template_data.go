package httpx

import (
	"net/http"

	domainauth "github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/domain/auth"
)

// PageData is the value every full-page template renders from.
type PageData struct {
	Title     string
	Page      string
	Session   *domainauth.Session
	CSRFToken string
	// LoginURL is set on the signed-out page.
	LoginURL string
	// Favorites holds the viewer's saved caregiver ids on the client area.
	Favorites []string
}

func newPageData(r *http.Request, page, title string) PageData {
	return PageData{
		Title:     title,
		Page:      page,
		Session:   GetSessionFromContext(r.Context()),
		CSRFToken: GetCSRFToken(r),
	}
}

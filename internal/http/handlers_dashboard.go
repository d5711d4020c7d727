package httpx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/domain/access"
)

// FavoritesReader loads a viewer's saved caregivers.
type FavoritesReader interface {
	Load(ctx context.Context, userID string) []string
}

// DashboardHandlers serves the generic dashboard entry point and the role areas.
type DashboardHandlers struct {
	Svc       AuthServiceInterface
	Favorites FavoritesReader
	Renderer  *TemplateRenderer
	Logger    *slog.Logger
}

func (h *DashboardHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Dashboard renders the shared pending page; the page then loads Resolve.
// GET /dashboard.
func (h *DashboardHandlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	if h.Renderer == nil || !IsBrowserRequest(r) {
		WriteJSON(w, http.StatusOK, access.RouteDashboard(true, ""))
		return
	}
	h.render(w, r, newPageData(r, PageDashboard, "Dashboard"))
}

// Resolve re-runs role resolution for the session, caches the role on it and
// sends the viewer to their area. Anything but the three roles goes to login.
// GET /dashboard/resolve.
func (h *DashboardHandlers) Resolve(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())
	decision := access.Redirect(access.LoginURL(access.DashboardPath))
	if session != nil {
		updated, err := h.Svc.UpdateRole(r.Context(), session.ID)
		if err != nil {
			h.logger().WarnContext(r.Context(), "role refresh failed", "session_id", session.ID, "error", err)
		} else {
			decision = access.RouteDashboard(false, updated.Role)
		}
	}

	switch {
	case IsHTMX(r):
		SetHXRedirect(w, decision.Location)
		w.WriteHeader(http.StatusOK)
	case !IsBrowserRequest(r) || isAJAX(r):
		WriteJSON(w, http.StatusOK, decision)
	default:
		http.Redirect(w, r, decision.Location, http.StatusSeeOther)
	}
}

// Area returns a handler rendering one role area. The route guard in front of
// it only checks the session; the area itself does not re-check role.
func (h *DashboardHandlers) Area(page, title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := newPageData(r, page, title)
		if page == PageClient && h.Favorites != nil && data.Session != nil {
			data.Favorites = h.Favorites.Load(r.Context(), data.Session.UserID)
		}
		if h.Renderer == nil || !IsBrowserRequest(r) {
			WriteJSON(w, http.StatusOK, map[string]any{"page": page, "favorites": data.Favorites})
			return
		}
		h.render(w, r, data)
	}
}

func (h *DashboardHandlers) render(w http.ResponseWriter, r *http.Request, data PageData) {
	var err error
	if IsHTMX(r) {
		err = h.Renderer.RenderPartial(w, r, data)
	} else {
		err = h.Renderer.RenderFull(w, r, data)
	}
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

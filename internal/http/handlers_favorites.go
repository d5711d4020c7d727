package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	apperrors "github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/errors"
)

const maxCaregiverIDLen = 128

// FavoritesStore is the favorites behavior the HTTP layer uses.
type FavoritesStore interface {
	FavoritesReader
	Toggle(ctx context.Context, userID, caregiverID string) ([]string, bool)
}

// FavoritesHandlers exposes the viewer's saved caregivers.
type FavoritesHandlers struct {
	Svc    FavoritesStore
	Logger *slog.Logger
}

type favoritesResponse struct {
	Favorites []string `json:"favorites"`
	Favorited *bool    `json:"favorited,omitempty"`
}

// List handles GET /api/favorites.
func (h *FavoritesHandlers) List(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())
	if session == nil {
		WriteAppError(w, apperrors.Unauthorized("authentication required"))
		return
	}
	WriteJSON(w, http.StatusOK, favoritesResponse{Favorites: h.Svc.Load(r.Context(), session.UserID)})
}

// Toggle handles POST /api/favorites/{caregiverID}/toggle.
func (h *FavoritesHandlers) Toggle(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())
	if session == nil {
		WriteAppError(w, apperrors.Unauthorized("authentication required"))
		return
	}
	caregiverID := strings.TrimSpace(r.PathValue("caregiverID"))
	if caregiverID == "" {
		WriteAppError(w, apperrors.ValidationField("caregiver_id", "caregiver id is required"))
		return
	}
	if len(caregiverID) > maxCaregiverIDLen {
		WriteAppError(w, apperrors.ValidationField("caregiver_id", "caregiver id is too long"))
		return
	}

	ids, favorited := h.Svc.Toggle(r.Context(), session.UserID, caregiverID)
	if IsHTMX(r) {
		SetHXTrigger(w, "favorites-changed", map[string]any{"id": caregiverID, "favorited": favorited})
	}
	WriteJSON(w, http.StatusOK, favoritesResponse{Favorites: ids, Favorited: &favorited})
}

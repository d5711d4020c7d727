// Package httpx wires the portal's HTTP surface: auth flow, route guard,
// dashboard routing, role areas, favorites and the session event stream.
package httpx

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	careconnect "github.com/gsm-fullweb/careconnect-web-portal-79-sub000"
	"github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/domain/access"
	domainauth "github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/domain/auth"
	"github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/observability/statsd"
	"github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/ports"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth      AuthServiceInterface
	Favorites FavoritesStore
	// SessionSources builds the per-viewer source for the session event stream.
	SessionSources func(sessionID string) ports.SessionSource
	Resolver       ports.RoleResolver
	// TokenMirror receives viewers' access tokens while their stream is open. Optional.
	TokenMirror ports.KVStore
	Metrics     statsd.Sink
	// LoginLimiter throttles /auth/login and /auth/callback. Optional.
	LoginLimiter *RateLimiter
	Readiness    map[string]ReadinessCheck
	CookieDomain string
	// StreamHeartbeat overrides the SSE keep-alive interval.
	StreamHeartbeat time.Duration
	IsDev           bool         // Templates are read from disk in dev mode.
	Logger          *slog.Logger // Logger for template and HTTP errors (optional)
}

// NewRouter creates and configures a new HTTP router with browser middleware.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()

	renderer := setupRenderer(services.IsDev, logger)

	mux.HandleFunc("GET /healthz", healthHandler)
	mux.HandleFunc("HEAD /healthz", healthHandler)
	if len(services.Readiness) > 0 {
		mux.HandleFunc("GET /readyz", readinessHandler(services.Readiness))
	}
	mux.Handle("GET /{$}", http.RedirectHandler(access.DashboardPath, http.StatusFound))

	if services.Auth != nil {
		registerAuthRoutes(mux, &AuthHandlers{
			Svc:          services.Auth,
			CookieDomain: services.CookieDomain,
			Renderer:     renderer,
			Logger:       logger,
		}, services.LoginLimiter)

		registerDashboardRoutes(mux, services.Auth, &DashboardHandlers{
			Svc:       services.Auth,
			Favorites: services.Favorites,
			Renderer:  renderer,
			Logger:    logger,
		})

		if services.Favorites != nil {
			registerFavoritesRoutes(mux, services.Auth, &FavoritesHandlers{Svc: services.Favorites, Logger: logger})
		}
	}

	if services.SessionSources != nil && services.Resolver != nil {
		events := &SessionEventHandlers{
			Sources:   services.SessionSources,
			Resolver:  services.Resolver,
			Mirror:    services.TokenMirror,
			Metrics:   services.Metrics,
			Heartbeat: services.StreamHeartbeat,
			Logger:    logger,
		}
		mux.HandleFunc("GET /auth/events", events.Stream)
	}

	var handler http.Handler = &notFoundHandler{mux: mux}
	handler = CSRFProtection(CSRFConfig{CookieDomain: services.CookieDomain})(handler)
	handler = BrowserDetection()(handler)
	handler = Logging(logger)(handler)
	return Recover(logger)(handler)
}

// setupRenderer loads templates from disk in dev mode and from the embedded FS
// otherwise. Without templates the handlers answer in JSON.
func setupRenderer(isDev bool, logger *slog.Logger) *TemplateRenderer {
	var templateFS fs.FS
	if isDev {
		templateFS = os.DirFS(TemplatePathFromRoot)
	} else {
		sub, err := fs.Sub(careconnect.TemplateFS, TemplatePathFromRoot)
		if err != nil {
			logger.Warn("embedded templates unavailable, falling back to disk", "error", err)
			sub = os.DirFS(TemplatePathFromRoot)
		}
		templateFS = sub
	}

	tr, err := NewTemplateRenderer(TemplateRendererConfig{TemplateFS: templateFS, Logger: logger})
	if err != nil {
		logger.Error("failed to create template renderer", slog.Any("error", err))
		return nil
	}
	return tr
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers, limiter *RateLimiter) {
	limited := func(fn http.HandlerFunc) http.Handler {
		if limiter == nil {
			return fn
		}
		return limiter.Middleware(fn)
	}
	mux.Handle("GET /auth/login", limited(h.Login))
	mux.Handle("GET /auth/callback", limited(h.Callback))
	mux.HandleFunc("POST /auth/logout", h.Logout)
	mux.HandleFunc("GET /auth/signed-out", h.SignedOut)
	mux.HandleFunc("GET /auth/status", h.Status)
}

func registerDashboardRoutes(mux *http.ServeMux, auth AuthServiceInterface, h *DashboardHandlers) {
	guard := RequireAuthBrowser(auth)
	mux.Handle("GET "+access.DashboardPath, guard(http.HandlerFunc(h.Dashboard)))
	mux.Handle("GET "+access.DashboardPath+"/resolve", guard(http.HandlerFunc(h.Resolve)))

	// The admin area additionally checks the cached role; the other areas are
	// session-gated only.
	mux.Handle("GET "+access.AdminArea,
		RequireRoleBrowser(auth, domainauth.RoleAdmin)(h.Area(PageAdmin, "Administração")))
	mux.Handle("GET "+access.CaregiverArea, guard(h.Area(PageCaregiver, "Área do cuidador")))
	mux.Handle("GET "+access.ClientArea, guard(h.Area(PageClient, "Área do cliente")))
}

func registerFavoritesRoutes(mux *http.ServeMux, auth AuthServiceInterface, h *FavoritesHandlers) {
	requireAuth := RequireAuth(auth)
	mux.Handle("GET /api/favorites", requireAuth(http.HandlerFunc(h.List)))
	mux.Handle("POST /api/favorites/{caregiverID}/toggle", requireAuth(http.HandlerFunc(h.Toggle)))
}

var errNotFound = errors.New("resource not found")

// notFoundHandler answers unknown paths with JSON for API callers and the
// default page for browsers. Matched routes go straight to the mux so streams
// are never buffered.
type notFoundHandler struct {
	mux *http.ServeMux
}

func (h *notFoundHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if _, pattern := h.mux.Handler(r); pattern != "" {
		h.mux.ServeHTTP(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		// Let the mux answer 405 with its Allow header.
		h.mux.ServeHTTP(w, r)
		return
	}
	if IsBrowserRequest(r) {
		http.NotFound(w, r)
		return
	}
	WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "not_found", Err: errNotFound})
}

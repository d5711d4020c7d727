package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	domainauth "github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/domain/auth"
)

func guardedEcho(svc AuthServiceInterface) (http.Handler, *bool) {
	reached := false
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		reached = true
		w.WriteHeader(http.StatusOK)
	})
	return BrowserDetection()(RequireAuthBrowser(svc)(next)), &reached
}

func TestRequireAuthBrowser_APIRequest(t *testing.T) {
	h, reached := guardedEcho(&mockAuthService{})

	req := httptest.NewRequest(http.MethodGet, "/api/favorites", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	assert.False(t, *reached)
}

func TestRequireAuthBrowser_AbsentRedirectsWithOriginalPath(t *testing.T) {
	h, reached := guardedEcho(&mockAuthService{})

	req := httptest.NewRequest(http.MethodGet, "/caregiver?tab=jobs", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/auth/login?redirect_uri=%2Fcaregiver%3Ftab%3Djobs", rec.Header().Get("Location"))
	assert.False(t, *reached, "protected content must never render without a session")
}

func TestRequireAuthBrowser_HTMXRequest_Unauthenticated(t *testing.T) {
	h, reached := guardedEcho(&mockAuthService{})

	req := httptest.NewRequest(http.MethodGet, "/dashboard/resolve", nil)
	req.Header.Set("Hx-Request", "true")
	req.Header.Set("Hx-Current-Url", "https://portal.example.com/dashboard")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/auth/signed-out?redirect_uri=%2Fdashboard", rec.Header().Get("Hx-Redirect"))
	assert.False(t, *reached)
}

func TestRequireAuthBrowser_PresentRendersContentForAnyRole(t *testing.T) {
	for _, role := range []domainauth.Role{domainauth.RoleAdmin, domainauth.RoleCaregiver, domainauth.RoleClient, domainauth.RoleNone} {
		t.Run(string(role), func(t *testing.T) {
			h, reached := guardedEcho(sessionsByID(testSession("sess-1", role)))

			req := httptest.NewRequest(http.MethodGet, "/client", nil)
			req.Header.Set("Accept", "text/html")
			req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "sess-1"})
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.True(t, *reached)
		})
	}
}

func TestRequireAuthBrowser_ExternalRefererIgnored(t *testing.T) {
	h, _ := guardedEcho(&mockAuthService{})

	req := httptest.NewRequest(http.MethodGet, "/client", nil)
	req.Header.Set("Hx-Request", "true")
	req.Header.Set("Referer", "//evil.example.com/steal")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "/auth/signed-out?redirect_uri=%2Fclient", rec.Header().Get("Hx-Redirect"))
}

func TestRequireRoleBrowser(t *testing.T) {
	svc := sessionsByID(testSession("admin", domainauth.RoleAdmin), testSession("client", domainauth.RoleClient))
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	h := BrowserDetection()(RequireRoleBrowser(svc, domainauth.RoleAdmin)(next))

	tests := []struct {
		name    string
		cookie  string
		accept  string
		status  int
		locPart string
	}{
		{"admin allowed", "admin", "text/html", http.StatusOK, ""},
		{"client denied browser", "client", "text/html", http.StatusForbidden, ""},
		{"client denied api", "client", "application/json", http.StatusForbidden, ""},
		{"anonymous redirected", "", "text/html", http.StatusSeeOther, "/auth/login?redirect_uri=%2Fadmin"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			req.Header.Set("Accept", tt.accept)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: tt.cookie})
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.locPart != "" {
				assert.Equal(t, tt.locPart, rec.Header().Get("Location"))
			}
		})
	}
}

package httpx

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func csrfHandler() http.Handler {
	return CSRFProtection(CSRFConfig{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(GetCSRFToken(r)))
	}))
}

func TestCSRFProtection_GetIssuesCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	csrfHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var csrf *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == DefaultCSRFCookieName {
			csrf = c
		}
	}
	require.NotNil(t, csrf)
	assert.NotEmpty(t, csrf.Value)
	assert.Equal(t, csrf.Value, rec.Body.String())
	assert.Equal(t, http.SameSiteStrictMode, csrf.SameSite)
}

func TestCSRFProtection_PostWithoutTokenFails(t *testing.T) {
	rec := httptest.NewRecorder()
	csrfHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/favorites/cg-1/toggle", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCSRFProtection_PostWithHeaderToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/favorites/cg-1/toggle", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: "tok"})
	req.Header.Set(DefaultCSRFHeaderName, "tok")
	rec := httptest.NewRecorder()
	csrfHandler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCSRFProtection_PostWithMismatchedHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: "tok"})
	req.Header.Set(DefaultCSRFHeaderName, "other")
	rec := httptest.NewRecorder()
	csrfHandler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCSRFProtection_PostWithFormToken(t *testing.T) {
	form := url.Values{DefaultCSRFCookieName: {"tok"}}
	req := httptest.NewRequest(http.MethodPost, "/auth/logout", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: "tok"})
	rec := httptest.NewRecorder()
	csrfHandler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCSRFProtection_BearerRequestsExempt(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/favorites/cg-1/toggle", nil)
	req.Header.Set("Authorization", "Bearer tok-abc")
	rec := httptest.NewRecorder()
	csrfHandler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestIsSecureRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.False(t, isSecureRequest(r))
	r.Header.Set("X-Forwarded-Proto", "http, https")
	assert.True(t, isSecureRequest(r))
}

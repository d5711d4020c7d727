package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTMX_RequestDetection(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/x", nil)
	r.Header.Set("Hx-Request", "true")
	if !IsHTMX(r) || !isAJAX(r) {
		t.Fatal("expected htmx request to be detected")
	}

	r2 := httptest.NewRequest(http.MethodGet, "/x", nil)
	if IsHTMX(r2) || isAJAX(r2) {
		t.Fatal("expected defaults to false")
	}

	r3 := httptest.NewRequest(http.MethodGet, "/x", nil)
	r3.Header.Set("Accept", "application/json")
	if !isAJAX(r3) {
		t.Fatal("expected JSON accept to count as ajax")
	}
}

func TestHTMX_ResponseHeaders_Setters(t *testing.T) {
	rr := httptest.NewRecorder()
	SetHXRedirect(rr, "/auth/login")
	SetHXTrigger(rr, "favorite-toggled", map[string]any{"id": "cg-1"})
	res := rr.Result()
	t.Cleanup(func() { _ = res.Body.Close() })

	if got := res.Header.Get("Hx-Redirect"); got != "/auth/login" {
		t.Fatalf("HX-Redirect: %q", got)
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(res.Header.Get("Hx-Trigger")), &payload); err != nil {
		t.Fatalf("unmarshal trigger: %v", err)
	}
	if _, ok := payload["favorite-toggled"]; !ok {
		t.Fatalf("expected 'favorite-toggled' key in HX-Trigger: %v", payload)
	}

	rr2 := httptest.NewRecorder()
	SetHXTrigger(rr2, "refresh", nil)
	if got := rr2.Header().Get("Hx-Trigger"); got != `{"refresh":true}` {
		t.Fatalf("nil payload trigger: %q", got)
	}
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAuthMiddleware_WithValidCookie(t *testing.T) {
	m := NewAuthMiddleware("test-secret")

	nextCalled := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
		id, ok := GetSessionIDFromContext(r.Context())
		if !ok {
			t.Fatalf("session id not in context")
		}
		if id != "3f1c2a9e-0000-4000-8000-000000000001" {
			t.Fatalf("session id from context = %q", id)
		}
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/user/account", nil)

	m.SetSessionCookie(w, "3f1c2a9e-0000-4000-8000-000000000001")
	resCookies := w.Result().Cookies()
	if len(resCookies) == 0 {
		t.Fatalf("no cookies set by SetSessionCookie")
	}

	r.AddCookie(resCookies[0])

	m.Middleware(next).ServeHTTP(httptest.NewRecorder(), r)

	if !nextCalled {
		t.Fatalf("next handler was not called")
	}
}

func TestAuthMiddleware_WithoutCookie(t *testing.T) {
	m := NewAuthMiddleware("test-secret")

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("next handler should not be called")
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/user/account", nil)

	m.Middleware(next).ServeHTTP(w, r)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}
}

func TestAuthMiddleware_ForeignSignature(t *testing.T) {
	issuer := NewAuthMiddleware("other-secret")
	m := NewAuthMiddleware("test-secret")

	w := httptest.NewRecorder()
	issuer.SetSessionCookie(w, "session-1")

	r := httptest.NewRequest(http.MethodGet, "/api/user/account", nil)
	r.AddCookie(w.Result().Cookies()[0])

	rec := httptest.NewRecorder()
	m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("next handler should not be called")
	})).ServeHTTP(rec, r)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestClearSessionCookie(t *testing.T) {
	m := NewAuthMiddleware("test-secret")

	w := httptest.NewRecorder()
	m.ClearSessionCookie(w)

	header := w.Header().Get("Set-Cookie")
	if !strings.Contains(header, sessionCookieName+"=") || !strings.Contains(header, "Max-Age=0") {
		t.Fatalf("unexpected Set-Cookie header %q", header)
	}
}

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func TestIsAPIRequest(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/api/users", true},
		{"/api/", true},
		{"/api", false},
		{"/apiary", false},
		{"/dashboard", false},
	}
	e := echo.New()
	for _, tt := range tests {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, tt.path, nil), httptest.NewRecorder())
		if got := isAPIRequest(c); got != tt.want {
			t.Errorf("isAPIRequest(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestRequireAuth_LookalikePathRedirects(t *testing.T) {
	sessions := NewSessionManager(NewMemorySessionStore(), time.Hour)
	e := echo.New()
	e.GET("/apiary", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, RequireAuth(sessions))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/apiary", nil))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 redirect, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("expected redirect to /login, got %q", loc)
	}
}

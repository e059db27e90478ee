package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func TestRateLimiter_Window(t *testing.T) {
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := &rateLimiter{
		entries:     make(map[string]*rateLimitEntry),
		maxRequests: 2,
		window:      time.Minute,
		now:         func() time.Time { return clock },
	}

	for i := 0; i < 2; i++ {
		if ok, _ := l.allow("1.2.3.4"); !ok {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	ok, retry := l.allow("1.2.3.4")
	if ok {
		t.Fatal("third request should be limited")
	}
	if retry != time.Minute {
		t.Errorf("expected full window as retry-after, got %v", retry)
	}

	if ok, _ := l.allow("5.6.7.8"); !ok {
		t.Error("other IPs have their own budget")
	}

	clock = clock.Add(time.Minute)
	if ok, _ := l.allow("1.2.3.4"); !ok {
		t.Error("a new window should reset the count")
	}
}

func TestRateLimiter_Sweep(t *testing.T) {
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := &rateLimiter{
		entries:     make(map[string]*rateLimitEntry),
		maxRequests: 1,
		window:      time.Minute,
		now:         func() time.Time { return clock },
	}
	l.allow("1.2.3.4")

	clock = clock.Add(3 * time.Minute)
	l.sweep()
	if len(l.entries) != 0 {
		t.Errorf("expected stale entry to be swept, have %d", len(l.entries))
	}
}

func TestRateLimiter_SweepsOnRequest(t *testing.T) {
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := &rateLimiter{
		entries:     make(map[string]*rateLimitEntry),
		maxRequests: 1,
		window:      time.Minute,
		now:         func() time.Time { return clock },
	}
	for _, ip := range []string{"1.1.1.1", "2.2.2.2", "3.3.3.3"} {
		l.allow(ip)
	}

	clock = clock.Add(3 * time.Minute)
	l.allow("4.4.4.4")
	if len(l.entries) != 1 {
		t.Errorf("expected only the fresh entry to remain, have %d", len(l.entries))
	}
}

func TestRateLimit_StartsNoGoroutine(t *testing.T) {
	before := runtime.NumGoroutine()
	for i := 0; i < 100; i++ {
		RateLimit(5, time.Minute)
	}
	if after := runtime.NumGoroutine(); after >= before+100 {
		t.Errorf("each limiter started a goroutine: %d before, %d after", before, after)
	}
}

func TestRateLimit_Middleware(t *testing.T) {
	e := echo.New()
	mw := RateLimit(1, time.Minute)
	h := mw(func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/login", nil), httptest.NewRecorder())
	if err := h(c); err != nil {
		t.Fatalf("first request: %v", err)
	}

	rec := httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodPost, "/login", nil), rec)
	err := h(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %v", err)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}
}

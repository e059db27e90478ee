// ratelimit.go implements a per-IP fixed-window counter kept in memory.
// Applied to the login and signup form posts.

package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// rateLimitEntry tracks request counts for a single IP within a time window.
type rateLimitEntry struct {
	count       int
	windowStart time.Time
}

// rateLimiter holds the counters for one RateLimit middleware instance.
type rateLimiter struct {
	mu          sync.Mutex
	entries     map[string]*rateLimitEntry
	maxRequests int
	window      time.Duration
	now         func() time.Time
	lastSweep   time.Time
}

// sweepInterval is how often allow drops stale entries.
const sweepInterval = time.Minute

// allow records a request from ip and reports whether it is within the
// limit. When it is not, retryAfter is the time left in the window.
func (l *rateLimiter) allow(ip string) (ok bool, retryAfter time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= sweepInterval {
		l.sweepLocked(now)
	}

	entry, exists := l.entries[ip]
	if !exists || now.Sub(entry.windowStart) >= l.window {
		l.entries[ip] = &rateLimitEntry{count: 1, windowStart: now}
		return true, 0
	}

	entry.count++
	if entry.count > l.maxRequests {
		return false, l.window - now.Sub(entry.windowStart)
	}
	return true, 0
}

// sweep drops entries whose window ended long ago.
func (l *rateLimiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sweepLocked(l.now())
}

// sweepLocked is sweep with l.mu already held. allow calls it, so a
// limiter owns no goroutine.
func (l *rateLimiter) sweepLocked(now time.Time) {
	l.lastSweep = now
	for ip, entry := range l.entries {
		if now.Sub(entry.windowStart) > l.window*2 {
			delete(l.entries, ip)
		}
	}
}

// RateLimit returns middleware that limits requests per IP to maxRequests
// within the given window. Excess requests get 429 with a Retry-After
// header; the error handler renders the usual error page.
func RateLimit(maxRequests int, window time.Duration) echo.MiddlewareFunc {
	l := &rateLimiter{
		entries:     make(map[string]*rateLimitEntry),
		maxRequests: maxRequests,
		window:      window,
		now:         time.Now,
	}
	return l.middleware
}

func (l *rateLimiter) middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ok, retryAfter := l.allow(c.RealIP())
		if !ok {
			seconds := int(math.Ceil(retryAfter.Seconds()))
			c.Response().Header().Set("Retry-After", strconv.Itoa(seconds))
			return echo.NewHTTPError(http.StatusTooManyRequests, "Too many attempts. Please wait a minute and try again.")
		}
		return next(c)
	}
}

package middleware

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/staynest/staynest-backend/pkg/clientip"
)

const (
	headerXContentTypeOptions     = "X-Content-Type-Options"
	headerXFrameOptions           = "X-Frame-Options"
	headerXXSSProtection          = "X-XSS-Protection"
	headerContentSecurityPolicy   = "Content-Security-Policy"
	headerStrictTransportSecurity = "Strict-Transport-Security"
)

// SecurityHeaders sets security-related response headers.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(headerXContentTypeOptions, "nosniff")
		w.Header().Set(headerXFrameOptions, "DENY")
		w.Header().Set(headerXXSSProtection, "1; mode=block")
		w.Header().Set(headerContentSecurityPolicy, "default-src 'self'")
		w.Header().Set(headerStrictTransportSecurity, "max-age=31536000; includeSubDomains")
		next.ServeHTTP(w, r)
	})
}

type limiterEntry struct {
	limiter *rate.Limiter
	lastUse time.Time
}

// limiterTable is a per-IP limiter map with background eviction of idle
// entries.
type limiterTable struct {
	mu         sync.Mutex
	entries    map[string]*limiterEntry
	newLimiter func() *rate.Limiter
	cleanupRun bool
}

const (
	limiterCleanupInterval = 5 * time.Minute
	limiterTTL             = 30 * time.Minute
)

func newLimiterTable(newLimiter func() *rate.Limiter) *limiterTable {
	return &limiterTable{
		entries:    make(map[string]*limiterEntry),
		newLimiter: newLimiter,
	}
}

func (t *limiterTable) get(ip string) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.startCleanupOnce()
	e, ok := t.entries[ip]
	if !ok {
		e = &limiterEntry{limiter: t.newLimiter(), lastUse: time.Now()}
		t.entries[ip] = e
	}
	e.lastUse = time.Now()
	return e.limiter
}

func (t *limiterTable) startCleanupOnce() {
	if t.cleanupRun {
		return
	}
	t.cleanupRun = true
	go func() {
		ticker := time.NewTicker(limiterCleanupInterval)
		defer ticker.Stop()
		for range ticker.C {
			t.mu.Lock()
			now := time.Now()
			for ip, e := range t.entries {
				if now.Sub(e.lastUse) > limiterTTL {
					delete(t.entries, ip)
				}
			}
			t.mu.Unlock()
		}
	}()
}

// Global rate limiting: 1 req/s per IP, burst 10.
var globalLimiters = newLimiterTable(func() *rate.Limiter {
	return rate.NewLimiter(rate.Limit(1), 10)
})

// GlobalRateLimit limits each IP to 1 req/s, burst 10. Returns 429 when
// exceeded.
func GlobalRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientip.RealClientIP(r)
		if !globalLimiters.get(ip).Allow() {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"errormessage":"Too many requests. Please slow down."}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Credential endpoints get a tighter limit: 1 req/5s per IP, burst 2.
var loginLimiters = newLimiterTable(func() *rate.Limiter {
	return rate.NewLimiter(rate.Every(5*time.Second), 2)
})

var loginPaths = map[string]bool{
	"/login":                      true,
	"/forgot-password/send-otp":   true,
	"/forgot-password/verify-otp": true,
}

// LoginRateLimit throttles the credential endpoints per IP.
func LoginRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !loginPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}
		ip := clientip.RealClientIP(r)
		if !loginLimiters.get(ip).Allow() {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"errormessage":"Too many login attempts. Please wait and try again."}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ProductionSecurity is the middleware chain enabled when ENV=production.
func ProductionSecurity() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		SecurityHeaders,
		GlobalRateLimit,
		LoginRateLimit,
	}
}

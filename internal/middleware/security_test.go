package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestSecurityHeaders(t *testing.T) {
	h := SecurityHeaders(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
	assert.NotEmpty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestLoginRateLimitThrottlesCredentialPaths(t *testing.T) {
	h := LoginRateLimit(okHandler())

	req := func(path, ip string) int {
		r := httptest.NewRequest(http.MethodPost, path, nil)
		r.RemoteAddr = ip + ":40000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		return rec.Code
	}

	// Burst of 2, then throttled.
	assert.Equal(t, http.StatusOK, req("/login", "10.1.0.1"))
	assert.Equal(t, http.StatusOK, req("/login", "10.1.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, req("/login", "10.1.0.1"))

	// Other paths are not throttled, other IPs have their own budget.
	for i := 0; i < 5; i++ {
		require.Equal(t, http.StatusOK, req("/signup", "10.1.0.1"))
	}
	assert.Equal(t, http.StatusOK, req("/login", "10.1.0.2"))
}

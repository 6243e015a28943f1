package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_allowsUpToMax(t *testing.T) {
	rl := NewRateLimiter(time.Minute, 3)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("ip:10.0.0.1"), "request %d", i+1)
	}
	assert.False(t, rl.Allow("ip:10.0.0.1"))
}

func TestRateLimiter_keysAreIndependent(t *testing.T) {
	rl := NewRateLimiter(time.Minute, 1)

	assert.True(t, rl.Allow("ip:10.0.0.1"))
	assert.False(t, rl.Allow("ip:10.0.0.1"))
	assert.True(t, rl.Allow("ip:10.0.0.2"))
}

func TestRateLimiter_windowSlides(t *testing.T) {
	rl := NewRateLimiter(50*time.Millisecond, 1)

	assert.True(t, rl.Allow("ip:10.0.0.1"))
	assert.False(t, rl.Allow("ip:10.0.0.1"))

	time.Sleep(60 * time.Millisecond)
	assert.True(t, rl.Allow("ip:10.0.0.1"))
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimiter(time.Minute, 1)
	handler := RateLimitMiddleware(rl, GetIPKey)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "Too many requests")
}

func TestGetIPKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.9:4431"
	assert.Equal(t, "ip:203.0.113.9:4431", GetIPKey(req))

	req.Header.Set("X-Forwarded-For", "198.51.100.7, 10.0.0.1")
	assert.Equal(t, "ip:198.51.100.7", GetIPKey(req))
}

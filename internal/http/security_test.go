package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExtractClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"direct", "203.0.113.7:5555", nil, "203.0.113.7"},
		{"untrusted peer ignores XFF", "203.0.113.7:5555", map[string]string{"X-Forwarded-For": "1.2.3.4"}, "203.0.113.7"},
		{"trusted proxy uses XFF", "127.0.0.1:5555", map[string]string{"X-Forwarded-For": "1.2.3.4, 10.0.0.1"}, "1.2.3.4"},
		{"trusted proxy uses X-Real-IP", "10.1.2.3:80", map[string]string{"X-Real-IP": "5.6.7.8"}, "5.6.7.8"},
		{"invalid forwarded value", "127.0.0.1:5555", map[string]string{"X-Forwarded-For": "garbage"}, "127.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, extractClientIP(r))
		})
	}
}

func TestDetectSuspiciousRequest(t *testing.T) {
	var m securityMetrics

	assert.False(t, detectSuspiciousRequest(httptest.NewRequest(http.MethodGet, "/api/expenses?search=lunch", nil), &m))
	assert.True(t, detectSuspiciousRequest(httptest.NewRequest(http.MethodGet, "/.env", nil), &m))

	r := httptest.NewRequest(http.MethodGet, "/api/expenses", nil)
	r.Header.Set("User-Agent", "sqlmap/1.7")
	assert.True(t, detectSuspiciousRequest(r, &m))

	assert.Equal(t, int64(2), m.snapshot()["suspicious_requests"])
}

func TestRateLimiterWindow(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	rl := newRateLimiter(3)
	rl.now = func() time.Time { return now }
	var m securityMetrics

	for i := 0; i < 3; i++ {
		assert.True(t, rl.allow("a", &m))
	}
	assert.False(t, rl.allow("a", &m))
	assert.True(t, rl.allow("b", &m), "limits are per client")
	assert.Equal(t, 60, rl.retryAfter("a"))

	now = now.Add(time.Minute)
	assert.True(t, rl.allow("a", &m), "new window")
	assert.Equal(t, int64(1), m.snapshot()["rate_limit_hits"])

	now = now.Add(time.Hour)
	rl.cleanupStaleEntries()
	assert.Empty(t, rl.clients)
}

func TestSanitizeInputAndRequestID(t *testing.T) {
	assert.Equal(t, "a\tb", sanitizeInput("  a\x00\tb\x1b "))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Contains(t, requestID(r), "req_")
	r.Header.Set("X-Request-ID", "abc-123")
	assert.Equal(t, "abc-123", requestID(r))
	r.Header.Set("X-Request-ID", "has space")
	assert.NotEqual(t, "has space", requestID(r))
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestThrottleWithoutRedisPasses(t *testing.T) {
	h := NewThrottle(nil, 1, time.Minute, zap.NewNop()).Handler(ok)
	for range 3 {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}
}

func TestThrottleFailsOpen(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	rec := httptest.NewRecorder()
	NewThrottle(client, 1, time.Minute, zap.NewNop()).Handler(ok).
		ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}

func TestThrottleKey(t *testing.T) {
	th := NewThrottle(nil, 1, time.Minute, zap.NewNop())
	at := time.Date(2026, 3, 1, 12, 0, 30, 0, time.UTC)

	r := httptest.NewRequest(http.MethodPost, "/", nil)
	r.RemoteAddr = "203.0.113.1:999"
	anon := th.key(r, at)
	assert.Contains(t, anon, "throttle:ip:203.0.113.1:")

	assert.Equal(t, anon, th.key(r, at.Add(29*time.Second)), "same window")
	assert.NotEqual(t, anon, th.key(r, at.Add(31*time.Second)), "next window")

	r = r.WithContext(WithActor(r.Context(), testActor))
	assert.Contains(t, th.key(r, at), "throttle:user:"+testActor.ID.Hex())
}

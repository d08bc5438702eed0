package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/AnshRaj112/graceway-backend/pkg/clientip"
	"github.com/AnshRaj112/graceway-backend/pkg/response"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ThrottleKeyPrefix is the Redis key prefix for engagement counters.
const ThrottleKeyPrefix = "throttle:"

// Throttle caps likes, comments and prayers per user in a fixed window.
// Counters live in Redis so the cap holds across instances. Without a
// client, or when Redis fails, requests pass.
type Throttle struct {
	client *redis.Client
	limit  int
	window time.Duration
	log    *zap.Logger
	now    func() time.Time
}

func NewThrottle(client *redis.Client, limit int, window time.Duration, log *zap.Logger) *Throttle {
	return &Throttle{client: client, limit: limit, window: window, log: log.Named("throttle"), now: time.Now}
}

// key buckets the caller into the current window. Authenticated callers are
// keyed by user id, others by IP.
func (t *Throttle) key(r *http.Request, at time.Time) string {
	who := "ip:" + clientip.RealClientIP(r)
	if actor, ok := ActorFrom(r.Context()); ok {
		who = "user:" + actor.ID.Hex()
	}
	bucket := at.UnixNano() / int64(t.window)
	return ThrottleKeyPrefix + who + ":" + strconv.FormatInt(bucket, 10)
}

func (t *Throttle) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if t.client == nil || t.limit <= 0 || t.window <= 0 {
			next.ServeHTTP(w, r)
			return
		}
		at := t.now()
		key := t.key(r, at)

		var incr *redis.IntCmd
		_, err := t.client.TxPipelined(r.Context(), func(p redis.Pipeliner) error {
			incr = p.Incr(r.Context(), key)
			p.Expire(r.Context(), key, t.window)
			return nil
		})
		if err != nil {
			t.log.Warn("throttle unavailable, allowing request", zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}

		count := int(incr.Val())
		reset := time.Unix(0, (at.UnixNano()/int64(t.window)+1)*int64(t.window))
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(t.limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(max(t.limit-count, 0)))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))

		if count > t.limit {
			retry := int(reset.Sub(at).Seconds()) + 1
			w.Header().Set("Retry-After", strconv.Itoa(retry))
			response.Fail(w, http.StatusTooManyRequests, "Too many interactions. Please try again shortly.", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/shashiranjanraj/cubeshop/pkg/logger"
	"github.com/shashiranjanraj/cubeshop/pkg/metrics"
	"github.com/shashiranjanraj/cubeshop/pkg/response"
)

const (
	rateWindow    = time.Minute
	visitorIdle   = 3 * time.Minute
	redisKeyspace = "cubeshop:ratelimit:"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter caps requests per client IP per minute. With a Redis client
// the count is a fixed window shared by every replica; without one, or
// while Redis is failing, each process keeps its own token buckets.
type RateLimiter struct {
	rdb        *redis.Client
	perMinute  int
	trustProxy bool
	now        func() time.Time

	mu        sync.Mutex
	visitors  map[string]*visitor
	lastSweep time.Time
}

// NewRateLimiter builds a limiter allowing perMinute requests per IP. rdb
// may be nil. With trustProxy the IP is read from X-Forwarded-For.
func NewRateLimiter(rdb *redis.Client, perMinute int, trustProxy bool) *RateLimiter {
	if perMinute < 1 {
		perMinute = 1
	}
	return &RateLimiter{
		rdb:        rdb,
		perMinute:  perMinute,
		trustProxy: trustProxy,
		now:        time.Now,
		visitors:   make(map[string]*visitor),
	}
}

// Middleware answers 429 once a client exceeds its budget.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, backend := l.Allow(r.Context(), clientIP(r, l.trustProxy))
		if !ok {
			metrics.RateLimited.WithLabelValues(backend).Inc()
			w.Header().Set("Retry-After", strconv.Itoa(int(rateWindow.Seconds())))
			response.Error(w, http.StatusTooManyRequests, "Too Many Requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Allow reports whether key may make another request and which backend
// decided.
func (l *RateLimiter) Allow(ctx context.Context, key string) (bool, string) {
	if l.rdb != nil {
		ok, err := l.allowRedis(ctx, key)
		if err == nil {
			return ok, "redis"
		}
		logger.WithCtx(ctx).Warn("rate limit: redis unavailable, using memory", "error", err)
	}
	return l.allowMemory(key), "memory"
}

func (l *RateLimiter) allowRedis(ctx context.Context, key string) (bool, error) {
	window := l.now().Unix() / int64(rateWindow.Seconds())
	k := fmt.Sprintf("%s%s:%d", redisKeyspace, key, window)

	pipe := l.rdb.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.Expire(ctx, k, rateWindow+10*time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return incr.Val() <= int64(l.perMinute), nil
}

func (l *RateLimiter) allowMemory(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > rateWindow {
		for k, v := range l.visitors {
			if now.Sub(v.lastSeen) > visitorIdle {
				delete(l.visitors, k)
			}
		}
		l.lastSweep = now
	}

	v, ok := l.visitors[key]
	if !ok {
		every := rate.Every(rateWindow / time.Duration(l.perMinute))
		v = &visitor{limiter: rate.NewLimiter(every, l.perMinute)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// clientIP returns the peer address without its port. When trustProxy is
// set the first X-Forwarded-For hop wins; any client can forge that header,
// so it is only honoured behind a proxy that rewrites it.
func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			first, _, _ := strings.Cut(fwd, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

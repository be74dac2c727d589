package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"scratchbook-server/pkg/response"
)

const rateLimitMsg = "Too many requests. Please try again later."

type window struct {
	count int
	start time.Time
}

// RateLimiter counts requests per key over a fixed window. Counters live in
// process memory only; they reset on restart and are not shared between
// instances.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*window
	max      int
	interval time.Duration
}

func NewRateLimiter(max int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*window),
		max:      max,
		interval: interval,
	}
}

// Allow records an attempt for key and reports whether it is within the
// limit, along with the remaining budget and the time until the window
// resets.
func (rl *RateLimiter) Allow(key string) (bool, int, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()

	v, ok := rl.visitors[key]
	if !ok || now.Sub(v.start) >= rl.interval {
		rl.evictExpired(now)
		v = &window{start: now}
		rl.visitors[key] = v
	}

	v.count++
	remaining := rl.max - v.count
	if remaining < 0 {
		remaining = 0
	}
	reset := rl.interval - now.Sub(v.start)

	return v.count <= rl.max, remaining, reset
}

// evictExpired drops stale windows so the map does not grow unboundedly.
// Called with the lock held, and only when a window rolls over.
func (rl *RateLimiter) evictExpired(now time.Time) {
	for key, v := range rl.visitors {
		if now.Sub(v.start) >= rl.interval {
			delete(rl.visitors, key)
		}
	}
}

// RateLimitMiddleware throttles requests per client IP. A nil limiter
// disables throttling, which is how non-production configurations run.
func RateLimitMiddleware(rl *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if rl == nil || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			ok, remaining, reset := rl.Allow(ClientIP(r))

			resetSec := int(reset.Seconds())
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.max))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.Itoa(resetSec))

			if !ok {
				if resetSec > 0 {
					w.Header().Set("Retry-After", strconv.Itoa(resetSec))
				}
				response.TooManyRequests(w, rateLimitMsg)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP prefers the leftmost X-Forwarded-For entry, falling back to the
// connection address.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

package server

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	limiterSweepInterval = 3 * time.Minute
	limiterIdleTimeout   = 5 * time.Minute
)

// ipLimiter holds a rate limiter and the last time it was seen.
type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter provides per-IP rate limiting for the credential form actions.
// It only ever holds client addresses, never credentials.
type RateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*ipLimiter
	rate      rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

func NewRateLimiter(r rate.Limit, burst int) *RateLimiter {
	return &RateLimiter{
		limiters:  make(map[string]*ipLimiter),
		rate:      r,
		burst:     burst,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// Allow reports whether ip may make another request now.
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) > limiterSweepInterval {
		for key, l := range rl.limiters {
			if now.Sub(l.lastSeen) > limiterIdleTimeout {
				delete(rl.limiters, key)
			}
		}
		rl.lastSweep = now
	}

	l, exists := rl.limiters[ip]
	if !exists {
		l = &ipLimiter{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[ip] = l
	}
	l.lastSeen = now
	return l.limiter.AllowN(now, 1)
}

// RetryAfter is the Retry-After value, in whole seconds, for a rejected request.
func (rl *RateLimiter) RetryAfter() int {
	if rl.rate <= 0 {
		return 1
	}
	return max(int(1.0/float64(rl.rate)), 1)
}

func (s *Server) RateLimitMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.config.GetEnableRateLimiting() {
			next(w, r)
			return
		}
		if !s.limiter.Allow(clientIP(r, s.config.GetTrustedProxyHops())) {
			w.Header().Set("Retry-After", strconv.Itoa(s.limiter.RetryAfter()))
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"message": "rate_limited"})
			return
		}
		next(w, r)
	}
}

// clientIP is the client address as seen by the outermost trusted proxy.
// Each of trustedHops proxies appends one X-Forwarded-For entry, so entries
// left of that position are client-supplied and ignored.
func clientIP(r *http.Request, trustedHops int) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if trustedHops <= 0 {
		return host
	}

	var hops []string
	for _, header := range r.Header.Values("X-Forwarded-For") {
		for _, hop := range strings.Split(header, ",") {
			if hop = strings.TrimSpace(hop); hop != "" {
				hops = append(hops, hop)
			}
		}
	}
	if len(hops) == 0 {
		return host
	}
	return hops[max(len(hops)-trustedHops, 0)]
}

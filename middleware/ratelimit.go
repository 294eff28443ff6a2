package middleware

import (
	"context"
	"sync"
	"time"

	apperrors "attire-service/common/errors"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	ips   map[string]*limiterEntry
	mu    sync.Mutex
	rate  rate.Limit
	burst int
	ttl   time.Duration
}

func NewRateLimiter(r rate.Limit, burst int, ttl time.Duration) *RateLimiter {
	return &RateLimiter{
		ips:   make(map[string]*limiterEntry),
		rate:  r,
		burst: burst,
		ttl:   ttl,
	}
}

// Allow reports whether ip may make another request now.
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, ok := rl.ips[ip]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.ips[ip] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter.Allow()
}

// Cleanup drops idle entries every ttl until ctx is done.
func (rl *RateLimiter) Cleanup(ctx context.Context) {
	ticker := time.NewTicker(rl.ttl)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			rl.mu.Lock()
			for ip, e := range rl.ips {
				if now.Sub(e.lastSeen) > rl.ttl {
					delete(rl.ips, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			apperrors.Respond(c, apperrors.ErrTooManyRequests)
			return
		}
		c.Next()
	}
}

// LoginRateLimit allows five attempts per minute per IP.
func LoginRateLimit() *RateLimiter {
	return NewRateLimiter(rate.Every(time.Minute/5), 5, 10*time.Minute)
}

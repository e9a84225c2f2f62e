package middleware

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/printer-admin/internal/models"
	"golang.org/x/time/rate"
)

const sweepInterval = time.Minute

// RateLimiter keeps one token bucket per client IP. Buckets that have refilled
// completely are dropped on the next sweep; a new bucket behaves the same way.
type RateLimiter struct {
	limiters  sync.Map
	rps       rate.Limit
	burst     int
	lastSweep atomic.Int64
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if burst <= 0 {
		burst = 5
	}
	l := &RateLimiter{rps: rate.Limit(rps), burst: burst}
	l.lastSweep.Store(time.Now().UnixNano())
	return l
}

func (l *RateLimiter) getLimiter(key string) *rate.Limiter {
	if v, ok := l.limiters.Load(key); ok {
		if lim, ok := v.(*rate.Limiter); ok {
			return lim
		}
	}

	lim := rate.NewLimiter(l.rps, l.burst)
	actual, loaded := l.limiters.LoadOrStore(key, lim)
	if loaded {
		if actualLim, ok := actual.(*rate.Limiter); ok {
			return actualLim
		}
	}
	return lim
}

// Sweep removes the buckets that are full at now and returns how many remain.
func (l *RateLimiter) Sweep(now time.Time) int {
	remaining := 0
	l.limiters.Range(func(key, value any) bool {
		lim, ok := value.(*rate.Limiter)
		if !ok || lim.TokensAt(now) >= float64(l.burst) {
			l.limiters.Delete(key)
			return true
		}
		remaining++
		return true
	})
	return remaining
}

func (l *RateLimiter) maybeSweep(now time.Time) {
	last := l.lastSweep.Load()
	if now.UnixNano()-last < int64(sweepInterval) {
		return
	}
	if l.lastSweep.CompareAndSwap(last, now.UnixNano()) {
		l.Sweep(now)
	}
}

func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		l.maybeSweep(time.Now())
		if !l.getLimiter(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, models.ErrorResponse("Too many requests, try again later"))
			return
		}
		c.Next()
	}
}

package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	limiterEntryTTL      = 15 * time.Minute
	limiterCleanupPeriod = 5 * time.Minute
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedLimiter holds one token bucket per key. Idle buckets are dropped.
type KeyedLimiter struct {
	mu          sync.Mutex
	limit       rate.Limit
	burst       int
	entries     map[string]*limiterEntry
	lastCleanup time.Time
	now         func() time.Time
}

func NewKeyedLimiter(perMinute, burst int) *KeyedLimiter {
	if perMinute <= 0 || burst <= 0 {
		return nil
	}
	return &KeyedLimiter{
		limit:       rate.Every(time.Minute / time.Duration(perMinute)),
		burst:       burst,
		entries:     make(map[string]*limiterEntry),
		lastCleanup: time.Now(),
		now:         time.Now,
	}
}

func (l *KeyedLimiter) Allow(key string) bool {
	if l == nil {
		return true
	}
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastCleanup) >= limiterCleanupPeriod {
		for k, e := range l.entries {
			if now.Sub(e.lastSeen) > limiterEntryTTL {
				delete(l.entries, k)
			}
		}
		l.lastCleanup = now
	}

	e, ok := l.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[key] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

// RateLimit limits requests per authenticated user, falling back to the
// client ip. A nil limiter lets everything through.
func RateLimit(l *KeyedLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if id, ok := ClientID(c); ok {
			key = "user:" + id.String()
		}
		if !l.Allow(key) {
			abort(c, http.StatusTooManyRequests, "Too many attempts, please try again later")
			return
		}
		c.Next()
	}
}

package mw

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// KeyFunc picks the bucket a request is charged to.
type KeyFunc func(c *gin.Context) string

// ByIP charges requests to the client address.
func ByIP(c *gin.Context) string {
	return c.ClientIP()
}

// ByActor charges authenticated requests to the user and anonymous ones to
// the client address. It must run after Authenticate.
func ByActor(c *gin.Context) string {
	if a := Actor(c); a.Authenticated() {
		return "user:" + strconv.FormatInt(a.UserID, 10)
	}
	return "ip:" + c.ClientIP()
}

// KeyedRateLimiter stores a token bucket per key.
type KeyedRateLimiter struct {
	keys map[string]*rate.Limiter
	mu   *sync.RWMutex
	r    rate.Limit
	b    int
}

// NewKeyedRateLimiter creates a limiter allowing r events per second with
// bursts of b for every key.
func NewKeyedRateLimiter(r rate.Limit, b int) *KeyedRateLimiter {
	return &KeyedRateLimiter{
		keys: make(map[string]*rate.Limiter),
		mu:   &sync.RWMutex{},
		r:    r,
		b:    b,
	}
}

// add creates the bucket for key unless another request beat us to it.
func (l *KeyedRateLimiter) add(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if limiter, exists := l.keys[key]; exists {
		return limiter
	}
	limiter := rate.NewLimiter(l.r, l.b)
	l.keys[key] = limiter
	return limiter
}

// Limiter returns the bucket for key.
func (l *KeyedRateLimiter) Limiter(key string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.keys[key]
	l.mu.RUnlock()

	if !exists {
		return l.add(key)
	}
	return limiter
}

// Len reports how many buckets exist.
func (l *KeyedRateLimiter) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.keys)
}

// RateLimit rejects requests over the limit with 429.
func RateLimit(limiter *KeyedRateLimiter, key KeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Limiter(key(c)).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}

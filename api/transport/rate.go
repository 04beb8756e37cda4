package transport

import (
	"fmt"
	"github.com/alex-pricope/hackathon-coordinator/logging"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
	"net/http"
	"sync"
	"time"
)

// RateClass allows Max requests per Window for one client IP.
type RateClass struct {
	Name   string
	Window time.Duration
	Max    int
}

// RateLimiter keeps one token bucket per client IP and class.
type RateLimiter struct {
	limiters sync.Map
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{}
}

func (l *RateLimiter) Limit(class RateClass) gin.HandlerFunc {
	if class.Max <= 0 || class.Window <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	every := rate.Every(class.Window / time.Duration(class.Max))

	return func(c *gin.Context) {
		key := fmt.Sprintf("%s|%s|%v|%d", c.ClientIP(), class.Name, every, class.Max)
		limiter, ok := l.limiters.Load(key)
		if !ok {
			limiter, _ = l.limiters.LoadOrStore(key, rate.NewLimiter(every, class.Max))
		}
		if !limiter.(*rate.Limiter).Allow() {
			logging.Log.Warnf("RATE: %s limit hit by %s on %s", class.Name, c.ClientIP(), c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}

// LimitWrites applies the class to every method except GET, HEAD and OPTIONS.
func (l *RateLimiter) LimitWrites(class RateClass) gin.HandlerFunc {
	limit := l.Limit(class)
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
		default:
			limit(c)
		}
	}
}

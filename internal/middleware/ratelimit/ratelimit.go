// Package ratelimit throttles requests per client IP.
package ratelimit

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/michael-schlueter/cc-ecommerce-api/internal/logging"
)

const maxTracked = 10000

type Limiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int

	// ClientIP keys the buckets; defaults to the socket peer address.
	ClientIP echo.IPExtractor
}

// PerMinute allows n requests per minute per IP with a burst of n.
func PerMinute(n int) *Limiter {
	if n <= 0 {
		n = 1
	}
	return PerIP(rate.Every(time.Minute/time.Duration(n)), n)
}

func PerIP(r rate.Limit, burst int) *Limiter {
	return &Limiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     r,
		burst:    burst,
		ClientIP: echo.ExtractIPDirect(),
	}
}

func (l *Limiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.limiters[key]
	if !ok {
		if len(l.limiters) >= maxTracked {
			l.limiters = make(map[string]*rate.Limiter)
		}
		lim = rate.NewLimiter(l.rate, l.burst)
		l.limiters[key] = lim
	}
	return lim
}

func (l *Limiter) Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ip := l.ClientIP(c.Request())
		if !l.get(ip).Allow() {
			logging.FromContext(c.Request().Context()).Warn("rate_limit_exceeded", "status", http.StatusTooManyRequests, "key", ip)
			return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests, please try again later")
		}
		return next(c)
	}
}

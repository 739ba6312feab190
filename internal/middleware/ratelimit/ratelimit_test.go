package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestLimiter_PerIP(t *testing.T) {
	t.Parallel()
	e := echo.New()
	lim := PerMinute(2)
	e.POST("/login", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, lim.Middleware)

	do := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = ip + ":1234"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, do("10.0.0.1"))
	assert.Equal(t, http.StatusOK, do("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, do("10.0.0.1"))
	assert.Equal(t, http.StatusOK, do("10.0.0.2"))
}

func TestLimiter_IgnoresForwardedFor(t *testing.T) {
	t.Parallel()
	e := echo.New()
	lim := PerIP(rate.Every(time.Minute), 1)
	e.POST("/login", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, lim.Middleware)

	do := func(forwarded string) int {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.9:4321"
		req.Header.Set(echo.HeaderXForwardedFor, forwarded)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, do("1.1.1.1"))
	assert.Equal(t, http.StatusTooManyRequests, do("2.2.2.2"))
	assert.Equal(t, http.StatusTooManyRequests, do("3.3.3.3"))
}

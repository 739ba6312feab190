package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/michael-schlueter/cc-ecommerce-api/internal/logging"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

func live(c echo.Context) error { return c.NoContent(http.StatusOK) }

// ready reports 503 while the database does not answer a ping.
func ready(db Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		if db == nil {
			return c.NoContent(http.StatusOK)
		}
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			logging.FromContext(ctx).Error("readiness_failed", "status", http.StatusServiceUnavailable, "error", err)
			return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable")
		}
		return c.NoContent(http.StatusOK)
	}
}

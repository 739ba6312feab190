package httpserver

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/michael-schlueter/cc-ecommerce-api/internal/events"
	"github.com/michael-schlueter/cc-ecommerce-api/internal/logging"
)

// publish sends an event without failing the request.
func publish(c echo.Context, p events.Publisher, topic string, key uint, event any) {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := p.Publish(ctx, topic, fmt.Sprint(key), event); err != nil {
		logging.FromContext(ctx).Error("kafka_publish_failed", "topic", topic, "error", err)
	}
}

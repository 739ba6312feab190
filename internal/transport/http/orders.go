package httpserver

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/michael-schlueter/cc-ecommerce-api/internal/events"
	"github.com/michael-schlueter/cc-ecommerce-api/internal/middleware/auth"
	"github.com/michael-schlueter/cc-ecommerce-api/internal/service"
	"github.com/michael-schlueter/cc-ecommerce-api/internal/transport"
	"github.com/michael-schlueter/cc-ecommerce-api/internal/util"
)

type OrdersHTTP struct {
	Orders *service.OrderService
	Events events.Publisher
}

func (h *OrdersHTTP) List(c echo.Context) error {
	userID, _ := auth.UserID(c)
	orders, err := h.Orders.List(c.Request().Context(), userID)
	if err != nil {
		return fail(c, "orders_list", "list_orders_failed", err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrdersHTTP) Get(c echo.Context) error {
	userID, _ := auth.UserID(c)
	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		return badRequest("Expected id to be a number")
	}
	order, err := h.Orders.Get(c.Request().Context(), userID, id)
	if err != nil {
		return fail(c, "orders_get", "get_order_failed", err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrdersHTTP) UpdateStatus(c echo.Context) error {
	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		return badRequest("Expected id to be a number")
	}
	var req transport.OrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, "orders_update_status", "invalid_body", err)
	}

	order, err := h.Orders.UpdateStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return fail(c, "orders_update_status", "update_status_failed", err)
	}
	publish(c, h.Events, events.TopicOrders, order.UserID, events.OrderEvent{
		Type:    events.OrderStatusChanged,
		OrderID: order.ID,
		UserID:  order.UserID,
		Total:   order.Total,
		Status:  string(order.Status),
		Items:   len(order.OrderItems),
		At:      time.Now().UTC(),
	})
	return c.JSON(http.StatusOK, order)
}

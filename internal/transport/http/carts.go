package httpserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/michael-schlueter/cc-ecommerce-api/internal/events"
	"github.com/michael-schlueter/cc-ecommerce-api/internal/logging"
	"github.com/michael-schlueter/cc-ecommerce-api/internal/metrics"
	"github.com/michael-schlueter/cc-ecommerce-api/internal/middleware/auth"
	"github.com/michael-schlueter/cc-ecommerce-api/internal/service"
	"github.com/michael-schlueter/cc-ecommerce-api/internal/transport"
	"github.com/michael-schlueter/cc-ecommerce-api/internal/util"
)

type CartsHTTP struct {
	Carts    *service.CartService
	Checkout *service.CheckoutService
	Events   events.Publisher
	Metrics  *metrics.Metrics
}

func (h *CartsHTTP) Get(c echo.Context) error {
	userID, _ := auth.UserID(c)
	cart, err := h.Carts.Get(c.Request().Context(), userID)
	if err != nil {
		return fail(c, "carts_get", "get_cart_failed", err)
	}
	return c.JSON(http.StatusOK, cart)
}

func (h *CartsHTTP) Create(c echo.Context) error {
	userID, _ := auth.UserID(c)
	cart, err := h.Carts.Create(c.Request().Context(), userID)
	if err != nil {
		return fail(c, "carts_create", "create_cart_failed", err)
	}
	publish(c, h.Events, events.TopicCarts, userID, events.CartEvent{
		Type:   events.CartCreated,
		UserID: userID,
		CartID: cart.ID,
		At:     time.Now().UTC(),
	})
	return c.JSON(http.StatusCreated, cart)
}

func (h *CartsHTTP) AddItem(c echo.Context) error {
	userID, _ := auth.UserID(c)
	cartID, err := util.ParseID(c.Param("id"))
	if err != nil {
		return badRequest("Expected cart id to be a number")
	}

	var req transport.AddItemRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("Expected productId to be a number")
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, "carts_add_item", "invalid_body", err)
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	item, err := h.Carts.AddItem(c.Request().Context(), userID, cartID, req.ProductID, qty)
	if err != nil {
		return fail(c, "carts_add_item", "add_item_failed", err)
	}
	publish(c, h.Events, events.TopicCarts, userID, events.CartEvent{
		Type:      events.CartItemAdded,
		UserID:    userID,
		CartID:    item.CartID,
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
		At:        time.Now().UTC(),
	})
	return c.JSON(http.StatusCreated, item)
}

func (h *CartsHTTP) UpdateItem(c echo.Context) error {
	userID, _ := auth.UserID(c)
	var req transport.UpdateItemRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("Expected cartItemId and quantity to be a number")
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, "carts_update_item", "invalid_body", err)
	}
	item, err := h.Carts.UpdateItemQuantity(c.Request().Context(), userID, req.CartItemID, req.Quantity)
	if err != nil {
		return fail(c, "carts_update_item", "update_item_failed", err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *CartsHTTP) RemoveItem(c echo.Context) error {
	userID, _ := auth.UserID(c)
	var req transport.RemoveItemRequest
	if err := (&echo.DefaultBinder{}).BindBody(c, &req); err != nil {
		return badRequest("Expected cartItemId to be a number")
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, "carts_remove_item", "invalid_body", err)
	}
	if err := h.Carts.RemoveItem(c.Request().Context(), userID, req.CartItemID); err != nil {
		return fail(c, "carts_remove_item", "remove_item_failed", err)
	}
	publish(c, h.Events, events.TopicCarts, userID, events.CartEvent{
		Type:   events.CartItemRemoved,
		UserID: userID,
		At:     time.Now().UTC(),
	})
	return c.NoContent(http.StatusNoContent)
}

func (h *CartsHTTP) CheckoutCart(c echo.Context) error {
	ctx := c.Request().Context()
	userID, _ := auth.UserID(c)
	cartID, err := util.ParseID(c.Param("id"))
	if err != nil {
		return badRequest("Expected cart id to be a number")
	}

	order, err := h.Checkout.Checkout(ctx, userID, cartID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			h.Metrics.Checkout("not_found")
		default:
			h.Metrics.Checkout("error")
		}
		return fail(c, "carts_checkout", "checkout_failed", err)
	}
	h.Metrics.Checkout("ok")

	publish(c, h.Events, events.TopicOrders, userID, events.OrderEvent{
		Type:    events.OrderCompleted,
		OrderID: order.ID,
		UserID:  userID,
		Total:   order.Total,
		Status:  string(order.Status),
		Items:   len(order.OrderItems),
		At:      time.Now().UTC(),
	})
	logging.FromContext(ctx).Info("order_created", "order_id", order.ID)
	return c.JSON(http.StatusCreated, order)
}

package events

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	UserRegistered     = "user_registered"
	UserDeleted        = "user_deleted"
	CartCreated        = "cart_created"
	CartItemAdded      = "cart_item_added"
	CartItemRemoved    = "cart_item_removed"
	ProductCreated     = "product_created"
	ProductUpdated     = "product_updated"
	ProductDeleted     = "product_deleted"
	OrderCompleted     = "order_completed"
	OrderStatusChanged = "order_status_changed"
)

type UserEvent struct {
	Type   string    `json:"type"`
	UserID uint      `json:"userId"`
	Email  string    `json:"email,omitempty"`
	At     time.Time `json:"at"`
}

type CartEvent struct {
	Type      string    `json:"type"`
	UserID    uint      `json:"userId"`
	CartID    uint      `json:"cartId"`
	ProductID uint      `json:"productId,omitempty"`
	Quantity  uint      `json:"quantity,omitempty"`
	At        time.Time `json:"at"`
}

type ProductEvent struct {
	Type      string          `json:"type"`
	ProductID uint            `json:"productId"`
	Name      string          `json:"name,omitempty"`
	Price     decimal.Decimal `json:"price"`
	At        time.Time       `json:"at"`
}

type OrderEvent struct {
	Type    string          `json:"type"`
	OrderID uint            `json:"orderId"`
	UserID  uint            `json:"userId"`
	Total   decimal.Decimal `json:"total"`
	Status  string          `json:"status"`
	Items   int             `json:"items"`
	At      time.Time       `json:"at"`
}

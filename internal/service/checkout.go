package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/michael-schlueter/cc-ecommerce-api/internal/logging"
	"github.com/michael-schlueter/cc-ecommerce-api/internal/models"
	"github.com/michael-schlueter/cc-ecommerce-api/internal/repo"
)

type CheckoutService struct {
	Repo *repo.GormRepo
}

// Checkout turns the user's cart into a completed order. Order creation,
// item creation, the status change and cart removal commit together or not
// at all.
func (s *CheckoutService) Checkout(ctx context.Context, userID, cartID uint) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "checkout", "user_id", userID)

	var out *models.Order
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		cart, err := tx.LockCartByUserID(ctx, userID)
		if err != nil {
			return storeErr(err, "User has no cart", "")
		}
		if cartID != 0 && cart.ID != cartID {
			return fmt.Errorf("%w: Cart not found", ErrNotFound)
		}
		if len(cart.CartItems) == 0 {
			return fmt.Errorf("%w: There are no items in the cart", ErrNotFound)
		}

		order := &models.Order{
			UserID: userID,
			Total:  CartTotal(cart.CartItems),
			Status: models.OrderPending,
		}
		if err := tx.CreateOrder(ctx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		items := OrderItemsFromCart(order.ID, cart.CartItems)
		if err := tx.CreateOrderItems(ctx, items); err != nil {
			return fmt.Errorf("create order items: %w", err)
		}

		// No payment capture; the Pending -> Complete step always succeeds.
		if err := tx.SetOrderStatus(ctx, order.ID, models.OrderPending, models.OrderComplete); err != nil {
			return fmt.Errorf("%w: Order was not able to process: %v", ErrProcessing, err)
		}

		if err := tx.DeleteCart(ctx, cart.ID); err != nil {
			return fmt.Errorf("delete cart: %w", err)
		}

		out, err = tx.GetOrder(ctx, order.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	l.Info("checkout_completed", "order_id", out.ID, "total", out.Total.StringFixed(2), "items", len(out.OrderItems))
	return out, nil
}

// CartTotal sums quantity times captured price over the items.
func CartTotal(items []models.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	return total
}

func OrderItemsFromCart(orderID uint, items []models.CartItem) []models.OrderItem {
	out := make([]models.OrderItem, 0, len(items))
	for _, it := range items {
		out = append(out, models.OrderItem{
			OrderID:   orderID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
	}
	return out
}

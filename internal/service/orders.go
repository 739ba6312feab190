package service

import (
	"context"
	"fmt"

	"github.com/michael-schlueter/cc-ecommerce-api/internal/models"
	"github.com/michael-schlueter/cc-ecommerce-api/internal/repo"
)

type OrderService struct {
	Repo *repo.GormRepo
}

func (s *OrderService) List(ctx context.Context, userID uint) ([]models.Order, error) {
	orders, err := s.Repo.ListOrdersByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, fmt.Errorf("%w: No orders found for this user", ErrNotFound)
	}
	return orders, nil
}

// Get returns the order only to its owner; other users see NotFound.
func (s *OrderService) Get(ctx context.Context, userID, id uint) (*models.Order, error) {
	order, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		return nil, storeErr(err, "No order found for this id", "")
	}
	if order.UserID != userID {
		return nil, fmt.Errorf("%w: No order found for this id", ErrNotFound)
	}
	return order, nil
}

// UpdateStatus moves an order along the allowed status transitions.
func (s *OrderService) UpdateStatus(ctx context.Context, id uint, status string) (*models.Order, error) {
	next, err := models.ParseOrderStatus(status)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var out *models.Order
	err = s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		order, err := tx.GetOrder(ctx, id)
		if err != nil {
			return storeErr(err, "No order found for this id", "")
		}
		if !order.Status.CanTransitionTo(next) {
			return fmt.Errorf("%w: cannot move order from %s to %s", ErrConflict, order.Status, next)
		}
		if err := tx.SetOrderStatus(ctx, id, order.Status, next); err != nil {
			return storeErr(err, "order status changed concurrently", "")
		}
		out, err = tx.GetOrder(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

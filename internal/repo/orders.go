package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/michael-schlueter/cc-ecommerce-api/internal/models"
)

func preloadOrderItems(db *gorm.DB) *gorm.DB {
	return db.Order("order_items.id ASC")
}

// CreateOrder inserts the order row only; items are added with CreateOrderItems.
func (r *GormRepo) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Create(order).Error
}

func (r *GormRepo) CreateOrderItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).CreateInBatches(&items, 100).Error
}

// SetOrderStatus moves the order from one status to another. It fails with
// gorm.ErrRecordNotFound when the order is no longer in status from.
func (r *GormRepo) SetOrderStatus(ctx context.Context, orderID uint, from, to models.OrderStatus) error {
	res := r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Update("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) ListOrdersByUser(ctx context.Context, userID uint) ([]models.Order, error) {
	var orders []models.Order
	if err := r.DB.WithContext(ctx).
		Preload("OrderItems", preloadOrderItems).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormRepo) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := r.DB.WithContext(ctx).
		Preload("OrderItems", preloadOrderItems).
		First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) CountOrders(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Order{}).Count(&n).Error
	return n, err
}

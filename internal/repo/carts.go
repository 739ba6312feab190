package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/michael-schlueter/cc-ecommerce-api/internal/models"
)

func (r *GormRepo) GetCartByUserID(ctx context.Context, userID uint) (*models.Cart, error) {
	var cart models.Cart
	if err := r.DB.WithContext(ctx).
		Preload("CartItems", func(db *gorm.DB) *gorm.DB { return db.Order("cart_items.id ASC") }).
		Preload("CartItems.Product").
		Where("user_id = ?", userID).
		First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// LockCartByUserID loads the cart and its items with a row lock. Must be
// called inside Transaction.
func (r *GormRepo) LockCartByUserID(ctx context.Context, userID uint) (*models.Cart, error) {
	var cart models.Cart
	if err := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&cart).Error; err != nil {
		return nil, err
	}
	if err := r.DB.WithContext(ctx).
		Where("cart_id = ?", cart.ID).
		Order("id ASC").
		Find(&cart.CartItems).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *GormRepo) CreateCart(ctx context.Context, cart *models.Cart) error {
	return r.DB.WithContext(ctx).Create(cart).Error
}

func (r *GormRepo) CartHasProduct(ctx context.Context, cartID, productID uint) (bool, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.CartItem{}).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormRepo) CreateCartItem(ctx context.Context, item *models.CartItem) error {
	return r.DB.WithContext(ctx).Create(item).Error
}

func (r *GormRepo) GetCartItem(ctx context.Context, cartID, itemID uint) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.DB.WithContext(ctx).
		Where("id = ? AND cart_id = ?", itemID, cartID).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormRepo) UpdateCartItemQuantity(ctx context.Context, item *models.CartItem, quantity uint) error {
	res := r.DB.WithContext(ctx).Model(item).Update("quantity", quantity)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) DeleteCartItem(ctx context.Context, cartID, itemID uint) error {
	res := r.DB.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&models.CartItem{}, itemID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteCart removes the cart and its items.
func (r *GormRepo) DeleteCart(ctx context.Context, cartID uint) error {
	if err := r.DB.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error; err != nil {
		return err
	}
	res := r.DB.WithContext(ctx).Delete(&models.Cart{}, cartID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/michael-schlueter/cc-ecommerce-api/internal/models"
	"github.com/michael-schlueter/cc-ecommerce-api/internal/repo"
)

type CartService struct {
	Repo *repo.GormRepo
}

func (s *CartService) Get(ctx context.Context, userID uint) (*models.Cart, error) {
	cart, err := s.Repo.GetCartByUserID(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "Cart not found", "")
	}
	return cart, nil
}

func (s *CartService) Create(ctx context.Context, userID uint) (*models.Cart, error) {
	_, err := s.Repo.GetCartByUserID(ctx, userID)
	if err == nil {
		return nil, fmt.Errorf("%w: User already has an active cart", ErrConflict)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	cart := &models.Cart{UserID: userID, CartItems: []models.CartItem{}}
	if err := s.Repo.CreateCart(ctx, cart); err != nil {
		return nil, storeErr(err, "", "User already has an active cart")
	}
	return cart, nil
}

// cartFor loads the user's cart and checks it is the one addressed.
// A cartID of 0 skips the check.
func (s *CartService) cartFor(ctx context.Context, userID, cartID uint) (*models.Cart, error) {
	cart, err := s.Repo.GetCartByUserID(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "Cart not found", "")
	}
	if cartID != 0 && cart.ID != cartID {
		return nil, fmt.Errorf("%w: Cart not found", ErrNotFound)
	}
	return cart, nil
}

// AddItem puts a product into the cart, capturing its current price.
func (s *CartService) AddItem(ctx context.Context, userID, cartID, productID uint, quantity int) (*models.CartItem, error) {
	if productID == 0 {
		return nil, fmt.Errorf("%w: Expected productId to be a number", ErrValidation)
	}
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}

	cart, err := s.cartFor(ctx, userID, cartID)
	if err != nil {
		return nil, err
	}

	product, err := s.Repo.GetProduct(ctx, productID)
	if err != nil {
		return nil, storeErr(err, "Product does not exist", "")
	}

	for _, it := range cart.CartItems {
		if it.ProductID == productID {
			return nil, fmt.Errorf("%w: Item is already in cart", ErrConflict)
		}
	}

	item := &models.CartItem{
		CartID:    cart.ID,
		ProductID: product.ID,
		Quantity:  uint(quantity),
		Price:     product.Price,
	}
	if err := s.Repo.CreateCartItem(ctx, item); err != nil {
		return nil, storeErr(err, "", "Item is already in cart")
	}
	return item, nil
}

func (s *CartService) UpdateItemQuantity(ctx context.Context, userID, itemID uint, quantity int) (*models.CartItem, error) {
	if itemID == 0 {
		return nil, fmt.Errorf("%w: Expected cartItemId and quantity to be a number", ErrValidation)
	}
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}

	cart, err := s.cartFor(ctx, userID, 0)
	if err != nil {
		return nil, err
	}

	item, err := s.Repo.GetCartItem(ctx, cart.ID, itemID)
	if err != nil {
		return nil, storeErr(err, "Item not found in the cart", "")
	}
	if err := s.Repo.UpdateCartItemQuantity(ctx, item, uint(quantity)); err != nil {
		return nil, storeErr(err, "Item not found in the cart", "")
	}
	item.Quantity = uint(quantity)
	return item, nil
}

func (s *CartService) RemoveItem(ctx context.Context, userID, itemID uint) error {
	if itemID == 0 {
		return fmt.Errorf("%w: Expected cartItemId to be a number", ErrValidation)
	}
	cart, err := s.cartFor(ctx, userID, 0)
	if err != nil {
		return err
	}
	return storeErr(s.Repo.DeleteCartItem(ctx, cart.ID, itemID), "Item not found in the cart", "")
}

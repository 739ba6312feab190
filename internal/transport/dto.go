package transport

import (
	"github.com/shopspring/decimal"

	"github.com/michael-schlueter/cc-ecommerce-api/internal/models"
)

type RegisterRequest struct {
	Email     string `json:"email" validate:"required,max=255,email,tld"`
	Password  string `json:"password" validate:"required,min=8,bcrypt,password"`
	FirstName string `json:"firstName" validate:"max=100"`
	LastName  string `json:"lastName" validate:"max=100"`
}

type UpdateUserRequest struct {
	Email     string `json:"email" validate:"required,max=255,email,tld"`
	Password  string `json:"password" validate:"required,min=8,bcrypt,password"`
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type AddItemRequest struct {
	ProductID uint `json:"productId" validate:"required"`
	Quantity  *int `json:"quantity" validate:"omitempty,gte=1"`
}

type UpdateItemRequest struct {
	CartItemID uint `json:"cartItemId" validate:"required"`
	Quantity   int  `json:"quantity" validate:"gte=1"`
}

type RemoveItemRequest struct {
	CartItemID uint `json:"cartItemId" validate:"required"`
}

type ProductRequest struct {
	Name        string          `json:"name" validate:"required,max=255"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image" validate:"omitempty,max=255"`
	CategoryIDs []uint          `json:"categoryIds" validate:"omitempty,dive,gt=0"`
}

type OrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Pending Complete Finalized Cancelled"`
}

type SearchResponse struct {
	Total int64            `json:"total"`
	Items []models.Product `json:"items"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

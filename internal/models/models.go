package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID        uint      `gorm:"primaryKey"                           json:"id"`
	Email     string    `gorm:"size:255;uniqueIndex;not null"        json:"email"`
	Password  string    `gorm:"size:255;not null"                    json:"-"`
	FirstName string    `gorm:"size:100"                             json:"firstName"`
	LastName  string    `gorm:"size:100"                             json:"lastName"`
	Role      Role      `gorm:"size:16;not null;default:user"        json:"role"`
	CreatedAt time.Time `                                            json:"createdAt"`
	UpdatedAt time.Time `                                            json:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type Category struct {
	ID   uint   `gorm:"primaryKey"                    json:"id"`
	Name string `gorm:"size:100;uniqueIndex;not null" json:"name"`
}

type Product struct {
	ID          uint            `gorm:"primaryKey"                            json:"id"`
	Name        string          `gorm:"size:255;not null"                     json:"name"`
	Description string          `gorm:"type:text"                             json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null"           json:"price"`
	Image       string          `gorm:"size:255"                              json:"image"`
	Categories  []Category      `gorm:"many2many:product_categories;"         json:"categories,omitempty"`
	CreatedAt   time.Time       `                                             json:"createdAt"`
	UpdatedAt   time.Time       `                                             json:"updatedAt"`
}

type Cart struct {
	ID        uint       `gorm:"primaryKey"                                      json:"id"`
	UserID    uint       `gorm:"uniqueIndex;not null"                            json:"userId"`
	CartItems []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"   json:"cartItems"`
	CreatedAt time.Time  `                                                       json:"createdAt"`
	UpdatedAt time.Time  `                                                       json:"updatedAt"`
}

// CartItem.Price is the product price captured when the item was added.
type CartItem struct {
	ID        uint            `gorm:"primaryKey"                                 json:"id"`
	CartID    uint            `gorm:"uniqueIndex:idx_cart_product;not null"      json:"cartId"`
	ProductID uint            `gorm:"uniqueIndex:idx_cart_product;not null"      json:"productId"`
	Quantity  uint            `gorm:"not null;default:1;check:quantity > 0"      json:"quantity"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null"                json:"price"`
	Product   *Product        `gorm:"constraint:OnDelete:CASCADE"                json:"product,omitempty"`
}

// LineTotal is quantity times the captured price.
func (i CartItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Order struct {
	ID         uint            `gorm:"primaryKey"                                    json:"id"`
	UserID     uint            `gorm:"index;not null"                                json:"userId"`
	Total      decimal.Decimal `gorm:"type:decimal(10,2);not null"                   json:"total"`
	Status     OrderStatus     `gorm:"size:16;not null;default:Pending"              json:"status"`
	OrderItems []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"orderItems"`
	CreatedAt  time.Time       `                                                     json:"createdAt"`
	UpdatedAt  time.Time       `                                                     json:"updatedAt"`
}

type OrderItem struct {
	ID        uint            `gorm:"primaryKey"                  json:"id"`
	OrderID   uint            `gorm:"index;not null"              json:"orderId"`
	ProductID uint            `gorm:"index;not null"              json:"productId"`
	Quantity  uint            `gorm:"not null"                    json:"quantity"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
}

// RefreshToken is the stored half of an issued refresh token. ID is the
// token's jti; only the sha256 of the raw token is kept.
type RefreshToken struct {
	ID          string     `gorm:"primaryKey;size:36"                json:"id"`
	HashedToken string     `gorm:"size:64;uniqueIndex;not null"      json:"-"`
	UserID      uint       `gorm:"index;not null"                    json:"userId"`
	State       TokenState `gorm:"size:16;not null;default:active"   json:"state"`
	ExpiresAt   time.Time  `gorm:"not null"                          json:"expiresAt"`
	CreatedAt   time.Time  `                                         json:"createdAt"`
	UpdatedAt   time.Time  `                                         json:"updatedAt"`
}

func All() []any {
	return []any{
		&User{},
		&Category{},
		&Product{},
		&Cart{},
		&CartItem{},
		&Order{},
		&OrderItem{},
		&RefreshToken{},
	}
}

package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/michael-schlueter/cc-ecommerce-api/internal/db"
	"github.com/michael-schlueter/cc-ecommerce-api/internal/hash"
	"github.com/michael-schlueter/cc-ecommerce-api/internal/models"
	"github.com/michael-schlueter/cc-ecommerce-api/internal/repo"
	"github.com/michael-schlueter/cc-ecommerce-api/internal/tokens"
)

const testPassword = "P4$sword"

type fixture struct {
	repo     *repo.GormRepo
	auth     *AuthService
	users    *UserService
	products *ProductService
	carts    *CartService
	checkout *CheckoutService
	orders   *OrderService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gdb, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })

	r := repo.New(gdb)
	auth := &AuthService{Repo: r, Issuer: &tokens.Issuer{
		AccessSecret:  []byte("access"),
		RefreshSecret: []byte("refresh"),
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
	}}
	return &fixture{
		repo:     r,
		auth:     auth,
		users:    &UserService{Repo: r, Hasher: hash.Bcrypt{Cost: bcrypt.MinCost}, Auth: auth},
		products: &ProductService{Repo: r},
		carts:    &CartService{Repo: r},
		checkout: &CheckoutService{Repo: r},
		orders:   &OrderService{Repo: r},
	}
}

func (f *fixture) register(t *testing.T, email string) (*models.User, *tokens.Pair) {
	t.Helper()
	u, pair, err := f.users.Register(context.Background(), UserInput{Email: email, Password: testPassword})
	require.NoError(t, err)
	return u, pair
}

func (f *fixture) product(t *testing.T, name, price string) *models.Product {
	t.Helper()
	p, err := f.products.Create(context.Background(), ProductInput{Name: name, Price: decimal.RequireFromString(price)})
	require.NoError(t, err)
	return p
}

func TestUserService_RegisterAndLogin(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	u, pair := f.register(t, " Alice@Email.com ")
	assert.Equal(t, "alice@email.com", u.Email)
	assert.NotEqual(t, testPassword, u.Password)
	assert.Equal(t, models.RoleUser, u.Role)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	_, _, err := f.users.Register(ctx, UserInput{Email: "alice@email.com", Password: testPassword})
	assert.ErrorIs(t, err, ErrConflict)

	got, _, err := f.users.Login(ctx, "alice@email.com", testPassword)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, _, err = f.users.Login(ctx, "alice@email.com", "Wr0ng$pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = f.users.Login(ctx, "nobody@email.com", testPassword)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserService_RegisterValidation(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	tests := []struct {
		name string
		in   UserInput
	}{
		{name: "missing email", in: UserInput{Password: testPassword}},
		{name: "missing password", in: UserInput{Email: "a@email.com"}},
		{name: "bad email", in: UserInput{Email: "not-an-email", Password: testPassword}},
		{name: "no tld", in: UserInput{Email: "a@localhost", Password: testPassword}},
		{name: "short password", in: UserInput{Email: "a@email.com", Password: "P4$s"}},
		{name: "no special", in: UserInput{Email: "a@email.com", Password: "Passw0rdd"}},
		{name: "no upper", in: UserInput{Email: "a@email.com", Password: "p4$sword"}},
		{name: "past bcrypt limit", in: UserInput{Email: "a@email.com", Password: testPassword + strings.Repeat("a", 65)}},
		{name: "multibyte past bcrypt limit", in: UserInput{Email: "a@email.com", Password: testPassword + strings.Repeat("é", 33)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := f.users.Register(context.Background(), tt.in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestUserService_UpdateAndDelete_Ownership(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	alice, _ := f.register(t, "alice@email.com")
	bob, _ := f.register(t, "bob@email.com")

	// Ownership is checked before the payload, so even an empty body is 403.
	_, err := f.users.Update(ctx, bob.ID, alice.ID, UserInput{})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, f.users.Delete(ctx, bob.ID, alice.ID), ErrForbidden)

	_, err = f.users.Update(ctx, alice.ID, alice.ID, UserInput{Email: "bob@email.com", Password: testPassword, FirstName: "A", LastName: "B"})
	assert.ErrorIs(t, err, ErrConflict)

	updated, err := f.users.Update(ctx, alice.ID, alice.ID, UserInput{Email: "alice2@email.com", Password: "N3w$password", FirstName: "Alice", LastName: "Smith"})
	require.NoError(t, err)
	assert.Equal(t, "alice2@email.com", updated.Email)
	assert.Equal(t, "Smith", updated.LastName)

	_, _, err = f.users.Login(ctx, "alice2@email.com", "N3w$password")
	require.NoError(t, err)

	require.NoError(t, f.users.Delete(ctx, alice.ID, alice.ID))
	_, err = f.users.Get(ctx, alice.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAuthService_RedeemRotates(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	_, first := f.register(t, "alice@email.com")

	second, err := f.auth.Redeem(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	old, err := f.repo.FindRefreshByID(ctx, first.JTI)
	require.NoError(t, err)
	assert.Equal(t, models.TokenRevoked, old.State)

	// Replaying the first token fails and revokes the whole family.
	_, err = f.auth.Redeem(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	_, err = f.auth.Redeem(ctx, second.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestAuthService_RedeemRejects(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	alice, pair := f.register(t, "alice@email.com")
	bob, _ := f.register(t, "bob@email.com")

	_, err := f.auth.Redeem(ctx, "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.auth.Redeem(ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	// Access tokens are signed with another secret.
	_, err = f.auth.Redeem(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	// A validly signed token that was never stored.
	orphan, err := f.auth.Issuer.CreateRefreshToken(alice.ID, tokens.NewJTI(), time.Now().Add(time.Hour))
	require.NoError(t, err)
	_, err = f.auth.Redeem(ctx, orphan)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	_, err = f.auth.RedeemFor(ctx, bob.ID, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	_, err = f.auth.RedeemFor(ctx, alice.ID, pair.RefreshToken)
	assert.NoError(t, err)
}

func TestAuthService_RevokeAll(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	u, p1 := f.register(t, "alice@email.com")
	_, p2, err := f.users.Login(ctx, "alice@email.com", testPassword)
	require.NoError(t, err)

	n, err := f.auth.RevokeAll(ctx, u.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	for _, p := range []*tokens.Pair{p1, p2} {
		_, err := f.auth.Redeem(ctx, p.RefreshToken)
		assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	}

	_, err = f.auth.RevokeAll(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAuthService_Revoke(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	_, pair := f.register(t, "alice@email.com")
	require.NoError(t, f.auth.Revoke(ctx, pair.RefreshToken))
	require.NoError(t, f.auth.Revoke(ctx, pair.RefreshToken))

	_, err := f.auth.Redeem(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	assert.ErrorIs(t, f.auth.Revoke(ctx, ""), ErrValidation)
}

func TestCartService_Items(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	u, _ := f.register(t, "alice@email.com")
	shirt := f.product(t, "T-Shirt", "12.99")

	_, err := f.carts.Get(ctx, u.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	cart, err := f.carts.Create(ctx, u.ID)
	require.NoError(t, err)
	_, err = f.carts.Create(ctx, u.ID)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = f.carts.AddItem(ctx, u.ID, cart.ID, 9999, 1)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.carts.AddItem(ctx, u.ID, cart.ID+1, shirt.ID, 1)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.carts.AddItem(ctx, u.ID, cart.ID, shirt.ID, 0)
	assert.ErrorIs(t, err, ErrValidation)

	item, err := f.carts.AddItem(ctx, u.ID, cart.ID, shirt.ID, 2)
	require.NoError(t, err)
	assert.True(t, shirt.Price.Equal(item.Price))

	_, err = f.carts.AddItem(ctx, u.ID, cart.ID, shirt.ID, 1)
	assert.ErrorIs(t, err, ErrConflict)

	updated, err := f.carts.UpdateItemQuantity(ctx, u.ID, item.ID, 5)
	require.NoError(t, err)
	assert.EqualValues(t, 5, updated.Quantity)

	_, err = f.carts.UpdateItemQuantity(ctx, u.ID, item.ID, 0)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.carts.UpdateItemQuantity(ctx, u.ID, 9999, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := f.carts.Get(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, got.CartItems, 1)
	assert.EqualValues(t, 5, got.CartItems[0].Quantity)

	require.NoError(t, f.carts.RemoveItem(ctx, u.ID, item.ID))
	assert.ErrorIs(t, f.carts.RemoveItem(ctx, u.ID, item.ID), ErrNotFound)
}

func TestCheckoutService_Checkout(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	u, _ := f.register(t, "alice@email.com")
	shirt := f.product(t, "T-Shirt", "12.99")
	suit := f.product(t, "Suit", "99.99")

	cart, err := f.carts.Create(ctx, u.ID)
	require.NoError(t, err)
	_, err = f.carts.AddItem(ctx, u.ID, cart.ID, shirt.ID, 2)
	require.NoError(t, err)
	_, err = f.carts.AddItem(ctx, u.ID, cart.ID, suit.ID, 1)
	require.NoError(t, err)

	// The captured price wins over later catalogue changes.
	_, err = f.products.Update(ctx, shirt.ID, ProductInput{Name: "T-Shirt", Price: decimal.RequireFromString("20.00")})
	require.NoError(t, err)

	order, err := f.checkout.Checkout(ctx, u.ID, cart.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderComplete, order.Status)
	assert.Equal(t, "125.97", order.Total.StringFixed(2))
	require.Len(t, order.OrderItems, 2)
	assert.Equal(t, "12.99", order.OrderItems[0].Price.StringFixed(2))
	assert.EqualValues(t, 2, order.OrderItems[0].Quantity)

	_, err = f.carts.Get(ctx, u.ID)
	assert.ErrorIs(t, err, ErrNotFound, "cart is removed after checkout")

	_, err = f.checkout.Checkout(ctx, u.ID, cart.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	orders, err := f.orders.List(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestCheckoutService_EmptyCart(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	u, _ := f.register(t, "alice@email.com")
	cart, err := f.carts.Create(ctx, u.ID)
	require.NoError(t, err)

	_, err = f.checkout.Checkout(ctx, u.ID, cart.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := f.repo.CountOrders(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = f.carts.Get(ctx, u.ID)
	assert.NoError(t, err, "failed checkout keeps the cart")
}

func TestCheckoutService_RollsBackOnItemFailure(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	u, _ := f.register(t, "alice@email.com")
	shirt := f.product(t, "T-Shirt", "12.99")
	suit := f.product(t, "Suit", "99.99")
	cart, err := f.carts.Create(ctx, u.ID)
	require.NoError(t, err)
	_, err = f.carts.AddItem(ctx, u.ID, cart.ID, shirt.ID, 2)
	require.NoError(t, err)
	_, err = f.carts.AddItem(ctx, u.ID, cart.ID, suit.ID, 1)
	require.NoError(t, err)

	errItems := errors.New("order items unavailable")
	require.NoError(t, f.repo.DB.Callback().Create().Before("gorm:create").
		Register("test:fail_order_items", func(tx *gorm.DB) {
			if tx.Statement.Table == "order_items" {
				_ = tx.AddError(errItems)
			}
		}))

	_, err = f.checkout.Checkout(ctx, u.ID, cart.ID)
	require.ErrorIs(t, err, errItems)

	n, err := f.repo.CountOrders(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "order row is rolled back with the items")

	kept, err := f.carts.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, kept.ID)
	assert.Len(t, kept.CartItems, 2)
}

func TestValidator_Messages(t *testing.T) {
	t.Parallel()
	v := NewValidator()

	type body struct {
		Quantity int    `json:"quantity" validate:"gte=1"`
		Status   string `json:"status" validate:"omitempty,oneof=Pending Complete"`
		Note     string `validate:"max=3"`
	}

	tests := []struct {
		name string
		in   any
		msg  string
	}{
		{name: "ok", in: body{Quantity: 1}},
		{name: "gte uses json name", in: body{}, msg: "quantity must be at least 1"},
		{name: "oneof", in: body{Quantity: 1, Status: "Shipped"}, msg: "status must be one of: Pending Complete"},
		{name: "field name fallback", in: body{Quantity: 1, Note: "long"}, msg: "note must be at most 3"},
		{name: "email", in: UserInput{Email: "a@localhost", Password: testPassword}, msg: msgEmailFormat},
		{name: "password rule", in: UserInput{Email: "a@email.com", Password: "password1"}, msg: msgPasswordFormat},
		{name: "password bytes", in: UserInput{Email: "a@email.com", Password: testPassword + strings.Repeat("a", 65)}, msg: msgPasswordLength},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.in)
			if tt.msg == "" {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrValidation)
			assert.Equal(t, "validation: "+tt.msg, err.Error())
		})
	}
}

func TestOrderService_GetAndStatus(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	alice, _ := f.register(t, "alice@email.com")
	bob, _ := f.register(t, "bob@email.com")
	shirt := f.product(t, "T-Shirt", "12.99")

	_, err := f.orders.List(ctx, alice.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	cart, err := f.carts.Create(ctx, alice.ID)
	require.NoError(t, err)
	_, err = f.carts.AddItem(ctx, alice.ID, cart.ID, shirt.ID, 1)
	require.NoError(t, err)
	order, err := f.checkout.Checkout(ctx, alice.ID, cart.ID)
	require.NoError(t, err)

	_, err = f.orders.Get(ctx, alice.ID, order.ID)
	require.NoError(t, err)
	_, err = f.orders.Get(ctx, bob.ID, order.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.orders.UpdateStatus(ctx, order.ID, "shipped")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.orders.UpdateStatus(ctx, order.ID, "pending")
	assert.ErrorIs(t, err, ErrConflict)

	final, err := f.orders.UpdateStatus(ctx, order.ID, "finalized")
	require.NoError(t, err)
	assert.Equal(t, models.OrderFinalized, final.Status)

	_, err = f.orders.UpdateStatus(ctx, order.ID, "Cancelled")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestProductService_CreateValidation(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.products.Create(ctx, ProductInput{Price: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.products.Create(ctx, ProductInput{Name: "x", Price: decimal.Zero})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.products.Create(ctx, ProductInput{Name: "x", Price: decimal.RequireFromString("1.999")})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.products.Create(ctx, ProductInput{Name: "x", Price: decimal.NewFromInt(1), CategoryIDs: []uint{42}})
	assert.ErrorIs(t, err, ErrValidation)

	trailing, err := f.products.Create(ctx, ProductInput{Name: "Socks", Price: decimal.RequireFromString("12.100")})
	require.NoError(t, err)
	assert.Equal(t, "12.10", trailing.Price.StringFixed(2))
	require.NoError(t, f.products.Delete(ctx, trailing.ID))

	_, err = f.products.List(ctx, 0, 0, 0)
	assert.ErrorIs(t, err, ErrNotFound)

	f.product(t, "T-Shirt", "12.99")
	res, err := f.products.Find(ctx, "shirt", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Total)

	_, err = f.products.Find(ctx, "  ", 0, 10)
	assert.ErrorIs(t, err, ErrValidation)
}

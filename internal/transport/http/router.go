package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/michael-schlueter/cc-ecommerce-api/internal/metrics"
	"github.com/michael-schlueter/cc-ecommerce-api/internal/middleware/auth"
	"github.com/michael-schlueter/cc-ecommerce-api/internal/middleware/ratelimit"
)

type Deps struct {
	DB       Pinger
	Gate     *auth.Gate
	Limiter  *ratelimit.Limiter
	Metrics  *metrics.Metrics
	Users    *UsersHTTP
	Products *ProductsHTTP
	Carts    *CartsHTTP
	Orders   *OrdersHTTP
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", live)
	e.GET("/health/ready", ready(d.DB))
	if d.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))
	}

	api := e.Group("/api")
	requireAuth := d.Gate.RequireAuth

	limited := []echo.MiddlewareFunc{}
	if d.Limiter != nil {
		limited = append(limited, d.Limiter.Middleware)
	}

	users := api.Group("/users")
	users.GET("", d.Users.List)
	users.POST("", d.Users.Register, limited...)
	users.POST("/login", d.Users.Login, limited...)
	users.POST("/refresh", d.Users.Refresh, limited...)
	users.POST("/logout", d.Users.Logout)
	users.POST("/refreshToken", d.Users.RefreshForCaller, append([]echo.MiddlewareFunc{requireAuth}, limited...)...)
	users.GET("/:id", d.Users.Get)
	users.PUT("/:id", d.Users.Update, requireAuth)
	users.DELETE("/:id", d.Users.Delete, requireAuth)
	users.POST("/:id/revokeTokens", d.Users.RevokeTokens, requireAuth, auth.RequireAdmin)

	products := api.Group("/products")
	products.GET("", d.Products.List)
	products.GET("/search", d.Products.Search)
	products.GET("/:id", d.Products.Get)
	products.POST("", d.Products.Create, requireAuth, auth.RequireAdmin)
	products.PUT("/:id", d.Products.Update, requireAuth, auth.RequireAdmin)
	products.DELETE("/:id", d.Products.Delete, requireAuth, auth.RequireAdmin)

	api.GET("/categories", d.Products.Categories)

	carts := api.Group("/carts", requireAuth)
	carts.GET("", d.Carts.Get)
	carts.POST("", d.Carts.Create)
	carts.PUT("", d.Carts.UpdateItem)
	carts.DELETE("", d.Carts.RemoveItem)
	carts.POST("/:id", d.Carts.AddItem)
	carts.POST("/:id/checkout", d.Carts.CheckoutCart)

	orders := api.Group("/orders", requireAuth)
	orders.GET("", d.Orders.List)
	orders.GET("/:id", d.Orders.Get)
	orders.PUT("/:id/status", d.Orders.UpdateStatus, auth.RequireAdmin)
}

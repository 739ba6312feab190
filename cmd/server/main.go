package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/michael-schlueter/cc-ecommerce-api/internal/config"
	"github.com/michael-schlueter/cc-ecommerce-api/internal/db"
	"github.com/michael-schlueter/cc-ecommerce-api/internal/events"
	"github.com/michael-schlueter/cc-ecommerce-api/internal/hash"
	"github.com/michael-schlueter/cc-ecommerce-api/internal/logging"
	"github.com/michael-schlueter/cc-ecommerce-api/internal/metrics"
	"github.com/michael-schlueter/cc-ecommerce-api/internal/middleware/auth"
	loggingmw "github.com/michael-schlueter/cc-ecommerce-api/internal/middleware/logging"
	"github.com/michael-schlueter/cc-ecommerce-api/internal/middleware/ratelimit"
	"github.com/michael-schlueter/cc-ecommerce-api/internal/repo"
	"github.com/michael-schlueter/cc-ecommerce-api/internal/search"
	"github.com/michael-schlueter/cc-ecommerce-api/internal/service"
	"github.com/michael-schlueter/cc-ecommerce-api/internal/tokens"
	httpserver "github.com/michael-schlueter/cc-ecommerce-api/internal/transport/http"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	config.MustValid(cfg)

	log := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(log)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gdb, err := db.Open(initCtx, cfg.DatabaseDriver, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Error("db_init_failed", "error", err)
		os.Exit(1)
	}

	hasher, err := hash.ForScheme(cfg.PasswordHasher)
	if err != nil {
		log.Error("hasher_init_failed", "error", err)
		os.Exit(1)
	}

	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewProducer(cfg.KafkaBrokers)
		log.Info("kafka_enabled", "brokers", cfg.KafkaBrokers)
	}

	r := repo.New(gdb)
	m := metrics.New()
	issuer := &tokens.Issuer{
		AccessSecret:  cfg.JWTAccessSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
	}
	authSvc := &service.AuthService{Repo: r, Issuer: issuer}
	products := &service.ProductService{Repo: r}
	if s := openSearch(log, cfg); s != nil {
		products.Search = s
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		n, err := products.Reindex(ctx)
		cancel()
		if err != nil {
			log.Warn("search_reindex_failed", "indexed", n, "error", err)
		} else {
			log.Info("search_reindexed", "products", n)
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = httpserver.ErrorHandler
	e.Validator = service.NewValidator()
	e.IPExtractor = echo.ExtractIPDirect()
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second
	e.Server.IdleTimeout = 60 * time.Second

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.RequestID(), m.Middleware(), loggingmw.RequestLogger(log), middleware.Recover())
	if len(cfg.CORSOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: cfg.CORSOrigins,
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		}))
	}

	httpserver.Register(e, &httpserver.Deps{
		DB:      r,
		Gate:    auth.NewGate(issuer),
		Limiter: ratelimit.PerMinute(cfg.LoginRatePerMin),
		Metrics: m,
		Users: &httpserver.UsersHTTP{
			Users:   &service.UserService{Repo: r, Hasher: hasher, Auth: authSvc},
			Auth:    authSvc,
			Events:  publisher,
			Metrics: m,
		},
		Products: &httpserver.ProductsHTTP{Products: products, Events: publisher},
		Carts: &httpserver.CartsHTTP{
			Carts:    &service.CartService{Repo: r},
			Checkout: &service.CheckoutService{Repo: r},
			Events:   publisher,
			Metrics:  m,
		},
		Orders: &httpserver.OrdersHTTP{Orders: &service.OrderService{Repo: r}, Events: publisher},
	})

	go func() {
		log.Info("http_server_starting", "addr", cfg.Addr())
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http_server_error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	go func() {
		<-quit
		log.Warn("force_exit")
		os.Exit(1)
	}()

	log.Info("shutting_down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Error("server_shutdown_error", "error", err)
	}
	if err := db.Close(gdb); err != nil {
		log.Error("db_close_error", "error", err)
	}
	if err := publisher.Close(); err != nil {
		log.Error("kafka_close_error", "error", err)
	}

	log.Info("shutdown_complete")
}

// openSearch returns nil when Elasticsearch is not configured or not reachable;
// product search then runs against the database.
func openSearch(log *slog.Logger, cfg config.Config) *search.Client {
	if cfg.ESURL == "" {
		return nil
	}
	c, err := search.NewClient(search.Config{
		URL:      cfg.ESURL,
		User:     cfg.ESUser,
		Password: cfg.ESPassword,
		Index:    cfg.ESIndex,
	})
	if err != nil {
		log.Warn("search_disabled", "error", err)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Ping(ctx); err != nil {
		log.Warn("search_disabled", "error", err)
		return nil
	}
	if err := c.EnsureIndex(ctx); err != nil {
		log.Warn("search_disabled", "error", err)
		return nil
	}
	log.Info("search_enabled", "url", cfg.ESURL, "index", cfg.ESIndex)
	return c
}

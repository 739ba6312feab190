package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/michael-schlueter/cc-ecommerce-api/internal/config"
	"github.com/michael-schlueter/cc-ecommerce-api/internal/db"
	"github.com/michael-schlueter/cc-ecommerce-api/internal/hash"
	"github.com/michael-schlueter/cc-ecommerce-api/internal/logging"
	"github.com/michael-schlueter/cc-ecommerce-api/internal/models"
	"github.com/michael-schlueter/cc-ecommerce-api/internal/repo"
	"github.com/michael-schlueter/cc-ecommerce-api/internal/service"
)

const seedPassword = "P4$sword"

var seedUsers = []string{"alice@email.com", "bob@email.com", "carol@email.com", "dauphne@email.com"}

type seedProduct struct {
	name, description, price, image string
	categories                      []string
}

var seedProducts = []seedProduct{
	{
		name:        "T-Shirt",
		description: "Basic cotton t-shirt",
		price:       "12.99",
		image:       "/images/tshirt.jpg",
		categories:  []string{"summer", "women"},
	},
	{
		name:        "Suit",
		description: "Two-piece wool suit",
		price:       "99.99",
		image:       "/images/suit.jpg",
		categories:  []string{"winter", "women"},
	},
}

func main() {
	admin := flag.String("admin", "", "promote the user with this email to admin")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")

	log := logging.New(cfg.LogLevel).With("service", "seed")
	slog.SetDefault(log)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	gdb, err := db.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		log.Error("db_init_failed", "error", err)
		os.Exit(1)
	}
	defer db.Close(gdb)

	r := repo.New(gdb)
	if err := seed(ctx, r, log); err != nil {
		log.Error("seed_failed", "error", err)
		os.Exit(1)
	}

	if *admin != "" {
		users := &service.UserService{Repo: r}
		if err := users.Promote(ctx, *admin); err != nil {
			log.Error("promote_failed", "email", *admin, "error", err)
			os.Exit(1)
		}
		log.Info("user_promoted", "email", *admin)
	}
}

func seed(ctx context.Context, r *repo.GormRepo, log *slog.Logger) error {
	cats := map[string]models.Category{}
	for _, name := range []string{"summer", "winter", "women", "men"} {
		c, err := r.FirstOrCreateCategory(ctx, name)
		if err != nil {
			return err
		}
		cats[name] = *c
	}

	hasher := hash.Bcrypt{Cost: 12}
	for _, email := range seedUsers {
		_, err := r.GetUserByEmail(ctx, email)
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		pw, err := hasher.Hash(seedPassword)
		if err != nil {
			return err
		}
		if err := r.CreateUser(ctx, &models.User{Email: email, Password: pw, Role: models.RoleUser}); err != nil {
			return err
		}
		log.Info("user_seeded", "email", email)
	}

	for _, sp := range seedProducts {
		_, err := r.GetProductByName(ctx, sp.name)
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		p := &models.Product{
			Name:        sp.name,
			Description: sp.description,
			Price:       decimal.RequireFromString(sp.price),
			Image:       sp.image,
		}
		for _, c := range sp.categories {
			p.Categories = append(p.Categories, cats[c])
		}
		if err := r.CreateProduct(ctx, p); err != nil {
			return err
		}
		log.Info("product_seeded", "name", sp.name)
	}
	return nil
}

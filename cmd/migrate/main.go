package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/michael-schlueter/cc-ecommerce-api/internal/config"
	"github.com/michael-schlueter/cc-ecommerce-api/internal/db"
	"github.com/michael-schlueter/cc-ecommerce-api/internal/logging"
)

func main() {
	steps := flag.Int("steps", 1, "number of migrations to roll back with down")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: migrate [-steps N] up|down\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	log := logging.New(cfg.LogLevel).With("service", "migrate")

	var err error
	switch flag.Arg(0) {
	case "up", "":
		err = db.Migrate(cfg.DatabaseURL)
	case "down":
		err = db.Rollback(cfg.DatabaseURL, *steps)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		log.Error("migration_failed", "error", err)
		os.Exit(1)
	}
	log.Info("migration_done", "direction", flag.Arg(0))
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ServiceName string
	ServerPort  int
	LogLevel    string
	CORSOrigins []string

	DatabaseDriver string
	DatabaseURL    string

	JWTAccessSecret  []byte
	JWTRefreshSecret []byte
	AccessTokenTTL   time.Duration
	RefreshTokenTTL  time.Duration

	PasswordHasher string

	KafkaBrokers []string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	LoginRatePerMin int
}

func Load() Config {
	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "ecommerce-api"),
		ServerPort:  EnvIntDefault("SERVER_PORT", 8080),
		LogLevel:    EnvDefault("LOG_LEVEL", "info"),
		CORSOrigins: CSV(os.Getenv("CORS_ORIGINS")),

		DatabaseDriver: strings.ToLower(EnvDefault("DATABASE_DRIVER", "postgres")),
		DatabaseURL:    os.Getenv("DATABASE_URL"),

		JWTAccessSecret:  []byte(os.Getenv("JWT_ACCESS_SECRET")),
		JWTRefreshSecret: []byte(os.Getenv("JWT_REFRESH_SECRET")),
		AccessTokenTTL:   EnvDurationDefault("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL:  EnvDurationDefault("REFRESH_TOKEN_TTL", 7*24*time.Hour),

		PasswordHasher: strings.ToLower(EnvDefault("PASSWORD_HASHER", "bcrypt")),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    EnvDefault("ES_INDEX", "products"),

		LoginRatePerMin: EnvIntDefault("LOGIN_RATE_PER_MIN", 10),
	}
}

// Validate reports every missing or unusable setting at once.
func (c Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.DatabaseDriver != "postgres" && c.DatabaseDriver != "sqlite" {
		errs = append(errs, fmt.Errorf("DATABASE_DRIVER %q is not supported", c.DatabaseDriver))
	}
	if len(c.JWTAccessSecret) == 0 {
		errs = append(errs, errors.New("JWT_ACCESS_SECRET is required"))
	}
	if len(c.JWTRefreshSecret) == 0 {
		errs = append(errs, errors.New("JWT_REFRESH_SECRET is required"))
	}
	if c.PasswordHasher != "bcrypt" && c.PasswordHasher != "argon2" {
		errs = append(errs, fmt.Errorf("PASSWORD_HASHER %q is not supported", c.PasswordHasher))
	}
	return errors.Join(errs...)
}

func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.ServerPort)
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{
		"SERVICE_NAME", "SERVER_PORT", "DATABASE_DRIVER", "DATABASE_URL", "ACCESS_TOKEN_TTL",
		"REFRESH_TOKEN_TTL", "PASSWORD_HASHER", "KAFKA_BROKERS", "ES_URL", "ES_INDEX", "LOGIN_RATE_PER_MIN",
	} {
		t.Setenv(k, "")
	}

	cfg := Load()

	assert.Equal(t, "ecommerce-api", cfg.ServiceName)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTokenTTL)
	assert.Equal(t, "bcrypt", cfg.PasswordHasher)
	assert.Equal(t, "products", cfg.ESIndex)
	assert.Equal(t, 10, cfg.LoginRatePerMin)
	assert.Nil(t, cfg.KafkaBrokers)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DATABASE_DRIVER", "SQLite")
	t.Setenv("DATABASE_URL", "file::memory:")
	t.Setenv("ACCESS_TOKEN_TTL", "5m")
	t.Setenv("REFRESH_TOKEN_TTL", "not-a-duration")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, ,kafka-2:9092")

	cfg := Load()

	assert.Equal(t, 9090, cfg.ServerPort)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, 5*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTokenTTL)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	valid := Config{
		DatabaseDriver:   "postgres",
		DatabaseURL:      "postgres://localhost/shop",
		JWTAccessSecret:  []byte("a"),
		JWTRefreshSecret: []byte("r"),
		PasswordHasher:   "bcrypt",
	}
	require.NoError(t, valid.Validate())

	broken := valid
	broken.DatabaseURL = ""
	broken.JWTRefreshSecret = nil
	broken.PasswordHasher = "md5"

	err := broken.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
	assert.Contains(t, err.Error(), "JWT_REFRESH_SECRET")
	assert.Contains(t, err.Error(), "PASSWORD_HASHER")
}

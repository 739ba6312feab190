package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/michael-schlueter/cc-ecommerce-api/internal/models"
)

func TestOpenSQLite_MigratesAllModels(t *testing.T) {
	t.Parallel()

	gdb, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(gdb) })

	for _, m := range models.All() {
		assert.True(t, gdb.Migrator().HasTable(m), "%T", m)
	}
	assert.True(t, gdb.Migrator().HasTable("product_categories"))
}

func TestOpenSQLite_TranslatesUniqueViolation(t *testing.T) {
	t.Parallel()

	gdb, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(gdb) })

	require.NoError(t, gdb.Create(&models.User{Email: "alice@email.com", Password: "x"}).Error)
	err = gdb.Create(&models.User{Email: "alice@email.com", Password: "y"}).Error

	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
}

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "gorm duplicated key", err: fmt.Errorf("create: %w", gorm.ErrDuplicatedKey), want: true},
		{name: "postgres unique", err: &pgconn.PgError{Code: "23505"}, want: true},
		{name: "postgres fk", err: &pgconn.PgError{Code: "23503"}, want: false},
		{name: "other", err: errors.New("boom"), want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsUniqueViolation(tt.err))
		})
	}
}

func TestOpen_RejectsBadInput(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), DriverPostgres, "")
	assert.Error(t, err)

	_, err = Open(context.Background(), "mysql", "dsn")
	assert.Error(t, err)
}

func TestMigrationFiles_Paired(t *testing.T) {
	t.Parallel()

	names, err := MigrationFiles()
	require.NoError(t, err)
	assert.Contains(t, names, "000001_init.up.sql")
	assert.Contains(t, names, "000001_init.down.sql")
}

func TestMigrate_Postgres(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping postgres migration test")
	}

	require.NoError(t, Migrate(dsn))
	require.NoError(t, Migrate(dsn))

	gdb, err := Open(context.Background(), DriverPostgres, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(gdb) })

	for _, m := range models.All() {
		assert.True(t, gdb.Migrator().HasTable(m), "%T", m)
	}
}

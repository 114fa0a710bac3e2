package postgres_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Totarae/shortr/internal/database"
	"github.com/Totarae/shortr/internal/storage"
	"github.com/Totarae/shortr/internal/storage/postgres"
	"github.com/Totarae/shortr/internal/storage/storagetest"
)

// Тесты выполняются только при заданной TEST_DATABASE_DSN (postgres://...).
func TestTable_Contract(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN is not set")
	}

	logger := zap.NewNop()
	require.NoError(t, database.Migrate(dsn, logger))

	storagetest.Run(t, func(t *testing.T) storage.Table {
		ctx := context.Background()
		db, err := database.NewDB(ctx, dsn, logger)
		require.NoError(t, err)

		_, err = db.Pool.Exec(ctx, "TRUNCATE shortlink")
		require.NoError(t, err)

		table := postgres.New(db)
		t.Cleanup(func() { _ = table.Close() })
		return table
	})
}

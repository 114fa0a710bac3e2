package sqlite_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Totarae/shortr/internal/model"
	"github.com/Totarae/shortr/internal/storage"
	"github.com/Totarae/shortr/internal/storage/sqlite"
	"github.com/Totarae/shortr/internal/storage/storagetest"
)

func openTable(t *testing.T, dsn string) *sqlite.Table {
	t.Helper()
	table, err := sqlite.New(context.Background(), dsn, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = table.Close() })
	return table
}

func TestTable_Contract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Table {
		return openTable(t, filepath.Join(t.TempDir(), "shortr.db"))
	})
}

func TestDriverFor(t *testing.T) {
	tests := []struct {
		dsn  string
		want string
	}{
		{"file:db.sqlite", "sqlite"},
		{"/home/user/.shortr/shortr.db", "sqlite"},
		{"libsql://shortr.turso.io?authToken=x", "libsql"},
		{"wss://shortr.turso.io", "libsql"},
		{"https://shortr.turso.io", "libsql"},
	}
	for _, tt := range tests {
		t.Run(tt.dsn, func(t *testing.T) {
			assert.Equal(t, tt.want, sqlite.DriverFor(tt.dsn))
		})
	}
}

// Тест открытия базы, созданной ранней версией (без колонки count)
func TestTable_LegacySchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.db")

	raw, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = raw.Exec(`CREATE TABLE shortlink (
		alias TEXT PRIMARY KEY,
		url TEXT NOT NULL,
		createdAt DATETIME DEFAULT CURRENT_TIMESTAMP
	)`)
	require.NoError(t, err)
	_, err = raw.Exec(`INSERT INTO shortlink (alias, url) VALUES ('old', 'example.com')`)
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	table := openTable(t, path)

	got, err := table.FindByKey(context.Background(), "old")
	require.NoError(t, err)
	assert.Equal(t, "example.com", got.URL)
	assert.Equal(t, uint64(0), got.Count)
	assert.False(t, got.CreatedAt.IsZero())
}

// Повторное открытие уже мигрированной базы не спотыкается о существующий count
func TestTable_ReopenMigrated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "links.db")
	ctx := context.Background()

	first, err := sqlite.New(ctx, path, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, first.Insert(ctx, &model.ShortLink{Alias: "a", URL: "a.example", CreatedAt: time.Now().UTC()}))
	require.NoError(t, first.Close())

	second := openTable(t, path)
	_, err = second.FindByKey(ctx, "a")
	assert.NoError(t, err)
}

// Ошибка добавления столбца, отличная от "duplicate column", возвращается из New
func TestTable_MigrateErrorSurfaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "view.db")

	raw, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = raw.Exec(`CREATE VIEW shortlink AS SELECT 'a' AS alias, 'b' AS url, CURRENT_TIMESTAMP AS createdAt`)
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	_, err = sqlite.New(context.Background(), path, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "add count column")
}

// Package sqlite реализует storage.Table поверх SQLite (локальный файл
// через modernc.org/sqlite или удалённая база libsql).
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql" // Turso driver
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // Local SQLite driver

	"github.com/Totarae/shortr/internal/model"
	"github.com/Totarae/shortr/internal/storage"
)

const schema = `
	CREATE TABLE IF NOT EXISTS shortlink (
		alias TEXT PRIMARY KEY,
		url TEXT NOT NULL,
		count INTEGER NOT NULL DEFAULT 0,
		createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`

// Table реализует storage.Table на database/sql.
type Table struct {
	db     *sql.DB
	driver string
	logger *zap.Logger
}

var _ storage.Table = (*Table)(nil)

// DriverFor выбирает драйвер по DSN.
func DriverFor(dsn string) string {
	for _, prefix := range []string{"libsql://", "wss://", "https://", "http://"} {
		if strings.HasPrefix(dsn, prefix) {
			return "libsql"
		}
	}
	return "sqlite"
}

// New открывает базу и создаёт таблицу, если её нет.
func New(ctx context.Context, dsn string, logger *zap.Logger) (*Table, error) {
	driver := DriverFor(dsn)
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	// Одно соединение: все транзакции выполняются последовательно,
	// чтение-изменение-запись не конкурирует за блокировку файла.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	t := &Table{db: db, driver: driver, logger: logger}
	if err := t.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info("sqlite table ready", zap.String("driver", driver))
	return t, nil
}

func (t *Table) migrate(ctx context.Context) error {
	if t.driver == "sqlite" {
		if _, err := t.db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			return err
		}
		if _, err := t.db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
			return err
		}
	}
	if _, err := t.db.ExecContext(ctx, schema); err != nil {
		return err
	}

	// Ранние базы shortlink создавались без счётчика.
	// ADD COLUMN не поддерживает IF NOT EXISTS, игнорируется только "duplicate column".
	_, err := t.db.ExecContext(ctx, `ALTER TABLE shortlink ADD COLUMN count INTEGER NOT NULL DEFAULT 0`)
	if err != nil && !isDuplicateColumn(err) {
		return fmt.Errorf("add count column: %w", err)
	}
	return nil
}

func isDuplicateColumn(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "duplicate column")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLink(row rowScanner) (*model.ShortLink, error) {
	link := &model.ShortLink{}
	var count int64
	if err := row.Scan(&link.Alias, &link.URL, &count, &link.CreatedAt); err != nil {
		return nil, err
	}
	link.Count = uint64(count)
	return link, nil
}

// Insert добавляет запись; конфликт по alias даёт ErrAlreadyExists.
func (t *Table) Insert(ctx context.Context, link *model.ShortLink) error {
	res, err := t.db.ExecContext(ctx,
		`INSERT INTO shortlink (alias, url, count, createdAt) VALUES (?, ?, ?, ?)
		 ON CONFLICT(alias) DO NOTHING`,
		link.Alias, link.URL, int64(link.Count), link.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert link: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert link: %w", err)
	}
	if n == 0 {
		return storage.ErrAlreadyExists
	}
	return nil
}

// FindByKey возвращает запись по алиасу.
func (t *Table) FindByKey(ctx context.Context, alias string) (*model.ShortLink, error) {
	link, err := scanLink(t.db.QueryRowContext(ctx,
		`SELECT alias, url, count, createdAt FROM shortlink WHERE alias = ?`, alias))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get link: %w", err)
	}
	return link, nil
}

// FindAll возвращает все записи.
func (t *Table) FindAll(ctx context.Context) ([]*model.ShortLink, error) {
	rows, err := t.db.QueryContext(ctx,
		`SELECT alias, url, count, createdAt FROM shortlink ORDER BY alias`)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	defer rows.Close()

	var links []*model.ShortLink
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}
		links = append(links, link)
	}
	return links, rows.Err()
}

// UpdateByKey читает, изменяет и сохраняет запись в одной транзакции.
func (t *Table) UpdateByKey(ctx context.Context, alias string, fn storage.Mutator) (*model.ShortLink, error) {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	current, err := scanLink(tx.QueryRowContext(ctx,
		`SELECT alias, url, count, createdAt FROM shortlink WHERE alias = ?`, alias))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get link: %w", err)
	}

	next := current.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	next.Alias = current.Alias
	next.CreatedAt = current.CreatedAt

	if _, err := tx.ExecContext(ctx,
		`UPDATE shortlink SET url = ?, count = ? WHERE alias = ?`,
		next.URL, int64(next.Count), alias); err != nil {
		return nil, fmt.Errorf("update link: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return next, nil
}

// DeleteByKey удаляет запись.
func (t *Table) DeleteByKey(ctx context.Context, alias string) error {
	res, err := t.db.ExecContext(ctx, `DELETE FROM shortlink WHERE alias = ?`, alias)
	if err != nil {
		return fmt.Errorf("delete link: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete link: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Ping проверяет соединение.
func (t *Table) Ping(ctx context.Context) error {
	return t.db.PingContext(ctx)
}

// Close закрывает базу.
func (t *Table) Close() error {
	return t.db.Close()
}

// Package postgres реализует storage.Table поверх PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Totarae/shortr/internal/database"
	"github.com/Totarae/shortr/internal/model"
	"github.com/Totarae/shortr/internal/storage"
)

const (
	insertQuery = `INSERT INTO shortlink (alias, url, count, "createdAt")
              VALUES ($1, $2, $3, $4)
              ON CONFLICT (alias) DO NOTHING
              RETURNING "createdAt"`
	selectQuery    = `SELECT alias, url, count, "createdAt" FROM shortlink WHERE alias = $1`
	selectAllQuery = `SELECT alias, url, count, "createdAt" FROM shortlink ORDER BY alias`
	lockQuery      = selectQuery + ` FOR UPDATE`
	updateQuery    = `UPDATE shortlink SET url = $2, count = $3 WHERE alias = $1`
	deleteQuery    = `DELETE FROM shortlink WHERE alias = $1`
)

// Table реализует storage.Table с использованием PostgreSQL.
type Table struct {
	DB *database.DB
}

var _ storage.Table = (*Table)(nil)

// New создаёт таблицу поверх открытого пула.
func New(db *database.DB) *Table {
	return &Table{DB: db}
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

// Insert сохраняет запись. Конфликт по alias даёт ErrAlreadyExists,
// существующая запись при этом не меняется.
func (t *Table) Insert(ctx context.Context, link *model.ShortLink) error {
	err := t.DB.Pool.QueryRow(ctx, insertQuery,
		link.Alias, link.URL, int64(link.Count), link.CreatedAt,
	).Scan(&link.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("database insert error: %w", err)
	}
	return nil
}

// FindByKey извлекает запись по алиасу.
func (t *Table) FindByKey(ctx context.Context, alias string) (*model.ShortLink, error) {
	link, err := scanLink(t.DB.Pool.QueryRow(ctx, selectQuery, alias))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return link, nil
}

// FindAll возвращает все записи.
func (t *Table) FindAll(ctx context.Context) ([]*model.ShortLink, error) {
	rows, err := t.DB.Pool.Query(ctx, selectAllQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query links: %w", err)
	}
	defer rows.Close()

	var results []*model.ShortLink
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		results = append(results, link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	return results, nil
}

// UpdateByKey блокирует строку (SELECT ... FOR UPDATE), применяет fn и
// сохраняет результат в рамках одной транзакции.
func (t *Table) UpdateByKey(ctx context.Context, alias string, fn storage.Mutator) (*model.ShortLink, error) {
	tx, err := t.DB.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	current, err := scanLink(tx.QueryRow(ctx, lockQuery, alias))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock row: %w", err)
	}

	next := current.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	next.Alias = current.Alias
	next.CreatedAt = current.CreatedAt

	if _, err := tx.Exec(ctx, updateQuery, alias, next.URL, int64(next.Count)); err != nil {
		return nil, fmt.Errorf("failed to update row: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return next, nil
}

// DeleteByKey удаляет запись.
func (t *Table) DeleteByKey(ctx context.Context, alias string) error {
	tag, err := t.DB.Pool.Exec(ctx, deleteQuery, alias)
	if err != nil {
		return fmt.Errorf("failed to delete link: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Ping проверяет доступность базы данных.
func (t *Table) Ping(ctx context.Context) error {
	return t.DB.Ping(ctx)
}

// Close закрывает пул.
func (t *Table) Close() error {
	t.DB.Close()
	return nil
}

package database

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// DB представляет подключение к БД
type DB struct {
	Pool   *pgxpool.Pool
	Logger *zap.Logger
}

// NewDB создает новое подключение к БД
func NewDB(ctx context.Context, dsn string, logger *zap.Logger) (*DB, error) {
	if dsn == "" {
		return nil, errors.New("database DSN is empty")
	}

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}

	db := &DB{Pool: pool, Logger: logger}
	if err := db.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("connected to PostgreSQL",
		zap.String("host", config.ConnConfig.Host),
		zap.String("database", config.ConnConfig.Database))
	return db, nil
}

// Ping проверяет соединение с БД
func (db *DB) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return db.Pool.Ping(ctx)
}

// Close закрывает соединение с БД
func (db *DB) Close() {
	db.Pool.Close()
}

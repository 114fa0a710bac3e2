// Package storage описывает долговременную таблицу алиасов и её ошибки.
package storage

import (
	"context"
	"errors"

	"github.com/Totarae/shortr/internal/model"
)

//go:generate mockgen -destination=mocks/mock_table.go -package=mocks github.com/Totarae/shortr/internal/storage Table

var (
	// ErrNotFound возвращается, если записи с таким алиасом нет.
	ErrNotFound = errors.New("storage: alias not found")

	// ErrAlreadyExists возвращается при вставке уже существующего алиаса.
	ErrAlreadyExists = errors.New("storage: alias already exists")
)

// Mutator изменяет запись внутри атомарной операции чтение-изменение-запись.
// Сохраняются только URL и Count; Alias и CreatedAt таблица не меняет.
// Ошибка мутатора отменяет запись.
type Mutator func(link *model.ShortLink) error

// Table определяет интерфейс долговременной таблицы shortlink.
// Все реализации безопасны для конкурентного использования.
type Table interface {
	// Insert атомарно добавляет запись, если алиаса ещё нет, иначе ErrAlreadyExists.
	Insert(ctx context.Context, link *model.ShortLink) error
	// FindByKey возвращает запись по алиасу или ErrNotFound.
	FindByKey(ctx context.Context, alias string) (*model.ShortLink, error)
	// FindAll возвращает все записи.
	FindAll(ctx context.Context) ([]*model.ShortLink, error)
	// UpdateByKey атомарно применяет fn к записи и возвращает сохранённый результат.
	UpdateByKey(ctx context.Context, alias string, fn Mutator) (*model.ShortLink, error)
	// DeleteByKey удаляет запись или возвращает ErrNotFound.
	DeleteByKey(ctx context.Context, alias string) error
	// Ping проверяет доступность хранилища.
	Ping(ctx context.Context) error
	// Close освобождает ресурсы.
	Close() error
}

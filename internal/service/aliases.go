// Package service содержит хранилище алиасов: единственный владелец записей
// shortlink, отвечающий за уникальность и атомарность их изменений.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Totarae/shortr/internal/model"
	"github.com/Totarae/shortr/internal/storage"
)

// AliasService реализует операции над алиасами поверх storage.Table.
type AliasService struct {
	Table  storage.Table
	Logger *zap.Logger
	Clock  Clock
}

// NewAliasService создаёт сервис с системными часами.
func NewAliasService(table storage.Table, logger *zap.Logger) *AliasService {
	return &AliasService{
		Table:  table,
		Logger: logger,
		Clock:  RealClock{},
	}
}

// Resolution результат разрешения алиаса при редиректе.
type Resolution struct {
	// Target нормализованный целевой адрес
	Target string
	// Count значение счётчика после инкремента
	Count uint64
}

// mapError переводит ошибки таблицы в ошибки сервиса.
func (s *AliasService) mapError(op, alias string, err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return fmt.Errorf("%w: %q", ErrNotFound, alias)
	case errors.Is(err, storage.ErrAlreadyExists):
		return fmt.Errorf("%w: %q", ErrDuplicateAlias, alias)
	}
	s.Logger.Warn("table operation failed",
		zap.String("op", op), zap.String("alias", alias), zap.Error(err))
	return fmt.Errorf("%w: %s %q: %w", ErrStorageUnavailable, op, alias, err)
}

func clean(alias, target string) (string, string, error) {
	alias = strings.TrimSpace(alias)
	target = strings.TrimSpace(target)
	if alias == "" || target == "" {
		return "", "", ErrInvalidInput
	}
	return alias, target, nil
}

// Create сохраняет новый алиас со счётчиком 0. Если алиас занят, возвращает
// ErrDuplicateAlias и не трогает существующую запись.
func (s *AliasService) Create(ctx context.Context, alias, target string) (*model.ShortLink, error) {
	alias, target, err := clean(alias, target)
	if err != nil {
		return nil, err
	}

	link := &model.ShortLink{
		Alias:     alias,
		URL:       target,
		Count:     0,
		CreatedAt: s.Clock.Now(),
	}
	if err := s.Table.Insert(ctx, link); err != nil {
		return nil, s.mapError("create", alias, err)
	}

	s.Logger.Info("alias created", zap.String("alias", alias), zap.String("url", target))
	return link, nil
}

// Get возвращает запись без изменения счётчика.
func (s *AliasService) Get(ctx context.Context, alias string) (*model.ShortLink, error) {
	alias = strings.TrimSpace(alias)
	if alias == "" {
		return nil, ErrInvalidInput
	}
	link, err := s.Table.FindByKey(ctx, alias)
	if err != nil {
		return nil, s.mapError("get", alias, err)
	}
	return link, nil
}

// GetAll возвращает все записи. Порядок определяется таблицей.
func (s *AliasService) GetAll(ctx context.Context) ([]*model.ShortLink, error) {
	links, err := s.Table.FindAll(ctx)
	if err != nil {
		return nil, s.mapError("list", "", err)
	}
	if links == nil {
		links = []*model.ShortLink{}
	}
	return links, nil
}

// Resolve находит алиас и в той же атомарной операции увеличивает счётчик на 1.
// Возвращает нормализованный целевой адрес.
func (s *AliasService) Resolve(ctx context.Context, alias string) (*Resolution, error) {
	alias = strings.TrimSpace(alias)
	if alias == "" {
		return nil, ErrInvalidInput
	}

	link, err := s.Table.UpdateByKey(ctx, alias, func(l *model.ShortLink) error {
		l.Count++
		return nil
	})
	if err != nil {
		return nil, s.mapError("resolve", alias, err)
	}

	s.Logger.Debug("alias resolved", zap.String("alias", alias), zap.Uint64("count", link.Count))
	return &Resolution{Target: NormalizeTarget(link.URL), Count: link.Count}, nil
}

// Update заменяет целевой адрес и обнуляет счётчик. Алиас и createdAt не меняются,
// отсутствующий алиас не создаётся.
func (s *AliasService) Update(ctx context.Context, alias, target string) (*model.ShortLink, error) {
	alias, target, err := clean(alias, target)
	if err != nil {
		return nil, err
	}

	link, err := s.Table.UpdateByKey(ctx, alias, func(l *model.ShortLink) error {
		l.URL = target
		l.Count = 0
		return nil
	})
	if err != nil {
		return nil, s.mapError("update", alias, err)
	}

	s.Logger.Info("alias updated", zap.String("alias", alias), zap.String("url", target))
	return link, nil
}

// Delete удаляет алиас.
func (s *AliasService) Delete(ctx context.Context, alias string) error {
	alias = strings.TrimSpace(alias)
	if alias == "" {
		return ErrInvalidInput
	}
	if err := s.Table.DeleteByKey(ctx, alias); err != nil {
		return s.mapError("delete", alias, err)
	}

	s.Logger.Info("alias deleted", zap.String("alias", alias))
	return nil
}

// BulkCreate создаёт алиасы по одному, в порядке входа. Каждый элемент является
// отдельной операцией: ошибка одного элемента (включая сбой хранилища) попадает
// в Errors и не откатывает уже созданные.
func (s *AliasService) BulkCreate(ctx context.Context, items []model.LinkRequest) *model.BulkResult {
	result := &model.BulkResult{
		Created: make([]*model.ShortLink, 0, len(items)),
		Errors:  []model.BulkError{},
	}

	for _, item := range items {
		link, err := s.Create(ctx, item.Alias, item.URL)
		if err != nil {
			result.Errors = append(result.Errors, model.BulkError{
				Alias: item.Alias,
				Error: bulkReason(err),
				Err:   err,
			})
			continue
		}
		result.Created = append(result.Created, link)
	}

	result.Summary = model.BulkSummary{
		Total:   len(items),
		Created: len(result.Created),
		Failed:  len(result.Errors),
	}

	s.Logger.Info("bulk create finished",
		zap.Int("total", result.Summary.Total),
		zap.Int("created", result.Summary.Created),
		zap.Int("failed", result.Summary.Failed))
	return result
}

func bulkReason(err error) string {
	switch {
	case errors.Is(err, ErrDuplicateAlias):
		return ErrDuplicateAlias.Error()
	case errors.Is(err, ErrInvalidInput):
		return ErrInvalidInput.Error()
	case errors.Is(err, ErrStorageUnavailable):
		return ErrStorageUnavailable.Error()
	}
	return err.Error()
}

// Ping проверяет доступность таблицы.
func (s *AliasService) Ping(ctx context.Context) error {
	if err := s.Table.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	return nil
}

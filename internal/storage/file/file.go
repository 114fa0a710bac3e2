// Package file реализует storage.Table поверх журнала JSON-строк.
//
// Каждая мутация дописывается в журнал до применения в памяти, при старте
// журнал проигрывается заново.
package file

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/Totarae/shortr/internal/model"
	"github.com/Totarae/shortr/internal/storage"
)

var errJournalClosed = errors.New("journal is closed")

const (
	opPut    = "put"
	opDelete = "delete"
)

// Entry представляет одну строку журнала.
type Entry struct {
	Op   string           `json:"op"`
	Link *model.ShortLink `json:"link"`
}

// journal файл журнала; *os.File удовлетворяет ему.
type journal interface {
	io.Writer
	Sync() error
	Stat() (os.FileInfo, error)
	Truncate(size int64) error
	Close() error
}

// Table хранит записи в памяти и журналирует изменения в файл.
type Table struct {
	mu     sync.Mutex
	data   map[string]*model.ShortLink
	path   string
	file   journal
	logger *zap.Logger
}

var _ storage.Table = (*Table)(nil)

// New открывает (или создаёт) журнал и загружает из него данные.
func New(path string, logger *zap.Logger) (*Table, error) {
	t := &Table{
		data:   make(map[string]*model.ShortLink),
		path:   path,
		logger: logger,
	}

	good, corrupt, err := t.load()
	if err != nil {
		return nil, fmt.Errorf("load journal %q: %w", path, err)
	}
	if corrupt {
		// Новые записи должны идти сразу за последней целой
		if err := os.Truncate(path, good); err != nil {
			return nil, fmt.Errorf("truncate journal %q: %w", path, err)
		}
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open journal %q: %w", path, err)
	}
	if corrupt && good > 0 {
		if _, err := f.Write([]byte{'\n'}); err != nil {
			f.Close()
			return nil, fmt.Errorf("repair journal %q: %w", path, err)
		}
		if err := f.Sync(); err != nil {
			f.Close()
			return nil, fmt.Errorf("repair journal %q: %w", path, err)
		}
	}
	t.file = f
	return t, nil
}

// load проигрывает журнал. Возвращает смещение конца последней целой записи
// и признак повреждённого хвоста.
func (t *Table) load() (good int64, corrupt bool, err error) {
	f, err := os.Open(t.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, false, nil // Файл ещё не создан, это не ошибка
		}
		return 0, false, err
	}
	defer f.Close()

	decoder := json.NewDecoder(bufio.NewReader(f))
	lines := 0
	for {
		var entry Entry
		if err := decoder.Decode(&entry); err != nil {
			if !errors.Is(err, io.EOF) {
				corrupt = true
				t.logger.Warn("journal truncated at corrupt entry",
					zap.String("path", t.path), zap.Int("entry", lines+1),
					zap.Int64("offset", good), zap.Error(err))
			}
			break
		}
		good = decoder.InputOffset()
		lines++
		t.apply(entry)
	}

	t.logger.Info("journal loaded",
		zap.String("path", t.path), zap.Int("entries", lines), zap.Int("aliases", len(t.data)))
	return good, corrupt, nil
}

func (t *Table) apply(entry Entry) {
	if entry.Link == nil || entry.Link.Alias == "" {
		return
	}
	switch entry.Op {
	case opPut:
		t.data[entry.Link.Alias] = entry.Link.Clone()
	case opDelete:
		delete(t.data, entry.Link.Alias)
	}
}

// appendEntry дописывает запись в журнал. Вызывается под t.mu.
// При ошибке записи или Sync файл обрезается до прежнего размера.
func (t *Table) appendEntry(entry Entry) error {
	if t.file == nil {
		return errJournalClosed
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	info, err := t.file.Stat()
	if err != nil {
		return fmt.Errorf("stat journal: %w", err)
	}
	prev := info.Size()

	if _, err := t.file.Write(append(data, '\n')); err != nil {
		return t.rollback(prev, fmt.Errorf("append journal: %w", err))
	}
	if err := t.file.Sync(); err != nil {
		return t.rollback(prev, fmt.Errorf("sync journal: %w", err))
	}
	return nil
}

func (t *Table) rollback(size int64, cause error) error {
	if err := t.file.Truncate(size); err != nil {
		t.logger.Error("journal rollback failed",
			zap.String("path", t.path), zap.Int64("size", size), zap.Error(err))
		return errors.Join(cause, err)
	}
	return cause
}

// Insert добавляет запись, если алиас свободен.
func (t *Table) Insert(ctx context.Context, link *model.ShortLink) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.data[link.Alias]; exists {
		return storage.ErrAlreadyExists
	}
	entry := Entry{Op: opPut, Link: link.Clone()}
	if err := t.appendEntry(entry); err != nil {
		return err
	}
	t.apply(entry)
	return nil
}

// FindByKey возвращает копию записи.
func (t *Table) FindByKey(ctx context.Context, alias string) (*model.ShortLink, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	link, ok := t.data[alias]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return link.Clone(), nil
}

// FindAll возвращает все записи, отсортированные по алиасу.
func (t *Table) FindAll(ctx context.Context) ([]*model.ShortLink, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t.mu.Lock()
	links := make([]*model.ShortLink, 0, len(t.data))
	for _, link := range t.data {
		links = append(links, link.Clone())
	}
	t.mu.Unlock()

	sort.Slice(links, func(i, j int) bool { return links[i].Alias < links[j].Alias })
	return links, nil
}

// UpdateByKey применяет fn и журналирует результат.
func (t *Table) UpdateByKey(ctx context.Context, alias string, fn storage.Mutator) (*model.ShortLink, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	current, ok := t.data[alias]
	if !ok {
		return nil, storage.ErrNotFound
	}

	next := current.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	next.Alias = current.Alias
	next.CreatedAt = current.CreatedAt

	entry := Entry{Op: opPut, Link: next}
	if err := t.appendEntry(entry); err != nil {
		return nil, err
	}
	t.apply(entry)
	return next.Clone(), nil
}

// DeleteByKey удаляет запись.
func (t *Table) DeleteByKey(ctx context.Context, alias string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	link, ok := t.data[alias]
	if !ok {
		return storage.ErrNotFound
	}
	entry := Entry{Op: opDelete, Link: &model.ShortLink{Alias: link.Alias}}
	if err := t.appendEntry(entry); err != nil {
		return err
	}
	t.apply(entry)
	return nil
}

// Ping проверяет, что журнал открыт.
func (t *Table) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.file == nil {
		return errJournalClosed
	}
	return nil
}

// Close закрывает журнал.
func (t *Table) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.file == nil {
		return nil
	}
	err := t.file.Close()
	t.file = nil
	return err
}

// Package memory реализует storage.Table в памяти процесса.
package memory

import (
	"context"
	"hash/fnv"
	"sort"
	"sync"

	"github.com/Totarae/shortr/internal/model"
	"github.com/Totarae/shortr/internal/storage"
)

// DefaultShards число сегментов по умолчанию.
const DefaultShards = 32

type shard struct {
	mu   sync.RWMutex
	data map[string]*model.ShortLink
}

// Table хранит записи в сегментированной карте: каждый алиас всегда
// попадает в один и тот же сегмент, поэтому блокировка сегмента
// линеаризует все операции над этим алиасом.
type Table struct {
	shards []*shard
}

var _ storage.Table = (*Table)(nil)

// New создаёт таблицу с заданным числом сегментов (минимум 1).
func New(numShards int) *Table {
	if numShards < 1 {
		numShards = 1
	}
	t := &Table{shards: make([]*shard, numShards)}
	for i := range t.shards {
		t.shards[i] = &shard{data: make(map[string]*model.ShortLink)}
	}
	return t
}

func (t *Table) shardFor(alias string) *shard {
	if len(t.shards) == 1 {
		return t.shards[0]
	}
	h := fnv.New32a()
	h.Write([]byte(alias))
	return t.shards[h.Sum32()%uint32(len(t.shards))]
}

// Insert добавляет запись, если алиас свободен.
func (t *Table) Insert(ctx context.Context, link *model.ShortLink) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s := t.shardFor(link.Alias)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[link.Alias]; exists {
		return storage.ErrAlreadyExists
	}
	s.data[link.Alias] = link.Clone()
	return nil
}

// FindByKey возвращает копию записи.
func (t *Table) FindByKey(ctx context.Context, alias string) (*model.ShortLink, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s := t.shardFor(alias)
	s.mu.RLock()
	defer s.mu.RUnlock()

	link, ok := s.data[alias]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return link.Clone(), nil
}

// FindAll возвращает копии всех записей, отсортированные по алиасу.
func (t *Table) FindAll(ctx context.Context) ([]*model.ShortLink, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var links []*model.ShortLink
	for _, s := range t.shards {
		s.mu.RLock()
		for _, link := range s.data {
			links = append(links, link.Clone())
		}
		s.mu.RUnlock()
	}

	sort.Slice(links, func(i, j int) bool { return links[i].Alias < links[j].Alias })
	return links, nil
}

// UpdateByKey применяет fn к копии записи под блокировкой сегмента.
func (t *Table) UpdateByKey(ctx context.Context, alias string, fn storage.Mutator) (*model.ShortLink, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s := t.shardFor(alias)
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.data[alias]
	if !ok {
		return nil, storage.ErrNotFound
	}

	next := current.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	next.Alias = current.Alias
	next.CreatedAt = current.CreatedAt

	s.data[alias] = next
	return next.Clone(), nil
}

// DeleteByKey удаляет запись.
func (t *Table) DeleteByKey(ctx context.Context, alias string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s := t.shardFor(alias)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[alias]; !ok {
		return storage.ErrNotFound
	}
	delete(s.data, alias)
	return nil
}

// Len возвращает количество записей.
func (t *Table) Len() int {
	n := 0
	for _, s := range t.shards {
		s.mu.RLock()
		n += len(s.data)
		s.mu.RUnlock()
	}
	return n
}

// Ping всегда успешен.
func (t *Table) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Close ничего не делает.
func (t *Table) Close() error {
	return nil
}

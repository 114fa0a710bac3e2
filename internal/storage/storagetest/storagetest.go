// Package storagetest содержит общий набор проверок контракта storage.Table.
package storagetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Totarae/shortr/internal/model"
	"github.com/Totarae/shortr/internal/storage"
)

// Factory возвращает пустую таблицу для одного подтеста.
type Factory func(t *testing.T) storage.Table

func newLink(alias, url string) *model.ShortLink {
	return &model.ShortLink{
		Alias:     alias,
		URL:       url,
		CreatedAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

// Run прогоняет проверки контракта на таблице из factory.
func Run(t *testing.T, factory Factory) {
	t.Run("InsertAndFind", func(t *testing.T) {
		table := factory(t)
		ctx := context.Background()

		require.NoError(t, table.Insert(ctx, newLink("gh", "github.com")))

		got, err := table.FindByKey(ctx, "gh")
		require.NoError(t, err)
		assert.Equal(t, "gh", got.Alias)
		assert.Equal(t, "github.com", got.URL)
		assert.Equal(t, uint64(0), got.Count)
		assert.True(t, got.CreatedAt.Equal(newLink("", "").CreatedAt), "createdAt = %v", got.CreatedAt)
	})

	t.Run("InsertDuplicateKeepsOriginal", func(t *testing.T) {
		table := factory(t)
		ctx := context.Background()

		require.NoError(t, table.Insert(ctx, newLink("dup", "https://first.example")))
		err := table.Insert(ctx, newLink("dup", "https://second.example"))
		assert.ErrorIs(t, err, storage.ErrAlreadyExists)

		got, err := table.FindByKey(ctx, "dup")
		require.NoError(t, err)
		assert.Equal(t, "https://first.example", got.URL)
	})

	t.Run("FindMissing", func(t *testing.T) {
		table := factory(t)
		_, err := table.FindByKey(context.Background(), "nope")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("FindAll", func(t *testing.T) {
		table := factory(t)
		ctx := context.Background()

		for _, alias := range []string{"c", "a", "b"} {
			require.NoError(t, table.Insert(ctx, newLink(alias, "https://"+alias+".example")))
		}

		links, err := table.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, links, 3)

		aliases := make([]string, 0, len(links))
		for _, l := range links {
			aliases = append(aliases, l.Alias)
		}
		assert.ElementsMatch(t, []string{"a", "b", "c"}, aliases)
	})

	t.Run("UpdateByKeyKeepsImmutableFields", func(t *testing.T) {
		table := factory(t)
		ctx := context.Background()
		require.NoError(t, table.Insert(ctx, newLink("imm", "https://old.example")))

		updated, err := table.UpdateByKey(ctx, "imm", func(l *model.ShortLink) error {
			l.Alias = "renamed"
			l.URL = "https://new.example"
			l.Count = 7
			l.CreatedAt = time.Now()
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, "imm", updated.Alias)
		assert.Equal(t, "https://new.example", updated.URL)
		assert.Equal(t, uint64(7), updated.Count)

		got, err := table.FindByKey(ctx, "imm")
		require.NoError(t, err)
		assert.Equal(t, "https://new.example", got.URL)
		assert.Equal(t, uint64(7), got.Count)
		assert.True(t, got.CreatedAt.Equal(newLink("", "").CreatedAt))

		_, err = table.FindByKey(ctx, "renamed")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("UpdateByKeyMutatorErrorAborts", func(t *testing.T) {
		table := factory(t)
		ctx := context.Background()
		require.NoError(t, table.Insert(ctx, newLink("abort", "https://keep.example")))

		boom := errors.New("boom")
		_, err := table.UpdateByKey(ctx, "abort", func(l *model.ShortLink) error {
			l.URL = "https://lost.example"
			return boom
		})
		assert.ErrorIs(t, err, boom)

		got, err := table.FindByKey(ctx, "abort")
		require.NoError(t, err)
		assert.Equal(t, "https://keep.example", got.URL)
	})

	t.Run("UpdateByKeyMissing", func(t *testing.T) {
		table := factory(t)
		called := false
		_, err := table.UpdateByKey(context.Background(), "ghost", func(*model.ShortLink) error {
			called = true
			return nil
		})
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.False(t, called)
	})

	t.Run("DeleteByKey", func(t *testing.T) {
		table := factory(t)
		ctx := context.Background()
		require.NoError(t, table.Insert(ctx, newLink("del", "https://del.example")))

		require.NoError(t, table.DeleteByKey(ctx, "del"))
		_, err := table.FindByKey(ctx, "del")
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.ErrorIs(t, table.DeleteByKey(ctx, "del"), storage.ErrNotFound)

		// Алиас снова свободен.
		assert.NoError(t, table.Insert(ctx, newLink("del", "https://again.example")))
	})

	t.Run("ConcurrentIncrements", func(t *testing.T) {
		table := factory(t)
		ctx := context.Background()
		require.NoError(t, table.Insert(ctx, newLink("hot", "https://hot.example")))

		const workers = 50
		var wg sync.WaitGroup
		errs := make(chan error, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := table.UpdateByKey(ctx, "hot", func(l *model.ShortLink) error {
					l.Count++
					return nil
				})
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		for err := range errs {
			require.NoError(t, err)
		}

		got, err := table.FindByKey(ctx, "hot")
		require.NoError(t, err)
		assert.Equal(t, uint64(workers), got.Count)
	})

	t.Run("ConcurrentInsertSingleWinner", func(t *testing.T) {
		table := factory(t)
		ctx := context.Background()

		const writers = 20
		var wg sync.WaitGroup
		results := make(chan error, writers)
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results <- table.Insert(ctx, newLink("race", fmt.Sprintf("https://w%d.example", i)))
			}(i)
		}
		wg.Wait()
		close(results)

		wins := 0
		for err := range results {
			if err == nil {
				wins++
				continue
			}
			assert.ErrorIs(t, err, storage.ErrAlreadyExists)
		}
		assert.Equal(t, 1, wins)
	})

	t.Run("Ping", func(t *testing.T) {
		table := factory(t)
		assert.NoError(t, table.Ping(context.Background()))
	})
}

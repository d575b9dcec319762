package repository_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/amirphl/taskserial/repository"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequenceCounterRedisRepository(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { client.Close() })

	repo := repository.NewSequenceCounterRedisRepository(client, "taskserial:", time.Second)
	ctx := context.Background()

	t.Run("starts at one and increments", func(t *testing.T) {
		first, err := repo.NextValue(ctx, "WD")
		require.NoError(t, err)
		second, err := repo.NextValue(ctx, "WD")
		require.NoError(t, err)

		assert.Equal(t, uint64(1), first)
		assert.Equal(t, uint64(2), second)

		stored, err := server.Get("taskserial:seq:WD")
		require.NoError(t, err)
		assert.Equal(t, "2", stored)
	})

	t.Run("continues from an existing value", func(t *testing.T) {
		require.NoError(t, server.Set("taskserial:seq:CS", "5"))

		value, err := repo.NextValue(ctx, "CS")
		require.NoError(t, err)
		assert.Equal(t, uint64(6), value)
	})

	t.Run("concurrent allocations are contiguous", func(t *testing.T) {
		const workers = 50
		seen := make(map[uint64]bool)
		var (
			mu sync.Mutex
			wg sync.WaitGroup
		)
		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				value, err := repo.NextValue(ctx, "QA")
				assert.NoError(t, err)
				mu.Lock()
				seen[value] = true
				mu.Unlock()
			}()
		}
		wg.Wait()

		require.Len(t, seen, workers)
		for i := uint64(1); i <= workers; i++ {
			assert.True(t, seen[i], "missing %d", i)
		}
	})

	t.Run("unreachable server is unavailable", func(t *testing.T) {
		down := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 100 * time.Millisecond})
		defer down.Close()

		_, err := repository.NewSequenceCounterRedisRepository(down, "taskserial:", time.Second).NextValue(ctx, "WD")
		assert.ErrorIs(t, err, repository.ErrStoreUnavailable)
	})
}

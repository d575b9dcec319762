package businessflow

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/amirphl/taskserial/repository"
	"github.com/amirphl/taskserial/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSerialNumber(t *testing.T) {
	env := newFlowEnv(t)
	ctx := context.Background()

	t.Run("fresh prefix starts at one", func(t *testing.T) {
		first, err := env.serials.GenerateSerialNumber(ctx, "WD")
		require.NoError(t, err)
		second, err := env.serials.GenerateSerialNumber(ctx, "WD")
		require.NoError(t, err)

		assert.Equal(t, "WD-00001", first)
		assert.Equal(t, "WD-00002", second)
	})

	t.Run("continues after existing counter", func(t *testing.T) {
		require.NoError(t, env.fixtures.SeedCounter("CS", 5))

		first, err := env.serials.GenerateSerialNumber(ctx, "CS")
		require.NoError(t, err)
		second, err := env.serials.GenerateSerialNumber(ctx, "CS")
		require.NoError(t, err)

		assert.Equal(t, "CS-00006", first)
		assert.Equal(t, "CS-00007", second)
	})

	t.Run("prefix is trimmed and uppercased", func(t *testing.T) {
		serial, err := env.serials.GenerateSerialNumber(ctx, "  res ")
		require.NoError(t, err)
		assert.Equal(t, "RES-00001", serial)
	})

	t.Run("numbers wider than five digits are not truncated", func(t *testing.T) {
		require.NoError(t, env.fixtures.SeedCounter("BIG", 99999))

		serial, err := env.serials.GenerateSerialNumber(ctx, "BIG")
		require.NoError(t, err)
		assert.Equal(t, "BIG-100000", serial)
		assert.True(t, utils.ValidateSerialNumber(serial))
	})

	t.Run("output round-trips through the parser", func(t *testing.T) {
		serial, err := env.serials.GenerateSerialNumber(ctx, "Z9")
		require.NoError(t, err)

		parsed, ok := utils.ParseSerialNumber(serial)
		require.True(t, ok)
		assert.Equal(t, utils.SerialNumber{Prefix: "Z9", Number: 1}, parsed)
	})
}

func TestGenerateSerialNumberRejectsInvalidPrefixWithoutTouchingStore(t *testing.T) {
	store := newMemorySequenceStore()
	flow := NewSerialNumberFlow(store, nil, quietLogger())

	for _, prefix := range []string{"", "   ", "TOOLONG", "W-D", "WD!", "ÄB"} {
		t.Run(fmt.Sprintf("%q", prefix), func(t *testing.T) {
			serial, err := flow.GenerateSerialNumber(context.Background(), prefix)
			assert.Empty(t, serial)
			assert.ErrorIs(t, err, ErrInvalidFormat)
			assert.Equal(t, KindInvalidFormat, KindOf(err))
		})
	}

	assert.Zero(t, store.callCount())
}

func TestGenerateSerialNumberSurfacesStoreFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind ErrorKind
	}{
		{"conflict", fmt.Errorf("%w: 40001", repository.ErrSerializationConflict), KindSerializationConflict},
		{"unavailable", fmt.Errorf("%w: connection refused", repository.ErrStoreUnavailable), KindStoreUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemorySequenceStore()
			store.err = tt.err
			flow := NewSerialNumberFlow(store, nil, quietLogger())

			serial, err := flow.GenerateSerialNumber(context.Background(), "WD")
			assert.Empty(t, serial)
			assert.Equal(t, tt.kind, KindOf(err))
			assert.Equal(t, tt.kind == KindStoreUnavailable, IsStoreUnavailable(err))
			assert.Equal(t, 1, store.callCount())
		})
	}
}

func TestGenerateSerialNumberConcurrent(t *testing.T) {
	env := newFlowEnv(t)
	ctx := context.Background()

	const workers = 30
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		numbers []uint64
		errs    []error
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			serial, err := env.serials.GenerateSerialNumber(ctx, "QA")
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			parsed, ok := utils.ParseSerialNumber(serial)
			if !ok {
				errs = append(errs, fmt.Errorf("unparseable serial %q", serial))
				return
			}
			numbers = append(numbers, parsed.Number)
		}()
	}
	wg.Wait()

	require.Empty(t, errs)
	require.Len(t, numbers, workers)
	sort.Slice(numbers, func(i, j int) bool { return numbers[i] < numbers[j] })
	for i, n := range numbers {
		assert.Equal(t, uint64(i+1), n)
	}
}

func TestGenerateForCategory(t *testing.T) {
	env := newFlowEnv(t)
	ctx := context.Background()

	research, err := env.fixtures.CreateTestCategory("Research", utils.ToPtr("RES"))
	require.NoError(t, err)
	unassigned, err := env.fixtures.CreateTestCategory("Backlog", nil)
	require.NoError(t, err)

	t.Run("uses the category prefix", func(t *testing.T) {
		serial, err := env.serials.GenerateForCategory(ctx, research.UUID.String())
		require.NoError(t, err)
		assert.Equal(t, "RES-00001", serial)
	})

	t.Run("missing category", func(t *testing.T) {
		_, err := env.serials.GenerateForCategory(ctx, uuid.NewString())
		assert.ErrorIs(t, err, ErrCategoryNotFound)
		assert.Equal(t, KindNotFound, KindOf(err))
	})

	t.Run("category without prefix", func(t *testing.T) {
		_, err := env.serials.GenerateForCategory(ctx, unassigned.UUID.String())
		assert.True(t, IsPrefixNotAssigned(err))
		assert.Equal(t, KindPrefixNotAssigned, KindOf(err))

		count, err := env.fixtures.CountCounters()
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("malformed category id", func(t *testing.T) {
		_, err := env.serials.GenerateForCategory(ctx, "not-a-uuid")
		assert.True(t, IsInvalidCategoryID(err))
		assert.Equal(t, KindNotFound, KindOf(err))

		_, err = env.registry.PrefixOf(ctx, "not-a-uuid")
		assert.Equal(t, KindNotFound, KindOf(err))
	})
}

func TestCheckPrefixUniqueness(t *testing.T) {
	env := newFlowEnv(t)
	ctx := context.Background()

	_, err := env.fixtures.CreateTestCategory("Web Development", utils.ToPtr("WD"))
	require.NoError(t, err)

	unique, err := env.serials.CheckPrefixUniqueness(ctx, "wd")
	require.NoError(t, err)
	assert.False(t, unique)

	unique, err = env.serials.CheckPrefixUniqueness(ctx, "OPS")
	require.NoError(t, err)
	assert.True(t, unique)

	count, err := env.fixtures.CountCounters()
	require.NoError(t, err)
	assert.Zero(t, count)
}

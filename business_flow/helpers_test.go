package businessflow

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/amirphl/taskserial/repository"
	testingutil "github.com/amirphl/taskserial/testing"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// memorySequenceStore is an in-process sequence store that records every call
type memorySequenceStore struct {
	mu       sync.Mutex
	counters map[string]uint64
	calls    []string
	err      error
}

func newMemorySequenceStore() *memorySequenceStore {
	return &memorySequenceStore{counters: make(map[string]uint64)}
}

func (s *memorySequenceStore) NextValue(ctx context.Context, prefix string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, prefix)
	if s.err != nil {
		return 0, s.err
	}
	s.counters[prefix]++
	return s.counters[prefix], nil
}

func (s *memorySequenceStore) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type flowEnv struct {
	db           *testingutil.TestDB
	fixtures     *testingutil.TestFixtures
	categoryRepo repository.TaskCategoryRepository
	sequenceRepo repository.SequenceCounterRepository
	registry     PrefixRegistry
	serials      SerialNumberFlow
	categories   CategoryFlow
}

// newFlowEnv wires the flows against a fresh database
func newFlowEnv(t *testing.T) *flowEnv {
	t.Helper()

	testDB, err := testingutil.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { testDB.TeardownTestDB() })

	categoryRepo := repository.NewTaskCategoryRepository(testDB.DB)
	sequenceRepo := repository.NewRetryingSequenceCounterRepository(
		repository.NewSequenceCounterRepository(testDB.DB, repository.SequenceStoreOptions{}),
		repository.RetryPolicy{Attempts: 10},
		quietLogger(),
	)
	registry := NewPrefixRegistry(categoryRepo)

	return &flowEnv{
		db:           testDB,
		fixtures:     testingutil.NewTestFixtures(testDB),
		categoryRepo: categoryRepo,
		sequenceRepo: sequenceRepo,
		registry:     registry,
		serials:      NewSerialNumberFlow(sequenceRepo, registry, quietLogger()),
		categories:   NewCategoryFlow(categoryRepo, registry, quietLogger()),
	}
}

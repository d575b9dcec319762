package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/amirphl/taskserial/utils"
	"github.com/redis/go-redis/v9"
)

// SequenceCounterRedisRepository allocates numbers with INCR, which creates missing keys at 1
type SequenceCounterRedisRepository struct {
	client    redis.UniversalClient
	keyPrefix string
	timeout   time.Duration
}

// NewSequenceCounterRedisRepository creates a Redis backed sequence store.
// Keys are laid out as {keyPrefix}seq:{PREFIX}.
func NewSequenceCounterRedisRepository(client redis.UniversalClient, keyPrefix string, timeout time.Duration) SequenceCounterRepository {
	if timeout <= 0 {
		timeout = utils.SequenceTimeout
	}
	return &SequenceCounterRedisRepository{
		client:    client,
		keyPrefix: keyPrefix,
		timeout:   timeout,
	}
}

func (r *SequenceCounterRedisRepository) key(prefix string) string {
	return fmt.Sprintf("%sseq:%s", r.keyPrefix, prefix)
}

// NextValue increments the prefix key atomically
func (r *SequenceCounterRedisRepository) NextValue(ctx context.Context, prefix string) (uint64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	value, err := r.client.Incr(ctx, r.key(prefix)).Result()
	if err != nil {
		return 0, classifyStoreError(err)
	}
	if value <= 0 {
		return 0, fmt.Errorf("%w: counter %s holds non-positive value %d", ErrStoreUnavailable, r.key(prefix), value)
	}

	return uint64(value), nil
}

package repository

import (
	"context"

	"github.com/amirphl/taskserial/models"
	"github.com/google/uuid"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// SequenceCounterRepository hands out per-prefix monotonic numbers.
// NextValue returns 1 for a prefix that was never seen and the previous value plus one otherwise.
// Errors wrap ErrSerializationConflict or ErrStoreUnavailable; in both cases no number was consumed.
type SequenceCounterRepository interface {
	NextValue(ctx context.Context, prefix string) (uint64, error)
}

// TaskCategoryRepository defines operations for task categories
type TaskCategoryRepository interface {
	Repository[models.TaskCategory, models.TaskCategoryFilter]
	ByUUID(ctx context.Context, id uuid.UUID) (*models.TaskCategory, error)
	ByPrefix(ctx context.Context, prefix string) (*models.TaskCategory, error)
	PrefixExists(ctx context.Context, prefix string) (bool, error)
	UpdatePrefix(ctx context.Context, id uint, prefix string) error
}

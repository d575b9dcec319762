package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/amirphl/taskserial/models"
	"github.com/amirphl/taskserial/utils"
	"gorm.io/gorm"
)

// SequenceStoreOptions bounds a single allocation transaction
type SequenceStoreOptions struct {
	// MaxWait is the longest the transaction waits for a lock held by another allocation
	MaxWait time.Duration
	// Timeout is the deadline for the whole transaction
	Timeout time.Duration
}

// SequenceCounterRepositoryImpl allocates numbers from the sequence_counters table
type SequenceCounterRepositoryImpl struct {
	*BaseRepository[models.SequenceCounter, struct{}]
	opts SequenceStoreOptions
}

// NewSequenceCounterRepository creates a database backed sequence store
func NewSequenceCounterRepository(db *gorm.DB, opts SequenceStoreOptions) SequenceCounterRepository {
	if opts.MaxWait <= 0 {
		opts.MaxWait = utils.SequenceMaxWait
	}
	if opts.Timeout <= 0 {
		opts.Timeout = utils.SequenceTimeout
	}
	return &SequenceCounterRepositoryImpl{
		BaseRepository: NewBaseRepository[models.SequenceCounter, struct{}](db),
		opts:           opts,
	}
}

// NextValue runs one serializable transaction that creates the counter at 1 or increments it by one.
// A transaction that fails commits nothing.
func (r *SequenceCounterRepositoryImpl) NextValue(ctx context.Context, prefix string) (uint64, error) {
	txCtx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	var next uint64
	err := r.DB.WithContext(txCtx).Transaction(func(tx *gorm.DB) error {
		if err := r.setLockTimeout(tx); err != nil {
			return err
		}

		now := utils.UTCNow()

		var counter models.SequenceCounter
		err := tx.Where("prefix = ?", prefix).Take(&counter).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			counter = models.SequenceCounter{
				Prefix:        prefix,
				CurrentNumber: 1,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if err := tx.Create(&counter).Error; err != nil {
				return err
			}
			next = 1
			return nil
		}
		if err != nil {
			return err
		}

		result := tx.Model(&models.SequenceCounter{}).
			Where("prefix = ? AND current_number = ?", prefix, counter.CurrentNumber).
			Updates(map[string]any{
				"current_number": counter.CurrentNumber + 1,
				"updated_at":     now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected != 1 {
			return fmt.Errorf("%w: counter for %s moved during increment", ErrSerializationConflict, prefix)
		}

		next = counter.CurrentNumber + 1
		return nil
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		// Drivers report an interrupted statement in their own words; keep the deadline visible
		if errors.Is(txCtx.Err(), context.DeadlineExceeded) && !errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %w", context.DeadlineExceeded, err)
		}
		return 0, classifyStoreError(err)
	}

	return next, nil
}

// setLockTimeout caps lock waits inside the current transaction.
// SQLite waits through its busy timeout instead.
func (r *SequenceCounterRepositoryImpl) setLockTimeout(tx *gorm.DB) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	return tx.Exec(fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.opts.MaxWait.Milliseconds())).Error
}

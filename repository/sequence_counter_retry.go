package repository

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
)

// RetryPolicy bounds how often a conflicting allocation is retried
type RetryPolicy struct {
	Attempts        int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// RetryingSequenceCounterRepository retries allocations that lost a serialization race.
// Any other failure is returned on the first occurrence.
type RetryingSequenceCounterRepository struct {
	next   SequenceCounterRepository
	policy RetryPolicy
	logger logrus.FieldLogger
}

// NewRetryingSequenceCounterRepository wraps a sequence store with bounded exponential backoff
func NewRetryingSequenceCounterRepository(next SequenceCounterRepository, policy RetryPolicy, logger logrus.FieldLogger) SequenceCounterRepository {
	if policy.Attempts < 0 {
		policy.Attempts = 0
	}
	if policy.InitialInterval <= 0 {
		policy.InitialInterval = 20 * time.Millisecond
	}
	if policy.MaxInterval < policy.InitialInterval {
		policy.MaxInterval = policy.InitialInterval
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &RetryingSequenceCounterRepository{
		next:   next,
		policy: policy,
		logger: logger,
	}
}

func (r *RetryingSequenceCounterRepository) NextValue(ctx context.Context, prefix string) (uint64, error) {
	operation := func() (uint64, error) {
		value, err := r.next.NextValue(ctx, prefix)
		if err == nil {
			return value, nil
		}
		if errors.Is(err, ErrSerializationConflict) && ctx.Err() == nil {
			return 0, err
		}
		return 0, backoff.Permanent(err)
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = r.policy.InitialInterval
	expo.MaxInterval = r.policy.MaxInterval
	expo.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(expo, uint64(r.policy.Attempts)), ctx)

	notify := func(err error, wait time.Duration) {
		r.logger.WithError(err).WithFields(logrus.Fields{
			"prefix": prefix,
			"wait":   wait.String(),
		}).Warn("Serial allocation conflicted, retrying")
	}

	value, err := backoff.RetryNotifyWithData(operation, policy, notify)
	if err != nil {
		if errors.Is(err, ErrSerializationConflict) {
			r.logger.WithError(err).WithField("prefix", prefix).Error("Serial allocation retries exhausted")
		}
		return 0, classifyStoreError(err)
	}

	return value, nil
}

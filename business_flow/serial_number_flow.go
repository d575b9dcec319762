package businessflow

import (
	"context"
	"fmt"
	"time"

	"github.com/amirphl/taskserial/repository"
	"github.com/amirphl/taskserial/utils"
	"github.com/sirupsen/logrus"
)

// SerialNumberFlow mints task serial numbers of the form PREFIX-NNNNN.
// Numbers are strictly increasing per prefix and never reused; a failed call consumes nothing,
// but a number returned to a caller that then drops it is gone.
type SerialNumberFlow interface {
	GenerateSerialNumber(ctx context.Context, prefix string) (string, error)
	GenerateForCategory(ctx context.Context, categoryID string) (string, error)
	CheckPrefixUniqueness(ctx context.Context, prefix string) (bool, error)
}

type SerialNumberFlowImpl struct {
	sequenceRepo repository.SequenceCounterRepository
	registry     PrefixRegistry
	logger       logrus.FieldLogger
}

func NewSerialNumberFlow(sequenceRepo repository.SequenceCounterRepository, registry PrefixRegistry, logger logrus.FieldLogger) SerialNumberFlow {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &SerialNumberFlowImpl{
		sequenceRepo: sequenceRepo,
		registry:     registry,
		logger:       logger,
	}
}

// GenerateSerialNumber normalizes prefix and allocates its next number.
// Malformed prefixes are rejected before the sequence store is touched.
func (f *SerialNumberFlowImpl) GenerateSerialNumber(ctx context.Context, prefix string) (serial string, err error) {
	start := time.Now()
	normalized := utils.NormalizePrefix(prefix)

	var number uint64
	defer func() {
		observeAllocation(normalized, number, err, time.Since(start))
	}()

	if !utils.IsValidPrefix(normalized) {
		return "", fmt.Errorf("%w: %q must be 1-%d characters of A-Z and 0-9", ErrInvalidFormat, prefix, utils.PrefixMaxLength)
	}

	number, err = f.sequenceRepo.NextValue(ctx, normalized)
	if err != nil {
		f.logger.WithError(err).WithFields(logrus.Fields{
			"prefix": normalized,
			"kind":   KindOf(err).String(),
		}).Warn("Serial number allocation failed")
		return "", err
	}

	serial = utils.FormatSerialNumber(normalized, number)
	f.logger.WithFields(logrus.Fields{
		"prefix":        normalized,
		"serial_number": serial,
	}).Debug("Serial number allocated")

	return serial, nil
}

// GenerateForCategory allocates under the prefix assigned to a category
func (f *SerialNumberFlowImpl) GenerateForCategory(ctx context.Context, categoryID string) (string, error) {
	prefix, err := f.registry.PrefixOf(ctx, categoryID)
	if err != nil {
		return "", err
	}
	if prefix == nil || *prefix == "" {
		return "", fmt.Errorf("%w: category %s", ErrPrefixNotAssigned, categoryID)
	}

	return f.GenerateSerialNumber(ctx, *prefix)
}

// CheckPrefixUniqueness reports whether no category owns prefix yet
func (f *SerialNumberFlowImpl) CheckPrefixUniqueness(ctx context.Context, prefix string) (bool, error) {
	return f.registry.IsPrefixUnique(ctx, utils.NormalizePrefix(prefix))
}

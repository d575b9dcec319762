package businessflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/amirphl/taskserial/app/dto"
	"github.com/amirphl/taskserial/models"
	"github.com/amirphl/taskserial/repository"
	"github.com/amirphl/taskserial/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CategoryFlow creates task categories and manages their prefixes
type CategoryFlow interface {
	CreateCategory(ctx context.Context, req *dto.CreateCategoryRequest, metadata *ClientMetadata) (*dto.CategoryDTO, error)
	AssignPrefix(ctx context.Context, categoryID string, req *dto.AssignPrefixRequest, metadata *ClientMetadata) (*dto.CategoryDTO, error)
}

type CategoryFlowImpl struct {
	categoryRepo repository.TaskCategoryRepository
	registry     PrefixRegistry
	logger       logrus.FieldLogger
}

func NewCategoryFlow(categoryRepo repository.TaskCategoryRepository, registry PrefixRegistry, logger logrus.FieldLogger) CategoryFlow {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &CategoryFlowImpl{
		categoryRepo: categoryRepo,
		registry:     registry,
		logger:       logger,
	}
}

// CreateCategory stores a new category, optionally claiming a prefix for it
func (f *CategoryFlowImpl) CreateCategory(ctx context.Context, req *dto.CreateCategoryRequest, metadata *ClientMetadata) (result *dto.CategoryDTO, err error) {
	defer func() {
		if err != nil {
			err = NewBusinessError("CREATE_CATEGORY_FAILED", "Failed to create category", err)
		}
	}()

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrCategoryNameRequired
	}

	category := &models.TaskCategory{
		Name:        name,
		Description: req.Description,
		IsActive:    utils.ToPtr(true),
	}

	if req.Prefix != nil {
		prefix, err := f.claimablePrefix(ctx, *req.Prefix)
		if err != nil {
			return nil, err
		}
		category.Prefix = &prefix
	}

	if err := f.categoryRepo.Save(ctx, category); err != nil {
		return nil, translateCategoryWriteError(err)
	}

	f.logger.WithFields(metadataFields(metadata)).WithFields(logrus.Fields{
		"category_id": category.UUID.String(),
		"prefix":      stringOrEmpty(category.Prefix),
	}).Info("Task category created")

	out := ToCategoryDTO(*category)
	return &out, nil
}

// AssignPrefix sets or replaces the prefix of an existing category.
// Counters of a previous prefix are left untouched, so its numbers are never reissued.
func (f *CategoryFlowImpl) AssignPrefix(ctx context.Context, categoryID string, req *dto.AssignPrefixRequest, metadata *ClientMetadata) (result *dto.CategoryDTO, err error) {
	defer func() {
		if err != nil {
			err = NewBusinessError("ASSIGN_PREFIX_FAILED", "Failed to assign prefix", err)
		}
	}()

	category, err := loadCategory(ctx, f.categoryRepo, categoryID)
	if err != nil {
		return nil, err
	}

	normalized := utils.NormalizePrefix(req.Prefix)
	if category.Prefix != nil && *category.Prefix == normalized {
		out := ToCategoryDTO(*category)
		return &out, nil
	}

	prefix, err := f.claimablePrefix(ctx, normalized)
	if err != nil {
		return nil, err
	}

	if err := f.categoryRepo.UpdatePrefix(ctx, category.ID, prefix); err != nil {
		return nil, translateCategoryWriteError(err)
	}

	updated, err := f.categoryRepo.ByID(ctx, category.ID)
	if err != nil {
		return nil, storeReadError(err)
	}
	if updated == nil {
		return nil, ErrCategoryNotFound
	}

	f.logger.WithFields(metadataFields(metadata)).WithFields(logrus.Fields{
		"category_id":     categoryID,
		"prefix":          prefix,
		"previous_prefix": stringOrEmpty(category.Prefix),
	}).Info("Task category prefix assigned")

	out := ToCategoryDTO(*updated)
	return &out, nil
}

// claimablePrefix validates and normalizes a requested prefix and checks it is still free.
// The unique index remains the final arbiter between concurrent claims.
func (f *CategoryFlowImpl) claimablePrefix(ctx context.Context, requested string) (string, error) {
	prefix := utils.NormalizePrefix(requested)
	if !utils.IsValidPrefix(prefix) {
		return "", fmt.Errorf("%w: %q", ErrInvalidFormat, requested)
	}

	unique, err := f.registry.IsPrefixUnique(ctx, prefix)
	if err != nil {
		return "", err
	}
	if !unique {
		owner, err := f.categoryRepo.ByPrefix(ctx, prefix)
		if err == nil && owner != nil {
			return "", fmt.Errorf("%w: %s is assigned to category %q", ErrPrefixAlreadyTaken, prefix, owner.Name)
		}
		return "", fmt.Errorf("%w: %s", ErrPrefixAlreadyTaken, prefix)
	}
	return prefix, nil
}

func translateCategoryWriteError(err error) error {
	switch {
	case errors.Is(err, repository.ErrTaskCategoryPrefixTaken):
		return fmt.Errorf("%w: %w", ErrPrefixAlreadyTaken, err)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrCategoryNotFound
	default:
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
}

func metadataFields(metadata *ClientMetadata) logrus.Fields {
	if metadata == nil {
		return logrus.Fields{}
	}
	return logrus.Fields{
		"ip_address": metadata.IPAddress,
		"user_agent": metadata.UserAgent,
		"request_id": metadata.RequestID,
		"subject":    metadata.Subject,
	}
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

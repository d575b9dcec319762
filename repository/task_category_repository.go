package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amirphl/taskserial/models"
	"github.com/amirphl/taskserial/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrTaskCategoryPrefixTaken is returned when a write collides with the unique prefix index
var ErrTaskCategoryPrefixTaken = errors.New("task category prefix already taken")

// TaskCategoryRepositoryImpl implements TaskCategoryRepository interface
type TaskCategoryRepositoryImpl struct {
	*BaseRepository[models.TaskCategory, models.TaskCategoryFilter]
}

// NewTaskCategoryRepository creates a new task category repository
func NewTaskCategoryRepository(db *gorm.DB) TaskCategoryRepository {
	return &TaskCategoryRepositoryImpl{
		BaseRepository: NewBaseRepository[models.TaskCategory, models.TaskCategoryFilter](db),
	}
}

// ByUUID retrieves a category by its external identifier
func (r *TaskCategoryRepositoryImpl) ByUUID(ctx context.Context, id uuid.UUID) (*models.TaskCategory, error) {
	items, err := r.ByFilter(ctx, models.TaskCategoryFilter{UUID: &id}, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items[0], nil
}

// ByPrefix retrieves the category owning prefix, case-insensitively
func (r *TaskCategoryRepositoryImpl) ByPrefix(ctx context.Context, prefix string) (*models.TaskCategory, error) {
	normalized := utils.NormalizePrefix(prefix)
	items, err := r.ByFilter(ctx, models.TaskCategoryFilter{Prefix: &normalized}, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items[0], nil
}

// PrefixExists reports whether any category owns prefix
func (r *TaskCategoryRepositoryImpl) PrefixExists(ctx context.Context, prefix string) (bool, error) {
	normalized := utils.NormalizePrefix(prefix)
	return r.Exists(ctx, models.TaskCategoryFilter{Prefix: &normalized})
}

// Save inserts a new category, reporting prefix collisions as ErrTaskCategoryPrefixTaken
func (r *TaskCategoryRepositoryImpl) Save(ctx context.Context, category *models.TaskCategory) error {
	prepareCategory(category, utils.UTCNow())

	if err := r.BaseRepository.Save(ctx, category); err != nil {
		return translateCategoryInsertError(err)
	}
	return nil
}

// SaveBatch inserts several categories in one transaction; one prefix collision rejects them all
func (r *TaskCategoryRepositoryImpl) SaveBatch(ctx context.Context, categories []*models.TaskCategory) error {
	now := utils.UTCNow()
	for _, category := range categories {
		prepareCategory(category, now)
	}

	if err := r.BaseRepository.SaveBatch(ctx, categories); err != nil {
		return translateCategoryInsertError(err)
	}
	return nil
}

func prepareCategory(category *models.TaskCategory, now time.Time) {
	if category.UUID == uuid.Nil {
		category.UUID = uuid.New()
	}
	if category.IsActive == nil {
		category.IsActive = utils.ToPtr(true)
	}
	if category.Prefix != nil {
		category.Prefix = utils.ToPtr(utils.NormalizePrefix(*category.Prefix))
	}
	if category.CreatedAt.IsZero() {
		category.CreatedAt = now
	}
	category.UpdatedAt = now
}

func translateCategoryInsertError(err error) error {
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %w", ErrTaskCategoryPrefixTaken, err)
	}
	return err
}

// UpdatePrefix assigns prefix to the category with the given ID
func (r *TaskCategoryRepositoryImpl) UpdatePrefix(ctx context.Context, id uint, prefix string) error {
	db := r.getDB(ctx)

	result := db.Model(&models.TaskCategory{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"prefix":     utils.NormalizePrefix(prefix),
			"updated_at": utils.UTCNow(),
		})
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return fmt.Errorf("%w: %w", ErrTaskCategoryPrefixTaken, result.Error)
		}
		return fmt.Errorf("failed to update prefix of category %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// applyFilter applies filter criteria to a GORM query
func (r *TaskCategoryRepositoryImpl) applyFilter(query *gorm.DB, filter models.TaskCategoryFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.Name != nil {
		query = query.Where("name = ?", *filter.Name)
	}
	if filter.Prefix != nil {
		query = query.Where("prefix = ?", *filter.Prefix)
	}
	if filter.HasPrefix != nil {
		if *filter.HasPrefix {
			query = query.Where("prefix IS NOT NULL")
		} else {
			query = query.Where("prefix IS NULL")
		}
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves task categories based on filter criteria
func (r *TaskCategoryRepositoryImpl) ByFilter(ctx context.Context, filter models.TaskCategoryFilter, orderBy string, limit, offset int) ([]*models.TaskCategory, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.TaskCategory{})

	query = r.applyFilter(query, filter)

	if orderBy == "" {
		orderBy = "id DESC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var categories []*models.TaskCategory
	if err := query.Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// Count returns the number of task categories matching the filter
func (r *TaskCategoryRepositoryImpl) Count(ctx context.Context, filter models.TaskCategoryFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.TaskCategory{})
	query = r.applyFilter(query, filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any task category matching the filter exists
func (r *TaskCategoryRepositoryImpl) Exists(ctx context.Context, filter models.TaskCategoryFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

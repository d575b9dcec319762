package testing

import (
	"fmt"
	"math/rand"

	"github.com/amirphl/taskserial/models"
	"github.com/amirphl/taskserial/utils"
	"github.com/google/uuid"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestCategory inserts a category named name with an optional prefix
func (tf *TestFixtures) CreateTestCategory(name string, prefix *string) (*models.TaskCategory, error) {
	now := utils.UTCNow()
	category := &models.TaskCategory{
		UUID:      uuid.New(),
		Name:      name,
		Prefix:    prefix,
		IsActive:  utils.ToPtr(true),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if category.Name == "" {
		category.Name = fmt.Sprintf("Category %d", rand.Intn(1000000))
	}

	if err := tf.DB.DB.Create(category).Error; err != nil {
		return nil, fmt.Errorf("failed to create test category %s: %w", category.Name, err)
	}
	return category, nil
}

// SeedCounter sets the current number of prefix, creating the counter when needed
func (tf *TestFixtures) SeedCounter(prefix string, current uint64) error {
	now := utils.UTCNow()
	counter := &models.SequenceCounter{
		Prefix:        prefix,
		CurrentNumber: current,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := tf.DB.DB.Save(counter).Error; err != nil {
		return fmt.Errorf("failed to seed counter %s: %w", prefix, err)
	}
	return nil
}

// CounterValue reads the current number stored for prefix; ok is false when no row exists
func (tf *TestFixtures) CounterValue(prefix string) (current uint64, ok bool, err error) {
	var counters []models.SequenceCounter
	if err := tf.DB.DB.Where("prefix = ?", prefix).Limit(1).Find(&counters).Error; err != nil {
		return 0, false, err
	}
	if len(counters) == 0 {
		return 0, false, nil
	}
	return counters[0].CurrentNumber, true, nil
}

// CountCounters returns how many counter rows exist
func (tf *TestFixtures) CountCounters() (int64, error) {
	var count int64
	err := tf.DB.DB.Model(&models.SequenceCounter{}).Count(&count).Error
	return count, err
}

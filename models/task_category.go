package models

import (
	"time"

	"github.com/google/uuid"
)

// TaskCategory groups tasks and owns the prefix their serial numbers are minted under
// Table: task_categories
// UUID is the external category identifier
// Prefix is stored uppercase and unique when present
type TaskCategory struct {
	ID   uint      `gorm:"primaryKey" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_task_categories_uuid" json:"uuid"`

	Name        string  `gorm:"size:255;not null" json:"name"`
	Prefix      *string `gorm:"size:5;uniqueIndex:uk_task_categories_prefix" json:"prefix,omitempty"`
	Description *string `gorm:"type:text" json:"description,omitempty"`

	IsActive  *bool     `gorm:"not null;index:idx_task_categories_is_active" json:"is_active"`
	CreatedAt time.Time `gorm:"not null;index:idx_task_categories_created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (TaskCategory) TableName() string {
	return "task_categories"
}

// TaskCategoryFilter represents filter criteria for task category queries
type TaskCategoryFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	Name          *string
	Prefix        *string
	HasPrefix     *bool
	IsActive      *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

// AllModels lists every persisted model, in migration order
func AllModels() []any {
	return []any{
		&SequenceCounter{},
		&TaskCategory{},
	}
}

package dto

// CreateCategoryRequest represents the payload to create a task category
type CreateCategoryRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=255"`
	Prefix      *string `json:"prefix,omitempty" validate:"omitempty,serial_prefix"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
}

// AssignPrefixRequest sets or replaces the prefix of a category
type AssignPrefixRequest struct {
	Prefix string `json:"prefix" validate:"required,serial_prefix"`
}

// CategoryDTO represents a task category for responses
type CategoryDTO struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Prefix      *string `json:"prefix,omitempty"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"is_active"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

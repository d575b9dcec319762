// Package businessflow contains the business logic for allocating task serial numbers.
package businessflow

import (
	"context"
	"fmt"
	"time"

	"github.com/amirphl/taskserial/app/dto"
	"github.com/amirphl/taskserial/models"
	"github.com/amirphl/taskserial/repository"
	"github.com/google/uuid"
)

// ClientMetadata holds caller information attached to write operations for logging
type ClientMetadata struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	RequestID string `json:"request_id,omitempty"`
	Subject   string `json:"subject,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// SetSubject sets the authenticated subject
func (cm *ClientMetadata) SetSubject(subject string) {
	cm.Subject = subject
}

// ToCategoryDTO converts a category model to its response shape
func ToCategoryDTO(category models.TaskCategory) dto.CategoryDTO {
	return dto.CategoryDTO{
		ID:          category.UUID.String(),
		Name:        category.Name,
		Prefix:      category.Prefix,
		Description: category.Description,
		IsActive:    category.IsActive,
		CreatedAt:   category.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   category.UpdatedAt.Format(time.RFC3339),
	}
}

// parseCategoryID turns an external category identifier into a UUID
func parseCategoryID(categoryID string) (uuid.UUID, error) {
	id, err := uuid.Parse(categoryID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", ErrInvalidCategoryID, categoryID)
	}
	return id, nil
}

// loadCategory fetches a category by external ID, failing with ErrCategoryNotFound when it is missing
func loadCategory(ctx context.Context, repo repository.TaskCategoryRepository, categoryID string) (*models.TaskCategory, error) {
	id, err := parseCategoryID(categoryID)
	if err != nil {
		return nil, err
	}

	category, err := repo.ByUUID(ctx, id)
	if err != nil {
		return nil, storeReadError(err)
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}
	return category, nil
}

// storeReadError marks a failed registry read as a store outage
func storeReadError(err error) error {
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}

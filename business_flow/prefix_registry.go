package businessflow

import (
	"context"
	"strconv"

	"github.com/amirphl/taskserial/repository"
	"github.com/amirphl/taskserial/utils"
)

// PrefixSuggestion is a candidate prefix for a category.
// IsUnique is false only when every numbered variant was already taken.
type PrefixSuggestion struct {
	Prefix       string `json:"prefix"`
	IsUnique     bool   `json:"is_unique"`
	CategoryName string `json:"category_name"`
}

// PrefixRegistry answers questions about category prefixes. It never writes.
type PrefixRegistry interface {
	PrefixOf(ctx context.Context, categoryID string) (*string, error)
	IsPrefixUnique(ctx context.Context, candidate string) (bool, error)
	SuggestPrefix(ctx context.Context, categoryID string) (*PrefixSuggestion, error)
}

type PrefixRegistryImpl struct {
	categoryRepo repository.TaskCategoryRepository
}

func NewPrefixRegistry(categoryRepo repository.TaskCategoryRepository) PrefixRegistry {
	return &PrefixRegistryImpl{categoryRepo: categoryRepo}
}

// PrefixOf returns the prefix assigned to a category, or nil when none is assigned
func (r *PrefixRegistryImpl) PrefixOf(ctx context.Context, categoryID string) (*string, error) {
	category, err := loadCategory(ctx, r.categoryRepo, categoryID)
	if err != nil {
		return nil, err
	}
	return category.Prefix, nil
}

// IsPrefixUnique reports whether no category owns candidate, comparing in uppercase
func (r *PrefixRegistryImpl) IsPrefixUnique(ctx context.Context, candidate string) (bool, error) {
	exists, err := r.categoryRepo.PrefixExists(ctx, utils.NormalizePrefix(candidate))
	if err != nil {
		return false, storeReadError(err)
	}
	return !exists, nil
}

// SuggestPrefix proposes a prefix for a category.
// An assigned prefix is returned as is. Otherwise a base is derived from the category name and
// numbered variants BASE1..BASE10 are tried in order; the first free one wins. When all are taken
// the last variant is returned with IsUnique false.
func (r *PrefixRegistryImpl) SuggestPrefix(ctx context.Context, categoryID string) (*PrefixSuggestion, error) {
	category, err := loadCategory(ctx, r.categoryRepo, categoryID)
	if err != nil {
		return nil, err
	}

	if category.Prefix != nil && *category.Prefix != "" {
		return &PrefixSuggestion{
			Prefix:       *category.Prefix,
			IsUnique:     true,
			CategoryName: category.Name,
		}, nil
	}

	candidate := utils.DerivePrefixBase(category.Name)
	unique, err := r.IsPrefixUnique(ctx, candidate)
	if err != nil {
		return nil, err
	}

	for attempt := 1; !unique && attempt <= utils.PrefixSuggestionMaxAttempts; attempt++ {
		candidate = utils.DerivePrefixBase(category.Name) + strconv.Itoa(attempt)
		unique, err = r.IsPrefixUnique(ctx, candidate)
		if err != nil {
			return nil, err
		}
	}

	return &PrefixSuggestion{
		Prefix:       candidate,
		IsUnique:     unique,
		CategoryName: category.Name,
	}, nil
}

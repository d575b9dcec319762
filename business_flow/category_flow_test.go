package businessflow

import (
	"context"
	"errors"
	"testing"

	"github.com/amirphl/taskserial/app/dto"
	"github.com/amirphl/taskserial/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCategory(t *testing.T) {
	env := newFlowEnv(t)
	ctx := context.Background()
	metadata := NewClientMetadata("127.0.0.1", "test")

	t.Run("with normalized prefix", func(t *testing.T) {
		created, err := env.categories.CreateCategory(ctx, &dto.CreateCategoryRequest{
			Name:   "  Web Development ",
			Prefix: utils.ToPtr(" wd"),
		}, metadata)
		require.NoError(t, err)

		assert.Equal(t, "Web Development", created.Name)
		require.NotNil(t, created.Prefix)
		assert.Equal(t, "WD", *created.Prefix)
		assert.True(t, utils.IsTrue(created.IsActive))
		_, err = uuid.Parse(created.ID)
		assert.NoError(t, err)
	})

	t.Run("without prefix", func(t *testing.T) {
		created, err := env.categories.CreateCategory(ctx, &dto.CreateCategoryRequest{Name: "Research"}, metadata)
		require.NoError(t, err)
		assert.Nil(t, created.Prefix)
	})

	t.Run("taken prefix", func(t *testing.T) {
		_, err := env.categories.CreateCategory(ctx, &dto.CreateCategoryRequest{
			Name:   "Web Design",
			Prefix: utils.ToPtr("WD"),
		}, metadata)
		require.Error(t, err)
		assert.True(t, IsPrefixAlreadyTaken(err))
		assert.Contains(t, err.Error(), `assigned to category "Web Development"`)

		var be *BusinessError
		require.True(t, errors.As(err, &be))
		assert.Equal(t, "CREATE_CATEGORY_FAILED", be.Code)
	})

	t.Run("malformed prefix", func(t *testing.T) {
		_, err := env.categories.CreateCategory(ctx, &dto.CreateCategoryRequest{
			Name:   "Operations",
			Prefix: utils.ToPtr("OPS-1"),
		}, metadata)
		assert.True(t, IsInvalidFormat(err))
	})

	t.Run("blank name", func(t *testing.T) {
		_, err := env.categories.CreateCategory(ctx, &dto.CreateCategoryRequest{Name: "   "}, metadata)
		assert.True(t, IsCategoryNameRequired(err))
	})
}

func TestAssignPrefix(t *testing.T) {
	env := newFlowEnv(t)
	ctx := context.Background()

	web, err := env.fixtures.CreateTestCategory("Web Development", utils.ToPtr("WD"))
	require.NoError(t, err)
	research, err := env.fixtures.CreateTestCategory("Research", nil)
	require.NoError(t, err)

	t.Run("assigns a free prefix", func(t *testing.T) {
		updated, err := env.categories.AssignPrefix(ctx, research.UUID.String(), &dto.AssignPrefixRequest{Prefix: "res"}, nil)
		require.NoError(t, err)
		require.NotNil(t, updated.Prefix)
		assert.Equal(t, "RES", *updated.Prefix)

		serial, err := env.serials.GenerateForCategory(ctx, research.UUID.String())
		require.NoError(t, err)
		assert.Equal(t, "RES-00001", serial)
	})

	t.Run("reassigning the same prefix is a no-op", func(t *testing.T) {
		updated, err := env.categories.AssignPrefix(ctx, web.UUID.String(), &dto.AssignPrefixRequest{Prefix: "WD"}, nil)
		require.NoError(t, err)
		assert.Equal(t, "WD", *updated.Prefix)
	})

	t.Run("taken prefix", func(t *testing.T) {
		_, err := env.categories.AssignPrefix(ctx, research.UUID.String(), &dto.AssignPrefixRequest{Prefix: "WD"}, nil)
		assert.Equal(t, KindPrefixTaken, KindOf(err))
	})

	t.Run("replacing keeps the old counter", func(t *testing.T) {
		_, err := env.categories.AssignPrefix(ctx, research.UUID.String(), &dto.AssignPrefixRequest{Prefix: "RSC"}, nil)
		require.NoError(t, err)

		current, ok, err := env.fixtures.CounterValue("RES")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, uint64(1), current)
	})

	t.Run("missing category", func(t *testing.T) {
		_, err := env.categories.AssignPrefix(ctx, uuid.NewString(), &dto.AssignPrefixRequest{Prefix: "NEW"}, nil)
		assert.Equal(t, KindNotFound, KindOf(err))
	})
}

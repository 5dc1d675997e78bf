package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/virtualtourist/server/internal/models"
)

func TestLocationRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("create and get by id", func(t *testing.T) {
		locRepo, _, _ := setupRepos(t)
		location := createLocation(t, locRepo, 40.0, -74.0)

		got, err := locRepo.GetByID(ctx, location.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, location.ID, got.ID)
		assert.Equal(t, 40.0, got.Latitude)
		assert.Equal(t, -74.0, got.Longitude)
	})

	t.Run("get by id returns nil for unknown id", func(t *testing.T) {
		locRepo, _, _ := setupRepos(t)
		got, err := locRepo.GetByID(ctx, "nope")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("coordinate pair is the marker identity", func(t *testing.T) {
		locRepo, _, _ := setupRepos(t)
		location := createLocation(t, locRepo, 48.8584, 2.2945)

		got, err := locRepo.GetByCoordinate(ctx, 48.8584, 2.2945)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, location.ID, got.ID)

		// A second insert at the same coordinates is rejected by the store.
		dup, err := models.NewLocation(48.8584, 2.2945)
		require.NoError(t, err)
		assert.Error(t, locRepo.Create(ctx, dup))
	})

	t.Run("get by coordinate returns nil when nothing is there", func(t *testing.T) {
		locRepo, _, _ := setupRepos(t)
		got, err := locRepo.GetByCoordinate(ctx, 0.0, 0.0)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("list returns markers oldest first", func(t *testing.T) {
		locRepo, _, _ := setupRepos(t)
		createLocation(t, locRepo, 1.0, 1.0)
		createLocation(t, locRepo, 2.0, 2.0)

		locations, err := locRepo.List(ctx)
		require.NoError(t, err)
		require.Len(t, locations, 2)
		assert.False(t, locations[0].CreatedAt.After(locations[1].CreatedAt))
	})
}

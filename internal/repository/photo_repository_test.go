package repository

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/virtualtourist/server/internal/models"
)

// capturePublisher records published changes for assertions
type capturePublisher struct {
	mu      sync.Mutex
	changes []models.PhotoChange
}

func (p *capturePublisher) PublishChange(change models.PhotoChange) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changes = append(p.changes, change)
}

func (p *capturePublisher) all() []models.PhotoChange {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.PhotoChange, len(p.changes))
	copy(out, p.changes)
	return out
}

func (p *capturePublisher) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changes = nil
}

func setupRepos(t *testing.T) (*LocationRepository, *PhotoRepository, *capturePublisher) {
	t.Helper()

	db, err := NewSQLiteDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	publisher := &capturePublisher{}
	return NewLocationRepository(db), NewPhotoRepository(db, publisher), publisher
}

func createLocation(t *testing.T, repo *LocationRepository, lat, lon float64) *models.Location {
	t.Helper()
	location, err := models.NewLocation(lat, lon)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), location))
	return location
}

func makeBatch(t *testing.T, locationID string, count int) []*models.Photo {
	t.Helper()
	photos := make([]*models.Photo, 0, count)
	for i := 0; i < count; i++ {
		photo, err := models.NewPlaceholder(locationID, "remote-"+string(rune('a'+i)), "", i)
		require.NoError(t, err)
		photos = append(photos, photo)
	}
	return photos
}

func TestPhotoRepository_CreatePlaceholders(t *testing.T) {
	ctx := context.Background()

	t.Run("batch is visible in sequence order with insert events", func(t *testing.T) {
		locRepo, photoRepo, publisher := setupRepos(t)
		location := createLocation(t, locRepo, 40.0, -74.0)

		batch := makeBatch(t, location.ID, 3)
		require.NoError(t, photoRepo.CreatePlaceholders(ctx, batch))

		photos, err := photoRepo.ListByLocation(ctx, location.ID)
		require.NoError(t, err)
		require.Len(t, photos, 3)
		for i, photo := range photos {
			assert.Equal(t, i, photo.SeqIndex)
			assert.True(t, photo.Pending())
		}

		changes := publisher.all()
		require.Len(t, changes, 3)
		for i, change := range changes {
			assert.Equal(t, models.ChangeInsert, change.Kind)
			assert.Equal(t, i, change.SeqIndex)
			assert.Equal(t, location.ID, change.LocationID)
		}
	})

	t.Run("duplicate index rolls back the whole batch", func(t *testing.T) {
		locRepo, photoRepo, publisher := setupRepos(t)
		location := createLocation(t, locRepo, 40.0, -74.0)

		batch := makeBatch(t, location.ID, 3)
		batch[2].SeqIndex = batch[0].SeqIndex // violates the unique index

		err := photoRepo.CreatePlaceholders(ctx, batch)
		require.Error(t, err)

		photos, listErr := photoRepo.ListByLocation(ctx, location.ID)
		require.NoError(t, listErr)
		assert.Empty(t, photos, "a partial batch must not be visible")
		assert.Empty(t, publisher.all(), "no events for a rolled-back batch")
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		_, photoRepo, publisher := setupRepos(t)
		require.NoError(t, photoRepo.CreatePlaceholders(ctx, nil))
		assert.Empty(t, publisher.all())
	})
}

func TestPhotoRepository_WriteImage(t *testing.T) {
	ctx := context.Background()

	t.Run("fills the placeholder and emits an update event", func(t *testing.T) {
		locRepo, photoRepo, publisher := setupRepos(t)
		location := createLocation(t, locRepo, 40.0, -74.0)
		batch := makeBatch(t, location.ID, 2)
		require.NoError(t, photoRepo.CreatePlaceholders(ctx, batch))
		publisher.reset()

		takenAt := time.Date(2020, 8, 23, 12, 0, 0, 0, time.UTC)
		image := []byte{0xff, 0xd8, 0xff}
		thumb := []byte{0x01}
		require.NoError(t, photoRepo.WriteImage(ctx, batch[1].ID, image, thumb, &takenAt))

		photo, err := photoRepo.GetByID(ctx, batch[1].ID)
		require.NoError(t, err)
		require.NotNil(t, photo)
		assert.False(t, photo.Pending())
		assert.Equal(t, image, photo.Image)
		assert.Equal(t, thumb, photo.Thumbnail)
		require.NotNil(t, photo.TakenAt)
		assert.True(t, takenAt.Equal(*photo.TakenAt))
		assert.Equal(t, 1, photo.SeqIndex, "sequence index unchanged by the write")

		changes := publisher.all()
		require.Len(t, changes, 1)
		assert.Equal(t, models.ChangeUpdate, changes[0].Kind)
		assert.Equal(t, batch[1].ID, changes[0].PhotoID)
		assert.Equal(t, 1, changes[0].SeqIndex)
	})

	t.Run("write to a deleted photo is ErrPhotoNotFound", func(t *testing.T) {
		locRepo, photoRepo, publisher := setupRepos(t)
		location := createLocation(t, locRepo, 40.0, -74.0)
		batch := makeBatch(t, location.ID, 1)
		require.NoError(t, photoRepo.CreatePlaceholders(ctx, batch))
		require.NoError(t, photoRepo.Delete(ctx, batch[0].ID))
		publisher.reset()

		err := photoRepo.WriteImage(ctx, batch[0].ID, []byte{0x01}, nil, nil)
		assert.ErrorIs(t, err, models.ErrPhotoNotFound)

		// The dropped write must not resurrect the row.
		photo, getErr := photoRepo.GetByID(ctx, batch[0].ID)
		require.NoError(t, getErr)
		assert.Nil(t, photo)
		assert.Empty(t, publisher.all())
	})
}

func TestPhotoRepository_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("removes one photo, others keep their indices", func(t *testing.T) {
		locRepo, photoRepo, publisher := setupRepos(t)
		location := createLocation(t, locRepo, 40.0, -74.0)
		batch := makeBatch(t, location.ID, 3)
		require.NoError(t, photoRepo.CreatePlaceholders(ctx, batch))
		publisher.reset()

		require.NoError(t, photoRepo.Delete(ctx, batch[1].ID))

		photos, err := photoRepo.ListByLocation(ctx, location.ID)
		require.NoError(t, err)
		require.Len(t, photos, 2)
		// Indices stay sparse: 0 and 2, still ascending.
		assert.Equal(t, 0, photos[0].SeqIndex)
		assert.Equal(t, 2, photos[1].SeqIndex)

		changes := publisher.all()
		require.Len(t, changes, 1)
		assert.Equal(t, models.ChangeDelete, changes[0].Kind)
		assert.Equal(t, 1, changes[0].SeqIndex)
	})

	t.Run("missing photo is ErrPhotoNotFound", func(t *testing.T) {
		_, photoRepo, _ := setupRepos(t)
		err := photoRepo.Delete(ctx, "no-such-photo")
		assert.ErrorIs(t, err, models.ErrPhotoNotFound)
	})
}

func TestPhotoRepository_DeleteAllByLocation(t *testing.T) {
	ctx := context.Background()

	locRepo, photoRepo, publisher := setupRepos(t)
	location := createLocation(t, locRepo, 40.0, -74.0)
	other := createLocation(t, locRepo, 51.5, -0.1)

	require.NoError(t, photoRepo.CreatePlaceholders(ctx, makeBatch(t, location.ID, 3)))
	require.NoError(t, photoRepo.CreatePlaceholders(ctx, makeBatch(t, other.ID, 2)))
	publisher.reset()

	removed, err := photoRepo.DeleteAllByLocation(ctx, location.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	photos, err := photoRepo.ListByLocation(ctx, location.ID)
	require.NoError(t, err)
	assert.Empty(t, photos)

	// The other location is untouched.
	otherPhotos, err := photoRepo.ListByLocation(ctx, other.ID)
	require.NoError(t, err)
	assert.Len(t, otherPhotos, 2)

	changes := publisher.all()
	require.Len(t, changes, 3)
	for _, change := range changes {
		assert.Equal(t, models.ChangeDelete, change.Kind)
		assert.Equal(t, location.ID, change.LocationID)
	}

	// A fresh batch can start at index 0 again.
	require.NoError(t, photoRepo.CreatePlaceholders(ctx, makeBatch(t, location.ID, 2)))
	photos, err = photoRepo.ListByLocation(ctx, location.ID)
	require.NoError(t, err)
	require.Len(t, photos, 2)
	assert.Equal(t, 0, photos[0].SeqIndex)
}

func TestPhotoRepository_CountByLocation(t *testing.T) {
	ctx := context.Background()

	locRepo, photoRepo, _ := setupRepos(t)
	location := createLocation(t, locRepo, 40.0, -74.0)

	count, err := photoRepo.CountByLocation(ctx, location.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	require.NoError(t, photoRepo.CreatePlaceholders(ctx, makeBatch(t, location.ID, 4)))

	count, err = photoRepo.CountByLocation(ctx, location.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

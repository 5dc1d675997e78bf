package repository

import (
	"context"
	"time"

	"github.com/virtualtourist/server/internal/models"
)

// ChangePublisher receives one event per photo insert/update/delete. The
// store publishes after the underlying write commits, so observers never
// see an event for state that can still roll back.
type ChangePublisher interface {
	PublishChange(change models.PhotoChange)
}

// LocationRepo defines the interface for location persistence operations
type LocationRepo interface {
	Create(ctx context.Context, location *models.Location) error
	GetByID(ctx context.Context, id string) (*models.Location, error)
	GetByCoordinate(ctx context.Context, latitude, longitude float64) (*models.Location, error)
	List(ctx context.Context) ([]*models.Location, error)
}

// PhotoRepo defines the interface for photo persistence operations.
//
// CreatePlaceholders is atomic: either the whole batch becomes visible or
// none of it does. WriteImage and Delete return models.ErrPhotoNotFound
// when the target row is gone; for WriteImage that is the expected
// outcome of a download racing a delete or refresh, and callers drop it.
type PhotoRepo interface {
	ListByLocation(ctx context.Context, locationID string) ([]*models.Photo, error)
	GetByID(ctx context.Context, id string) (*models.Photo, error)
	CountByLocation(ctx context.Context, locationID string) (int, error)
	CreatePlaceholders(ctx context.Context, photos []*models.Photo) error
	WriteImage(ctx context.Context, photoID string, image, thumbnail []byte, takenAt *time.Time) error
	Delete(ctx context.Context, photoID string) error
	DeleteAllByLocation(ctx context.Context, locationID string) (int, error)
}

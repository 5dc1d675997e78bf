package models

import (
	"time"

	"github.com/google/uuid"
)

// Location is a user-placed map marker that owns a photo collection.
// Identity is the coordinate pair: two markers at the same coordinates are
// the same Location, and callers look them up by coordinate before creating
// a new one.
type Location struct {
	ID        string    `json:"id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewLocation creates a Location with coordinate validation
func NewLocation(latitude, longitude float64) (*Location, error) {
	if latitude < -90 || latitude > 90 {
		return nil, ErrInvalidLatitude
	}
	if longitude < -180 || longitude > 180 {
		return nil, ErrInvalidLongitude
	}

	return &Location{
		ID:        uuid.New().String(),
		Latitude:  latitude,
		Longitude: longitude,
		CreatedAt: time.Now().UTC(),
	}, nil
}

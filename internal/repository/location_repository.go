package repository

import (
	"context"
	"database/sql"

	"github.com/virtualtourist/server/internal/models"
)

// LocationRepository handles location persistence on SQLite
type LocationRepository struct {
	db *sql.DB
}

// NewLocationRepository creates a new LocationRepository
func NewLocationRepository(db *sql.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

// Create inserts a new location
func (r *LocationRepository) Create(ctx context.Context, location *models.Location) error {
	query := `
		INSERT INTO locations (id, latitude, longitude, created_at)
		VALUES (?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		location.ID,
		location.Latitude,
		location.Longitude,
		location.CreatedAt,
	)

	return err
}

// GetByID retrieves a location by its ID
func (r *LocationRepository) GetByID(ctx context.Context, id string) (*models.Location, error) {
	query := `SELECT id, latitude, longitude, created_at FROM locations WHERE id = ?`

	var location models.Location
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&location.ID,
		&location.Latitude,
		&location.Longitude,
		&location.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &location, nil
}

// GetByCoordinate retrieves the location at an exact coordinate pair.
// Markers are identified by coordinates, so callers check here before
// creating a duplicate.
func (r *LocationRepository) GetByCoordinate(ctx context.Context, latitude, longitude float64) (*models.Location, error) {
	query := `SELECT id, latitude, longitude, created_at FROM locations WHERE latitude = ? AND longitude = ?`

	var location models.Location
	err := r.db.QueryRowContext(ctx, query, latitude, longitude).Scan(
		&location.ID,
		&location.Latitude,
		&location.Longitude,
		&location.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &location, nil
}

// List retrieves all locations, oldest first
func (r *LocationRepository) List(ctx context.Context) ([]*models.Location, error) {
	query := `SELECT id, latitude, longitude, created_at FROM locations ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locations []*models.Location
	for rows.Next() {
		var location models.Location
		if err := rows.Scan(
			&location.ID,
			&location.Latitude,
			&location.Longitude,
			&location.CreatedAt,
		); err != nil {
			return nil, err
		}
		locations = append(locations, &location)
	}

	if locations == nil {
		locations = []*models.Location{}
	}

	return locations, rows.Err()
}

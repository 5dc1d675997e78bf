package repository

import (
	"context"
	"database/sql"

	"github.com/virtualtourist/server/internal/models"
)

// LocationRepositoryPostgres is the PostgreSQL variant of LocationRepository
type LocationRepositoryPostgres struct {
	db *sql.DB
}

// NewLocationRepositoryPostgres creates a new LocationRepositoryPostgres
func NewLocationRepositoryPostgres(db *sql.DB) *LocationRepositoryPostgres {
	return &LocationRepositoryPostgres{db: db}
}

// Create inserts a new location
func (r *LocationRepositoryPostgres) Create(ctx context.Context, location *models.Location) error {
	query := `
		INSERT INTO locations (id, latitude, longitude, created_at)
		VALUES ($1, $2, $3, $4)
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
func (r *LocationRepositoryPostgres) GetByID(ctx context.Context, id string) (*models.Location, error) {
	query := `SELECT id, latitude, longitude, created_at FROM locations WHERE id = $1`

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

// GetByCoordinate retrieves the location at an exact coordinate pair
func (r *LocationRepositoryPostgres) GetByCoordinate(ctx context.Context, latitude, longitude float64) (*models.Location, error) {
	query := `SELECT id, latitude, longitude, created_at FROM locations WHERE latitude = $1 AND longitude = $2`

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
func (r *LocationRepositoryPostgres) List(ctx context.Context) ([]*models.Location, error) {
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

package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/virtualtourist/server/internal/models"
)

// PhotoRepositoryPostgres is the PostgreSQL variant of PhotoRepository.
// Same contract, $n placeholders.
type PhotoRepositoryPostgres struct {
	db        *sql.DB
	publisher ChangePublisher
}

// NewPhotoRepositoryPostgres creates a new PhotoRepositoryPostgres
func NewPhotoRepositoryPostgres(db *sql.DB, publisher ChangePublisher) *PhotoRepositoryPostgres {
	return &PhotoRepositoryPostgres{db: db, publisher: publisher}
}

// ListByLocation retrieves a location's photos ordered by sequence index
func (r *PhotoRepositoryPostgres) ListByLocation(ctx context.Context, locationID string) ([]*models.Photo, error) {
	query := `
		SELECT id, location_id, seq_index, remote_id, title, image, thumbnail, taken_at, created_at
		FROM photos
		WHERE location_id = $1
		ORDER BY seq_index ASC, created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, locationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var photos []*models.Photo
	for rows.Next() {
		photo, err := scanPhoto(rows)
		if err != nil {
			return nil, err
		}
		photos = append(photos, photo)
	}

	if photos == nil {
		photos = []*models.Photo{}
	}

	return photos, rows.Err()
}

// GetByID retrieves a photo by its ID
func (r *PhotoRepositoryPostgres) GetByID(ctx context.Context, id string) (*models.Photo, error) {
	query := `
		SELECT id, location_id, seq_index, remote_id, title, image, thumbnail, taken_at, created_at
		FROM photos WHERE id = $1
	`

	row := r.db.QueryRowContext(ctx, query, id)
	photo, err := scanPhoto(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return photo, nil
}

// CountByLocation returns the number of photos for a location
func (r *PhotoRepositoryPostgres) CountByLocation(ctx context.Context, locationID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM photos WHERE location_id = $1", locationID).Scan(&count)
	return count, err
}

// CreatePlaceholders inserts a batch of placeholder photos atomically
func (r *PhotoRepositoryPostgres) CreatePlaceholders(ctx context.Context, photos []*models.Photo) error {
	if len(photos) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO photos (id, location_id, seq_index, remote_id, title, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	for _, photo := range photos {
		if _, err := tx.ExecContext(ctx, query,
			photo.ID,
			photo.LocationID,
			photo.SeqIndex,
			photo.RemoteID,
			photo.Title,
			photo.CreatedAt,
		); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	for _, photo := range photos {
		r.publisher.PublishChange(models.PhotoChange{
			LocationID: photo.LocationID,
			PhotoID:    photo.ID,
			Kind:       models.ChangeInsert,
			SeqIndex:   photo.SeqIndex,
		})
	}

	return nil
}

// WriteImage stores downloaded bytes into a placeholder
func (r *PhotoRepositoryPostgres) WriteImage(ctx context.Context, photoID string, image, thumbnail []byte, takenAt *time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var locationID string
	var seqIndex int
	err = tx.QueryRowContext(ctx,
		"SELECT location_id, seq_index FROM photos WHERE id = $1", photoID).
		Scan(&locationID, &seqIndex)
	if err == sql.ErrNoRows {
		return models.ErrPhotoNotFound
	}
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE photos SET image = $1, thumbnail = $2, taken_at = $3 WHERE id = $4",
		image, thumbnail, nullableTime(takenAt), photoID,
	); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	r.publisher.PublishChange(models.PhotoChange{
		LocationID: locationID,
		PhotoID:    photoID,
		Kind:       models.ChangeUpdate,
		SeqIndex:   seqIndex,
	})

	return nil
}

// Delete removes a photo by ID
func (r *PhotoRepositoryPostgres) Delete(ctx context.Context, photoID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var locationID string
	var seqIndex int
	err = tx.QueryRowContext(ctx,
		"SELECT location_id, seq_index FROM photos WHERE id = $1", photoID).
		Scan(&locationID, &seqIndex)
	if err == sql.ErrNoRows {
		return models.ErrPhotoNotFound
	}
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM photos WHERE id = $1", photoID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	r.publisher.PublishChange(models.PhotoChange{
		LocationID: locationID,
		PhotoID:    photoID,
		Kind:       models.ChangeDelete,
		SeqIndex:   seqIndex,
	})

	return nil
}

// DeleteAllByLocation removes every photo for a location
func (r *PhotoRepositoryPostgres) DeleteAllByLocation(ctx context.Context, locationID string) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx,
		"SELECT id, seq_index FROM photos WHERE location_id = $1 ORDER BY seq_index ASC", locationID)
	if err != nil {
		return 0, err
	}

	type removed struct {
		id       string
		seqIndex int
	}
	var victims []removed
	for rows.Next() {
		var v removed
		if err := rows.Scan(&v.id, &v.seqIndex); err != nil {
			rows.Close()
			return 0, err
		}
		victims = append(victims, v)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM photos WHERE location_id = $1", locationID); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	for _, v := range victims {
		r.publisher.PublishChange(models.PhotoChange{
			LocationID: locationID,
			PhotoID:    v.id,
			Kind:       models.ChangeDelete,
			SeqIndex:   v.seqIndex,
		})
	}

	return len(victims), nil
}

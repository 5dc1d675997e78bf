package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/virtualtourist/server/internal/models"
)

// PhotoRepository handles photo persistence on SQLite. Every committed
// insert/update/delete is published to the change feed with the photo's
// sequence index, so observers can patch their view incrementally.
type PhotoRepository struct {
	db        *sql.DB
	publisher ChangePublisher
}

// NewPhotoRepository creates a new PhotoRepository
func NewPhotoRepository(db *sql.DB, publisher ChangePublisher) *PhotoRepository {
	return &PhotoRepository{db: db, publisher: publisher}
}

// ListByLocation retrieves a location's photos ordered by sequence index.
// Indices can be sparse after deletes; the ordering invariant holds with
// gaps.
func (r *PhotoRepository) ListByLocation(ctx context.Context, locationID string) ([]*models.Photo, error) {
	query := `
		SELECT id, location_id, seq_index, remote_id, title, image, thumbnail, taken_at, created_at
		FROM photos
		WHERE location_id = ?
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
func (r *PhotoRepository) GetByID(ctx context.Context, id string) (*models.Photo, error) {
	query := `
		SELECT id, location_id, seq_index, remote_id, title, image, thumbnail, taken_at, created_at
		FROM photos WHERE id = ?
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
func (r *PhotoRepository) CountByLocation(ctx context.Context, locationID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM photos WHERE location_id = ?", locationID).Scan(&count)
	return count, err
}

// CreatePlaceholders inserts a batch of placeholder photos in a single
// transaction. A partial batch would corrupt index uniqueness for later
// refreshes, so any failure rolls the whole batch back. Insert events are
// published after commit, in batch order.
func (r *PhotoRepository) CreatePlaceholders(ctx context.Context, photos []*models.Photo) error {
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
		VALUES (?, ?, ?, ?, ?, ?)
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

// WriteImage stores downloaded bytes into a placeholder. Returns
// models.ErrPhotoNotFound if the photo was deleted while the download was
// in flight; callers treat that as a dropped write, not a failure.
func (r *PhotoRepository) WriteImage(ctx context.Context, photoID string, image, thumbnail []byte, takenAt *time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var locationID string
	var seqIndex int
	err = tx.QueryRowContext(ctx,
		"SELECT location_id, seq_index FROM photos WHERE id = ?", photoID).
		Scan(&locationID, &seqIndex)
	if err == sql.ErrNoRows {
		return models.ErrPhotoNotFound
	}
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE photos SET image = ?, thumbnail = ?, taken_at = ? WHERE id = ?",
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

// Delete removes a photo by ID. Returns models.ErrPhotoNotFound when the
// row is already gone.
func (r *PhotoRepository) Delete(ctx context.Context, photoID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var locationID string
	var seqIndex int
	err = tx.QueryRowContext(ctx,
		"SELECT location_id, seq_index FROM photos WHERE id = ?", photoID).
		Scan(&locationID, &seqIndex)
	if err == sql.ErrNoRows {
		return models.ErrPhotoNotFound
	}
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM photos WHERE id = ?", photoID); err != nil {
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

// DeleteAllByLocation removes every photo for a location and returns the
// count removed. Refresh calls this before creating the next page's batch.
func (r *PhotoRepository) DeleteAllByLocation(ctx context.Context, locationID string) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx,
		"SELECT id, seq_index FROM photos WHERE location_id = ? ORDER BY seq_index ASC", locationID)
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

	if _, err := tx.ExecContext(ctx, "DELETE FROM photos WHERE location_id = ?", locationID); err != nil {
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

// rowScanner covers *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPhoto(row rowScanner) (*models.Photo, error) {
	var photo models.Photo
	var takenAt sql.NullTime
	if err := row.Scan(
		&photo.ID,
		&photo.LocationID,
		&photo.SeqIndex,
		&photo.RemoteID,
		&photo.Title,
		&photo.Image,
		&photo.Thumbnail,
		&takenAt,
		&photo.CreatedAt,
	); err != nil {
		return nil, err
	}
	if takenAt.Valid {
		photo.TakenAt = &takenAt.Time
	}
	return &photo, nil
}

func nullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

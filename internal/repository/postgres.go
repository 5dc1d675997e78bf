package repository

import (
	"database/sql"

	_ "github.com/lib/pq"
)

// NewPostgresDB creates and initializes a PostgreSQL database connection
func NewPostgresDB(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	if err := createTablesPostgres(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func createTablesPostgres(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS locations (
		id TEXT PRIMARY KEY,
		latitude DOUBLE PRECISION NOT NULL,
		longitude DOUBLE PRECISION NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE(latitude, longitude)
	);

	CREATE TABLE IF NOT EXISTS photos (
		id TEXT PRIMARY KEY,
		location_id TEXT NOT NULL REFERENCES locations(id) ON DELETE CASCADE,
		seq_index INTEGER NOT NULL,
		remote_id TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		image BYTEA,
		thumbnail BYTEA,
		taken_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_photos_location_seq ON photos(location_id, seq_index);
	CREATE INDEX IF NOT EXISTS idx_photos_location_id ON photos(location_id);
	`

	_, err := db.Exec(schema)
	return err
}

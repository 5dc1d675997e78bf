package repository

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

// NewSQLiteDB creates and initializes a SQLite database
func NewSQLiteDB(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, err
	}

	// Create tables
	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func createTables(db *sql.DB) error {
	schema := `
	-- Locations table (one row per dropped map marker)
	CREATE TABLE IF NOT EXISTS locations (
		id TEXT PRIMARY KEY,
		latitude REAL NOT NULL,
		longitude REAL NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(latitude, longitude)
	);

	-- Photos table; image/thumbnail stay NULL while the download is in flight
	CREATE TABLE IF NOT EXISTS photos (
		id TEXT PRIMARY KEY,
		location_id TEXT NOT NULL REFERENCES locations(id) ON DELETE CASCADE,
		seq_index INTEGER NOT NULL,
		remote_id TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		image BLOB,
		thumbnail BLOB,
		taken_at DATETIME,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_photos_location_seq ON photos(location_id, seq_index);
	CREATE INDEX IF NOT EXISTS idx_photos_location_id ON photos(location_id);
	`

	_, err := db.Exec(schema)
	return err
}

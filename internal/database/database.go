package database

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

type DB struct {
	conn *sql.DB
	path string
}

func New(path string) (*DB, error) {
	conn, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{conn: conn, path: path}
	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) Exec(query string, args ...any) (sql.Result, error) {
	return db.conn.Exec(query, args...)
}

func (db *DB) Query(query string, args ...any) (*sql.Rows, error) {
	return db.conn.Query(query, args...)
}

func (db *DB) QueryRow(query string, args ...any) *sql.Row {
	return db.conn.QueryRow(query, args...)
}

func (db *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS resources (
		id TEXT PRIMARY KEY,
		package_id TEXT NOT NULL,
		url TEXT NOT NULL,
		name TEXT,
		format TEXT,
		is_open BOOLEAN DEFAULT FALSE,
		position INTEGER DEFAULT 0,
		cache_url TEXT,
		cache_filepath TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(package_id, url)
	);

	CREATE TABLE IF NOT EXISTS task_status (
		resource_id TEXT NOT NULL REFERENCES resources(id) ON DELETE CASCADE,
		task_type TEXT NOT NULL,
		success BOOLEAN DEFAULT FALSE,
		reason TEXT,
		attempts INTEGER DEFAULT 0,
		first_attempted_at DATETIME,
		last_attempted_at DATETIME,
		last_success_at DATETIME,
		last_error TEXT,
		PRIMARY KEY (resource_id, task_type)
	);

	CREATE TABLE IF NOT EXISTS qa_results (
		resource_id TEXT PRIMARY KEY REFERENCES resources(id) ON DELETE CASCADE,
		openness_score INTEGER NOT NULL,
		openness_score_reason TEXT NOT NULL,
		format TEXT,
		scored_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_resources_package ON resources(package_id, position);
	CREATE INDEX IF NOT EXISTS idx_qa_results_score ON qa_results(openness_score DESC);
	`

	_, err := db.conn.Exec(schema)
	return err
}

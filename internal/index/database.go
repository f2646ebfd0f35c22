// Package index owns the structure database: opening it, reconciling its
// physical schema with the catalog, loading prior-run state, and writing
// the rows each indexing run produces.
package index

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Database is the SQLite handle for one structure database file.
type Database struct {
	db *sql.DB
}

// DB returns the underlying sql.DB for direct queries.
func (d *Database) DB() *sql.DB {
	return d.db
}

// Open opens or creates the structure database at path, creating parent
// directories as needed.
func Open(path string) (*Database, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	d := &Database{db: db}
	if err := d.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

// OpenInMemory opens an in-memory database (for testing).
func OpenInMemory() (*Database, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, err
	}
	// Each pooled connection would get its own empty in-memory database.
	db.SetMaxOpenConns(1)

	d := &Database{db: db}
	if err := d.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the database.
func (d *Database) Close() error {
	return d.db.Close()
}

func (d *Database) initialize() error {
	pragmas := `
		-- WAL for better concurrency between the writer and readers
		PRAGMA journal_mode = WAL;

		-- Performance
		PRAGMA synchronous = NORMAL;      -- Faster writes (safe with WAL)
		PRAGMA temp_store = MEMORY;       -- Keep temp tables in memory
		PRAGMA cache_size = -64000;       -- 64MB cache (negative = KB)
	`
	if _, err := d.db.Exec(pragmas); err != nil {
		return fmt.Errorf("failed to configure database: %w", err)
	}
	return nil
}

// Analyze updates SQLite's query planner statistics. Called after a bulk
// indexing run.
func (d *Database) Analyze() error {
	_, err := d.db.Exec("ANALYZE")
	return err
}

package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Rejected records discovery candidates the operator has declined, so
// they are never suggested again.
type Rejected struct {
	db *sql.DB
}

// OpenRejected opens or creates the rejection database at the given path.
func OpenRejected(path string) (*Rejected, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &Rejected{db: db}, nil
}

// Close closes the database connection.
func (r *Rejected) Close() error {
	return r.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS rejected (
			doi TEXT,
			title TEXT,
			rejected_at TEXT NOT NULL,
			UNIQUE(doi, title)
		);
	`
	_, err := db.Exec(schema)
	return err
}

// Add records a rejection. Re-rejecting the same candidate is a no-op.
func (r *Rejected) Add(doi, title string) error {
	_, err := r.db.Exec(`
		INSERT OR IGNORE INTO rejected (doi, title, rejected_at)
		VALUES (?, ?, ?)
	`, doi, title, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("recording rejection: %w", err)
	}
	return nil
}

// Identifiers returns every rejected DOI and title, lowercased, as one
// membership set for candidate filtering.
func (r *Rejected) Identifiers() (map[string]bool, error) {
	rows, err := r.db.Query("SELECT doi, title FROM rejected")
	if err != nil {
		return nil, fmt.Errorf("listing rejections: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]bool)
	for rows.Next() {
		var doi, title sql.NullString
		if err := rows.Scan(&doi, &title); err != nil {
			return nil, err
		}
		if doi.String != "" {
			ids[strings.ToLower(doi.String)] = true
		}
		if title.String != "" {
			ids[strings.ToLower(title.String)] = true
		}
	}
	return ids, rows.Err()
}

// Count returns the total number of rejections.
func (r *Rejected) Count() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM rejected").Scan(&count)
	return count, err
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"jobwatch/internal/model"
)

// SQLiteStore tracks seen signatures in a SQLite database. It suits setups
// that want durable state with concurrent-run safety for free.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and
// ensures the seen_signatures table exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	createTable := `CREATE TABLE IF NOT EXISTS seen_signatures (
		signature  TEXT PRIMARY KEY,
		first_seen DATETIME DEFAULT CURRENT_TIMESTAMP
	)`
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating seen_signatures table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

var _ model.SeenStore = (*SQLiteStore)(nil)

// HasSeen returns true if the signature has already been recorded.
func (s *SQLiteStore) HasSeen(ctx context.Context, signature string) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM seen_signatures WHERE signature = ?", signature).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking seen status: %w", err)
	}
	return true, nil
}

// MarkSeen records a signature. If it already exists the call is a no-op.
func (s *SQLiteStore) MarkSeen(ctx context.Context, signature string) error {
	_, err := s.db.ExecContext(ctx, "INSERT OR IGNORE INTO seen_signatures (signature) VALUES (?)", signature)
	if err != nil {
		return fmt.Errorf("marking signature as seen: %w", err)
	}
	return nil
}

// Cleanup deletes signatures first seen longer than olderThan ago.
func (s *SQLiteStore) Cleanup(ctx context.Context, olderThan time.Duration) error {
	// CURRENT_TIMESTAMP writes "YYYY-MM-DD HH:MM:SS" in UTC, so the cutoff
	// must use the same layout for the comparison to hold.
	cutoff := time.Now().UTC().Add(-olderThan).Format("2006-01-02 15:04:05")
	_, err := s.db.ExecContext(ctx, "DELETE FROM seen_signatures WHERE first_seen < ?", cutoff)
	if err != nil {
		return fmt.Errorf("cleaning up signatures older than %v: %w", olderThan, err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/franz/hiring-dw/internal/util"
	_ "modernc.org/sqlite" // SQLite driver
)

// Store wraps the warehouse database file
type Store struct {
	db   *sql.DB
	path string
}

// OpenOptions holds options for opening a database
type OpenOptions struct {
	ReadOnly bool // Open an existing file read-only (reporting)
}

// Open opens or creates a SQLite database at the given path with default options
func Open(path string) (*Store, error) {
	return OpenWithOptions(path, nil)
}

// OpenReadOnly opens an existing warehouse for querying
func OpenReadOnly(path string) (*Store, error) {
	return OpenWithOptions(path, &OpenOptions{ReadOnly: true})
}

// OpenWithOptions opens a SQLite database with custom options
func OpenWithOptions(path string, opts *OpenOptions) (*Store, error) {
	if opts == nil {
		opts = &OpenOptions{}
	}

	if opts.ReadOnly {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("warehouse %s: %w", path, util.ErrNotFound)
			}
			return nil, storeErr("failed to stat warehouse", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path)
	if opts.ReadOnly {
		dsn += "&mode=ro"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, storeErr("failed to open database", err)
	}

	// One process, one connection, used sequentially
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, storeErr("failed to open database", err)
	}

	return &Store{db: db, path: path}, nil
}

// Create deletes any existing warehouse at path, creates a fresh database and
// applies the schema DDL. The returned store is empty and ready for loading.
func Create(ctx context.Context, path string, ddl string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, storeErr("failed to create warehouse directory", err)
		}
	}

	if err := removeDatabaseFiles(path); err != nil {
		return nil, storeErr("failed to remove previous warehouse", err)
	}

	s, err := Open(path)
	if err != nil {
		return nil, err
	}

	if err := s.ApplySchema(ctx, ddl); err != nil {
		s.Close()
		return nil, err
	}

	return s, nil
}

// removeDatabaseFiles deletes the database file and its journal siblings
func removeDatabaseFiles(path string) error {
	for _, p := range []string{path, path + "-wal", path + "-shm", path + "-journal"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying database connection for custom queries
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database file path
func (s *Store) Path() string {
	return s.path
}

// SQLiteVersion returns the SQLite version string
func SQLiteVersion() string {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return ""
	}
	defer db.Close()

	var version string
	err = db.QueryRow("SELECT sqlite_version()").Scan(&version)
	if err != nil {
		return ""
	}
	return version
}

// CheckIntegrity runs PRAGMA integrity_check on the database
func (s *Store) CheckIntegrity(ctx context.Context) error {
	var result string
	err := s.db.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&result)
	if err != nil {
		return storeErr("integrity check query failed", err)
	}

	if result != "ok" {
		return storeErr("integrity check failed", errors.New(result))
	}

	return nil
}

// Transaction executes a function within a transaction
func (s *Store) Transaction(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("failed to begin transaction", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return storeErr("failed to commit transaction", err)
	}

	return nil
}

// storeErr wraps err so callers can match util.ErrStore
func storeErr(msg string, err error) error {
	return fmt.Errorf("%s: %w: %w", msg, util.ErrStore, err)
}

package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"github.com/golang/snappy"
	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/spikeview/internal/canon"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - blobs table with encoding and size columns
const currentSchemaVersion = 1

const (
	encodingRaw    = "raw"
	encodingSnappy = "snappy"
)

// SQLiteBackend stores objects in a single SQLite table.
// Uses WAL mode so resolves can proceed during writes.
type SQLiteBackend struct {
	db *sql.DB
}

// OpenSQLite creates or opens a SQLite database at the given path.
// Applies required pragmas and the schema automatically.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode
//   - 5-second busy timeout for lock contention
//
// Safe to call repeatedly on the same path.
func OpenSQLite(path string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLiteBackend{db: db}, nil
}

func (s *SQLiteBackend) Has(ctx context.Context, addr canon.Address) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM blobs WHERE address = ?`, string(addr),
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check blob: %w", err)
	}
	return count > 0, nil
}

// Write inserts the object with ON CONFLICT DO NOTHING; the statement is
// atomic, so a failed write leaves no row behind.
func (s *SQLiteBackend) Write(ctx context.Context, addr canon.Address, data []byte) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO blobs (address, encoding, size, data)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(address) DO NOTHING
	`,
		string(addr),
		encodingSnappy,
		len(data),
		snappy.Encode(nil, data),
	)
	if err != nil {
		return false, fmt.Errorf("write blob: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("write blob: rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

func (s *SQLiteBackend) Read(ctx context.Context, addr canon.Address) ([]byte, bool, error) {
	var encoding string
	var stored []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT encoding, data FROM blobs WHERE address = ?`, string(addr),
	).Scan(&encoding, &stored)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read blob: %w", err)
	}

	data, err := decodeBlob(encoding, stored)
	if err != nil {
		return nil, false, fmt.Errorf("read blob %s: %w", addr, err)
	}
	return data, true, nil
}

// Close closes the database connection.
func (s *SQLiteBackend) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func decodeBlob(encoding string, stored []byte) ([]byte, error) {
	switch encoding {
	case encodingRaw:
		return stored, nil
	case encodingSnappy:
		return snappy.Decode(nil, stored)
	default:
		return nil, fmt.Errorf("unknown blob encoding %q", encoding)
	}
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and records the schema version.
func applySchema(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, currentSchemaVersion)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *SQLiteBackend) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}

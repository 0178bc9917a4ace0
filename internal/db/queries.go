package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hpungsan/sift/internal/analysis"
	"github.com/hpungsan/sift/internal/config"
	"github.com/hpungsan/sift/internal/errors"
	"github.com/hpungsan/sift/internal/filter"
)

const selectColumns = `
	SELECT id, value, length, is_palindrome, unique_character_count,
		word_count, character_frequency_json, created_at
	FROM analyzed_strings
`

// Store persists analysis records in SQLite. It owns the database handle:
// open it once with Open, Close it on shutdown.
type Store struct {
	db *sql.DB
}

// Open initializes the database under baseDir and wraps it in a Store.
func Open(baseDir string, cfg *config.Config) (*Store, error) {
	database, err := Init(baseDir)
	if err != nil {
		return nil, err
	}
	ConfigurePool(database, cfg)
	return &Store{db: database}, nil
}

// NewStore wraps an existing handle (used by tests with sqlmock).
func NewStore(database *sql.DB) *Store {
	return &Store{db: database}
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Exists reports whether a record with the given fingerprint is stored.
func (s *Store) Exists(ctx context.Context, fingerprint string) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM analyzed_strings WHERE id = ? LIMIT 1`, fingerprint).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, errors.NewInternal(err)
	}
	return true, nil
}

// Put inserts a new record. A record with the same canonical text is a
// conflict, never an update.
func (s *Store) Put(ctx context.Context, r *analysis.Record) error {
	freq := r.CharacterFrequency
	if freq == nil {
		freq = map[string]int{}
	}
	freqJSON, err := json.Marshal(freq)
	if err != nil {
		return errors.NewInternal(err)
	}

	query := `
		INSERT INTO analyzed_strings (
			id, value, length, is_palindrome, unique_character_count,
			word_count, character_frequency_json, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.ExecContext(ctx, query,
		r.Fingerprint, r.Value, r.Length, r.IsPalindrome, r.UniqueCharacterCount,
		r.WordCount, string(freqJSON), r.CreatedAt.UnixNano(),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return errors.NewAlreadyExists(r.Fingerprint)
		}
		return errors.NewInternal(err)
	}

	return nil
}

// isUniqueConstraintError checks if the error is a SQLite UNIQUE or PRIMARY KEY violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "PRIMARY KEY constraint failed")
}

// GetByText retrieves a record by its canonical text.
func (s *Store) GetByText(ctx context.Context, value string) (*analysis.Record, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE value = ?`, value)
	r, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(value)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return r, nil
}

// DeleteByText removes the record with the given canonical text.
func (s *Store) DeleteByText(ctx context.Context, value string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM analyzed_strings WHERE value = ?`, value)
	if err != nil {
		return errors.NewInternal(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound(value)
	}

	return nil
}

// Find returns every record satisfying pred, newest first.
// A nil predicate matches everything.
func (s *Store) Find(ctx context.Context, pred filter.Predicate) ([]*analysis.Record, error) {
	if pred == nil {
		pred = filter.MatchAll
	}

	rows, err := s.db.QueryContext(ctx, selectColumns+` ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	records := make([]*analysis.Record, 0)
	for rows.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r, err := scanRecord(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		if pred(r) {
			records = append(records, r)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}

	return records, nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM analyzed_strings`).Scan(&n); err != nil {
		return 0, errors.NewInternal(err)
	}
	return n, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanRecord scans a single row into a Record.
func scanRecord(row rowScanner) (*analysis.Record, error) {
	var (
		r         analysis.Record
		freqJSON  string
		createdAt int64
	)

	err := row.Scan(
		&r.Fingerprint, &r.Value, &r.Length, &r.IsPalindrome, &r.UniqueCharacterCount,
		&r.WordCount, &freqJSON, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	r.CreatedAt = time.Unix(0, createdAt).UTC()

	r.CharacterFrequency = map[string]int{}
	if freqJSON != "" {
		if err := json.Unmarshal([]byte(freqJSON), &r.CharacterFrequency); err != nil {
			return nil, fmt.Errorf("decode character_frequency_json for %s: %w", r.Fingerprint, err)
		}
	}

	return &r, nil
}

package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/popcorn/internal/shared"
	"github.com/desertthunder/popcorn/internal/state"
)

var _ state.Store = (*LocalStorageRepository)(nil)

// StoredValue describes one row of the local_storage table.
type StoredValue struct {
	Key       string
	Value     string
	Revision  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LocalStorageRepository implements [state.Store] on the local_storage table.
//
// Every Set is an upsert that bumps the row's revision; there is no soft delete.
type LocalStorageRepository struct {
	db *sql.DB
}

// NewLocalStorageRepository creates a new [LocalStorageRepository] with the given database connection
func NewLocalStorageRepository(db *sql.DB) *LocalStorageRepository {
	return &LocalStorageRepository{db: db}
}

// Get returns the value stored under key.
func (r *LocalStorageRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM local_storage WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return value, true, nil
}

// Set inserts or replaces the value under key.
func (r *LocalStorageRepository) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return fmt.Errorf("%w: key is empty", shared.ErrInvalidInput)
	}

	query := `
		INSERT INTO local_storage (key, value, revision, created_at, updated_at)
		VALUES (?, ?, 1, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			revision = local_storage.revision + 1,
			updated_at = CURRENT_TIMESTAMP
	`

	if _, err := r.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Returns [shared.ErrKeyNotFound] when it does not exist.
func (r *LocalStorageRepository) Delete(ctx context.Context, key string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM local_storage WHERE key = ?", key)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrKeyNotFound, key)
	}
	return nil
}

// List returns every stored row ordered by key.
func (r *LocalStorageRepository) List(ctx context.Context) ([]StoredValue, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT key, value, revision, created_at, updated_at
		FROM local_storage
		ORDER BY key ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query local storage: %w", err)
	}
	defer rows.Close()

	var values []StoredValue
	for rows.Next() {
		var v StoredValue
		if err := rows.Scan(&v.Key, &v.Value, &v.Revision, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan local storage row: %w", err)
		}
		values = append(values, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating local storage: %w", err)
	}
	return values, nil
}

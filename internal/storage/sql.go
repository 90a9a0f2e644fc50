package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"meetingroom/internal/database"
	"meetingroom/internal/models"
)

// SQLStore keeps values in the storage_items table. It serves as the local
// persistent tier (SQLite) and as a RecordStore for the storage service.
type SQLStore struct {
	db       *database.DB
	maxBytes int
	now      func() time.Time
}

// NewSQLStore wraps an initialised database. maxBytes <= 0 disables the quota.
func NewSQLStore(db *database.DB, maxBytes int) *SQLStore {
	return &SQLStore{
		db:       db,
		maxBytes: maxBytes,
		now:      time.Now,
	}
}

func (s *SQLStore) Name() string {
	return TierLocal
}

func (s *SQLStore) Get(ctx context.Context, key string) (string, error) {
	rec, err := s.GetRecord(ctx, key)
	if err != nil {
		return "", err
	}
	return rec.Value, nil
}

func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	_, err := s.PutRecord(ctx, key, value, s.now())
	return err
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	err := s.DeleteRecord(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

// GetRecord loads the row for key
func (s *SQLStore) GetRecord(ctx context.Context, key string) (*models.StorageRecord, error) {
	var rec models.StorageRecord
	var updatedAt string

	err := s.db.QueryRowContext(ctx,
		"SELECT id, storage_key, value, updated_at FROM "+database.TableStorageItems+" WHERE storage_key = ?",
		key,
	).Scan(&rec.ID, &rec.Key, &rec.Value, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if t, perr := time.Parse(time.RFC3339Nano, updatedAt); perr == nil {
		rec.UpdatedAt = t
	}
	return &rec, nil
}

// PutRecord inserts or replaces the value for key, keeping the original row id
func (s *SQLStore) PutRecord(ctx context.Context, key, value string, updatedAt time.Time) (*models.StorageRecord, error) {
	if s.maxBytes > 0 && len(value) > s.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrQuotaExceeded, len(value), s.maxBytes)
	}

	stamp := updatedAt.UTC().Format(time.RFC3339Nano)
	if _, err := s.db.ExecContext(ctx, s.db.UpsertStatement(), key, uuid.NewString(), value, stamp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return s.GetRecord(ctx, key)
}

// DeleteRecord removes the row for key
func (s *SQLStore) DeleteRecord(ctx context.Context, key string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM "+database.TableStorageItems+" WHERE storage_key = ?", key)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

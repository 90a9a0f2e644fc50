package storage

import (
	"context"
	"time"

	"meetingroom/internal/models"
)

// RecordStore is the persistence behind the remote storage service.
// GetRecord and DeleteRecord return ErrNotFound for absent keys.
type RecordStore interface {
	GetRecord(ctx context.Context, key string) (*models.StorageRecord, error)
	PutRecord(ctx context.Context, key, value string, updatedAt time.Time) (*models.StorageRecord, error)
	DeleteRecord(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

package storage

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a key is absent from a tier
	ErrNotFound = errors.New("storage: key not found")

	// ErrUnavailable is returned when a tier cannot be reached
	ErrUnavailable = errors.New("storage: backend unavailable")

	// ErrQuotaExceeded is returned when a value is larger than a tier accepts
	ErrQuotaExceeded = errors.New("storage: quota exceeded")
)

// Backend is a string key-value tier
type Backend interface {
	Name() string
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Tier names used in logs and metrics
const (
	TierRemote = "remote"
	TierLocal  = "local"
	TierMemory = "memory"
)

// Operation names used in logs and metrics
const (
	OpGet    = "get"
	OpSet    = "set"
	OpDelete = "delete"
)

// OpObserver receives the outcome of every tier operation performed by a Chain
type OpObserver func(tier, op, result string)

// Result classifies an error returned by a tier for metrics
func Result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrQuotaExceeded):
		return "quota_exceeded"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}

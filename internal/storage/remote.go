package storage

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"meetingroom/internal/models"
)

// RemoteConfig configures the HTTP client of the remote storage service
type RemoteConfig struct {
	BaseURL    string
	Timeout    time.Duration
	RetryCount int
}

// RemoteStore talks to the key-value storage service over HTTP
type RemoteStore struct {
	httpClient *resty.Client
	logger     *logrus.Logger
	now        func() time.Time
}

// NewRemoteStore creates a client for the storage service at cfg.BaseURL
func NewRemoteStore(cfg RemoteConfig) *RemoteStore {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)

	return &RemoteStore{
		httpClient: client,
		logger:     logger,
		now:        time.Now,
	}
}

func (r *RemoteStore) Name() string {
	return TierRemote
}

func (r *RemoteStore) Get(ctx context.Context, key string) (string, error) {
	var record models.StorageRecord
	resp, err := r.httpClient.R().
		SetContext(ctx).
		SetPathParam("key", key).
		SetResult(&record).
		Get("/storage/{key}")
	if err != nil {
		r.logger.WithFields(logrus.Fields{"key": key, "error": err.Error()}).Warn("Remote storage get failed")
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
		return record.Value, nil
	case http.StatusNotFound:
		return "", ErrNotFound
	default:
		r.logger.WithFields(logrus.Fields{"key": key, "status": resp.StatusCode()}).Warn("Remote storage get returned unexpected status")
		return "", fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode())
	}
}

func (r *RemoteStore) Set(ctx context.Context, key, value string) error {
	updatedAt := r.now().UTC()
	resp, err := r.httpClient.R().
		SetContext(ctx).
		SetBody(models.PutStorageRequest{
			Key:       key,
			Value:     value,
			UpdatedAt: &updatedAt,
		}).
		Post("/storage")
	if err != nil {
		r.logger.WithFields(logrus.Fields{"key": key, "error": err.Error()}).Warn("Remote storage set failed")
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if resp.IsError() {
		r.logger.WithFields(logrus.Fields{"key": key, "status": resp.StatusCode()}).Warn("Remote storage set rejected")
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode())
	}

	r.logger.WithFields(logrus.Fields{"key": key, "bytes": len(value)}).Debug("Remote storage set")
	return nil
}

// Delete treats 404 as success
func (r *RemoteStore) Delete(ctx context.Context, key string) error {
	resp, err := r.httpClient.R().
		SetContext(ctx).
		SetPathParam("key", key).
		Delete("/storage/{key}")
	if err != nil {
		r.logger.WithFields(logrus.Fields{"key": key, "error": err.Error()}).Warn("Remote storage delete failed")
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if resp.StatusCode() == http.StatusNotFound {
		return nil
	}
	if resp.IsError() {
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode())
	}
	return nil
}

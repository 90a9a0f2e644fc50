package models

import "time"

// StorageRecord is one entry of the remote key-value service
type StorageRecord struct {
	ID        string    `json:"id" bson:"id"`
	Key       string    `json:"key" bson:"key"`
	Value     string    `json:"value" bson:"value"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// PutStorageRequest is the body of POST /storage
type PutStorageRequest struct {
	Key       string     `json:"key"`
	Value     string     `json:"value"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"meetingroom/internal/database"
	"meetingroom/internal/models"
)

// MongoStore is a RecordStore backed by the storage_items collection
type MongoStore struct {
	db         *database.MongoDB
	collection *mongo.Collection
}

// NewMongoStore creates a record store on an initialised MongoDB
func NewMongoStore(db *database.MongoDB) *MongoStore {
	return &MongoStore{
		db:         db,
		collection: db.Collection(database.CollectionStorageItems),
	}
}

func (m *MongoStore) GetRecord(ctx context.Context, key string) (*models.StorageRecord, error) {
	var rec models.StorageRecord
	err := m.collection.FindOne(ctx, bson.M{"key": key}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &rec, nil
}

func (m *MongoStore) PutRecord(ctx context.Context, key, value string, updatedAt time.Time) (*models.StorageRecord, error) {
	update := bson.M{
		"$set": bson.M{
			"value":     value,
			"updatedAt": updatedAt.UTC(),
		},
		"$setOnInsert": bson.M{
			"id":  uuid.NewString(),
			"key": key,
		},
	}

	opts := options.Update().SetUpsert(true)
	if _, err := m.collection.UpdateOne(ctx, bson.M{"key": key}, update, opts); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return m.GetRecord(ctx, key)
}

func (m *MongoStore) DeleteRecord(ctx context.Context, key string) error {
	res, err := m.collection.DeleteOne(ctx, bson.M{"key": key})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoStore) Ping(ctx context.Context) error {
	return m.db.Ping(ctx)
}

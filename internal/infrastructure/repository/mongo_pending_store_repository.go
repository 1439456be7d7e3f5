package repository

import (
	"context"
	"fmt"
	"time"

	"quell-core-api/internal/domain"
	"quell-core-api/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoPendingStoreRepository implements PendingStoreRepository using MongoDB
type MongoPendingStoreRepository struct {
	collection *mongo.Collection
}

// NewMongoPendingStoreRepository creates a new MongoDB pending store repository
func NewMongoPendingStoreRepository(db *mongo.Database) *MongoPendingStoreRepository {
	return &MongoPendingStoreRepository{
		collection: db.Collection("pending_stores"),
	}
}

// EnsureIndexes creates the temp token index and a TTL index that reaps rows
// once their registration window has passed. Expiry is still checked in the
// domain layer; the TTL index is garbage collection, not enforcement.
func (r *MongoPendingStoreRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "temp_token", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create pending store indexes: %w", err)
	}
	return nil
}

// Create inserts a pending store
func (r *MongoPendingStoreRepository) Create(ctx context.Context, pending *domain.PendingStore) error {
	if pending.CreatedAt.IsZero() {
		pending.CreatedAt = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, pending)
	if err != nil {
		return fmt.Errorf("failed to create pending store: %w", err)
	}
	return nil
}

// GetByToken retrieves a pending store by temp token, expired rows included
func (r *MongoPendingStoreRepository) GetByToken(ctx context.Context, tempToken string) (*domain.PendingStore, error) {
	var pending domain.PendingStore
	err := r.collection.FindOne(ctx, bson.M{"temp_token": tempToken}).Decode(&pending)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pending store: %w", err)
	}
	return &pending, nil
}

// Delete removes a consumed pending store
func (r *MongoPendingStoreRepository) Delete(ctx context.Context, tempToken string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"temp_token": tempToken})
	if err != nil {
		return fmt.Errorf("failed to delete pending store: %w", err)
	}
	return nil
}

var _ ports.PendingStoreRepository = (*MongoPendingStoreRepository)(nil)

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

// MongoStoreRepository implements StoreRepository using MongoDB
type MongoStoreRepository struct {
	collection *mongo.Collection
}

// NewMongoStoreRepository creates a new MongoDB store repository
func NewMongoStoreRepository(db *mongo.Database) *MongoStoreRepository {
	return &MongoStoreRepository{
		collection: db.Collection("stores"),
	}
}

// EnsureIndexes creates the unique shop_domain index and the widget token
// lookup index. Called once at startup.
func (r *MongoStoreRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "shop_domain", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "widget_token", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create store indexes: %w", err)
	}
	return nil
}

// Upsert creates or replaces the store keyed by shop_domain. The unique index
// plus the atomic upsert guarantee a reinstall can never duplicate a row.
func (r *MongoStoreRepository) Upsert(ctx context.Context, store *domain.Store) error {
	store.UpdatedAt = time.Now()
	if store.CreatedAt.IsZero() {
		store.CreatedAt = store.UpdatedAt
	}

	opts := options.Replace().SetUpsert(true)
	filter := bson.M{"shop_domain": store.ShopDomain}

	_, err := r.collection.ReplaceOne(ctx, filter, store, opts)
	if err != nil {
		return fmt.Errorf("failed to save store: %w", err)
	}
	return nil
}

// GetByID retrieves a store by id
func (r *MongoStoreRepository) GetByID(ctx context.Context, id string) (*domain.Store, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetByDomain retrieves a store by its canonical shop domain
func (r *MongoStoreRepository) GetByDomain(ctx context.Context, shopDomain string) (*domain.Store, error) {
	return r.findOne(ctx, bson.M{"shop_domain": shopDomain})
}

// GetByWidgetToken retrieves a store by its current widget token
func (r *MongoStoreRepository) GetByWidgetToken(ctx context.Context, token string) (*domain.Store, error) {
	return r.findOne(ctx, bson.M{"widget_token": token})
}

func (r *MongoStoreRepository) findOne(ctx context.Context, filter bson.M) (*domain.Store, error) {
	var store domain.Store
	err := r.collection.FindOne(ctx, filter).Decode(&store)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get store: %w", err)
	}
	return &store, nil
}

// ListByUser retrieves the stores owned by a dashboard user
func (r *MongoStoreRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Store, error) {
	return r.find(ctx, bson.M{"user_id": userID})
}

// List retrieves all stores
func (r *MongoStoreRepository) List(ctx context.Context) ([]*domain.Store, error) {
	return r.find(ctx, bson.M{})
}

func (r *MongoStoreRepository) find(ctx context.Context, filter bson.M) ([]*domain.Store, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list stores: %w", err)
	}
	defer cursor.Close(ctx)

	var stores []*domain.Store
	for cursor.Next(ctx) {
		var store domain.Store
		if err := cursor.Decode(&store); err != nil {
			return nil, fmt.Errorf("failed to decode store: %w", err)
		}
		stores = append(stores, &store)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return stores, nil
}

// UpdateStatus changes a store's lifecycle status
func (r *MongoStoreRepository) UpdateStatus(ctx context.Context, id string, status domain.StoreStatus) error {
	return r.updateFields(ctx, id, bson.M{"status": status})
}

// UpdateWidgetToken swaps the store's widget token in a single field update
func (r *MongoStoreRepository) UpdateWidgetToken(ctx context.Context, id string, token string) error {
	return r.updateFields(ctx, id, bson.M{"widget_token": token})
}

// UpdateSync records a completed catalog sync
func (r *MongoStoreRepository) UpdateSync(ctx context.Context, id string, syncedAt time.Time, productCount int) error {
	return r.updateFields(ctx, id, bson.M{"last_sync_at": syncedAt, "product_count": productCount})
}

func (r *MongoStoreRepository) updateFields(ctx context.Context, id string, fields bson.M) error {
	fields["updated_at"] = time.Now()
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("failed to update store: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("store not found")
	}
	return nil
}

var _ ports.StoreRepository = (*MongoStoreRepository)(nil)

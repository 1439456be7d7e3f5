package repository

import (
	"context"
	"fmt"
	"time"

	"quell-core-api/internal/domain"
	"quell-core-api/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoTokenUsageRepository implements TokenUsageRepository using MongoDB
type MongoTokenUsageRepository struct {
	collection *mongo.Collection
}

// NewMongoTokenUsageRepository creates a new MongoDB token usage repository
func NewMongoTokenUsageRepository(db *mongo.Database) *MongoTokenUsageRepository {
	return &MongoTokenUsageRepository{
		collection: db.Collection("token_usage"),
	}
}

// Record inserts one usage row
func (r *MongoTokenUsageRepository) Record(ctx context.Context, usage *domain.TokenUsage) error {
	if usage.CreatedAt.IsZero() {
		usage.CreatedAt = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, usage)
	if err != nil {
		return fmt.Errorf("failed to record token usage: %w", err)
	}
	return nil
}

// Totals aggregates one store's token spend since the given time
func (r *MongoTokenUsageRepository) Totals(ctx context.Context, storeID string, since time.Time) (*domain.TokenTotals, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"store_id":   storeID,
			"created_at": bson.M{"$gte": since},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":               nil,
			"prompt_tokens":     bson.M{"$sum": "$prompt_tokens"},
			"completion_tokens": bson.M{"$sum": "$completion_tokens"},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate token usage: %w", err)
	}
	defer cursor.Close(ctx)

	var results []domain.TokenTotals
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode aggregation: %w", err)
	}
	if len(results) == 0 {
		return &domain.TokenTotals{}, nil
	}
	return &results[0], nil
}

// TotalsByStore aggregates platform-wide token spend per store
func (r *MongoTokenUsageRepository) TotalsByStore(ctx context.Context, since time.Time) ([]domain.StoreTokenTotals, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"created_at": bson.M{"$gte": since},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":               "$store_id",
			"prompt_tokens":     bson.M{"$sum": "$prompt_tokens"},
			"completion_tokens": bson.M{"$sum": "$completion_tokens"},
		}}},
		{{Key: "$sort", Value: bson.M{"prompt_tokens": -1}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate token usage: %w", err)
	}
	defer cursor.Close(ctx)

	var results []domain.StoreTokenTotals
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode aggregation: %w", err)
	}
	return results, nil
}

var _ ports.TokenUsageRepository = (*MongoTokenUsageRepository)(nil)

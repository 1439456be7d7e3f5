package repository

import (
	"context"
	"fmt"
	"time"

	"quell-core-api/internal/domain"
	"quell-core-api/internal/ports"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoAppearanceRepository implements AppearanceRepository using MongoDB
type MongoAppearanceRepository struct {
	collection *mongo.Collection
}

// NewMongoAppearanceRepository creates a new MongoDB appearance repository
func NewMongoAppearanceRepository(db *mongo.Database) *MongoAppearanceRepository {
	return &MongoAppearanceRepository{
		collection: db.Collection("chatbot_appearance"),
	}
}

// Get retrieves a store's appearance, (nil, nil) when none is saved
func (r *MongoAppearanceRepository) Get(ctx context.Context, storeID string) (*domain.Appearance, error) {
	var appearance domain.Appearance
	err := r.collection.FindOne(ctx, bson.M{"store_id": storeID}).Decode(&appearance)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appearance: %w", err)
	}
	return &appearance, nil
}

// Upsert saves the store's appearance keyed by store_id
func (r *MongoAppearanceRepository) Upsert(ctx context.Context, appearance *domain.Appearance) error {
	if appearance.ID == "" {
		appearance.ID = uuid.NewString()
	}
	appearance.UpdatedAt = time.Now()

	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"store_id": appearance.StoreID}, appearance, opts)
	if err != nil {
		return fmt.Errorf("failed to save appearance: %w", err)
	}
	return nil
}

var _ ports.AppearanceRepository = (*MongoAppearanceRepository)(nil)

// MongoAnalysisRepository implements AnalysisRepository using MongoDB
type MongoAnalysisRepository struct {
	collection *mongo.Collection
}

// NewMongoAnalysisRepository creates a new MongoDB analysis repository
func NewMongoAnalysisRepository(db *mongo.Database) *MongoAnalysisRepository {
	return &MongoAnalysisRepository{
		collection: db.Collection("conversation_analysis"),
	}
}

// Save upserts the analysis for a conversation
func (r *MongoAnalysisRepository) Save(ctx context.Context, analysis *domain.ConversationAnalysis) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"conversation_id": analysis.ConversationID}, analysis, opts)
	if err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}
	return nil
}

// ListByStore lists a store's analysis results
func (r *MongoAnalysisRepository) ListByStore(ctx context.Context, storeID string) ([]*domain.ConversationAnalysis, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"store_id": storeID})
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer cursor.Close(ctx)

	var analyses []*domain.ConversationAnalysis
	for cursor.Next(ctx) {
		var analysis domain.ConversationAnalysis
		if err := cursor.Decode(&analysis); err != nil {
			return nil, fmt.Errorf("failed to decode analysis: %w", err)
		}
		analyses = append(analyses, &analysis)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return analyses, nil
}

var _ ports.AnalysisRepository = (*MongoAnalysisRepository)(nil)

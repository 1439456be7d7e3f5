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

// MongoConversationRepository implements ConversationRepository using MongoDB,
// backed by the conversations and messages collections.
type MongoConversationRepository struct {
	conversations *mongo.Collection
	messages      *mongo.Collection
}

// NewMongoConversationRepository creates a new MongoDB conversation repository
func NewMongoConversationRepository(db *mongo.Database) *MongoConversationRepository {
	return &MongoConversationRepository{
		conversations: db.Collection("conversations"),
		messages:      db.Collection("messages"),
	}
}

// EnsureIndexes creates the per-store lookup indexes
func (r *MongoConversationRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.conversations.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "store_id", Value: 1}, {Key: "customer_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create conversation indexes: %w", err)
	}
	_, err = r.messages.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "conversation_id", Value: 1}, {Key: "created_at", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create message indexes: %w", err)
	}
	return nil
}

// EnsureConversation returns the conversation for (storeID, customerID),
// creating it atomically when it does not exist.
func (r *MongoConversationRepository) EnsureConversation(ctx context.Context, storeID, customerID string) (*domain.Conversation, error) {
	now := time.Now()
	filter := bson.M{"store_id": storeID, "customer_id": customerID}
	update := bson.M{
		"$setOnInsert": bson.M{
			"_id":        uuid.NewString(),
			"store_id":   storeID,
			"customer_id": customerID,
			"created_at": now,
		},
		"$set": bson.M{"last_message_at": now},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var conversation domain.Conversation
	if err := r.conversations.FindOneAndUpdate(ctx, filter, update, opts).Decode(&conversation); err != nil {
		return nil, fmt.Errorf("failed to ensure conversation: %w", err)
	}
	return &conversation, nil
}

// GetConversation retrieves a conversation by id
func (r *MongoConversationRepository) GetConversation(ctx context.Context, id string) (*domain.Conversation, error) {
	var conversation domain.Conversation
	err := r.conversations.FindOne(ctx, bson.M{"_id": id}).Decode(&conversation)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	return &conversation, nil
}

// ListConversations lists a store's conversations, newest activity first
func (r *MongoConversationRepository) ListConversations(ctx context.Context, storeID string) ([]*domain.Conversation, error) {
	return r.findConversations(ctx, bson.M{"store_id": storeID})
}

// ListUnanalyzed lists the store's conversations pending batch analysis
func (r *MongoConversationRepository) ListUnanalyzed(ctx context.Context, storeID string) ([]*domain.Conversation, error) {
	return r.findConversations(ctx, bson.M{"store_id": storeID, "analyzed": false})
}

func (r *MongoConversationRepository) findConversations(ctx context.Context, filter bson.M) ([]*domain.Conversation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "last_message_at", Value: -1}})
	cursor, err := r.conversations.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer cursor.Close(ctx)

	var conversations []*domain.Conversation
	for cursor.Next(ctx) {
		var conversation domain.Conversation
		if err := cursor.Decode(&conversation); err != nil {
			return nil, fmt.Errorf("failed to decode conversation: %w", err)
		}
		conversations = append(conversations, &conversation)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return conversations, nil
}

// MarkAnalyzed flags a conversation as covered by batch analysis
func (r *MongoConversationRepository) MarkAnalyzed(ctx context.Context, conversationID string) error {
	_, err := r.conversations.UpdateOne(ctx,
		bson.M{"_id": conversationID},
		bson.M{"$set": bson.M{"analyzed": true}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark conversation analyzed: %w", err)
	}
	return nil
}

// AppendMessage inserts a message and bumps the conversation's activity
// timestamp; customer turns also increment the unread counter.
func (r *MongoConversationRepository) AppendMessage(ctx context.Context, msg *domain.Message) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	if _, err := r.messages.InsertOne(ctx, msg); err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}

	update := bson.M{"$set": bson.M{"last_message_at": msg.CreatedAt}}
	if msg.Sender == domain.SenderCustomer {
		update["$inc"] = bson.M{"unread_count": 1}
	}
	if _, err := r.conversations.UpdateOne(ctx, bson.M{"_id": msg.ConversationID}, update); err != nil {
		return fmt.Errorf("failed to update conversation: %w", err)
	}
	return nil
}

// ListMessages returns a conversation's messages in chronological order
func (r *MongoConversationRepository) ListMessages(ctx context.Context, conversationID string) ([]*domain.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.messages.Find(ctx, bson.M{"conversation_id": conversationID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer cursor.Close(ctx)

	var messages []*domain.Message
	for cursor.Next(ctx) {
		var msg domain.Message
		if err := cursor.Decode(&msg); err != nil {
			return nil, fmt.Errorf("failed to decode message: %w", err)
		}
		messages = append(messages, &msg)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return messages, nil
}

// MarkRead flags every message of the conversation read and clears the counter
func (r *MongoConversationRepository) MarkRead(ctx context.Context, conversationID string) error {
	_, err := r.messages.UpdateMany(ctx,
		bson.M{"conversation_id": conversationID, "read": false},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark messages read: %w", err)
	}

	_, err = r.conversations.UpdateOne(ctx,
		bson.M{"_id": conversationID},
		bson.M{"$set": bson.M{"unread_count": 0}},
	)
	if err != nil {
		return fmt.Errorf("failed to reset unread count: %w", err)
	}
	return nil
}

// CountMessagesByDay buckets a store's message volume per calendar day
func (r *MongoConversationRepository) CountMessagesByDay(ctx context.Context, storeID string, since time.Time) ([]domain.DayCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"store_id":   storeID,
			"created_at": bson.M{"$gte": since},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{"$dateToString": bson.M{
				"format": "%Y-%m-%d",
				"date":   "$created_at",
			}},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}

	cursor, err := r.messages.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate messages: %w", err)
	}
	defer cursor.Close(ctx)

	var buckets []domain.DayCount
	if err := cursor.All(ctx, &buckets); err != nil {
		return nil, fmt.Errorf("failed to decode aggregation: %w", err)
	}
	return buckets, nil
}

var _ ports.ConversationRepository = (*MongoConversationRepository)(nil)

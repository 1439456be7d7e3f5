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

// MongoTicketRepository implements TicketRepository using MongoDB
type MongoTicketRepository struct {
	collection *mongo.Collection
}

// NewMongoTicketRepository creates a new MongoDB support ticket repository
func NewMongoTicketRepository(db *mongo.Database) *MongoTicketRepository {
	return &MongoTicketRepository{
		collection: db.Collection("tickets"),
	}
}

// Create inserts a support ticket
func (r *MongoTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	_, err := r.collection.InsertOne(ctx, ticket)
	if err != nil {
		return fmt.Errorf("failed to create ticket: %w", err)
	}
	return nil
}

// GetByID retrieves a support ticket by id
func (r *MongoTicketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	var ticket domain.Ticket
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&ticket)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	return &ticket, nil
}

// ListByUser lists a user's support tickets, newest first
func (r *MongoTicketRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Ticket, error) {
	return r.find(ctx, bson.M{"user_id": userID})
}

// List lists all support tickets, newest first
func (r *MongoTicketRepository) List(ctx context.Context) ([]*domain.Ticket, error) {
	return r.find(ctx, bson.M{})
}

func (r *MongoTicketRepository) find(ctx context.Context, filter bson.M) ([]*domain.Ticket, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	defer cursor.Close(ctx)

	var tickets []*domain.Ticket
	for cursor.Next(ctx) {
		var ticket domain.Ticket
		if err := cursor.Decode(&ticket); err != nil {
			return nil, fmt.Errorf("failed to decode ticket: %w", err)
		}
		tickets = append(tickets, &ticket)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return tickets, nil
}

// UpdateStatus moves a support ticket through its lifecycle
func (r *MongoTicketRepository) UpdateStatus(ctx context.Context, id string, status domain.TicketStatus) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to update ticket: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("ticket not found")
	}
	return nil
}

var _ ports.TicketRepository = (*MongoTicketRepository)(nil)

// MongoCustomerTicketRepository implements CustomerTicketRepository using MongoDB
type MongoCustomerTicketRepository struct {
	collection *mongo.Collection
}

// NewMongoCustomerTicketRepository creates a new MongoDB customer ticket repository
func NewMongoCustomerTicketRepository(db *mongo.Database) *MongoCustomerTicketRepository {
	return &MongoCustomerTicketRepository{
		collection: db.Collection("customer_tickets"),
	}
}

// Create inserts a customer ticket
func (r *MongoCustomerTicketRepository) Create(ctx context.Context, ticket *domain.CustomerTicket) error {
	_, err := r.collection.InsertOne(ctx, ticket)
	if err != nil {
		return fmt.Errorf("failed to create customer ticket: %w", err)
	}
	return nil
}

// GetByID retrieves a customer ticket by id
func (r *MongoCustomerTicketRepository) GetByID(ctx context.Context, id string) (*domain.CustomerTicket, error) {
	var ticket domain.CustomerTicket
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&ticket)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer ticket: %w", err)
	}
	return &ticket, nil
}

// ListByStore lists a store's customer tickets, newest first
func (r *MongoCustomerTicketRepository) ListByStore(ctx context.Context, storeID string) ([]*domain.CustomerTicket, error) {
	return r.find(ctx, bson.M{"store_id": storeID})
}

// ListByStoreAndEmail is the widget-facing lookup: a visitor sees only their
// own tickets
func (r *MongoCustomerTicketRepository) ListByStoreAndEmail(ctx context.Context, storeID, email string) ([]*domain.CustomerTicket, error) {
	return r.find(ctx, bson.M{"store_id": storeID, "customer_email": email})
}

func (r *MongoCustomerTicketRepository) find(ctx context.Context, filter bson.M) ([]*domain.CustomerTicket, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list customer tickets: %w", err)
	}
	defer cursor.Close(ctx)

	var tickets []*domain.CustomerTicket
	for cursor.Next(ctx) {
		var ticket domain.CustomerTicket
		if err := cursor.Decode(&ticket); err != nil {
			return nil, fmt.Errorf("failed to decode customer ticket: %w", err)
		}
		tickets = append(tickets, &ticket)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return tickets, nil
}

// Update replaces a customer ticket
func (r *MongoCustomerTicketRepository) Update(ctx context.Context, ticket *domain.CustomerTicket) error {
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": ticket.ID}, ticket)
	if err != nil {
		return fmt.Errorf("failed to update customer ticket: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("customer ticket not found")
	}
	return nil
}

var _ ports.CustomerTicketRepository = (*MongoCustomerTicketRepository)(nil)

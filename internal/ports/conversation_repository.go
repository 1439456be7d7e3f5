package ports

import (
	"context"
	"time"

	"quell-core-api/internal/domain"
)

// ConversationRepository defines the interface for conversation and message
// persistence plus the aggregations the analytics endpoints read.
type ConversationRepository interface {
	// EnsureConversation returns the conversation for (storeID, customerID),
	// creating it if it does not exist yet.
	EnsureConversation(ctx context.Context, storeID, customerID string) (*domain.Conversation, error)

	GetConversation(ctx context.Context, id string) (*domain.Conversation, error)
	ListConversations(ctx context.Context, storeID string) ([]*domain.Conversation, error)
	ListUnanalyzed(ctx context.Context, storeID string) ([]*domain.Conversation, error)
	MarkAnalyzed(ctx context.Context, conversationID string) error

	AppendMessage(ctx context.Context, msg *domain.Message) error
	ListMessages(ctx context.Context, conversationID string) ([]*domain.Message, error)

	// MarkRead flags every customer message of the conversation as read and
	// resets the unread counter.
	MarkRead(ctx context.Context, conversationID string) error

	// CountMessagesByDay buckets message volume per calendar day since the
	// given time.
	CountMessagesByDay(ctx context.Context, storeID string, since time.Time) ([]domain.DayCount, error)
}

// TokenUsageRepository records and aggregates assistant token spend.
type TokenUsageRepository interface {
	Record(ctx context.Context, usage *domain.TokenUsage) error
	Totals(ctx context.Context, storeID string, since time.Time) (*domain.TokenTotals, error)
	TotalsByStore(ctx context.Context, since time.Time) ([]domain.StoreTokenTotals, error)
}

// AnalysisRepository persists batch conversation analysis results.
type AnalysisRepository interface {
	Save(ctx context.Context, analysis *domain.ConversationAnalysis) error
	ListByStore(ctx context.Context, storeID string) ([]*domain.ConversationAnalysis, error)
}

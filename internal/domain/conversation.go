package domain

import "time"

// MessageSender identifies who produced a chat turn
type MessageSender string

const (
	SenderCustomer  MessageSender = "customer"
	SenderAssistant MessageSender = "assistant"
)

// Conversation groups the chat turns of one widget session for a store
type Conversation struct {
	ID            string    `json:"id" bson:"_id"`
	StoreID       string    `json:"store_id" bson:"store_id"`
	CustomerID    string    `json:"customer_id" bson:"customer_id"` // Widget-generated session id
	CustomerEmail string    `json:"customer_email,omitempty" bson:"customer_email,omitempty"`
	LastMessageAt time.Time `json:"last_message_at" bson:"last_message_at"`
	UnreadCount   int       `json:"unread_count" bson:"unread_count"`
	Analyzed      bool      `json:"analyzed" bson:"analyzed"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
}

// Message is a single chat turn
type Message struct {
	ID             string        `json:"id" bson:"_id"`
	ConversationID string        `json:"conversation_id" bson:"conversation_id"`
	StoreID        string        `json:"store_id" bson:"store_id"`
	Sender         MessageSender `json:"sender" bson:"sender"`
	Body           string        `json:"body" bson:"body"`
	Read           bool          `json:"read" bson:"read"`
	CreatedAt      time.Time     `json:"created_at" bson:"created_at"`
}

// TokenUsage records the token spend of one assistant reply
type TokenUsage struct {
	ID               string    `json:"id" bson:"_id"`
	StoreID          string    `json:"store_id" bson:"store_id"`
	ConversationID   string    `json:"conversation_id" bson:"conversation_id"`
	PromptTokens     int       `json:"prompt_tokens" bson:"prompt_tokens"`
	CompletionTokens int       `json:"completion_tokens" bson:"completion_tokens"`
	CreatedAt        time.Time `json:"created_at" bson:"created_at"`
}

// ConversationAnalysis holds the outcome of the batch AI analysis for one conversation
type ConversationAnalysis struct {
	ID             string    `json:"id" bson:"_id"`
	ConversationID string    `json:"conversation_id" bson:"conversation_id"`
	StoreID        string    `json:"store_id" bson:"store_id"`
	Sentiment      string    `json:"sentiment" bson:"sentiment"`
	Topics         []string  `json:"topics" bson:"topics"`
	Summary        string    `json:"summary" bson:"summary"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
}

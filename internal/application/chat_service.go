package application

import (
	"context"
	"fmt"
	"time"

	"quell-core-api/internal/domain"
	"quell-core-api/internal/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ChatService relays widget chat turns to the assistant workflow, persists
// both sides of the exchange, and notifies subscribed dashboards.
type ChatService struct {
	conversations ports.ConversationRepository
	usage         ports.TokenUsageRepository
	assistant     ports.AssistantClient
	realtime      ports.RealtimePublisher
	logger        zerolog.Logger
	now           func() time.Time
}

// NewChatService creates a new chat service
func NewChatService(
	conversations ports.ConversationRepository,
	usage ports.TokenUsageRepository,
	assistant ports.AssistantClient,
	realtime ports.RealtimePublisher,
	logger zerolog.Logger,
) *ChatService {
	return &ChatService{
		conversations: conversations,
		usage:         usage,
		assistant:     assistant,
		realtime:      realtime,
		logger:        logger,
		now:           time.Now,
	}
}

// ChatInput is one widget turn
type ChatInput struct {
	CustomerID string `json:"customerId"`
	Message    string `json:"message"`
	IsUserInfo bool   `json:"isUserInfo,omitempty"`
}

// ChatOutput is the assistant's reply
type ChatOutput struct {
	ConversationID string `json:"conversationId"`
	Reply          string `json:"reply"`
}

// HandleChat persists the customer turn, relays it upstream, persists the
// assistant's reply plus its token spend, and emits the realtime event. An
// upstream failure after the customer turn was saved is surfaced as-is; the
// turn stays in the inbox either way.
func (s *ChatService) HandleChat(ctx context.Context, store *domain.Store, input ChatInput) (*ChatOutput, error) {
	if input.Message == "" {
		return nil, fmt.Errorf("message is required")
	}
	if input.CustomerID == "" {
		input.CustomerID = uuid.NewString()
	}

	conversation, err := s.conversations.EnsureConversation(ctx, store.ID, input.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve conversation: %w", err)
	}

	customerMsg := &domain.Message{
		ID:             uuid.NewString(),
		ConversationID: conversation.ID,
		StoreID:        store.ID,
		Sender:         domain.SenderCustomer,
		Body:           input.Message,
		CreatedAt:      s.now(),
	}
	if err := s.conversations.AppendMessage(ctx, customerMsg); err != nil {
		return nil, fmt.Errorf("failed to persist message: %w", err)
	}

	reply, err := s.assistant.SendChat(ctx, &ports.ChatRequest{
		StoreDomain: store.ShopDomain,
		CustomerID:  input.CustomerID,
		Message:     input.Message,
		IsUserInfo:  input.IsUserInfo,
	})
	if err != nil {
		return nil, fmt.Errorf("assistant relay failed: %w", err)
	}

	assistantMsg := &domain.Message{
		ID:             uuid.NewString(),
		ConversationID: conversation.ID,
		StoreID:        store.ID,
		Sender:         domain.SenderAssistant,
		Body:           reply.Reply,
		CreatedAt:      s.now(),
	}
	if err := s.conversations.AppendMessage(ctx, assistantMsg); err != nil {
		return nil, fmt.Errorf("failed to persist reply: %w", err)
	}

	if reply.PromptTokens > 0 || reply.CompletionTokens > 0 {
		err := s.usage.Record(ctx, &domain.TokenUsage{
			ID:               uuid.NewString(),
			StoreID:          store.ID,
			ConversationID:   conversation.ID,
			PromptTokens:     reply.PromptTokens,
			CompletionTokens: reply.CompletionTokens,
			CreatedAt:        s.now(),
		})
		if err != nil {
			s.logger.Warn().Err(err).Str("conversation", conversation.ID).Msg("Failed to record token usage")
		}
	}

	s.realtime.Publish(store.ID, "conversation:new_message", map[string]interface{}{
		"conversationId": conversation.ID,
		"customerId":     input.CustomerID,
		"message":        customerMsg,
		"reply":          assistantMsg,
	})

	return &ChatOutput{ConversationID: conversation.ID, Reply: reply.Reply}, nil
}

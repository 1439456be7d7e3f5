package application

import (
	"context"
	"fmt"

	"quell-core-api/internal/domain"
	"quell-core-api/internal/ports"

	"github.com/rs/zerolog"
)

// InboxService backs the dashboard conversation views
type InboxService struct {
	conversations ports.ConversationRepository
	stores        ports.StoreRepository
	realtime      ports.RealtimePublisher
	logger        zerolog.Logger
}

// NewInboxService creates a new inbox service
func NewInboxService(
	conversations ports.ConversationRepository,
	stores ports.StoreRepository,
	realtime ports.RealtimePublisher,
	logger zerolog.Logger,
) *InboxService {
	return &InboxService{
		conversations: conversations,
		stores:        stores,
		realtime:      realtime,
		logger:        logger,
	}
}

// checkStoreAccess verifies the user owns the store backing a conversation.
func (s *InboxService) checkStoreAccess(ctx context.Context, userID, storeID string) error {
	store, err := s.stores.GetByID(ctx, storeID)
	if err != nil {
		return fmt.Errorf("failed to look up store: %w", err)
	}
	if store == nil {
		return ErrNotFound
	}
	if store.UserID != userID {
		return ErrForbidden
	}
	return nil
}

// ListConversations returns the store's conversations, newest activity first.
func (s *InboxService) ListConversations(ctx context.Context, userID, storeID string) ([]*domain.Conversation, error) {
	if err := s.checkStoreAccess(ctx, userID, storeID); err != nil {
		return nil, err
	}
	return s.conversations.ListConversations(ctx, storeID)
}

// ListMessages returns a conversation's messages in chronological order.
func (s *InboxService) ListMessages(ctx context.Context, userID, conversationID string) ([]*domain.Message, error) {
	conversation, err := s.conversations.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up conversation: %w", err)
	}
	if conversation == nil {
		return nil, ErrNotFound
	}
	if err := s.checkStoreAccess(ctx, userID, conversation.StoreID); err != nil {
		return nil, err
	}
	return s.conversations.ListMessages(ctx, conversationID)
}

// MarkRead clears the conversation's unread state and pushes the read event
// to other dashboard sessions watching the same store.
func (s *InboxService) MarkRead(ctx context.Context, userID, conversationID string) error {
	conversation, err := s.conversations.GetConversation(ctx, conversationID)
	if err != nil {
		return fmt.Errorf("failed to look up conversation: %w", err)
	}
	if conversation == nil {
		return ErrNotFound
	}
	if err := s.checkStoreAccess(ctx, userID, conversation.StoreID); err != nil {
		return err
	}

	if err := s.conversations.MarkRead(ctx, conversationID); err != nil {
		return fmt.Errorf("failed to mark conversation read: %w", err)
	}

	s.realtime.Publish(conversation.StoreID, "conversation:read", map[string]interface{}{
		"conversationId": conversationID,
	})
	return nil
}

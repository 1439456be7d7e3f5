package application_test

import (
	"context"
	"errors"
	"testing"

	"quell-core-api/internal/application"
	"quell-core-api/internal/domain"
	"quell-core-api/internal/ports"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newChatFixture(assistant *stubAssistant) (*application.ChatService, *memConversationRepo, *memUsageRepo, *recordingRealtime) {
	conversations := newMemConversationRepo()
	usage := &memUsageRepo{}
	realtime := &recordingRealtime{}
	svc := application.NewChatService(conversations, usage, assistant, realtime, zerolog.Nop())
	return svc, conversations, usage, realtime
}

func TestHandleChatRelaysAndPersistsBothTurns(t *testing.T) {
	assistant := &stubAssistant{
		chatFn: func(ctx context.Context, req *ports.ChatRequest) (*ports.ChatReply, error) {
			require.Equal(t, "acme.myshopify.com", req.StoreDomain)
			require.Equal(t, "Where is my order?", req.Message)
			return &ports.ChatReply{Reply: "It ships tomorrow.", PromptTokens: 10, CompletionTokens: 5}, nil
		},
	}
	svc, conversations, usage, realtime := newChatFixture(assistant)

	store := &domain.Store{ID: "store-1", ShopDomain: "acme.myshopify.com"}
	out, err := svc.HandleChat(context.Background(), store, application.ChatInput{
		CustomerID: "visitor-1",
		Message:    "Where is my order?",
	})
	require.NoError(t, err)
	require.Equal(t, "It ships tomorrow.", out.Reply)
	require.NotEmpty(t, out.ConversationID)

	messages, err := conversations.ListMessages(context.Background(), out.ConversationID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	require.Equal(t, domain.SenderCustomer, messages[0].Sender)
	require.Equal(t, domain.SenderAssistant, messages[1].Sender)

	require.Len(t, usage.records, 1)
	require.Equal(t, 10, usage.records[0].PromptTokens)
	require.Equal(t, 5, usage.records[0].CompletionTokens)

	require.Len(t, realtime.events, 1)
	require.Equal(t, "conversation:new_message", realtime.events[0].Event)
	require.Equal(t, "store-1", realtime.events[0].StoreID)
}

func TestHandleChatReusesConversationPerCustomer(t *testing.T) {
	assistant := &stubAssistant{
		chatFn: func(ctx context.Context, req *ports.ChatRequest) (*ports.ChatReply, error) {
			return &ports.ChatReply{Reply: "ok"}, nil
		},
	}
	svc, conversations, _, _ := newChatFixture(assistant)

	store := &domain.Store{ID: "store-1", ShopDomain: "acme.myshopify.com"}
	first, err := svc.HandleChat(context.Background(), store, application.ChatInput{CustomerID: "visitor-1", Message: "hi"})
	require.NoError(t, err)
	second, err := svc.HandleChat(context.Background(), store, application.ChatInput{CustomerID: "visitor-1", Message: "again"})
	require.NoError(t, err)
	require.Equal(t, first.ConversationID, second.ConversationID)

	messages, err := conversations.ListMessages(context.Background(), first.ConversationID)
	require.NoError(t, err)
	require.Len(t, messages, 4)
}

func TestHandleChatGeneratesCustomerID(t *testing.T) {
	assistant := &stubAssistant{
		chatFn: func(ctx context.Context, req *ports.ChatRequest) (*ports.ChatReply, error) {
			require.NotEmpty(t, req.CustomerID)
			return &ports.ChatReply{Reply: "ok"}, nil
		},
	}
	svc, _, _, _ := newChatFixture(assistant)

	store := &domain.Store{ID: "store-1", ShopDomain: "acme.myshopify.com"}
	out, err := svc.HandleChat(context.Background(), store, application.ChatInput{Message: "hi"})
	require.NoError(t, err)
	require.NotEmpty(t, out.ConversationID)
}

func TestHandleChatUpstreamFailureKeepsCustomerTurn(t *testing.T) {
	assistant := &stubAssistant{
		chatFn: func(ctx context.Context, req *ports.ChatRequest) (*ports.ChatReply, error) {
			return nil, errors.New("webhook timed out")
		},
	}
	svc, conversations, usage, realtime := newChatFixture(assistant)

	store := &domain.Store{ID: "store-1", ShopDomain: "acme.myshopify.com"}
	_, err := svc.HandleChat(context.Background(), store, application.ChatInput{CustomerID: "visitor-1", Message: "hi"})
	require.Error(t, err)

	// The customer turn stays in the inbox even though the relay failed.
	messages, err := conversations.ListMessages(context.Background(), "conv-visitor-1")
	require.NoError(t, err)
	require.Len(t, messages, 1)
	require.Equal(t, domain.SenderCustomer, messages[0].Sender)

	require.Empty(t, usage.records)
	require.Empty(t, realtime.events)
}

func TestHandleChatRejectsEmptyMessage(t *testing.T) {
	svc, _, _, _ := newChatFixture(&stubAssistant{})
	store := &domain.Store{ID: "store-1", ShopDomain: "acme.myshopify.com"}
	_, err := svc.HandleChat(context.Background(), store, application.ChatInput{CustomerID: "visitor-1"})
	require.Error(t, err)
}

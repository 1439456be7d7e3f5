package application

import (
	"context"
	"fmt"
	"time"

	"quell-core-api/internal/domain"
	"quell-core-api/internal/ports"

	"github.com/rs/zerolog"
)

// AnalyticsService aggregates conversation volume and token spend for the
// dashboard charts.
type AnalyticsService struct {
	conversations ports.ConversationRepository
	usage         ports.TokenUsageRepository
	tickets       ports.CustomerTicketRepository
	stores        ports.StoreRepository
	logger        zerolog.Logger
	now           func() time.Time
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(
	conversations ports.ConversationRepository,
	usage ports.TokenUsageRepository,
	tickets ports.CustomerTicketRepository,
	stores ports.StoreRepository,
	logger zerolog.Logger,
) *AnalyticsService {
	return &AnalyticsService{
		conversations: conversations,
		usage:         usage,
		tickets:       tickets,
		stores:        stores,
		logger:        logger,
		now:           time.Now,
	}
}

func (s *AnalyticsService) checkStoreAccess(ctx context.Context, userID, storeID string) error {
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

// Overview returns the dashboard landing numbers for a store over a window.
func (s *AnalyticsService) Overview(ctx context.Context, userID, storeID string, days int) (*domain.AnalyticsOverview, error) {
	if err := s.checkStoreAccess(ctx, userID, storeID); err != nil {
		return nil, err
	}
	since := s.since(days)

	conversations, err := s.conversations.ListConversations(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	byDay, err := s.conversations.CountMessagesByDay(ctx, storeID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate messages: %w", err)
	}
	messages := 0
	for _, bucket := range byDay {
		messages += bucket.Count
	}

	open := 0
	customerTickets, err := s.tickets.ListByStore(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	for _, t := range customerTickets {
		if t.Status == domain.TicketStatusOpen || t.Status == domain.TicketStatusInProgress {
			open++
		}
	}

	totals, err := s.usage.Totals(ctx, storeID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate token usage: %w", err)
	}

	return &domain.AnalyticsOverview{
		Conversations: len(conversations),
		Messages:      messages,
		OpenTickets:   open,
		TokenTotals:   totals,
	}, nil
}

// MessagesByDay returns per-day message volume for the chart.
func (s *AnalyticsService) MessagesByDay(ctx context.Context, userID, storeID string, days int) ([]domain.DayCount, error) {
	if err := s.checkStoreAccess(ctx, userID, storeID); err != nil {
		return nil, err
	}
	return s.conversations.CountMessagesByDay(ctx, storeID, s.since(days))
}

// TokenUsage returns the store's token spend over a window.
func (s *AnalyticsService) TokenUsage(ctx context.Context, userID, storeID string, days int) (*domain.TokenTotals, error) {
	if err := s.checkStoreAccess(ctx, userID, storeID); err != nil {
		return nil, err
	}
	return s.usage.Totals(ctx, storeID, s.since(days))
}

func (s *AnalyticsService) since(days int) time.Time {
	if days <= 0 {
		days = 30
	}
	return s.now().AddDate(0, 0, -days)
}

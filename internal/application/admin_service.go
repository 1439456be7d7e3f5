package application

import (
	"context"
	"fmt"
	"time"

	"quell-core-api/internal/domain"
	"quell-core-api/internal/ports"

	"github.com/rs/zerolog"
)

// AdminService backs the internal admin dashboard
type AdminService struct {
	stores  ports.StoreRepository
	tickets ports.TicketRepository
	usage   ports.TokenUsageRepository
	cache   ports.BootstrapCache
	logger  zerolog.Logger
}

// NewAdminService creates a new admin service
func NewAdminService(
	stores ports.StoreRepository,
	tickets ports.TicketRepository,
	usage ports.TokenUsageRepository,
	cache ports.BootstrapCache,
	logger zerolog.Logger,
) *AdminService {
	return &AdminService{stores: stores, tickets: tickets, usage: usage, cache: cache, logger: logger}
}

// ListStores returns every store on the platform.
func (s *AdminService) ListStores(ctx context.Context) ([]*domain.Store, error) {
	return s.stores.List(ctx)
}

// ListTickets returns every merchant support ticket across the platform, for
// the admin triage queue.
func (s *AdminService) ListTickets(ctx context.Context) ([]*domain.Ticket, error) {
	return s.tickets.List(ctx)
}

// TokenUsageByStore returns the platform-wide token spend rollup.
func (s *AdminService) TokenUsageByStore(ctx context.Context, days int) ([]domain.StoreTokenTotals, error) {
	if days <= 0 {
		days = 30
	}
	return s.usage.TotalsByStore(ctx, time.Now().AddDate(0, 0, -days))
}

// SetStoreStatus suspends, reactivates, or disconnects a store.
// Disconnection is the soft delete: the row stays, the widget goes dark.
func (s *AdminService) SetStoreStatus(ctx context.Context, storeID string, status domain.StoreStatus) (*domain.Store, error) {
	switch status {
	case domain.StoreStatusActive, domain.StoreStatusSuspended, domain.StoreStatusDisconnected:
	default:
		return nil, fmt.Errorf("invalid status %q", status)
	}

	store, err := s.stores.GetByID(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up store: %w", err)
	}
	if store == nil {
		return nil, ErrNotFound
	}

	if err := s.stores.UpdateStatus(ctx, storeID, status); err != nil {
		return nil, fmt.Errorf("failed to update store status: %w", err)
	}

	// The bootstrap cache may hold a payload served while the store was
	// active; drop it so the new status takes effect on the next widget load.
	if err := s.cache.Invalidate(ctx, store.WidgetToken); err != nil {
		s.logger.Warn().Err(err).Str("store", storeID).Msg("Failed to invalidate bootstrap cache")
	}

	store.Status = status
	s.logger.Info().Str("store", storeID).Str("status", string(status)).Msg("Store status changed")
	return store, nil
}

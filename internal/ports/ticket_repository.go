package ports

import (
	"context"

	"quell-core-api/internal/domain"
)

// TicketRepository defines the interface for merchant support ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Ticket, error)
	List(ctx context.Context) ([]*domain.Ticket, error)
	UpdateStatus(ctx context.Context, id string, status domain.TicketStatus) error
}

// CustomerTicketRepository defines the interface for widget-raised ticket persistence.
type CustomerTicketRepository interface {
	Create(ctx context.Context, ticket *domain.CustomerTicket) error
	GetByID(ctx context.Context, id string) (*domain.CustomerTicket, error)
	ListByStore(ctx context.Context, storeID string) ([]*domain.CustomerTicket, error)
	ListByStoreAndEmail(ctx context.Context, storeID, email string) ([]*domain.CustomerTicket, error)
	Update(ctx context.Context, ticket *domain.CustomerTicket) error
}

// AppearanceRepository persists per-store widget customization.
// Get returns (nil, nil) when the store has no saved appearance.
type AppearanceRepository interface {
	Get(ctx context.Context, storeID string) (*domain.Appearance, error)
	Upsert(ctx context.Context, appearance *domain.Appearance) error
}

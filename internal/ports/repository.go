package ports

import (
	"context"
	"time"

	"quell-core-api/internal/domain"
)

// StoreRepository defines the interface for store persistence.
// Lookup methods return (nil, nil) when no row matches.
type StoreRepository interface {
	// Upsert creates or replaces the store keyed by shop_domain. A reinstall
	// for an existing domain must update the row in place, never duplicate it.
	Upsert(ctx context.Context, store *domain.Store) error

	GetByID(ctx context.Context, id string) (*domain.Store, error)
	GetByDomain(ctx context.Context, shopDomain string) (*domain.Store, error)
	GetByWidgetToken(ctx context.Context, token string) (*domain.Store, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Store, error)
	List(ctx context.Context) ([]*domain.Store, error)

	UpdateStatus(ctx context.Context, id string, status domain.StoreStatus) error
	UpdateWidgetToken(ctx context.Context, id string, token string) error
	UpdateSync(ctx context.Context, id string, syncedAt time.Time, productCount int) error
}

// PendingStoreRepository defines the interface for the provisional records
// bridging OAuth completion and signup.
type PendingStoreRepository interface {
	Create(ctx context.Context, pending *domain.PendingStore) error

	// GetByToken returns (nil, nil) for an unknown temp token. Expiry is a
	// domain decision, not a repository one: expired rows are still returned.
	GetByToken(ctx context.Context, tempToken string) (*domain.PendingStore, error)

	Delete(ctx context.Context, tempToken string) error
}

// UserRepository defines the interface for dashboard account persistence.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

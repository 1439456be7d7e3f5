package domain

import "time"

// StoreStatus represents the lifecycle state of a connected store
type StoreStatus string

const (
	StoreStatusActive       StoreStatus = "active"
	StoreStatusSuspended    StoreStatus = "suspended"
	StoreStatusDisconnected StoreStatus = "disconnected"
)

// Store represents a Shopify merchant tenant using the chatbot platform
type Store struct {
	ID           string      `json:"id" bson:"_id"`
	UserID       string      `json:"user_id" bson:"user_id"`
	ShopDomain   string      `json:"shop_domain" bson:"shop_domain"` // Canonical host, unique
	StoreID      string      `json:"store_id" bson:"store_id"`       // Shopify shop slug
	Name         string      `json:"name,omitempty" bson:"name,omitempty"` // Display name from the Shopify shop profile
	AccessToken  string      `json:"-" bson:"access_token"`          // Shopify API token, never serialized
	WidgetToken  string      `json:"widget_token" bson:"widget_token"`
	Status       StoreStatus `json:"status" bson:"status"`
	InstalledAt  time.Time   `json:"installed_at" bson:"installed_at"`
	LastSyncAt   *time.Time  `json:"last_sync_at,omitempty" bson:"last_sync_at,omitempty"`
	ProductCount int         `json:"product_count" bson:"product_count"`
	CreatedAt    time.Time   `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at" bson:"updated_at"`
}

// WidgetEnabled reports whether the store's widget may serve traffic. Both
// suspension and disconnection take the widget dark; only an active store
// answers bootstrap and chat requests.
func (s *Store) WidgetEnabled() bool {
	return s.Status == StoreStatusActive
}

// PendingStore bridges Shopify OAuth completion and user account creation.
// It is consumed on signup and expires one hour after creation.
type PendingStore struct {
	ID          string    `json:"id" bson:"_id"`
	ShopDomain  string    `json:"shop_domain" bson:"shop_domain"`
	StoreID     string    `json:"store_id" bson:"store_id"`
	ShopName    string    `json:"shop_name,omitempty" bson:"shop_name,omitempty"`
	AccessToken string    `json:"-" bson:"access_token"`
	TempToken   string    `json:"temp_token" bson:"temp_token"`
	ExpiresAt   time.Time `json:"expires_at" bson:"expires_at"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

// Expired reports whether the pending store's registration window has closed.
func (p *PendingStore) Expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}

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

// pendingStoreTTL is the registration window between OAuth completion and signup
const pendingStoreTTL = time.Hour

// StoreService handles the store lifecycle: OAuth install and reinstall,
// widget token rotation, catalog sync, and appearance settings.
type StoreService struct {
	stores      ports.StoreRepository
	pending     ports.PendingStoreRepository
	appearances ports.AppearanceRepository
	shopify     ports.ShopifyClient
	assistant   ports.AssistantClient
	cache       ports.BootstrapCache
	logger      zerolog.Logger
	now         func() time.Time
}

// NewStoreService creates a new store service
func NewStoreService(
	stores ports.StoreRepository,
	pending ports.PendingStoreRepository,
	appearances ports.AppearanceRepository,
	shopify ports.ShopifyClient,
	assistant ports.AssistantClient,
	cache ports.BootstrapCache,
	logger zerolog.Logger,
) *StoreService {
	return &StoreService{
		stores:      stores,
		pending:     pending,
		appearances: appearances,
		shopify:     shopify,
		assistant:   assistant,
		cache:       cache,
		logger:      logger,
		now:         time.Now,
	}
}

// InstallURL builds the Shopify authorize redirect for a shop.
func (s *StoreService) InstallURL(shop string, state string) (string, error) {
	if shop == "" {
		return "", fmt.Errorf("shop parameter is required")
	}
	return s.shopify.GenerateAuthURL(shop, state)
}

// CallbackResult tells the HTTP layer where to send the merchant next.
type CallbackResult struct {
	// Reinstall is true when the shop already had a store row; the merchant
	// is sent to login instead of signup.
	Reinstall  bool
	ShopDomain string
	// TempToken is set on first install; it parameterizes the signup form.
	TempToken string
}

// HandleOAuthCallback exchanges the authorization code and either rotates the
// existing store's access token (reinstall) or parks the credentials in a
// pending store until signup completes (first install). The reinstall path is
// a single upsert on shop_domain, so two concurrent callbacks for the same
// shop cannot produce duplicate rows.
func (s *StoreService) HandleOAuthCallback(ctx context.Context, shop string, code string) (*CallbackResult, error) {
	accessToken, err := s.shopify.ExchangeToken(ctx, shop, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange token: %w", err)
	}

	shopDomain := domain.NormalizeHost(shop)

	// The display name comes from the shop profile; a failed fetch is not
	// worth failing the install over.
	var shopName string
	if shopInfo, err := s.shopify.GetShop(ctx, shopDomain, accessToken); err != nil {
		s.logger.Warn().Err(err).Str("shop", shopDomain).Msg("Failed to fetch shop profile")
	} else if shopInfo != nil {
		shopName = shopInfo.Name
	}

	existing, err := s.stores.GetByDomain(ctx, shopDomain)
	if err != nil {
		return nil, fmt.Errorf("failed to look up store: %w", err)
	}

	if existing != nil {
		// Reinstall: rotate the access token, reactivate, keep everything else.
		existing.AccessToken = accessToken
		if shopName != "" {
			existing.Name = shopName
		}
		existing.Status = domain.StoreStatusActive
		existing.InstalledAt = s.now()
		existing.UpdatedAt = s.now()
		if err := s.stores.Upsert(ctx, existing); err != nil {
			return nil, fmt.Errorf("failed to update store: %w", err)
		}

		s.logger.Info().Str("shop", shopDomain).Msg("Store reinstalled, access token rotated")
		return &CallbackResult{Reinstall: true, ShopDomain: shopDomain}, nil
	}

	tempToken, err := newSecretToken(32)
	if err != nil {
		return nil, err
	}

	now := s.now()
	pending := &domain.PendingStore{
		ID:          uuid.NewString(),
		ShopDomain:  shopDomain,
		StoreID:     shopSlug(shop),
		ShopName:    shopName,
		AccessToken: accessToken,
		TempToken:   tempToken,
		ExpiresAt:   now.Add(pendingStoreTTL),
		CreatedAt:   now,
	}
	if err := s.pending.Create(ctx, pending); err != nil {
		return nil, fmt.Errorf("failed to create pending store: %w", err)
	}

	s.logger.Info().Str("shop", shopDomain).Msg("OAuth completed for new shop, pending signup")
	return &CallbackResult{ShopDomain: shopDomain, TempToken: tempToken}, nil
}

// ListByUser returns the stores owned by a dashboard user.
func (s *StoreService) ListByUser(ctx context.Context, userID string) ([]*domain.Store, error) {
	return s.stores.ListByUser(ctx, userID)
}

// getOwned loads a store and enforces ownership.
func (s *StoreService) getOwned(ctx context.Context, userID, storeID string) (*domain.Store, error) {
	store, err := s.stores.GetByID(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up store: %w", err)
	}
	if store == nil {
		return nil, ErrNotFound
	}
	if store.UserID != userID {
		return nil, ErrForbidden
	}
	return store, nil
}

// RotateWidgetToken replaces the store's widget token. The swap is a single
// field update, so exactly one token is active at any time.
func (s *StoreService) RotateWidgetToken(ctx context.Context, userID, storeID string) (*domain.Store, error) {
	store, err := s.getOwned(ctx, userID, storeID)
	if err != nil {
		return nil, err
	}

	oldToken := store.WidgetToken
	token, err := newSecretToken(32)
	if err != nil {
		return nil, err
	}

	if err := s.stores.UpdateWidgetToken(ctx, store.ID, token); err != nil {
		return nil, fmt.Errorf("failed to rotate widget token: %w", err)
	}

	if err := s.cache.Invalidate(ctx, oldToken); err != nil {
		s.logger.Warn().Err(err).Str("store", store.ID).Msg("Failed to invalidate bootstrap cache")
	}

	store.WidgetToken = token
	s.logger.Info().Str("shop", store.ShopDomain).Msg("Widget token rotated")
	return store, nil
}

// TriggerSync fires the catalog sync workflow and refreshes the sync
// metadata. There are no retries; on failure the merchant retries manually.
func (s *StoreService) TriggerSync(ctx context.Context, userID, storeID string) (*domain.Store, error) {
	store, err := s.getOwned(ctx, userID, storeID)
	if err != nil {
		return nil, err
	}

	if err := s.assistant.TriggerSync(ctx, store.ShopDomain); err != nil {
		return nil, fmt.Errorf("sync trigger failed: %w", err)
	}

	count, err := s.shopify.CountProducts(ctx, store.ShopDomain, store.AccessToken)
	if err != nil {
		s.logger.Warn().Err(err).Str("shop", store.ShopDomain).Msg("Failed to refresh product count")
		count = store.ProductCount
	}

	syncedAt := s.now()
	if err := s.stores.UpdateSync(ctx, store.ID, syncedAt, count); err != nil {
		return nil, fmt.Errorf("failed to record sync: %w", err)
	}

	store.LastSyncAt = &syncedAt
	store.ProductCount = count
	return store, nil
}

// GetAppearance returns the store's appearance, with defaults when none is saved.
func (s *StoreService) GetAppearance(ctx context.Context, userID, storeID string) (*domain.Appearance, error) {
	store, err := s.getOwned(ctx, userID, storeID)
	if err != nil {
		return nil, err
	}

	appearance, err := s.appearances.Get(ctx, store.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load appearance: %w", err)
	}
	if appearance == nil {
		appearance = &domain.Appearance{
			StoreID:      store.ID,
			PrimaryColor: domain.DefaultPrimaryColor,
			BubbleShape:  domain.DefaultBubbleShape,
			Position:     domain.DefaultWidgetPosition,
			ShowLogo:     true,
		}
	}
	return appearance, nil
}

// SaveAppearance persists the widget customization and drops the cached
// bootstrap payload so the widget picks the change up on next load.
func (s *StoreService) SaveAppearance(ctx context.Context, userID, storeID string, appearance *domain.Appearance) (*domain.Appearance, error) {
	store, err := s.getOwned(ctx, userID, storeID)
	if err != nil {
		return nil, err
	}

	appearance.StoreID = store.ID
	appearance.UpdatedAt = s.now()
	if err := s.appearances.Upsert(ctx, appearance); err != nil {
		return nil, fmt.Errorf("failed to save appearance: %w", err)
	}

	if err := s.cache.Invalidate(ctx, store.WidgetToken); err != nil {
		s.logger.Warn().Err(err).Str("store", store.ID).Msg("Failed to invalidate bootstrap cache")
	}

	return appearance, nil
}

// HandleUninstalled processes Shopify's app/uninstalled webhook: the store is
// soft-disconnected, never deleted, so a reinstall later finds its history. An
// unknown shop is a no-op because webhooks can arrive for stores that never
// finished signup.
func (s *StoreService) HandleUninstalled(ctx context.Context, shop string) error {
	shopDomain := domain.NormalizeHost(shop)
	if shopDomain == "" {
		return fmt.Errorf("shop domain is required")
	}

	store, err := s.stores.GetByDomain(ctx, shopDomain)
	if err != nil {
		return fmt.Errorf("failed to look up store: %w", err)
	}
	if store == nil {
		s.logger.Info().Str("shop", shopDomain).Msg("Uninstall webhook for unknown shop, ignoring")
		return nil
	}

	if err := s.stores.UpdateStatus(ctx, store.ID, domain.StoreStatusDisconnected); err != nil {
		return fmt.Errorf("failed to disconnect store: %w", err)
	}

	if err := s.cache.Invalidate(ctx, store.WidgetToken); err != nil {
		s.logger.Warn().Err(err).Str("store", store.ID).Msg("Failed to invalidate bootstrap cache")
	}

	s.logger.Info().Str("shop", shopDomain).Msg("Store disconnected after app uninstall")
	return nil
}

// shopSlug extracts the Shopify shop slug from a myshopify domain
// ("foo.myshopify.com" -> "foo").
func shopSlug(shop string) string {
	host := domain.NormalizeHost(shop)
	for i := 0; i < len(host); i++ {
		if host[i] == '.' {
			return host[:i]
		}
	}
	return host
}

package application

import (
	"context"
	"fmt"

	"quell-core-api/internal/domain"
	"quell-core-api/internal/ports"

	"github.com/rs/zerolog"
)

// BootstrapService resolves the public widget configuration from a widget
// token. This is the one flow exempt from the domain-lock middleware: on
// first load the widget only knows its token, not its store domain.
type BootstrapService struct {
	stores      ports.StoreRepository
	appearances ports.AppearanceRepository
	cache       ports.BootstrapCache
	logger      zerolog.Logger
}

// NewBootstrapService creates a new bootstrap service
func NewBootstrapService(
	stores ports.StoreRepository,
	appearances ports.AppearanceRepository,
	cache ports.BootstrapCache,
	logger zerolog.Logger,
) *BootstrapService {
	return &BootstrapService{
		stores:      stores,
		appearances: appearances,
		cache:       cache,
		logger:      logger,
	}
}

// Bootstrap resolves a widget token to the flat public configuration. An
// unknown token is ErrInvalidWidgetToken regardless of how close it was. When
// an Origin header is present its host must match the store's domain; absent
// Origin is allowed through, because the first script load may not carry one.
func (s *BootstrapService) Bootstrap(ctx context.Context, widgetToken string, origin string) (*domain.WidgetBootstrap, error) {
	if widgetToken == "" {
		return nil, ErrInvalidWidgetToken
	}

	if cached, err := s.cache.Get(ctx, widgetToken); err == nil && cached != nil {
		if origin != "" && domain.NormalizeHost(origin) != domain.NormalizeHost(cached.ShopDomain) {
			s.logger.Warn().Str("origin", origin).Str("shop", cached.ShopDomain).Msg("Bootstrap origin mismatch")
			return nil, ErrOriginMismatch
		}
		return cached, nil
	}

	store, err := s.stores.GetByWidgetToken(ctx, widgetToken)
	if err != nil {
		return nil, fmt.Errorf("failed to look up store: %w", err)
	}
	if store == nil {
		return nil, ErrInvalidWidgetToken
	}
	// A suspended or disconnected store's token is indistinguishable from an
	// unknown one; the widget goes dark, it does not explain itself.
	if !store.WidgetEnabled() {
		return nil, ErrInvalidWidgetToken
	}

	if origin != "" && domain.NormalizeHost(origin) != domain.NormalizeHost(store.ShopDomain) {
		s.logger.Warn().Str("origin", origin).Str("shop", store.ShopDomain).Msg("Bootstrap origin mismatch")
		return nil, ErrOriginMismatch
	}

	appearance, err := s.appearances.Get(ctx, store.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load appearance: %w", err)
	}

	bootstrap := domain.BootstrapFor(store, appearance)

	if err := s.cache.Set(ctx, widgetToken, bootstrap); err != nil {
		s.logger.Warn().Err(err).Str("shop", store.ShopDomain).Msg("Failed to cache bootstrap payload")
	}

	return bootstrap, nil
}

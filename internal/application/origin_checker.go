package application

import (
	"context"

	"quell-core-api/internal/domain"
	"quell-core-api/internal/ports"

	"github.com/rs/zerolog"
)

// OriginChecker is the single origin predicate shared by the HTTP CORS layer
// and the websocket upgrader. An origin is allowed when it is absent, on the
// static allow-list, or its host matches a registered store's domain.
type OriginChecker struct {
	allowed map[string]bool
	stores  ports.StoreRepository
	logger  zerolog.Logger
}

// NewOriginChecker creates an origin checker from the static allow-list and
// the store directory.
func NewOriginChecker(staticOrigins []string, stores ports.StoreRepository, logger zerolog.Logger) *OriginChecker {
	allowed := make(map[string]bool, len(staticOrigins))
	for _, origin := range staticOrigins {
		allowed[domain.NormalizeHost(origin)] = true
	}
	return &OriginChecker{
		allowed: allowed,
		stores:  stores,
		logger:  logger,
	}
}

// IsOriginAllowed decides whether a cross-origin request may reach the API.
// A repository error fails closed: the caller gets (false, err) and must
// surface a 500-class error, not a 403.
func (c *OriginChecker) IsOriginAllowed(ctx context.Context, origin string) (bool, error) {
	if origin == "" {
		return true, nil
	}

	host := domain.NormalizeHost(origin)
	if c.allowed[host] {
		return true, nil
	}

	store, err := c.stores.GetByDomain(ctx, host)
	if err != nil {
		c.logger.Error().Err(err).Str("origin", origin).Msg("Origin lookup failed, failing closed")
		return false, err
	}

	return store != nil, nil
}

// IsStaticOrigin reports whether the origin is on the static allow-list. The
// domain-lock middleware lets these through unchecked because they are the
// platform's own dashboards, not embedded widgets.
func (c *OriginChecker) IsStaticOrigin(origin string) bool {
	if origin == "" {
		return false
	}
	return c.allowed[domain.NormalizeHost(origin)]
}

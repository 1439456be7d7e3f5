package ports

import (
	"context"

	"quell-core-api/internal/domain"
)

// BootstrapCache fronts the widget-bootstrap lookup. Misses and cache errors
// fall through to the database; Invalidate is called on appearance updates
// and widget token rotation.
type BootstrapCache interface {
	Get(ctx context.Context, widgetToken string) (*domain.WidgetBootstrap, error)
	Set(ctx context.Context, widgetToken string, bootstrap *domain.WidgetBootstrap) error
	Invalidate(ctx context.Context, widgetToken string) error
}

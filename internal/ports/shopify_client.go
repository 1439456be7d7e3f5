package ports

import (
	"context"
	"net/url"

	shopify "github.com/bold-commerce/go-shopify/v4"
)

// ShopifyClient defines the interface for the Shopify API operations the
// platform needs: the OAuth handshake and the product/shop reads behind the
// catalog sync.
type ShopifyClient interface {
	// Authentication
	GenerateAuthURL(shop string, state string) (string, error)
	ExchangeToken(ctx context.Context, shop string, code string) (string, error)

	// VerifyCallback checks the hmac query parameter Shopify signs the OAuth
	// callback with.
	VerifyCallback(u *url.URL) (bool, error)

	// Shop API
	GetShop(ctx context.Context, shop string, accessToken string) (*shopify.Shop, error)

	// Product API (catalog sync)
	CountProducts(ctx context.Context, shop string, accessToken string) (int, error)
}

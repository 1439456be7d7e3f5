package shopify

import (
	"context"
	"fmt"
	"net/url"

	"quell-core-api/internal/ports"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"
)

type client struct {
	apiKey    string
	apiSecret string
	app       goshopify.App
	logger    zerolog.Logger
}

// NewClient creates a Shopify client adapter. redirectURI is the OAuth
// callback this backend serves; scopes is Shopify's comma-separated format.
func NewClient(apiKey, apiSecret, scopes, redirectURI string, logger zerolog.Logger) ports.ShopifyClient {
	app := goshopify.App{
		ApiKey:      apiKey,
		ApiSecret:   apiSecret,
		RedirectUrl: redirectURI,
		Scope:       scopes,
	}
	return &client{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		app:       app,
		logger:    logger,
	}
}

// createClient is a helper to create a goshopify client for one shop
func (c *client) createClient(shopDomain string, accessToken string) (*goshopify.Client, error) {
	shopClient, err := goshopify.NewClient(c.app, shopDomain, accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return shopClient, nil
}

func (c *client) GenerateAuthURL(shop string, state string) (string, error) {
	authURL, err := c.app.AuthorizeUrl(shop, state)
	if err != nil {
		return "", fmt.Errorf("failed to build authorize URL: %w", err)
	}

	c.logger.Info().
		Str("shop", shop).
		Str("scopes", c.app.Scope).
		Msg("Generated OAuth authorization URL")

	return authURL, nil
}

func (c *client) ExchangeToken(ctx context.Context, shop string, code string) (string, error) {
	token, err := c.app.GetAccessToken(ctx, shop, code)
	if err != nil {
		return "", fmt.Errorf("failed to exchange token: %w", err)
	}
	return token, nil
}

// VerifyCallback checks the hmac parameter Shopify appends to the OAuth
// callback query string.
func (c *client) VerifyCallback(u *url.URL) (bool, error) {
	ok, err := c.app.VerifyAuthorizationURL(u)
	if err != nil {
		return false, fmt.Errorf("failed to verify callback: %w", err)
	}
	return ok, nil
}

func (c *client) GetShop(ctx context.Context, shopDomain string, accessToken string) (*goshopify.Shop, error) {
	shopClient, err := c.createClient(shopDomain, accessToken)
	if err != nil {
		return nil, err
	}
	shop, err := shopClient.Shop.Get(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get shop: %w", err)
	}
	return shop, nil
}

func (c *client) CountProducts(ctx context.Context, shopDomain string, accessToken string) (int, error) {
	shopClient, err := c.createClient(shopDomain, accessToken)
	if err != nil {
		return 0, err
	}
	count, err := shopClient.Product.Count(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

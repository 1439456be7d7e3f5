package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config is the immutable process configuration, loaded once at startup and
// passed explicitly into the components that need it.
type Config struct {
	Port        string
	BackendURL  string
	FrontendURL string

	MongoURI      string
	MongoDatabase string
	RedisAddr     string

	JWTSecret string

	// Static CORS allow-list, merged with the dynamic per-store domain check.
	CORSOrigins []string

	ShopifyAPIKey    string
	ShopifyAPISecret string
	ShopifyScopes    string

	// Assistant workflow webhooks. The per-flow variants fall back to the
	// base URL when unset.
	N8NWebhookURL         string
	N8NAnalysisWebhookURL string
	N8NSyncWebhookURL     string
}

// Load reads configuration from the environment, honoring a .env file when
// present. It fails on missing secrets rather than running half-configured.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:                  getEnv("PORT", "8080"),
		BackendURL:            getEnv("BACKEND_URL", "http://localhost:8080"),
		FrontendURL:           getEnv("FRONTEND_URL", "http://localhost:5173"),
		MongoURI:              getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase:         getEnv("MONGODB_DATABASE", "quell"),
		RedisAddr:             getEnv("REDIS_ADDR", "localhost:6379"),
		JWTSecret:             os.Getenv("JWT_SECRET"),
		ShopifyAPIKey:         os.Getenv("SHOPIFY_API_KEY"),
		ShopifyAPISecret:      os.Getenv("SHOPIFY_API_SECRET"),
		ShopifyScopes:         getEnv("SHOPIFY_SCOPES", "read_products,read_orders"),
		N8NWebhookURL:         os.Getenv("N8N_WEBHOOK_URL"),
		N8NAnalysisWebhookURL: os.Getenv("N8N_ANALYSIS_WEBHOOK_URL"),
		N8NSyncWebhookURL:     os.Getenv("N8N_SYNC_WEBHOOK_URL"),
	}

	for _, origin := range strings.Split(os.Getenv("CORS_ORIGINS"), ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
		}
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}
	if cfg.ShopifyAPIKey == "" || cfg.ShopifyAPISecret == "" {
		return nil, fmt.Errorf("SHOPIFY_API_KEY and SHOPIFY_API_SECRET environment variables are required")
	}

	if cfg.N8NAnalysisWebhookURL == "" {
		cfg.N8NAnalysisWebhookURL = cfg.N8NWebhookURL
	}
	if cfg.N8NSyncWebhookURL == "" {
		cfg.N8NSyncWebhookURL = cfg.N8NWebhookURL
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

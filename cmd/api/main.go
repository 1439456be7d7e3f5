package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"quell-core-api/internal/application"
	"quell-core-api/internal/config"
	"quell-core-api/internal/infrastructure/cache"
	"quell-core-api/internal/infrastructure/metrics"
	"quell-core-api/internal/infrastructure/n8n"
	"quell-core-api/internal/infrastructure/realtime"
	"quell-core-api/internal/infrastructure/repository"
	apiinfra "quell-core-api/internal/infrastructure/api"
	shopifyinfra "quell-core-api/internal/infrastructure/shopify"
	"quell-core-api/internal/jwtauth"
	"quell-core-api/internal/ports"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	quellmiddleware "quell-core-api/internal/infrastructure/middleware"
)

func main() {
	// Initialize logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Connect to MongoDB
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer client.Disconnect(context.Background())

	db := client.Database(cfg.MongoDatabase)

	// Initialize repositories
	storeRepo := repository.NewMongoStoreRepository(db)
	pendingRepo := repository.NewMongoPendingStoreRepository(db)
	userRepo := repository.NewMongoUserRepository(db)
	conversationRepo := repository.NewMongoConversationRepository(db)
	usageRepo := repository.NewMongoTokenUsageRepository(db)
	ticketRepo := repository.NewMongoTicketRepository(db)
	customerTicketRepo := repository.NewMongoCustomerTicketRepository(db)
	appearanceRepo := repository.NewMongoAppearanceRepository(db)
	analysisRepo := repository.NewMongoAnalysisRepository(db)

	indexCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := storeRepo.EnsureIndexes(indexCtx); err != nil {
		logger.Fatal().Err(err).Msg("Failed to create store indexes")
	}
	if err := pendingRepo.EnsureIndexes(indexCtx); err != nil {
		logger.Fatal().Err(err).Msg("Failed to create pending store indexes")
	}
	if err := userRepo.EnsureIndexes(indexCtx); err != nil {
		logger.Fatal().Err(err).Msg("Failed to create user indexes")
	}
	if err := conversationRepo.EnsureIndexes(indexCtx); err != nil {
		logger.Fatal().Err(err).Msg("Failed to create conversation indexes")
	}

	// Redis-backed bootstrap cache; the service runs without it.
	var bootstrapCache ports.BootstrapCache = cache.NoopBootstrapCache{}
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(indexCtx).Err(); err != nil {
		logger.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("Redis unavailable, widget bootstrap cache disabled")
	} else {
		bootstrapCache = cache.NewRedisBootstrapCache(redisClient)
	}

	// Initialize infrastructure clients
	collectors := metrics.New()
	tokens := jwtauth.NewManager(cfg.JWTSecret, 24*time.Hour)
	shopifyClient := shopifyinfra.NewClient(
		cfg.ShopifyAPIKey,
		cfg.ShopifyAPISecret,
		cfg.ShopifyScopes,
		cfg.BackendURL+"/api/shopify/callback",
		logger,
	)
	assistant := n8n.NewClient(cfg.N8NWebhookURL, cfg.N8NAnalysisWebhookURL, cfg.N8NSyncWebhookURL, logger)

	originChecker := application.NewOriginChecker(cfg.CORSOrigins, storeRepo, logger)
	hub := realtime.NewHub(originChecker.IsOriginAllowed, logger, func(event string) {
		collectors.RealtimeEvents.WithLabelValues(event).Inc()
	})

	// Initialize application services
	authService := application.NewAuthService(userRepo, storeRepo, pendingRepo, tokens, logger)
	storeService := application.NewStoreService(storeRepo, pendingRepo, appearanceRepo, shopifyClient, assistant, bootstrapCache, logger)
	bootstrapService := application.NewBootstrapService(storeRepo, appearanceRepo, bootstrapCache, logger)
	chatService := application.NewChatService(conversationRepo, usageRepo, assistant, hub, logger)
	inboxService := application.NewInboxService(conversationRepo, storeRepo, hub, logger)
	ticketService := application.NewTicketService(ticketRepo, customerTicketRepo, storeRepo, hub, logger)
	analyticsService := application.NewAnalyticsService(conversationRepo, usageRepo, customerTicketRepo, storeRepo, logger)
	analysisService := application.NewAnalysisService(conversationRepo, analysisRepo, storeRepo, assistant, logger)
	adminService := application.NewAdminService(storeRepo, ticketRepo, usageRepo, bootstrapCache, logger)

	// Initialize HTTP handlers
	authHandler := apiinfra.NewAuthHandler(authService, logger)
	bootstrapHandler := apiinfra.NewBootstrapHandler(bootstrapService, logger, func(status string) {
		collectors.BootstrapRequests.WithLabelValues(status).Inc()
	})
	chatHandler := apiinfra.NewChatHandler(chatService, storeRepo, logger, func(status string) {
		collectors.ChatRelays.WithLabelValues(status).Inc()
	})
	storeHandler := apiinfra.NewStoreHandler(storeService, logger)
	inboxHandler := apiinfra.NewInboxHandler(inboxService, logger)
	ticketHandler := apiinfra.NewTicketHandler(ticketService, logger)
	analyticsHandler := apiinfra.NewAnalyticsHandler(analyticsService, analysisService, logger)
	adminHandler := apiinfra.NewAdminHandler(adminService, logger)

	domainLock := quellmiddleware.NewDomainLock(originChecker, storeRepo, logger, func(reason string) {
		collectors.WidgetAuthRejections.WithLabelValues(reason).Inc()
	})

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(quellmiddleware.SecurityHeaders)
	r.Use(cors.Handler(cors.Options{
		AllowOriginFunc: func(r *http.Request, origin string) bool {
			allowed, err := originChecker.IsOriginAllowed(r.Context(), origin)
			if err != nil {
				logger.Error().Err(err).Str("origin", origin).Msg("Origin check failed")
				return false
			}
			return allowed
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Widget-Token"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", collectors.Handler())
	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/doc.json"),
	))
	r.Get("/docs/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		http.ServeFile(w, r, "./docs/swagger.json")
	})

	// Realtime: dashboards join their store room after connecting.
	r.Get("/ws", hub.ServeWS)

	// Shopify OAuth and webhooks
	r.Get("/api/shopify/install", oauthInstallHandler(storeService, logger))
	r.Get("/api/shopify/callback", oauthCallbackHandler(storeService, shopifyClient, cfg.FrontendURL, logger))
	r.Post("/api/shopify/webhooks", shopifyWebhookHandler(storeService, cfg.ShopifyAPISecret, logger))

	// Merchant auth
	r.Post("/api/auth/signup", authHandler.Signup)
	r.Post("/api/auth/login", authHandler.Login)

	// Widget bootstrap is exempt from the domain lock: at first load the
	// widget only has its token.
	r.Get("/api/widget-bootstrap/{token}", bootstrapHandler.Get)

	// Widget routes behind the domain lock
	r.Group(func(r chi.Router) {
		r.Use(domainLock.Handler)
		r.Post("/api/chat", chatHandler.Handle)
		r.Post("/api/customer-tickets", ticketHandler.CreateCustomerTicket)
		r.Get("/api/customer-tickets", ticketHandler.ListCustomerTickets)
	})

	// Dashboard routes behind JWT auth
	r.Group(func(r chi.Router) {
		r.Use(quellmiddleware.JWTAuth(tokens, logger))

		r.Get("/api/stores", storeHandler.List)
		r.Post("/api/stores/{id}/sync", storeHandler.Sync)
		r.Post("/api/stores/{id}/rotate-widget-token", storeHandler.RotateWidgetToken)
		r.Get("/api/stores/{id}/appearance", storeHandler.GetAppearance)
		r.Put("/api/stores/{id}/appearance", storeHandler.SaveAppearance)

		r.Get("/api/inbox/conversations", inboxHandler.ListConversations)
		r.Get("/api/inbox/conversations/{id}/messages", inboxHandler.ListMessages)
		r.Post("/api/inbox/conversations/{id}/read", inboxHandler.MarkRead)

		r.Post("/api/support/tickets", ticketHandler.CreateTicket)
		r.Get("/api/support/tickets", ticketHandler.ListTickets)
		r.Patch("/api/support/tickets/{id}", ticketHandler.UpdateTicket)

		r.Get("/api/stores/{id}/customer-tickets", ticketHandler.ListStoreCustomerTickets)
		r.Patch("/api/customer-tickets/{id}", ticketHandler.UpdateCustomerTicket)

		r.Get("/api/stores/{id}/analytics/overview", analyticsHandler.Overview)
		r.Get("/api/stores/{id}/analytics/messages", analyticsHandler.MessagesByDay)
		r.Get("/api/stores/{id}/analytics/token-usage", analyticsHandler.TokenUsage)
		r.Post("/api/stores/{id}/analyze", analyticsHandler.RunAnalysis)
		r.Get("/api/stores/{id}/analyses", analyticsHandler.ListAnalyses)

		r.Group(func(r chi.Router) {
			r.Use(quellmiddleware.RequireAdmin)
			r.Get("/api/admin/stores", adminHandler.ListStores)
			r.Get("/api/admin/tickets", adminHandler.ListTickets)
			r.Get("/api/admin/token-usage", adminHandler.TokenUsage)
			r.Patch("/api/admin/stores/{id}/status", adminHandler.SetStoreStatus)
		})
	})

	logger.Info().Str("port", cfg.Port).Msg("Starting API server")
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start server")
	}
}

const oauthStateCookie = "shopify_oauth_state"

// oauthInstallHandler starts the OAuth flow: random state for CSRF
// protection, then redirect to Shopify's authorize page.
func oauthInstallHandler(stores *application.StoreService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shop := r.URL.Query().Get("shop")
		if shop == "" {
			http.Error(w, "shop parameter is required", http.StatusBadRequest)
			return
		}

		stateBytes := make([]byte, 16)
		if _, err := rand.Read(stateBytes); err != nil {
			logger.Error().Err(err).Msg("Failed to generate state")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		state := hex.EncodeToString(stateBytes)

		authURL, err := stores.InstallURL(shop, state)
		if err != nil {
			logger.Error().Err(err).Str("shop", shop).Msg("Failed to build authorize URL")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     oauthStateCookie,
			Value:    state,
			Path:     "/",
			MaxAge:   600,
			HttpOnly: true,
			Secure:   r.TLS != nil,
			SameSite: http.SameSiteLaxMode,
		})
		http.Redirect(w, r, authURL, http.StatusFound)
	}
}

// oauthCallbackHandler finishes the OAuth flow. Reinstalls go straight to
// login; first installs get a temp token parameterizing the signup form.
func oauthCallbackHandler(
	stores *application.StoreService,
	shopify ports.ShopifyClient,
	frontendURL string,
	logger zerolog.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		shop := query.Get("shop")
		code := query.Get("code")
		if shop == "" || code == "" {
			http.Error(w, "shop and code parameters are required", http.StatusBadRequest)
			return
		}

		ok, err := shopify.VerifyCallback(r.URL)
		if err != nil || !ok {
			logger.Warn().Err(err).Str("shop", shop).Msg("OAuth callback failed HMAC verification")
			http.Error(w, "invalid callback signature", http.StatusForbidden)
			return
		}

		if cookie, err := r.Cookie(oauthStateCookie); err != nil || cookie.Value == "" || cookie.Value != query.Get("state") {
			logger.Warn().Str("shop", shop).Msg("OAuth callback state mismatch")
			http.Error(w, "invalid state parameter", http.StatusForbidden)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: oauthStateCookie, Value: "", Path: "/", MaxAge: -1})

		result, err := stores.HandleOAuthCallback(r.Context(), shop, code)
		if err != nil {
			logger.Error().Err(err).Str("shop", shop).Msg("OAuth callback failed")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		if result.Reinstall {
			http.Redirect(w, r, frontendURL+"/login?shop="+url.QueryEscape(result.ShopDomain), http.StatusFound)
			return
		}
		http.Redirect(w, r, frontendURL+"/signup?shopToken="+url.QueryEscape(result.TempToken)+"&shop="+url.QueryEscape(result.ShopDomain), http.StatusFound)
	}
}

// shopifyWebhookHandler verifies and routes Shopify webhooks. Only
// app/uninstalled is acted on; other topics are acknowledged so Shopify does
// not retry them.
func shopifyWebhookHandler(stores *application.StoreService, apiSecret string, logger zerolog.Logger) http.HandlerFunc {
	verifier := shopifyinfra.NewWebhookVerifier(apiSecret)

	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
		if err != nil {
			http.Error(w, "failed to read request body", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		if err := verifier.Verify(payload, r.Header.Get("X-Shopify-Hmac-SHA256")); err != nil {
			logger.Warn().Err(err).Msg("Webhook signature verification failed")
			http.Error(w, "invalid signature", http.StatusUnauthorized)
			return
		}

		topic := r.Header.Get("X-Shopify-Topic")
		shop := r.Header.Get("X-Shopify-Shop-Domain")
		if shop == "" {
			var body map[string]interface{}
			if err := json.Unmarshal(payload, &body); err == nil {
				if s, ok := body["myshopify_domain"].(string); ok {
					shop = s
				} else if s, ok := body["domain"].(string); ok {
					shop = s
				}
			}
		}

		if topic == "app/uninstalled" && shop != "" {
			if err := stores.HandleUninstalled(r.Context(), shop); err != nil {
				logger.Error().Err(err).Str("shop", shop).Msg("Failed to process uninstall webhook")
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}
		}

		w.WriteHeader(http.StatusOK)
	}
}

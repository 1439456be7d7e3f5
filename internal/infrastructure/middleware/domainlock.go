package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"quell-core-api/internal/application"
	"quell-core-api/internal/domain"
	"quell-core-api/internal/infrastructure/httputil"
	"quell-core-api/internal/ports"

	"github.com/rs/zerolog"
)

const maxLockedBodySize = 1 << 20 // 1 MiB

// DomainLock enforces that widget-originated requests come from the store's
// registered domain and carry its current widget token. Requests with no
// Origin header (same-origin and non-browser clients) and requests from the
// static allow-list (the platform's own dashboards) pass through unchecked.
//
// Every failure is a terminal 403 with a short reason; there is no retry and
// no partial authorization. On success the resolved store rides the request
// context.
type DomainLock struct {
	origins *application.OriginChecker
	stores  ports.StoreRepository
	logger  zerolog.Logger

	// onReject counts rejections by reason; nil-safe.
	onReject func(reason string)
}

// NewDomainLock creates the middleware.
func NewDomainLock(origins *application.OriginChecker, stores ports.StoreRepository, logger zerolog.Logger, onReject func(reason string)) *DomainLock {
	return &DomainLock{
		origins:  origins,
		stores:   stores,
		logger:   logger,
		onReject: onReject,
	}
}

// lockedBody is the subset of JSON body fields the widget sends credentials in
type lockedBody struct {
	Store       string `json:"store"`
	StoreURL    string `json:"storeUrl"`
	WidgetToken string `json:"widgetToken"`
}

// Handler returns the middleware handler.
func (m *DomainLock) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" || m.origins.IsStaticOrigin(origin) {
			next.ServeHTTP(w, r)
			return
		}

		storeIdentifier, widgetToken := m.extractCredentials(r)

		if storeIdentifier == "" {
			m.reject(w, "storeUrl required")
			return
		}

		shopDomain := domain.NormalizeHost(storeIdentifier)
		store, err := m.stores.GetByDomain(r.Context(), shopDomain)
		if err != nil {
			m.logger.Error().Err(err).Str("shop", shopDomain).Msg("Store lookup failed")
			httputil.WriteError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		if store == nil || !store.WidgetEnabled() {
			m.reject(w, "Store not registered")
			return
		}

		// The same normalization runs on both sides, so a www. or scheme
		// difference between the registered domain and the caller's value
		// cannot reject legitimate traffic.
		if domain.NormalizeHost(origin) != store.ShopDomain {
			m.reject(w, "Origin mismatch")
			return
		}

		if widgetToken == "" || widgetToken != store.WidgetToken {
			m.reject(w, "Invalid widget token")
			return
		}

		ctx := domain.WithStore(r.Context(), store)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractCredentials pulls the claimed store identifier and widget token from
// body, query, and headers. The body is re-buffered so downstream handlers
// can still read it.
func (m *DomainLock) extractCredentials(r *http.Request) (storeIdentifier, widgetToken string) {
	query := r.URL.Query()
	storeIdentifier = firstNonEmpty(query.Get("storeUrl"), query.Get("shopUrl"))
	widgetToken = firstNonEmpty(query.Get("widgetToken"), r.Header.Get("x-widget-token"))

	if r.Body == nil || !strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return storeIdentifier, widgetToken
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxLockedBodySize))
	r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil {
		return storeIdentifier, widgetToken
	}

	var body lockedBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return storeIdentifier, widgetToken
	}

	storeIdentifier = firstNonEmpty(body.Store, body.StoreURL, storeIdentifier)
	widgetToken = firstNonEmpty(body.WidgetToken, widgetToken)
	return storeIdentifier, widgetToken
}

func (m *DomainLock) reject(w http.ResponseWriter, reason string) {
	if m.onReject != nil {
		m.onReject(reason)
	}
	httputil.WriteError(w, http.StatusForbidden, reason)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

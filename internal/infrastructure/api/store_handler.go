package api

import (
	"encoding/json"
	"net/http"

	"quell-core-api/internal/application"
	"quell-core-api/internal/domain"
	"quell-core-api/internal/infrastructure/httputil"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// StoreHandler serves the dashboard store management routes
type StoreHandler struct {
	stores *application.StoreService
	logger zerolog.Logger
}

// NewStoreHandler creates a new store handler
func NewStoreHandler(stores *application.StoreService, logger zerolog.Logger) *StoreHandler {
	return &StoreHandler{stores: stores, logger: logger}
}

// List handles GET /api/stores
func (h *StoreHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := domain.UserIDFromContext(r.Context())
	stores, err := h.stores.ListByUser(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"stores": stores})
}

// Sync handles POST /api/stores/{id}/sync
func (h *StoreHandler) Sync(w http.ResponseWriter, r *http.Request) {
	userID := domain.UserIDFromContext(r.Context())
	store, err := h.stores.TriggerSync(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, store)
}

// RotateWidgetToken handles POST /api/stores/{id}/rotate-widget-token
func (h *StoreHandler) RotateWidgetToken(w http.ResponseWriter, r *http.Request) {
	userID := domain.UserIDFromContext(r.Context())
	store, err := h.stores.RotateWidgetToken(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"widgetToken": store.WidgetToken})
}

// GetAppearance handles GET /api/stores/{id}/appearance
func (h *StoreHandler) GetAppearance(w http.ResponseWriter, r *http.Request) {
	userID := domain.UserIDFromContext(r.Context())
	appearance, err := h.stores.GetAppearance(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, appearance)
}

// SaveAppearance handles PUT /api/stores/{id}/appearance
func (h *StoreHandler) SaveAppearance(w http.ResponseWriter, r *http.Request) {
	var appearance domain.Appearance
	if err := json.NewDecoder(r.Body).Decode(&appearance); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userID := domain.UserIDFromContext(r.Context())
	saved, err := h.stores.SaveAppearance(r.Context(), userID, chi.URLParam(r, "id"), &appearance)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, saved)
}

package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"quell-core-api/internal/application"
	"quell-core-api/internal/domain"
	"quell-core-api/internal/infrastructure/httputil"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// AdminHandler serves the platform admin endpoints. All routes are behind
// JWTAuth + RequireAdmin.
type AdminHandler struct {
	admin  *application.AdminService
	logger zerolog.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(admin *application.AdminService, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{admin: admin, logger: logger}
}

// ListStores handles GET /api/admin/stores
func (h *AdminHandler) ListStores(w http.ResponseWriter, r *http.Request) {
	stores, err := h.admin.ListStores(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"stores": stores})
}

// ListTickets handles GET /api/admin/tickets
func (h *AdminHandler) ListTickets(w http.ResponseWriter, r *http.Request) {
	tickets, err := h.admin.ListTickets(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"tickets": tickets})
}

// TokenUsage handles GET /api/admin/token-usage
func (h *AdminHandler) TokenUsage(w http.ResponseWriter, r *http.Request) {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	totals, err := h.admin.TokenUsageByStore(r.Context(), days)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"stores": totals})
}

// SetStoreStatus handles PATCH /api/admin/stores/{id}/status
func (h *AdminHandler) SetStoreStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status domain.StoreStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	store, err := h.admin.SetStoreStatus(r.Context(), chi.URLParam(r, "id"), body.Status)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, store)
}

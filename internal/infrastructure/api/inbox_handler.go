package api

import (
	"net/http"

	"quell-core-api/internal/application"
	"quell-core-api/internal/domain"
	"quell-core-api/internal/infrastructure/httputil"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// InboxHandler serves the dashboard conversation views
type InboxHandler struct {
	inbox  *application.InboxService
	logger zerolog.Logger
}

// NewInboxHandler creates a new inbox handler
func NewInboxHandler(inbox *application.InboxService, logger zerolog.Logger) *InboxHandler {
	return &InboxHandler{inbox: inbox, logger: logger}
}

// ListConversations handles GET /api/inbox/conversations?storeId=
func (h *InboxHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	storeID := r.URL.Query().Get("storeId")
	if storeID == "" {
		httputil.WriteError(w, http.StatusBadRequest, "storeId is required")
		return
	}

	userID := domain.UserIDFromContext(r.Context())
	conversations, err := h.inbox.ListConversations(r.Context(), userID, storeID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"conversations": conversations})
}

// ListMessages handles GET /api/inbox/conversations/{id}/messages
func (h *InboxHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	userID := domain.UserIDFromContext(r.Context())
	messages, err := h.inbox.ListMessages(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"messages": messages})
}

// MarkRead handles POST /api/inbox/conversations/{id}/read
func (h *InboxHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID := domain.UserIDFromContext(r.Context())
	if err := h.inbox.MarkRead(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

package api

import (
	"encoding/json"
	"net/http"

	"quell-core-api/internal/application"
	"quell-core-api/internal/domain"
	"quell-core-api/internal/infrastructure/httputil"
	"quell-core-api/internal/ports"

	"github.com/rs/zerolog"
)

// ChatHandler serves the widget chat relay
type ChatHandler struct {
	chat     *application.ChatService
	stores   ports.StoreRepository
	logger   zerolog.Logger
	onResult func(status string)
}

// NewChatHandler creates a new chat handler. onResult counts relay outcomes;
// nil-safe.
func NewChatHandler(chat *application.ChatService, stores ports.StoreRepository, logger zerolog.Logger, onResult func(status string)) *ChatHandler {
	return &ChatHandler{chat: chat, stores: stores, logger: logger, onResult: onResult}
}

// chatBody wraps the chat input with the store identifier fields clients send
type chatBody struct {
	application.ChatInput
	Store    string `json:"store"`
	StoreURL string `json:"storeUrl"`
}

// Handle handles POST /api/chat. For browser traffic the domain-lock
// middleware has already resolved and verified the store. Requests with no
// Origin header pass that middleware untouched, so the handler resolves the
// claimed store itself.
func (h *ChatHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var body chatBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	store := domain.StoreFromContext(r.Context())
	if store == nil {
		identifier := body.Store
		if identifier == "" {
			identifier = body.StoreURL
		}
		if identifier == "" {
			httputil.WriteError(w, http.StatusForbidden, application.ErrStoreURLRequired.Error())
			return
		}

		var err error
		store, err = h.stores.GetByDomain(r.Context(), domain.NormalizeHost(identifier))
		if err != nil {
			h.logger.Error().Err(err).Msg("Store lookup failed")
			httputil.WriteError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		if store == nil {
			httputil.WriteError(w, http.StatusForbidden, application.ErrStoreNotRegistered.Error())
			return
		}
	}

	output, err := h.chat.HandleChat(r.Context(), store, body.ChatInput)
	if err != nil {
		h.count("error")
		writeServiceError(w, h.logger, err)
		return
	}

	h.count("ok")
	httputil.WriteJSON(w, http.StatusOK, output)
}

func (h *ChatHandler) count(status string) {
	if h.onResult != nil {
		h.onResult(status)
	}
}

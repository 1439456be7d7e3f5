package api

import (
	"errors"
	"net/http"

	"quell-core-api/internal/application"
	"quell-core-api/internal/infrastructure/httputil"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// BootstrapHandler serves the public widget configuration. This endpoint is
// exempt from the domain-lock middleware: at first load the widget only has
// its token.
type BootstrapHandler struct {
	bootstrap *application.BootstrapService
	logger    zerolog.Logger
	onResult  func(status string)
}

// NewBootstrapHandler creates a new bootstrap handler. onResult counts
// outcomes; nil-safe.
func NewBootstrapHandler(bootstrap *application.BootstrapService, logger zerolog.Logger, onResult func(status string)) *BootstrapHandler {
	return &BootstrapHandler{bootstrap: bootstrap, logger: logger, onResult: onResult}
}

// Get handles GET /api/widget-bootstrap/{token}
func (h *BootstrapHandler) Get(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	origin := r.Header.Get("Origin")

	config, err := h.bootstrap.Bootstrap(r.Context(), token, origin)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrInvalidWidgetToken), errors.Is(err, application.ErrOriginMismatch):
			h.count("rejected")
			// An unknown token is always the same flat 403: nothing leaks
			// about how close it was.
			httputil.WriteError(w, http.StatusForbidden, err.Error())
		default:
			h.count("error")
			h.logger.Error().Err(err).Msg("Widget bootstrap failed")
			httputil.WriteError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	h.count("ok")
	httputil.WriteJSON(w, http.StatusOK, config)
}

func (h *BootstrapHandler) count(status string) {
	if h.onResult != nil {
		h.onResult(status)
	}
}

// Package api holds the REST handlers in front of the application services.
package api

import (
	"errors"
	"net/http"

	"quell-core-api/internal/application"
	"quell-core-api/internal/infrastructure/httputil"

	"github.com/rs/zerolog"
)

// writeServiceError maps application errors onto the response taxonomy:
// 400 for bad input, 401/403 for authorization, 404 for unknown ids, and 500
// for everything upstream or internal. Upstream messages are passed through
// in the body; that mirrors the rest of the platform's debugging convenience.
func writeServiceError(w http.ResponseWriter, logger zerolog.Logger, err error) {
	switch {
	case errors.Is(err, application.ErrInvalidWidgetToken),
		errors.Is(err, application.ErrOriginMismatch),
		errors.Is(err, application.ErrStoreNotRegistered),
		errors.Is(err, application.ErrStoreURLRequired),
		errors.Is(err, application.ErrForbidden):
		httputil.WriteError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, application.ErrInvalidCredentials):
		httputil.WriteError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, application.ErrInvalidRegistrationKey),
		errors.Is(err, application.ErrEmailTaken):
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, application.ErrNotFound):
		httputil.WriteError(w, http.StatusNotFound, "not found")
	default:
		logger.Error().Err(err).Msg("Request failed")
		httputil.WriteError(w, http.StatusInternalServerError, err.Error())
	}
}

package api

import (
	"encoding/json"
	"net/http"

	"quell-core-api/internal/application"
	"quell-core-api/internal/infrastructure/httputil"

	"github.com/rs/zerolog"
)

// AuthHandler serves signup and login
type AuthHandler struct {
	auth   *application.AuthService
	logger zerolog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth *application.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

// Signup handles POST /api/auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var input application.SignupInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.auth.Signup(r.Context(), input)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, result)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input application.LoginInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.auth.Login(r.Context(), input)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

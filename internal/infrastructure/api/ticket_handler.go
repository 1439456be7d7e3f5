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

// TicketHandler serves both the dashboard support tickets and the
// widget-facing customer tickets.
type TicketHandler struct {
	tickets *application.TicketService
	logger  zerolog.Logger
}

// NewTicketHandler creates a new ticket handler
func NewTicketHandler(tickets *application.TicketService, logger zerolog.Logger) *TicketHandler {
	return &TicketHandler{tickets: tickets, logger: logger}
}

// CreateTicket handles POST /support/tickets
func (h *TicketHandler) CreateTicket(w http.ResponseWriter, r *http.Request) {
	var input application.CreateTicketInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userID := domain.UserIDFromContext(r.Context())
	ticket, err := h.tickets.CreateTicket(r.Context(), userID, input)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, ticket)
}

// ListTickets handles GET /support/tickets
func (h *TicketHandler) ListTickets(w http.ResponseWriter, r *http.Request) {
	userID := domain.UserIDFromContext(r.Context())
	tickets, err := h.tickets.ListTickets(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"tickets": tickets})
}

type statusBody struct {
	Status domain.TicketStatus `json:"status"`
}

// UpdateTicket handles PATCH /support/tickets/{id}
func (h *TicketHandler) UpdateTicket(w http.ResponseWriter, r *http.Request) {
	var body statusBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userID := domain.UserIDFromContext(r.Context())
	ticket, err := h.tickets.UpdateTicketStatus(r.Context(), userID, chi.URLParam(r, "id"), body.Status)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ticket)
}

// CreateCustomerTicket handles POST /api/customer-tickets (widget-facing,
// behind the domain-lock).
func (h *TicketHandler) CreateCustomerTicket(w http.ResponseWriter, r *http.Request) {
	store := domain.StoreFromContext(r.Context())
	if store == nil {
		httputil.WriteError(w, http.StatusForbidden, application.ErrStoreURLRequired.Error())
		return
	}

	var input application.CreateCustomerTicketInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ticket, err := h.tickets.CreateCustomerTicket(r.Context(), store, input)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, ticket)
}

// ListCustomerTickets handles GET /api/customer-tickets?email= (widget-facing).
func (h *TicketHandler) ListCustomerTickets(w http.ResponseWriter, r *http.Request) {
	store := domain.StoreFromContext(r.Context())
	if store == nil {
		httputil.WriteError(w, http.StatusForbidden, application.ErrStoreURLRequired.Error())
		return
	}

	tickets, err := h.tickets.ListCustomerTickets(r.Context(), store.ID, r.URL.Query().Get("email"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"tickets": tickets})
}

// ListStoreCustomerTickets handles GET /api/stores/{id}/customer-tickets
// (dashboard-facing).
func (h *TicketHandler) ListStoreCustomerTickets(w http.ResponseWriter, r *http.Request) {
	userID := domain.UserIDFromContext(r.Context())
	tickets, err := h.tickets.ListStoreCustomerTickets(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"tickets": tickets})
}

// UpdateCustomerTicket handles PATCH /api/customer-tickets/{id} (dashboard-facing).
func (h *TicketHandler) UpdateCustomerTicket(w http.ResponseWriter, r *http.Request) {
	var body statusBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userID := domain.UserIDFromContext(r.Context())
	ticket, err := h.tickets.UpdateCustomerTicket(r.Context(), userID, chi.URLParam(r, "id"), body.Status)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ticket)
}

package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"quell-core-api/internal/domain"
	"quell-core-api/internal/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// TicketService handles merchant support tickets (dashboard) and customer
// tickets (widget).
type TicketService struct {
	tickets         ports.TicketRepository
	customerTickets ports.CustomerTicketRepository
	stores          ports.StoreRepository
	realtime        ports.RealtimePublisher
	logger          zerolog.Logger
	now             func() time.Time
}

// NewTicketService creates a new ticket service
func NewTicketService(
	tickets ports.TicketRepository,
	customerTickets ports.CustomerTicketRepository,
	stores ports.StoreRepository,
	realtime ports.RealtimePublisher,
	logger zerolog.Logger,
) *TicketService {
	return &TicketService{
		tickets:         tickets,
		customerTickets: customerTickets,
		stores:          stores,
		realtime:        realtime,
		logger:          logger,
		now:             time.Now,
	}
}

// checkStoreAccess verifies the user owns the store a customer ticket belongs to.
func (s *TicketService) checkStoreAccess(ctx context.Context, userID, storeID string) error {
	store, err := s.stores.GetByID(ctx, storeID)
	if err != nil {
		return fmt.Errorf("failed to look up store: %w", err)
	}
	if store == nil {
		return ErrNotFound
	}
	if store.UserID != userID {
		return ErrForbidden
	}
	return nil
}

// CreateTicketInput is the dashboard support ticket payload
type CreateTicketInput struct {
	StoreID string `json:"storeId"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// CreateTicket opens a merchant support ticket.
func (s *TicketService) CreateTicket(ctx context.Context, userID string, input CreateTicketInput) (*domain.Ticket, error) {
	if strings.TrimSpace(input.Subject) == "" {
		return nil, fmt.Errorf("subject is required")
	}

	now := s.now()
	ticket := &domain.Ticket{
		ID:        uuid.NewString(),
		UserID:    userID,
		StoreID:   input.StoreID,
		Subject:   strings.TrimSpace(input.Subject),
		Body:      input.Body,
		Status:    domain.TicketStatusOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, fmt.Errorf("failed to create ticket: %w", err)
	}
	return ticket, nil
}

// ListTickets returns the user's support tickets.
func (s *TicketService) ListTickets(ctx context.Context, userID string) ([]*domain.Ticket, error) {
	return s.tickets.ListByUser(ctx, userID)
}

// UpdateTicketStatus moves a support ticket through its lifecycle.
func (s *TicketService) UpdateTicketStatus(ctx context.Context, userID, ticketID string, status domain.TicketStatus) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up ticket: %w", err)
	}
	if ticket == nil {
		return nil, ErrNotFound
	}
	if ticket.UserID != userID {
		return nil, ErrForbidden
	}

	if err := s.tickets.UpdateStatus(ctx, ticketID, status); err != nil {
		return nil, fmt.Errorf("failed to update ticket: %w", err)
	}
	ticket.Status = status
	ticket.UpdatedAt = s.now()
	return ticket, nil
}

// CreateCustomerTicketInput is the widget-raised ticket payload
type CreateCustomerTicketInput struct {
	CustomerEmail string `json:"email"`
	CustomerName  string `json:"name,omitempty"`
	Subject       string `json:"subject"`
	Body          string `json:"body"`
}

// CreateCustomerTicket opens a ticket on behalf of a storefront visitor and
// notifies the store's dashboard sessions.
func (s *TicketService) CreateCustomerTicket(ctx context.Context, store *domain.Store, input CreateCustomerTicketInput) (*domain.CustomerTicket, error) {
	if strings.TrimSpace(input.CustomerEmail) == "" {
		return nil, fmt.Errorf("email is required")
	}
	if strings.TrimSpace(input.Subject) == "" {
		return nil, fmt.Errorf("subject is required")
	}

	now := s.now()
	ticket := &domain.CustomerTicket{
		ID:            uuid.NewString(),
		StoreID:       store.ID,
		CustomerEmail: strings.ToLower(strings.TrimSpace(input.CustomerEmail)),
		CustomerName:  strings.TrimSpace(input.CustomerName),
		Subject:       strings.TrimSpace(input.Subject),
		Body:          input.Body,
		Status:        domain.TicketStatusOpen,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.customerTickets.Create(ctx, ticket); err != nil {
		return nil, fmt.Errorf("failed to create customer ticket: %w", err)
	}

	s.realtime.Publish(store.ID, "customer_ticket_created", ticket)
	return ticket, nil
}

// ListCustomerTickets lists a store's customer tickets, optionally filtered
// by the requesting customer's email (the widget-facing lookup).
func (s *TicketService) ListCustomerTickets(ctx context.Context, storeID, email string) ([]*domain.CustomerTicket, error) {
	if email != "" {
		return s.customerTickets.ListByStoreAndEmail(ctx, storeID, strings.ToLower(strings.TrimSpace(email)))
	}
	return s.customerTickets.ListByStore(ctx, storeID)
}

// ListStoreCustomerTickets lists a store's customer tickets for its owner's
// dashboard.
func (s *TicketService) ListStoreCustomerTickets(ctx context.Context, userID, storeID string) ([]*domain.CustomerTicket, error) {
	if err := s.checkStoreAccess(ctx, userID, storeID); err != nil {
		return nil, err
	}
	return s.customerTickets.ListByStore(ctx, storeID)
}

// UpdateCustomerTicket updates status from the dashboard and notifies
// subscribed sessions. The caller must own the ticket's store.
func (s *TicketService) UpdateCustomerTicket(ctx context.Context, userID, ticketID string, status domain.TicketStatus) (*domain.CustomerTicket, error) {
	ticket, err := s.customerTickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up customer ticket: %w", err)
	}
	if ticket == nil {
		return nil, ErrNotFound
	}
	if err := s.checkStoreAccess(ctx, userID, ticket.StoreID); err != nil {
		return nil, err
	}

	ticket.Status = status
	ticket.UpdatedAt = s.now()
	if err := s.customerTickets.Update(ctx, ticket); err != nil {
		return nil, fmt.Errorf("failed to update customer ticket: %w", err)
	}

	s.realtime.Publish(ticket.StoreID, "customer_ticket_updated", ticket)
	return ticket, nil
}

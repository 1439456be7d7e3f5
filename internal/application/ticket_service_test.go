package application_test

import (
	"context"
	"testing"

	"quell-core-api/internal/application"
	"quell-core-api/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTicketFixture() (*application.TicketService, *memTicketRepo, *memCustomerTicketRepo, *recordingRealtime) {
	tickets := newMemTicketRepo()
	customerTickets := newMemCustomerTicketRepo()
	stores := newMemStoreRepo(
		&domain.Store{ID: "store-1", UserID: "user-1", ShopDomain: "acme.myshopify.com", Status: domain.StoreStatusActive},
		&domain.Store{ID: "store-2", UserID: "user-2", ShopDomain: "other.myshopify.com", Status: domain.StoreStatusActive},
	)
	realtime := &recordingRealtime{}
	svc := application.NewTicketService(tickets, customerTickets, stores, realtime, zerolog.Nop())
	return svc, tickets, customerTickets, realtime
}

func TestCreateAndUpdateSupportTicket(t *testing.T) {
	svc, _, _, _ := newTicketFixture()

	ticket, err := svc.CreateTicket(context.Background(), "user-1", application.CreateTicketInput{
		StoreID: "store-1",
		Subject: "  Billing question ",
		Body:    "Please help",
	})
	require.NoError(t, err)
	require.Equal(t, "Billing question", ticket.Subject)
	require.Equal(t, domain.TicketStatusOpen, ticket.Status)

	updated, err := svc.UpdateTicketStatus(context.Background(), "user-1", ticket.ID, domain.TicketStatusResolved)
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusResolved, updated.Status)

	// Only the owner may move the ticket.
	_, err = svc.UpdateTicketStatus(context.Background(), "someone-else", ticket.ID, domain.TicketStatusClosed)
	require.ErrorIs(t, err, application.ErrForbidden)

	_, err = svc.UpdateTicketStatus(context.Background(), "user-1", "no-such-ticket", domain.TicketStatusClosed)
	require.ErrorIs(t, err, application.ErrNotFound)
}

func TestCreateTicketRequiresSubject(t *testing.T) {
	svc, _, _, _ := newTicketFixture()
	_, err := svc.CreateTicket(context.Background(), "user-1", application.CreateTicketInput{Subject: "   "})
	require.Error(t, err)
}

func TestCustomerTicketLifecycleEmitsEvents(t *testing.T) {
	svc, _, _, realtime := newTicketFixture()
	store := &domain.Store{ID: "store-1", ShopDomain: "acme.myshopify.com"}

	ticket, err := svc.CreateCustomerTicket(context.Background(), store, application.CreateCustomerTicketInput{
		CustomerEmail: " Visitor@Example.COM ",
		Subject:       "Order never arrived",
	})
	require.NoError(t, err)
	require.Equal(t, "visitor@example.com", ticket.CustomerEmail)
	require.Equal(t, domain.TicketStatusOpen, ticket.Status)

	updated, err := svc.UpdateCustomerTicket(context.Background(), "user-1", ticket.ID, domain.TicketStatusInProgress)
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusInProgress, updated.Status)

	require.Len(t, realtime.events, 2)
	require.Equal(t, "customer_ticket_created", realtime.events[0].Event)
	require.Equal(t, "customer_ticket_updated", realtime.events[1].Event)
	require.Equal(t, "store-1", realtime.events[0].StoreID)
}

func TestUpdateCustomerTicketEnforcesStoreOwnership(t *testing.T) {
	svc, _, customerTickets, realtime := newTicketFixture()
	store := &domain.Store{ID: "store-1", ShopDomain: "acme.myshopify.com"}

	ticket, err := svc.CreateCustomerTicket(context.Background(), store, application.CreateCustomerTicketInput{
		CustomerEmail: "visitor@example.com",
		Subject:       "Order never arrived",
	})
	require.NoError(t, err)

	// user-2 owns store-2, not the ticket's store.
	_, err = svc.UpdateCustomerTicket(context.Background(), "user-2", ticket.ID, domain.TicketStatusClosed)
	require.ErrorIs(t, err, application.ErrForbidden)

	stored, err := customerTickets.GetByID(context.Background(), ticket.ID)
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusOpen, stored.Status)
	require.Len(t, realtime.events, 1) // only the created event

	_, err = svc.UpdateCustomerTicket(context.Background(), "user-1", "no-such-ticket", domain.TicketStatusClosed)
	require.ErrorIs(t, err, application.ErrNotFound)
}

func TestListStoreCustomerTicketsEnforcesStoreOwnership(t *testing.T) {
	svc, _, _, _ := newTicketFixture()
	store := &domain.Store{ID: "store-1", ShopDomain: "acme.myshopify.com"}

	_, err := svc.CreateCustomerTicket(context.Background(), store, application.CreateCustomerTicketInput{
		CustomerEmail: "visitor@example.com",
		Subject:       "Order never arrived",
	})
	require.NoError(t, err)

	tickets, err := svc.ListStoreCustomerTickets(context.Background(), "user-1", "store-1")
	require.NoError(t, err)
	require.Len(t, tickets, 1)

	_, err = svc.ListStoreCustomerTickets(context.Background(), "user-2", "store-1")
	require.ErrorIs(t, err, application.ErrForbidden)

	_, err = svc.ListStoreCustomerTickets(context.Background(), "user-1", "no-such-store")
	require.ErrorIs(t, err, application.ErrNotFound)
}

func TestListCustomerTicketsFiltersByEmail(t *testing.T) {
	svc, _, _, _ := newTicketFixture()
	store := &domain.Store{ID: "store-1"}

	_, err := svc.CreateCustomerTicket(context.Background(), store, application.CreateCustomerTicketInput{
		CustomerEmail: "a@example.com",
		Subject:       "First",
	})
	require.NoError(t, err)
	_, err = svc.CreateCustomerTicket(context.Background(), store, application.CreateCustomerTicketInput{
		CustomerEmail: "b@example.com",
		Subject:       "Second",
	})
	require.NoError(t, err)

	all, err := svc.ListCustomerTickets(context.Background(), "store-1", "")
	require.NoError(t, err)
	require.Len(t, all, 2)

	mine, err := svc.ListCustomerTickets(context.Background(), "store-1", "A@example.com")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, "First", mine[0].Subject)
}

package domain

import "time"

// TicketStatus is shared by support tickets and customer tickets
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// Ticket is a merchant-to-platform support ticket raised from the dashboard
type Ticket struct {
	ID        string       `json:"id" bson:"_id"`
	UserID    string       `json:"user_id" bson:"user_id"`
	StoreID   string       `json:"store_id" bson:"store_id"`
	Subject   string       `json:"subject" bson:"subject"`
	Body      string       `json:"body" bson:"body"`
	Status    TicketStatus `json:"status" bson:"status"`
	CreatedAt time.Time    `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time    `json:"updated_at" bson:"updated_at"`
}

// CustomerTicket is raised by a storefront visitor through the embedded widget
type CustomerTicket struct {
	ID            string       `json:"id" bson:"_id"`
	StoreID       string       `json:"store_id" bson:"store_id"`
	CustomerEmail string       `json:"customer_email" bson:"customer_email"`
	CustomerName  string       `json:"customer_name,omitempty" bson:"customer_name,omitempty"`
	Subject       string       `json:"subject" bson:"subject"`
	Body          string       `json:"body" bson:"body"`
	Status        TicketStatus `json:"status" bson:"status"`
	CreatedAt     time.Time    `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at" bson:"updated_at"`
}

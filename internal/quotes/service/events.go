package service

import (
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/quotes/repository"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/events"

	"github.com/google/uuid"
)

// QuoteAcceptedEventName identifies the acceptance event on the bus.
const QuoteAcceptedEventName = "quotes.accepted"

// QuoteAcceptedEvent is published when a customer signs a quote. The email
// module subscribes to send confirmations.
type QuoteAcceptedEvent struct {
	events.BaseEvent
	QuoteID             uuid.UUID
	CompanyID           uuid.UUID
	LeadID              *uuid.UUID
	TotalInitialPrice   float64
	TotalRecurringPrice float64
}

// NewQuoteAcceptedEvent builds the event from the accepted quote row.
func NewQuoteAcceptedEvent(q repository.Quote) QuoteAcceptedEvent {
	return QuoteAcceptedEvent{
		BaseEvent:           events.NewBaseEvent(),
		QuoteID:             q.ID,
		CompanyID:           q.CompanyID,
		LeadID:              q.LeadID,
		TotalInitialPrice:   q.TotalInitialPrice,
		TotalRecurringPrice: q.TotalRecurringPrice,
	}
}

// EventName implements events.Event.
func (e QuoteAcceptedEvent) EventName() string {
	return QuoteAcceptedEventName
}

// QuoteSentEventName identifies the send event on the bus.
const QuoteSentEventName = "quotes.sent"

// QuoteSentEvent is published when a quote is sent to the customer.
type QuoteSentEvent struct {
	events.BaseEvent
	QuoteID     uuid.UUID
	CompanyID   uuid.UUID
	LeadID      *uuid.UUID
	PublicToken *string
}

// NewQuoteSentEvent builds the event from the sent quote row.
func NewQuoteSentEvent(q repository.Quote) QuoteSentEvent {
	return QuoteSentEvent{
		BaseEvent:   events.NewBaseEvent(),
		QuoteID:     q.ID,
		CompanyID:   q.CompanyID,
		LeadID:      q.LeadID,
		PublicToken: q.PublicToken,
	}
}

// EventName implements events.Event.
func (e QuoteSentEvent) EventName() string {
	return QuoteSentEventName
}

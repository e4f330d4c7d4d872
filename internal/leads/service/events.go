package service

import (
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/leads/repository"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/events"

	"github.com/google/uuid"
)

// LeadCreatedEventName identifies new-lead events on the bus.
const LeadCreatedEventName = "leads.created"

// LeadCreatedEvent is published after a lead is stored. Workflows subscribe
// to it to start lead_created automations.
type LeadCreatedEvent struct {
	events.BaseEvent
	LeadID    uuid.UUID
	CompanyID uuid.UUID
	Email     string
	FirstName string
	Source    string
}

// NewLeadCreatedEvent builds the event from a stored lead.
func NewLeadCreatedEvent(lead repository.Lead) LeadCreatedEvent {
	return LeadCreatedEvent{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    lead.ID,
		CompanyID: lead.CompanyID,
		Email:     lead.Email,
		FirstName: lead.FirstName,
		Source:    lead.Source,
	}
}

// EventName implements events.Event.
func (e LeadCreatedEvent) EventName() string {
	return LeadCreatedEventName
}

package scheduler

import (
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/events"

	"github.com/google/uuid"
)

// Due-event names published by the worker when delayed tasks fire. The
// owning domain modules subscribe by these names so the scheduler never
// imports them.
const (
	CadenceStepDueEventName  = "cadences.step.due"
	WorkflowSendDueEventName = "workflows.send.due"
)

// CadenceStepDueEvent signals that an enrollment's scheduled step is due.
type CadenceStepDueEvent struct {
	events.BaseEvent
	EnrollmentID uuid.UUID
	CompanyID    uuid.UUID
	StepOrder    int
}

// EventName implements events.Event.
func (e CadenceStepDueEvent) EventName() string {
	return CadenceStepDueEventName
}

// WorkflowSendDueEvent signals that a delayed workflow email is due.
type WorkflowSendDueEvent struct {
	events.BaseEvent
	SendID     uuid.UUID
	WorkflowID uuid.UUID
	CompanyID  uuid.UUID
	LeadID     uuid.UUID
}

// EventName implements events.Event.
func (e WorkflowSendDueEvent) EventName() string {
	return WorkflowSendDueEventName
}

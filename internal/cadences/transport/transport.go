// Package transport defines the request and response shapes for the
// cadences API.
package transport

import (
	"time"

	"github.com/google/uuid"
)

// CadenceStepRequest is one step inside a create request.
type CadenceStepRequest struct {
	StepOrder    int     `json:"step_order" validate:"required,gte=1"`
	StepType     string  `json:"step_type" validate:"required,oneof=call email wait"`
	DelayHours   int     `json:"delay_hours" validate:"gte=0"`
	EmailSubject *string `json:"email_subject,omitempty" validate:"omitempty,max=200"`
	EmailBody    *string `json:"email_body,omitempty" validate:"omitempty,max=10000"`
	Note         *string `json:"note,omitempty" validate:"omitempty,max=1000"`
}

// CreateCadenceRequest creates a cadence template with its steps.
type CreateCadenceRequest struct {
	Name        string               `json:"name" validate:"required,max=100"`
	Description *string              `json:"description,omitempty" validate:"omitempty,max=500"`
	Steps       []CadenceStepRequest `json:"steps" validate:"required,min=1,dive"`
}

// SetActiveRequest toggles a cadence on or off.
type SetActiveRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

// EnrollRequest starts a lead on a cadence.
type EnrollRequest struct {
	LeadID uuid.UUID `json:"lead_id" validate:"required"`
}

// CadenceStepResponse is the API shape of a step.
type CadenceStepResponse struct {
	ID           uuid.UUID `json:"id"`
	StepOrder    int       `json:"step_order"`
	StepType     string    `json:"step_type"`
	DelayHours   int       `json:"delay_hours"`
	EmailSubject *string   `json:"email_subject,omitempty"`
	EmailBody    *string   `json:"email_body,omitempty"`
	Note         *string   `json:"note,omitempty"`
}

// CadenceResponse is the API shape of a cadence with its steps.
type CadenceResponse struct {
	ID          uuid.UUID             `json:"id"`
	Name        string                `json:"name"`
	Description *string               `json:"description,omitempty"`
	IsActive    bool                  `json:"is_active"`
	Steps       []CadenceStepResponse `json:"steps,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// EnrollmentResponse is the API shape of a lead enrollment.
type EnrollmentResponse struct {
	ID          uuid.UUID  `json:"id"`
	CadenceID   uuid.UUID  `json:"cadence_id"`
	LeadID      uuid.UUID  `json:"lead_id"`
	Status      string     `json:"status"`
	CurrentStep int        `json:"current_step"`
	EnrolledAt  time.Time  `json:"enrolled_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Package transport defines the request and response shapes for the
// workflows API.
package transport

import (
	"time"

	"github.com/google/uuid"
)

// WorkflowVariantRequest is one A/B template inside a create request.
type WorkflowVariantRequest struct {
	Name         string `json:"name" validate:"required,max=100"`
	Subject      string `json:"subject" validate:"required,max=200"`
	Body         string `json:"body" validate:"required,max=20000"`
	SplitPercent int    `json:"split_percent" validate:"required,gte=1,lte=100"`
}

// CreateWorkflowRequest creates a workflow with its variants.
type CreateWorkflowRequest struct {
	Name         string                   `json:"name" validate:"required,max=100"`
	TriggerEvent string                   `json:"trigger_event" validate:"required,oneof=lead_created quote_sent quote_accepted"`
	DelayMinutes int                      `json:"delay_minutes" validate:"gte=0"`
	Variants     []WorkflowVariantRequest `json:"variants" validate:"required,min=1,dive"`
}

// SetActiveRequest toggles a workflow on or off.
type SetActiveRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

// WorkflowVariantResponse is the API shape of a variant.
type WorkflowVariantResponse struct {
	ID           uuid.UUID `json:"id"`
	Position     int       `json:"position"`
	Name         string    `json:"name"`
	Subject      string    `json:"subject"`
	Body         string    `json:"body"`
	SplitPercent int       `json:"split_percent"`
}

// WorkflowResponse is the API shape of a workflow with its variants.
type WorkflowResponse struct {
	ID           uuid.UUID                 `json:"id"`
	Name         string                    `json:"name"`
	TriggerEvent string                    `json:"trigger_event"`
	DelayMinutes int                       `json:"delay_minutes"`
	IsActive     bool                      `json:"is_active"`
	Variants     []WorkflowVariantResponse `json:"variants,omitempty"`
	CreatedAt    time.Time                 `json:"created_at"`
	UpdatedAt    time.Time                 `json:"updated_at"`
}

// SendResponse is one entry of the send log.
type SendResponse struct {
	ID           uuid.UUID  `json:"id"`
	WorkflowID   uuid.UUID  `json:"workflow_id"`
	VariantID    uuid.UUID  `json:"variant_id"`
	LeadID       uuid.UUID  `json:"lead_id"`
	Status       string     `json:"status"`
	ScheduledFor time.Time  `json:"scheduled_for"`
	SentAt       *time.Time `json:"sent_at,omitempty"`
	FailReason   *string    `json:"fail_reason,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// SeedDefaultsResponse reports how many default workflows were installed.
type SeedDefaultsResponse struct {
	Created int `json:"created"`
}

// Package transport defines request/response DTOs for the calls module.
package transport

import (
	"time"

	"github.com/google/uuid"
)

// CreateCallRequest is the POST /calls body.
type CreateCallRequest struct {
	LeadID          uuid.UUID  `json:"lead_id" validate:"required"`
	Direction       string     `json:"direction" validate:"required,oneof=inbound outbound"`
	DurationSeconds int        `json:"duration_seconds" validate:"gte=0"`
	Disposition     string     `json:"disposition" validate:"required,oneof=answered voicemail no_answer busy wrong_number"`
	Notes           string     `json:"notes" validate:"omitempty,max=2000"`
	CalledAt        *time.Time `json:"called_at,omitempty"`
}

// UpdateCallRequest is the PUT /calls/:id body; nil fields are left alone.
type UpdateCallRequest struct {
	Direction       *string    `json:"direction,omitempty" validate:"omitempty,oneof=inbound outbound"`
	DurationSeconds *int       `json:"duration_seconds,omitempty" validate:"omitempty,gte=0"`
	Disposition     *string    `json:"disposition,omitempty" validate:"omitempty,oneof=answered voicemail no_answer busy wrong_number"`
	Notes           *string    `json:"notes,omitempty" validate:"omitempty,max=2000"`
	CalledAt        *time.Time `json:"called_at,omitempty"`
}

// CallResponse is the wire shape of a call record.
type CallResponse struct {
	ID              uuid.UUID  `json:"id"`
	LeadID          uuid.UUID  `json:"lead_id"`
	UserID          *uuid.UUID `json:"user_id,omitempty"`
	Direction       string     `json:"direction"`
	DurationSeconds int        `json:"duration_seconds"`
	Disposition     string     `json:"disposition"`
	Notes           string     `json:"notes,omitempty"`
	CalledAt        time.Time  `json:"called_at"`
	CreatedAt       time.Time  `json:"created_at"`
}

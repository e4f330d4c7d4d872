// Package transport defines request/response DTOs for the leads module.
package transport

import (
	"time"

	"github.com/google/uuid"
)

// CreateLeadRequest is the POST /leads body.
type CreateLeadRequest struct {
	FirstName   string `json:"first_name" validate:"required,max=100"`
	LastName    string `json:"last_name" validate:"required,max=100"`
	Email       string `json:"email" validate:"omitempty,email"`
	Phone       string `json:"phone" validate:"omitempty,max=30"`
	Source      string `json:"source" validate:"omitempty,max=50"`
	PrimaryPest string `json:"primary_pest" validate:"omitempty,max=100"`
	Street      string `json:"street" validate:"omitempty,max=200"`
	City        string `json:"city" validate:"omitempty,max=100"`
	State       string `json:"state" validate:"omitempty,max=50"`
	PostalCode  string `json:"postal_code" validate:"omitempty,max=20"`
	Notes       string `json:"notes" validate:"omitempty,max=2000"`
}

// UpdateLeadRequest is the PUT /leads/:id body; nil fields are left alone.
type UpdateLeadRequest struct {
	FirstName   *string    `json:"first_name,omitempty" validate:"omitempty,max=100"`
	LastName    *string    `json:"last_name,omitempty" validate:"omitempty,max=100"`
	Email       *string    `json:"email,omitempty" validate:"omitempty,email"`
	Phone       *string    `json:"phone,omitempty" validate:"omitempty,max=30"`
	Source      *string    `json:"source,omitempty" validate:"omitempty,max=50"`
	LeadStatus  *string    `json:"lead_status,omitempty" validate:"omitempty,oneof=new contacted quoted won lost"`
	PrimaryPest *string    `json:"primary_pest,omitempty" validate:"omitempty,max=100"`
	Street      *string    `json:"street,omitempty" validate:"omitempty,max=200"`
	City        *string    `json:"city,omitempty" validate:"omitempty,max=100"`
	State       *string    `json:"state,omitempty" validate:"omitempty,max=50"`
	PostalCode  *string    `json:"postal_code,omitempty" validate:"omitempty,max=20"`
	Notes       *string    `json:"notes,omitempty" validate:"omitempty,max=2000"`
	AssignedTo  *uuid.UUID `json:"assigned_to,omitempty"`
}

// ListLeadsQuery holds the GET /leads query parameters.
type ListLeadsQuery struct {
	Status   string `form:"status"`
	Search   string `form:"search"`
	Page     int    `form:"page,default=1"`
	PageSize int    `form:"page_size,default=25"`
}

// LeadResponse is the wire shape of a lead.
type LeadResponse struct {
	ID          uuid.UUID  `json:"id"`
	CompanyID   uuid.UUID  `json:"company_id"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Email       string     `json:"email,omitempty"`
	Phone       string     `json:"phone,omitempty"`
	Source      string     `json:"source,omitempty"`
	LeadStatus  string     `json:"lead_status"`
	PrimaryPest string     `json:"primary_pest,omitempty"`
	Street      string     `json:"street,omitempty"`
	City        string     `json:"city,omitempty"`
	State       string     `json:"state,omitempty"`
	PostalCode  string     `json:"postal_code,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	AssignedTo  *uuid.UUID `json:"assigned_to,omitempty"`
	LastContact *time.Time `json:"last_contact_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// LeadListResponse is the paginated list envelope.
type LeadListResponse struct {
	Items      []LeadResponse `json:"items"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalPages int            `json:"total_pages"`
}

// Package transport defines request/response DTOs for the quotes module.
package transport

import (
	"time"

	"github.com/google/uuid"
)

// LineItemKind is the explicit dispatch tag for a line-item write. The
// request shape (which ids are present) determines the kind; Classify makes
// the state space explicit instead of a nested if-chain.
type LineItemKind int

const (
	KindInvalid LineItemKind = iota
	KindUpdateService
	KindUpdateBundle
	KindUpdateDiscountOnly
	KindInsertService
	KindUpsertAddOn
	KindInsertBundle
)

// LineItemRequest is one entry of a quote update's line_items array.
// discount_id is tri-state: absent keeps the stored discount, null clears
// it, a value switches to that discount.
type LineItemRequest struct {
	ID                   *uuid.UUID           `json:"id,omitempty"`
	ServicePlanID        *uuid.UUID           `json:"service_plan_id,omitempty"`
	BundlePlanID         *uuid.UUID           `json:"bundle_plan_id,omitempty"`
	AddonServiceID       *uuid.UUID           `json:"addon_service_id,omitempty"`
	DiscountID           Optional[uuid.UUID]  `json:"discount_id"`
	DiscountPercentage   *float64             `json:"discount_percentage,omitempty"`
	DiscountAmount       *float64             `json:"discount_amount,omitempty"`
	IsCustomPriced       *bool                `json:"is_custom_priced,omitempty"`
	CustomInitialPrice   *float64             `json:"custom_initial_price,omitempty"`
	CustomRecurringPrice *float64             `json:"custom_recurring_price,omitempty"`
	DisplayOrder         *int                 `json:"display_order,omitempty"`
}

// Classify maps the request shape onto its write kind. Order matters and
// mirrors the documented precedence: updates before inserts, add-ons before
// bundle inserts.
func (r LineItemRequest) Classify() LineItemKind {
	switch {
	case r.ID != nil && r.ServicePlanID != nil:
		return KindUpdateService
	case r.ID != nil && r.BundlePlanID != nil:
		return KindUpdateBundle
	case r.ID != nil && r.AddonServiceID == nil:
		return KindUpdateDiscountOnly
	case r.ID == nil && r.ServicePlanID != nil:
		return KindInsertService
	case r.AddonServiceID != nil:
		return KindUpsertAddOn
	case r.BundlePlanID != nil:
		return KindInsertBundle
	default:
		return KindInvalid
	}
}

// IsCustom reports whether the request activates custom pricing.
func (r LineItemRequest) IsCustom() bool {
	return r.IsCustomPriced != nil && *r.IsCustomPriced
}

// UpdateQuoteRequest is the PUT /quotes/:id body. All fields are optional;
// only present fields are applied.
type UpdateQuoteRequest struct {
	QuoteStatus     *string              `json:"quote_status,omitempty" validate:"omitempty,oneof=draft sent accepted declined expired"`
	ValidUntil      Optional[time.Time]  `json:"valid_until"`
	PrimaryPest     *string              `json:"primary_pest,omitempty" validate:"omitempty,max=100"`
	AdditionalPests *[]string            `json:"additional_pests,omitempty"`
	HomeSizeRange   *string              `json:"home_size_range,omitempty" validate:"omitempty,max=50"`
	YardSizeRange   *string              `json:"yard_size_range,omitempty" validate:"omitempty,max=50"`
	LinearFeetRange *string              `json:"linear_feet_range,omitempty" validate:"omitempty,max=50"`
	LineItems       *[]LineItemRequest   `json:"line_items,omitempty"`
}

// HasSizeRangeUpdate reports whether any size range field is present.
func (r UpdateQuoteRequest) HasSizeRangeUpdate() bool {
	return r.HomeSizeRange != nil || r.YardSizeRange != nil || r.LinearFeetRange != nil
}

// ListQuotesQuery holds the GET /quotes query parameters.
type ListQuotesQuery struct {
	Status   string `form:"status"`
	LeadID   string `form:"lead_id"`
	Search   string `form:"search"`
	Page     int    `form:"page,default=1"`
	PageSize int    `form:"page_size,default=25"`
}

// AcceptQuoteRequest is the public acceptance payload.
type AcceptQuoteRequest struct {
	SignatureData string         `json:"signature_data" validate:"required"`
	DeviceData    map[string]any `json:"device_data,omitempty"`
}

// LineItemResponse is the wire shape of a priced line item.
type LineItemResponse struct {
	ID                   uuid.UUID  `json:"id"`
	QuoteID              uuid.UUID  `json:"quote_id"`
	ServicePlanID        *uuid.UUID `json:"service_plan_id,omitempty"`
	BundlePlanID         *uuid.UUID `json:"bundle_plan_id,omitempty"`
	AddonServiceID       *uuid.UUID `json:"addon_service_id,omitempty"`
	PlanName             string     `json:"plan_name"`
	PlanDescription      string     `json:"plan_description"`
	InitialPrice         float64    `json:"initial_price"`
	RecurringPrice       float64    `json:"recurring_price"`
	BillingFrequency     string     `json:"billing_frequency"`
	ServiceFrequency     string     `json:"service_frequency"`
	DiscountID           *uuid.UUID `json:"discount_id,omitempty"`
	DiscountPercentage   float64    `json:"discount_percentage"`
	DiscountAmount       float64    `json:"discount_amount"`
	IsCustomPriced       bool       `json:"is_custom_priced"`
	CustomInitialPrice   *float64   `json:"custom_initial_price,omitempty"`
	CustomRecurringPrice *float64   `json:"custom_recurring_price,omitempty"`
	FinalInitialPrice    float64    `json:"final_initial_price"`
	FinalRecurringPrice  float64    `json:"final_recurring_price"`
	DisplayOrder         int        `json:"display_order"`
}

// QuoteResponse is the wire shape of a quote with its line items.
type QuoteResponse struct {
	ID                  uuid.UUID          `json:"id"`
	CompanyID           uuid.UUID          `json:"company_id"`
	LeadID              *uuid.UUID         `json:"lead_id,omitempty"`
	QuoteStatus         string             `json:"quote_status"`
	PrimaryPest         string             `json:"primary_pest,omitempty"`
	AdditionalPests     []string           `json:"additional_pests,omitempty"`
	HomeSizeRange       string             `json:"home_size_range,omitempty"`
	YardSizeRange       string             `json:"yard_size_range,omitempty"`
	LinearFeetRange     string             `json:"linear_feet_range,omitempty"`
	TotalInitialPrice   float64            `json:"total_initial_price"`
	TotalRecurringPrice float64            `json:"total_recurring_price"`
	ValidUntil          *time.Time         `json:"valid_until,omitempty"`
	SignedAt            *time.Time         `json:"signed_at,omitempty"`
	CreatedAt           time.Time          `json:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at"`
	LineItems           []LineItemResponse `json:"line_items"`
}

// QuoteListItem is the condensed list representation.
type QuoteListItem struct {
	ID                  uuid.UUID  `json:"id"`
	LeadID              *uuid.UUID `json:"lead_id,omitempty"`
	QuoteStatus         string     `json:"quote_status"`
	PrimaryPest         string     `json:"primary_pest,omitempty"`
	TotalInitialPrice   float64    `json:"total_initial_price"`
	TotalRecurringPrice float64    `json:"total_recurring_price"`
	ValidUntil          *time.Time `json:"valid_until,omitempty"`
	SignedAt            *time.Time `json:"signed_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}

// QuoteListResponse is the paginated list envelope.
type QuoteListResponse struct {
	Items      []QuoteListItem `json:"items"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	TotalPages int             `json:"total_pages"`
}

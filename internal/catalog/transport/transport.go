// Package transport defines request/response DTOs for the catalog module.
package transport

import (
	"time"

	"github.com/google/uuid"
)

type DimensionPricing struct {
	InitialCostPerInterval   float64 `json:"initial_cost_per_interval" validate:"gte=0"`
	RecurringCostPerInterval float64 `json:"recurring_cost_per_interval" validate:"gte=0"`
}

type ServicePlanRequest struct {
	PlanName           string            `json:"plan_name" validate:"required,max=200"`
	PlanDescription    string            `json:"plan_description" validate:"max=2000"`
	PlanCategory       string            `json:"plan_category" validate:"required,oneof=one-time monthly quarterly annual"`
	InitialPrice       float64           `json:"initial_price" validate:"gte=0"`
	RecurringPrice     float64           `json:"recurring_price" validate:"gte=0"`
	BillingFrequency   string            `json:"billing_frequency" validate:"max=50"`
	TreatmentFrequency string            `json:"treatment_frequency" validate:"max=50"`
	HomeSizePricing    *DimensionPricing `json:"home_size_pricing,omitempty"`
	YardSizePricing    *DimensionPricing `json:"yard_size_pricing,omitempty"`
	LinearFeetPricing  *DimensionPricing `json:"linear_feet_pricing,omitempty"`
	IsActive           *bool             `json:"is_active,omitempty"`
	DisplayOrder       int               `json:"display_order" validate:"gte=0"`
}

type ServicePlanResponse struct {
	ID                 uuid.UUID         `json:"id"`
	PlanName           string            `json:"plan_name"`
	PlanDescription    string            `json:"plan_description"`
	PlanCategory       string            `json:"plan_category"`
	InitialPrice       float64           `json:"initial_price"`
	RecurringPrice     float64           `json:"recurring_price"`
	BillingFrequency   string            `json:"billing_frequency"`
	TreatmentFrequency string            `json:"treatment_frequency"`
	HomeSizePricing    *DimensionPricing `json:"home_size_pricing,omitempty"`
	YardSizePricing    *DimensionPricing `json:"yard_size_pricing,omitempty"`
	LinearFeetPricing  *DimensionPricing `json:"linear_feet_pricing,omitempty"`
	IsActive           bool              `json:"is_active"`
	DisplayOrder       int               `json:"display_order"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

type BundlePricingConfig struct {
	PricingType            string   `json:"pricing_type" validate:"omitempty,oneof=custom discount"`
	CustomInitialPrice     float64  `json:"custom_initial_price" validate:"gte=0"`
	CustomRecurringPrice   float64  `json:"custom_recurring_price" validate:"gte=0"`
	DiscountType           string   `json:"discount_type" validate:"omitempty,oneof=percentage fixed"`
	DiscountValue          float64  `json:"discount_value" validate:"gte=0"`
	RecurringDiscountType  *string  `json:"recurring_discount_type,omitempty" validate:"omitempty,oneof=percentage fixed"`
	RecurringDiscountValue *float64 `json:"recurring_discount_value,omitempty" validate:"omitempty,gte=0"`
	AppliesToPrice         string   `json:"applies_to_price" validate:"omitempty,oneof=initial recurring both"`
}

type BundlePlanRequest struct {
	PlanName          string                `json:"plan_name" validate:"required,max=200"`
	PlanDescription   string                `json:"plan_description" validate:"max=2000"`
	PricingMode       string                `json:"pricing_mode" validate:"required,oneof=global per_interval"`
	GlobalPricing     BundlePricingConfig   `json:"global_pricing"`
	IntervalDimension string                `json:"interval_dimension" validate:"omitempty,oneof=home yard linear_feet"`
	IntervalPricing   []BundlePricingConfig `json:"interval_pricing" validate:"dive"`
	ServicePlanIDs    []uuid.UUID           `json:"service_plan_ids"`
	AddOnIDs          []uuid.UUID           `json:"add_on_ids"`
	BillingFrequency  string                `json:"billing_frequency" validate:"max=50"`
	IsActive          *bool                 `json:"is_active,omitempty"`
	DisplayOrder      int                   `json:"display_order" validate:"gte=0"`
}

type BundlePlanResponse struct {
	ID                uuid.UUID             `json:"id"`
	PlanName          string                `json:"plan_name"`
	PlanDescription   string                `json:"plan_description"`
	PricingMode       string                `json:"pricing_mode"`
	GlobalPricing     BundlePricingConfig   `json:"global_pricing"`
	IntervalDimension string                `json:"interval_dimension,omitempty"`
	IntervalPricing   []BundlePricingConfig `json:"interval_pricing,omitempty"`
	ServicePlanIDs    []uuid.UUID           `json:"service_plan_ids"`
	AddOnIDs          []uuid.UUID           `json:"add_on_ids"`
	BillingFrequency  string                `json:"billing_frequency"`
	IsActive          bool                  `json:"is_active"`
	DisplayOrder      int                   `json:"display_order"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
}

type AddOnRequest struct {
	Name           string  `json:"name" validate:"required,max=200"`
	Description    string  `json:"description" validate:"max=2000"`
	InitialPrice   float64 `json:"initial_price" validate:"gte=0"`
	RecurringPrice float64 `json:"recurring_price" validate:"gte=0"`
	IsActive       *bool   `json:"is_active,omitempty"`
	DisplayOrder   int     `json:"display_order" validate:"gte=0"`
}

type AddOnResponse struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	InitialPrice   float64   `json:"initial_price"`
	RecurringPrice float64   `json:"recurring_price"`
	IsActive       bool      `json:"is_active"`
	DisplayOrder   int       `json:"display_order"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type DiscountRequest struct {
	Name                   string   `json:"name" validate:"required,max=200"`
	DiscountType           string   `json:"discount_type" validate:"required,oneof=percentage fixed"`
	DiscountValue          float64  `json:"discount_value" validate:"gte=0"`
	RecurringDiscountType  *string  `json:"recurring_discount_type,omitempty" validate:"omitempty,oneof=percentage fixed"`
	RecurringDiscountValue *float64 `json:"recurring_discount_value,omitempty" validate:"omitempty,gte=0"`
	AppliesToPrice         string   `json:"applies_to_price" validate:"required,oneof=initial recurring both"`
	IsActive               *bool    `json:"is_active,omitempty"`
}

type DiscountResponse struct {
	ID                     uuid.UUID `json:"id"`
	Name                   string    `json:"name"`
	DiscountType           string    `json:"discount_type"`
	DiscountValue          float64   `json:"discount_value"`
	RecurringDiscountType  *string   `json:"recurring_discount_type,omitempty"`
	RecurringDiscountValue *float64  `json:"recurring_discount_value,omitempty"`
	AppliesToPrice         string    `json:"applies_to_price"`
	IsActive               bool      `json:"is_active"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

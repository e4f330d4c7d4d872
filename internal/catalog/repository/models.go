package repository

import (
	"time"

	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/pricing"

	"github.com/google/uuid"
)

// DimensionPricingJSON is the stored shape of a plan's per-interval costs
// for one size dimension. Serialized as JSONB; a NULL column means the plan
// does not price that dimension.
type DimensionPricingJSON struct {
	InitialCostPerInterval   float64 `json:"initial_cost_per_interval"`
	RecurringCostPerInterval float64 `json:"recurring_cost_per_interval"`
}

// ServicePlan is the database model for a recurring or one-time service plan.
type ServicePlan struct {
	ID                 uuid.UUID             `db:"id"`
	CompanyID          uuid.UUID             `db:"company_id"`
	PlanName           string                `db:"plan_name"`
	PlanDescription    string                `db:"plan_description"`
	PlanCategory       string                `db:"plan_category"`
	InitialPrice       float64               `db:"initial_price"`
	RecurringPrice     float64               `db:"recurring_price"`
	BillingFrequency   string                `db:"billing_frequency"`
	TreatmentFrequency string                `db:"treatment_frequency"`
	HomeSizePricing    *DimensionPricingJSON `db:"home_size_pricing"`
	YardSizePricing    *DimensionPricingJSON `db:"yard_size_pricing"`
	LinearFeetPricing  *DimensionPricingJSON `db:"linear_feet_pricing"`
	IsActive           bool                  `db:"is_active"`
	DisplayOrder       int                   `db:"display_order"`
	CreatedAt          time.Time             `db:"created_at"`
	UpdatedAt          time.Time             `db:"updated_at"`
}

// BundlePricingConfigJSON is one pricing configuration, reused for a
// bundle's global pricing and each entry of a per-interval table.
type BundlePricingConfigJSON struct {
	PricingType            string   `json:"pricing_type"`
	CustomInitialPrice     float64  `json:"custom_initial_price"`
	CustomRecurringPrice   float64  `json:"custom_recurring_price"`
	DiscountType           string   `json:"discount_type"`
	DiscountValue          float64  `json:"discount_value"`
	RecurringDiscountType  *string  `json:"recurring_discount_type"`
	RecurringDiscountValue *float64 `json:"recurring_discount_value"`
	AppliesToPrice         string   `json:"applies_to_price"`
}

// BundlePlan is the database model for a multi-service bundle.
type BundlePlan struct {
	ID                uuid.UUID                 `db:"id"`
	CompanyID         uuid.UUID                 `db:"company_id"`
	PlanName          string                    `db:"plan_name"`
	PlanDescription   string                    `db:"plan_description"`
	PricingMode       string                    `db:"pricing_mode"`
	GlobalPricing     BundlePricingConfigJSON   `db:"global_pricing"`
	IntervalDimension string                    `db:"interval_dimension"`
	IntervalPricing   []BundlePricingConfigJSON `db:"interval_pricing"`
	ServicePlanIDs    []uuid.UUID               `db:"service_plan_ids"`
	AddOnIDs          []uuid.UUID               `db:"add_on_ids"`
	BillingFrequency  string                    `db:"billing_frequency"`
	IsActive          bool                      `db:"is_active"`
	DisplayOrder      int                       `db:"display_order"`
	CreatedAt         time.Time                 `db:"created_at"`
	UpdatedAt         time.Time                 `db:"updated_at"`
}

// AddOnService is the database model for a flat-priced add-on.
type AddOnService struct {
	ID             uuid.UUID `db:"id"`
	CompanyID      uuid.UUID `db:"company_id"`
	Name           string    `db:"name"`
	Description    string    `db:"description"`
	InitialPrice   float64   `db:"initial_price"`
	RecurringPrice float64   `db:"recurring_price"`
	IsActive       bool      `db:"is_active"`
	DisplayOrder   int       `db:"display_order"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// Discount is the database model for a named company discount.
type Discount struct {
	ID                     uuid.UUID `db:"id"`
	CompanyID              uuid.UUID `db:"company_id"`
	Name                   string    `db:"name"`
	DiscountType           string    `db:"discount_type"`
	DiscountValue          float64   `db:"discount_value"`
	RecurringDiscountType  *string   `db:"recurring_discount_type"`
	RecurringDiscountValue *float64  `db:"recurring_discount_value"`
	AppliesToPrice         string    `db:"applies_to_price"`
	IsActive               bool      `db:"is_active"`
	CreatedAt              time.Time `db:"created_at"`
	UpdatedAt              time.Time `db:"updated_at"`
}

// ToPricing converts the stored plan into the pricing engine's model.
func (p ServicePlan) ToPricing() pricing.ServicePlan {
	return pricing.ServicePlan{
		ID:                 p.ID,
		PlanName:           p.PlanName,
		PlanDescription:    p.PlanDescription,
		InitialPrice:       p.InitialPrice,
		RecurringPrice:     p.RecurringPrice,
		PlanCategory:       p.PlanCategory,
		BillingFrequency:   p.BillingFrequency,
		TreatmentFrequency: p.TreatmentFrequency,
		Sizing: pricing.PlanSizing{
			HomeSize:   toDimension(p.HomeSizePricing),
			YardSize:   toDimension(p.YardSizePricing),
			LinearFeet: toDimension(p.LinearFeetPricing),
		},
	}
}

// ToPricing converts the stored bundle into the pricing engine's model.
func (b BundlePlan) ToPricing() pricing.BundlePlan {
	intervals := make([]pricing.BundlePricingConfig, 0, len(b.IntervalPricing))
	for _, cfg := range b.IntervalPricing {
		intervals = append(intervals, toBundleConfig(cfg))
	}
	return pricing.BundlePlan{
		ID:                b.ID,
		PlanName:          b.PlanName,
		PlanDescription:   b.PlanDescription,
		PricingMode:       b.PricingMode,
		Global:            toBundleConfig(b.GlobalPricing),
		IntervalDimension: b.IntervalDimension,
		IntervalPricing:   intervals,
		ServicePlanIDs:    b.ServicePlanIDs,
		AddOnIDs:          b.AddOnIDs,
		BillingFrequency:  b.BillingFrequency,
	}
}

// ToPricing converts the stored add-on into the pricing engine's model.
func (a AddOnService) ToPricing() pricing.AddOnService {
	return pricing.AddOnService{
		ID:             a.ID,
		Name:           a.Name,
		Description:    a.Description,
		InitialPrice:   a.InitialPrice,
		RecurringPrice: a.RecurringPrice,
	}
}

// ToPricing converts the stored discount into the pricing engine's model.
func (d Discount) ToPricing() pricing.CompanyDiscount {
	out := pricing.CompanyDiscount{
		ID:            d.ID,
		Name:          d.Name,
		DiscountType:  pricing.DiscountType(d.DiscountType),
		DiscountValue: d.DiscountValue,
		AppliesTo:     pricing.AppliesTo(d.AppliesToPrice),
	}
	if d.RecurringDiscountType != nil {
		t := pricing.DiscountType(*d.RecurringDiscountType)
		out.RecurringDiscountType = &t
	}
	out.RecurringDiscountValue = d.RecurringDiscountValue
	return out
}

func toDimension(cfg *DimensionPricingJSON) *pricing.DimensionPricing {
	if cfg == nil {
		return nil
	}
	return &pricing.DimensionPricing{
		InitialCostPerInterval:   cfg.InitialCostPerInterval,
		RecurringCostPerInterval: cfg.RecurringCostPerInterval,
	}
}

func toBundleConfig(cfg BundlePricingConfigJSON) pricing.BundlePricingConfig {
	out := pricing.BundlePricingConfig{
		PricingType:          cfg.PricingType,
		CustomInitialPrice:   cfg.CustomInitialPrice,
		CustomRecurringPrice: cfg.CustomRecurringPrice,
		DiscountType:         pricing.DiscountType(cfg.DiscountType),
		DiscountValue:        cfg.DiscountValue,
		AppliesTo:            pricing.AppliesTo(cfg.AppliesToPrice),
	}
	if cfg.RecurringDiscountType != nil {
		t := pricing.DiscountType(*cfg.RecurringDiscountType)
		out.RecurringDiscountType = &t
	}
	out.RecurringDiscountValue = cfg.RecurringDiscountValue
	return out
}

package pricing

import (
	"math"

	"github.com/google/uuid"
)

// Bundle pricing modes and per-entry pricing types.
const (
	BundleModeGlobal      = "global"
	BundleModePerInterval = "per_interval"

	BundlePricingCustom   = "custom"
	BundlePricingDiscount = "discount"
)

// Interval dimensions for per_interval bundles.
const (
	DimensionHome       = "home"
	DimensionYard       = "yard"
	DimensionLinearFeet = "linear_feet"
)

// BundlePricingConfig is one pricing configuration, used both as a bundle's
// global config and as a single entry of a per-interval table.
type BundlePricingConfig struct {
	PricingType            string
	CustomInitialPrice     float64
	CustomRecurringPrice   float64
	DiscountType           DiscountType
	DiscountValue          float64
	RecurringDiscountType  *DiscountType
	RecurringDiscountValue *float64
	AppliesTo              AppliesTo
}

// BundlePlan is a multi-service package with its own pricing rules.
type BundlePlan struct {
	ID                uuid.UUID
	PlanName          string
	PlanDescription   string
	PricingMode       string
	Global            BundlePricingConfig
	IntervalDimension string
	IntervalPricing   []BundlePricingConfig
	ServicePlanIDs    []uuid.UUID
	AddOnIDs          []uuid.UUID
	BillingFrequency  string
}

// AddOnService is a flat-priced add-on. Add-ons are never size-adjusted or
// discounted.
type AddOnService struct {
	ID             uuid.UUID
	Name           string
	Description    string
	InitialPrice   float64
	RecurringPrice float64
}

// BundlePrice is the priced result of a bundle. Bundles carry no separate
// list price, so these values serve as both list and final prices.
// IntervalFallback reports that a per_interval bundle had no entry for the
// resolved bracket and was priced from its global config; callers surface
// this as a data problem worth flagging.
type BundlePrice struct {
	InitialPrice     float64
	RecurringPrice   float64
	IntervalFallback bool
}

// PriceBundle computes a bundle line item's prices. Per-interval bundles
// resolve a bracket index along the configured dimension and use that
// interval's config; when the table has no entry for the index the global
// config is used instead, so an under-configured table degrades to the
// bundle's base pricing rather than a zero price. Global bundles either
// return custom prices directly or discount the sum of their components'
// size-adjusted list prices. Missing component lookups contribute nothing.
func PriceBundle(bundle BundlePlan, ranges SizeRanges, settings Settings, plans map[uuid.UUID]ServicePlan, addons map[uuid.UUID]AddOnService) BundlePrice {
	cfg := bundle.Global
	fellBack := false
	if bundle.PricingMode == BundleModePerInterval {
		idx := resolveIntervalIndex(bundle.IntervalDimension, ranges, settings)
		if idx < len(bundle.IntervalPricing) {
			cfg = bundle.IntervalPricing[idx]
		} else {
			fellBack = true
		}
	}

	var price BundlePrice
	switch cfg.PricingType {
	case BundlePricingCustom:
		price = BundlePrice{
			InitialPrice:   cfg.CustomInitialPrice,
			RecurringPrice: cfg.CustomRecurringPrice,
		}
	case BundlePricingDiscount:
		initial, recurring := bundleComponentTotals(bundle, ranges, settings, plans, addons)
		price = applyBundleDiscount(cfg, initial, recurring)
	}
	price.IntervalFallback = fellBack
	return price
}

// resolveIntervalIndex finds the bracket index of the quote's range value
// along the bundle's interval dimension. Absent ranges or failed resolution
// default to the first bracket.
func resolveIntervalIndex(dimension string, ranges SizeRanges, settings Settings) int {
	var value float64
	var options []SizeOption

	switch dimension {
	case DimensionHome:
		value = ParseRangeValue(ranges.HomeSize)
		options = GenerateHomeSizeOptions(settings, nil)
	case DimensionYard:
		value = ParseRangeValue(ranges.YardSize)
		options = GenerateYardSizeOptions(settings, nil)
	case DimensionLinearFeet:
		value = ParseRangeValue(ranges.LinearFeet)
		options = GenerateLinearFeetOptions(settings, nil)
	default:
		return 0
	}

	opt := FindSizeOptionByValue(value, options)
	if opt == nil {
		return 0
	}
	return opt.IntervalIndex
}

// bundleComponentTotals sums the size-adjusted list prices of the bundle's
// service plans plus the flat prices of its add-ons. Line-item discounts
// never apply inside a bundle.
func bundleComponentTotals(bundle BundlePlan, ranges SizeRanges, settings Settings, plans map[uuid.UUID]ServicePlan, addons map[uuid.UUID]AddOnService) (initial, recurring float64) {
	for _, planID := range bundle.ServicePlanIDs {
		plan, ok := plans[planID]
		if !ok {
			continue
		}
		price := PriceServicePlanLineItem(plan, ranges, settings, DiscountResolution{}, nil)
		initial += price.InitialPrice
		recurring += price.RecurringPrice
	}
	for _, addonID := range bundle.AddOnIDs {
		addon, ok := addons[addonID]
		if !ok {
			continue
		}
		initial += addon.InitialPrice
		recurring += addon.RecurringPrice
	}
	return initial, recurring
}

func applyBundleDiscount(cfg BundlePricingConfig, initial, recurring float64) BundlePrice {
	price := BundlePrice{InitialPrice: initial, RecurringPrice: recurring}

	if cfg.AppliesTo == AppliesInitial || cfg.AppliesTo == AppliesBoth {
		price.InitialPrice = discountTotal(initial, cfg.DiscountType, cfg.DiscountValue)
	}
	if cfg.AppliesTo == AppliesRecurring || cfg.AppliesTo == AppliesBoth {
		recurringType := cfg.DiscountType
		recurringValue := cfg.DiscountValue
		if cfg.RecurringDiscountType != nil && cfg.RecurringDiscountValue != nil {
			recurringType = *cfg.RecurringDiscountType
			recurringValue = *cfg.RecurringDiscountValue
		}
		price.RecurringPrice = discountTotal(recurring, recurringType, recurringValue)
	}
	return price
}

func discountTotal(total float64, discountType DiscountType, value float64) float64 {
	switch discountType {
	case DiscountFixed:
		return math.Max(0, total-value)
	case DiscountPercentage:
		return total * (1 - value/100)
	default:
		return total
	}
}

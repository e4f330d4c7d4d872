package pricing

import (
	"math"

	"github.com/google/uuid"
)

// PlanCategoryOneTime marks plans with no recurring component. Any other
// category bills both initial and recurring prices.
const PlanCategoryOneTime = "one-time"

// ServicePlan carries the pricing-relevant fields of a company service plan.
type ServicePlan struct {
	ID                 uuid.UUID
	PlanName           string
	PlanDescription    string
	InitialPrice       float64
	RecurringPrice     float64
	PlanCategory       string
	BillingFrequency   string
	TreatmentFrequency string
	Sizing             PlanSizing
}

// SizeRanges are a quote's stored range strings, e.g. "1501-2000" or "3000+".
// Empty strings mean the dimension is not set on the quote.
type SizeRanges struct {
	HomeSize   string
	YardSize   string
	LinearFeet string
}

// CustomPrice is an explicit price override on a line item.
type CustomPrice struct {
	Initial   float64
	Recurring float64
}

// LinePrice is the priced result for one line item. InitialPrice and
// RecurringPrice are the size-adjusted list prices and are retained even
// under custom pricing; the Final prices are what gets billed.
type LinePrice struct {
	InitialPrice        float64
	RecurringPrice      float64
	FinalInitialPrice   float64
	FinalRecurringPrice float64
}

// PriceServicePlanLineItem computes a service-plan line item's list and final
// prices. The list price is the plan base plus all enabled size increases;
// one-time plans have no recurring component. Custom pricing overrides the
// final prices entirely, otherwise the resolved discount applies per
// component according to its applies-to target.
func PriceServicePlanLineItem(plan ServicePlan, ranges SizeRanges, settings Settings, res DiscountResolution, custom *CustomPrice) LinePrice {
	oneTime := plan.PlanCategory == PlanCategoryOneTime

	initial := plan.InitialPrice
	recurring := plan.RecurringPrice
	if oneTime {
		recurring = 0
	}

	if plan.Sizing.HomeSize != nil {
		if opt := FindSizeOptionByValue(ParseRangeValue(ranges.HomeSize), GenerateHomeSizeOptions(settings, plan.Sizing.HomeSize)); opt != nil {
			initial += opt.InitialIncrease
			if !oneTime {
				recurring += opt.RecurringIncrease
			}
		}
	}
	if plan.Sizing.YardSize != nil {
		if opt := FindSizeOptionByValue(ParseRangeValue(ranges.YardSize), GenerateYardSizeOptions(settings, plan.Sizing.YardSize)); opt != nil {
			initial += opt.InitialIncrease
			if !oneTime {
				recurring += opt.RecurringIncrease
			}
		}
	}
	if lf := ParseRangeValue(ranges.LinearFeet); lf > 0 {
		add := CalculateLinearFeetPrice(lf, settings, plan.Sizing.LinearFeet)
		initial += add.InitialPrice
		if !oneTime {
			recurring += add.RecurringPrice
		}
	}

	price := LinePrice{
		InitialPrice:   initial,
		RecurringPrice: recurring,
	}

	if custom != nil {
		price.FinalInitialPrice = math.Max(0, custom.Initial)
		price.FinalRecurringPrice = math.Max(0, custom.Recurring)
		return price
	}

	price.FinalInitialPrice = initial
	price.FinalRecurringPrice = recurring
	if res.AppliesTo == AppliesInitial || res.AppliesTo == AppliesBoth {
		price.FinalInitialPrice = applyDiscount(initial, res.InitialAmount, res.InitialPercentage)
	}
	if res.AppliesTo == AppliesRecurring || res.AppliesTo == AppliesBoth {
		price.FinalRecurringPrice = applyDiscount(recurring, res.RecurringAmount, res.RecurringPercentage)
	}
	return price
}

// applyDiscount subtracts the fixed amount before applying the percentage
// and clamps the result at zero.
func applyDiscount(base, amount, percentage float64) float64 {
	discounted := base - amount
	if percentage > 0 {
		discounted *= 1 - percentage/100
	}
	return math.Max(0, discounted)
}

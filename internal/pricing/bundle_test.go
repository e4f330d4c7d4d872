package pricing

import (
	"testing"

	"github.com/google/uuid"
)

func TestPriceBundle_GlobalCustom(t *testing.T) {
	bundle := BundlePlan{
		PricingMode: BundleModeGlobal,
		Global: BundlePricingConfig{
			PricingType:          BundlePricingCustom,
			CustomInitialPrice:   199,
			CustomRecurringPrice: 49,
		},
	}

	price := PriceBundle(bundle, SizeRanges{}, testSettings(), nil, nil)
	if price.InitialPrice != 199 || price.RecurringPrice != 49 {
		t.Fatalf("expected custom prices, got %+v", price)
	}
}

func TestPriceBundle_GlobalDiscountInitialOnly(t *testing.T) {
	planA, planB := uuid.New(), uuid.New()
	plans := map[uuid.UUID]ServicePlan{
		planA: {ID: planA, InitialPrice: 100, RecurringPrice: 40, PlanCategory: "recurring"},
		planB: {ID: planB, InitialPrice: 150, RecurringPrice: 35, PlanCategory: "recurring"},
	}
	bundle := BundlePlan{
		PricingMode:    BundleModeGlobal,
		ServicePlanIDs: []uuid.UUID{planA, planB},
		Global: BundlePricingConfig{
			PricingType:   BundlePricingDiscount,
			DiscountType:  DiscountPercentage,
			DiscountValue: 10,
			AppliesTo:     AppliesInitial,
		},
	}

	price := PriceBundle(bundle, SizeRanges{}, testSettings(), plans, nil)
	if price.InitialPrice != 225 { // 250 * 0.9
		t.Fatalf("expected initial 225, got %v", price.InitialPrice)
	}
	if price.RecurringPrice != 75 {
		t.Fatalf("recurring must be undiscounted, got %v", price.RecurringPrice)
	}
}

func TestPriceBundle_ComponentsPricedAtSizeAdjustedListPrice(t *testing.T) {
	planID := uuid.New()
	plans := map[uuid.UUID]ServicePlan{
		planID: {
			ID:             planID,
			InitialPrice:   200,
			RecurringPrice: 60,
			PlanCategory:   "recurring",
			Sizing: PlanSizing{
				HomeSize: &DimensionPricing{InitialCostPerInterval: 50, RecurringCostPerInterval: 10},
			},
		},
	}
	bundle := BundlePlan{
		PricingMode:    BundleModeGlobal,
		ServicePlanIDs: []uuid.UUID{planID},
		Global: BundlePricingConfig{
			PricingType:   BundlePricingDiscount,
			DiscountType:  DiscountFixed,
			DiscountValue: 30,
			AppliesTo:     AppliesBoth,
		},
	}

	price := PriceBundle(bundle, SizeRanges{HomeSize: "1800-2200"}, testSettings(), plans, nil)
	if price.InitialPrice != 220 { // (200 + 50) - 30
		t.Fatalf("expected initial 220, got %v", price.InitialPrice)
	}
	if price.RecurringPrice != 40 { // (60 + 10) - 30
		t.Fatalf("expected recurring 40, got %v", price.RecurringPrice)
	}
}

func TestPriceBundle_AddOnsContributeFlatPrices(t *testing.T) {
	addonID := uuid.New()
	addons := map[uuid.UUID]AddOnService{
		addonID: {ID: addonID, InitialPrice: 75, RecurringPrice: 15},
	}
	bundle := BundlePlan{
		PricingMode: BundleModeGlobal,
		AddOnIDs:    []uuid.UUID{addonID},
		Global: BundlePricingConfig{
			PricingType:   BundlePricingDiscount,
			DiscountType:  DiscountPercentage,
			DiscountValue: 20,
			AppliesTo:     AppliesBoth,
		},
	}

	price := PriceBundle(bundle, SizeRanges{}, testSettings(), nil, addons)
	if price.InitialPrice != 60 || price.RecurringPrice != 12 {
		t.Fatalf("expected 60/12, got %+v", price)
	}
}

func TestPriceBundle_MissingComponentsSkipped(t *testing.T) {
	known := uuid.New()
	plans := map[uuid.UUID]ServicePlan{
		known: {ID: known, InitialPrice: 100, PlanCategory: "recurring"},
	}
	bundle := BundlePlan{
		PricingMode:    BundleModeGlobal,
		ServicePlanIDs: []uuid.UUID{known, uuid.New()},
		AddOnIDs:       []uuid.UUID{uuid.New()},
		Global: BundlePricingConfig{
			PricingType: BundlePricingDiscount,
			AppliesTo:   AppliesBoth,
		},
	}

	price := PriceBundle(bundle, SizeRanges{}, testSettings(), plans, nil)
	if price.InitialPrice != 100 {
		t.Fatalf("missing components must contribute 0, got %v", price.InitialPrice)
	}
}

func TestPriceBundle_PerIntervalCustomEntry(t *testing.T) {
	bundle := BundlePlan{
		PricingMode:       BundleModePerInterval,
		IntervalDimension: DimensionHome,
		IntervalPricing: []BundlePricingConfig{
			{PricingType: BundlePricingCustom, CustomInitialPrice: 100, CustomRecurringPrice: 30},
			{PricingType: BundlePricingCustom, CustomInitialPrice: 150, CustomRecurringPrice: 45},
		},
	}

	price := PriceBundle(bundle, SizeRanges{HomeSize: "1800-2200"}, testSettings(), nil, nil)
	if price.InitialPrice != 150 || price.RecurringPrice != 45 {
		t.Fatalf("expected second interval entry, got %+v", price)
	}
}

func TestPriceBundle_PerIntervalAbsentRangeUsesFirstEntry(t *testing.T) {
	bundle := BundlePlan{
		PricingMode:       BundleModePerInterval,
		IntervalDimension: DimensionYard,
		IntervalPricing: []BundlePricingConfig{
			{PricingType: BundlePricingCustom, CustomInitialPrice: 100, CustomRecurringPrice: 30},
		},
	}

	price := PriceBundle(bundle, SizeRanges{}, testSettings(), nil, nil)
	if price.InitialPrice != 100 {
		t.Fatalf("expected first entry for absent range, got %+v", price)
	}
}

func TestPriceBundle_PerIntervalMissingEntryFallsBackToGlobal(t *testing.T) {
	bundle := BundlePlan{
		PricingMode:       BundleModePerInterval,
		IntervalDimension: DimensionHome,
		IntervalPricing: []BundlePricingConfig{
			{PricingType: BundlePricingCustom, CustomInitialPrice: 100},
		},
		Global: BundlePricingConfig{
			PricingType:          BundlePricingCustom,
			CustomInitialPrice:   400,
			CustomRecurringPrice: 80,
		},
	}

	// Home size resolves to interval index 2, past the table's end.
	price := PriceBundle(bundle, SizeRanges{HomeSize: "2502+"}, testSettings(), nil, nil)
	if price.InitialPrice != 400 || price.RecurringPrice != 80 {
		t.Fatalf("expected global fallback, got %+v", price)
	}
	if !price.IntervalFallback {
		t.Fatalf("expected the fallback to be reported")
	}
}

func TestPriceBundle_InTableEntryNotReportedAsFallback(t *testing.T) {
	bundle := BundlePlan{
		PricingMode:       BundleModePerInterval,
		IntervalDimension: DimensionHome,
		IntervalPricing: []BundlePricingConfig{
			{PricingType: BundlePricingCustom, CustomInitialPrice: 100, CustomRecurringPrice: 30},
		},
	}

	price := PriceBundle(bundle, SizeRanges{}, testSettings(), nil, nil)
	if price.IntervalFallback {
		t.Fatalf("in-table entry must not be reported as fallback")
	}
}

func TestPriceBundle_UnconfiguredPricingYieldsZero(t *testing.T) {
	price := PriceBundle(BundlePlan{PricingMode: BundleModeGlobal}, SizeRanges{}, testSettings(), nil, nil)
	if price != (BundlePrice{}) {
		t.Fatalf("expected zero price, got %+v", price)
	}
}

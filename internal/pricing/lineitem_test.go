package pricing

import "testing"

func testSettings() Settings {
	return Settings{
		BaseHomeSqFt: 1500, HomeSqFtInterval: 1000, MaxHomeSqFt: 3000,
		BaseYardAcres: 0.25, YardAcresInterval: 0.25, MaxYardAcres: 1,
		BaseLinearFeet: 100, LinearFeetInterval: 50, MaxLinearFeet: 300,
	}
}

func TestPriceServicePlanLineItem_SizeAdjustedListPrice(t *testing.T) {
	plan := ServicePlan{
		InitialPrice:   200,
		RecurringPrice: 60,
		PlanCategory:   "recurring",
		Sizing: PlanSizing{
			HomeSize: &DimensionPricing{InitialCostPerInterval: 50, RecurringCostPerInterval: 10},
		},
	}

	price := PriceServicePlanLineItem(plan, SizeRanges{HomeSize: "1800-2200"}, testSettings(), DiscountResolution{}, nil)
	if price.InitialPrice != 250 {
		t.Fatalf("expected initial list 250, got %v", price.InitialPrice)
	}
	if price.RecurringPrice != 70 {
		t.Fatalf("expected recurring list 70, got %v", price.RecurringPrice)
	}
	if price.FinalInitialPrice != 250 || price.FinalRecurringPrice != 70 {
		t.Fatalf("undiscounted final should equal list, got %+v", price)
	}
}

func TestPriceServicePlanLineItem_OneTimePlanHasNoRecurring(t *testing.T) {
	plan := ServicePlan{
		InitialPrice:   300,
		RecurringPrice: 99,
		PlanCategory:   PlanCategoryOneTime,
		Sizing: PlanSizing{
			HomeSize:   &DimensionPricing{InitialCostPerInterval: 50, RecurringCostPerInterval: 10},
			LinearFeet: &DimensionPricing{InitialCostPerInterval: 25, RecurringCostPerInterval: 5},
		},
	}

	price := PriceServicePlanLineItem(plan, SizeRanges{HomeSize: "2502+", LinearFeet: "101-151"}, testSettings(), DiscountResolution{}, nil)
	if price.RecurringPrice != 0 || price.FinalRecurringPrice != 0 {
		t.Fatalf("one-time plan must have zero recurring, got %+v", price)
	}
	if price.InitialPrice != 425 { // 300 + 100 home + 25 linear ft
		t.Fatalf("expected initial 425, got %v", price.InitialPrice)
	}
}

func TestPriceServicePlanLineItem_DiscountAmountBeforePercentage(t *testing.T) {
	plan := ServicePlan{InitialPrice: 100, RecurringPrice: 50, PlanCategory: "recurring"}
	res := DiscountResolution{
		InitialPercentage:   10,
		InitialAmount:       20,
		RecurringPercentage: 10,
		RecurringAmount:     20,
		AppliesTo:           AppliesBoth,
	}

	price := PriceServicePlanLineItem(plan, SizeRanges{}, testSettings(), res, nil)
	if price.FinalInitialPrice != 72 { // (100 - 20) * 0.9
		t.Fatalf("expected 72, got %v", price.FinalInitialPrice)
	}
	if price.FinalRecurringPrice != 27 { // (50 - 20) * 0.9
		t.Fatalf("expected 27, got %v", price.FinalRecurringPrice)
	}
}

func TestPriceServicePlanLineItem_AppliesToLimitsComponents(t *testing.T) {
	plan := ServicePlan{InitialPrice: 100, RecurringPrice: 50, PlanCategory: "recurring"}
	res := DiscountResolution{
		InitialPercentage:   50,
		RecurringPercentage: 50,
		AppliesTo:           AppliesInitial,
	}

	price := PriceServicePlanLineItem(plan, SizeRanges{}, testSettings(), res, nil)
	if price.FinalInitialPrice != 50 {
		t.Fatalf("expected discounted initial 50, got %v", price.FinalInitialPrice)
	}
	if price.FinalRecurringPrice != 50 {
		t.Fatalf("recurring must be untouched, got %v", price.FinalRecurringPrice)
	}
}

func TestPriceServicePlanLineItem_NonNegativityClamp(t *testing.T) {
	plan := ServicePlan{InitialPrice: 50, RecurringPrice: 10, PlanCategory: "recurring"}
	res := DiscountResolution{InitialAmount: 150, RecurringAmount: 150, AppliesTo: AppliesBoth}

	price := PriceServicePlanLineItem(plan, SizeRanges{}, testSettings(), res, nil)
	if price.FinalInitialPrice != 0 || price.FinalRecurringPrice != 0 {
		t.Fatalf("expected clamp to zero, got %+v", price)
	}
}

func TestPriceServicePlanLineItem_CustomPricingOverride(t *testing.T) {
	plan := ServicePlan{InitialPrice: 200, RecurringPrice: 60, PlanCategory: "recurring"}

	price := PriceServicePlanLineItem(plan, SizeRanges{}, testSettings(), DiscountResolution{}, &CustomPrice{Initial: 135, Recurring: -5})
	if price.FinalInitialPrice != 135 {
		t.Fatalf("expected custom initial 135, got %v", price.FinalInitialPrice)
	}
	if price.FinalRecurringPrice != 0 {
		t.Fatalf("negative custom price must clamp to 0, got %v", price.FinalRecurringPrice)
	}
	if price.InitialPrice != 200 || price.RecurringPrice != 60 {
		t.Fatalf("list prices must be retained under custom pricing, got %+v", price)
	}
}

package pricing

import (
	"testing"

	"github.com/google/uuid"
)

func ptrF(v float64) *float64 { return &v }

func ptrType(t DiscountType) *DiscountType { return &t }

func TestResolveDiscount_CustomPricingZeroesEverything(t *testing.T) {
	id := uuid.New()
	req := DiscountRequest{
		IsCustomPriced: true,
		DiscountID:     DiscountRef{Provided: true, ID: &id},
		DiscountAmount: ptrF(25),
	}

	res := ResolveDiscount(req, nil, nil)
	if res.DiscountID != nil {
		t.Fatalf("expected nil discount id, got %v", res.DiscountID)
	}
	if res.InitialPercentage != 0 || res.InitialAmount != 0 || res.RecurringPercentage != 0 || res.RecurringAmount != 0 {
		t.Fatalf("expected zeroed discount, got %+v", res)
	}
}

func TestResolveDiscount_ExplicitIDFound(t *testing.T) {
	id := uuid.New()
	discounts := map[uuid.UUID]CompanyDiscount{
		id: {
			ID:                     id,
			DiscountType:           DiscountPercentage,
			DiscountValue:          10,
			RecurringDiscountType:  ptrType(DiscountFixed),
			RecurringDiscountValue: ptrF(5),
			AppliesTo:              AppliesBoth,
		},
	}

	res := ResolveDiscount(DiscountRequest{DiscountID: DiscountRef{Provided: true, ID: &id}}, nil, discounts)
	if res.DiscountID == nil || *res.DiscountID != id {
		t.Fatalf("expected discount id %v, got %v", id, res.DiscountID)
	}
	if res.InitialPercentage != 10 || res.InitialAmount != 0 {
		t.Fatalf("initial component wrong: %+v", res)
	}
	if res.RecurringAmount != 5 || res.RecurringPercentage != 0 {
		t.Fatalf("recurring component should use recurring config: %+v", res)
	}
}

func TestResolveDiscount_RecurringConfigIgnoredUnlessAppliesBoth(t *testing.T) {
	id := uuid.New()
	discounts := map[uuid.UUID]CompanyDiscount{
		id: {
			ID:                     id,
			DiscountType:           DiscountPercentage,
			DiscountValue:          10,
			RecurringDiscountType:  ptrType(DiscountFixed),
			RecurringDiscountValue: ptrF(5),
			AppliesTo:              AppliesInitial,
		},
	}

	res := ResolveDiscount(DiscountRequest{DiscountID: DiscountRef{Provided: true, ID: &id}}, nil, discounts)
	if res.RecurringPercentage != 10 || res.RecurringAmount != 0 {
		t.Fatalf("recurring should mirror initial when applies_to is not both: %+v", res)
	}
	if res.AppliesTo != AppliesInitial {
		t.Fatalf("expected applies_to initial, got %q", res.AppliesTo)
	}
}

func TestResolveDiscount_ExplicitNullClears(t *testing.T) {
	stored := &StoredDiscount{DiscountPercentage: 15, DiscountAmount: 10}

	res := ResolveDiscount(DiscountRequest{DiscountID: DiscountRef{Provided: true, ID: nil}}, stored, nil)
	if res.DiscountID != nil || res.InitialPercentage != 0 || res.InitialAmount != 0 {
		t.Fatalf("explicit null should clear discount, got %+v", res)
	}
}

func TestResolveDiscount_OmittedFallsBackToStored(t *testing.T) {
	stored := &StoredDiscount{DiscountPercentage: 15, DiscountAmount: 2}

	res := ResolveDiscount(DiscountRequest{}, stored, nil)
	if res.InitialPercentage != 15 || res.InitialAmount != 2 {
		t.Fatalf("expected stored values, got %+v", res)
	}
	if res.RecurringPercentage != 15 || res.RecurringAmount != 2 {
		t.Fatalf("recurring should mirror stored values, got %+v", res)
	}
}

func TestResolveDiscount_OmittedReResolvesStoredID(t *testing.T) {
	id := uuid.New()
	discounts := map[uuid.UUID]CompanyDiscount{
		id: {ID: id, DiscountType: DiscountFixed, DiscountValue: 20, AppliesTo: AppliesBoth},
	}
	stored := &StoredDiscount{DiscountID: &id, DiscountPercentage: 99, DiscountAmount: 99}

	res := ResolveDiscount(DiscountRequest{}, stored, discounts)
	if res.DiscountID == nil || *res.DiscountID != id {
		t.Fatalf("expected re-resolved id, got %v", res.DiscountID)
	}
	if res.InitialAmount != 20 || res.InitialPercentage != 0 {
		t.Fatalf("expected discount config over stale stored values, got %+v", res)
	}
}

func TestResolveDiscount_ManualLegacyValues(t *testing.T) {
	res := ResolveDiscount(DiscountRequest{DiscountPercentage: ptrF(25), DiscountAmount: ptrF(5)}, nil, nil)
	if res.InitialPercentage != 25 || res.InitialAmount != 5 {
		t.Fatalf("expected verbatim manual values, got %+v", res)
	}
	if res.RecurringPercentage != 25 || res.RecurringAmount != 5 {
		t.Fatalf("manual values apply to both components, got %+v", res)
	}
	if res.DiscountID != nil {
		t.Fatalf("manual path carries no discount id, got %v", res.DiscountID)
	}
}

func TestResolveDiscount_UnknownIDClears(t *testing.T) {
	id := uuid.New()
	res := ResolveDiscount(DiscountRequest{DiscountID: DiscountRef{Provided: true, ID: &id}}, nil, map[uuid.UUID]CompanyDiscount{})
	if res.DiscountID != nil || res.InitialPercentage != 0 || res.InitialAmount != 0 {
		t.Fatalf("unknown id should clear discount, got %+v", res)
	}
}

package pricing

import "github.com/google/uuid"

// DiscountType is how a discount value is interpreted.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// AppliesTo selects which price components a discount targets.
type AppliesTo string

const (
	AppliesInitial   AppliesTo = "initial"
	AppliesRecurring AppliesTo = "recurring"
	AppliesBoth      AppliesTo = "both"
)

// CompanyDiscount is a named, reusable discount configured by a company.
// The recurring fields are nullable and fall back to the initial fields.
type CompanyDiscount struct {
	ID                     uuid.UUID
	Name                   string
	DiscountType           DiscountType
	DiscountValue          float64
	RecurringDiscountType  *DiscountType
	RecurringDiscountValue *float64
	AppliesTo              AppliesTo
}

// DiscountRef carries a request's discount_id field with its tri-state
// semantics intact: absent, explicitly null, or set to a value. The
// distinction between absent and null drives resolution precedence, so
// callers must not collapse the two.
type DiscountRef struct {
	Provided bool
	ID       *uuid.UUID
}

// DiscountRequest is the discount-related portion of a line-item write.
type DiscountRequest struct {
	IsCustomPriced     bool
	DiscountID         DiscountRef
	DiscountPercentage *float64
	DiscountAmount     *float64
}

// StoredDiscount is the discount state already persisted on a line item,
// consulted when a request omits discount fields entirely.
type StoredDiscount struct {
	DiscountID         *uuid.UUID
	DiscountPercentage float64
	DiscountAmount     float64
}

// DiscountResolution is the normalized discount applied by the line-item
// calculator. Percentage and amount are split per price component.
type DiscountResolution struct {
	DiscountID          *uuid.UUID
	InitialPercentage   float64
	InitialAmount       float64
	RecurringPercentage float64
	RecurringAmount     float64
	AppliesTo           AppliesTo
}

// ResolveDiscount normalizes a line-item write's discount inputs. Precedence:
// custom pricing zeroes everything; an explicit discount_id wins when found;
// an explicit null clears; full omission falls back to the stored line item
// (re-resolving its discount_id when present); manual legacy values pass
// through verbatim. See the tests for the full matrix.
func ResolveDiscount(req DiscountRequest, existing *StoredDiscount, discounts map[uuid.UUID]CompanyDiscount) DiscountResolution {
	if req.IsCustomPriced {
		return DiscountResolution{AppliesTo: AppliesBoth}
	}

	if req.DiscountID.Provided {
		if req.DiscountID.ID == nil {
			// Explicit removal.
			return DiscountResolution{AppliesTo: AppliesBoth}
		}
		if d, ok := discounts[*req.DiscountID.ID]; ok {
			return resolveFromCompanyDiscount(d)
		}
		// Unknown id behaves like removal rather than silently keeping a
		// stale discount.
		return DiscountResolution{AppliesTo: AppliesBoth}
	}

	if req.DiscountPercentage == nil && req.DiscountAmount == nil {
		if existing == nil {
			return DiscountResolution{AppliesTo: AppliesBoth}
		}
		if existing.DiscountID != nil {
			if d, ok := discounts[*existing.DiscountID]; ok {
				return resolveFromCompanyDiscount(d)
			}
		}
		return DiscountResolution{
			DiscountID:          existing.DiscountID,
			InitialPercentage:   existing.DiscountPercentage,
			InitialAmount:       existing.DiscountAmount,
			RecurringPercentage: existing.DiscountPercentage,
			RecurringAmount:     existing.DiscountAmount,
			AppliesTo:           AppliesBoth,
		}
	}

	// Legacy path: ad-hoc values supplied directly on the line item.
	res := DiscountResolution{AppliesTo: AppliesBoth}
	if req.DiscountPercentage != nil {
		res.InitialPercentage = *req.DiscountPercentage
		res.RecurringPercentage = *req.DiscountPercentage
	}
	if req.DiscountAmount != nil {
		res.InitialAmount = *req.DiscountAmount
		res.RecurringAmount = *req.DiscountAmount
	}
	return res
}

func resolveFromCompanyDiscount(d CompanyDiscount) DiscountResolution {
	id := d.ID
	res := DiscountResolution{
		DiscountID: &id,
		AppliesTo:  d.AppliesTo,
	}

	switch d.DiscountType {
	case DiscountPercentage:
		res.InitialPercentage = d.DiscountValue
	case DiscountFixed:
		res.InitialAmount = d.DiscountValue
	}

	// A distinct recurring configuration only takes effect when the discount
	// targets both components; otherwise the recurring side mirrors initial.
	if d.RecurringDiscountType != nil && d.RecurringDiscountValue != nil && d.AppliesTo == AppliesBoth {
		switch *d.RecurringDiscountType {
		case DiscountPercentage:
			res.RecurringPercentage = *d.RecurringDiscountValue
		case DiscountFixed:
			res.RecurringAmount = *d.RecurringDiscountValue
		}
	} else {
		res.RecurringPercentage = res.InitialPercentage
		res.RecurringAmount = res.InitialAmount
	}

	return res
}

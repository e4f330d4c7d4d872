package service

import (
	"context"
	"math"

	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/activity"
	catalogsvc "github.com/Dykstra-Hamel/DH-portal-sub004/internal/catalog/service"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/pricing"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/quotes/repository"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/quotes/transport"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/apperr"

	"github.com/google/uuid"
)

// signatureResetReason is recorded on the activity entry written when a
// signed quote is modified and its signature invalidated.
const signatureResetReason = "pricing_modified_after_signing"

// Update is the quote mutation orchestrator. It stages a header patch,
// resolves and prices every line-item write (including recomputes forced by
// size-range changes), persists everything in one transaction with a totals
// recompute, and handles signature invalidation plus the best-effort side
// effects (activity log, service-address sync).
func (s *Service) Update(ctx context.Context, companyID, quoteID uuid.UUID, userID *uuid.UUID, req transport.UpdateQuoteRequest) (QuoteWithItems, error) {
	existing, err := s.store.GetByID(ctx, companyID, quoteID)
	if err != nil {
		return QuoteWithItems{}, err
	}

	if err := validateCustomPricing(req); err != nil {
		return QuoteWithItems{}, err
	}

	existingItems, err := s.store.ListLineItems(ctx, companyID, quoteID)
	if err != nil {
		return QuoteWithItems{}, err
	}

	isSigned := existing.SignedAt != nil
	requiresReset := isSigned && (req.HasSizeRangeUpdate() || req.LineItems != nil)

	// Effective ranges merge the request over the stored snapshot; range
	// change detection compares against the snapshot, not the request.
	ranges := pricing.SizeRanges{
		HomeSize:   valueOr(req.HomeSizeRange, existing.HomeSizeRange),
		YardSize:   valueOr(req.YardSizeRange, existing.YardSizeRange),
		LinearFeet: valueOr(req.LinearFeetRange, existing.LinearFeetRange),
	}
	rangesChanged := ranges.HomeSize != existing.HomeSizeRange ||
		ranges.YardSize != existing.YardSizeRange ||
		ranges.LinearFeet != existing.LinearFeetRange

	settings, err := s.settings.GetPricingSettings(ctx, companyID)
	if err != nil {
		return QuoteWithItems{}, err
	}

	refs, err := s.loadReferences(ctx, companyID, req, existingItems)
	if err != nil {
		return QuoteWithItems{}, err
	}

	writes := s.buildLineItemWrites(quoteID, companyID, req, existingItems, ranges, rangesChanged, settings, refs)

	patch := repository.FieldPatch{
		QuoteStatus:     req.QuoteStatus,
		SetValidUntil:   req.ValidUntil.Set,
		ValidUntil:      req.ValidUntil.Ptr(),
		PrimaryPest:     req.PrimaryPest,
		AdditionalPests: req.AdditionalPests,
		HomeSizeRange:   req.HomeSizeRange,
		YardSizeRange:   req.YardSizeRange,
		LinearFeetRange: req.LinearFeetRange,
		ResetSignature:  requiresReset,
	}

	if err := s.store.SaveQuoteUpdate(ctx, companyID, quoteID, patch, writes); err != nil {
		return QuoteWithItems{}, err
	}

	if requiresReset {
		oldStatus := existing.QuoteStatus
		newStatus := "draft"
		fieldName := "quote_status"
		s.activity.Log(ctx, activity.CreateParams{
			CompanyID:    companyID,
			EntityType:   activity.EntityQuote,
			EntityID:     quoteID,
			ActivityType: activity.TypeFieldUpdate,
			FieldName:    &fieldName,
			OldValue:     &oldStatus,
			NewValue:     &newStatus,
			UserID:       userID,
			Metadata: map[string]any{
				"quote_id": quoteID.String(),
				"reason":   signatureResetReason,
			},
		})
	}

	if rangesChanged {
		if err := s.store.SyncServiceAddress(ctx, companyID, quoteID, req.HomeSizeRange, req.YardSizeRange, req.LinearFeetRange); err != nil {
			s.log.Warn("service address sync failed", "quote_id", quoteID, "error", err)
		}
	}

	return s.Get(ctx, companyID, quoteID)
}

// validateCustomPricing rejects malformed custom-pricing payloads before any
// writes happen. Custom pricing requires both prices, non-negative.
func validateCustomPricing(req transport.UpdateQuoteRequest) error {
	if req.LineItems == nil {
		return nil
	}
	for _, li := range *req.LineItems {
		if !li.IsCustom() {
			continue
		}
		if li.CustomInitialPrice == nil || li.CustomRecurringPrice == nil {
			return apperr.Validation("custom pricing requires both initial and recurring prices")
		}
		if *li.CustomInitialPrice < 0 || *li.CustomRecurringPrice < 0 {
			return apperr.Validation("custom prices must not be negative")
		}
	}
	return nil
}

// loadReferences batch-fetches every catalog record this update can touch:
// ids named in the request, ids on the stored line items (needed for
// range-driven recomputes and discount re-resolution), and, in a second
// round, the component plans and add-ons of any referenced bundles.
func (s *Service) loadReferences(ctx context.Context, companyID uuid.UUID, req transport.UpdateQuoteRequest, existingItems []repository.LineItem) (catalogsvc.References, error) {
	var ids catalogsvc.ReferenceIDs

	if req.LineItems != nil {
		for _, li := range *req.LineItems {
			if li.ServicePlanID != nil {
				ids.ServicePlanIDs = append(ids.ServicePlanIDs, *li.ServicePlanID)
			}
			if li.BundlePlanID != nil {
				ids.BundlePlanIDs = append(ids.BundlePlanIDs, *li.BundlePlanID)
			}
			if li.AddonServiceID != nil {
				ids.AddOnIDs = append(ids.AddOnIDs, *li.AddonServiceID)
			}
			if id := li.DiscountID.Ptr(); id != nil {
				ids.DiscountIDs = append(ids.DiscountIDs, *id)
			}
		}
	}
	for _, li := range existingItems {
		if li.ServicePlanID != nil {
			ids.ServicePlanIDs = append(ids.ServicePlanIDs, *li.ServicePlanID)
		}
		if li.BundlePlanID != nil {
			ids.BundlePlanIDs = append(ids.BundlePlanIDs, *li.BundlePlanID)
		}
		if li.AddonServiceID != nil {
			ids.AddOnIDs = append(ids.AddOnIDs, *li.AddonServiceID)
		}
		if li.DiscountID != nil {
			ids.DiscountIDs = append(ids.DiscountIDs, *li.DiscountID)
		}
	}

	refs, err := s.catalog.FetchReferences(ctx, companyID, ids)
	if err != nil {
		return catalogsvc.References{}, err
	}

	// Bundle components may not be referenced anywhere else in the request.
	planIDs, addOnIDs := catalogsvc.ComponentIDsForBundles(refs.BundlePlans)
	missing := catalogsvc.ReferenceIDs{}
	for _, id := range planIDs {
		if _, ok := refs.ServicePlans[id]; !ok {
			missing.ServicePlanIDs = append(missing.ServicePlanIDs, id)
		}
	}
	for _, id := range addOnIDs {
		if _, ok := refs.AddOns[id]; !ok {
			missing.AddOnIDs = append(missing.AddOnIDs, id)
		}
	}
	if len(missing.ServicePlanIDs) > 0 || len(missing.AddOnIDs) > 0 {
		components, err := s.catalog.FetchReferences(ctx, companyID, missing)
		if err != nil {
			return catalogsvc.References{}, err
		}
		for id, p := range components.ServicePlans {
			refs.ServicePlans[id] = p
		}
		for id, a := range components.AddOns {
			refs.AddOns[id] = a
		}
	}

	return refs, nil
}

// buildLineItemWrites turns the request's line items plus any range-driven
// recomputes into staged writes. Missing catalog references silently skip
// the item rather than erroring.
func (s *Service) buildLineItemWrites(quoteID, companyID uuid.UUID, req transport.UpdateQuoteRequest, existingItems []repository.LineItem, ranges pricing.SizeRanges, rangesChanged bool, settings pricing.Settings, refs catalogsvc.References) []repository.LineItemWrite {
	existingByID := make(map[uuid.UUID]repository.LineItem, len(existingItems))
	for _, li := range existingItems {
		existingByID[li.ID] = li
	}

	var writes []repository.LineItemWrite
	touched := make(map[uuid.UUID]bool)

	if req.LineItems != nil {
		for i, li := range *req.LineItems {
			write, ok := s.stageRequestItem(quoteID, companyID, li, i, existingByID, ranges, settings, refs)
			if !ok {
				continue
			}
			if !write.Insert {
				touched[write.Row.ID] = true
			}
			writes = append(writes, write)
		}
	}

	if rangesChanged {
		for _, li := range existingItems {
			if touched[li.ID] || li.AddonServiceID != nil {
				continue
			}
			if write, ok := s.stageRangeRecompute(li, ranges, settings, refs); ok {
				writes = append(writes, write)
			}
		}
	}

	return writes
}

// stageRequestItem dispatches one request line item on its classified kind.
func (s *Service) stageRequestItem(quoteID, companyID uuid.UUID, li transport.LineItemRequest, index int, existingByID map[uuid.UUID]repository.LineItem, ranges pricing.SizeRanges, settings pricing.Settings, refs catalogsvc.References) (repository.LineItemWrite, bool) {
	switch li.Classify() {
	case transport.KindUpdateService:
		existing, ok := existingByID[*li.ID]
		if !ok {
			return repository.LineItemWrite{}, false
		}
		plan, ok := refs.ServicePlans[*li.ServicePlanID]
		if !ok {
			return repository.LineItemWrite{}, false
		}
		row := s.priceServiceRow(quoteID, companyID, plan, li, &existing, ranges, settings, refs)
		row.ID = existing.ID
		row.DisplayOrder = orderOr(li.DisplayOrder, existing.DisplayOrder)
		return repository.LineItemWrite{Row: row}, true

	case transport.KindUpdateBundle:
		existing, ok := existingByID[*li.ID]
		if !ok {
			return repository.LineItemWrite{}, false
		}
		bundle, ok := refs.BundlePlans[*li.BundlePlanID]
		if !ok {
			return repository.LineItemWrite{}, false
		}
		row := s.priceBundleRow(quoteID, companyID, bundle, ranges, settings, refs)
		row.ID = existing.ID
		row.DisplayOrder = orderOr(li.DisplayOrder, existing.DisplayOrder)
		return repository.LineItemWrite{Row: row}, true

	case transport.KindUpdateDiscountOnly:
		existing, ok := existingByID[*li.ID]
		if !ok {
			return repository.LineItemWrite{}, false
		}
		row := s.rediscountRow(existing, li, refs)
		row.DisplayOrder = orderOr(li.DisplayOrder, existing.DisplayOrder)
		return repository.LineItemWrite{Row: row}, true

	case transport.KindInsertService:
		plan, ok := refs.ServicePlans[*li.ServicePlanID]
		if !ok {
			return repository.LineItemWrite{}, false
		}
		row := s.priceServiceRow(quoteID, companyID, plan, li, nil, ranges, settings, refs)
		row.DisplayOrder = orderOr(li.DisplayOrder, index)
		return repository.LineItemWrite{Insert: true, Row: row}, true

	case transport.KindUpsertAddOn:
		addon, ok := refs.AddOns[*li.AddonServiceID]
		if !ok {
			return repository.LineItemWrite{}, false
		}
		row := s.addOnRow(quoteID, companyID, addon)
		if li.ID != nil {
			existing, ok := existingByID[*li.ID]
			if !ok {
				return repository.LineItemWrite{}, false
			}
			row.ID = existing.ID
			row.DisplayOrder = orderOr(li.DisplayOrder, existing.DisplayOrder)
			return repository.LineItemWrite{Row: row}, true
		}
		row.DisplayOrder = orderOr(li.DisplayOrder, index)
		return repository.LineItemWrite{Insert: true, Row: row}, true

	case transport.KindInsertBundle:
		bundle, ok := refs.BundlePlans[*li.BundlePlanID]
		if !ok {
			return repository.LineItemWrite{}, false
		}
		row := s.priceBundleRow(quoteID, companyID, bundle, ranges, settings, refs)
		row.DisplayOrder = orderOr(li.DisplayOrder, index)
		return repository.LineItemWrite{Insert: true, Row: row}, true

	default:
		return repository.LineItemWrite{}, false
	}
}

// priceServiceRow builds a service-plan row from the pricing engine's
// output. The discount resolution consumes the request's tri-state
// discount_id together with the stored row's discount state.
func (s *Service) priceServiceRow(quoteID, companyID uuid.UUID, plan pricing.ServicePlan, li transport.LineItemRequest, existing *repository.LineItem, ranges pricing.SizeRanges, settings pricing.Settings, refs catalogsvc.References) repository.LineItem {
	res := pricing.ResolveDiscount(discountRequest(li), storedDiscount(existing), refs.Discounts)

	var custom *pricing.CustomPrice
	if li.IsCustom() {
		custom = &pricing.CustomPrice{Initial: *li.CustomInitialPrice, Recurring: *li.CustomRecurringPrice}
	}

	price := pricing.PriceServicePlanLineItem(plan, ranges, settings, res, custom)

	row := repository.LineItem{
		QuoteID:             quoteID,
		CompanyID:           companyID,
		ServicePlanID:       &plan.ID,
		PlanName:            plan.PlanName,
		PlanDescription:     plan.PlanDescription,
		InitialPrice:        price.InitialPrice,
		RecurringPrice:      price.RecurringPrice,
		BillingFrequency:    plan.BillingFrequency,
		ServiceFrequency:    plan.TreatmentFrequency,
		FinalInitialPrice:   price.FinalInitialPrice,
		FinalRecurringPrice: price.FinalRecurringPrice,
	}

	if li.IsCustom() {
		row.IsCustomPriced = true
		row.CustomInitialPrice = li.CustomInitialPrice
		row.CustomRecurringPrice = li.CustomRecurringPrice
	} else {
		row.DiscountID = res.DiscountID
		row.DiscountPercentage = res.InitialPercentage
		row.DiscountAmount = res.InitialAmount
	}
	return row
}

// rediscountRow handles a discount/order-only update: list prices stay as
// stored and only the discount resolution and finals change. Add-on rows
// are immune to discounting entirely.
func (s *Service) rediscountRow(existing repository.LineItem, li transport.LineItemRequest, refs catalogsvc.References) repository.LineItem {
	row := existing

	if existing.AddonServiceID != nil {
		row.DiscountID = nil
		row.DiscountPercentage = 0
		row.DiscountAmount = 0
		row.FinalInitialPrice = existing.InitialPrice
		row.FinalRecurringPrice = existing.RecurringPrice
		return row
	}

	res := pricing.ResolveDiscount(discountRequest(li), storedDiscount(&existing), refs.Discounts)

	if li.IsCustom() {
		row.IsCustomPriced = true
		row.CustomInitialPrice = li.CustomInitialPrice
		row.CustomRecurringPrice = li.CustomRecurringPrice
		row.DiscountID = nil
		row.DiscountPercentage = 0
		row.DiscountAmount = 0
		row.FinalInitialPrice = math.Max(0, *li.CustomInitialPrice)
		row.FinalRecurringPrice = math.Max(0, *li.CustomRecurringPrice)
		return row
	}

	// An omitted is_custom_priced keeps the stored custom state, the same
	// stored-state fallback the discount fields get. Only an explicit false
	// reverts the row to list-plus-discount pricing.
	if li.IsCustomPriced == nil && existing.IsCustomPriced &&
		existing.CustomInitialPrice != nil && existing.CustomRecurringPrice != nil {
		row.FinalInitialPrice = math.Max(0, *existing.CustomInitialPrice)
		row.FinalRecurringPrice = math.Max(0, *existing.CustomRecurringPrice)
		return row
	}

	row.IsCustomPriced = false
	row.CustomInitialPrice = nil
	row.CustomRecurringPrice = nil
	row.DiscountID = res.DiscountID
	row.DiscountPercentage = res.InitialPercentage
	row.DiscountAmount = res.InitialAmount
	row.FinalInitialPrice = applyResolved(existing.InitialPrice, res, false)
	row.FinalRecurringPrice = applyResolved(existing.RecurringPrice, res, true)
	return row
}

// priceBundleRow builds a bundle row. Bundles carry no separate list price;
// the computed price is both list and final, clamped at zero.
func (s *Service) priceBundleRow(quoteID, companyID uuid.UUID, bundle pricing.BundlePlan, ranges pricing.SizeRanges, settings pricing.Settings, refs catalogsvc.References) repository.LineItem {
	price := pricing.PriceBundle(bundle, ranges, settings, refs.ServicePlans, refs.AddOns)
	if price.IntervalFallback {
		s.log.Warn("bundle interval table has no entry for the quote's bracket, using global pricing",
			"bundle_id", bundle.ID, "quote_id", quoteID)
	}
	initial := math.Max(0, price.InitialPrice)
	recurring := math.Max(0, price.RecurringPrice)

	return repository.LineItem{
		QuoteID:             quoteID,
		CompanyID:           companyID,
		BundlePlanID:        &bundle.ID,
		PlanName:            bundle.PlanName,
		PlanDescription:     bundle.PlanDescription,
		InitialPrice:        initial,
		RecurringPrice:      recurring,
		BillingFrequency:    bundle.BillingFrequency,
		FinalInitialPrice:   initial,
		FinalRecurringPrice: recurring,
	}
}

// addOnRow builds an add-on row: never discounted, never size-adjusted,
// final always equals list.
func (s *Service) addOnRow(quoteID, companyID uuid.UUID, addon pricing.AddOnService) repository.LineItem {
	return repository.LineItem{
		QuoteID:             quoteID,
		CompanyID:           companyID,
		AddonServiceID:      &addon.ID,
		PlanName:            addon.Name,
		PlanDescription:     addon.Description,
		InitialPrice:        addon.InitialPrice,
		RecurringPrice:      addon.RecurringPrice,
		FinalInitialPrice:   addon.InitialPrice,
		FinalRecurringPrice: addon.RecurringPrice,
	}
}

// stageRangeRecompute re-prices a stored line item against the new size
// ranges, preserving its discount and custom-pricing state.
func (s *Service) stageRangeRecompute(li repository.LineItem, ranges pricing.SizeRanges, settings pricing.Settings, refs catalogsvc.References) (repository.LineItemWrite, bool) {
	switch {
	case li.ServicePlanID != nil:
		plan, ok := refs.ServicePlans[*li.ServicePlanID]
		if !ok {
			return repository.LineItemWrite{}, false
		}
		res := pricing.ResolveDiscount(pricing.DiscountRequest{IsCustomPriced: li.IsCustomPriced}, storedDiscount(&li), refs.Discounts)
		var custom *pricing.CustomPrice
		if li.IsCustomPriced && li.CustomInitialPrice != nil && li.CustomRecurringPrice != nil {
			custom = &pricing.CustomPrice{Initial: *li.CustomInitialPrice, Recurring: *li.CustomRecurringPrice}
		}
		price := pricing.PriceServicePlanLineItem(plan, ranges, settings, res, custom)

		row := li
		row.InitialPrice = price.InitialPrice
		row.RecurringPrice = price.RecurringPrice
		row.FinalInitialPrice = price.FinalInitialPrice
		row.FinalRecurringPrice = price.FinalRecurringPrice
		if !li.IsCustomPriced {
			row.DiscountID = res.DiscountID
			row.DiscountPercentage = res.InitialPercentage
			row.DiscountAmount = res.InitialAmount
		}
		return repository.LineItemWrite{Row: row}, true

	case li.BundlePlanID != nil:
		bundle, ok := refs.BundlePlans[*li.BundlePlanID]
		if !ok {
			return repository.LineItemWrite{}, false
		}
		price := pricing.PriceBundle(bundle, ranges, settings, refs.ServicePlans, refs.AddOns)
		row := li
		row.InitialPrice = math.Max(0, price.InitialPrice)
		row.RecurringPrice = math.Max(0, price.RecurringPrice)
		row.FinalInitialPrice = row.InitialPrice
		row.FinalRecurringPrice = row.RecurringPrice
		return repository.LineItemWrite{Row: row}, true

	default:
		return repository.LineItemWrite{}, false
	}
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func discountRequest(li transport.LineItemRequest) pricing.DiscountRequest {
	return pricing.DiscountRequest{
		IsCustomPriced: li.IsCustom(),
		DiscountID: pricing.DiscountRef{
			Provided: li.DiscountID.Set,
			ID:       li.DiscountID.Ptr(),
		},
		DiscountPercentage: li.DiscountPercentage,
		DiscountAmount:     li.DiscountAmount,
	}
}

func storedDiscount(li *repository.LineItem) *pricing.StoredDiscount {
	if li == nil {
		return nil
	}
	return &pricing.StoredDiscount{
		DiscountID:         li.DiscountID,
		DiscountPercentage: li.DiscountPercentage,
		DiscountAmount:     li.DiscountAmount,
	}
}

// applyResolved applies a discount resolution to one stored list price.
func applyResolved(base float64, res pricing.DiscountResolution, recurring bool) float64 {
	applies := res.AppliesTo == pricing.AppliesBoth ||
		(!recurring && res.AppliesTo == pricing.AppliesInitial) ||
		(recurring && res.AppliesTo == pricing.AppliesRecurring)
	if !applies {
		return base
	}
	amount, pct := res.InitialAmount, res.InitialPercentage
	if recurring {
		amount, pct = res.RecurringAmount, res.RecurringPercentage
	}
	discounted := base - amount
	if pct > 0 {
		discounted *= 1 - pct/100
	}
	return math.Max(0, discounted)
}

func valueOr(v *string, fallback string) string {
	if v != nil {
		return *v
	}
	return fallback
}

func orderOr(v *int, fallback int) int {
	if v != nil {
		return *v
	}
	return fallback
}

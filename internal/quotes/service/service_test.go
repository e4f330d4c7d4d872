package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/activity"
	catalogsvc "github.com/Dykstra-Hamel/DH-portal-sub004/internal/catalog/service"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/pricing"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/quotes/repository"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/quotes/transport"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/apperr"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/logger"

	"github.com/google/uuid"
)

// ── Fakes ─────────────────────────────────────────────────────────────────────

type fakeStore struct {
	quote repository.Quote
	items []repository.LineItem

	savedPatch  repository.FieldPatch
	savedWrites []repository.LineItemWrite
	saveCalls   int

	syncCalls            int
	syncHome, syncYard   *string
	syncLinearFeet       *string

	acceptedSignature string
}

func (f *fakeStore) GetByID(_ context.Context, companyID, quoteID uuid.UUID) (repository.Quote, error) {
	if companyID != f.quote.CompanyID || quoteID != f.quote.ID {
		return repository.Quote{}, apperr.NotFound("quote not found")
	}
	return f.quote, nil
}

func (f *fakeStore) GetByPublicToken(_ context.Context, token string) (repository.Quote, error) {
	if f.quote.PublicToken == nil || *f.quote.PublicToken != token {
		return repository.Quote{}, apperr.NotFound("quote not found")
	}
	return f.quote, nil
}

func (f *fakeStore) ListLineItems(context.Context, uuid.UUID, uuid.UUID) ([]repository.LineItem, error) {
	return f.items, nil
}

func (f *fakeStore) List(context.Context, repository.ListParams) (repository.ListResult, error) {
	return repository.ListResult{Items: []repository.Quote{f.quote}, Total: 1, Page: 1, PageSize: 25, TotalPages: 1}, nil
}

func (f *fakeStore) Delete(context.Context, uuid.UUID, uuid.UUID) error { return nil }

func (f *fakeStore) SaveQuoteUpdate(_ context.Context, _, _ uuid.UUID, patch repository.FieldPatch, writes []repository.LineItemWrite) error {
	f.saveCalls++
	f.savedPatch = patch
	f.savedWrites = writes
	return nil
}

func (f *fakeStore) SyncServiceAddress(_ context.Context, _, _ uuid.UUID, home, yard, linearFeet *string) error {
	f.syncCalls++
	f.syncHome, f.syncYard, f.syncLinearFeet = home, yard, linearFeet
	return nil
}

func (f *fakeStore) MarkAccepted(_ context.Context, quoteID uuid.UUID, signatureData string, _ map[string]any) (repository.Quote, error) {
	f.acceptedSignature = signatureData
	accepted := f.quote
	accepted.QuoteStatus = "accepted"
	now := time.Now()
	accepted.SignedAt = &now
	accepted.SignatureData = &signatureData
	return accepted, nil
}

func (f *fakeStore) MarkSent(_ context.Context, _, _ uuid.UUID, token string) (repository.Quote, error) {
	sent := f.quote
	sent.QuoteStatus = "sent"
	if sent.PublicToken == nil {
		sent.PublicToken = &token
	}
	return sent, nil
}

type fakeCatalog struct {
	refs  catalogsvc.References
	calls int
}

func (f *fakeCatalog) FetchReferences(context.Context, uuid.UUID, catalogsvc.ReferenceIDs) (catalogsvc.References, error) {
	f.calls++
	return f.refs, nil
}

type fakeSettings struct {
	settings pricing.Settings
}

func (f *fakeSettings) GetPricingSettings(context.Context, uuid.UUID) (pricing.Settings, error) {
	return f.settings, nil
}

type fakeActivity struct {
	entries []activity.CreateParams
}

func (f *fakeActivity) Log(_ context.Context, params activity.CreateParams) {
	f.entries = append(f.entries, params)
}

// ── Fixtures ──────────────────────────────────────────────────────────────────

var (
	testCompanyID = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	testQuoteID   = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	testPlanID    = uuid.MustParse("33333333-3333-3333-3333-333333333333")
	testItemID    = uuid.MustParse("44444444-4444-4444-4444-444444444444")
	testAddOnID   = uuid.MustParse("55555555-5555-5555-5555-555555555555")
	testDiscID    = uuid.MustParse("66666666-6666-6666-6666-666666666666")
)

func testQuoteSettings() pricing.Settings {
	return pricing.Settings{
		BaseHomeSqFt: 1500, HomeSqFtInterval: 1000, MaxHomeSqFt: 3000,
		BaseYardAcres: 0.25, YardAcresInterval: 0.25, MaxYardAcres: 1,
		BaseLinearFeet: 100, LinearFeetInterval: 50, MaxLinearFeet: 500,
	}
}

func testPlan() pricing.ServicePlan {
	return pricing.ServicePlan{
		ID:               testPlanID,
		PlanName:         "General Pest Control",
		InitialPrice:     200,
		RecurringPrice:   60,
		PlanCategory:     "standard",
		BillingFrequency: "monthly",
		Sizing: pricing.PlanSizing{
			HomeSize: &pricing.DimensionPricing{InitialCostPerInterval: 50, RecurringCostPerInterval: 10},
		},
	}
}

func testRefs() catalogsvc.References {
	return catalogsvc.References{
		ServicePlans: map[uuid.UUID]pricing.ServicePlan{testPlanID: testPlan()},
		BundlePlans:  map[uuid.UUID]pricing.BundlePlan{},
		AddOns: map[uuid.UUID]pricing.AddOnService{
			testAddOnID: {ID: testAddOnID, Name: "Termite Inspection", InitialPrice: 75, RecurringPrice: 0},
		},
		Discounts: map[uuid.UUID]pricing.CompanyDiscount{
			testDiscID: {
				ID:            testDiscID,
				Name:          "Spring Special",
				DiscountType:  pricing.DiscountPercentage,
				DiscountValue: 10,
				AppliesTo:     pricing.AppliesBoth,
			},
		},
	}
}

func newTestService(store *fakeStore, cat *fakeCatalog, act *fakeActivity) *Service {
	return New(store, cat, &fakeSettings{settings: testQuoteSettings()}, act, logger.New("development"))
}

func serviceLineItem() repository.LineItem {
	planID := testPlanID
	return repository.LineItem{
		ID:                  testItemID,
		QuoteID:             testQuoteID,
		CompanyID:           testCompanyID,
		ServicePlanID:       &planID,
		PlanName:            "General Pest Control",
		InitialPrice:        200,
		RecurringPrice:      60,
		FinalInitialPrice:   200,
		FinalRecurringPrice: 60,
	}
}

func draftQuote() repository.Quote {
	token := "tok-abc"
	return repository.Quote{
		ID:          testQuoteID,
		CompanyID:   testCompanyID,
		QuoteStatus: "draft",
		PublicToken: &token,
	}
}

func ptrStr(s string) *string { return &s }

// ── Update: discount precedence flows through to the staged write ─────────────

func TestUpdate_ExplicitDiscountIDApplied(t *testing.T) {
	store := &fakeStore{quote: draftQuote(), items: []repository.LineItem{serviceLineItem()}}
	store.quote.HomeSizeRange = "0-1500"
	svc := newTestService(store, &fakeCatalog{refs: testRefs()}, &fakeActivity{})

	itemID, planID := testItemID, testPlanID
	req := transport.UpdateQuoteRequest{
		LineItems: &[]transport.LineItemRequest{{
			ID:            &itemID,
			ServicePlanID: &planID,
			DiscountID:    transport.Optional[uuid.UUID]{Set: true, Valid: true, Value: testDiscID},
		}},
	}

	if _, err := svc.Update(context.Background(), testCompanyID, testQuoteID, nil, req); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if store.saveCalls != 1 {
		t.Fatalf("expected 1 save, got %d", store.saveCalls)
	}
	if len(store.savedWrites) != 1 {
		t.Fatalf("expected 1 staged write, got %d", len(store.savedWrites))
	}

	if store.savedWrites[0].Insert {
		t.Fatalf("expected an update, staged an insert")
	}
	row := store.savedWrites[0].Row
	if row.DiscountID == nil || *row.DiscountID != testDiscID {
		t.Fatalf("expected discount id %s on the row, got %v", testDiscID, row.DiscountID)
	}
	// 10 percent off the in-bracket prices 200/60.
	if row.FinalInitialPrice != 180 {
		t.Fatalf("expected final initial 180, got %v", row.FinalInitialPrice)
	}
	if row.FinalRecurringPrice != 54 {
		t.Fatalf("expected final recurring 54, got %v", row.FinalRecurringPrice)
	}
	if row.InitialPrice != 200 || row.RecurringPrice != 60 {
		t.Fatalf("list prices must stay undiscounted, got %v/%v", row.InitialPrice, row.RecurringPrice)
	}
}

func TestUpdate_ExplicitNullClearsDiscount(t *testing.T) {
	item := serviceLineItem()
	discID := testDiscID
	item.DiscountID = &discID
	item.DiscountPercentage = 10
	item.FinalInitialPrice = 180
	item.FinalRecurringPrice = 54

	store := &fakeStore{quote: draftQuote(), items: []repository.LineItem{item}}
	svc := newTestService(store, &fakeCatalog{refs: testRefs()}, &fakeActivity{})

	itemID, planID := testItemID, testPlanID
	req := transport.UpdateQuoteRequest{
		LineItems: &[]transport.LineItemRequest{{
			ID:            &itemID,
			ServicePlanID: &planID,
			DiscountID:    transport.Optional[uuid.UUID]{Set: true, Valid: false},
		}},
	}

	if _, err := svc.Update(context.Background(), testCompanyID, testQuoteID, nil, req); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	row := store.savedWrites[0].Row
	if row.DiscountID != nil {
		t.Fatalf("expected discount cleared, got %v", row.DiscountID)
	}
	if row.FinalInitialPrice != 200 || row.FinalRecurringPrice != 60 {
		t.Fatalf("expected undiscounted finals 200/60, got %v/%v", row.FinalInitialPrice, row.FinalRecurringPrice)
	}
}

func TestUpdate_OmittedDiscountKeepsStored(t *testing.T) {
	item := serviceLineItem()
	discID := testDiscID
	item.DiscountID = &discID

	store := &fakeStore{quote: draftQuote(), items: []repository.LineItem{item}}
	svc := newTestService(store, &fakeCatalog{refs: testRefs()}, &fakeActivity{})

	itemID, planID := testItemID, testPlanID
	req := transport.UpdateQuoteRequest{
		LineItems: &[]transport.LineItemRequest{{ID: &itemID, ServicePlanID: &planID}},
	}

	if _, err := svc.Update(context.Background(), testCompanyID, testQuoteID, nil, req); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	row := store.savedWrites[0].Row
	if row.DiscountID == nil || *row.DiscountID != testDiscID {
		t.Fatalf("expected stored discount re-resolved, got %v", row.DiscountID)
	}
	if row.FinalInitialPrice != 180 {
		t.Fatalf("expected re-resolved final initial 180, got %v", row.FinalInitialPrice)
	}
}

func TestUpdate_ReorderKeepsStoredCustomPricing(t *testing.T) {
	item := serviceLineItem()
	custom := true
	initial, recurring := 120.0, 45.0
	item.IsCustomPriced = custom
	item.CustomInitialPrice = &initial
	item.CustomRecurringPrice = &recurring
	item.FinalInitialPrice = 120
	item.FinalRecurringPrice = 45

	store := &fakeStore{quote: draftQuote(), items: []repository.LineItem{item}}
	svc := newTestService(store, &fakeCatalog{refs: testRefs()}, &fakeActivity{})

	itemID := testItemID
	order := 3
	req := transport.UpdateQuoteRequest{
		LineItems: &[]transport.LineItemRequest{{ID: &itemID, DisplayOrder: &order}},
	}

	if _, err := svc.Update(context.Background(), testCompanyID, testQuoteID, nil, req); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	row := store.savedWrites[0].Row
	if !row.IsCustomPriced {
		t.Fatalf("expected stored custom pricing preserved on a reorder")
	}
	if row.CustomInitialPrice == nil || *row.CustomInitialPrice != 120 {
		t.Fatalf("expected custom initial 120 preserved, got %v", row.CustomInitialPrice)
	}
	if row.FinalInitialPrice != 120 || row.FinalRecurringPrice != 45 {
		t.Fatalf("expected negotiated finals 120/45, got %v/%v", row.FinalInitialPrice, row.FinalRecurringPrice)
	}
	if row.DisplayOrder != 3 {
		t.Fatalf("expected display order 3, got %d", row.DisplayOrder)
	}
}

func TestUpdate_ExplicitFalseRevertsCustomPricing(t *testing.T) {
	item := serviceLineItem()
	initial, recurring := 120.0, 45.0
	item.IsCustomPriced = true
	item.CustomInitialPrice = &initial
	item.CustomRecurringPrice = &recurring
	item.FinalInitialPrice = 120
	item.FinalRecurringPrice = 45

	store := &fakeStore{quote: draftQuote(), items: []repository.LineItem{item}}
	svc := newTestService(store, &fakeCatalog{refs: testRefs()}, &fakeActivity{})

	itemID := testItemID
	off := false
	req := transport.UpdateQuoteRequest{
		LineItems: &[]transport.LineItemRequest{{ID: &itemID, IsCustomPriced: &off}},
	}

	if _, err := svc.Update(context.Background(), testCompanyID, testQuoteID, nil, req); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	row := store.savedWrites[0].Row
	if row.IsCustomPriced || row.CustomInitialPrice != nil {
		t.Fatalf("expected custom pricing cleared on explicit false")
	}
	if row.FinalInitialPrice != 200 || row.FinalRecurringPrice != 60 {
		t.Fatalf("expected list-price finals 200/60, got %v/%v", row.FinalInitialPrice, row.FinalRecurringPrice)
	}
}

// ── Update: signature invalidation ────────────────────────────────────────────

func TestUpdate_SignedQuotePricingChangeResetsSignature(t *testing.T) {
	quote := draftQuote()
	quote.QuoteStatus = "accepted"
	signedAt := time.Now().Add(-time.Hour)
	quote.SignedAt = &signedAt

	store := &fakeStore{quote: quote, items: []repository.LineItem{serviceLineItem()}}
	act := &fakeActivity{}
	svc := newTestService(store, &fakeCatalog{refs: testRefs()}, act)

	userID := uuid.MustParse("77777777-7777-7777-7777-777777777777")
	req := transport.UpdateQuoteRequest{HomeSizeRange: ptrStr("1501-2501")}

	if _, err := svc.Update(context.Background(), testCompanyID, testQuoteID, &userID, req); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	if !store.savedPatch.ResetSignature {
		t.Fatalf("expected signature reset in the staged patch")
	}
	if len(act.entries) != 1 {
		t.Fatalf("expected exactly 1 activity entry, got %d", len(act.entries))
	}
	entry := act.entries[0]
	if entry.ActivityType != activity.TypeFieldUpdate {
		t.Fatalf("unexpected activity type %q", entry.ActivityType)
	}
	if entry.OldValue == nil || *entry.OldValue != "accepted" {
		t.Fatalf("expected old value accepted, got %v", entry.OldValue)
	}
	if entry.NewValue == nil || *entry.NewValue != "draft" {
		t.Fatalf("expected new value draft, got %v", entry.NewValue)
	}
	if entry.Metadata["reason"] != "pricing_modified_after_signing" {
		t.Fatalf("expected reset reason in metadata, got %v", entry.Metadata["reason"])
	}
	if entry.UserID == nil || *entry.UserID != userID {
		t.Fatalf("expected acting user recorded, got %v", entry.UserID)
	}
}

func TestUpdate_SignedQuoteNonPricingChangeKeepsSignature(t *testing.T) {
	quote := draftQuote()
	quote.QuoteStatus = "accepted"
	signedAt := time.Now().Add(-time.Hour)
	quote.SignedAt = &signedAt

	store := &fakeStore{quote: quote}
	act := &fakeActivity{}
	svc := newTestService(store, &fakeCatalog{refs: testRefs()}, act)

	req := transport.UpdateQuoteRequest{PrimaryPest: ptrStr("ants")}

	if _, err := svc.Update(context.Background(), testCompanyID, testQuoteID, nil, req); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	if store.savedPatch.ResetSignature {
		t.Fatalf("non-pricing change must not reset the signature")
	}
	if len(act.entries) != 0 {
		t.Fatalf("expected no activity entries, got %d", len(act.entries))
	}
}

func TestUpdate_UnsignedQuoteNeverResets(t *testing.T) {
	store := &fakeStore{quote: draftQuote(), items: []repository.LineItem{serviceLineItem()}}
	act := &fakeActivity{}
	svc := newTestService(store, &fakeCatalog{refs: testRefs()}, act)

	req := transport.UpdateQuoteRequest{HomeSizeRange: ptrStr("1501-2501"), LineItems: &[]transport.LineItemRequest{}}

	if _, err := svc.Update(context.Background(), testCompanyID, testQuoteID, nil, req); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if store.savedPatch.ResetSignature {
		t.Fatalf("unsigned quote must never be reset")
	}
	if len(act.entries) != 0 {
		t.Fatalf("expected no activity entries, got %d", len(act.entries))
	}
}

// ── Update: size-range change recomputes untouched items ──────────────────────

func TestUpdate_RangeChangeRepricesExistingItems(t *testing.T) {
	quote := draftQuote()
	quote.HomeSizeRange = "0-1500"

	addOnID := testAddOnID
	addOnItem := repository.LineItem{
		ID:                  uuid.MustParse("88888888-8888-8888-8888-888888888888"),
		QuoteID:             testQuoteID,
		CompanyID:           testCompanyID,
		AddonServiceID:      &addOnID,
		PlanName:            "Termite Inspection",
		InitialPrice:        75,
		FinalInitialPrice:   75,
	}

	store := &fakeStore{quote: quote, items: []repository.LineItem{serviceLineItem(), addOnItem}}
	svc := newTestService(store, &fakeCatalog{refs: testRefs()}, &fakeActivity{})

	req := transport.UpdateQuoteRequest{HomeSizeRange: ptrStr("1501-2501")}

	if _, err := svc.Update(context.Background(), testCompanyID, testQuoteID, nil, req); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	// Only the service plan row is recomputed; add-ons are size-independent.
	if len(store.savedWrites) != 1 {
		t.Fatalf("expected 1 recomputed write, got %d", len(store.savedWrites))
	}
	row := store.savedWrites[0].Row
	if row.ID != testItemID {
		t.Fatalf("expected the service plan row recomputed, got %v", row.ID)
	}
	// Bracket index 1 adds 50 initial and 10 recurring.
	if row.InitialPrice != 250 || row.RecurringPrice != 70 {
		t.Fatalf("expected size-adjusted 250/70, got %v/%v", row.InitialPrice, row.RecurringPrice)
	}

	if store.syncCalls != 1 {
		t.Fatalf("expected service address sync, got %d calls", store.syncCalls)
	}
	if store.syncHome == nil || *store.syncHome != "1501-2501" {
		t.Fatalf("expected sync with new home range, got %v", store.syncHome)
	}
	if store.syncYard != nil {
		t.Fatalf("unchanged yard range must not sync, got %v", store.syncYard)
	}
}

func TestUpdate_NoRangeChangeNoSync(t *testing.T) {
	quote := draftQuote()
	quote.HomeSizeRange = "0-1500"
	store := &fakeStore{quote: quote}
	svc := newTestService(store, &fakeCatalog{refs: testRefs()}, &fakeActivity{})

	// Same value as stored: present in the request but not a change.
	req := transport.UpdateQuoteRequest{HomeSizeRange: ptrStr("0-1500")}

	if _, err := svc.Update(context.Background(), testCompanyID, testQuoteID, nil, req); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if store.syncCalls != 0 {
		t.Fatalf("expected no sync, got %d calls", store.syncCalls)
	}
}

// ── Update: add-on, custom pricing, and skip semantics ────────────────────────

func TestUpdate_AddOnImmuneToDiscount(t *testing.T) {
	addOnID := testAddOnID
	item := repository.LineItem{
		ID:                testItemID,
		QuoteID:           testQuoteID,
		CompanyID:         testCompanyID,
		AddonServiceID:    &addOnID,
		InitialPrice:      75,
		FinalInitialPrice: 75,
	}
	store := &fakeStore{quote: draftQuote(), items: []repository.LineItem{item}}
	svc := newTestService(store, &fakeCatalog{refs: testRefs()}, &fakeActivity{})

	itemID := testItemID
	req := transport.UpdateQuoteRequest{
		LineItems: &[]transport.LineItemRequest{{
			ID:         &itemID,
			DiscountID: transport.Optional[uuid.UUID]{Set: true, Valid: true, Value: testDiscID},
		}},
	}

	if _, err := svc.Update(context.Background(), testCompanyID, testQuoteID, nil, req); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	row := store.savedWrites[0].Row
	if row.DiscountID != nil || row.DiscountPercentage != 0 || row.DiscountAmount != 0 {
		t.Fatalf("add-on row must stay undiscounted, got id=%v pct=%v amt=%v", row.DiscountID, row.DiscountPercentage, row.DiscountAmount)
	}
	if row.FinalInitialPrice != 75 {
		t.Fatalf("add-on final must equal list, got %v", row.FinalInitialPrice)
	}
}

func TestUpdate_CustomPricingRequiresBothPrices(t *testing.T) {
	store := &fakeStore{quote: draftQuote()}
	svc := newTestService(store, &fakeCatalog{refs: testRefs()}, &fakeActivity{})

	planID := testPlanID
	yes := true
	initial := 120.0
	req := transport.UpdateQuoteRequest{
		LineItems: &[]transport.LineItemRequest{{
			ServicePlanID:      &planID,
			IsCustomPriced:     &yes,
			CustomInitialPrice: &initial,
		}},
	}

	_, err := svc.Update(context.Background(), testCompanyID, testQuoteID, nil, req)
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if store.saveCalls != 0 {
		t.Fatalf("validation failure must happen before any write, got %d saves", store.saveCalls)
	}
}

func TestUpdate_MissingCatalogReferenceSkipsItem(t *testing.T) {
	store := &fakeStore{quote: draftQuote()}
	svc := newTestService(store, &fakeCatalog{refs: testRefs()}, &fakeActivity{})

	unknown := uuid.MustParse("99999999-9999-9999-9999-999999999999")
	planID := testPlanID
	req := transport.UpdateQuoteRequest{
		LineItems: &[]transport.LineItemRequest{
			{ServicePlanID: &unknown},
			{ServicePlanID: &planID},
		},
	}

	if _, err := svc.Update(context.Background(), testCompanyID, testQuoteID, nil, req); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if len(store.savedWrites) != 1 {
		t.Fatalf("expected the unknown plan skipped, got %d writes", len(store.savedWrites))
	}
	if store.savedWrites[0].Row.ServicePlanID == nil || *store.savedWrites[0].Row.ServicePlanID != testPlanID {
		t.Fatalf("wrong item staged")
	}
}

// ── Public acceptance flow ────────────────────────────────────────────────────

func TestAccept_RecordsSignatureAndActivity(t *testing.T) {
	store := &fakeStore{quote: draftQuote()}
	act := &fakeActivity{}
	svc := newTestService(store, &fakeCatalog{refs: testRefs()}, act)

	result, err := svc.Accept(context.Background(), "tok-abc", transport.AcceptQuoteRequest{SignatureData: "data:image/png;base64,abc"})
	if err != nil {
		t.Fatalf("Accept returned error: %v", err)
	}
	if result.Quote.QuoteStatus != "accepted" {
		t.Fatalf("expected accepted status, got %q", result.Quote.QuoteStatus)
	}
	if store.acceptedSignature == "" {
		t.Fatalf("signature was not persisted")
	}
	if len(act.entries) != 1 || act.entries[0].ActivityType != activity.TypeQuoteAccepted {
		t.Fatalf("expected one quote_accepted activity entry, got %+v", act.entries)
	}
}

func TestAccept_AlreadySignedConflicts(t *testing.T) {
	quote := draftQuote()
	signedAt := time.Now()
	quote.SignedAt = &signedAt
	store := &fakeStore{quote: quote}
	svc := newTestService(store, &fakeCatalog{refs: testRefs()}, &fakeActivity{})

	_, err := svc.Accept(context.Background(), "tok-abc", transport.AcceptQuoteRequest{SignatureData: "sig"})
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestAccept_ExpiredQuoteGone(t *testing.T) {
	quote := draftQuote()
	expired := time.Now().Add(-24 * time.Hour)
	quote.ValidUntil = &expired
	store := &fakeStore{quote: quote}
	svc := newTestService(store, &fakeCatalog{refs: testRefs()}, &fakeActivity{})

	_, err := svc.Accept(context.Background(), "tok-abc", transport.AcceptQuoteRequest{SignatureData: "sig"})
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindGone {
		t.Fatalf("expected gone, got %v", err)
	}
}

func TestGetByPublicToken_Expired(t *testing.T) {
	quote := draftQuote()
	expired := time.Now().Add(-time.Minute)
	quote.ValidUntil = &expired
	store := &fakeStore{quote: quote}
	svc := newTestService(store, &fakeCatalog{refs: testRefs()}, &fakeActivity{})

	_, err := svc.GetByPublicToken(context.Background(), "tok-abc")
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindGone {
		t.Fatalf("expected gone, got %v", err)
	}
}

func TestSend_MarksSentAndLogsStatusChange(t *testing.T) {
	quote := draftQuote()
	quote.PublicToken = nil
	store := &fakeStore{quote: quote, items: []repository.LineItem{serviceLineItem()}}
	act := &fakeActivity{}
	svc := newTestService(store, &fakeCatalog{refs: testRefs()}, act)

	result, err := svc.Send(context.Background(), testCompanyID, testQuoteID, nil)
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if result.Quote.QuoteStatus != "sent" {
		t.Fatalf("expected sent status, got %q", result.Quote.QuoteStatus)
	}
	if result.Quote.PublicToken == nil || *result.Quote.PublicToken == "" {
		t.Fatalf("expected a public token to be issued")
	}
	if len(act.entries) != 1 || act.entries[0].ActivityType != activity.TypeStatusChange {
		t.Fatalf("expected one status_change activity entry, got %+v", act.entries)
	}
}

func TestSend_AcceptedQuoteConflicts(t *testing.T) {
	quote := draftQuote()
	signedAt := time.Now()
	quote.SignedAt = &signedAt
	store := &fakeStore{quote: quote}
	svc := newTestService(store, &fakeCatalog{refs: testRefs()}, &fakeActivity{})

	_, err := svc.Send(context.Background(), testCompanyID, testQuoteID, nil)
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

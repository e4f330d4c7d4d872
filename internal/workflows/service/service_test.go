package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	companiesrepo "github.com/Dykstra-Hamel/DH-portal-sub004/internal/companies/repository"
	leadsrepo "github.com/Dykstra-Hamel/DH-portal-sub004/internal/leads/repository"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/scheduler"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/workflows/repository"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/workflows/transport"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/apperr"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/logger"

	"github.com/google/uuid"
)

var (
	testCompanyID  = uuid.MustParse("bbbbbbbb-0000-0000-0000-000000000001")
	testWorkflowID = uuid.MustParse("bbbbbbbb-0000-0000-0000-000000000002")
	testLeadID     = uuid.MustParse("bbbbbbbb-0000-0000-0000-000000000003")
	testVariantAID = uuid.MustParse("bbbbbbbb-0000-0000-0000-00000000000a")
	testVariantBID = uuid.MustParse("bbbbbbbb-0000-0000-0000-00000000000b")
	testSendID     = uuid.MustParse("bbbbbbbb-0000-0000-0000-00000000000c")
)

func twoVariants() []repository.Variant {
	return []repository.Variant{
		{ID: testVariantAID, WorkflowID: testWorkflowID, Position: 1, Name: "A", Subject: "Hi {{first_name}}", Body: "<p>From {{company_name}}</p>", SplitPercent: 50},
		{ID: testVariantBID, WorkflowID: testWorkflowID, Position: 2, Name: "B", Subject: "Hello {{first_name}}", Body: "<p>Greetings</p>", SplitPercent: 50},
	}
}

type fakeStore struct {
	workflows []repository.Workflow
	variants  []repository.Variant
	send      repository.Send

	createdSends  []repository.Send
	sentMarked    int
	failedReasons []string
	cancelCount   int64
	cancelCalls   int
}

func (f *fakeStore) CreateWorkflow(ctx context.Context, w repository.Workflow, variants []repository.Variant) (repository.Workflow, []repository.Variant, error) {
	w.ID = uuid.New()
	f.workflows = append(f.workflows, w)
	return w, variants, nil
}

func (f *fakeStore) GetWorkflow(ctx context.Context, companyID, workflowID uuid.UUID) (repository.Workflow, error) {
	for _, w := range f.workflows {
		if w.ID == workflowID {
			return w, nil
		}
	}
	return repository.Workflow{}, apperr.NotFound("workflow not found")
}

func (f *fakeStore) ListWorkflows(ctx context.Context, companyID uuid.UUID) ([]repository.Workflow, error) {
	return f.workflows, nil
}

func (f *fakeStore) ListActiveByTrigger(ctx context.Context, companyID uuid.UUID, trigger string) ([]repository.Workflow, error) {
	out := make([]repository.Workflow, 0)
	for _, w := range f.workflows {
		if w.TriggerEvent == trigger && w.IsActive {
			out = append(out, w)
		}
	}
	return out, nil
}

func (f *fakeStore) CountByCompany(ctx context.Context, companyID uuid.UUID) (int, error) {
	return len(f.workflows), nil
}

func (f *fakeStore) ListVariants(ctx context.Context, workflowID uuid.UUID) ([]repository.Variant, error) {
	return f.variants, nil
}

func (f *fakeStore) SetWorkflowActive(ctx context.Context, companyID, workflowID uuid.UUID, active bool) error {
	return nil
}

func (f *fakeStore) DeleteWorkflow(ctx context.Context, companyID, workflowID uuid.UUID) error {
	return nil
}

func (f *fakeStore) CreateSend(ctx context.Context, s repository.Send) (repository.Send, error) {
	s.ID = testSendID
	s.CreatedAt = time.Now()
	f.createdSends = append(f.createdSends, s)
	f.send = s
	return s, nil
}

func (f *fakeStore) GetSend(ctx context.Context, sendID uuid.UUID) (repository.Send, error) {
	if sendID != f.send.ID {
		return repository.Send{}, apperr.NotFound("workflow send not found")
	}
	return f.send, nil
}

func (f *fakeStore) ListSendsByWorkflow(ctx context.Context, companyID, workflowID uuid.UUID) ([]repository.Send, error) {
	return f.createdSends, nil
}

func (f *fakeStore) MarkSendSent(ctx context.Context, sendID uuid.UUID) error {
	f.sentMarked++
	f.send.Status = SendSent
	return nil
}

func (f *fakeStore) MarkSendFailed(ctx context.Context, sendID uuid.UUID, reason string) error {
	f.failedReasons = append(f.failedReasons, reason)
	f.send.Status = SendFailed
	return nil
}

func (f *fakeStore) CancelPendingSendsForLead(ctx context.Context, companyID, leadID uuid.UUID) (int64, error) {
	f.cancelCalls++
	return f.cancelCount, nil
}

type fakeLeads struct {
	lead leadsrepo.Lead
}

func (f *fakeLeads) Get(ctx context.Context, companyID, leadID uuid.UUID) (leadsrepo.Lead, error) {
	return f.lead, nil
}

type fakeCompanies struct{}

func (fakeCompanies) GetCompany(ctx context.Context, companyID uuid.UUID) (companiesrepo.Company, error) {
	return companiesrepo.Company{ID: companyID, Name: "Apex Pest Control"}, nil
}

type sentMail struct {
	to, subject, body string
}

type fakeEmail struct {
	sent []sentMail
}

func (f *fakeEmail) SendCustomEmail(ctx context.Context, toEmail, subject, htmlContent string) error {
	f.sent = append(f.sent, sentMail{to: toEmail, subject: subject, body: htmlContent})
	return nil
}

type scheduledSend struct {
	payload scheduler.WorkflowSendPayload
	runAt   time.Time
}

type fakeScheduler struct {
	sends []scheduledSend
}

func (f *fakeScheduler) ScheduleCadenceStep(ctx context.Context, payload scheduler.CadenceStepPayload, runAt time.Time) error {
	return nil
}

func (f *fakeScheduler) ScheduleWorkflowSend(ctx context.Context, payload scheduler.WorkflowSendPayload, runAt time.Time) error {
	f.sends = append(f.sends, scheduledSend{payload: payload, runAt: runAt})
	return nil
}

func newTestService(store *fakeStore, sched *fakeScheduler, email *fakeEmail, defaults []DefaultWorkflow) *Service {
	leads := &fakeLeads{lead: leadsrepo.Lead{
		ID:        testLeadID,
		CompanyID: testCompanyID,
		FirstName: "Dana",
		LastName:  "Reyes",
		Email:     "dana@example.com",
	}}
	return New(store, leads, fakeCompanies{}, email, sched, defaults, logger.New("development"))
}

func TestAssignVariantIsDeterministic(t *testing.T) {
	variants := twoVariants()
	first, err := AssignVariant(testWorkflowID, testLeadID, variants)
	if err != nil {
		t.Fatalf("AssignVariant: %v", err)
	}
	for i := 0; i < 50; i++ {
		again, err := AssignVariant(testWorkflowID, testLeadID, variants)
		if err != nil {
			t.Fatalf("AssignVariant: %v", err)
		}
		if again.ID != first.ID {
			t.Fatalf("assignment changed between calls: %v then %v", first.ID, again.ID)
		}
	}
}

func TestAssignVariantRespectsSplitBounds(t *testing.T) {
	variants := []repository.Variant{
		{ID: testVariantAID, Position: 1, SplitPercent: 100},
		{ID: testVariantBID, Position: 2, SplitPercent: 0},
	}
	// Every lead lands in the 100 percent bucket.
	for i := 0; i < 200; i++ {
		v, err := AssignVariant(testWorkflowID, uuid.New(), variants)
		if err != nil {
			t.Fatalf("AssignVariant: %v", err)
		}
		if v.ID != testVariantAID {
			t.Fatalf("lead assigned outside 100%% variant on iteration %d", i)
		}
	}
}

func TestAssignVariantSpreadsAcrossVariants(t *testing.T) {
	variants := twoVariants()
	counts := map[uuid.UUID]int{}
	for i := 0; i < 500; i++ {
		v, err := AssignVariant(testWorkflowID, uuid.New(), variants)
		if err != nil {
			t.Fatalf("AssignVariant: %v", err)
		}
		counts[v.ID]++
	}
	if counts[testVariantAID] == 0 || counts[testVariantBID] == 0 {
		t.Fatalf("50/50 split never hit one variant: %v", counts)
	}
}

func TestCreateRejectsBadSplitSum(t *testing.T) {
	svc := newTestService(&fakeStore{}, &fakeScheduler{}, &fakeEmail{}, nil)

	_, err := svc.Create(context.Background(), testCompanyID, transport.CreateWorkflowRequest{
		Name:         "Welcome",
		TriggerEvent: TriggerLeadCreated,
		Variants: []transport.WorkflowVariantRequest{
			{Name: "A", Subject: "s", Body: "b", SplitPercent: 60},
			{Name: "B", Subject: "s", Body: "b", SplitPercent: 60},
		},
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestHandleTriggerQueuesAndSchedulesSend(t *testing.T) {
	store := &fakeStore{
		workflows: []repository.Workflow{{
			ID:           testWorkflowID,
			CompanyID:    testCompanyID,
			TriggerEvent: TriggerLeadCreated,
			DelayMinutes: 30,
			IsActive:     true,
		}},
		variants: twoVariants(),
	}
	sched := &fakeScheduler{}
	svc := newTestService(store, sched, &fakeEmail{}, nil)

	if err := svc.HandleTrigger(context.Background(), TriggerLeadCreated, testCompanyID, testLeadID); err != nil {
		t.Fatalf("HandleTrigger: %v", err)
	}
	if len(store.createdSends) != 1 {
		t.Fatalf("expected 1 send logged, got %d", len(store.createdSends))
	}
	if store.createdSends[0].Status != SendPending {
		t.Fatalf("expected pending send, got %q", store.createdSends[0].Status)
	}
	if len(sched.sends) != 1 {
		t.Fatalf("expected 1 scheduled send, got %d", len(sched.sends))
	}
	wantAt := time.Now().Add(30 * time.Minute)
	if diff := sched.sends[0].runAt.Sub(wantAt); diff < -time.Minute || diff > time.Minute {
		t.Fatalf("unexpected run time: %v", sched.sends[0].runAt)
	}

	// The logged variant matches the deterministic assignment.
	want, _ := AssignVariant(testWorkflowID, testLeadID, twoVariants())
	if store.createdSends[0].VariantID != want.ID {
		t.Fatalf("send logged variant %v, assignment says %v", store.createdSends[0].VariantID, want.ID)
	}
}

func TestHandleTriggerIgnoresInactiveWorkflows(t *testing.T) {
	store := &fakeStore{
		workflows: []repository.Workflow{{
			ID:           testWorkflowID,
			CompanyID:    testCompanyID,
			TriggerEvent: TriggerLeadCreated,
			IsActive:     false,
		}},
		variants: twoVariants(),
	}
	sched := &fakeScheduler{}
	svc := newTestService(store, sched, &fakeEmail{}, nil)

	if err := svc.HandleTrigger(context.Background(), TriggerLeadCreated, testCompanyID, testLeadID); err != nil {
		t.Fatalf("HandleTrigger: %v", err)
	}
	if len(store.createdSends) != 0 || len(sched.sends) != 0 {
		t.Fatal("inactive workflow should not queue sends")
	}
}

func TestHandleSendDueRendersAndDelivers(t *testing.T) {
	store := &fakeStore{
		variants: twoVariants(),
		send: repository.Send{
			ID:         testSendID,
			WorkflowID: testWorkflowID,
			VariantID:  testVariantAID,
			CompanyID:  testCompanyID,
			LeadID:     testLeadID,
			Status:     SendPending,
		},
	}
	email := &fakeEmail{}
	svc := newTestService(store, &fakeScheduler{}, email, nil)

	err := svc.HandleSendDue(context.Background(), scheduler.WorkflowSendDueEvent{
		SendID: testSendID, WorkflowID: testWorkflowID, CompanyID: testCompanyID, LeadID: testLeadID,
	})
	if err != nil {
		t.Fatalf("HandleSendDue: %v", err)
	}
	if len(email.sent) != 1 {
		t.Fatalf("expected 1 email, got %d", len(email.sent))
	}
	if email.sent[0].subject != "Hi Dana" {
		t.Fatalf("placeholders not rendered in subject: %q", email.sent[0].subject)
	}
	if email.sent[0].body != "<p>From Apex Pest Control</p>" {
		t.Fatalf("placeholders not rendered in body: %q", email.sent[0].body)
	}
	if store.sentMarked != 1 {
		t.Fatalf("send not marked sent")
	}
}

func TestHandleSendDueDropsCancelledSend(t *testing.T) {
	store := &fakeStore{
		variants: twoVariants(),
		send: repository.Send{
			ID:         testSendID,
			WorkflowID: testWorkflowID,
			VariantID:  testVariantAID,
			CompanyID:  testCompanyID,
			LeadID:     testLeadID,
			Status:     SendCancelled,
		},
	}
	email := &fakeEmail{}
	svc := newTestService(store, &fakeScheduler{}, email, nil)

	err := svc.HandleSendDue(context.Background(), scheduler.WorkflowSendDueEvent{
		SendID: testSendID, WorkflowID: testWorkflowID, CompanyID: testCompanyID, LeadID: testLeadID,
	})
	if err != nil {
		t.Fatalf("HandleSendDue: %v", err)
	}
	if len(email.sent) != 0 || store.sentMarked != 0 {
		t.Fatal("cancelled send should be a no-op")
	}
}

func TestCancelForLeadStopsPendingSends(t *testing.T) {
	store := &fakeStore{cancelCount: 2}
	svc := newTestService(store, &fakeScheduler{}, &fakeEmail{}, nil)

	if err := svc.CancelForLead(context.Background(), testCompanyID, testLeadID); err != nil {
		t.Fatalf("CancelForLead: %v", err)
	}
	if store.cancelCalls != 1 {
		t.Fatalf("expected cancel to hit the store once, got %d", store.cancelCalls)
	}
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "workflows.yaml")
	content := `workflows:
  - name: Welcome email
    trigger: lead_created
    delay_minutes: 15
    variants:
      - name: Friendly
        subject: "Welcome, {{first_name}}"
        body: "<p>Thanks for reaching out to {{company_name}}.</p>"
        split_percent: 50
      - name: Direct
        subject: "Your pest control estimate"
        body: "<p>We can help.</p>"
        split_percent: 50
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write defaults: %v", err)
	}

	defaults, err := LoadDefaults(path)
	if err != nil {
		t.Fatalf("LoadDefaults: %v", err)
	}
	if len(defaults) != 1 {
		t.Fatalf("expected 1 workflow, got %d", len(defaults))
	}
	if defaults[0].Trigger != TriggerLeadCreated || len(defaults[0].Variants) != 2 {
		t.Fatalf("unexpected defaults: %+v", defaults[0])
	}
}

func TestLoadDefaultsRejectsBadSplit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "workflows.yaml")
	content := `workflows:
  - name: Broken
    trigger: lead_created
    variants:
      - name: Only
        subject: s
        body: b
        split_percent: 80
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write defaults: %v", err)
	}

	if _, err := LoadDefaults(path); err == nil {
		t.Fatal("expected error for splits not summing to 100")
	}
}

func TestSeedDefaultsRefusesNonEmptyCompany(t *testing.T) {
	store := &fakeStore{workflows: []repository.Workflow{{ID: testWorkflowID}}}
	svc := newTestService(store, &fakeScheduler{}, &fakeEmail{}, []DefaultWorkflow{{
		Name: "Welcome", Trigger: TriggerLeadCreated,
		Variants: []DefaultVariant{{Name: "A", Subject: "s", Body: "b", SplitPercent: 100}},
	}})

	_, err := svc.SeedDefaults(context.Background(), testCompanyID)
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/activity"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/cadences/repository"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/cadences/transport"
	companiesrepo "github.com/Dykstra-Hamel/DH-portal-sub004/internal/companies/repository"
	leadsrepo "github.com/Dykstra-Hamel/DH-portal-sub004/internal/leads/repository"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/scheduler"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/apperr"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/events"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/logger"

	"github.com/google/uuid"
)

var (
	testCompanyID    = uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000001")
	testCadenceID    = uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000002")
	testLeadID       = uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000003")
	testEnrollmentID = uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000004")
)

type scheduledCall struct {
	payload scheduler.CadenceStepPayload
	runAt   time.Time
}

type fakeScheduler struct {
	calls []scheduledCall
}

func (f *fakeScheduler) ScheduleCadenceStep(ctx context.Context, payload scheduler.CadenceStepPayload, runAt time.Time) error {
	f.calls = append(f.calls, scheduledCall{payload: payload, runAt: runAt})
	return nil
}

func (f *fakeScheduler) ScheduleWorkflowSend(ctx context.Context, payload scheduler.WorkflowSendPayload, runAt time.Time) error {
	return nil
}

type fakeStore struct {
	cadence    repository.Cadence
	steps      []repository.Step
	enrollment repository.Enrollment
	hasActive  bool

	advancedTo  []int
	completed   int
	cancelled   int
	cancelCount int64
}

func (f *fakeStore) CreateCadence(ctx context.Context, c repository.Cadence, steps []repository.Step) (repository.Cadence, []repository.Step, error) {
	c.ID = testCadenceID
	return c, steps, nil
}

func (f *fakeStore) GetCadence(ctx context.Context, companyID, cadenceID uuid.UUID) (repository.Cadence, error) {
	if cadenceID != f.cadence.ID {
		return repository.Cadence{}, apperr.NotFound("cadence not found")
	}
	return f.cadence, nil
}

func (f *fakeStore) ListSteps(ctx context.Context, cadenceID uuid.UUID) ([]repository.Step, error) {
	return f.steps, nil
}

func (f *fakeStore) ListCadences(ctx context.Context, companyID uuid.UUID) ([]repository.Cadence, error) {
	return []repository.Cadence{f.cadence}, nil
}

func (f *fakeStore) SetCadenceActive(ctx context.Context, companyID, cadenceID uuid.UUID, active bool) error {
	f.cadence.IsActive = active
	return nil
}

func (f *fakeStore) DeleteCadence(ctx context.Context, companyID, cadenceID uuid.UUID) error {
	return nil
}

func (f *fakeStore) CreateEnrollment(ctx context.Context, e repository.Enrollment) (repository.Enrollment, error) {
	e.ID = testEnrollmentID
	e.EnrolledAt = time.Now()
	f.enrollment = e
	return e, nil
}

func (f *fakeStore) GetEnrollment(ctx context.Context, enrollmentID uuid.UUID) (repository.Enrollment, error) {
	if enrollmentID != f.enrollment.ID {
		return repository.Enrollment{}, apperr.NotFound("enrollment not found")
	}
	return f.enrollment, nil
}

func (f *fakeStore) HasActiveEnrollment(ctx context.Context, cadenceID, leadID uuid.UUID) (bool, error) {
	return f.hasActive, nil
}

func (f *fakeStore) ListEnrollmentsByLead(ctx context.Context, companyID, leadID uuid.UUID) ([]repository.Enrollment, error) {
	return []repository.Enrollment{f.enrollment}, nil
}

func (f *fakeStore) AdvanceEnrollment(ctx context.Context, enrollmentID uuid.UUID, currentStep int) error {
	f.advancedTo = append(f.advancedTo, currentStep)
	f.enrollment.CurrentStep = currentStep
	return nil
}

func (f *fakeStore) CompleteEnrollment(ctx context.Context, enrollmentID uuid.UUID) error {
	f.completed++
	f.enrollment.Status = EnrollmentCompleted
	return nil
}

func (f *fakeStore) CancelEnrollment(ctx context.Context, companyID, enrollmentID uuid.UUID) error {
	f.cancelled++
	return nil
}

func (f *fakeStore) CancelActiveEnrollmentsForLead(ctx context.Context, companyID, leadID uuid.UUID) (int64, error) {
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

type sentEmail struct {
	to, name, company, body string
}

type fakeEmail struct {
	sent []sentEmail
}

func (f *fakeEmail) SendCadenceEmail(ctx context.Context, toEmail, customerName, companyName, bodyText string) error {
	f.sent = append(f.sent, sentEmail{to: toEmail, name: customerName, company: companyName, body: bodyText})
	return nil
}

type fakeActivity struct {
	entries []activity.CreateParams
}

func (f *fakeActivity) Log(ctx context.Context, params activity.CreateParams) {
	f.entries = append(f.entries, params)
}

func strp(s string) *string { return &s }

func threeSteps() []repository.Step {
	return []repository.Step{
		{ID: uuid.New(), CadenceID: testCadenceID, StepOrder: 1, StepType: StepCall, DelayHours: 0},
		{ID: uuid.New(), CadenceID: testCadenceID, StepOrder: 2, StepType: StepEmail, DelayHours: 48, EmailBody: strp("Checking in about your quote.")},
		{ID: uuid.New(), CadenceID: testCadenceID, StepOrder: 3, StepType: StepWait, DelayHours: 72},
	}
}

func newTestService(store *fakeStore, sched *fakeScheduler, email *fakeEmail, act *fakeActivity) *Service {
	leads := &fakeLeads{lead: leadsrepo.Lead{
		ID:        testLeadID,
		CompanyID: testCompanyID,
		FirstName: "Dana",
		LastName:  "Reyes",
		Email:     "dana@example.com",
	}}
	return New(store, leads, fakeCompanies{}, email, sched, act, logger.New("development"))
}

func TestCreateRejectsNonContiguousSteps(t *testing.T) {
	svc := newTestService(&fakeStore{}, &fakeScheduler{}, &fakeEmail{}, &fakeActivity{})

	_, err := svc.Create(context.Background(), testCompanyID, transport.CreateCadenceRequest{
		Name: "Follow up",
		Steps: []transport.CadenceStepRequest{
			{StepOrder: 1, StepType: StepCall},
			{StepOrder: 3, StepType: StepWait, DelayHours: 24},
		},
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateRejectsEmailStepWithoutBody(t *testing.T) {
	svc := newTestService(&fakeStore{}, &fakeScheduler{}, &fakeEmail{}, &fakeActivity{})

	_, err := svc.Create(context.Background(), testCompanyID, transport.CreateCadenceRequest{
		Name: "Follow up",
		Steps: []transport.CadenceStepRequest{
			{StepOrder: 1, StepType: StepEmail},
		},
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestEnrollSchedulesFirstStep(t *testing.T) {
	store := &fakeStore{
		cadence: repository.Cadence{ID: testCadenceID, CompanyID: testCompanyID, IsActive: true},
		steps:   threeSteps(),
	}
	sched := &fakeScheduler{}
	svc := newTestService(store, sched, &fakeEmail{}, &fakeActivity{})

	enrollment, err := svc.Enroll(context.Background(), testCompanyID, testCadenceID, testLeadID)
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if enrollment.Status != EnrollmentActive || enrollment.CurrentStep != 0 {
		t.Fatalf("unexpected enrollment state: %+v", enrollment)
	}
	if len(sched.calls) != 1 {
		t.Fatalf("expected 1 scheduled step, got %d", len(sched.calls))
	}
	if sched.calls[0].payload.StepOrder != 1 {
		t.Fatalf("expected step 1 scheduled, got %d", sched.calls[0].payload.StepOrder)
	}
	if sched.calls[0].payload.EnrollmentID != testEnrollmentID.String() {
		t.Fatalf("unexpected enrollment id in payload: %s", sched.calls[0].payload.EnrollmentID)
	}
}

func TestEnrollRejectsDuplicateActiveEnrollment(t *testing.T) {
	store := &fakeStore{
		cadence:   repository.Cadence{ID: testCadenceID, CompanyID: testCompanyID, IsActive: true},
		steps:     threeSteps(),
		hasActive: true,
	}
	svc := newTestService(store, &fakeScheduler{}, &fakeEmail{}, &fakeActivity{})

	_, err := svc.Enroll(context.Background(), testCompanyID, testCadenceID, testLeadID)
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestEnrollRejectsInactiveCadence(t *testing.T) {
	store := &fakeStore{
		cadence: repository.Cadence{ID: testCadenceID, CompanyID: testCompanyID, IsActive: false},
		steps:   threeSteps(),
	}
	svc := newTestService(store, &fakeScheduler{}, &fakeEmail{}, &fakeActivity{})

	_, err := svc.Enroll(context.Background(), testCompanyID, testCadenceID, testLeadID)
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestHandleStepDueExecutesCallStepAndSchedulesNext(t *testing.T) {
	store := &fakeStore{
		cadence: repository.Cadence{ID: testCadenceID, CompanyID: testCompanyID, IsActive: true},
		steps:   threeSteps(),
		enrollment: repository.Enrollment{
			ID:        testEnrollmentID,
			CadenceID: testCadenceID,
			CompanyID: testCompanyID,
			LeadID:    testLeadID,
			Status:    EnrollmentActive,
		},
	}
	sched := &fakeScheduler{}
	act := &fakeActivity{}
	svc := newTestService(store, sched, &fakeEmail{}, act)

	err := svc.HandleStepDue(context.Background(), scheduler.CadenceStepDueEvent{
		EnrollmentID: testEnrollmentID, CompanyID: testCompanyID, StepOrder: 1,
	})
	if err != nil {
		t.Fatalf("HandleStepDue: %v", err)
	}
	if len(act.entries) != 1 {
		t.Fatalf("expected 1 activity entry for call step, got %d", len(act.entries))
	}
	if act.entries[0].EntityID != testLeadID {
		t.Fatalf("activity logged on wrong entity: %v", act.entries[0].EntityID)
	}
	if len(store.advancedTo) != 1 || store.advancedTo[0] != 1 {
		t.Fatalf("expected advance to step 1, got %v", store.advancedTo)
	}
	if len(sched.calls) != 1 || sched.calls[0].payload.StepOrder != 2 {
		t.Fatalf("expected step 2 scheduled, got %+v", sched.calls)
	}
	// Delay of step 2 is 48h from now.
	wantAt := time.Now().Add(48 * time.Hour)
	if diff := sched.calls[0].runAt.Sub(wantAt); diff < -time.Minute || diff > time.Minute {
		t.Fatalf("unexpected run time: %v", sched.calls[0].runAt)
	}
}

func TestHandleStepDueSendsEmailStep(t *testing.T) {
	store := &fakeStore{
		cadence: repository.Cadence{ID: testCadenceID, CompanyID: testCompanyID, IsActive: true},
		steps:   threeSteps(),
		enrollment: repository.Enrollment{
			ID:          testEnrollmentID,
			CadenceID:   testCadenceID,
			CompanyID:   testCompanyID,
			LeadID:      testLeadID,
			Status:      EnrollmentActive,
			CurrentStep: 1,
		},
	}
	email := &fakeEmail{}
	svc := newTestService(store, &fakeScheduler{}, email, &fakeActivity{})

	err := svc.HandleStepDue(context.Background(), scheduler.CadenceStepDueEvent{
		EnrollmentID: testEnrollmentID, CompanyID: testCompanyID, StepOrder: 2,
	})
	if err != nil {
		t.Fatalf("HandleStepDue: %v", err)
	}
	if len(email.sent) != 1 {
		t.Fatalf("expected 1 email, got %d", len(email.sent))
	}
	if email.sent[0].to != "dana@example.com" || email.sent[0].company != "Apex Pest Control" {
		t.Fatalf("unexpected email: %+v", email.sent[0])
	}
}

func TestHandleStepDueCompletesOnLastStep(t *testing.T) {
	store := &fakeStore{
		cadence: repository.Cadence{ID: testCadenceID, CompanyID: testCompanyID, IsActive: true},
		steps:   threeSteps(),
		enrollment: repository.Enrollment{
			ID:          testEnrollmentID,
			CadenceID:   testCadenceID,
			CompanyID:   testCompanyID,
			LeadID:      testLeadID,
			Status:      EnrollmentActive,
			CurrentStep: 2,
		},
	}
	sched := &fakeScheduler{}
	svc := newTestService(store, sched, &fakeEmail{}, &fakeActivity{})

	err := svc.HandleStepDue(context.Background(), scheduler.CadenceStepDueEvent{
		EnrollmentID: testEnrollmentID, CompanyID: testCompanyID, StepOrder: 3,
	})
	if err != nil {
		t.Fatalf("HandleStepDue: %v", err)
	}
	if store.completed != 1 {
		t.Fatalf("expected enrollment completion, got %d", store.completed)
	}
	if len(sched.calls) != 0 {
		t.Fatalf("expected no further scheduling, got %d", len(sched.calls))
	}
}

func TestHandleStepDueDropsStaleTask(t *testing.T) {
	store := &fakeStore{
		cadence: repository.Cadence{ID: testCadenceID, CompanyID: testCompanyID, IsActive: true},
		steps:   threeSteps(),
		enrollment: repository.Enrollment{
			ID:          testEnrollmentID,
			CadenceID:   testCadenceID,
			CompanyID:   testCompanyID,
			LeadID:      testLeadID,
			Status:      EnrollmentCancelled,
			CurrentStep: 1,
		},
	}
	sched := &fakeScheduler{}
	email := &fakeEmail{}
	svc := newTestService(store, sched, email, &fakeActivity{})

	err := svc.HandleStepDue(context.Background(), scheduler.CadenceStepDueEvent{
		EnrollmentID: testEnrollmentID, CompanyID: testCompanyID, StepOrder: 2,
	})
	if err != nil {
		t.Fatalf("HandleStepDue: %v", err)
	}
	if len(email.sent) != 0 || len(sched.calls) != 0 || len(store.advancedTo) != 0 {
		t.Fatal("stale task should be a no-op")
	}
}

func TestSubscribeEventsRoutesDueEvents(t *testing.T) {
	store := &fakeStore{
		cadence: repository.Cadence{ID: testCadenceID, CompanyID: testCompanyID, IsActive: true},
		steps:   threeSteps(),
		enrollment: repository.Enrollment{
			ID:        testEnrollmentID,
			CadenceID: testCadenceID,
			CompanyID: testCompanyID,
			LeadID:    testLeadID,
			Status:    EnrollmentActive,
		},
	}
	act := &fakeActivity{}
	svc := newTestService(store, &fakeScheduler{}, &fakeEmail{}, act)

	bus := events.NewInMemoryBus(logger.New("development"))
	svc.SubscribeEvents(bus)

	err := bus.PublishSync(context.Background(), scheduler.CadenceStepDueEvent{
		BaseEvent:    events.NewBaseEvent(),
		EnrollmentID: testEnrollmentID,
		CompanyID:    testCompanyID,
		StepOrder:    1,
	})
	if err != nil {
		t.Fatalf("PublishSync: %v", err)
	}
	if len(act.entries) != 1 {
		t.Fatalf("expected call step to run via bus, got %d entries", len(act.entries))
	}
}

// Package service holds the cadence business logic: template management,
// lead enrollment, and step execution driven by scheduled tasks.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/activity"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/cadences/repository"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/cadences/transport"
	companiesrepo "github.com/Dykstra-Hamel/DH-portal-sub004/internal/companies/repository"
	leadsrepo "github.com/Dykstra-Hamel/DH-portal-sub004/internal/leads/repository"
	quotessvc "github.com/Dykstra-Hamel/DH-portal-sub004/internal/quotes/service"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/scheduler"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/apperr"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/events"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/logger"

	"github.com/google/uuid"
)

// Step types.
const (
	StepCall  = "call"
	StepEmail = "email"
	StepWait  = "wait"
)

// Enrollment statuses.
const (
	EnrollmentActive    = "active"
	EnrollmentCompleted = "completed"
	EnrollmentCancelled = "cancelled"
)

// CadenceStore is the persistence port for cadences and enrollments.
type CadenceStore interface {
	CreateCadence(ctx context.Context, cadence repository.Cadence, steps []repository.Step) (repository.Cadence, []repository.Step, error)
	GetCadence(ctx context.Context, companyID, cadenceID uuid.UUID) (repository.Cadence, error)
	ListSteps(ctx context.Context, cadenceID uuid.UUID) ([]repository.Step, error)
	ListCadences(ctx context.Context, companyID uuid.UUID) ([]repository.Cadence, error)
	SetCadenceActive(ctx context.Context, companyID, cadenceID uuid.UUID, active bool) error
	DeleteCadence(ctx context.Context, companyID, cadenceID uuid.UUID) error
	CreateEnrollment(ctx context.Context, e repository.Enrollment) (repository.Enrollment, error)
	GetEnrollment(ctx context.Context, enrollmentID uuid.UUID) (repository.Enrollment, error)
	HasActiveEnrollment(ctx context.Context, cadenceID, leadID uuid.UUID) (bool, error)
	ListEnrollmentsByLead(ctx context.Context, companyID, leadID uuid.UUID) ([]repository.Enrollment, error)
	AdvanceEnrollment(ctx context.Context, enrollmentID uuid.UUID, currentStep int) error
	CompleteEnrollment(ctx context.Context, enrollmentID uuid.UUID) error
	CancelEnrollment(ctx context.Context, companyID, enrollmentID uuid.UUID) error
	CancelActiveEnrollmentsForLead(ctx context.Context, companyID, leadID uuid.UUID) (int64, error)
}

// LeadReader looks up the lead a step acts on.
type LeadReader interface {
	Get(ctx context.Context, companyID, leadID uuid.UUID) (leadsrepo.Lead, error)
}

// CompanyReader supplies the company name used in outbound email.
type CompanyReader interface {
	GetCompany(ctx context.Context, companyID uuid.UUID) (companiesrepo.Company, error)
}

// EmailSender sends cadence step emails.
type EmailSender interface {
	SendCadenceEmail(ctx context.Context, toEmail, customerName, companyName, bodyText string) error
}

// ActivityLogger records best-effort activity entries.
type ActivityLogger interface {
	Log(ctx context.Context, params activity.CreateParams)
}

// CadenceWithSteps pairs a cadence header with its ordered steps.
type CadenceWithSteps struct {
	Cadence repository.Cadence
	Steps   []repository.Step
}

// Service implements the cadence operations.
type Service struct {
	store     CadenceStore
	leads     LeadReader
	companies CompanyReader
	email     EmailSender
	steps     scheduler.StepScheduler
	activity  ActivityLogger
	log       *logger.Logger
}

// New creates a new cadences service
func New(store CadenceStore, leads LeadReader, companies CompanyReader, email EmailSender, steps scheduler.StepScheduler, act ActivityLogger, log *logger.Logger) *Service {
	return &Service{
		store:     store,
		leads:     leads,
		companies: companies,
		email:     email,
		steps:     steps,
		activity:  act,
		log:       log,
	}
}

// Create validates and persists a cadence template. Step orders must be
// contiguous starting at 1, and email steps need a body.
func (s *Service) Create(ctx context.Context, companyID uuid.UUID, req transport.CreateCadenceRequest) (CadenceWithSteps, error) {
	if err := validateSteps(req.Steps); err != nil {
		return CadenceWithSteps{}, err
	}

	steps := make([]repository.Step, 0, len(req.Steps))
	for _, st := range req.Steps {
		steps = append(steps, repository.Step{
			StepOrder:    st.StepOrder,
			StepType:     st.StepType,
			DelayHours:   st.DelayHours,
			EmailSubject: st.EmailSubject,
			EmailBody:    st.EmailBody,
			Note:         st.Note,
		})
	}

	cadence, created, err := s.store.CreateCadence(ctx, repository.Cadence{
		CompanyID:   companyID,
		Name:        req.Name,
		Description: req.Description,
		IsActive:    true,
	}, steps)
	if err != nil {
		return CadenceWithSteps{}, err
	}
	return CadenceWithSteps{Cadence: cadence, Steps: created}, nil
}

func validateSteps(steps []transport.CadenceStepRequest) error {
	if len(steps) == 0 {
		return apperr.Validation("cadence requires at least one step")
	}
	seen := make(map[int]bool, len(steps))
	for _, st := range steps {
		if seen[st.StepOrder] {
			return apperr.Validation(fmt.Sprintf("duplicate step order %d", st.StepOrder))
		}
		seen[st.StepOrder] = true
		if st.StepType == StepEmail && (st.EmailBody == nil || strings.TrimSpace(*st.EmailBody) == "") {
			return apperr.Validation(fmt.Sprintf("email step %d requires a body", st.StepOrder))
		}
	}
	for order := 1; order <= len(steps); order++ {
		if !seen[order] {
			return apperr.Validation(fmt.Sprintf("step orders must be contiguous, missing %d", order))
		}
	}
	return nil
}

// Get returns a cadence with its steps.
func (s *Service) Get(ctx context.Context, companyID, cadenceID uuid.UUID) (CadenceWithSteps, error) {
	cadence, err := s.store.GetCadence(ctx, companyID, cadenceID)
	if err != nil {
		return CadenceWithSteps{}, err
	}
	steps, err := s.store.ListSteps(ctx, cadence.ID)
	if err != nil {
		return CadenceWithSteps{}, err
	}
	return CadenceWithSteps{Cadence: cadence, Steps: steps}, nil
}

// List returns a company's cadences.
func (s *Service) List(ctx context.Context, companyID uuid.UUID) ([]repository.Cadence, error) {
	return s.store.ListCadences(ctx, companyID)
}

// SetActive toggles a cadence. Inactive cadences refuse new enrollments
// but running enrollments continue.
func (s *Service) SetActive(ctx context.Context, companyID, cadenceID uuid.UUID, active bool) error {
	return s.store.SetCadenceActive(ctx, companyID, cadenceID, active)
}

// Delete removes a cadence and everything under it.
func (s *Service) Delete(ctx context.Context, companyID, cadenceID uuid.UUID) error {
	return s.store.DeleteCadence(ctx, companyID, cadenceID)
}

// Enroll starts a lead on a cadence and schedules its first step.
func (s *Service) Enroll(ctx context.Context, companyID, cadenceID, leadID uuid.UUID) (repository.Enrollment, error) {
	cadence, err := s.store.GetCadence(ctx, companyID, cadenceID)
	if err != nil {
		return repository.Enrollment{}, err
	}
	if !cadence.IsActive {
		return repository.Enrollment{}, apperr.Validation("cadence is not active")
	}
	if _, err := s.leads.Get(ctx, companyID, leadID); err != nil {
		return repository.Enrollment{}, err
	}

	active, err := s.store.HasActiveEnrollment(ctx, cadenceID, leadID)
	if err != nil {
		return repository.Enrollment{}, err
	}
	if active {
		return repository.Enrollment{}, apperr.Conflict("lead is already enrolled in this cadence")
	}

	steps, err := s.store.ListSteps(ctx, cadenceID)
	if err != nil {
		return repository.Enrollment{}, err
	}
	if len(steps) == 0 {
		return repository.Enrollment{}, apperr.Validation("cadence has no steps")
	}

	enrollment, err := s.store.CreateEnrollment(ctx, repository.Enrollment{
		CadenceID:   cadenceID,
		CompanyID:   companyID,
		LeadID:      leadID,
		Status:      EnrollmentActive,
		CurrentStep: 0,
	})
	if err != nil {
		return repository.Enrollment{}, err
	}

	if err := s.scheduleStep(ctx, enrollment, steps[0]); err != nil {
		return repository.Enrollment{}, err
	}
	return enrollment, nil
}

func (s *Service) scheduleStep(ctx context.Context, enrollment repository.Enrollment, step repository.Step) error {
	runAt := time.Now().Add(time.Duration(step.DelayHours) * time.Hour)
	return s.steps.ScheduleCadenceStep(ctx, scheduler.CadenceStepPayload{
		EnrollmentID: enrollment.ID.String(),
		CompanyID:    enrollment.CompanyID.String(),
		StepOrder:    step.StepOrder,
	}, runAt)
}

// ListEnrollmentsByLead returns a lead's enrollment history.
func (s *Service) ListEnrollmentsByLead(ctx context.Context, companyID, leadID uuid.UUID) ([]repository.Enrollment, error) {
	return s.store.ListEnrollmentsByLead(ctx, companyID, leadID)
}

// Cancel stops an active enrollment.
func (s *Service) Cancel(ctx context.Context, companyID, enrollmentID uuid.UUID) error {
	return s.store.CancelEnrollment(ctx, companyID, enrollmentID)
}

// HandleStepDue executes a due cadence step and schedules the next one.
// Stale tasks, for enrollments that advanced or stopped since scheduling,
// are dropped without error.
func (s *Service) HandleStepDue(ctx context.Context, event scheduler.CadenceStepDueEvent) error {
	enrollment, err := s.store.GetEnrollment(ctx, event.EnrollmentID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil
		}
		return err
	}
	if enrollment.Status != EnrollmentActive || enrollment.CurrentStep+1 != event.StepOrder {
		return nil
	}

	steps, err := s.store.ListSteps(ctx, enrollment.CadenceID)
	if err != nil {
		return err
	}
	var current *repository.Step
	var next *repository.Step
	for i := range steps {
		switch steps[i].StepOrder {
		case event.StepOrder:
			current = &steps[i]
		case event.StepOrder + 1:
			next = &steps[i]
		}
	}
	if current == nil {
		s.log.Warn("cadence step no longer exists",
			"enrollment_id", enrollment.ID, "step_order", event.StepOrder)
		return s.store.CompleteEnrollment(ctx, enrollment.ID)
	}

	if err := s.executeStep(ctx, enrollment, *current); err != nil {
		return err
	}
	if err := s.store.AdvanceEnrollment(ctx, enrollment.ID, current.StepOrder); err != nil {
		return err
	}

	if next == nil {
		return s.store.CompleteEnrollment(ctx, enrollment.ID)
	}
	enrollment.CurrentStep = current.StepOrder
	return s.scheduleStep(ctx, enrollment, *next)
}

func (s *Service) executeStep(ctx context.Context, enrollment repository.Enrollment, step repository.Step) error {
	switch step.StepType {
	case StepWait:
		return nil
	case StepCall:
		// Call steps surface as a task in the lead's activity feed.
		note := "cadence call step due"
		if step.Note != nil && *step.Note != "" {
			note = *step.Note
		}
		s.activity.Log(ctx, activity.CreateParams{
			CompanyID:    enrollment.CompanyID,
			EntityType:   activity.EntityLead,
			EntityID:     enrollment.LeadID,
			ActivityType: activity.TypeNoteAdded,
			FieldName:    strPtr("cadence_call"),
			NewValue:     &note,
			Metadata: map[string]any{
				"enrollment_id": enrollment.ID.String(),
				"step_order":    step.StepOrder,
			},
		})
		return nil
	case StepEmail:
		lead, err := s.leads.Get(ctx, enrollment.CompanyID, enrollment.LeadID)
		if err != nil {
			return err
		}
		if lead.Email == "" {
			s.log.Warn("skipping cadence email, lead has no email address",
				"lead_id", lead.ID, "enrollment_id", enrollment.ID)
			return nil
		}
		company, err := s.companies.GetCompany(ctx, enrollment.CompanyID)
		if err != nil {
			return err
		}
		body := ""
		if step.EmailBody != nil {
			body = *step.EmailBody
		}
		return s.email.SendCadenceEmail(ctx, lead.Email, lead.FirstName, company.Name, body)
	default:
		s.log.Warn("unknown cadence step type", "step_type", step.StepType)
		return nil
	}
}

// CancelForLead stops all of a lead's active enrollments. Wired to the
// quote acceptance event so converted leads stop receiving outreach.
func (s *Service) CancelForLead(ctx context.Context, companyID, leadID uuid.UUID) error {
	cancelled, err := s.store.CancelActiveEnrollmentsForLead(ctx, companyID, leadID)
	if err != nil {
		return err
	}
	if cancelled > 0 {
		s.log.Info("cancelled cadence enrollments for converted lead",
			"lead_id", leadID, "count", cancelled)
	}
	return nil
}

// SubscribeEvents registers the service's bus subscriptions: due steps
// from the worker, plus quote acceptance for cancel-on-conversion.
func (s *Service) SubscribeEvents(bus events.Bus) {
	bus.Subscribe(scheduler.CadenceStepDueEventName, events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		due, ok := event.(scheduler.CadenceStepDueEvent)
		if !ok {
			return fmt.Errorf("unexpected event type %T", event)
		}
		return s.HandleStepDue(ctx, due)
	}))

	bus.Subscribe(quotessvc.QuoteAcceptedEventName, events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		accepted, ok := event.(quotessvc.QuoteAcceptedEvent)
		if !ok {
			return fmt.Errorf("unexpected event type %T", event)
		}
		if accepted.LeadID == nil {
			return nil
		}
		return s.CancelForLead(ctx, accepted.CompanyID, *accepted.LeadID)
	}))
}

func strPtr(s string) *string {
	return &s
}

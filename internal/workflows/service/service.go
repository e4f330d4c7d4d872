// Package service holds the workflow business logic: trigger handling,
// deterministic A/B variant assignment, and delayed send execution.
package service

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	companiesrepo "github.com/Dykstra-Hamel/DH-portal-sub004/internal/companies/repository"
	leadsrepo "github.com/Dykstra-Hamel/DH-portal-sub004/internal/leads/repository"
	leadssvc "github.com/Dykstra-Hamel/DH-portal-sub004/internal/leads/service"
	quotessvc "github.com/Dykstra-Hamel/DH-portal-sub004/internal/quotes/service"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/scheduler"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/workflows/repository"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/workflows/transport"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/apperr"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/events"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/logger"

	"github.com/google/uuid"
)

// Trigger events.
const (
	TriggerLeadCreated   = "lead_created"
	TriggerQuoteSent     = "quote_sent"
	TriggerQuoteAccepted = "quote_accepted"
)

// Send statuses.
const (
	SendPending   = "pending"
	SendSent      = "sent"
	SendCancelled = "cancelled"
	SendFailed    = "failed"
)

// WorkflowStore is the persistence port for workflows and the send log.
type WorkflowStore interface {
	CreateWorkflow(ctx context.Context, w repository.Workflow, variants []repository.Variant) (repository.Workflow, []repository.Variant, error)
	GetWorkflow(ctx context.Context, companyID, workflowID uuid.UUID) (repository.Workflow, error)
	ListWorkflows(ctx context.Context, companyID uuid.UUID) ([]repository.Workflow, error)
	ListActiveByTrigger(ctx context.Context, companyID uuid.UUID, trigger string) ([]repository.Workflow, error)
	CountByCompany(ctx context.Context, companyID uuid.UUID) (int, error)
	ListVariants(ctx context.Context, workflowID uuid.UUID) ([]repository.Variant, error)
	SetWorkflowActive(ctx context.Context, companyID, workflowID uuid.UUID, active bool) error
	DeleteWorkflow(ctx context.Context, companyID, workflowID uuid.UUID) error
	CreateSend(ctx context.Context, s repository.Send) (repository.Send, error)
	GetSend(ctx context.Context, sendID uuid.UUID) (repository.Send, error)
	ListSendsByWorkflow(ctx context.Context, companyID, workflowID uuid.UUID) ([]repository.Send, error)
	MarkSendSent(ctx context.Context, sendID uuid.UUID) error
	MarkSendFailed(ctx context.Context, sendID uuid.UUID, reason string) error
	CancelPendingSendsForLead(ctx context.Context, companyID, leadID uuid.UUID) (int64, error)
}

// LeadReader looks up the lead a workflow email addresses.
type LeadReader interface {
	Get(ctx context.Context, companyID, leadID uuid.UUID) (leadsrepo.Lead, error)
}

// CompanyReader supplies the company name used in templates.
type CompanyReader interface {
	GetCompany(ctx context.Context, companyID uuid.UUID) (companiesrepo.Company, error)
}

// EmailSender delivers rendered workflow emails.
type EmailSender interface {
	SendCustomEmail(ctx context.Context, toEmail, subject, htmlContent string) error
}

// WorkflowWithVariants pairs a workflow header with its variants.
type WorkflowWithVariants struct {
	Workflow repository.Workflow
	Variants []repository.Variant
}

// Service implements the workflow operations.
type Service struct {
	store     WorkflowStore
	leads     LeadReader
	companies CompanyReader
	email     EmailSender
	steps     scheduler.StepScheduler
	defaults  []DefaultWorkflow
	log       *logger.Logger
}

// New creates a new workflows service
func New(store WorkflowStore, leads LeadReader, companies CompanyReader, email EmailSender, steps scheduler.StepScheduler, defaults []DefaultWorkflow, log *logger.Logger) *Service {
	return &Service{
		store:     store,
		leads:     leads,
		companies: companies,
		email:     email,
		steps:     steps,
		defaults:  defaults,
		log:       log,
	}
}

// Create validates and persists a workflow with its variants. Variant
// splits must sum to 100.
func (s *Service) Create(ctx context.Context, companyID uuid.UUID, req transport.CreateWorkflowRequest) (WorkflowWithVariants, error) {
	if err := validateSplits(req.Variants); err != nil {
		return WorkflowWithVariants{}, err
	}

	variants := make([]repository.Variant, 0, len(req.Variants))
	for i, v := range req.Variants {
		variants = append(variants, repository.Variant{
			Position:     i + 1,
			Name:         v.Name,
			Subject:      v.Subject,
			Body:         v.Body,
			SplitPercent: v.SplitPercent,
		})
	}

	workflow, created, err := s.store.CreateWorkflow(ctx, repository.Workflow{
		CompanyID:    companyID,
		Name:         req.Name,
		TriggerEvent: req.TriggerEvent,
		DelayMinutes: req.DelayMinutes,
		IsActive:     true,
	}, variants)
	if err != nil {
		return WorkflowWithVariants{}, err
	}
	return WorkflowWithVariants{Workflow: workflow, Variants: created}, nil
}

func validateSplits(variants []transport.WorkflowVariantRequest) error {
	if len(variants) == 0 {
		return apperr.Validation("workflow requires at least one variant")
	}
	total := 0
	for _, v := range variants {
		total += v.SplitPercent
	}
	if total != 100 {
		return apperr.Validation(fmt.Sprintf("variant splits must sum to 100, got %d", total))
	}
	return nil
}

// Get returns a workflow with its variants.
func (s *Service) Get(ctx context.Context, companyID, workflowID uuid.UUID) (WorkflowWithVariants, error) {
	workflow, err := s.store.GetWorkflow(ctx, companyID, workflowID)
	if err != nil {
		return WorkflowWithVariants{}, err
	}
	variants, err := s.store.ListVariants(ctx, workflow.ID)
	if err != nil {
		return WorkflowWithVariants{}, err
	}
	return WorkflowWithVariants{Workflow: workflow, Variants: variants}, nil
}

// List returns a company's workflows.
func (s *Service) List(ctx context.Context, companyID uuid.UUID) ([]repository.Workflow, error) {
	return s.store.ListWorkflows(ctx, companyID)
}

// SetActive toggles a workflow. Pending sends are unaffected.
func (s *Service) SetActive(ctx context.Context, companyID, workflowID uuid.UUID, active bool) error {
	return s.store.SetWorkflowActive(ctx, companyID, workflowID, active)
}

// Delete removes a workflow and everything under it.
func (s *Service) Delete(ctx context.Context, companyID, workflowID uuid.UUID) error {
	return s.store.DeleteWorkflow(ctx, companyID, workflowID)
}

// ListSends returns a workflow's send log.
func (s *Service) ListSends(ctx context.Context, companyID, workflowID uuid.UUID) ([]repository.Send, error) {
	if _, err := s.store.GetWorkflow(ctx, companyID, workflowID); err != nil {
		return nil, err
	}
	return s.store.ListSendsByWorkflow(ctx, companyID, workflowID)
}

// SeedDefaults installs the default workflow pack for a company that has
// none yet. Companies with any workflow are left alone.
func (s *Service) SeedDefaults(ctx context.Context, companyID uuid.UUID) (int, error) {
	if len(s.defaults) == 0 {
		return 0, nil
	}
	count, err := s.store.CountByCompany(ctx, companyID)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, apperr.Conflict("company already has workflows")
	}

	created := 0
	for _, def := range s.defaults {
		variants := make([]repository.Variant, 0, len(def.Variants))
		for i, v := range def.Variants {
			variants = append(variants, repository.Variant{
				Position:     i + 1,
				Name:         v.Name,
				Subject:      v.Subject,
				Body:         v.Body,
				SplitPercent: v.SplitPercent,
			})
		}
		_, _, err := s.store.CreateWorkflow(ctx, repository.Workflow{
			CompanyID:    companyID,
			Name:         def.Name,
			TriggerEvent: def.Trigger,
			DelayMinutes: def.DelayMinutes,
			IsActive:     true,
		}, variants)
		if err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

// AssignVariant deterministically picks a variant for a lead. The same
// workflow and lead always land in the same bucket, so retried triggers
// never flip a lead between templates.
func AssignVariant(workflowID, leadID uuid.UUID, variants []repository.Variant) (repository.Variant, error) {
	if len(variants) == 0 {
		return repository.Variant{}, apperr.Validation("workflow has no variants")
	}

	h := fnv.New32a()
	h.Write([]byte(workflowID.String()))
	h.Write([]byte(":"))
	h.Write([]byte(leadID.String()))
	bucket := int(h.Sum32() % 100)

	cumulative := 0
	for _, v := range variants {
		cumulative += v.SplitPercent
		if bucket < cumulative {
			return v, nil
		}
	}
	// Splits short of 100 dump the tail bucket on the last variant.
	return variants[len(variants)-1], nil
}

// HandleTrigger queues a send for every active workflow listening on the
// trigger. Each send is logged as pending and scheduled through asynq.
func (s *Service) HandleTrigger(ctx context.Context, trigger string, companyID, leadID uuid.UUID) error {
	workflows, err := s.store.ListActiveByTrigger(ctx, companyID, trigger)
	if err != nil {
		return err
	}

	for _, wf := range workflows {
		variants, err := s.store.ListVariants(ctx, wf.ID)
		if err != nil {
			return err
		}
		variant, err := AssignVariant(wf.ID, leadID, variants)
		if err != nil {
			s.log.Warn("skipping workflow with no variants", "workflow_id", wf.ID)
			continue
		}

		scheduledFor := time.Now().Add(time.Duration(wf.DelayMinutes) * time.Minute)
		send, err := s.store.CreateSend(ctx, repository.Send{
			WorkflowID:   wf.ID,
			VariantID:    variant.ID,
			CompanyID:    companyID,
			LeadID:       leadID,
			Status:       SendPending,
			ScheduledFor: scheduledFor,
		})
		if err != nil {
			return err
		}

		err = s.steps.ScheduleWorkflowSend(ctx, scheduler.WorkflowSendPayload{
			SendID:     send.ID.String(),
			WorkflowID: wf.ID.String(),
			CompanyID:  companyID.String(),
			LeadID:     leadID.String(),
		}, scheduledFor)
		if err != nil {
			return err
		}
	}
	return nil
}

// HandleSendDue delivers a due workflow email. Sends cancelled or already
// delivered since scheduling are dropped without error.
func (s *Service) HandleSendDue(ctx context.Context, event scheduler.WorkflowSendDueEvent) error {
	send, err := s.store.GetSend(ctx, event.SendID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil
		}
		return err
	}
	if send.Status != SendPending {
		return nil
	}

	variants, err := s.store.ListVariants(ctx, send.WorkflowID)
	if err != nil {
		return err
	}
	var variant *repository.Variant
	for i := range variants {
		if variants[i].ID == send.VariantID {
			variant = &variants[i]
			break
		}
	}
	if variant == nil {
		return s.store.MarkSendFailed(ctx, send.ID, "variant no longer exists")
	}

	lead, err := s.leads.Get(ctx, send.CompanyID, send.LeadID)
	if err != nil {
		return s.store.MarkSendFailed(ctx, send.ID, "lead no longer exists")
	}
	if lead.Email == "" {
		return s.store.MarkSendFailed(ctx, send.ID, "lead has no email address")
	}
	company, err := s.companies.GetCompany(ctx, send.CompanyID)
	if err != nil {
		return err
	}

	subject := renderTemplate(variant.Subject, lead, company.Name)
	body := renderTemplate(variant.Body, lead, company.Name)
	if err := s.email.SendCustomEmail(ctx, lead.Email, subject, body); err != nil {
		if markErr := s.store.MarkSendFailed(ctx, send.ID, err.Error()); markErr != nil {
			s.log.Error("failed to record send failure", "send_id", send.ID, "error", markErr)
		}
		return err
	}
	return s.store.MarkSendSent(ctx, send.ID)
}

func renderTemplate(tmpl string, lead leadsrepo.Lead, companyName string) string {
	return strings.NewReplacer(
		"{{first_name}}", lead.FirstName,
		"{{last_name}}", lead.LastName,
		"{{company_name}}", companyName,
	).Replace(tmpl)
}

// CancelForLead drops a converted lead's queued emails.
func (s *Service) CancelForLead(ctx context.Context, companyID, leadID uuid.UUID) error {
	cancelled, err := s.store.CancelPendingSendsForLead(ctx, companyID, leadID)
	if err != nil {
		return err
	}
	if cancelled > 0 {
		s.log.Info("cancelled pending workflow sends for converted lead",
			"lead_id", leadID, "count", cancelled)
	}
	return nil
}

// SubscribeEvents registers the service's bus subscriptions: lifecycle
// triggers plus the due events coming back from the worker.
func (s *Service) SubscribeEvents(bus events.Bus) {
	bus.Subscribe(leadssvc.LeadCreatedEventName, events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		created, ok := event.(leadssvc.LeadCreatedEvent)
		if !ok {
			return fmt.Errorf("unexpected event type %T", event)
		}
		return s.HandleTrigger(ctx, TriggerLeadCreated, created.CompanyID, created.LeadID)
	}))

	bus.Subscribe(quotessvc.QuoteSentEventName, events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		sent, ok := event.(quotessvc.QuoteSentEvent)
		if !ok {
			return fmt.Errorf("unexpected event type %T", event)
		}
		if sent.LeadID == nil {
			return nil
		}
		return s.HandleTrigger(ctx, TriggerQuoteSent, sent.CompanyID, *sent.LeadID)
	}))

	bus.Subscribe(quotessvc.QuoteAcceptedEventName, events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		accepted, ok := event.(quotessvc.QuoteAcceptedEvent)
		if !ok {
			return fmt.Errorf("unexpected event type %T", event)
		}
		if accepted.LeadID == nil {
			return nil
		}
		// Conversion stops queued automation before the post-acceptance
		// workflows fire.
		if err := s.CancelForLead(ctx, accepted.CompanyID, *accepted.LeadID); err != nil {
			return err
		}
		return s.HandleTrigger(ctx, TriggerQuoteAccepted, accepted.CompanyID, *accepted.LeadID)
	}))

	bus.Subscribe(scheduler.WorkflowSendDueEventName, events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		due, ok := event.(scheduler.WorkflowSendDueEvent)
		if !ok {
			return fmt.Errorf("unexpected event type %T", event)
		}
		return s.HandleSendDue(ctx, due)
	}))
}

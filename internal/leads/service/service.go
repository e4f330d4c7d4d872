// Package service contains the lead lifecycle logic.
package service

import (
	"context"

	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/activity"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/leads/repository"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/leads/transport"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/apperr"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/events"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/logger"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/phone"

	"github.com/google/uuid"
)

// Lead statuses. A lead walks new -> contacted -> quoted -> won|lost; won
// and lost are terminal.
const (
	StatusNew       = "new"
	StatusContacted = "contacted"
	StatusQuoted    = "quoted"
	StatusWon       = "won"
	StatusLost      = "lost"
)

// validTransitions maps each status to the statuses reachable from it.
var validTransitions = map[string][]string{
	StatusNew:       {StatusContacted, StatusQuoted, StatusLost},
	StatusContacted: {StatusQuoted, StatusWon, StatusLost},
	StatusQuoted:    {StatusWon, StatusLost},
	StatusWon:       {},
	StatusLost:      {},
}

// ActivityLogger records best-effort activity entries.
type ActivityLogger interface {
	Log(ctx context.Context, params activity.CreateParams)
}

// Service implements the lead operations.
type Service struct {
	repo     *repository.Repository
	activity ActivityLogger
	log      *logger.Logger
	eventBus events.Bus
}

// New creates a new leads service
func New(repo *repository.Repository, act ActivityLogger, log *logger.Logger) *Service {
	return &Service{repo: repo, activity: act, log: log}
}

// SetEventBus enables domain event publication.
func (s *Service) SetEventBus(bus events.Bus) {
	s.eventBus = bus
}

// Create records a new lead. Phone numbers are normalized to E.164 when
// they parse; unparseable input is stored as given.
func (s *Service) Create(ctx context.Context, companyID uuid.UUID, userID *uuid.UUID, req transport.CreateLeadRequest) (repository.Lead, error) {
	lead := repository.Lead{
		CompanyID:   companyID,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Phone:       phone.NormalizeE164(req.Phone),
		Source:      req.Source,
		LeadStatus:  StatusNew,
		PrimaryPest: req.PrimaryPest,
		Street:      req.Street,
		City:        req.City,
		State:       req.State,
		PostalCode:  req.PostalCode,
		Notes:       req.Notes,
	}

	created, err := s.repo.Create(ctx, lead)
	if err != nil {
		return repository.Lead{}, err
	}

	s.activity.Log(ctx, activity.CreateParams{
		CompanyID:    companyID,
		EntityType:   activity.EntityLead,
		EntityID:     created.ID,
		ActivityType: activity.TypeStatusChange,
		NewValue:     strPtr(StatusNew),
		UserID:       userID,
		Metadata:     map[string]any{"source": created.Source},
	})

	if s.eventBus != nil {
		s.eventBus.Publish(ctx, NewLeadCreatedEvent(created))
	}

	return created, nil
}

// Get returns a lead.
func (s *Service) Get(ctx context.Context, companyID, leadID uuid.UUID) (repository.Lead, error) {
	return s.repo.GetByID(ctx, companyID, leadID)
}

// List returns a paginated set of leads.
func (s *Service) List(ctx context.Context, params repository.ListParams) (repository.ListResult, error) {
	return s.repo.List(ctx, params)
}

// Update patches a lead. Status changes are validated against the lifecycle
// and logged as activity.
func (s *Service) Update(ctx context.Context, companyID, leadID uuid.UUID, userID *uuid.UUID, req transport.UpdateLeadRequest) (repository.Lead, error) {
	existing, err := s.repo.GetByID(ctx, companyID, leadID)
	if err != nil {
		return repository.Lead{}, err
	}

	if req.LeadStatus != nil && *req.LeadStatus != existing.LeadStatus {
		if !canTransition(existing.LeadStatus, *req.LeadStatus) {
			return repository.Lead{}, apperr.Validation(
				"invalid status transition from " + existing.LeadStatus + " to " + *req.LeadStatus)
		}
	}

	params := repository.UpdateParams{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Source:      req.Source,
		LeadStatus:  req.LeadStatus,
		PrimaryPest: req.PrimaryPest,
		Street:      req.Street,
		City:        req.City,
		State:       req.State,
		PostalCode:  req.PostalCode,
		Notes:       req.Notes,
		AssignedTo:  req.AssignedTo,
	}
	if req.Phone != nil {
		normalized := phone.NormalizeE164(*req.Phone)
		params.Phone = &normalized
	}

	updated, err := s.repo.Update(ctx, companyID, leadID, params)
	if err != nil {
		return repository.Lead{}, err
	}

	if req.LeadStatus != nil && *req.LeadStatus != existing.LeadStatus {
		s.activity.Log(ctx, activity.CreateParams{
			CompanyID:    companyID,
			EntityType:   activity.EntityLead,
			EntityID:     leadID,
			ActivityType: activity.TypeStatusChange,
			FieldName:    strPtr("lead_status"),
			OldValue:     strPtr(existing.LeadStatus),
			NewValue:     req.LeadStatus,
			UserID:       userID,
		})
	}

	return updated, nil
}

// Delete removes a lead.
func (s *Service) Delete(ctx context.Context, companyID, leadID uuid.UUID) error {
	return s.repo.Delete(ctx, companyID, leadID)
}

func canTransition(from, to string) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func strPtr(s string) *string { return &s }

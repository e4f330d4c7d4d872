// Package service contains the call record logic.
package service

import (
	"context"
	"time"

	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/activity"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/calls/repository"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/calls/transport"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/logger"

	"github.com/google/uuid"
)

// Call directions and dispositions accepted by the API.
const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

// ActivityLogger records best-effort activity entries.
type ActivityLogger interface {
	Log(ctx context.Context, params activity.CreateParams)
}

// Service implements the call record operations.
type Service struct {
	repo     *repository.Repository
	activity ActivityLogger
	log      *logger.Logger
}

// New creates a new calls service
func New(repo *repository.Repository, act ActivityLogger, log *logger.Logger) *Service {
	return &Service{repo: repo, activity: act, log: log}
}

// Create logs a call against a lead and surfaces it on the activity feed.
func (s *Service) Create(ctx context.Context, companyID uuid.UUID, userID *uuid.UUID, req transport.CreateCallRequest) (repository.Call, error) {
	calledAt := time.Now()
	if req.CalledAt != nil {
		calledAt = *req.CalledAt
	}

	call := repository.Call{
		CompanyID:       companyID,
		LeadID:          req.LeadID,
		UserID:          userID,
		Direction:       req.Direction,
		DurationSeconds: req.DurationSeconds,
		Disposition:     req.Disposition,
		Notes:           req.Notes,
		CalledAt:        calledAt,
	}

	created, err := s.repo.Create(ctx, call)
	if err != nil {
		return repository.Call{}, err
	}

	disposition := created.Disposition
	s.activity.Log(ctx, activity.CreateParams{
		CompanyID:    companyID,
		EntityType:   activity.EntityLead,
		EntityID:     created.LeadID,
		ActivityType: activity.TypeNoteAdded,
		FieldName:    strPtr("call"),
		NewValue:     &disposition,
		UserID:       userID,
		Metadata: map[string]any{
			"call_id":          created.ID.String(),
			"direction":        created.Direction,
			"duration_seconds": created.DurationSeconds,
		},
	})

	return created, nil
}

// Get returns a call record.
func (s *Service) Get(ctx context.Context, companyID, callID uuid.UUID) (repository.Call, error) {
	return s.repo.GetByID(ctx, companyID, callID)
}

// ListByLead returns a lead's call history.
func (s *Service) ListByLead(ctx context.Context, companyID, leadID uuid.UUID) ([]repository.Call, error) {
	return s.repo.ListByLead(ctx, companyID, leadID)
}

// Update patches a call record.
func (s *Service) Update(ctx context.Context, companyID, callID uuid.UUID, req transport.UpdateCallRequest) (repository.Call, error) {
	return s.repo.Update(ctx, companyID, callID, repository.UpdateParams{
		Direction:       req.Direction,
		DurationSeconds: req.DurationSeconds,
		Disposition:     req.Disposition,
		Notes:           req.Notes,
		CalledAt:        req.CalledAt,
	})
}

// Delete removes a call record.
func (s *Service) Delete(ctx context.Context, companyID, callID uuid.UUID) error {
	return s.repo.Delete(ctx, companyID, callID)
}

func strPtr(s string) *string { return &s }

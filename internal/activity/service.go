package activity

import (
	"context"

	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/logger"
	"github.com/google/uuid"
)

// Entity and activity type constants used across modules.
const (
	EntityQuote = "quote"
	EntityLead  = "lead"

	TypeFieldUpdate   = "field_update"
	TypeStatusChange  = "status_change"
	TypeNoteAdded     = "note_added"
	TypeQuoteAccepted = "quote_accepted"
)

type Service struct {
	repo *Repository
	log  *logger.Logger
}

func NewService(repo *Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Log writes an activity entry, swallowing any failure. Callers treat
// activity logging as fire-and-forget; a lost entry is logged, never
// propagated.
func (s *Service) Log(ctx context.Context, params CreateParams) {
	// The business operation may complete (and its context cancel) before
	// this write lands.
	ctx = context.WithoutCancel(ctx)
	if _, err := s.repo.Create(ctx, params); err != nil {
		s.log.Error("activity log write failed",
			"company_id", params.CompanyID,
			"entity_type", params.EntityType,
			"entity_id", params.EntityID,
			"activity_type", params.ActivityType,
			"error", err,
		)
	}
}

// ListByEntity returns an entity's recent activity.
func (s *Service) ListByEntity(ctx context.Context, companyID uuid.UUID, entityType string, entityID uuid.UUID, limit int) ([]Entry, error) {
	return s.repo.ListByEntity(ctx, companyID, entityType, entityID, limit)
}

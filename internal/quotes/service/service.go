// Package service holds the quotes business logic, including the quote
// mutation orchestrator that drives pricing.
package service

import (
	"context"
	"time"

	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/activity"
	catalogsvc "github.com/Dykstra-Hamel/DH-portal-sub004/internal/catalog/service"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/pricing"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/quotes/repository"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/quotes/transport"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/storage"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/apperr"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/events"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/logger"

	"github.com/google/uuid"
)

// QuoteStore is the persistence port consumed by the orchestrator.
type QuoteStore interface {
	GetByID(ctx context.Context, companyID, quoteID uuid.UUID) (repository.Quote, error)
	GetByPublicToken(ctx context.Context, token string) (repository.Quote, error)
	ListLineItems(ctx context.Context, companyID, quoteID uuid.UUID) ([]repository.LineItem, error)
	List(ctx context.Context, params repository.ListParams) (repository.ListResult, error)
	Delete(ctx context.Context, companyID, quoteID uuid.UUID) error
	SaveQuoteUpdate(ctx context.Context, companyID, quoteID uuid.UUID, patch repository.FieldPatch, writes []repository.LineItemWrite) error
	SyncServiceAddress(ctx context.Context, companyID, quoteID uuid.UUID, home, yard, linearFeet *string) error
	MarkAccepted(ctx context.Context, quoteID uuid.UUID, signatureData string, deviceData map[string]any) (repository.Quote, error)
	MarkSent(ctx context.Context, companyID, quoteID uuid.UUID, token string) (repository.Quote, error)
}

// CatalogReader batch-loads the catalog records a pricing run references.
type CatalogReader interface {
	FetchReferences(ctx context.Context, companyID uuid.UUID, ids catalogsvc.ReferenceIDs) (catalogsvc.References, error)
}

// SettingsReader supplies the company's size-bracket configuration.
type SettingsReader interface {
	GetPricingSettings(ctx context.Context, companyID uuid.UUID) (pricing.Settings, error)
}

// ActivityLogger records best-effort activity entries.
type ActivityLogger interface {
	Log(ctx context.Context, params activity.CreateParams)
}

// QuoteWithItems pairs a quote header with its line items.
type QuoteWithItems struct {
	Quote repository.Quote
	Items []repository.LineItem
}

// Service implements the quotes operations.
type Service struct {
	store    QuoteStore
	catalog  CatalogReader
	settings SettingsReader
	activity ActivityLogger
	log      *logger.Logger
	eventBus events.Bus

	attachments      AttachmentStore
	objects          storage.Service
	attachmentBucket string
}

// New creates a new quotes service
func New(store QuoteStore, catalog CatalogReader, settings SettingsReader, act ActivityLogger, log *logger.Logger) *Service {
	return &Service{
		store:    store,
		catalog:  catalog,
		settings: settings,
		activity: act,
		log:      log,
	}
}

// SetEventBus enables domain event publication.
func (s *Service) SetEventBus(bus events.Bus) {
	s.eventBus = bus
}

// Get returns a quote with its line items.
func (s *Service) Get(ctx context.Context, companyID, quoteID uuid.UUID) (QuoteWithItems, error) {
	quote, err := s.store.GetByID(ctx, companyID, quoteID)
	if err != nil {
		return QuoteWithItems{}, err
	}
	items, err := s.store.ListLineItems(ctx, companyID, quoteID)
	if err != nil {
		return QuoteWithItems{}, err
	}
	return QuoteWithItems{Quote: quote, Items: items}, nil
}

// List returns a paginated set of quotes.
func (s *Service) List(ctx context.Context, params repository.ListParams) (repository.ListResult, error) {
	return s.store.List(ctx, params)
}

// Delete removes a quote and its line items.
func (s *Service) Delete(ctx context.Context, companyID, quoteID uuid.UUID) error {
	return s.store.Delete(ctx, companyID, quoteID)
}

// GetByPublicToken returns a quote for the unauthenticated acceptance page.
// Expired quotes are surfaced as gone rather than served.
func (s *Service) GetByPublicToken(ctx context.Context, token string) (QuoteWithItems, error) {
	quote, err := s.store.GetByPublicToken(ctx, token)
	if err != nil {
		return QuoteWithItems{}, err
	}
	if quote.ValidUntil != nil && quote.ValidUntil.Before(time.Now()) {
		return QuoteWithItems{}, apperr.New(apperr.KindGone, "quote has expired")
	}
	items, err := s.store.ListLineItems(ctx, quote.CompanyID, quote.ID)
	if err != nil {
		return QuoteWithItems{}, err
	}
	return QuoteWithItems{Quote: quote, Items: items}, nil
}

// Accept records a customer's e-signature on a publicly served quote.
func (s *Service) Accept(ctx context.Context, token string, req transport.AcceptQuoteRequest) (QuoteWithItems, error) {
	quote, err := s.store.GetByPublicToken(ctx, token)
	if err != nil {
		return QuoteWithItems{}, err
	}
	if quote.SignedAt != nil {
		return QuoteWithItems{}, apperr.New(apperr.KindConflict, "quote already accepted")
	}
	if quote.ValidUntil != nil && quote.ValidUntil.Before(time.Now()) {
		return QuoteWithItems{}, apperr.New(apperr.KindGone, "quote has expired")
	}

	accepted, err := s.store.MarkAccepted(ctx, quote.ID, req.SignatureData, req.DeviceData)
	if err != nil {
		return QuoteWithItems{}, err
	}

	oldStatus := quote.QuoteStatus
	newStatus := accepted.QuoteStatus
	s.activity.Log(ctx, activity.CreateParams{
		CompanyID:    accepted.CompanyID,
		EntityType:   activity.EntityQuote,
		EntityID:     accepted.ID,
		ActivityType: activity.TypeQuoteAccepted,
		OldValue:     &oldStatus,
		NewValue:     &newStatus,
		Metadata:     map[string]any{"quote_id": accepted.ID.String()},
	})

	if s.eventBus != nil {
		s.eventBus.Publish(ctx, NewQuoteAcceptedEvent(accepted))
	}

	items, err := s.store.ListLineItems(ctx, accepted.CompanyID, accepted.ID)
	if err != nil {
		return QuoteWithItems{}, err
	}
	return QuoteWithItems{Quote: accepted, Items: items}, nil
}

// Send marks a quote as sent to the customer, issuing the public token
// its acceptance page is served under. Accepted quotes cannot be re-sent.
func (s *Service) Send(ctx context.Context, companyID, quoteID uuid.UUID, userID *uuid.UUID) (QuoteWithItems, error) {
	quote, err := s.store.GetByID(ctx, companyID, quoteID)
	if err != nil {
		return QuoteWithItems{}, err
	}
	if quote.SignedAt != nil {
		return QuoteWithItems{}, apperr.New(apperr.KindConflict, "quote already accepted")
	}

	sent, err := s.store.MarkSent(ctx, companyID, quoteID, uuid.NewString())
	if err != nil {
		return QuoteWithItems{}, err
	}

	oldStatus := quote.QuoteStatus
	newStatus := sent.QuoteStatus
	fieldName := "quote_status"
	s.activity.Log(ctx, activity.CreateParams{
		CompanyID:    companyID,
		EntityType:   activity.EntityQuote,
		EntityID:     sent.ID,
		ActivityType: activity.TypeStatusChange,
		FieldName:    &fieldName,
		OldValue:     &oldStatus,
		NewValue:     &newStatus,
		UserID:       userID,
		Metadata:     map[string]any{"quote_id": sent.ID.String()},
	})

	if s.eventBus != nil {
		s.eventBus.Publish(ctx, NewQuoteSentEvent(sent))
	}

	items, err := s.store.ListLineItems(ctx, companyID, sent.ID)
	if err != nil {
		return QuoteWithItems{}, err
	}
	return QuoteWithItems{Quote: sent, Items: items}, nil
}

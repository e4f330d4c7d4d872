// Package quotes provides the quote domain module: quote lifecycle, the
// pricing orchestrator behind quote mutations, and the public token-based
// acceptance flow.
package quotes

import (
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/activity"
	apphttp "github.com/Dykstra-Hamel/DH-portal-sub004/internal/http"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/quotes/handler"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/quotes/repository"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/quotes/service"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/storage"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/logger"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the quotes domain module
type Module struct {
	handler       *handler.Handler
	service       *service.Service
	repo          *repository.Repository
	attachmentsOn bool
}

// NewModule creates a new quotes module. The catalog and settings readers
// come from their owning modules; quote pricing depends on both.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger, catalog service.CatalogReader, settings service.SettingsReader, act *activity.Service) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, catalog, settings, act, log)
	h := handler.New(svc, act, val)

	return &Module{handler: h, service: svc, repo: repo}
}

// EnableAttachments wires object storage into the quote attachment
// endpoints. Skipped when MinIO is disabled in config.
func (m *Module) EnableAttachments(objects storage.Service, bucket string) {
	m.service.ConfigureAttachments(m.repo, objects, bucket)
	m.attachmentsOn = true
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "quotes"
}

// Service returns the service layer for external use
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes registers the module's routes
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	quotes := ctx.Protected.Group("/quotes")
	m.handler.RegisterRoutes(quotes)
	if m.attachmentsOn {
		m.handler.RegisterAttachmentRoutes(quotes)
	}

	public := ctx.V1.Group("/public")
	public.Use(ctx.PublicRateLimiter.RateLimit())
	m.handler.RegisterPublicRoutes(public)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)

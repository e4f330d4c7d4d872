// Package workflows provides the email automation module: triggered
// workflows, A/B template variants, and the delayed send pipeline.
package workflows

import (
	apphttp "github.com/Dykstra-Hamel/DH-portal-sub004/internal/http"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/scheduler"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/workflows/handler"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/workflows/repository"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/workflows/service"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/config"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/events"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/logger"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the workflows domain module
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates a new workflows module. The default workflow pack is
// loaded from the path in config; a missing path disables seeding.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger, cfg config.WorkflowConfig, leads service.LeadReader, companies service.CompanyReader, email service.EmailSender, steps scheduler.StepScheduler) (*Module, error) {
	defaults, err := service.LoadDefaults(cfg.GetWorkflowDefaultsPath())
	if err != nil {
		return nil, err
	}

	repo := repository.New(pool)
	svc := service.New(repo, leads, companies, email, steps, defaults, log)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc}, nil
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "workflows"
}

// Service returns the service layer for external use
func (m *Module) Service() *service.Service {
	return m.service
}

// SubscribeEvents registers the module's bus subscriptions.
func (m *Module) SubscribeEvents(bus events.Bus) {
	m.service.SubscribeEvents(bus)
}

// RegisterRoutes registers the module's routes
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/workflows"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)

// Package cadences provides the sales cadence module: reusable outreach
// sequences, lead enrollment, and scheduled step execution.
package cadences

import (
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/activity"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/cadences/handler"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/cadences/repository"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/cadences/service"
	apphttp "github.com/Dykstra-Hamel/DH-portal-sub004/internal/http"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/scheduler"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/events"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/logger"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the cadences domain module
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates a new cadences module. Lead and company readers come
// from their owning modules; step scheduling goes through asynq.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger, leads service.LeadReader, companies service.CompanyReader, email service.EmailSender, steps scheduler.StepScheduler, act *activity.Service) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, leads, companies, email, steps, act, log)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "cadences"
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
	m.handler.RegisterRoutes(ctx.Protected.Group("/cadences"))
	m.handler.RegisterLeadRoutes(ctx.Protected.Group("/leads"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)

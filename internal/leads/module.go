// Package leads provides the lead intake domain module: capture, lifecycle
// transitions, and the activity trail behind the sales pipeline.
package leads

import (
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/activity"
	apphttp "github.com/Dykstra-Hamel/DH-portal-sub004/internal/http"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/leads/handler"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/leads/repository"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/leads/service"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/logger"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the leads domain module
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates a new leads module with all dependencies wired
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger, act *activity.Service) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, act, log)
	h := handler.New(svc, act, val)

	return &Module{handler: h, service: svc}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "leads"
}

// Service returns the service layer for external use
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes registers the module's routes
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/leads"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)

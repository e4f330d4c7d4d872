// Package calls provides the call record domain module.
package calls

import (
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/activity"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/calls/handler"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/calls/repository"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/calls/service"
	apphttp "github.com/Dykstra-Hamel/DH-portal-sub004/internal/http"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/logger"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the calls domain module
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates a new calls module with all dependencies wired
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger, act *activity.Service) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, act, log)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "calls"
}

// RegisterRoutes registers the module's routes
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/calls"))
	m.handler.RegisterLeadRoutes(ctx.Protected.Group("/leads"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)

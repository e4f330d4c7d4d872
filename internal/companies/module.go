// Package companies provides the tenant company domain module: company
// profiles and the pricing-settings configuration used by quote pricing.
package companies

import (
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/companies/handler"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/companies/repository"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/companies/service"
	apphttp "github.com/Dykstra-Hamel/DH-portal-sub004/internal/http"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the companies domain module
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates a new companies module with all dependencies wired
func NewModule(pool *pgxpool.Pool, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "companies"
}

// Service returns the service layer for external use
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes registers the module's routes
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/companies"))
	m.handler.RegisterAdminRoutes(ctx.Admin)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)

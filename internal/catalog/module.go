// Package catalog provides the pricing catalog domain module: service plans,
// bundle plans, add-on services, and named discounts.
package catalog

import (
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/catalog/handler"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/catalog/repository"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/catalog/service"
	apphttp "github.com/Dykstra-Hamel/DH-portal-sub004/internal/http"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the catalog domain module
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates a new catalog module with all dependencies wired
func NewModule(pool *pgxpool.Pool, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "catalog"
}

// Service returns the service layer for external use
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes registers the module's routes
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/catalog"))
	m.handler.RegisterAdminRoutes(ctx.Admin)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)

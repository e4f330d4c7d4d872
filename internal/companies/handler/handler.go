package handler

import (
	"net/http"

	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/companies/service"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/companies/transport"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/pricing"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/httpkit"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for companies
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new companies handler
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the company routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", h.GetCompany)
	rg.GET("/me/pricing-settings", h.GetPricingSettings)
}

// RegisterAdminRoutes registers routes restricted to company admins
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.PUT("/companies/pricing-settings", h.UpdatePricingSettings)
}

func (h *Handler) GetCompany(c *gin.Context) {
	companyID, ok := httpkit.MustGetCompanyID(c)
	if !ok {
		return
	}

	company, err := h.svc.GetCompany(c.Request.Context(), companyID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Success(c, transport.CompanyResponse{
		ID:        company.ID,
		Name:      company.Name,
		Website:   company.Website,
		Phone:     company.Phone,
		Email:     company.Email,
		CreatedAt: company.CreatedAt,
		UpdatedAt: company.UpdatedAt,
	})
}

func (h *Handler) GetPricingSettings(c *gin.Context) {
	companyID, ok := httpkit.MustGetCompanyID(c)
	if !ok {
		return
	}

	settings, err := h.svc.GetPricingSettings(c.Request.Context(), companyID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Success(c, toSettingsResponse(settings))
}

func (h *Handler) UpdatePricingSettings(c *gin.Context) {
	companyID, ok := httpkit.MustGetCompanyID(c)
	if !ok {
		return
	}

	var req transport.UpdatePricingSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	settings, err := h.svc.UpdatePricingSettings(c.Request.Context(), companyID, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.SuccessMessage(c, toSettingsResponse(settings), "pricing settings updated")
}

func toSettingsResponse(s pricing.Settings) transport.PricingSettingsResponse {
	return transport.PricingSettingsResponse{
		BaseHomeSqFt:       s.BaseHomeSqFt,
		HomeSqFtInterval:   s.HomeSqFtInterval,
		MaxHomeSqFt:        s.MaxHomeSqFt,
		BaseYardAcres:      s.BaseYardAcres,
		YardAcresInterval:  s.YardAcresInterval,
		MaxYardAcres:       s.MaxYardAcres,
		BaseLinearFeet:     s.BaseLinearFeet,
		LinearFeetInterval: s.LinearFeetInterval,
		MaxLinearFeet:      s.MaxLinearFeet,
	}
}

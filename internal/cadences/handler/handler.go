// Package handler exposes the cadences HTTP API.
package handler

import (
	"net/http"

	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/cadences/repository"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/cadences/service"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/cadences/transport"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/httpkit"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles cadence HTTP requests
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new cadences handler
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the cadence routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.PATCH("/:id", h.SetActive)
	rg.DELETE("/:id", h.Delete)
	rg.POST("/:id/enrollments", h.Enroll)
}

// RegisterLeadRoutes adds the lead-scoped enrollment routes.
func (h *Handler) RegisterLeadRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id/enrollments", h.ListByLead)
	rg.DELETE("/:id/enrollments/:enrollmentID", h.CancelEnrollment)
}

func (h *Handler) Create(c *gin.Context) {
	companyID, ok := httpkit.MustGetCompanyID(c)
	if !ok {
		return
	}

	var req transport.CreateCadenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	created, err := h.svc.Create(c.Request.Context(), companyID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	c.JSON(http.StatusCreated, httpkit.SuccessResponse{Success: true, Data: toCadenceResponse(created)})
}

func (h *Handler) List(c *gin.Context) {
	companyID, ok := httpkit.MustGetCompanyID(c)
	if !ok {
		return
	}

	items, err := h.svc.List(c.Request.Context(), companyID)
	if httpkit.HandleError(c, err) {
		return
	}

	out := make([]transport.CadenceResponse, 0, len(items))
	for _, cad := range items {
		out = append(out, toCadenceResponse(service.CadenceWithSteps{Cadence: cad}))
	}
	httpkit.Success(c, out)
}

func (h *Handler) Get(c *gin.Context) {
	companyID, ok := httpkit.MustGetCompanyID(c)
	if !ok {
		return
	}
	cadenceID, ok := pathID(c)
	if !ok {
		return
	}

	cadence, err := h.svc.Get(c.Request.Context(), companyID, cadenceID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Success(c, toCadenceResponse(cadence))
}

func (h *Handler) SetActive(c *gin.Context) {
	companyID, ok := httpkit.MustGetCompanyID(c)
	if !ok {
		return
	}
	cadenceID, ok := pathID(c)
	if !ok {
		return
	}

	var req transport.SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	if err := h.svc.SetActive(c.Request.Context(), companyID, cadenceID, *req.IsActive); httpkit.HandleError(c, err) {
		return
	}
	httpkit.SuccessMessage(c, nil, "cadence updated")
}

func (h *Handler) Delete(c *gin.Context) {
	companyID, ok := httpkit.MustGetCompanyID(c)
	if !ok {
		return
	}
	cadenceID, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), companyID, cadenceID); httpkit.HandleError(c, err) {
		return
	}
	httpkit.SuccessMessage(c, nil, "cadence deleted")
}

func (h *Handler) Enroll(c *gin.Context) {
	companyID, ok := httpkit.MustGetCompanyID(c)
	if !ok {
		return
	}
	cadenceID, ok := pathID(c)
	if !ok {
		return
	}

	var req transport.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	enrollment, err := h.svc.Enroll(c.Request.Context(), companyID, cadenceID, req.LeadID)
	if httpkit.HandleError(c, err) {
		return
	}
	c.JSON(http.StatusCreated, httpkit.SuccessResponse{Success: true, Data: toEnrollmentResponse(enrollment)})
}

func (h *Handler) ListByLead(c *gin.Context) {
	companyID, ok := httpkit.MustGetCompanyID(c)
	if !ok {
		return
	}
	leadID, ok := pathID(c)
	if !ok {
		return
	}

	items, err := h.svc.ListEnrollmentsByLead(c.Request.Context(), companyID, leadID)
	if httpkit.HandleError(c, err) {
		return
	}

	out := make([]transport.EnrollmentResponse, 0, len(items))
	for _, e := range items {
		out = append(out, toEnrollmentResponse(e))
	}
	httpkit.Success(c, out)
}

func (h *Handler) CancelEnrollment(c *gin.Context) {
	companyID, ok := httpkit.MustGetCompanyID(c)
	if !ok {
		return
	}
	enrollmentID, err := uuid.Parse(c.Param("enrollmentID"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, "invalid enrollment id")
		return
	}

	if err := h.svc.Cancel(c.Request.Context(), companyID, enrollmentID); httpkit.HandleError(c, err) {
		return
	}
	httpkit.SuccessMessage(c, nil, "enrollment cancelled")
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

func toCadenceResponse(cws service.CadenceWithSteps) transport.CadenceResponse {
	steps := make([]transport.CadenceStepResponse, 0, len(cws.Steps))
	for _, st := range cws.Steps {
		steps = append(steps, transport.CadenceStepResponse{
			ID:           st.ID,
			StepOrder:    st.StepOrder,
			StepType:     st.StepType,
			DelayHours:   st.DelayHours,
			EmailSubject: st.EmailSubject,
			EmailBody:    st.EmailBody,
			Note:         st.Note,
		})
	}
	return transport.CadenceResponse{
		ID:          cws.Cadence.ID,
		Name:        cws.Cadence.Name,
		Description: cws.Cadence.Description,
		IsActive:    cws.Cadence.IsActive,
		Steps:       steps,
		CreatedAt:   cws.Cadence.CreatedAt,
		UpdatedAt:   cws.Cadence.UpdatedAt,
	}
}

func toEnrollmentResponse(e repository.Enrollment) transport.EnrollmentResponse {
	return transport.EnrollmentResponse{
		ID:          e.ID,
		CadenceID:   e.CadenceID,
		LeadID:      e.LeadID,
		Status:      e.Status,
		CurrentStep: e.CurrentStep,
		EnrolledAt:  e.EnrolledAt,
		CompletedAt: e.CompletedAt,
	}
}

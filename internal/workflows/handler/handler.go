// Package handler exposes the workflows HTTP API.
package handler

import (
	"net/http"

	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/workflows/repository"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/workflows/service"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/workflows/transport"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/httpkit"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles workflow HTTP requests
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new workflows handler
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the workflow routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.PATCH("/:id", h.SetActive)
	rg.DELETE("/:id", h.Delete)
	rg.GET("/:id/sends", h.ListSends)
	rg.POST("/seed-defaults", h.SeedDefaults)
}

func (h *Handler) Create(c *gin.Context) {
	companyID, ok := httpkit.MustGetCompanyID(c)
	if !ok {
		return
	}

	var req transport.CreateWorkflowRequest
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
	c.JSON(http.StatusCreated, httpkit.SuccessResponse{Success: true, Data: toWorkflowResponse(created)})
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

	out := make([]transport.WorkflowResponse, 0, len(items))
	for _, wf := range items {
		out = append(out, toWorkflowResponse(service.WorkflowWithVariants{Workflow: wf}))
	}
	httpkit.Success(c, out)
}

func (h *Handler) Get(c *gin.Context) {
	companyID, ok := httpkit.MustGetCompanyID(c)
	if !ok {
		return
	}
	workflowID, ok := pathID(c)
	if !ok {
		return
	}

	workflow, err := h.svc.Get(c.Request.Context(), companyID, workflowID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Success(c, toWorkflowResponse(workflow))
}

func (h *Handler) SetActive(c *gin.Context) {
	companyID, ok := httpkit.MustGetCompanyID(c)
	if !ok {
		return
	}
	workflowID, ok := pathID(c)
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

	if err := h.svc.SetActive(c.Request.Context(), companyID, workflowID, *req.IsActive); httpkit.HandleError(c, err) {
		return
	}
	httpkit.SuccessMessage(c, nil, "workflow updated")
}

func (h *Handler) Delete(c *gin.Context) {
	companyID, ok := httpkit.MustGetCompanyID(c)
	if !ok {
		return
	}
	workflowID, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), companyID, workflowID); httpkit.HandleError(c, err) {
		return
	}
	httpkit.SuccessMessage(c, nil, "workflow deleted")
}

func (h *Handler) ListSends(c *gin.Context) {
	companyID, ok := httpkit.MustGetCompanyID(c)
	if !ok {
		return
	}
	workflowID, ok := pathID(c)
	if !ok {
		return
	}

	sends, err := h.svc.ListSends(c.Request.Context(), companyID, workflowID)
	if httpkit.HandleError(c, err) {
		return
	}

	out := make([]transport.SendResponse, 0, len(sends))
	for _, s := range sends {
		out = append(out, toSendResponse(s))
	}
	httpkit.Success(c, out)
}

func (h *Handler) SeedDefaults(c *gin.Context) {
	companyID, ok := httpkit.MustGetCompanyID(c)
	if !ok {
		return
	}

	created, err := h.svc.SeedDefaults(c.Request.Context(), companyID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Success(c, transport.SeedDefaultsResponse{Created: created})
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

func toWorkflowResponse(wwv service.WorkflowWithVariants) transport.WorkflowResponse {
	variants := make([]transport.WorkflowVariantResponse, 0, len(wwv.Variants))
	for _, v := range wwv.Variants {
		variants = append(variants, transport.WorkflowVariantResponse{
			ID:           v.ID,
			Position:     v.Position,
			Name:         v.Name,
			Subject:      v.Subject,
			Body:         v.Body,
			SplitPercent: v.SplitPercent,
		})
	}
	return transport.WorkflowResponse{
		ID:           wwv.Workflow.ID,
		Name:         wwv.Workflow.Name,
		TriggerEvent: wwv.Workflow.TriggerEvent,
		DelayMinutes: wwv.Workflow.DelayMinutes,
		IsActive:     wwv.Workflow.IsActive,
		Variants:     variants,
		CreatedAt:    wwv.Workflow.CreatedAt,
		UpdatedAt:    wwv.Workflow.UpdatedAt,
	}
}

func toSendResponse(s repository.Send) transport.SendResponse {
	return transport.SendResponse{
		ID:           s.ID,
		WorkflowID:   s.WorkflowID,
		VariantID:    s.VariantID,
		LeadID:       s.LeadID,
		Status:       s.Status,
		ScheduledFor: s.ScheduledFor,
		SentAt:       s.SentAt,
		FailReason:   s.FailReason,
		CreatedAt:    s.CreatedAt,
	}
}

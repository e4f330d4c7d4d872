package handler

import (
	"net/http"

	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/calls/repository"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/calls/service"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/calls/transport"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/httpkit"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidCallID    = "invalid call id"
)

// Handler handles HTTP requests for call records
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new calls handler
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the call routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
}

// RegisterLeadRoutes registers the per-lead call listing.
func (h *Handler) RegisterLeadRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id/calls", h.ListByLead)
}

func (h *Handler) Create(c *gin.Context) {
	companyID, ok := httpkit.MustGetCompanyID(c)
	if !ok {
		return
	}

	var req transport.CreateCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	userID := httpkit.MustGetIdentity(c).UserID()
	call, err := h.svc.Create(c.Request.Context(), companyID, &userID, req)
	if httpkit.HandleError(c, err) {
		return
	}

	c.JSON(http.StatusCreated, httpkit.SuccessResponse{Success: true, Data: toCallResponse(call)})
}

func (h *Handler) Get(c *gin.Context) {
	companyID, ok := httpkit.MustGetCompanyID(c)
	if !ok {
		return
	}
	callID, ok := pathID(c)
	if !ok {
		return
	}

	call, err := h.svc.Get(c.Request.Context(), companyID, callID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Success(c, toCallResponse(call))
}

func (h *Handler) ListByLead(c *gin.Context) {
	companyID, ok := httpkit.MustGetCompanyID(c)
	if !ok {
		return
	}
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid lead id", nil)
		return
	}

	calls, err := h.svc.ListByLead(c.Request.Context(), companyID, leadID)
	if httpkit.HandleError(c, err) {
		return
	}

	items := make([]transport.CallResponse, 0, len(calls))
	for _, call := range calls {
		items = append(items, toCallResponse(call))
	}
	httpkit.Success(c, items)
}

func (h *Handler) Update(c *gin.Context) {
	companyID, ok := httpkit.MustGetCompanyID(c)
	if !ok {
		return
	}
	callID, ok := pathID(c)
	if !ok {
		return
	}

	var req transport.UpdateCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	call, err := h.svc.Update(c.Request.Context(), companyID, callID, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Success(c, toCallResponse(call))
}

func (h *Handler) Delete(c *gin.Context) {
	companyID, ok := httpkit.MustGetCompanyID(c)
	if !ok {
		return
	}
	callID, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), companyID, callID); httpkit.HandleError(c, err) {
		return
	}

	httpkit.SuccessMessage(c, nil, "call deleted")
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidCallID, nil)
		return uuid.Nil, false
	}
	return id, true
}

func toCallResponse(call repository.Call) transport.CallResponse {
	return transport.CallResponse{
		ID:              call.ID,
		LeadID:          call.LeadID,
		UserID:          call.UserID,
		Direction:       call.Direction,
		DurationSeconds: call.DurationSeconds,
		Disposition:     call.Disposition,
		Notes:           call.Notes,
		CalledAt:        call.CalledAt,
		CreatedAt:       call.CreatedAt,
	}
}

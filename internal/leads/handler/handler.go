package handler

import (
	"net/http"
	"strconv"

	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/activity"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/leads/repository"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/leads/service"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/leads/transport"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/httpkit"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidLeadID    = "invalid lead id"
)

// Handler handles HTTP requests for leads
type Handler struct {
	svc      *service.Service
	activity *activity.Service
	val      *validator.Validator
}

// New creates a new leads handler
func New(svc *service.Service, act *activity.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, activity: act, val: val}
}

// RegisterRoutes registers the lead routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.GET("/:id/activities", h.ListActivities)
}

func (h *Handler) Create(c *gin.Context) {
	companyID, ok := httpkit.MustGetCompanyID(c)
	if !ok {
		return
	}

	var req transport.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	userID := httpkit.MustGetIdentity(c).UserID()
	lead, err := h.svc.Create(c.Request.Context(), companyID, &userID, req)
	if httpkit.HandleError(c, err) {
		return
	}

	c.JSON(http.StatusCreated, httpkit.SuccessResponse{Success: true, Data: toLeadResponse(lead)})
}

func (h *Handler) List(c *gin.Context) {
	companyID, ok := httpkit.MustGetCompanyID(c)
	if !ok {
		return
	}

	var q transport.ListLeadsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}

	params := repository.ListParams{
		CompanyID: companyID,
		Search:    q.Search,
		Page:      q.Page,
		PageSize:  q.PageSize,
	}
	if q.Status != "" {
		params.Status = &q.Status
	}

	result, err := h.svc.List(c.Request.Context(), params)
	if httpkit.HandleError(c, err) {
		return
	}

	items := make([]transport.LeadResponse, 0, len(result.Items))
	for _, l := range result.Items {
		items = append(items, toLeadResponse(l))
	}

	httpkit.Success(c, transport.LeadListResponse{
		Items:      items,
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	})
}

func (h *Handler) Get(c *gin.Context) {
	companyID, ok := httpkit.MustGetCompanyID(c)
	if !ok {
		return
	}
	leadID, ok := pathID(c)
	if !ok {
		return
	}

	lead, err := h.svc.Get(c.Request.Context(), companyID, leadID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Success(c, toLeadResponse(lead))
}

func (h *Handler) Update(c *gin.Context) {
	companyID, ok := httpkit.MustGetCompanyID(c)
	if !ok {
		return
	}
	leadID, ok := pathID(c)
	if !ok {
		return
	}

	var req transport.UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	userID := httpkit.MustGetIdentity(c).UserID()
	lead, err := h.svc.Update(c.Request.Context(), companyID, leadID, &userID, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Success(c, toLeadResponse(lead))
}

func (h *Handler) Delete(c *gin.Context) {
	companyID, ok := httpkit.MustGetCompanyID(c)
	if !ok {
		return
	}
	leadID, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), companyID, leadID); httpkit.HandleError(c, err) {
		return
	}

	httpkit.SuccessMessage(c, nil, "lead deleted")
}

func (h *Handler) ListActivities(c *gin.Context) {
	companyID, ok := httpkit.MustGetCompanyID(c)
	if !ok {
		return
	}
	leadID, ok := pathID(c)
	if !ok {
		return
	}

	if _, err := h.svc.Get(c.Request.Context(), companyID, leadID); httpkit.HandleError(c, err) {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	entries, err := h.activity.ListByEntity(c.Request.Context(), companyID, activity.EntityLead, leadID, limit)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Success(c, entries)
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidLeadID, nil)
		return uuid.Nil, false
	}
	return id, true
}

func toLeadResponse(l repository.Lead) transport.LeadResponse {
	return transport.LeadResponse{
		ID:          l.ID,
		CompanyID:   l.CompanyID,
		FirstName:   l.FirstName,
		LastName:    l.LastName,
		Email:       l.Email,
		Phone:       l.Phone,
		Source:      l.Source,
		LeadStatus:  l.LeadStatus,
		PrimaryPest: l.PrimaryPest,
		Street:      l.Street,
		City:        l.City,
		State:       l.State,
		PostalCode:  l.PostalCode,
		Notes:       l.Notes,
		AssignedTo:  l.AssignedTo,
		LastContact: l.LastContact,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}

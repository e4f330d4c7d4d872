package handler

import (
	"net/http"
	"strconv"

	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/activity"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/quotes/repository"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/quotes/service"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/quotes/transport"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/httpkit"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidQuoteID   = "invalid quote id"
)

// Handler handles HTTP requests for quotes
type Handler struct {
	svc      *service.Service
	activity *activity.Service
	val      *validator.Validator
}

// New creates a new quotes handler
func New(svc *service.Service, act *activity.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, activity: act, val: val}
}

// RegisterRoutes registers the authenticated quote routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.GET("/:id/activities", h.ListActivities)
	rg.POST("/:id/send", h.Send)
}

// Send issues the public token and marks the quote sent.
func (h *Handler) Send(c *gin.Context) {
	companyID, ok := httpkit.MustGetCompanyID(c)
	if !ok {
		return
	}
	quoteID, ok := pathID(c)
	if !ok {
		return
	}

	userID := httpkit.MustGetIdentity(c).UserID()
	sent, err := h.svc.Send(c.Request.Context(), companyID, quoteID, &userID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Success(c, toQuoteResponse(sent))
}

func (h *Handler) List(c *gin.Context) {
	companyID, ok := httpkit.MustGetCompanyID(c)
	if !ok {
		return
	}

	var q transport.ListQuotesQuery
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
	if q.LeadID != "" {
		leadID, err := uuid.Parse(q.LeadID)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, "invalid lead_id")
			return
		}
		params.LeadID = &leadID
	}

	result, err := h.svc.List(c.Request.Context(), params)
	if httpkit.HandleError(c, err) {
		return
	}

	items := make([]transport.QuoteListItem, 0, len(result.Items))
	for _, q := range result.Items {
		items = append(items, transport.QuoteListItem{
			ID:                  q.ID,
			LeadID:              q.LeadID,
			QuoteStatus:         q.QuoteStatus,
			PrimaryPest:         q.PrimaryPest,
			TotalInitialPrice:   q.TotalInitialPrice,
			TotalRecurringPrice: q.TotalRecurringPrice,
			ValidUntil:          q.ValidUntil,
			SignedAt:            q.SignedAt,
			CreatedAt:           q.CreatedAt,
		})
	}

	httpkit.Success(c, transport.QuoteListResponse{
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
	quoteID, ok := pathID(c)
	if !ok {
		return
	}

	quote, err := h.svc.Get(c.Request.Context(), companyID, quoteID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Success(c, toQuoteResponse(quote))
}

func (h *Handler) Update(c *gin.Context) {
	companyID, ok := httpkit.MustGetCompanyID(c)
	if !ok {
		return
	}
	quoteID, ok := pathID(c)
	if !ok {
		return
	}

	var req transport.UpdateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	userID := httpkit.MustGetIdentity(c).UserID()

	quote, err := h.svc.Update(c.Request.Context(), companyID, quoteID, &userID, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Success(c, toQuoteResponse(quote))
}

func (h *Handler) Delete(c *gin.Context) {
	companyID, ok := httpkit.MustGetCompanyID(c)
	if !ok {
		return
	}
	quoteID, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), companyID, quoteID); httpkit.HandleError(c, err) {
		return
	}

	httpkit.SuccessMessage(c, nil, "quote deleted")
}

func (h *Handler) ListActivities(c *gin.Context) {
	companyID, ok := httpkit.MustGetCompanyID(c)
	if !ok {
		return
	}
	quoteID, ok := pathID(c)
	if !ok {
		return
	}

	// The quote must exist and belong to the caller's company.
	if _, err := h.svc.Get(c.Request.Context(), companyID, quoteID); httpkit.HandleError(c, err) {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	entries, err := h.activity.ListByEntity(c.Request.Context(), companyID, activity.EntityQuote, quoteID, limit)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Success(c, entries)
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidQuoteID, nil)
		return uuid.Nil, false
	}
	return id, true
}

func toQuoteResponse(q service.QuoteWithItems) transport.QuoteResponse {
	items := make([]transport.LineItemResponse, 0, len(q.Items))
	for _, li := range q.Items {
		items = append(items, transport.LineItemResponse{
			ID:                   li.ID,
			QuoteID:              li.QuoteID,
			ServicePlanID:        li.ServicePlanID,
			BundlePlanID:         li.BundlePlanID,
			AddonServiceID:       li.AddonServiceID,
			PlanName:             li.PlanName,
			PlanDescription:      li.PlanDescription,
			InitialPrice:         li.InitialPrice,
			RecurringPrice:       li.RecurringPrice,
			BillingFrequency:     li.BillingFrequency,
			ServiceFrequency:     li.ServiceFrequency,
			DiscountID:           li.DiscountID,
			DiscountPercentage:   li.DiscountPercentage,
			DiscountAmount:       li.DiscountAmount,
			IsCustomPriced:       li.IsCustomPriced,
			CustomInitialPrice:   li.CustomInitialPrice,
			CustomRecurringPrice: li.CustomRecurringPrice,
			FinalInitialPrice:    li.FinalInitialPrice,
			FinalRecurringPrice:  li.FinalRecurringPrice,
			DisplayOrder:         li.DisplayOrder,
		})
	}

	return transport.QuoteResponse{
		ID:                  q.Quote.ID,
		CompanyID:           q.Quote.CompanyID,
		LeadID:              q.Quote.LeadID,
		QuoteStatus:         q.Quote.QuoteStatus,
		PrimaryPest:         q.Quote.PrimaryPest,
		AdditionalPests:     q.Quote.AdditionalPests,
		HomeSizeRange:       q.Quote.HomeSizeRange,
		YardSizeRange:       q.Quote.YardSizeRange,
		LinearFeetRange:     q.Quote.LinearFeetRange,
		TotalInitialPrice:   q.Quote.TotalInitialPrice,
		TotalRecurringPrice: q.Quote.TotalRecurringPrice,
		ValidUntil:          q.Quote.ValidUntil,
		SignedAt:            q.Quote.SignedAt,
		CreatedAt:           q.Quote.CreatedAt,
		UpdatedAt:           q.Quote.UpdatedAt,
		LineItems:           items,
	}
}

package handler

import (
	"net/http"

	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/catalog/repository"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/catalog/service"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/catalog/transport"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/httpkit"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid id"
)

// Handler handles HTTP requests for the catalog
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new catalog handler
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers read-only catalog routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/service-plans", h.ListServicePlans)
	rg.GET("/bundles", h.ListBundles)
	rg.GET("/add-ons", h.ListAddOns)
	rg.GET("/discounts", h.ListDiscounts)
}

// RegisterAdminRoutes registers catalog management routes
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.POST("/catalog/service-plans", h.CreateServicePlan)
	rg.PUT("/catalog/service-plans/:id", h.UpdateServicePlan)
	rg.DELETE("/catalog/service-plans/:id", h.DeleteServicePlan)
	rg.POST("/catalog/bundles", h.CreateBundle)
	rg.PUT("/catalog/bundles/:id", h.UpdateBundle)
	rg.DELETE("/catalog/bundles/:id", h.DeleteBundle)
	rg.POST("/catalog/add-ons", h.CreateAddOn)
	rg.PUT("/catalog/add-ons/:id", h.UpdateAddOn)
	rg.DELETE("/catalog/add-ons/:id", h.DeleteAddOn)
	rg.POST("/catalog/discounts", h.CreateDiscount)
	rg.PUT("/catalog/discounts/:id", h.UpdateDiscount)
	rg.DELETE("/catalog/discounts/:id", h.DeleteDiscount)
}

func (h *Handler) bindScoped(c *gin.Context, req interface{}) (uuid.UUID, bool) {
	companyID, ok := httpkit.MustGetCompanyID(c)
	if !ok {
		return uuid.Nil, false
	}
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return uuid.Nil, false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return uuid.Nil, false
	}
	return companyID, true
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return uuid.Nil, false
	}
	return id, true
}

func includeInactive(c *gin.Context) bool {
	return c.Query("include_inactive") == "true"
}

// ── Service plans ─────────────────────────────────────────────────────────────

func (h *Handler) ListServicePlans(c *gin.Context) {
	companyID, ok := httpkit.MustGetCompanyID(c)
	if !ok {
		return
	}
	plans, err := h.svc.Repository().ListServicePlans(c.Request.Context(), companyID, !includeInactive(c))
	if httpkit.HandleError(c, err) {
		return
	}
	out := make([]transport.ServicePlanResponse, 0, len(plans))
	for _, p := range plans {
		out = append(out, toServicePlanResponse(p))
	}
	httpkit.Success(c, out)
}

func (h *Handler) CreateServicePlan(c *gin.Context) {
	var req transport.ServicePlanRequest
	companyID, ok := h.bindScoped(c, &req)
	if !ok {
		return
	}
	plan, err := h.svc.Repository().CreateServicePlan(c.Request.Context(), servicePlanFromRequest(companyID, uuid.Nil, req))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Success(c, toServicePlanResponse(plan))
}

func (h *Handler) UpdateServicePlan(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req transport.ServicePlanRequest
	companyID, ok := h.bindScoped(c, &req)
	if !ok {
		return
	}
	plan, err := h.svc.Repository().UpdateServicePlan(c.Request.Context(), servicePlanFromRequest(companyID, id, req))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Success(c, toServicePlanResponse(plan))
}

func (h *Handler) DeleteServicePlan(c *gin.Context) {
	companyID, ok := httpkit.MustGetCompanyID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	if httpkit.HandleError(c, h.svc.Repository().DeleteServicePlan(c.Request.Context(), companyID, id)) {
		return
	}
	httpkit.SuccessMessage(c, nil, "service plan deleted")
}

// ── Bundles ───────────────────────────────────────────────────────────────────

func (h *Handler) ListBundles(c *gin.Context) {
	companyID, ok := httpkit.MustGetCompanyID(c)
	if !ok {
		return
	}
	bundles, err := h.svc.Repository().ListBundlePlans(c.Request.Context(), companyID, !includeInactive(c))
	if httpkit.HandleError(c, err) {
		return
	}
	out := make([]transport.BundlePlanResponse, 0, len(bundles))
	for _, b := range bundles {
		out = append(out, toBundleResponse(b))
	}
	httpkit.Success(c, out)
}

func (h *Handler) CreateBundle(c *gin.Context) {
	var req transport.BundlePlanRequest
	companyID, ok := h.bindScoped(c, &req)
	if !ok {
		return
	}
	bundle, err := h.svc.Repository().CreateBundlePlan(c.Request.Context(), bundleFromRequest(companyID, uuid.Nil, req))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Success(c, toBundleResponse(bundle))
}

func (h *Handler) UpdateBundle(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req transport.BundlePlanRequest
	companyID, ok := h.bindScoped(c, &req)
	if !ok {
		return
	}
	bundle, err := h.svc.Repository().UpdateBundlePlan(c.Request.Context(), bundleFromRequest(companyID, id, req))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Success(c, toBundleResponse(bundle))
}

func (h *Handler) DeleteBundle(c *gin.Context) {
	companyID, ok := httpkit.MustGetCompanyID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	if httpkit.HandleError(c, h.svc.Repository().DeleteBundlePlan(c.Request.Context(), companyID, id)) {
		return
	}
	httpkit.SuccessMessage(c, nil, "bundle deleted")
}

// ── Add-ons ───────────────────────────────────────────────────────────────────

func (h *Handler) ListAddOns(c *gin.Context) {
	companyID, ok := httpkit.MustGetCompanyID(c)
	if !ok {
		return
	}
	addons, err := h.svc.Repository().ListAddOns(c.Request.Context(), companyID, !includeInactive(c))
	if httpkit.HandleError(c, err) {
		return
	}
	out := make([]transport.AddOnResponse, 0, len(addons))
	for _, a := range addons {
		out = append(out, toAddOnResponse(a))
	}
	httpkit.Success(c, out)
}

func (h *Handler) CreateAddOn(c *gin.Context) {
	var req transport.AddOnRequest
	companyID, ok := h.bindScoped(c, &req)
	if !ok {
		return
	}
	addon, err := h.svc.Repository().CreateAddOn(c.Request.Context(), addOnFromRequest(companyID, uuid.Nil, req))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Success(c, toAddOnResponse(addon))
}

func (h *Handler) UpdateAddOn(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req transport.AddOnRequest
	companyID, ok := h.bindScoped(c, &req)
	if !ok {
		return
	}
	addon, err := h.svc.Repository().UpdateAddOn(c.Request.Context(), addOnFromRequest(companyID, id, req))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Success(c, toAddOnResponse(addon))
}

func (h *Handler) DeleteAddOn(c *gin.Context) {
	companyID, ok := httpkit.MustGetCompanyID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	if httpkit.HandleError(c, h.svc.Repository().DeleteAddOn(c.Request.Context(), companyID, id)) {
		return
	}
	httpkit.SuccessMessage(c, nil, "add-on deleted")
}

// ── Discounts ─────────────────────────────────────────────────────────────────

func (h *Handler) ListDiscounts(c *gin.Context) {
	companyID, ok := httpkit.MustGetCompanyID(c)
	if !ok {
		return
	}
	discounts, err := h.svc.Repository().ListDiscounts(c.Request.Context(), companyID, !includeInactive(c))
	if httpkit.HandleError(c, err) {
		return
	}
	out := make([]transport.DiscountResponse, 0, len(discounts))
	for _, d := range discounts {
		out = append(out, toDiscountResponse(d))
	}
	httpkit.Success(c, out)
}

func (h *Handler) CreateDiscount(c *gin.Context) {
	var req transport.DiscountRequest
	companyID, ok := h.bindScoped(c, &req)
	if !ok {
		return
	}
	discount, err := h.svc.Repository().CreateDiscount(c.Request.Context(), discountFromRequest(companyID, uuid.Nil, req))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Success(c, toDiscountResponse(discount))
}

func (h *Handler) UpdateDiscount(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req transport.DiscountRequest
	companyID, ok := h.bindScoped(c, &req)
	if !ok {
		return
	}
	discount, err := h.svc.Repository().UpdateDiscount(c.Request.Context(), discountFromRequest(companyID, id, req))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Success(c, toDiscountResponse(discount))
}

func (h *Handler) DeleteDiscount(c *gin.Context) {
	companyID, ok := httpkit.MustGetCompanyID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	if httpkit.HandleError(c, h.svc.Repository().DeleteDiscount(c.Request.Context(), companyID, id)) {
		return
	}
	httpkit.SuccessMessage(c, nil, "discount deleted")
}

// ── Mapping ───────────────────────────────────────────────────────────────────

func activeOrDefault(v *bool) bool {
	if v == nil {
		return true
	}
	return *v
}

func servicePlanFromRequest(companyID, id uuid.UUID, req transport.ServicePlanRequest) repository.ServicePlan {
	return repository.ServicePlan{
		ID:                 id,
		CompanyID:          companyID,
		PlanName:           req.PlanName,
		PlanDescription:    req.PlanDescription,
		PlanCategory:       req.PlanCategory,
		InitialPrice:       req.InitialPrice,
		RecurringPrice:     req.RecurringPrice,
		BillingFrequency:   req.BillingFrequency,
		TreatmentFrequency: req.TreatmentFrequency,
		HomeSizePricing:    toDimensionJSON(req.HomeSizePricing),
		YardSizePricing:    toDimensionJSON(req.YardSizePricing),
		LinearFeetPricing:  toDimensionJSON(req.LinearFeetPricing),
		IsActive:           activeOrDefault(req.IsActive),
		DisplayOrder:       req.DisplayOrder,
	}
}

func toServicePlanResponse(p repository.ServicePlan) transport.ServicePlanResponse {
	return transport.ServicePlanResponse{
		ID:                 p.ID,
		PlanName:           p.PlanName,
		PlanDescription:    p.PlanDescription,
		PlanCategory:       p.PlanCategory,
		InitialPrice:       p.InitialPrice,
		RecurringPrice:     p.RecurringPrice,
		BillingFrequency:   p.BillingFrequency,
		TreatmentFrequency: p.TreatmentFrequency,
		HomeSizePricing:    fromDimensionJSON(p.HomeSizePricing),
		YardSizePricing:    fromDimensionJSON(p.YardSizePricing),
		LinearFeetPricing:  fromDimensionJSON(p.LinearFeetPricing),
		IsActive:           p.IsActive,
		DisplayOrder:       p.DisplayOrder,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

func bundleFromRequest(companyID, id uuid.UUID, req transport.BundlePlanRequest) repository.BundlePlan {
	intervals := make([]repository.BundlePricingConfigJSON, 0, len(req.IntervalPricing))
	for _, cfg := range req.IntervalPricing {
		intervals = append(intervals, toBundleConfigJSON(cfg))
	}
	return repository.BundlePlan{
		ID:                id,
		CompanyID:         companyID,
		PlanName:          req.PlanName,
		PlanDescription:   req.PlanDescription,
		PricingMode:       req.PricingMode,
		GlobalPricing:     toBundleConfigJSON(req.GlobalPricing),
		IntervalDimension: req.IntervalDimension,
		IntervalPricing:   intervals,
		ServicePlanIDs:    req.ServicePlanIDs,
		AddOnIDs:          req.AddOnIDs,
		BillingFrequency:  req.BillingFrequency,
		IsActive:          activeOrDefault(req.IsActive),
		DisplayOrder:      req.DisplayOrder,
	}
}

func toBundleResponse(b repository.BundlePlan) transport.BundlePlanResponse {
	intervals := make([]transport.BundlePricingConfig, 0, len(b.IntervalPricing))
	for _, cfg := range b.IntervalPricing {
		intervals = append(intervals, fromBundleConfigJSON(cfg))
	}
	return transport.BundlePlanResponse{
		ID:                b.ID,
		PlanName:          b.PlanName,
		PlanDescription:   b.PlanDescription,
		PricingMode:       b.PricingMode,
		GlobalPricing:     fromBundleConfigJSON(b.GlobalPricing),
		IntervalDimension: b.IntervalDimension,
		IntervalPricing:   intervals,
		ServicePlanIDs:    b.ServicePlanIDs,
		AddOnIDs:          b.AddOnIDs,
		BillingFrequency:  b.BillingFrequency,
		IsActive:          b.IsActive,
		DisplayOrder:      b.DisplayOrder,
		CreatedAt:         b.CreatedAt,
		UpdatedAt:         b.UpdatedAt,
	}
}

func addOnFromRequest(companyID, id uuid.UUID, req transport.AddOnRequest) repository.AddOnService {
	return repository.AddOnService{
		ID:             id,
		CompanyID:      companyID,
		Name:           req.Name,
		Description:    req.Description,
		InitialPrice:   req.InitialPrice,
		RecurringPrice: req.RecurringPrice,
		IsActive:       activeOrDefault(req.IsActive),
		DisplayOrder:   req.DisplayOrder,
	}
}

func toAddOnResponse(a repository.AddOnService) transport.AddOnResponse {
	return transport.AddOnResponse{
		ID:             a.ID,
		Name:           a.Name,
		Description:    a.Description,
		InitialPrice:   a.InitialPrice,
		RecurringPrice: a.RecurringPrice,
		IsActive:       a.IsActive,
		DisplayOrder:   a.DisplayOrder,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

func discountFromRequest(companyID, id uuid.UUID, req transport.DiscountRequest) repository.Discount {
	return repository.Discount{
		ID:                     id,
		CompanyID:              companyID,
		Name:                   req.Name,
		DiscountType:           req.DiscountType,
		DiscountValue:          req.DiscountValue,
		RecurringDiscountType:  req.RecurringDiscountType,
		RecurringDiscountValue: req.RecurringDiscountValue,
		AppliesToPrice:         req.AppliesToPrice,
		IsActive:               activeOrDefault(req.IsActive),
	}
}

func toDiscountResponse(d repository.Discount) transport.DiscountResponse {
	return transport.DiscountResponse{
		ID:                     d.ID,
		Name:                   d.Name,
		DiscountType:           d.DiscountType,
		DiscountValue:          d.DiscountValue,
		RecurringDiscountType:  d.RecurringDiscountType,
		RecurringDiscountValue: d.RecurringDiscountValue,
		AppliesToPrice:         d.AppliesToPrice,
		IsActive:               d.IsActive,
		CreatedAt:              d.CreatedAt,
		UpdatedAt:              d.UpdatedAt,
	}
}

func toDimensionJSON(d *transport.DimensionPricing) *repository.DimensionPricingJSON {
	if d == nil {
		return nil
	}
	return &repository.DimensionPricingJSON{
		InitialCostPerInterval:   d.InitialCostPerInterval,
		RecurringCostPerInterval: d.RecurringCostPerInterval,
	}
}

func fromDimensionJSON(d *repository.DimensionPricingJSON) *transport.DimensionPricing {
	if d == nil {
		return nil
	}
	return &transport.DimensionPricing{
		InitialCostPerInterval:   d.InitialCostPerInterval,
		RecurringCostPerInterval: d.RecurringCostPerInterval,
	}
}

func toBundleConfigJSON(cfg transport.BundlePricingConfig) repository.BundlePricingConfigJSON {
	return repository.BundlePricingConfigJSON{
		PricingType:            cfg.PricingType,
		CustomInitialPrice:     cfg.CustomInitialPrice,
		CustomRecurringPrice:   cfg.CustomRecurringPrice,
		DiscountType:           cfg.DiscountType,
		DiscountValue:          cfg.DiscountValue,
		RecurringDiscountType:  cfg.RecurringDiscountType,
		RecurringDiscountValue: cfg.RecurringDiscountValue,
		AppliesToPrice:         cfg.AppliesToPrice,
	}
}

func fromBundleConfigJSON(cfg repository.BundlePricingConfigJSON) transport.BundlePricingConfig {
	return transport.BundlePricingConfig{
		PricingType:            cfg.PricingType,
		CustomInitialPrice:     cfg.CustomInitialPrice,
		CustomRecurringPrice:   cfg.CustomRecurringPrice,
		DiscountType:           cfg.DiscountType,
		DiscountValue:          cfg.DiscountValue,
		RecurringDiscountType:  cfg.RecurringDiscountType,
		RecurringDiscountValue: cfg.RecurringDiscountValue,
		AppliesToPrice:         cfg.AppliesToPrice,
	}
}

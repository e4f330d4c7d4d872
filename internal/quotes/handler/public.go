package handler

import (
	"net/http"

	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/quotes/transport"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// RegisterPublicRoutes registers the unauthenticated, token-addressed quote
// routes used by the customer-facing acceptance flow.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/quotes/:token", h.GetPublic)
	rg.POST("/quotes/:token/accept", h.Accept)
}

func (h *Handler) GetPublic(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, "missing token")
		return
	}

	quote, err := h.svc.GetByPublicToken(c.Request.Context(), token)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Success(c, toQuoteResponse(quote))
}

func (h *Handler) Accept(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, "missing token")
		return
	}

	var req transport.AcceptQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	quote, err := h.svc.Accept(c.Request.Context(), token, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.SuccessMessage(c, toQuoteResponse(quote), "quote accepted")
}

package handler

import (
	"net/http"

	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/quotes/repository"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/quotes/transport"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RegisterAttachmentRoutes registers the quote attachment routes.
func (h *Handler) RegisterAttachmentRoutes(rg *gin.RouterGroup) {
	rg.POST("/:id/attachments", h.RequestAttachmentUpload)
	rg.GET("/:id/attachments", h.ListAttachments)
	rg.GET("/:id/attachments/:attachmentID/download", h.DownloadAttachment)
	rg.DELETE("/:id/attachments/:attachmentID", h.DeleteAttachment)
}

func (h *Handler) RequestAttachmentUpload(c *gin.Context) {
	companyID, ok := httpkit.MustGetCompanyID(c)
	if !ok {
		return
	}
	quoteID, ok := pathID(c)
	if !ok {
		return
	}

	var req transport.RequestAttachmentUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	userID := httpkit.MustGetIdentity(c).UserID()
	upload, err := h.svc.RequestAttachmentUpload(c.Request.Context(), companyID, quoteID, &userID, req.FileName, req.ContentType, req.SizeBytes)
	if httpkit.HandleError(c, err) {
		return
	}

	c.JSON(http.StatusCreated, httpkit.SuccessResponse{
		Success: true,
		Data: transport.AttachmentUploadResponse{
			Attachment: toAttachmentResponse(upload.Attachment),
			UploadURL:  upload.UploadURL,
			ExpiresAt:  upload.ExpiresAt,
		},
	})
}

func (h *Handler) ListAttachments(c *gin.Context) {
	companyID, ok := httpkit.MustGetCompanyID(c)
	if !ok {
		return
	}
	quoteID, ok := pathID(c)
	if !ok {
		return
	}

	items, err := h.svc.ListAttachments(c.Request.Context(), companyID, quoteID)
	if httpkit.HandleError(c, err) {
		return
	}

	out := make([]transport.AttachmentResponse, 0, len(items))
	for _, att := range items {
		out = append(out, toAttachmentResponse(att))
	}
	httpkit.Success(c, out)
}

func (h *Handler) DownloadAttachment(c *gin.Context) {
	companyID, ok := httpkit.MustGetCompanyID(c)
	if !ok {
		return
	}
	quoteID, ok := pathID(c)
	if !ok {
		return
	}
	attachmentID, err := uuid.Parse(c.Param("attachmentID"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, "invalid attachment id")
		return
	}

	presigned, err := h.svc.AttachmentDownloadURL(c.Request.Context(), companyID, quoteID, attachmentID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Success(c, transport.AttachmentDownloadResponse{
		URL:       presigned.URL,
		ExpiresAt: presigned.ExpiresAt,
	})
}

func (h *Handler) DeleteAttachment(c *gin.Context) {
	companyID, ok := httpkit.MustGetCompanyID(c)
	if !ok {
		return
	}
	quoteID, ok := pathID(c)
	if !ok {
		return
	}
	attachmentID, err := uuid.Parse(c.Param("attachmentID"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, "invalid attachment id")
		return
	}

	if err := h.svc.DeleteAttachment(c.Request.Context(), companyID, quoteID, attachmentID); httpkit.HandleError(c, err) {
		return
	}
	httpkit.SuccessMessage(c, nil, "attachment deleted")
}

func toAttachmentResponse(att repository.Attachment) transport.AttachmentResponse {
	return transport.AttachmentResponse{
		ID:          att.ID,
		QuoteID:     att.QuoteID,
		FileName:    att.FileName,
		ContentType: att.ContentType,
		SizeBytes:   att.SizeBytes,
		UploadedBy:  att.UploadedBy,
		CreatedAt:   att.CreatedAt,
	}
}

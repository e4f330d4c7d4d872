package transport

import (
	"time"

	"github.com/google/uuid"
)

// RequestAttachmentUploadRequest asks for a presigned upload slot.
type RequestAttachmentUploadRequest struct {
	FileName    string `json:"file_name" validate:"required,max=255"`
	ContentType string `json:"content_type" validate:"required,max=100"`
	SizeBytes   int64  `json:"size_bytes" validate:"required,gt=0"`
}

// AttachmentResponse is the API shape of a quote attachment.
type AttachmentResponse struct {
	ID          uuid.UUID  `json:"id"`
	QuoteID     uuid.UUID  `json:"quote_id"`
	FileName    string     `json:"file_name"`
	ContentType string     `json:"content_type"`
	SizeBytes   int64      `json:"size_bytes"`
	UploadedBy  *uuid.UUID `json:"uploaded_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// AttachmentUploadResponse returns the attachment row plus the presigned
// PUT URL the client uploads the file body to.
type AttachmentUploadResponse struct {
	Attachment AttachmentResponse `json:"attachment"`
	UploadURL  string             `json:"upload_url"`
	ExpiresAt  string             `json:"expires_at"`
}

// AttachmentDownloadResponse carries a short-lived download URL.
type AttachmentDownloadResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

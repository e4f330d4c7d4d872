package service

import (
	"context"
	"fmt"

	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/quotes/repository"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/storage"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/apperr"

	"github.com/google/uuid"
)

// AttachmentStore is the persistence port for quote attachments.
type AttachmentStore interface {
	CreateAttachment(ctx context.Context, att repository.Attachment) (repository.Attachment, error)
	GetAttachment(ctx context.Context, companyID, quoteID, attachmentID uuid.UUID) (repository.Attachment, error)
	ListAttachments(ctx context.Context, companyID, quoteID uuid.UUID) ([]repository.Attachment, error)
	DeleteAttachment(ctx context.Context, companyID, quoteID, attachmentID uuid.UUID) error
}

// ConfigureAttachments wires object storage into the service. Attachment
// endpoints return an error until this is called with a live backend.
func (s *Service) ConfigureAttachments(store AttachmentStore, objects storage.Service, bucket string) {
	s.attachments = store
	s.objects = objects
	s.attachmentBucket = bucket
}

func (s *Service) attachmentsReady() error {
	if s.attachments == nil || s.objects == nil || s.attachmentBucket == "" {
		return apperr.New(apperr.KindInternal, "attachment storage is not configured")
	}
	return nil
}

// AttachmentUpload pairs the created attachment row with the presigned
// PUT URL the client uploads the file to.
type AttachmentUpload struct {
	Attachment repository.Attachment
	UploadURL  string
	ExpiresAt  string
}

// RequestAttachmentUpload presigns an upload slot and records the
// attachment against the quote.
func (s *Service) RequestAttachmentUpload(ctx context.Context, companyID, quoteID uuid.UUID, userID *uuid.UUID, fileName, contentType string, sizeBytes int64) (AttachmentUpload, error) {
	if err := s.attachmentsReady(); err != nil {
		return AttachmentUpload{}, err
	}
	if _, err := s.store.GetByID(ctx, companyID, quoteID); err != nil {
		return AttachmentUpload{}, err
	}

	folder := fmt.Sprintf("%s/%s", companyID, quoteID)
	presigned, err := s.objects.GenerateUploadURL(ctx, s.attachmentBucket, folder, fileName, contentType, sizeBytes)
	if err != nil {
		return AttachmentUpload{}, err
	}

	att, err := s.attachments.CreateAttachment(ctx, repository.Attachment{
		QuoteID:     quoteID,
		CompanyID:   companyID,
		FileName:    fileName,
		FileKey:     presigned.FileKey,
		ContentType: contentType,
		SizeBytes:   sizeBytes,
		UploadedBy:  userID,
	})
	if err != nil {
		return AttachmentUpload{}, err
	}

	return AttachmentUpload{
		Attachment: att,
		UploadURL:  presigned.URL,
		ExpiresAt:  presigned.ExpiresAt.Format("2006-01-02T15:04:05Z07:00"),
	}, nil
}

// ListAttachments returns a quote's attachments.
func (s *Service) ListAttachments(ctx context.Context, companyID, quoteID uuid.UUID) ([]repository.Attachment, error) {
	if err := s.attachmentsReady(); err != nil {
		return nil, err
	}
	if _, err := s.store.GetByID(ctx, companyID, quoteID); err != nil {
		return nil, err
	}
	return s.attachments.ListAttachments(ctx, companyID, quoteID)
}

// AttachmentDownloadURL presigns a GET for one attachment.
func (s *Service) AttachmentDownloadURL(ctx context.Context, companyID, quoteID, attachmentID uuid.UUID) (*storage.PresignedURL, error) {
	if err := s.attachmentsReady(); err != nil {
		return nil, err
	}
	att, err := s.attachments.GetAttachment(ctx, companyID, quoteID, attachmentID)
	if err != nil {
		return nil, err
	}
	return s.objects.GenerateDownloadURL(ctx, s.attachmentBucket, att.FileKey)
}

// DeleteAttachment removes the row and then the stored object. Object
// deletion failures are logged and not surfaced, the row is already gone.
func (s *Service) DeleteAttachment(ctx context.Context, companyID, quoteID, attachmentID uuid.UUID) error {
	if err := s.attachmentsReady(); err != nil {
		return err
	}
	att, err := s.attachments.GetAttachment(ctx, companyID, quoteID, attachmentID)
	if err != nil {
		return err
	}
	if err := s.attachments.DeleteAttachment(ctx, companyID, quoteID, attachmentID); err != nil {
		return err
	}
	if err := s.objects.DeleteObject(ctx, s.attachmentBucket, att.FileKey); err != nil {
		s.log.Warn("failed to delete attachment object", "file_key", att.FileKey, "error", err)
	}
	return nil
}

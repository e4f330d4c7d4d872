package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Attachment is the database model for a file attached to a quote. The
// object itself lives in object storage under FileKey.
type Attachment struct {
	ID          uuid.UUID  `db:"id"`
	QuoteID     uuid.UUID  `db:"quote_id"`
	CompanyID   uuid.UUID  `db:"company_id"`
	FileName    string     `db:"file_name"`
	FileKey     string     `db:"file_key"`
	ContentType string     `db:"content_type"`
	SizeBytes   int64      `db:"size_bytes"`
	UploadedBy  *uuid.UUID `db:"uploaded_by"`
	CreatedAt   time.Time  `db:"created_at"`
}

const attachmentNotFoundMsg = "attachment not found"

const attachmentCols = `
	id, quote_id, company_id, file_name, file_key, content_type,
	size_bytes, uploaded_by, created_at`

func scanAttachment(row pgx.Row) (Attachment, error) {
	var a Attachment
	err := row.Scan(
		&a.ID, &a.QuoteID, &a.CompanyID, &a.FileName, &a.FileKey,
		&a.ContentType, &a.SizeBytes, &a.UploadedBy, &a.CreatedAt,
	)
	return a, err
}

// CreateAttachment records an attachment row for an uploaded object.
func (r *Repository) CreateAttachment(ctx context.Context, att Attachment) (Attachment, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO quote_attachments (
			quote_id, company_id, file_name, file_key, content_type,
			size_bytes, uploaded_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING`+attachmentCols,
		att.QuoteID, att.CompanyID, att.FileName, att.FileKey,
		att.ContentType, att.SizeBytes, att.UploadedBy,
	)
	created, err := scanAttachment(row)
	if err != nil {
		return Attachment{}, fmt.Errorf("failed to create attachment: %w", err)
	}
	return created, nil
}

// GetAttachment returns one attachment scoped to a company and quote.
func (r *Repository) GetAttachment(ctx context.Context, companyID, quoteID, attachmentID uuid.UUID) (Attachment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT`+attachmentCols+`
		FROM quote_attachments
		WHERE id = $1 AND quote_id = $2 AND company_id = $3
	`, attachmentID, quoteID, companyID)

	att, err := scanAttachment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Attachment{}, apperr.NotFound(attachmentNotFoundMsg)
		}
		return Attachment{}, fmt.Errorf("failed to get attachment: %w", err)
	}
	return att, nil
}

// ListAttachments returns a quote's attachments, newest first.
func (r *Repository) ListAttachments(ctx context.Context, companyID, quoteID uuid.UUID) ([]Attachment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT`+attachmentCols+`
		FROM quote_attachments
		WHERE quote_id = $1 AND company_id = $2
		ORDER BY created_at DESC
	`, quoteID, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}
	defer rows.Close()

	items := make([]Attachment, 0)
	for rows.Next() {
		att, err := scanAttachment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attachment: %w", err)
		}
		items = append(items, att)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attachments: %w", err)
	}
	return items, nil
}

// DeleteAttachment removes an attachment row.
func (r *Repository) DeleteAttachment(ctx context.Context, companyID, quoteID, attachmentID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM quote_attachments
		WHERE id = $1 AND quote_id = $2 AND company_id = $3
	`, attachmentID, quoteID, companyID)
	if err != nil {
		return fmt.Errorf("failed to delete attachment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(attachmentNotFoundMsg)
	}
	return nil
}

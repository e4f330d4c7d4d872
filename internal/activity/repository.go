// Package activity records and serves the per-company activity log. Writes
// are best-effort from the callers' perspective; a failed log entry must
// never fail the business operation that produced it.
package activity

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Entry struct {
	ID           uuid.UUID
	CompanyID    uuid.UUID
	EntityType   string
	EntityID     uuid.UUID
	ActivityType string
	FieldName    *string
	OldValue     *string
	NewValue     *string
	UserID       *uuid.UUID
	Notes        *string
	Metadata     map[string]any
	CreatedAt    time.Time
}

type CreateParams struct {
	CompanyID    uuid.UUID
	EntityType   string
	EntityID     uuid.UUID
	ActivityType string
	FieldName    *string
	OldValue     *string
	NewValue     *string
	UserID       *uuid.UUID
	Notes        *string
	Metadata     map[string]any
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, params CreateParams) (Entry, error) {
	metadataJSON, err := json.Marshal(params.Metadata)
	if err != nil {
		return Entry{}, err
	}

	var entry Entry
	err = r.pool.QueryRow(ctx, `
		INSERT INTO activity_logs (
			company_id,
			entity_type,
			entity_id,
			activity_type,
			field_name,
			old_value,
			new_value,
			user_id,
			notes,
			metadata
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, company_id, entity_type, entity_id, activity_type, field_name, old_value, new_value, user_id, notes, created_at
	`, params.CompanyID, params.EntityType, params.EntityID, params.ActivityType, params.FieldName, params.OldValue, params.NewValue, params.UserID, params.Notes, metadataJSON).Scan(
		&entry.ID,
		&entry.CompanyID,
		&entry.EntityType,
		&entry.EntityID,
		&entry.ActivityType,
		&entry.FieldName,
		&entry.OldValue,
		&entry.NewValue,
		&entry.UserID,
		&entry.Notes,
		&entry.CreatedAt,
	)
	if err != nil {
		return Entry{}, err
	}

	entry.Metadata = params.Metadata
	return entry, nil
}

const entrySelectCols = `
	id, company_id, entity_type, entity_id, activity_type, field_name, old_value, new_value, user_id, notes, metadata, created_at`

// ListByEntity returns an entity's activity entries, newest first.
func (r *Repository) ListByEntity(ctx context.Context, companyID uuid.UUID, entityType string, entityID uuid.UUID, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT`+entrySelectCols+`
		FROM activity_logs
		WHERE company_id = $1 AND entity_type = $2 AND entity_id = $3
		ORDER BY created_at DESC
		LIMIT $4
	`, companyID, entityType, entityID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var entry Entry
		var rawMetadata []byte
		if err := rows.Scan(
			&entry.ID,
			&entry.CompanyID,
			&entry.EntityType,
			&entry.EntityID,
			&entry.ActivityType,
			&entry.FieldName,
			&entry.OldValue,
			&entry.NewValue,
			&entry.UserID,
			&entry.Notes,
			&rawMetadata,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		if len(rawMetadata) > 0 {
			_ = json.Unmarshal(rawMetadata, &entry.Metadata)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

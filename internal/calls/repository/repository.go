// Package repository provides database access for call records.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Call is the database model for one logged call against a lead.
type Call struct {
	ID              uuid.UUID  `db:"id"`
	CompanyID       uuid.UUID  `db:"company_id"`
	LeadID          uuid.UUID  `db:"lead_id"`
	UserID          *uuid.UUID `db:"user_id"`
	Direction       string     `db:"direction"`
	DurationSeconds int        `db:"duration_seconds"`
	Disposition     string     `db:"disposition"`
	Notes           string     `db:"notes"`
	CalledAt        time.Time  `db:"called_at"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
}

// UpdateParams carries the patchable call fields.
type UpdateParams struct {
	Direction       *string
	DurationSeconds *int
	Disposition     *string
	Notes           *string
	CalledAt        *time.Time
}

const callNotFoundMsg = "call not found"

// Repository provides database operations for calls
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new calls repository
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const callCols = `
	id, company_id, lead_id, user_id, direction, duration_seconds,
	disposition, notes, called_at, created_at, updated_at`

func scanCall(row pgx.Row) (Call, error) {
	var c Call
	err := row.Scan(
		&c.ID, &c.CompanyID, &c.LeadID, &c.UserID, &c.Direction,
		&c.DurationSeconds, &c.Disposition, &c.Notes, &c.CalledAt,
		&c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

// Create inserts a call record.
func (r *Repository) Create(ctx context.Context, call Call) (Call, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO calls (
			company_id, lead_id, user_id, direction, duration_seconds,
			disposition, notes, called_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING`+callCols,
		call.CompanyID, call.LeadID, call.UserID, call.Direction,
		call.DurationSeconds, call.Disposition, call.Notes, call.CalledAt,
	)
	created, err := scanCall(row)
	if err != nil {
		return Call{}, fmt.Errorf("failed to create call: %w", err)
	}
	return created, nil
}

// GetByID returns a call scoped to a company.
func (r *Repository) GetByID(ctx context.Context, companyID, callID uuid.UUID) (Call, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT`+callCols+`
		FROM calls
		WHERE id = $1 AND company_id = $2
	`, callID, companyID)

	call, err := scanCall(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Call{}, apperr.NotFound(callNotFoundMsg)
		}
		return Call{}, fmt.Errorf("failed to get call: %w", err)
	}
	return call, nil
}

// ListByLead returns a lead's calls, newest first.
func (r *Repository) ListByLead(ctx context.Context, companyID, leadID uuid.UUID) ([]Call, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT`+callCols+`
		FROM calls
		WHERE company_id = $1 AND lead_id = $2
		ORDER BY called_at DESC
	`, companyID, leadID)
	if err != nil {
		return nil, fmt.Errorf("failed to list calls: %w", err)
	}
	defer rows.Close()

	calls := make([]Call, 0)
	for rows.Next() {
		call, err := scanCall(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan call: %w", err)
		}
		calls = append(calls, call)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate calls: %w", err)
	}
	return calls, nil
}

// Update patches a call record.
func (r *Repository) Update(ctx context.Context, companyID, callID uuid.UUID, params UpdateParams) (Call, error) {
	set := []string{"updated_at = now()"}
	args := []any{callID, companyID}

	add := func(col string, val any) {
		args = append(args, val)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if params.Direction != nil {
		add("direction", *params.Direction)
	}
	if params.DurationSeconds != nil {
		add("duration_seconds", *params.DurationSeconds)
	}
	if params.Disposition != nil {
		add("disposition", *params.Disposition)
	}
	if params.Notes != nil {
		add("notes", *params.Notes)
	}
	if params.CalledAt != nil {
		add("called_at", *params.CalledAt)
	}

	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		UPDATE calls
		SET %s
		WHERE id = $1 AND company_id = $2
		RETURNING%s
	`, strings.Join(set, ", "), callCols), args...)

	call, err := scanCall(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Call{}, apperr.NotFound(callNotFoundMsg)
		}
		return Call{}, fmt.Errorf("failed to update call: %w", err)
	}
	return call, nil
}

// Delete removes a call record.
func (r *Repository) Delete(ctx context.Context, companyID, callID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM calls WHERE id = $1 AND company_id = $2
	`, callID, companyID)
	if err != nil {
		return fmt.Errorf("failed to delete call: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(callNotFoundMsg)
	}
	return nil
}

// Package repository provides database access for leads.
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

// Lead is the database model for a sales lead.
type Lead struct {
	ID           uuid.UUID  `db:"id"`
	CompanyID    uuid.UUID  `db:"company_id"`
	FirstName    string     `db:"first_name"`
	LastName     string     `db:"last_name"`
	Email        string     `db:"email"`
	Phone        string     `db:"phone"`
	Source       string     `db:"source"`
	LeadStatus   string     `db:"lead_status"`
	PrimaryPest  string     `db:"primary_pest"`
	Street       string     `db:"street"`
	City         string     `db:"city"`
	State        string     `db:"state"`
	PostalCode   string     `db:"postal_code"`
	Notes        string     `db:"notes"`
	AssignedTo   *uuid.UUID `db:"assigned_to"`
	LastContact  *time.Time `db:"last_contact_at"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}

// UpdateParams carries the patchable lead fields. Nil means leave alone.
type UpdateParams struct {
	FirstName   *string
	LastName    *string
	Email       *string
	Phone       *string
	Source      *string
	LeadStatus  *string
	PrimaryPest *string
	Street      *string
	City        *string
	State       *string
	PostalCode  *string
	Notes       *string
	AssignedTo  *uuid.UUID
	LastContact *time.Time
}

// ListParams filters the lead listing.
type ListParams struct {
	CompanyID uuid.UUID
	Status    *string
	Search    string
	Page      int
	PageSize  int
}

// ListResult is a paginated page of leads.
type ListResult struct {
	Items      []Lead
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

const leadNotFoundMsg = "lead not found"

// Repository provides database operations for leads
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new leads repository
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const leadCols = `
	id, company_id, first_name, last_name, email, phone, source,
	lead_status, primary_pest, street, city, state, postal_code, notes,
	assigned_to, last_contact_at, created_at, updated_at`

func scanLead(row pgx.Row) (Lead, error) {
	var l Lead
	err := row.Scan(
		&l.ID, &l.CompanyID, &l.FirstName, &l.LastName, &l.Email, &l.Phone,
		&l.Source, &l.LeadStatus, &l.PrimaryPest, &l.Street, &l.City,
		&l.State, &l.PostalCode, &l.Notes, &l.AssignedTo, &l.LastContact,
		&l.CreatedAt, &l.UpdatedAt,
	)
	return l, err
}

// Create inserts a new lead and returns the stored row.
func (r *Repository) Create(ctx context.Context, lead Lead) (Lead, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO leads (
			company_id, first_name, last_name, email, phone, source,
			lead_status, primary_pest, street, city, state, postal_code,
			notes, assigned_to
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING`+leadCols,
		lead.CompanyID, lead.FirstName, lead.LastName, lead.Email, lead.Phone,
		lead.Source, lead.LeadStatus, lead.PrimaryPest, lead.Street, lead.City,
		lead.State, lead.PostalCode, lead.Notes, lead.AssignedTo,
	)
	created, err := scanLead(row)
	if err != nil {
		return Lead{}, fmt.Errorf("failed to create lead: %w", err)
	}
	return created, nil
}

// GetByID returns a lead scoped to a company.
func (r *Repository) GetByID(ctx context.Context, companyID, leadID uuid.UUID) (Lead, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT`+leadCols+`
		FROM leads
		WHERE id = $1 AND company_id = $2
	`, leadID, companyID)

	lead, err := scanLead(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, apperr.NotFound(leadNotFoundMsg)
		}
		return Lead{}, fmt.Errorf("failed to get lead: %w", err)
	}
	return lead, nil
}

// List returns a filtered, paginated page of leads.
func (r *Repository) List(ctx context.Context, params ListParams) (ListResult, error) {
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.PageSize <= 0 || params.PageSize > 100 {
		params.PageSize = 25
	}

	where := []string{"company_id = $1"}
	args := []any{params.CompanyID}

	if params.Status != nil {
		args = append(args, *params.Status)
		where = append(where, fmt.Sprintf("lead_status = $%d", len(args)))
	}
	if params.Search != "" {
		args = append(args, "%"+params.Search+"%")
		n := len(args)
		where = append(where, fmt.Sprintf(
			"(first_name ILIKE $%d OR last_name ILIKE $%d OR email ILIKE $%d OR phone ILIKE $%d)", n, n, n, n))
	}

	whereClause := strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM leads WHERE "+whereClause, args...,
	).Scan(&total); err != nil {
		return ListResult{}, fmt.Errorf("failed to count leads: %w", err)
	}

	offset := (params.Page - 1) * params.PageSize
	args = append(args, params.PageSize, offset)
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT%s
		FROM leads
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, leadCols, whereClause, len(args)-1, len(args)), args...)
	if err != nil {
		return ListResult{}, fmt.Errorf("failed to list leads: %w", err)
	}
	defer rows.Close()

	items := make([]Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return ListResult{}, fmt.Errorf("failed to scan lead: %w", err)
		}
		items = append(items, lead)
	}
	if err := rows.Err(); err != nil {
		return ListResult{}, fmt.Errorf("failed to iterate leads: %w", err)
	}

	totalPages := (total + params.PageSize - 1) / params.PageSize
	return ListResult{
		Items:      items,
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: totalPages,
	}, nil
}

// Update patches a lead. Only non-nil fields are written.
func (r *Repository) Update(ctx context.Context, companyID, leadID uuid.UUID, params UpdateParams) (Lead, error) {
	set := []string{"updated_at = now()"}
	args := []any{leadID, companyID}

	add := func(col string, val any) {
		args = append(args, val)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if params.FirstName != nil {
		add("first_name", *params.FirstName)
	}
	if params.LastName != nil {
		add("last_name", *params.LastName)
	}
	if params.Email != nil {
		add("email", *params.Email)
	}
	if params.Phone != nil {
		add("phone", *params.Phone)
	}
	if params.Source != nil {
		add("source", *params.Source)
	}
	if params.LeadStatus != nil {
		add("lead_status", *params.LeadStatus)
	}
	if params.PrimaryPest != nil {
		add("primary_pest", *params.PrimaryPest)
	}
	if params.Street != nil {
		add("street", *params.Street)
	}
	if params.City != nil {
		add("city", *params.City)
	}
	if params.State != nil {
		add("state", *params.State)
	}
	if params.PostalCode != nil {
		add("postal_code", *params.PostalCode)
	}
	if params.Notes != nil {
		add("notes", *params.Notes)
	}
	if params.AssignedTo != nil {
		add("assigned_to", *params.AssignedTo)
	}
	if params.LastContact != nil {
		add("last_contact_at", *params.LastContact)
	}

	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		UPDATE leads
		SET %s
		WHERE id = $1 AND company_id = $2
		RETURNING%s
	`, strings.Join(set, ", "), leadCols), args...)

	lead, err := scanLead(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, apperr.NotFound(leadNotFoundMsg)
		}
		return Lead{}, fmt.Errorf("failed to update lead: %w", err)
	}
	return lead, nil
}

// Delete removes a lead.
func (r *Repository) Delete(ctx context.Context, companyID, leadID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM leads WHERE id = $1 AND company_id = $2
	`, leadID, companyID)
	if err != nil {
		return fmt.Errorf("failed to delete lead: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(leadNotFoundMsg)
	}
	return nil
}

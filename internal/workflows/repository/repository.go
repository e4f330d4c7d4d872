// Package repository provides data access for email automation
// workflows, their template variants, and the send log.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Workflow is an automated email triggered by a lead lifecycle event.
type Workflow struct {
	ID           uuid.UUID `db:"id"`
	CompanyID    uuid.UUID `db:"company_id"`
	Name         string    `db:"name"`
	TriggerEvent string    `db:"trigger_event"`
	DelayMinutes int       `db:"delay_minutes"`
	IsActive     bool      `db:"is_active"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// Variant is one A/B template under a workflow. SplitPercent values
// across a workflow's variants sum to 100; assignment walks variants in
// position order.
type Variant struct {
	ID           uuid.UUID `db:"id"`
	WorkflowID   uuid.UUID `db:"workflow_id"`
	Position     int       `db:"position"`
	Name         string    `db:"name"`
	Subject      string    `db:"subject"`
	Body         string    `db:"body"`
	SplitPercent int       `db:"split_percent"`
}

// Send is one entry in the send log.
type Send struct {
	ID           uuid.UUID  `db:"id"`
	WorkflowID   uuid.UUID  `db:"workflow_id"`
	VariantID    uuid.UUID  `db:"variant_id"`
	CompanyID    uuid.UUID  `db:"company_id"`
	LeadID       uuid.UUID  `db:"lead_id"`
	Status       string     `db:"status"`
	ScheduledFor time.Time  `db:"scheduled_for"`
	SentAt       *time.Time `db:"sent_at"`
	FailReason   *string    `db:"fail_reason"`
	CreatedAt    time.Time  `db:"created_at"`
}

const workflowNotFoundMsg = "workflow not found"
const sendNotFoundMsg = "workflow send not found"

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const workflowCols = `id, company_id, name, trigger_event, delay_minutes, is_active, created_at, updated_at`

func scanWorkflow(row pgx.Row) (Workflow, error) {
	var w Workflow
	err := row.Scan(&w.ID, &w.CompanyID, &w.Name, &w.TriggerEvent, &w.DelayMinutes, &w.IsActive, &w.CreatedAt, &w.UpdatedAt)
	return w, err
}

const variantCols = `id, workflow_id, position, name, subject, body, split_percent`

func scanVariant(row pgx.Row) (Variant, error) {
	var v Variant
	err := row.Scan(&v.ID, &v.WorkflowID, &v.Position, &v.Name, &v.Subject, &v.Body, &v.SplitPercent)
	return v, err
}

const sendCols = `id, workflow_id, variant_id, company_id, lead_id, status, scheduled_for, sent_at, fail_reason, created_at`

func scanSend(row pgx.Row) (Send, error) {
	var s Send
	err := row.Scan(&s.ID, &s.WorkflowID, &s.VariantID, &s.CompanyID, &s.LeadID, &s.Status, &s.ScheduledFor, &s.SentAt, &s.FailReason, &s.CreatedAt)
	return s, err
}

// CreateWorkflow inserts a workflow and its variants in one transaction.
func (r *Repository) CreateWorkflow(ctx context.Context, w Workflow, variants []Variant) (Workflow, []Variant, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Workflow{}, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		INSERT INTO workflows (company_id, name, trigger_event, delay_minutes, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+workflowCols,
		w.CompanyID, w.Name, w.TriggerEvent, w.DelayMinutes, w.IsActive,
	)
	created, err := scanWorkflow(row)
	if err != nil {
		return Workflow{}, nil, fmt.Errorf("failed to create workflow: %w", err)
	}

	createdVariants := make([]Variant, 0, len(variants))
	for _, v := range variants {
		row := tx.QueryRow(ctx, `
			INSERT INTO workflow_variants (workflow_id, position, name, subject, body, split_percent)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING `+variantCols,
			created.ID, v.Position, v.Name, v.Subject, v.Body, v.SplitPercent,
		)
		inserted, err := scanVariant(row)
		if err != nil {
			return Workflow{}, nil, fmt.Errorf("failed to create workflow variant %q: %w", v.Name, err)
		}
		createdVariants = append(createdVariants, inserted)
	}

	if err := tx.Commit(ctx); err != nil {
		return Workflow{}, nil, fmt.Errorf("failed to commit workflow: %w", err)
	}
	return created, createdVariants, nil
}

// GetWorkflow returns a workflow header.
func (r *Repository) GetWorkflow(ctx context.Context, companyID, workflowID uuid.UUID) (Workflow, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+workflowCols+` FROM workflows WHERE id = $1 AND company_id = $2
	`, workflowID, companyID)
	w, err := scanWorkflow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Workflow{}, apperr.NotFound(workflowNotFoundMsg)
		}
		return Workflow{}, fmt.Errorf("failed to get workflow: %w", err)
	}
	return w, nil
}

// ListWorkflows returns all workflows for a company.
func (r *Repository) ListWorkflows(ctx context.Context, companyID uuid.UUID) ([]Workflow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+workflowCols+` FROM workflows WHERE company_id = $1 ORDER BY created_at DESC
	`, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}
	defer rows.Close()
	return collectWorkflows(rows)
}

// ListActiveByTrigger returns a company's active workflows for a trigger.
func (r *Repository) ListActiveByTrigger(ctx context.Context, companyID uuid.UUID, trigger string) ([]Workflow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+workflowCols+` FROM workflows
		WHERE company_id = $1 AND trigger_event = $2 AND is_active
		ORDER BY created_at
	`, companyID, trigger)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows by trigger: %w", err)
	}
	defer rows.Close()
	return collectWorkflows(rows)
}

func collectWorkflows(rows pgx.Rows) ([]Workflow, error) {
	items := make([]Workflow, 0)
	for rows.Next() {
		w, err := scanWorkflow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow: %w", err)
		}
		items = append(items, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate workflows: %w", err)
	}
	return items, nil
}

// CountByCompany reports how many workflows a company has, active or not.
func (r *Repository) CountByCompany(ctx context.Context, companyID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM workflows WHERE company_id = $1
	`, companyID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count workflows: %w", err)
	}
	return count, nil
}

// ListVariants returns a workflow's variants in position order.
func (r *Repository) ListVariants(ctx context.Context, workflowID uuid.UUID) ([]Variant, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+variantCols+` FROM workflow_variants WHERE workflow_id = $1 ORDER BY position
	`, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflow variants: %w", err)
	}
	defer rows.Close()

	items := make([]Variant, 0)
	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow variant: %w", err)
		}
		items = append(items, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate workflow variants: %w", err)
	}
	return items, nil
}

// SetWorkflowActive toggles a workflow on or off.
func (r *Repository) SetWorkflowActive(ctx context.Context, companyID, workflowID uuid.UUID, active bool) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE workflows SET is_active = $1, updated_at = now()
		WHERE id = $2 AND company_id = $3
	`, active, workflowID, companyID)
	if err != nil {
		return fmt.Errorf("failed to update workflow: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(workflowNotFoundMsg)
	}
	return nil
}

// DeleteWorkflow removes a workflow; variants and sends cascade.
func (r *Repository) DeleteWorkflow(ctx context.Context, companyID, workflowID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM workflows WHERE id = $1 AND company_id = $2
	`, workflowID, companyID)
	if err != nil {
		return fmt.Errorf("failed to delete workflow: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(workflowNotFoundMsg)
	}
	return nil
}

// CreateSend records a pending entry in the send log.
func (r *Repository) CreateSend(ctx context.Context, s Send) (Send, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO workflow_sends (workflow_id, variant_id, company_id, lead_id, status, scheduled_for)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+sendCols,
		s.WorkflowID, s.VariantID, s.CompanyID, s.LeadID, s.Status, s.ScheduledFor,
	)
	created, err := scanSend(row)
	if err != nil {
		return Send{}, fmt.Errorf("failed to create workflow send: %w", err)
	}
	return created, nil
}

// GetSend returns one send log entry.
func (r *Repository) GetSend(ctx context.Context, sendID uuid.UUID) (Send, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+sendCols+` FROM workflow_sends WHERE id = $1
	`, sendID)
	s, err := scanSend(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Send{}, apperr.NotFound(sendNotFoundMsg)
		}
		return Send{}, fmt.Errorf("failed to get workflow send: %w", err)
	}
	return s, nil
}

// ListSendsByWorkflow returns a workflow's send log, newest first.
func (r *Repository) ListSendsByWorkflow(ctx context.Context, companyID, workflowID uuid.UUID) ([]Send, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+sendCols+` FROM workflow_sends
		WHERE workflow_id = $1 AND company_id = $2
		ORDER BY created_at DESC
	`, workflowID, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflow sends: %w", err)
	}
	defer rows.Close()

	items := make([]Send, 0)
	for rows.Next() {
		s, err := scanSend(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow send: %w", err)
		}
		items = append(items, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate workflow sends: %w", err)
	}
	return items, nil
}

// MarkSendSent flips a pending send to sent.
func (r *Repository) MarkSendSent(ctx context.Context, sendID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE workflow_sends SET status = 'sent', sent_at = now()
		WHERE id = $1 AND status = 'pending'
	`, sendID)
	if err != nil {
		return fmt.Errorf("failed to mark send sent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(sendNotFoundMsg)
	}
	return nil
}

// MarkSendFailed flips a pending send to failed with a reason.
func (r *Repository) MarkSendFailed(ctx context.Context, sendID uuid.UUID, reason string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE workflow_sends SET status = 'failed', fail_reason = $2
		WHERE id = $1 AND status = 'pending'
	`, sendID, reason)
	if err != nil {
		return fmt.Errorf("failed to mark send failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(sendNotFoundMsg)
	}
	return nil
}

// CancelPendingSendsForLead drops a lead's queued emails. Used when the
// lead converts so automation stops.
func (r *Repository) CancelPendingSendsForLead(ctx context.Context, companyID, leadID uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE workflow_sends SET status = 'cancelled'
		WHERE company_id = $1 AND lead_id = $2 AND status = 'pending'
	`, companyID, leadID)
	if err != nil {
		return 0, fmt.Errorf("failed to cancel workflow sends: %w", err)
	}
	return tag.RowsAffected(), nil
}

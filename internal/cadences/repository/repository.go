// Package repository provides data access for cadence templates and
// lead enrollments.
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

// Cadence is a reusable outreach sequence owned by a company.
type Cadence struct {
	ID          uuid.UUID `db:"id"`
	CompanyID   uuid.UUID `db:"company_id"`
	Name        string    `db:"name"`
	Description *string   `db:"description"`
	IsActive    bool      `db:"is_active"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// Step is one ordered action inside a cadence. DelayHours is measured
// from the completion of the previous step (or from enrollment for the
// first step).
type Step struct {
	ID           uuid.UUID `db:"id"`
	CadenceID    uuid.UUID `db:"cadence_id"`
	StepOrder    int       `db:"step_order"`
	StepType     string    `db:"step_type"`
	DelayHours   int       `db:"delay_hours"`
	EmailSubject *string   `db:"email_subject"`
	EmailBody    *string   `db:"email_body"`
	Note         *string   `db:"note"`
}

// Enrollment tracks a lead's progress through a cadence. CurrentStep is
// the order of the last completed step, zero before any step ran.
type Enrollment struct {
	ID          uuid.UUID  `db:"id"`
	CadenceID   uuid.UUID  `db:"cadence_id"`
	CompanyID   uuid.UUID  `db:"company_id"`
	LeadID      uuid.UUID  `db:"lead_id"`
	Status      string     `db:"status"`
	CurrentStep int        `db:"current_step"`
	EnrolledAt  time.Time  `db:"enrolled_at"`
	CompletedAt *time.Time `db:"completed_at"`
}

const cadenceNotFoundMsg = "cadence not found"
const enrollmentNotFoundMsg = "enrollment not found"

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const cadenceCols = `id, company_id, name, description, is_active, created_at, updated_at`

func scanCadence(row pgx.Row) (Cadence, error) {
	var c Cadence
	err := row.Scan(&c.ID, &c.CompanyID, &c.Name, &c.Description, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

const stepCols = `id, cadence_id, step_order, step_type, delay_hours, email_subject, email_body, note`

func scanStep(row pgx.Row) (Step, error) {
	var s Step
	err := row.Scan(&s.ID, &s.CadenceID, &s.StepOrder, &s.StepType, &s.DelayHours, &s.EmailSubject, &s.EmailBody, &s.Note)
	return s, err
}

const enrollmentCols = `id, cadence_id, company_id, lead_id, status, current_step, enrolled_at, completed_at`

func scanEnrollment(row pgx.Row) (Enrollment, error) {
	var e Enrollment
	err := row.Scan(&e.ID, &e.CadenceID, &e.CompanyID, &e.LeadID, &e.Status, &e.CurrentStep, &e.EnrolledAt, &e.CompletedAt)
	return e, err
}

// CreateCadence inserts a cadence and its steps in one transaction.
func (r *Repository) CreateCadence(ctx context.Context, cadence Cadence, steps []Step) (Cadence, []Step, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Cadence{}, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		INSERT INTO cadences (company_id, name, description, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING `+cadenceCols,
		cadence.CompanyID, cadence.Name, cadence.Description, cadence.IsActive,
	)
	created, err := scanCadence(row)
	if err != nil {
		return Cadence{}, nil, fmt.Errorf("failed to create cadence: %w", err)
	}

	createdSteps := make([]Step, 0, len(steps))
	for _, step := range steps {
		row := tx.QueryRow(ctx, `
			INSERT INTO cadence_steps (cadence_id, step_order, step_type, delay_hours, email_subject, email_body, note)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING `+stepCols,
			created.ID, step.StepOrder, step.StepType, step.DelayHours, step.EmailSubject, step.EmailBody, step.Note,
		)
		inserted, err := scanStep(row)
		if err != nil {
			return Cadence{}, nil, fmt.Errorf("failed to create cadence step %d: %w", step.StepOrder, err)
		}
		createdSteps = append(createdSteps, inserted)
	}

	if err := tx.Commit(ctx); err != nil {
		return Cadence{}, nil, fmt.Errorf("failed to commit cadence: %w", err)
	}
	return created, createdSteps, nil
}

// GetCadence returns a cadence header.
func (r *Repository) GetCadence(ctx context.Context, companyID, cadenceID uuid.UUID) (Cadence, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+cadenceCols+` FROM cadences WHERE id = $1 AND company_id = $2
	`, cadenceID, companyID)
	c, err := scanCadence(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Cadence{}, apperr.NotFound(cadenceNotFoundMsg)
		}
		return Cadence{}, fmt.Errorf("failed to get cadence: %w", err)
	}
	return c, nil
}

// ListSteps returns a cadence's steps ordered by step_order.
func (r *Repository) ListSteps(ctx context.Context, cadenceID uuid.UUID) ([]Step, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+stepCols+` FROM cadence_steps WHERE cadence_id = $1 ORDER BY step_order
	`, cadenceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cadence steps: %w", err)
	}
	defer rows.Close()

	steps := make([]Step, 0)
	for rows.Next() {
		s, err := scanStep(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cadence step: %w", err)
		}
		steps = append(steps, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cadence steps: %w", err)
	}
	return steps, nil
}

// ListCadences returns all cadences for a company.
func (r *Repository) ListCadences(ctx context.Context, companyID uuid.UUID) ([]Cadence, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+cadenceCols+` FROM cadences WHERE company_id = $1 ORDER BY created_at DESC
	`, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cadences: %w", err)
	}
	defer rows.Close()

	items := make([]Cadence, 0)
	for rows.Next() {
		c, err := scanCadence(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cadence: %w", err)
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cadences: %w", err)
	}
	return items, nil
}

// SetCadenceActive toggles a cadence on or off.
func (r *Repository) SetCadenceActive(ctx context.Context, companyID, cadenceID uuid.UUID, active bool) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE cadences SET is_active = $1, updated_at = now()
		WHERE id = $2 AND company_id = $3
	`, active, cadenceID, companyID)
	if err != nil {
		return fmt.Errorf("failed to update cadence: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(cadenceNotFoundMsg)
	}
	return nil
}

// DeleteCadence removes a cadence; steps and enrollments cascade.
func (r *Repository) DeleteCadence(ctx context.Context, companyID, cadenceID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM cadences WHERE id = $1 AND company_id = $2
	`, cadenceID, companyID)
	if err != nil {
		return fmt.Errorf("failed to delete cadence: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(cadenceNotFoundMsg)
	}
	return nil
}

// CreateEnrollment starts a lead on a cadence.
func (r *Repository) CreateEnrollment(ctx context.Context, e Enrollment) (Enrollment, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO cadence_enrollments (cadence_id, company_id, lead_id, status, current_step)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+enrollmentCols,
		e.CadenceID, e.CompanyID, e.LeadID, e.Status, e.CurrentStep,
	)
	created, err := scanEnrollment(row)
	if err != nil {
		return Enrollment{}, fmt.Errorf("failed to create enrollment: %w", err)
	}
	return created, nil
}

// GetEnrollment returns one enrollment by id.
func (r *Repository) GetEnrollment(ctx context.Context, enrollmentID uuid.UUID) (Enrollment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+enrollmentCols+` FROM cadence_enrollments WHERE id = $1
	`, enrollmentID)
	e, err := scanEnrollment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Enrollment{}, apperr.NotFound(enrollmentNotFoundMsg)
		}
		return Enrollment{}, fmt.Errorf("failed to get enrollment: %w", err)
	}
	return e, nil
}

// HasActiveEnrollment reports whether the lead is already enrolled in
// the cadence.
func (r *Repository) HasActiveEnrollment(ctx context.Context, cadenceID, leadID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM cadence_enrollments
			WHERE cadence_id = $1 AND lead_id = $2 AND status = 'active'
		)
	`, cadenceID, leadID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check enrollment: %w", err)
	}
	return exists, nil
}

// ListEnrollmentsByLead returns a lead's enrollments, newest first.
func (r *Repository) ListEnrollmentsByLead(ctx context.Context, companyID, leadID uuid.UUID) ([]Enrollment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+enrollmentCols+` FROM cadence_enrollments
		WHERE company_id = $1 AND lead_id = $2
		ORDER BY enrolled_at DESC
	`, companyID, leadID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	defer rows.Close()

	items := make([]Enrollment, 0)
	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan enrollment: %w", err)
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate enrollments: %w", err)
	}
	return items, nil
}

// AdvanceEnrollment records completion of a step.
func (r *Repository) AdvanceEnrollment(ctx context.Context, enrollmentID uuid.UUID, currentStep int) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE cadence_enrollments SET current_step = $1
		WHERE id = $2 AND status = 'active'
	`, currentStep, enrollmentID)
	if err != nil {
		return fmt.Errorf("failed to advance enrollment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(enrollmentNotFoundMsg)
	}
	return nil
}

// CompleteEnrollment marks an active enrollment finished.
func (r *Repository) CompleteEnrollment(ctx context.Context, enrollmentID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE cadence_enrollments SET status = 'completed', completed_at = now()
		WHERE id = $1 AND status = 'active'
	`, enrollmentID)
	if err != nil {
		return fmt.Errorf("failed to complete enrollment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(enrollmentNotFoundMsg)
	}
	return nil
}

// CancelEnrollment stops an active enrollment.
func (r *Repository) CancelEnrollment(ctx context.Context, companyID, enrollmentID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE cadence_enrollments SET status = 'cancelled', completed_at = now()
		WHERE id = $1 AND company_id = $2 AND status = 'active'
	`, enrollmentID, companyID)
	if err != nil {
		return fmt.Errorf("failed to cancel enrollment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(enrollmentNotFoundMsg)
	}
	return nil
}

// CancelActiveEnrollmentsForLead stops every active enrollment a lead
// has. Used when the lead converts.
func (r *Repository) CancelActiveEnrollmentsForLead(ctx context.Context, companyID, leadID uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE cadence_enrollments SET status = 'cancelled', completed_at = now()
		WHERE company_id = $1 AND lead_id = $2 AND status = 'active'
	`, companyID, leadID)
	if err != nil {
		return 0, fmt.Errorf("failed to cancel enrollments: %w", err)
	}
	return tag.RowsAffected(), nil
}

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ── Domain Models ─────────────────────────────────────────────────────────────

// Quote is the database model for a quote header.
type Quote struct {
	ID                  uuid.UUID  `db:"id"`
	CompanyID           uuid.UUID  `db:"company_id"`
	LeadID              *uuid.UUID `db:"lead_id"`
	ServiceAddressID    *uuid.UUID `db:"service_address_id"`
	QuoteStatus         string     `db:"quote_status"`
	PrimaryPest         string     `db:"primary_pest"`
	AdditionalPests     []string   `db:"additional_pests"`
	HomeSizeRange       string     `db:"home_size_range"`
	YardSizeRange       string     `db:"yard_size_range"`
	LinearFeetRange     string     `db:"linear_feet_range"`
	TotalInitialPrice   float64    `db:"total_initial_price"`
	TotalRecurringPrice float64    `db:"total_recurring_price"`
	ValidUntil          *time.Time `db:"valid_until"`
	SignedAt            *time.Time `db:"signed_at"`
	SignatureData       *string    `db:"signature_data"`
	DeviceData          []byte     `db:"device_data"`
	PublicToken         *string    `db:"public_token"`
	CreatedAt           time.Time  `db:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at"`
}

// LineItem is the database model for one quote line item. Exactly one of
// ServicePlanID, BundlePlanID, AddonServiceID is set.
type LineItem struct {
	ID                   uuid.UUID  `db:"id"`
	QuoteID              uuid.UUID  `db:"quote_id"`
	CompanyID            uuid.UUID  `db:"company_id"`
	ServicePlanID        *uuid.UUID `db:"service_plan_id"`
	BundlePlanID         *uuid.UUID `db:"bundle_plan_id"`
	AddonServiceID       *uuid.UUID `db:"addon_service_id"`
	PlanName             string     `db:"plan_name"`
	PlanDescription      string     `db:"plan_description"`
	InitialPrice         float64    `db:"initial_price"`
	RecurringPrice       float64    `db:"recurring_price"`
	BillingFrequency     string     `db:"billing_frequency"`
	ServiceFrequency     string     `db:"service_frequency"`
	DiscountID           *uuid.UUID `db:"discount_id"`
	DiscountPercentage   float64    `db:"discount_percentage"`
	DiscountAmount       float64    `db:"discount_amount"`
	IsCustomPriced       bool       `db:"is_custom_priced"`
	CustomInitialPrice   *float64   `db:"custom_initial_price"`
	CustomRecurringPrice *float64   `db:"custom_recurring_price"`
	FinalInitialPrice    float64    `db:"final_initial_price"`
	FinalRecurringPrice  float64    `db:"final_recurring_price"`
	DisplayOrder         int        `db:"display_order"`
	CreatedAt            time.Time  `db:"created_at"`
	UpdatedAt            time.Time  `db:"updated_at"`
}

// FieldPatch is the staged header update produced by the orchestrator.
// Pointer fields are only applied when non-nil; SetValidUntil distinguishes
// clearing valid_until from leaving it alone.
type FieldPatch struct {
	QuoteStatus     *string
	SetValidUntil   bool
	ValidUntil      *time.Time
	PrimaryPest     *string
	AdditionalPests *[]string
	HomeSizeRange   *string
	YardSizeRange   *string
	LinearFeetRange *string
	ResetSignature  bool
}

// LineItemWrite is one staged line-item mutation.
type LineItemWrite struct {
	Insert bool
	Row    LineItem
}

// ListParams contains parameters for listing quotes.
type ListParams struct {
	CompanyID uuid.UUID
	LeadID    *uuid.UUID
	Status    *string
	Search    string
	Page      int
	PageSize  int
}

// ListResult contains the paginated result of listing quotes.
type ListResult struct {
	Items      []Quote
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

const quoteNotFoundMsg = "quote not found"

// Repository provides database operations for quotes
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new quotes repository
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ── Reads ─────────────────────────────────────────────────────────────────────

const quoteCols = `
	id, company_id, lead_id, service_address_id, quote_status,
	primary_pest, additional_pests,
	home_size_range, yard_size_range, linear_feet_range,
	total_initial_price, total_recurring_price,
	valid_until, signed_at, signature_data, device_data, public_token,
	created_at, updated_at`

func scanQuote(row pgx.Row) (Quote, error) {
	var q Quote
	err := row.Scan(
		&q.ID, &q.CompanyID, &q.LeadID, &q.ServiceAddressID, &q.QuoteStatus,
		&q.PrimaryPest, &q.AdditionalPests,
		&q.HomeSizeRange, &q.YardSizeRange, &q.LinearFeetRange,
		&q.TotalInitialPrice, &q.TotalRecurringPrice,
		&q.ValidUntil, &q.SignedAt, &q.SignatureData, &q.DeviceData, &q.PublicToken,
		&q.CreatedAt, &q.UpdatedAt,
	)
	return q, err
}

// GetByID fetches a quote header scoped to a company.
func (r *Repository) GetByID(ctx context.Context, companyID, quoteID uuid.UUID) (Quote, error) {
	q, err := scanQuote(r.pool.QueryRow(ctx, `
		SELECT`+quoteCols+` FROM quotes WHERE id = $1 AND company_id = $2
	`, quoteID, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Quote{}, apperr.NotFound(quoteNotFoundMsg)
		}
		return Quote{}, fmt.Errorf("failed to fetch quote: %w", err)
	}
	return q, nil
}

// GetByPublicToken fetches a quote by its public acceptance token.
func (r *Repository) GetByPublicToken(ctx context.Context, token string) (Quote, error) {
	q, err := scanQuote(r.pool.QueryRow(ctx, `
		SELECT`+quoteCols+` FROM quotes WHERE public_token = $1
	`, token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Quote{}, apperr.NotFound(quoteNotFoundMsg)
		}
		return Quote{}, fmt.Errorf("failed to fetch quote by token: %w", err)
	}
	return q, nil
}

const lineItemCols = `
	id, quote_id, company_id, service_plan_id, bundle_plan_id, addon_service_id,
	plan_name, plan_description, initial_price, recurring_price,
	billing_frequency, service_frequency,
	discount_id, discount_percentage, discount_amount,
	is_custom_priced, custom_initial_price, custom_recurring_price,
	final_initial_price, final_recurring_price, display_order,
	created_at, updated_at`

func scanLineItem(row pgx.Row) (LineItem, error) {
	var li LineItem
	err := row.Scan(
		&li.ID, &li.QuoteID, &li.CompanyID, &li.ServicePlanID, &li.BundlePlanID, &li.AddonServiceID,
		&li.PlanName, &li.PlanDescription, &li.InitialPrice, &li.RecurringPrice,
		&li.BillingFrequency, &li.ServiceFrequency,
		&li.DiscountID, &li.DiscountPercentage, &li.DiscountAmount,
		&li.IsCustomPriced, &li.CustomInitialPrice, &li.CustomRecurringPrice,
		&li.FinalInitialPrice, &li.FinalRecurringPrice, &li.DisplayOrder,
		&li.CreatedAt, &li.UpdatedAt,
	)
	return li, err
}

// ListLineItems returns a quote's line items in display order.
func (r *Repository) ListLineItems(ctx context.Context, companyID, quoteID uuid.UUID) ([]LineItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT`+lineItemCols+` FROM quote_line_items
		WHERE quote_id = $1 AND company_id = $2
		ORDER BY display_order, created_at
	`, quoteID, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list line items: %w", err)
	}
	defer rows.Close()

	items := make([]LineItem, 0)
	for rows.Next() {
		li, err := scanLineItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, li)
	}
	return items, rows.Err()
}

// List returns a paginated set of quotes for a company.
func (r *Repository) List(ctx context.Context, params ListParams) (ListResult, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 || params.PageSize > 100 {
		params.PageSize = 25
	}

	where := []string{"company_id = $1"}
	args := []any{params.CompanyID}

	if params.LeadID != nil {
		args = append(args, *params.LeadID)
		where = append(where, fmt.Sprintf("lead_id = $%d", len(args)))
	}
	if params.Status != nil {
		args = append(args, *params.Status)
		where = append(where, fmt.Sprintf("quote_status = $%d", len(args)))
	}
	if params.Search != "" {
		args = append(args, "%"+params.Search+"%")
		where = append(where, fmt.Sprintf("primary_pest ILIKE $%d", len(args)))
	}

	whereClause := strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM quotes WHERE `+whereClause, args...).Scan(&total); err != nil {
		return ListResult{}, fmt.Errorf("failed to count quotes: %w", err)
	}

	args = append(args, params.PageSize, (params.Page-1)*params.PageSize)
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT%s FROM quotes
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, quoteCols, whereClause, len(args)-1, len(args)), args...)
	if err != nil {
		return ListResult{}, fmt.Errorf("failed to list quotes: %w", err)
	}
	defer rows.Close()

	items := make([]Quote, 0)
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return ListResult{}, err
		}
		items = append(items, q)
	}
	if err := rows.Err(); err != nil {
		return ListResult{}, err
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

// Delete removes a quote; line items cascade via the schema.
func (r *Repository) Delete(ctx context.Context, companyID, quoteID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM quotes WHERE id = $1 AND company_id = $2`, quoteID, companyID)
	if err != nil {
		return fmt.Errorf("failed to delete quote: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(quoteNotFoundMsg)
	}
	return nil
}

// ── Writes ────────────────────────────────────────────────────────────────────

// SaveQuoteUpdate applies a staged header patch and all line-item writes in
// one transaction, then recomputes the quote totals from the stored rows so
// totals always equal the sum of final prices. All-or-nothing: a failed
// line-item write rolls back the whole update.
func (r *Repository) SaveQuoteUpdate(ctx context.Context, companyID, quoteID uuid.UUID, patch FieldPatch, writes []LineItemWrite) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := applyFieldPatch(ctx, tx, companyID, quoteID, patch); err != nil {
		return err
	}

	for _, w := range writes {
		if w.Insert {
			if err := insertLineItem(ctx, tx, w.Row); err != nil {
				return err
			}
		} else {
			if err := updateLineItem(ctx, tx, w.Row); err != nil {
				return err
			}
		}
	}

	if _, err := tx.Exec(ctx, `
		UPDATE quotes SET
			total_initial_price = COALESCE((SELECT SUM(final_initial_price) FROM quote_line_items WHERE quote_id = $1), 0),
			total_recurring_price = COALESCE((SELECT SUM(final_recurring_price) FROM quote_line_items WHERE quote_id = $1), 0),
			updated_at = now()
		WHERE id = $1 AND company_id = $2
	`, quoteID, companyID); err != nil {
		return fmt.Errorf("failed to recompute quote totals: %w", err)
	}

	return tx.Commit(ctx)
}

func applyFieldPatch(ctx context.Context, tx pgx.Tx, companyID, quoteID uuid.UUID, patch FieldPatch) error {
	sets := []string{"updated_at = now()"}
	args := []any{quoteID, companyID}

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	// The signature reset forces draft status; a requested status change in
	// the same mutation would assign the column twice and loses anyway.
	if patch.QuoteStatus != nil && !patch.ResetSignature {
		add("quote_status", *patch.QuoteStatus)
	}
	if patch.SetValidUntil {
		add("valid_until", patch.ValidUntil)
	}
	if patch.PrimaryPest != nil {
		add("primary_pest", *patch.PrimaryPest)
	}
	if patch.AdditionalPests != nil {
		add("additional_pests", *patch.AdditionalPests)
	}
	if patch.HomeSizeRange != nil {
		add("home_size_range", *patch.HomeSizeRange)
	}
	if patch.YardSizeRange != nil {
		add("yard_size_range", *patch.YardSizeRange)
	}
	if patch.LinearFeetRange != nil {
		add("linear_feet_range", *patch.LinearFeetRange)
	}
	if patch.ResetSignature {
		sets = append(sets, "signed_at = NULL", "signature_data = NULL", "device_data = NULL", "quote_status = 'draft'")
	}

	query := fmt.Sprintf(`UPDATE quotes SET %s WHERE id = $1 AND company_id = $2`, strings.Join(sets, ", "))
	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update quote: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(quoteNotFoundMsg)
	}
	return nil
}

func insertLineItem(ctx context.Context, tx pgx.Tx, li LineItem) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO quote_line_items (
			quote_id, company_id, service_plan_id, bundle_plan_id, addon_service_id,
			plan_name, plan_description, initial_price, recurring_price,
			billing_frequency, service_frequency,
			discount_id, discount_percentage, discount_amount,
			is_custom_priced, custom_initial_price, custom_recurring_price,
			final_initial_price, final_recurring_price, display_order
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`, li.QuoteID, li.CompanyID, li.ServicePlanID, li.BundlePlanID, li.AddonServiceID,
		li.PlanName, li.PlanDescription, li.InitialPrice, li.RecurringPrice,
		li.BillingFrequency, li.ServiceFrequency,
		li.DiscountID, li.DiscountPercentage, li.DiscountAmount,
		li.IsCustomPriced, li.CustomInitialPrice, li.CustomRecurringPrice,
		li.FinalInitialPrice, li.FinalRecurringPrice, li.DisplayOrder,
	)
	if err != nil {
		return fmt.Errorf("failed to insert line item: %w", err)
	}
	return nil
}

func updateLineItem(ctx context.Context, tx pgx.Tx, li LineItem) error {
	tag, err := tx.Exec(ctx, `
		UPDATE quote_line_items SET
			service_plan_id = $4, bundle_plan_id = $5, addon_service_id = $6,
			plan_name = $7, plan_description = $8,
			initial_price = $9, recurring_price = $10,
			billing_frequency = $11, service_frequency = $12,
			discount_id = $13, discount_percentage = $14, discount_amount = $15,
			is_custom_priced = $16, custom_initial_price = $17, custom_recurring_price = $18,
			final_initial_price = $19, final_recurring_price = $20,
			display_order = $21, updated_at = now()
		WHERE id = $1 AND quote_id = $2 AND company_id = $3
	`, li.ID, li.QuoteID, li.CompanyID,
		li.ServicePlanID, li.BundlePlanID, li.AddonServiceID,
		li.PlanName, li.PlanDescription,
		li.InitialPrice, li.RecurringPrice,
		li.BillingFrequency, li.ServiceFrequency,
		li.DiscountID, li.DiscountPercentage, li.DiscountAmount,
		li.IsCustomPriced, li.CustomInitialPrice, li.CustomRecurringPrice,
		li.FinalInitialPrice, li.FinalRecurringPrice,
		li.DisplayOrder,
	)
	if err != nil {
		return fmt.Errorf("failed to update line item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("line item not found")
	}
	return nil
}

// SyncServiceAddress propagates the quote's size ranges onto its linked
// service address. Callers treat failures as non-fatal.
func (r *Repository) SyncServiceAddress(ctx context.Context, companyID, quoteID uuid.UUID, home, yard, linearFeet *string) error {
	sets := []string{"updated_at = now()"}
	args := []any{quoteID, companyID}

	add := func(column string, value *string) {
		if value == nil {
			return
		}
		args = append(args, *value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	add("home_size_range", home)
	add("yard_size_range", yard)
	add("linear_feet_range", linearFeet)

	if len(sets) == 1 {
		return nil
	}

	_, err := r.pool.Exec(ctx, fmt.Sprintf(`
		UPDATE service_addresses SET %s
		WHERE id = (SELECT service_address_id FROM quotes WHERE id = $1 AND company_id = $2)
	`, strings.Join(sets, ", ")), args...)
	if err != nil {
		return fmt.Errorf("failed to sync service address: %w", err)
	}
	return nil
}

// MarkAccepted records the e-signature on a quote and flips its status.
func (r *Repository) MarkAccepted(ctx context.Context, quoteID uuid.UUID, signatureData string, deviceData map[string]any) (Quote, error) {
	deviceJSON, err := json.Marshal(deviceData)
	if err != nil {
		return Quote{}, err
	}

	q, err := scanQuote(r.pool.QueryRow(ctx, `
		UPDATE quotes SET
			quote_status = 'accepted',
			signed_at = now(),
			signature_data = $2,
			device_data = $3,
			updated_at = now()
		WHERE id = $1
		RETURNING`+quoteCols+`
	`, quoteID, signatureData, deviceJSON))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Quote{}, apperr.NotFound(quoteNotFoundMsg)
		}
		return Quote{}, fmt.Errorf("failed to mark quote accepted: %w", err)
	}
	return q, nil
}

// MarkSent flips a quote to sent and stores its public token. The token
// is kept if one was already issued so previously shared links stay valid.
func (r *Repository) MarkSent(ctx context.Context, companyID, quoteID uuid.UUID, token string) (Quote, error) {
	q, err := scanQuote(r.pool.QueryRow(ctx, `
		UPDATE quotes SET
			quote_status = 'sent',
			public_token = COALESCE(public_token, $3),
			updated_at = now()
		WHERE id = $1 AND company_id = $2
		RETURNING`+quoteCols+`
	`, quoteID, companyID, token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Quote{}, apperr.NotFound(quoteNotFoundMsg)
		}
		return Quote{}, fmt.Errorf("failed to mark quote sent: %w", err)
	}
	return q, nil
}

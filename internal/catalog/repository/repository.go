// Package repository provides database access for the pricing catalog:
// service plans, bundle plans, add-on services, and discounts.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides database operations for the catalog.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new catalog repository
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ── Service plans ─────────────────────────────────────────────────────────────

const servicePlanCols = `
	id, company_id, plan_name, plan_description, plan_category,
	initial_price, recurring_price, billing_frequency, treatment_frequency,
	home_size_pricing, yard_size_pricing, linear_feet_pricing,
	is_active, display_order, created_at, updated_at`

func scanServicePlan(row pgx.Row) (ServicePlan, error) {
	var p ServicePlan
	err := row.Scan(
		&p.ID, &p.CompanyID, &p.PlanName, &p.PlanDescription, &p.PlanCategory,
		&p.InitialPrice, &p.RecurringPrice, &p.BillingFrequency, &p.TreatmentFrequency,
		&p.HomeSizePricing, &p.YardSizePricing, &p.LinearFeetPricing,
		&p.IsActive, &p.DisplayOrder, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

// ListServicePlans returns a company's plans ordered for display.
func (r *Repository) ListServicePlans(ctx context.Context, companyID uuid.UUID, activeOnly bool) ([]ServicePlan, error) {
	query := `SELECT` + servicePlanCols + ` FROM service_plans WHERE company_id = $1`
	if activeOnly {
		query += ` AND is_active`
	}
	query += ` ORDER BY display_order, plan_name`

	rows, err := r.pool.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list service plans: %w", err)
	}
	defer rows.Close()

	plans := make([]ServicePlan, 0)
	for rows.Next() {
		p, err := scanServicePlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

// GetServicePlan fetches one plan scoped to a company.
func (r *Repository) GetServicePlan(ctx context.Context, companyID, planID uuid.UUID) (ServicePlan, error) {
	p, err := scanServicePlan(r.pool.QueryRow(ctx, `
		SELECT`+servicePlanCols+` FROM service_plans WHERE id = $1 AND company_id = $2
	`, planID, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ServicePlan{}, apperr.NotFound("service plan not found")
		}
		return ServicePlan{}, fmt.Errorf("failed to fetch service plan: %w", err)
	}
	return p, nil
}

// GetServicePlansByIDs batch-fetches plans, keyed by id. Missing ids are
// simply absent from the map.
func (r *Repository) GetServicePlansByIDs(ctx context.Context, companyID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]ServicePlan, error) {
	result := make(map[uuid.UUID]ServicePlan, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT`+servicePlanCols+` FROM service_plans WHERE company_id = $1 AND id = ANY($2)
	`, companyID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to batch fetch service plans: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanServicePlan(rows)
		if err != nil {
			return nil, err
		}
		result[p.ID] = p
	}
	return result, rows.Err()
}

// CreateServicePlan inserts a plan and returns it with generated fields.
func (r *Repository) CreateServicePlan(ctx context.Context, p ServicePlan) (ServicePlan, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO service_plans (
			company_id, plan_name, plan_description, plan_category,
			initial_price, recurring_price, billing_frequency, treatment_frequency,
			home_size_pricing, yard_size_pricing, linear_feet_pricing,
			is_active, display_order
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at
	`, p.CompanyID, p.PlanName, p.PlanDescription, p.PlanCategory,
		p.InitialPrice, p.RecurringPrice, p.BillingFrequency, p.TreatmentFrequency,
		p.HomeSizePricing, p.YardSizePricing, p.LinearFeetPricing,
		p.IsActive, p.DisplayOrder,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return ServicePlan{}, fmt.Errorf("failed to insert service plan: %w", err)
	}
	return p, nil
}

// UpdateServicePlan replaces a plan's mutable fields.
func (r *Repository) UpdateServicePlan(ctx context.Context, p ServicePlan) (ServicePlan, error) {
	err := r.pool.QueryRow(ctx, `
		UPDATE service_plans SET
			plan_name = $3, plan_description = $4, plan_category = $5,
			initial_price = $6, recurring_price = $7,
			billing_frequency = $8, treatment_frequency = $9,
			home_size_pricing = $10, yard_size_pricing = $11, linear_feet_pricing = $12,
			is_active = $13, display_order = $14, updated_at = now()
		WHERE id = $1 AND company_id = $2
		RETURNING created_at, updated_at
	`, p.ID, p.CompanyID, p.PlanName, p.PlanDescription, p.PlanCategory,
		p.InitialPrice, p.RecurringPrice, p.BillingFrequency, p.TreatmentFrequency,
		p.HomeSizePricing, p.YardSizePricing, p.LinearFeetPricing,
		p.IsActive, p.DisplayOrder,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ServicePlan{}, apperr.NotFound("service plan not found")
		}
		return ServicePlan{}, fmt.Errorf("failed to update service plan: %w", err)
	}
	return p, nil
}

// DeleteServicePlan removes a plan.
func (r *Repository) DeleteServicePlan(ctx context.Context, companyID, planID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM service_plans WHERE id = $1 AND company_id = $2`, planID, companyID)
	if err != nil {
		return fmt.Errorf("failed to delete service plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("service plan not found")
	}
	return nil
}

// ── Bundle plans ──────────────────────────────────────────────────────────────

const bundlePlanCols = `
	id, company_id, plan_name, plan_description, pricing_mode,
	global_pricing, interval_dimension, interval_pricing,
	service_plan_ids, add_on_ids, billing_frequency,
	is_active, display_order, created_at, updated_at`

func scanBundlePlan(row pgx.Row) (BundlePlan, error) {
	var b BundlePlan
	err := row.Scan(
		&b.ID, &b.CompanyID, &b.PlanName, &b.PlanDescription, &b.PricingMode,
		&b.GlobalPricing, &b.IntervalDimension, &b.IntervalPricing,
		&b.ServicePlanIDs, &b.AddOnIDs, &b.BillingFrequency,
		&b.IsActive, &b.DisplayOrder, &b.CreatedAt, &b.UpdatedAt,
	)
	return b, err
}

// ListBundlePlans returns a company's bundles ordered for display.
func (r *Repository) ListBundlePlans(ctx context.Context, companyID uuid.UUID, activeOnly bool) ([]BundlePlan, error) {
	query := `SELECT` + bundlePlanCols + ` FROM bundle_plans WHERE company_id = $1`
	if activeOnly {
		query += ` AND is_active`
	}
	query += ` ORDER BY display_order, plan_name`

	rows, err := r.pool.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bundle plans: %w", err)
	}
	defer rows.Close()

	bundles := make([]BundlePlan, 0)
	for rows.Next() {
		b, err := scanBundlePlan(rows)
		if err != nil {
			return nil, err
		}
		bundles = append(bundles, b)
	}
	return bundles, rows.Err()
}

// GetBundlePlansByIDs batch-fetches bundles, keyed by id.
func (r *Repository) GetBundlePlansByIDs(ctx context.Context, companyID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]BundlePlan, error) {
	result := make(map[uuid.UUID]BundlePlan, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT`+bundlePlanCols+` FROM bundle_plans WHERE company_id = $1 AND id = ANY($2)
	`, companyID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to batch fetch bundle plans: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		b, err := scanBundlePlan(rows)
		if err != nil {
			return nil, err
		}
		result[b.ID] = b
	}
	return result, rows.Err()
}

// CreateBundlePlan inserts a bundle and returns it with generated fields.
func (r *Repository) CreateBundlePlan(ctx context.Context, b BundlePlan) (BundlePlan, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO bundle_plans (
			company_id, plan_name, plan_description, pricing_mode,
			global_pricing, interval_dimension, interval_pricing,
			service_plan_ids, add_on_ids, billing_frequency,
			is_active, display_order
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at
	`, b.CompanyID, b.PlanName, b.PlanDescription, b.PricingMode,
		b.GlobalPricing, b.IntervalDimension, b.IntervalPricing,
		b.ServicePlanIDs, b.AddOnIDs, b.BillingFrequency,
		b.IsActive, b.DisplayOrder,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return BundlePlan{}, fmt.Errorf("failed to insert bundle plan: %w", err)
	}
	return b, nil
}

// UpdateBundlePlan replaces a bundle's mutable fields.
func (r *Repository) UpdateBundlePlan(ctx context.Context, b BundlePlan) (BundlePlan, error) {
	err := r.pool.QueryRow(ctx, `
		UPDATE bundle_plans SET
			plan_name = $3, plan_description = $4, pricing_mode = $5,
			global_pricing = $6, interval_dimension = $7, interval_pricing = $8,
			service_plan_ids = $9, add_on_ids = $10, billing_frequency = $11,
			is_active = $12, display_order = $13, updated_at = now()
		WHERE id = $1 AND company_id = $2
		RETURNING created_at, updated_at
	`, b.ID, b.CompanyID, b.PlanName, b.PlanDescription, b.PricingMode,
		b.GlobalPricing, b.IntervalDimension, b.IntervalPricing,
		b.ServicePlanIDs, b.AddOnIDs, b.BillingFrequency,
		b.IsActive, b.DisplayOrder,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return BundlePlan{}, apperr.NotFound("bundle plan not found")
		}
		return BundlePlan{}, fmt.Errorf("failed to update bundle plan: %w", err)
	}
	return b, nil
}

// DeleteBundlePlan removes a bundle.
func (r *Repository) DeleteBundlePlan(ctx context.Context, companyID, bundleID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM bundle_plans WHERE id = $1 AND company_id = $2`, bundleID, companyID)
	if err != nil {
		return fmt.Errorf("failed to delete bundle plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("bundle plan not found")
	}
	return nil
}

// ── Add-on services ───────────────────────────────────────────────────────────

const addOnCols = `
	id, company_id, name, description, initial_price, recurring_price,
	is_active, display_order, created_at, updated_at`

func scanAddOn(row pgx.Row) (AddOnService, error) {
	var a AddOnService
	err := row.Scan(
		&a.ID, &a.CompanyID, &a.Name, &a.Description, &a.InitialPrice, &a.RecurringPrice,
		&a.IsActive, &a.DisplayOrder, &a.CreatedAt, &a.UpdatedAt,
	)
	return a, err
}

// ListAddOns returns a company's add-on services ordered for display.
func (r *Repository) ListAddOns(ctx context.Context, companyID uuid.UUID, activeOnly bool) ([]AddOnService, error) {
	query := `SELECT` + addOnCols + ` FROM addon_services WHERE company_id = $1`
	if activeOnly {
		query += ` AND is_active`
	}
	query += ` ORDER BY display_order, name`

	rows, err := r.pool.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list add-ons: %w", err)
	}
	defer rows.Close()

	addons := make([]AddOnService, 0)
	for rows.Next() {
		a, err := scanAddOn(rows)
		if err != nil {
			return nil, err
		}
		addons = append(addons, a)
	}
	return addons, rows.Err()
}

// GetAddOnsByIDs batch-fetches add-ons, keyed by id.
func (r *Repository) GetAddOnsByIDs(ctx context.Context, companyID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]AddOnService, error) {
	result := make(map[uuid.UUID]AddOnService, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT`+addOnCols+` FROM addon_services WHERE company_id = $1 AND id = ANY($2)
	`, companyID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to batch fetch add-ons: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		a, err := scanAddOn(rows)
		if err != nil {
			return nil, err
		}
		result[a.ID] = a
	}
	return result, rows.Err()
}

// CreateAddOn inserts an add-on service.
func (r *Repository) CreateAddOn(ctx context.Context, a AddOnService) (AddOnService, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO addon_services (company_id, name, description, initial_price, recurring_price, is_active, display_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, a.CompanyID, a.Name, a.Description, a.InitialPrice, a.RecurringPrice, a.IsActive, a.DisplayOrder).
		Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return AddOnService{}, fmt.Errorf("failed to insert add-on: %w", err)
	}
	return a, nil
}

// UpdateAddOn replaces an add-on's mutable fields.
func (r *Repository) UpdateAddOn(ctx context.Context, a AddOnService) (AddOnService, error) {
	err := r.pool.QueryRow(ctx, `
		UPDATE addon_services SET
			name = $3, description = $4, initial_price = $5, recurring_price = $6,
			is_active = $7, display_order = $8, updated_at = now()
		WHERE id = $1 AND company_id = $2
		RETURNING created_at, updated_at
	`, a.ID, a.CompanyID, a.Name, a.Description, a.InitialPrice, a.RecurringPrice, a.IsActive, a.DisplayOrder).
		Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return AddOnService{}, apperr.NotFound("add-on not found")
		}
		return AddOnService{}, fmt.Errorf("failed to update add-on: %w", err)
	}
	return a, nil
}

// DeleteAddOn removes an add-on service.
func (r *Repository) DeleteAddOn(ctx context.Context, companyID, addOnID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM addon_services WHERE id = $1 AND company_id = $2`, addOnID, companyID)
	if err != nil {
		return fmt.Errorf("failed to delete add-on: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("add-on not found")
	}
	return nil
}

// ── Discounts ─────────────────────────────────────────────────────────────────

const discountCols = `
	id, company_id, name, discount_type, discount_value,
	recurring_discount_type, recurring_discount_value, applies_to_price,
	is_active, created_at, updated_at`

func scanDiscount(row pgx.Row) (Discount, error) {
	var d Discount
	err := row.Scan(
		&d.ID, &d.CompanyID, &d.Name, &d.DiscountType, &d.DiscountValue,
		&d.RecurringDiscountType, &d.RecurringDiscountValue, &d.AppliesToPrice,
		&d.IsActive, &d.CreatedAt, &d.UpdatedAt,
	)
	return d, err
}

// ListDiscounts returns a company's discounts.
func (r *Repository) ListDiscounts(ctx context.Context, companyID uuid.UUID, activeOnly bool) ([]Discount, error) {
	query := `SELECT` + discountCols + ` FROM company_discounts WHERE company_id = $1`
	if activeOnly {
		query += ` AND is_active`
	}
	query += ` ORDER BY name`

	rows, err := r.pool.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list discounts: %w", err)
	}
	defer rows.Close()

	discounts := make([]Discount, 0)
	for rows.Next() {
		d, err := scanDiscount(rows)
		if err != nil {
			return nil, err
		}
		discounts = append(discounts, d)
	}
	return discounts, rows.Err()
}

// GetDiscountsByIDs batch-fetches discounts, keyed by id.
func (r *Repository) GetDiscountsByIDs(ctx context.Context, companyID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]Discount, error) {
	result := make(map[uuid.UUID]Discount, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT`+discountCols+` FROM company_discounts WHERE company_id = $1 AND id = ANY($2)
	`, companyID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to batch fetch discounts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		d, err := scanDiscount(rows)
		if err != nil {
			return nil, err
		}
		result[d.ID] = d
	}
	return result, rows.Err()
}

// CreateDiscount inserts a named discount.
func (r *Repository) CreateDiscount(ctx context.Context, d Discount) (Discount, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO company_discounts (
			company_id, name, discount_type, discount_value,
			recurring_discount_type, recurring_discount_value, applies_to_price, is_active
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, d.CompanyID, d.Name, d.DiscountType, d.DiscountValue,
		d.RecurringDiscountType, d.RecurringDiscountValue, d.AppliesToPrice, d.IsActive).
		Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return Discount{}, fmt.Errorf("failed to insert discount: %w", err)
	}
	return d, nil
}

// UpdateDiscount replaces a discount's mutable fields.
func (r *Repository) UpdateDiscount(ctx context.Context, d Discount) (Discount, error) {
	err := r.pool.QueryRow(ctx, `
		UPDATE company_discounts SET
			name = $3, discount_type = $4, discount_value = $5,
			recurring_discount_type = $6, recurring_discount_value = $7,
			applies_to_price = $8, is_active = $9, updated_at = now()
		WHERE id = $1 AND company_id = $2
		RETURNING created_at, updated_at
	`, d.ID, d.CompanyID, d.Name, d.DiscountType, d.DiscountValue,
		d.RecurringDiscountType, d.RecurringDiscountValue, d.AppliesToPrice, d.IsActive).
		Scan(&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Discount{}, apperr.NotFound("discount not found")
		}
		return Discount{}, fmt.Errorf("failed to update discount: %w", err)
	}
	return d, nil
}

// DeleteDiscount removes a discount.
func (r *Repository) DeleteDiscount(ctx context.Context, companyID, discountID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM company_discounts WHERE id = $1 AND company_id = $2`, discountID, companyID)
	if err != nil {
		return fmt.Errorf("failed to delete discount: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("discount not found")
	}
	return nil
}

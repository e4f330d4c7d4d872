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

// Company is the database model for a tenant company.
type Company struct {
	ID        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	Website   *string   `db:"website"`
	Phone     *string   `db:"phone"`
	Email     *string   `db:"email"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// PricingSettings is the database model for a company's size-bracket
// configuration.
type PricingSettings struct {
	CompanyID          uuid.UUID `db:"company_id"`
	BaseHomeSqFt       float64   `db:"base_home_sq_ft"`
	HomeSqFtInterval   float64   `db:"home_sq_ft_interval"`
	MaxHomeSqFt        float64   `db:"max_home_sq_ft"`
	BaseYardAcres      float64   `db:"base_yard_acres"`
	YardAcresInterval  float64   `db:"yard_acres_interval"`
	MaxYardAcres       float64   `db:"max_yard_acres"`
	BaseLinearFeet     float64   `db:"base_linear_feet"`
	LinearFeetInterval float64   `db:"linear_feet_interval"`
	MaxLinearFeet      float64   `db:"max_linear_feet"`
	UpdatedAt          time.Time `db:"updated_at"`
}

const companyNotFoundMsg = "company not found"

// Repository provides database operations for companies.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new companies repository
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByID fetches a company by id.
func (r *Repository) GetByID(ctx context.Context, companyID uuid.UUID) (Company, error) {
	var company Company
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, website, phone, email, created_at, updated_at
		FROM companies
		WHERE id = $1
	`, companyID).Scan(
		&company.ID,
		&company.Name,
		&company.Website,
		&company.Phone,
		&company.Email,
		&company.CreatedAt,
		&company.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Company{}, apperr.NotFound(companyNotFoundMsg)
		}
		return Company{}, fmt.Errorf("failed to fetch company: %w", err)
	}
	return company, nil
}

// GetPricingSettings fetches a company's bracket configuration. Returns
// apperr.NotFound when the company has never saved settings; the service
// layer substitutes defaults.
func (r *Repository) GetPricingSettings(ctx context.Context, companyID uuid.UUID) (PricingSettings, error) {
	var s PricingSettings
	err := r.pool.QueryRow(ctx, `
		SELECT company_id,
			base_home_sq_ft, home_sq_ft_interval, max_home_sq_ft,
			base_yard_acres, yard_acres_interval, max_yard_acres,
			base_linear_feet, linear_feet_interval, max_linear_feet,
			updated_at
		FROM company_pricing_settings
		WHERE company_id = $1
	`, companyID).Scan(
		&s.CompanyID,
		&s.BaseHomeSqFt, &s.HomeSqFtInterval, &s.MaxHomeSqFt,
		&s.BaseYardAcres, &s.YardAcresInterval, &s.MaxYardAcres,
		&s.BaseLinearFeet, &s.LinearFeetInterval, &s.MaxLinearFeet,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PricingSettings{}, apperr.NotFound("pricing settings not found")
		}
		return PricingSettings{}, fmt.Errorf("failed to fetch pricing settings: %w", err)
	}
	return s, nil
}

// UpsertPricingSettings replaces a company's bracket configuration.
func (r *Repository) UpsertPricingSettings(ctx context.Context, s PricingSettings) (PricingSettings, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO company_pricing_settings (
			company_id,
			base_home_sq_ft, home_sq_ft_interval, max_home_sq_ft,
			base_yard_acres, yard_acres_interval, max_yard_acres,
			base_linear_feet, linear_feet_interval, max_linear_feet,
			updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now())
		ON CONFLICT (company_id) DO UPDATE SET
			base_home_sq_ft = EXCLUDED.base_home_sq_ft,
			home_sq_ft_interval = EXCLUDED.home_sq_ft_interval,
			max_home_sq_ft = EXCLUDED.max_home_sq_ft,
			base_yard_acres = EXCLUDED.base_yard_acres,
			yard_acres_interval = EXCLUDED.yard_acres_interval,
			max_yard_acres = EXCLUDED.max_yard_acres,
			base_linear_feet = EXCLUDED.base_linear_feet,
			linear_feet_interval = EXCLUDED.linear_feet_interval,
			max_linear_feet = EXCLUDED.max_linear_feet,
			updated_at = now()
		RETURNING updated_at
	`, s.CompanyID,
		s.BaseHomeSqFt, s.HomeSqFtInterval, s.MaxHomeSqFt,
		s.BaseYardAcres, s.YardAcresInterval, s.MaxYardAcres,
		s.BaseLinearFeet, s.LinearFeetInterval, s.MaxLinearFeet,
	).Scan(&s.UpdatedAt)
	if err != nil {
		return PricingSettings{}, fmt.Errorf("failed to upsert pricing settings: %w", err)
	}
	return s, nil
}

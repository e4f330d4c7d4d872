// Package service holds the companies business logic.
package service

import (
	"context"

	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/companies/repository"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/companies/transport"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/pricing"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/apperr"

	"github.com/google/uuid"
)

// DefaultPricingSettings are used for companies that have never configured
// brackets, so quote pricing works out of the box.
var DefaultPricingSettings = pricing.Settings{
	BaseHomeSqFt:       1500,
	HomeSqFtInterval:   500,
	MaxHomeSqFt:        5000,
	BaseYardAcres:      0.25,
	YardAcresInterval:  0.25,
	MaxYardAcres:       2.0,
	BaseLinearFeet:     100,
	LinearFeetInterval: 50,
	MaxLinearFeet:      500,
}

// Service provides company profile and pricing-settings operations.
type Service struct {
	repo *repository.Repository
}

func New(repo *repository.Repository) *Service {
	return &Service{repo: repo}
}

// GetCompany returns the caller's company profile.
func (s *Service) GetCompany(ctx context.Context, companyID uuid.UUID) (repository.Company, error) {
	return s.repo.GetByID(ctx, companyID)
}

// GetPricingSettings returns a company's bracket configuration, falling back
// to defaults when none has been saved yet.
func (s *Service) GetPricingSettings(ctx context.Context, companyID uuid.UUID) (pricing.Settings, error) {
	stored, err := s.repo.GetPricingSettings(ctx, companyID)
	if err != nil {
		if apperr.GetKind(err) == apperr.KindNotFound {
			return DefaultPricingSettings, nil
		}
		return pricing.Settings{}, err
	}
	return toPricingSettings(stored), nil
}

// UpdatePricingSettings replaces a company's bracket configuration.
func (s *Service) UpdatePricingSettings(ctx context.Context, companyID uuid.UUID, req transport.UpdatePricingSettingsRequest) (pricing.Settings, error) {
	saved, err := s.repo.UpsertPricingSettings(ctx, repository.PricingSettings{
		CompanyID:          companyID,
		BaseHomeSqFt:       req.BaseHomeSqFt,
		HomeSqFtInterval:   req.HomeSqFtInterval,
		MaxHomeSqFt:        req.MaxHomeSqFt,
		BaseYardAcres:      req.BaseYardAcres,
		YardAcresInterval:  req.YardAcresInterval,
		MaxYardAcres:       req.MaxYardAcres,
		BaseLinearFeet:     req.BaseLinearFeet,
		LinearFeetInterval: req.LinearFeetInterval,
		MaxLinearFeet:      req.MaxLinearFeet,
	})
	if err != nil {
		return pricing.Settings{}, err
	}
	return toPricingSettings(saved), nil
}

func toPricingSettings(s repository.PricingSettings) pricing.Settings {
	return pricing.Settings{
		BaseHomeSqFt:       s.BaseHomeSqFt,
		HomeSqFtInterval:   s.HomeSqFtInterval,
		MaxHomeSqFt:        s.MaxHomeSqFt,
		BaseYardAcres:      s.BaseYardAcres,
		YardAcresInterval:  s.YardAcresInterval,
		MaxYardAcres:       s.MaxYardAcres,
		BaseLinearFeet:     s.BaseLinearFeet,
		LinearFeetInterval: s.LinearFeetInterval,
		MaxLinearFeet:      s.MaxLinearFeet,
	}
}

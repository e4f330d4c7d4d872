// Package transport defines request/response DTOs for the companies module.
package transport

import (
	"time"

	"github.com/google/uuid"
)

type CompanyResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Website   *string   `json:"website,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	Email     *string   `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type PricingSettingsResponse struct {
	BaseHomeSqFt       float64 `json:"base_home_sq_ft"`
	HomeSqFtInterval   float64 `json:"home_sq_ft_interval"`
	MaxHomeSqFt        float64 `json:"max_home_sq_ft"`
	BaseYardAcres      float64 `json:"base_yard_acres"`
	YardAcresInterval  float64 `json:"yard_acres_interval"`
	MaxYardAcres       float64 `json:"max_yard_acres"`
	BaseLinearFeet     float64 `json:"base_linear_feet"`
	LinearFeetInterval float64 `json:"linear_feet_interval"`
	MaxLinearFeet      float64 `json:"max_linear_feet"`
}

// UpdatePricingSettingsRequest replaces a company's bracket configuration.
// Each dimension's max must exceed its base; intervals must be positive.
type UpdatePricingSettingsRequest struct {
	BaseHomeSqFt       float64 `json:"base_home_sq_ft" validate:"required,gt=0"`
	HomeSqFtInterval   float64 `json:"home_sq_ft_interval" validate:"required,gt=0"`
	MaxHomeSqFt        float64 `json:"max_home_sq_ft" validate:"required,gtfield=BaseHomeSqFt"`
	BaseYardAcres      float64 `json:"base_yard_acres" validate:"required,gt=0"`
	YardAcresInterval  float64 `json:"yard_acres_interval" validate:"required,gt=0"`
	MaxYardAcres       float64 `json:"max_yard_acres" validate:"required,gtfield=BaseYardAcres"`
	BaseLinearFeet     float64 `json:"base_linear_feet" validate:"required,gt=0"`
	LinearFeetInterval float64 `json:"linear_feet_interval" validate:"required,gt=0"`
	MaxLinearFeet      float64 `json:"max_linear_feet" validate:"required,gtfield=BaseLinearFeet"`
}

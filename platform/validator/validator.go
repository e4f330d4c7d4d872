// Package validator wraps go-playground validation behind the narrow
// surface the handlers use. Handlers bind JSON first, then validate the
// bound struct's tags before touching the service layer.
package validator

import "github.com/go-playground/validator/v10"

// Validator validates transport structs against their validate tags.
type Validator struct {
	v *validator.Validate
}

// New creates a Validator with the standard tag set. The enum-style rules
// (quote status, cadence step types, workflow triggers) live in the tags
// themselves, so no custom validations are registered.
func New() *Validator {
	return &Validator{v: validator.New()}
}

// Struct validates a struct's tagged fields.
func (val *Validator) Struct(s interface{}) error {
	return val.v.Struct(s)
}

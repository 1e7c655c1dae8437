// Package dto provides data transfer objects for rotation HTTP handling.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/rotorlabs/rotor/internal/validation"
)

// RotateRequest contains the target of a rotation attempt.
type RotateRequest struct {
	Path        string `json:"path"`
	SecretClass string `json:"secret_class"`
}

// Validate checks if the rotate request is valid.
func (r *RotateRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Path, validation.Required, customValidation.NotBlank),
		validation.Field(&r.SecretClass, validation.Required, customValidation.NotBlank),
	)
}

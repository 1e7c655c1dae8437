// Package dto provides data transfer objects for secret store HTTP handling.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/rotorlabs/rotor/internal/validation"
)

// PutSecretRequest contains the field data for a new secret version.
type PutSecretRequest struct {
	Fields map[string]string `json:"fields"`
}

// Validate checks if the put secret request is valid.
func (r *PutSecretRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Fields,
			validation.Required,
			validation.Length(1, 0),
			validation.By(validateFieldKeys),
		),
	)
}

// validateFieldKeys rejects blank field names.
func validateFieldKeys(value interface{}) error {
	fields, ok := value.(map[string]string)
	if !ok {
		return validation.NewError("validation_fields_type", "must be a string map")
	}
	for key := range fields {
		if err := validation.Validate(key, customValidation.NotBlank); err != nil {
			return validation.NewError("validation_field_key", "field names cannot be blank")
		}
	}
	return nil
}

// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	authDomain "github.com/rotorlabs/rotor/internal/auth/domain"
	customValidation "github.com/rotorlabs/rotor/internal/validation"
)

// CreateRoleRequest contains the parameters for creating a new service role.
type CreateRoleRequest struct {
	Name     string                      `json:"name"`
	IsActive bool                        `json:"is_active"`
	Policies []authDomain.PolicyDocument `json:"policies"`
}

// Validate checks if the create role request is valid.
func (r *CreateRoleRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 255),
		),
		validation.Field(&r.Policies,
			validation.Required,
			validation.Each(validation.By(validatePolicyDocument)),
		),
	)
}

// UpdateRoleRequest contains the parameters for updating an existing role.
type UpdateRoleRequest struct {
	Name     string                      `json:"name"`
	IsActive bool                        `json:"is_active"`
	Policies []authDomain.PolicyDocument `json:"policies"`
}

// Validate checks if the update role request is valid.
func (r *UpdateRoleRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 255),
		),
		validation.Field(&r.Policies,
			validation.Required,
			validation.Each(validation.By(validatePolicyDocument)),
		),
	)
}

// validatePolicyDocument validates a single policy document.
func validatePolicyDocument(value interface{}) error {
	policy, ok := value.(authDomain.PolicyDocument)
	if !ok {
		return validation.NewError("validation_policy_type", "must be a policy document")
	}

	return validation.ValidateStruct(&policy,
		validation.Field(&policy.Path,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 500),
		),
		validation.Field(&policy.Capabilities,
			validation.Required,
			validation.Length(1, 0), // At least one capability
			validation.Each(validation.By(validateCapability)),
		),
	)
}

// validateCapability validates a single capability value.
func validateCapability(value interface{}) error {
	capability, ok := value.(authDomain.Capability)
	if !ok {
		return validation.NewError("validation_capability_type", "must be a capability")
	}

	switch capability {
	case authDomain.ReadCapability,
		authDomain.WriteCapability,
		authDomain.DeleteCapability,
		authDomain.ListCapability,
		authDomain.RotateCapability:
		return nil
	}

	return validation.NewError("validation_capability_value", "must be a known capability")
}

// AuthenticateRequest contains the role credential pair for the identity exchange.
type AuthenticateRequest struct {
	RoleID     string `json:"role_id"`
	RoleSecret string `json:"role_secret"`
}

// Validate checks if the authenticate request is valid.
func (r *AuthenticateRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.RoleID,
			validation.Required,
			customValidation.NotBlank,
		),
		validation.Field(&r.RoleSecret,
			validation.Required,
			customValidation.NotBlank,
		),
	)
}

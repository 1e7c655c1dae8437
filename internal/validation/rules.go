// Package validation provides custom validation rules for the application.
package validation

import (
	"regexp"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/rotorlabs/rotor/internal/errors"
)

var (
	// pathSegmentRegex matches a single path segment: letters, digits, dot, dash, underscore.
	pathSegmentRegex = regexp.MustCompile(`^[a-zA-Z0-9._\-]+$`)
)

// NotBlank validates that a string contains at least one non-whitespace character.
var NotBlank = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_not_blank", "must be a string")
	}
	if strings.TrimSpace(s) == "" {
		return validation.NewError("validation_not_blank", "cannot be blank")
	}
	return nil
})

// WrapValidationError wraps validation errors as domain ErrInvalidInput.
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// SecretPath validates a hierarchical secret path such as "shop/database/app-password".
// Paths must not be empty, must not start or end with a slash, and every segment
// must contain only letters, digits, dots, dashes, and underscores.
var SecretPath = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_secret_path", "path must be a string")
	}

	if s == "" {
		return validation.NewError("validation_secret_path", "path cannot be empty")
	}

	if strings.HasPrefix(s, "/") || strings.HasSuffix(s, "/") {
		return validation.NewError(
			"validation_secret_path",
			"path cannot start or end with a slash",
		)
	}

	for _, segment := range strings.Split(s, "/") {
		if segment == "" {
			return validation.NewError("validation_secret_path", "path cannot contain empty segments")
		}
		if !pathSegmentRegex.MatchString(segment) {
			return validation.NewError(
				"validation_secret_path",
				"path segments may contain only letters, digits, dots, dashes, and underscores",
			)
		}
	}

	return nil
})

// PolicyPath validates a policy path pattern. In addition to the secret path
// rules, "*" is allowed as a full wildcard or as a complete segment.
var PolicyPath = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_policy_path", "path must be a string")
	}

	if s == "" {
		return validation.NewError("validation_policy_path", "path cannot be empty")
	}

	if s == "*" {
		return nil
	}

	for _, segment := range strings.Split(s, "/") {
		if segment == "*" {
			continue
		}
		if segment == "" || !pathSegmentRegex.MatchString(segment) {
			return validation.NewError(
				"validation_policy_path",
				"path segments may contain only letters, digits, dots, dashes, underscores, or a full wildcard",
			)
		}
	}

	return nil
})

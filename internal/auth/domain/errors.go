package domain

import (
	"github.com/rotorlabs/rotor/internal/errors"
)

// Authentication and authorization errors.
var (
	// ErrRoleNotFound indicates a role with the specified ID was not found.
	ErrRoleNotFound = errors.Wrap(errors.ErrNotFound, "role not found")

	// ErrTokenNotFound indicates a token with the specified hash was not found.
	ErrTokenNotFound = errors.Wrap(errors.ErrNotFound, "token not found")

	// ErrInvalidCredentials indicates the role ID / role secret pair is unknown,
	// the secret is wrong, or the secret's single-use window has elapsed.
	// Deliberately generic to prevent role enumeration.
	ErrInvalidCredentials = errors.Wrap(errors.ErrUnauthorized, "invalid credentials")

	// ErrRoleLocked indicates the role exceeded the failed-attempt threshold
	// and is temporarily locked.
	ErrRoleLocked = errors.Wrap(errors.ErrLocked, "role locked")

	// ErrRoleInactive indicates the role exists but cannot authenticate.
	ErrRoleInactive = errors.Wrap(errors.ErrForbidden, "role inactive")

	// ErrRenewalExceeded indicates the session token reached its maximum absolute
	// lifetime; the caller must authenticate again.
	ErrRenewalExceeded = errors.Wrap(errors.ErrUnauthorized, "renewal exceeded maximum token lifetime")

	// ErrSignatureInvalid indicates an audit log's HMAC signature does not match
	// its contents, meaning the entry was tampered with or the signing key changed.
	ErrSignatureInvalid = errors.Wrap(errors.ErrInvalidInput, "audit log signature invalid")
)

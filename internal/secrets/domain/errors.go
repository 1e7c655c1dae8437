// Package domain defines core domain models and errors for the secret store.
package domain

import (
	"github.com/rotorlabs/rotor/internal/errors"
)

// Secret store error definitions.
var (
	// ErrSecretNotFound indicates no readable version exists at the specified
	// path (or path/version). Destroyed and soft-deleted versions read as
	// not found.
	ErrSecretNotFound = errors.Wrap(errors.ErrNotFound, "secret not found")

	// ErrVersionConflict indicates a concurrent put landed on the same version
	// number. The caller retries and receives the next consecutive number.
	ErrVersionConflict = errors.Wrap(errors.ErrConflict, "secret version conflict")

	// ErrActiveVersion indicates an attempt to delete or destroy the path's
	// active version. Only retained older versions can be removed; the active
	// version changes through a write or a committed rotation.
	ErrActiveVersion = errors.Wrap(errors.ErrConflict, "cannot remove the active secret version")
)

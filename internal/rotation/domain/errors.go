package domain

import (
	"github.com/rotorlabs/rotor/internal/errors"
)

// Rotation error definitions.
var (
	// ErrRotationNotFound indicates the rotation record does not exist.
	ErrRotationNotFound = errors.Wrap(errors.ErrNotFound, "rotation not found")

	// ErrRotationInProgress indicates another rotation holds the per-path lock
	// and the caller gave up waiting for it to reach a terminal state.
	ErrRotationInProgress = errors.Wrap(errors.ErrConflict, "rotation already in progress for path")

	// ErrUnknownSecretClass indicates no target adapter is registered for the
	// requested secret class.
	ErrUnknownSecretClass = errors.Wrap(errors.ErrInvalidInput, "unknown secret class")

	// ErrAdapterApplyFailed indicates the target adapter could not push the
	// new credential to the downstream system.
	ErrAdapterApplyFailed = errors.New("adapter apply failed")

	// ErrHealthCheckFailed indicates the health probe exhausted its retry
	// budget without the downstream system accepting the new credential.
	ErrHealthCheckFailed = errors.New("health check failed")

	// ErrRollbackFailed indicates reversal of an applied credential change
	// failed. Automation stops here; an operator must intervene using the
	// last-known-good credential preserved in the rotation record.
	ErrRollbackFailed = errors.New("rollback failed")

	// ErrInvalidTransition indicates a state machine move that is not legal.
	ErrInvalidTransition = errors.New("invalid rotation state transition")
)

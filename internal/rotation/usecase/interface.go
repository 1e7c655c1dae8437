// Package usecase implements the rotation orchestrator: the state machine
// that drives one credential change through generate, stage, apply, verify,
// and commit, rolling back on failure.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/rotorlabs/rotor/internal/auth/domain"
	rotationDomain "github.com/rotorlabs/rotor/internal/rotation/domain"
)

// RotationRepository defines persistence operations for rotation records.
type RotationRepository interface {
	// Create stores a new rotation record.
	Create(ctx context.Context, record *rotationDomain.RotationRecord) error

	// Update persists the record's current state and phase timestamps.
	Update(ctx context.Context, record *rotationDomain.RotationRecord) error

	// Get retrieves a rotation record by ID. Returns ErrRotationNotFound if not found.
	Get(ctx context.Context, recordID uuid.UUID) (*rotationDomain.RotationRecord, error)

	// List retrieves rotation records with pagination, newest first.
	List(ctx context.Context, offset, limit int) ([]*rotationDomain.RotationRecord, error)
}

// RotateInput carries one rotation request into the orchestrator.
type RotateInput struct {
	// Path addresses the secret to rotate.
	Path string

	// SecretClass selects the target adapter.
	SecretClass string

	// Role is the authenticated identity requesting the rotation. A nil role
	// or one without the rotate capability on the path fails pre-apply.
	Role *authDomain.Role

	// RequestedBy attributes the attempt in the rotation record and the new
	// secret version.
	RequestedBy string
}

// Settings bounds the orchestrator's phases and retry loops. Nothing is
// retried forever: the probe loop has a bounded attempt count and a bounded
// total wall-clock budget.
type Settings struct {
	// PhaseTimeout bounds each store, adapter, and probe call.
	PhaseTimeout time.Duration

	// ProbeAttempts is the maximum number of health probe attempts after apply.
	ProbeAttempts int

	// ProbeBackoff is the initial wait between probe attempts; it doubles
	// after every failure.
	ProbeBackoff time.Duration

	// ProbeBudget caps the total wall-clock time spent probing.
	ProbeBudget time.Duration
}

// RotationUseCase defines the orchestrator operations.
type RotationUseCase interface {
	// Rotate runs one rotation attempt to a terminal state and returns its
	// record. At most one attempt is in flight per path; a second request on
	// the same path blocks until the first concludes, then proceeds from the
	// now-current version. The returned error is nil only when the attempt
	// committed; for failed attempts the record's state and error text
	// describe the outcome alongside the returned error.
	Rotate(ctx context.Context, input *RotateInput) (*rotationDomain.RotationRecord, error)

	// Get retrieves a rotation record by ID.
	Get(ctx context.Context, recordID uuid.UUID) (*rotationDomain.RotationRecord, error)

	// List retrieves rotation records with pagination, newest first.
	List(ctx context.Context, offset, limit int) ([]*rotationDomain.RotationRecord, error)
}

// Package domain defines the rotation state machine and rotation records.
// A rotation drives one credential change through generate, stage, apply,
// verify, and commit, with automatic rollback on failure.
package domain

import (
	"time"

	"github.com/google/uuid"

	apperrors "github.com/rotorlabs/rotor/internal/errors"
)

// State is one phase of a rotation attempt.
type State string

const (
	// StateRequested is the initial state of every rotation attempt.
	StateRequested State = "requested"

	// StateAuthenticated means the requesting identity was validated.
	StateAuthenticated State = "authenticated"

	// StateGenerated means a replacement credential was generated and the
	// current value was read for later rollback.
	StateGenerated State = "generated"

	// StateStaged means the new value was written to the store as a new version.
	StateStaged State = "staged"

	// StateApplied means the target adapter pushed the new credential to the
	// live downstream system.
	StateApplied State = "applied"

	// StateVerified means the adapter's health probe confirmed the downstream
	// system accepts the new credential.
	StateVerified State = "verified"

	// StateCommitted is the terminal success state.
	StateCommitted State = "committed"

	// StateRolledBack is the terminal state after an automatic rollback: the
	// store's prior version is active again and the downstream system holds
	// its pre-attempt credential.
	StateRolledBack State = "rolled_back"

	// StateFailedPreApply is the terminal state for failures before any
	// downstream mutation. Nothing outside the store changed.
	StateFailedPreApply State = "failed_pre_apply"

	// StateRollbackFailed is the terminal state when reversal itself failed.
	// It requires operator intervention and is never retried automatically.
	StateRollbackFailed State = "rollback_failed"
)

// validTransitions maps each state to the states it may move to.
var validTransitions = map[State][]State{
	StateRequested:     {StateAuthenticated, StateFailedPreApply},
	StateAuthenticated: {StateGenerated, StateFailedPreApply},
	StateGenerated:     {StateStaged, StateFailedPreApply},
	StateStaged:        {StateApplied, StateRolledBack, StateRollbackFailed},
	StateApplied:       {StateVerified, StateRolledBack, StateRollbackFailed},
	StateVerified:      {StateCommitted},
}

// CanTransitionTo reports whether moving from s to next is legal.
func (s State) CanTransitionTo(next State) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether s concludes a rotation attempt.
func (s State) Terminal() bool {
	switch s {
	case StateCommitted, StateRolledBack, StateFailedPreApply, StateRollbackFailed:
		return true
	}
	return false
}

// Adapter and health probe outcomes recorded on a rotation record.
const (
	OutcomeOK        = "ok"
	OutcomeFailed    = "failed"
	OutcomeHealthy   = "healthy"
	OutcomeUnhealthy = "unhealthy"
)

// RotationRecord tracks one rotation attempt from request to terminal state.
// It is the audit evidence for the attempt and the rollback decision input.
// Immutable once the attempt concludes.
type RotationRecord struct {
	ID              uuid.UUID         `json:"id"`
	Path            string            `json:"path"`
	SecretClass     string            `json:"secret_class"`
	PreviousVersion uint              `json:"previous_version"`
	NewVersion      uint              `json:"new_version"`
	State           State             `json:"state"`
	AdapterOutcome  string            `json:"adapter_outcome"`
	HealthOutcome   string            `json:"health_outcome"`
	RequestedBy     string            `json:"requested_by"`
	Error           string            `json:"error"`
	LastKnownGood   map[string]string `json:"-"` // populated only on RollbackFailed, for operator recovery
	RequestedAt     time.Time         `json:"requested_at"`
	StagedAt        *time.Time        `json:"staged_at"`
	AppliedAt       *time.Time        `json:"applied_at"`
	VerifiedAt      *time.Time        `json:"verified_at"`
	FinishedAt      *time.Time        `json:"finished_at"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// NewRotationRecord creates a record in the Requested state.
func NewRotationRecord(path, secretClass, requestedBy string) *RotationRecord {
	now := time.Now().UTC()
	return &RotationRecord{
		ID:          uuid.Must(uuid.NewV7()),
		Path:        path,
		SecretClass: secretClass,
		State:       StateRequested,
		RequestedBy: requestedBy,
		RequestedAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Transition moves the record to the next state, stamping the phase timestamp.
// Returns ErrInvalidTransition when the move is not legal.
func (r *RotationRecord) Transition(next State) error {
	if !r.State.CanTransitionTo(next) {
		return apperrors.Wrapf(ErrInvalidTransition, "%s -> %s", r.State, next)
	}

	now := time.Now().UTC()
	switch next {
	case StateStaged:
		r.StagedAt = &now
	case StateApplied:
		r.AppliedAt = &now
	case StateVerified:
		r.VerifiedAt = &now
	}
	if next.Terminal() {
		r.FinishedAt = &now
	}

	r.State = next
	r.UpdatedAt = now
	return nil
}

package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/rotorlabs/rotor/internal/auth/domain"
	authUseCase "github.com/rotorlabs/rotor/internal/auth/usecase"
	"github.com/rotorlabs/rotor/internal/contextutil"
	apperrors "github.com/rotorlabs/rotor/internal/errors"
	"github.com/rotorlabs/rotor/internal/rotation/adapter"
	rotationDomain "github.com/rotorlabs/rotor/internal/rotation/domain"
	rotationService "github.com/rotorlabs/rotor/internal/rotation/service"
	secretsDomain "github.com/rotorlabs/rotor/internal/secrets/domain"
	secretsUseCase "github.com/rotorlabs/rotor/internal/secrets/usecase"
)

// rotationUseCase implements RotationUseCase.
type rotationUseCase struct {
	rotationRepo    RotationRepository
	secretUseCase   secretsUseCase.SecretUseCase
	registry        *adapter.Registry
	generator       rotationService.CredentialGenerator
	auditLogUseCase authUseCase.AuditLogUseCase
	settings        Settings
	logger          *slog.Logger

	// pathLocks holds one semaphore channel per path, serializing attempts.
	pathLocks sync.Map
}

// NewRotationUseCase creates the rotation orchestrator with required dependencies.
func NewRotationUseCase(
	rotationRepo RotationRepository,
	secretUseCase secretsUseCase.SecretUseCase,
	registry *adapter.Registry,
	generator rotationService.CredentialGenerator,
	auditLogUseCase authUseCase.AuditLogUseCase,
	settings Settings,
	logger *slog.Logger,
) RotationUseCase {
	// The probe loop runs at least once regardless of configuration.
	if settings.ProbeAttempts < 1 {
		settings.ProbeAttempts = 1
	}
	return &rotationUseCase{
		rotationRepo:    rotationRepo,
		secretUseCase:   secretUseCase,
		registry:        registry,
		generator:       generator,
		auditLogUseCase: auditLogUseCase,
		settings:        settings,
		logger:          logger,
	}
}

// Rotate runs one rotation attempt to a terminal state.
func (r *rotationUseCase) Rotate(
	ctx context.Context,
	input *RotateInput,
) (*rotationDomain.RotationRecord, error) {
	target, err := r.registry.Get(input.SecretClass)
	if err != nil {
		return nil, err
	}

	// At most one in-flight rotation per path; held for the full attempt.
	release, err := r.acquirePath(ctx, input.Path)
	if err != nil {
		return nil, err
	}
	defer release()

	record := rotationDomain.NewRotationRecord(input.Path, input.SecretClass, input.RequestedBy)
	if err := r.rotationRepo.Create(ctx, record); err != nil {
		return nil, err
	}
	r.auditTransition(ctx, input, record, authDomain.OutcomeSuccess)

	// Requested -> Authenticated
	if input.Role == nil || !input.Role.IsAllowed(input.Path, authDomain.RotateCapability) {
		return r.failPreApply(ctx, input, record,
			apperrors.Wrap(apperrors.ErrForbidden, "identity is not permitted to rotate this path"))
	}
	if err := r.advance(ctx, input, record, rotationDomain.StateAuthenticated); err != nil {
		return nil, err
	}

	// Authenticated -> Generated: read the current value for rollback and
	// generate the replacement.
	current, err := r.readCurrent(ctx, input.Path)
	if err != nil {
		return r.failPreApply(ctx, input, record, err)
	}
	newFields, err := r.generator.Generate(input.SecretClass, current.Fields)
	if err != nil {
		return r.failPreApply(ctx, input, record, err)
	}
	record.PreviousVersion = current.Version
	if err := r.advance(ctx, input, record, rotationDomain.StateGenerated); err != nil {
		return nil, err
	}

	// Generated -> Staged: write the new value as a new store version.
	staged, err := r.stage(ctx, input, newFields)
	if err != nil {
		return r.failPreApply(ctx, input, record, err)
	}
	record.NewVersion = staged.Version
	if err := r.advance(ctx, input, record, rotationDomain.StateStaged); err != nil {
		return nil, err
	}

	// Once apply begins, the attempt runs to a terminal state even if the
	// caller cancels; cancellation becomes a rollback, never a raw abort.
	detached := context.WithoutCancel(ctx)

	// A cancellation landing after Staged rolls the store back instead of
	// pushing an unverified credential downstream.
	if ctxErr := ctx.Err(); ctxErr != nil {
		if restoreErr := r.restoreStore(detached, record); restoreErr != nil {
			return r.finishRollbackFailed(detached, input, record, current.Fields, restoreErr)
		}
		return r.finishRolledBack(detached, input, record, ctxErr)
	}

	newCred := &adapter.Credential{Path: input.Path, Fields: newFields}
	prevCred := &adapter.Credential{Path: input.Path, Fields: current.Fields}

	// Staged -> Applied
	applyCtx, cancelApply := context.WithTimeout(detached, r.settings.PhaseTimeout)
	applyErr := target.Apply(applyCtx, newCred)
	cancelApply()
	if applyErr != nil {
		// The downstream system was never changed; restore the store only.
		record.AdapterOutcome = rotationDomain.OutcomeFailed
		if restoreErr := r.restoreStore(detached, record); restoreErr != nil {
			return r.finishRollbackFailed(detached, input, record, current.Fields, restoreErr)
		}
		return r.finishRolledBack(detached, input, record,
			apperrors.Wrap(rotationDomain.ErrAdapterApplyFailed, applyErr.Error()))
	}
	record.AdapterOutcome = rotationDomain.OutcomeOK
	if err := r.advance(detached, input, record, rotationDomain.StateApplied); err != nil {
		return nil, err
	}

	// Applied -> Verified
	if probeErr := r.probe(detached, target); probeErr != nil {
		record.HealthOutcome = rotationDomain.OutcomeUnhealthy

		// Both the downstream system and the store must be reverted here,
		// using the previous credential still held in memory.
		revertCtx, cancelRevert := context.WithTimeout(detached, r.settings.PhaseTimeout)
		revertErr := target.Revert(revertCtx, prevCred)
		cancelRevert()
		if revertErr != nil {
			return r.finishRollbackFailed(detached, input, record, current.Fields, revertErr)
		}
		if restoreErr := r.restoreStore(detached, record); restoreErr != nil {
			return r.finishRollbackFailed(detached, input, record, current.Fields, restoreErr)
		}
		return r.finishRolledBack(detached, input, record, probeErr)
	}
	record.HealthOutcome = rotationDomain.OutcomeHealthy
	if err := r.advance(detached, input, record, rotationDomain.StateVerified); err != nil {
		return nil, err
	}

	// Verified -> Committed: the staged version is already active in the
	// store; the demoted previous version is retained for the grace window.
	if err := r.advance(detached, input, record, rotationDomain.StateCommitted); err != nil {
		return nil, err
	}

	r.logger.Info("rotation committed",
		slog.String("path", record.Path),
		slog.String("secret_class", record.SecretClass),
		slog.Uint64("new_version", uint64(record.NewVersion)),
	)
	return record, nil
}

// Get retrieves a rotation record by ID.
func (r *rotationUseCase) Get(ctx context.Context, recordID uuid.UUID) (*rotationDomain.RotationRecord, error) {
	return r.rotationRepo.Get(ctx, recordID)
}

// List retrieves rotation records with pagination, newest first.
func (r *rotationUseCase) List(ctx context.Context, offset, limit int) ([]*rotationDomain.RotationRecord, error) {
	return r.rotationRepo.List(ctx, offset, limit)
}

// acquirePath takes the per-path semaphore, blocking while another attempt is
// in flight. A cancellation while another attempt holds the path returns
// ErrRotationInProgress; a cancellation with the path free returns the
// context's own error.
func (r *rotationUseCase) acquirePath(ctx context.Context, path string) (func(), error) {
	entry, _ := r.pathLocks.LoadOrStore(path, make(chan struct{}, 1))
	lock := entry.(chan struct{})
	select {
	case lock <- struct{}{}:
		if err := ctx.Err(); err != nil {
			<-lock
			return nil, err
		}
		return func() { <-lock }, nil
	case <-ctx.Done():
		select {
		case lock <- struct{}{}:
			// The path was free; the failure is the caller's cancellation.
			<-lock
			return nil, ctx.Err()
		default:
			return nil, rotationDomain.ErrRotationInProgress
		}
	}
}

// readCurrent reads the current active version within the phase timeout.
func (r *rotationUseCase) readCurrent(ctx context.Context, path string) (*secretsDomain.SecretVersion, error) {
	phaseCtx, cancel := context.WithTimeout(ctx, r.settings.PhaseTimeout)
	defer cancel()
	return r.secretUseCase.Get(phaseCtx, path)
}

// stage writes the new value as a new store version within the phase timeout.
func (r *rotationUseCase) stage(
	ctx context.Context,
	input *RotateInput,
	fields map[string]string,
) (*secretsDomain.SecretVersion, error) {
	phaseCtx, cancel := context.WithTimeout(ctx, r.settings.PhaseTimeout)
	defer cancel()
	return r.secretUseCase.Put(phaseCtx, input.Path, fields, "rotation:"+input.RequestedBy)
}

// restoreStore returns the store's prior version to active and destroys the
// staged one.
func (r *rotationUseCase) restoreStore(ctx context.Context, record *rotationDomain.RotationRecord) error {
	phaseCtx, cancel := context.WithTimeout(ctx, r.settings.PhaseTimeout)
	defer cancel()
	return r.secretUseCase.Restore(phaseCtx, record.Path, record.PreviousVersion, record.NewVersion)
}

// probe polls the adapter's health probe with bounded retries, doubling
// backoff, and a total wall-clock budget.
func (r *rotationUseCase) probe(ctx context.Context, target adapter.TargetAdapter) error {
	start := time.Now()
	backoff := r.settings.ProbeBackoff

	var lastErr error
	for attempt := 1; attempt <= r.settings.ProbeAttempts; attempt++ {
		probeCtx, cancel := context.WithTimeout(ctx, r.settings.PhaseTimeout)
		lastErr = target.HealthProbe(probeCtx)
		cancel()
		if lastErr == nil {
			return nil
		}

		r.logger.Warn("health probe failed",
			slog.Int("attempt", attempt),
			slog.Any("error", lastErr),
		)
		if attempt == r.settings.ProbeAttempts {
			break
		}
		if time.Since(start)+backoff > r.settings.ProbeBudget {
			break
		}
		time.Sleep(backoff)
		backoff *= 2
	}
	return apperrors.Wrap(rotationDomain.ErrHealthCheckFailed, lastErr.Error())
}

// advance moves the record to the next state, persists it, and audits the
// transition. Persistence failures are logged; the state machine still runs
// to its terminal state.
func (r *rotationUseCase) advance(
	ctx context.Context,
	input *RotateInput,
	record *rotationDomain.RotationRecord,
	next rotationDomain.State,
) error {
	if err := record.Transition(next); err != nil {
		return err
	}
	if err := r.rotationRepo.Update(ctx, record); err != nil {
		r.logger.Error("failed to persist rotation record",
			slog.String("rotation_id", record.ID.String()),
			slog.String("state", string(record.State)),
			slog.Any("error", err),
		)
	}
	r.auditTransition(ctx, input, record, authDomain.OutcomeSuccess)
	return nil
}

// failPreApply concludes the attempt before any downstream mutation.
func (r *rotationUseCase) failPreApply(
	ctx context.Context,
	input *RotateInput,
	record *rotationDomain.RotationRecord,
	cause error,
) (*rotationDomain.RotationRecord, error) {
	return r.finish(ctx, input, record, rotationDomain.StateFailedPreApply, cause)
}

// finishRolledBack concludes the attempt after a successful automatic rollback.
func (r *rotationUseCase) finishRolledBack(
	ctx context.Context,
	input *RotateInput,
	record *rotationDomain.RotationRecord,
	cause error,
) (*rotationDomain.RotationRecord, error) {
	return r.finish(ctx, input, record, rotationDomain.StateRolledBack, cause)
}

// finishRollbackFailed concludes the attempt when reversal itself failed.
// The last-known-good credential is preserved in the record for operator
// recovery; automation stops here.
func (r *rotationUseCase) finishRollbackFailed(
	ctx context.Context,
	input *RotateInput,
	record *rotationDomain.RotationRecord,
	lastKnownGood map[string]string,
	cause error,
) (*rotationDomain.RotationRecord, error) {
	record.LastKnownGood = lastKnownGood
	record, err := r.finish(ctx, input, record, rotationDomain.StateRollbackFailed,
		apperrors.Wrap(rotationDomain.ErrRollbackFailed, cause.Error()))

	r.logger.Error("rotation rollback failed, operator intervention required",
		slog.String("rotation_id", record.ID.String()),
		slog.String("path", record.Path),
		slog.Any("error", cause),
	)
	return record, err
}

// finish moves the record to a terminal failure state, persists it, and
// audits the outcome.
func (r *rotationUseCase) finish(
	ctx context.Context,
	input *RotateInput,
	record *rotationDomain.RotationRecord,
	terminal rotationDomain.State,
	cause error,
) (*rotationDomain.RotationRecord, error) {
	record.Error = cause.Error()
	if err := record.Transition(terminal); err != nil {
		return record, err
	}
	if err := r.rotationRepo.Update(ctx, record); err != nil {
		r.logger.Error("failed to persist rotation record",
			slog.String("rotation_id", record.ID.String()),
			slog.String("state", string(record.State)),
			slog.Any("error", err),
		)
	}
	r.auditTransition(ctx, input, record, authDomain.OutcomeFailure)
	return record, cause
}

// auditTransition appends one audit entry for the record's current state.
func (r *rotationUseCase) auditTransition(
	ctx context.Context,
	input *RotateInput,
	record *rotationDomain.RotationRecord,
	outcome authDomain.Outcome,
) {
	roleID := uuid.Nil
	if input.Role != nil {
		roleID = input.Role.ID
	}

	metadata := map[string]any{
		"rotation_id": record.ID.String(),
		"state":       string(record.State),
	}
	if record.Error != "" {
		metadata["reason"] = record.Error
	}

	if err := r.auditLogUseCase.Create(
		ctx,
		contextutil.GetRequestID(ctx),
		roleID,
		authDomain.OpRotation,
		record.Path,
		outcome,
		metadata,
	); err != nil {
		r.logger.Error("failed to write audit log entry",
			slog.String("rotation_id", record.ID.String()),
			slog.Any("error", err),
		)
	}
}

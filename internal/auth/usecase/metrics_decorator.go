package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/rotorlabs/rotor/internal/auth/domain"
	"github.com/rotorlabs/rotor/internal/metrics"
)

// roleUseCaseWithMetrics decorates RoleUseCase with metrics instrumentation.
type roleUseCaseWithMetrics struct {
	next    RoleUseCase
	metrics metrics.BusinessMetrics
}

// NewRoleUseCaseWithMetrics wraps a RoleUseCase with metrics recording.
func NewRoleUseCaseWithMetrics(useCase RoleUseCase, m metrics.BusinessMetrics) RoleUseCase {
	return &roleUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Create records metrics for role creation operations.
func (r *roleUseCaseWithMetrics) Create(
	ctx context.Context,
	createRoleInput *authDomain.CreateRoleInput,
) (*authDomain.CreateRoleOutput, error) {
	start := time.Now()
	output, err := r.next.Create(ctx, createRoleInput)

	status := "success"
	if err != nil {
		status = "error"
	}

	r.metrics.RecordOperation(ctx, "auth", "role_create", status)
	r.metrics.RecordDuration(ctx, "auth", "role_create", time.Since(start), status)

	return output, err
}

// Update records metrics for role update operations.
func (r *roleUseCaseWithMetrics) Update(
	ctx context.Context,
	roleID uuid.UUID,
	updateRoleInput *authDomain.UpdateRoleInput,
) error {
	start := time.Now()
	err := r.next.Update(ctx, roleID, updateRoleInput)

	status := "success"
	if err != nil {
		status = "error"
	}

	r.metrics.RecordOperation(ctx, "auth", "role_update", status)
	r.metrics.RecordDuration(ctx, "auth", "role_update", time.Since(start), status)

	return err
}

// Get records metrics for role retrieval operations.
func (r *roleUseCaseWithMetrics) Get(ctx context.Context, roleID uuid.UUID) (*authDomain.Role, error) {
	start := time.Now()
	role, err := r.next.Get(ctx, roleID)

	status := "success"
	if err != nil {
		status = "error"
	}

	r.metrics.RecordOperation(ctx, "auth", "role_get", status)
	r.metrics.RecordDuration(ctx, "auth", "role_get", time.Since(start), status)

	return role, err
}

// Delete records metrics for role soft-delete operations.
func (r *roleUseCaseWithMetrics) Delete(ctx context.Context, roleID uuid.UUID) error {
	start := time.Now()
	err := r.next.Delete(ctx, roleID)

	status := "success"
	if err != nil {
		status = "error"
	}

	r.metrics.RecordOperation(ctx, "auth", "role_delete", status)
	r.metrics.RecordDuration(ctx, "auth", "role_delete", time.Since(start), status)

	return err
}

// RotateSecret records metrics for role secret rotation operations.
func (r *roleUseCaseWithMetrics) RotateSecret(
	ctx context.Context,
	roleID uuid.UUID,
) (*authDomain.CreateRoleOutput, error) {
	start := time.Now()
	output, err := r.next.RotateSecret(ctx, roleID)

	status := "success"
	if err != nil {
		status = "error"
	}

	r.metrics.RecordOperation(ctx, "auth", "role_rotate_secret", status)
	r.metrics.RecordDuration(ctx, "auth", "role_rotate_secret", time.Since(start), status)

	return output, err
}

// tokenUseCaseWithMetrics decorates TokenUseCase with metrics instrumentation.
type tokenUseCaseWithMetrics struct {
	next    TokenUseCase
	metrics metrics.BusinessMetrics
}

// NewTokenUseCaseWithMetrics wraps a TokenUseCase with metrics recording.
func NewTokenUseCaseWithMetrics(useCase TokenUseCase, m metrics.BusinessMetrics) TokenUseCase {
	return &tokenUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Authenticate records metrics for identity exchange operations.
func (t *tokenUseCaseWithMetrics) Authenticate(
	ctx context.Context,
	authenticateInput *authDomain.AuthenticateInput,
) (*authDomain.AuthenticateOutput, error) {
	start := time.Now()
	output, err := t.next.Authenticate(ctx, authenticateInput)

	status := "success"
	if err != nil {
		status = "error"
	}

	t.metrics.RecordOperation(ctx, "auth", "authenticate", status)
	t.metrics.RecordDuration(ctx, "auth", "authenticate", time.Since(start), status)

	return output, err
}

// Renew records metrics for token renewal operations.
func (t *tokenUseCaseWithMetrics) Renew(
	ctx context.Context,
	tokenHash string,
) (*authDomain.RenewOutput, error) {
	start := time.Now()
	output, err := t.next.Renew(ctx, tokenHash)

	status := "success"
	if err != nil {
		status = "error"
	}

	t.metrics.RecordOperation(ctx, "auth", "renew", status)
	t.metrics.RecordDuration(ctx, "auth", "renew", time.Since(start), status)

	return output, err
}

// AuthenticateToken records metrics for token validation operations.
func (t *tokenUseCaseWithMetrics) AuthenticateToken(
	ctx context.Context,
	tokenHash string,
) (*authDomain.Role, error) {
	start := time.Now()
	role, err := t.next.AuthenticateToken(ctx, tokenHash)

	status := "success"
	if err != nil {
		status = "error"
	}

	t.metrics.RecordOperation(ctx, "auth", "authenticate_token", status)
	t.metrics.RecordDuration(ctx, "auth", "authenticate_token", time.Since(start), status)

	return role, err
}

// DeleteExpired records metrics for expired token cleanup operations.
func (t *tokenUseCaseWithMetrics) DeleteExpired(ctx context.Context) (int64, error) {
	start := time.Now()
	deleted, err := t.next.DeleteExpired(ctx)

	status := "success"
	if err != nil {
		status = "error"
	}

	t.metrics.RecordOperation(ctx, "auth", "delete_expired_tokens", status)
	t.metrics.RecordDuration(ctx, "auth", "delete_expired_tokens", time.Since(start), status)

	return deleted, err
}

package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/rotorlabs/rotor/internal/auth/domain"
	authService "github.com/rotorlabs/rotor/internal/auth/service"
	apperrors "github.com/rotorlabs/rotor/internal/errors"
)

// verifyPageSize is the batch size used by Verify when sweeping the log.
const verifyPageSize = 500

// auditLogUseCase implements AuditLogUseCase for recording and verifying
// signed audit logs.
type auditLogUseCase struct {
	auditLogRepo AuditLogRepository
	auditSigner  authService.AuditSigner
	signingRoot  []byte
}

// Create signs and persists one audit log entry. Generates a unique UUIDv7
// identifier and timestamp. The metadata parameter is optional and can be nil.
func (a *auditLogUseCase) Create(
	ctx context.Context,
	requestID uuid.UUID,
	roleID uuid.UUID,
	operation string,
	path string,
	outcome authDomain.Outcome,
	metadata map[string]any,
) error {
	auditLog := &authDomain.AuditLog{
		ID:        uuid.Must(uuid.NewV7()),
		RequestID: requestID,
		RoleID:    roleID,
		Operation: operation,
		Path:      path,
		Outcome:   outcome,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}

	signature, err := a.auditSigner.Sign(a.signingRoot, auditLog)
	if err != nil {
		return apperrors.Wrap(err, "failed to sign audit log")
	}
	auditLog.Signature = signature

	if err := a.auditLogRepo.Create(ctx, auditLog); err != nil {
		return apperrors.Wrap(err, "failed to create audit log")
	}

	return nil
}

// List retrieves audit logs ordered newest first with pagination.
func (a *auditLogUseCase) List(ctx context.Context, offset, limit int) ([]*authDomain.AuditLog, error) {
	auditLogs, err := a.auditLogRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit logs")
	}

	return auditLogs, nil
}

// Verify re-computes signatures for entries created at or after the cutoff.
// Entries whose signature does not match are reported in the result; any other
// signing error aborts the sweep.
func (a *auditLogUseCase) Verify(ctx context.Context, cutoff time.Time) (*VerifyResult, error) {
	result := &VerifyResult{}

	for offset := 0; ; offset += verifyPageSize {
		auditLogs, err := a.auditLogRepo.ListAfter(ctx, cutoff, offset, verifyPageSize)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to list audit logs for verification")
		}

		for _, auditLog := range auditLogs {
			result.Checked++

			err := a.auditSigner.Verify(a.signingRoot, auditLog)
			if err != nil {
				if errors.Is(err, authDomain.ErrSignatureInvalid) {
					result.Invalid++
					result.Tampered = append(result.Tampered, auditLog.ID)
					continue
				}
				return nil, apperrors.Wrap(err, "failed to verify audit log signature")
			}
		}

		if len(auditLogs) < verifyPageSize {
			break
		}
	}

	return result, nil
}

// NewAuditLogUseCase creates a new AuditLogUseCase with the provided dependencies.
// The signingRoot is the unwrapped root key; the signer derives a dedicated
// signing key from it so encryption and signing usage stay separated.
func NewAuditLogUseCase(
	auditLogRepo AuditLogRepository,
	auditSigner authService.AuditSigner,
	signingRoot []byte,
) AuditLogUseCase {
	return &auditLogUseCase{
		auditLogRepo: auditLogRepo,
		auditSigner:  auditSigner,
		signingRoot:  signingRoot,
	}
}

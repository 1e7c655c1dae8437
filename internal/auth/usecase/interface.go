// Package usecase defines business logic interfaces for authentication and authorization operations.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/rotorlabs/rotor/internal/auth/domain"
)

// RoleRepository defines persistence operations for service roles.
// Implementations must support transaction-aware operations via context propagation.
type RoleRepository interface {
	// Create stores a new role in the repository.
	Create(ctx context.Context, role *authDomain.Role) error

	// Update modifies an existing role in the repository.
	Update(ctx context.Context, role *authDomain.Role) error

	// Get retrieves a role by ID. Returns ErrRoleNotFound if not found.
	Get(ctx context.Context, roleID uuid.UUID) (*authDomain.Role, error)
}

// TokenRepository defines persistence operations for session tokens.
// Implementations must support transaction-aware operations via context propagation.
type TokenRepository interface {
	// Create stores a new token in the repository.
	Create(ctx context.Context, token *authDomain.Token) error

	// Update modifies an existing token in the repository.
	Update(ctx context.Context, token *authDomain.Token) error

	// Get retrieves a token by ID. Returns ErrTokenNotFound if not found.
	Get(ctx context.Context, tokenID uuid.UUID) (*authDomain.Token, error)

	GetByTokenHash(ctx context.Context, tokenHash string) (*authDomain.Token, error)

	// DeleteExpired removes tokens that expired before the given timestamp
	// and returns the number of deleted rows.
	DeleteExpired(ctx context.Context, olderThan time.Time) (int64, error)
}

// AuditLogRepository defines persistence operations for the append-only audit log.
type AuditLogRepository interface {
	Create(ctx context.Context, auditLog *authDomain.AuditLog) error

	List(ctx context.Context, offset, limit int) ([]*authDomain.AuditLog, error)

	ListAfter(ctx context.Context, cutoff time.Time, offset, limit int) ([]*authDomain.AuditLog, error)
}

// RoleUseCase defines business logic operations for managing service roles.
// It orchestrates role lifecycle including secret generation, policy management,
// and soft deletion while maintaining audit history.
type RoleUseCase interface {
	// Create generates a new role with a cryptographically secure role secret.
	// The secret is hashed with Argon2id before storage and expires at the end
	// of the configured single-use window.
	//
	// Returns the role ID and plain text secret. The plain secret is only returned
	// once and should be securely transmitted to the consuming service.
	Create(
		ctx context.Context,
		createRoleInput *authDomain.CreateRoleInput,
	) (*authDomain.CreateRoleOutput, error)

	// Update modifies an existing role's configuration including name, active status,
	// and authorization policies. The role ID and secret remain unchanged.
	//
	// Returns ErrRoleNotFound if the specified role doesn't exist.
	Update(ctx context.Context, roleID uuid.UUID, updateRoleInput *authDomain.UpdateRoleInput) error

	// Get retrieves a role by ID including its hashed secret and authorization policies.
	//
	// Returns ErrRoleNotFound if the specified role doesn't exist.
	Get(ctx context.Context, roleID uuid.UUID) (*authDomain.Role, error)

	// Delete performs a soft delete by setting IsActive to false, preventing
	// authentication while preserving the role record for audit purposes.
	//
	// Returns ErrRoleNotFound if the specified role doesn't exist.
	Delete(ctx context.Context, roleID uuid.UUID) error

	// RotateSecret replaces the role's secret with a freshly generated one and
	// restarts the single-use window. Existing session tokens are unaffected.
	//
	// Returns the new plain secret, which is only returned once.
	RotateSecret(ctx context.Context, roleID uuid.UUID) (*authDomain.CreateRoleOutput, error)
}

// TokenUseCase defines the identity exchange: role credentials in, short-lived
// session tokens out. Every authentication attempt is audited regardless of outcome.
type TokenUseCase interface {
	// Authenticate exchanges a role credential pair for a new session token.
	//
	// Returns ErrInvalidCredentials for unknown roles, wrong secrets, and expired
	// role secrets (generic to prevent enumeration), ErrRoleLocked when the role
	// exceeded the failed-attempt threshold, and ErrRoleInactive for disabled roles.
	Authenticate(
		ctx context.Context,
		authenticateInput *authDomain.AuthenticateInput,
	) (*authDomain.AuthenticateOutput, error)

	// Renew extends a session token's expiry by the configured TTL, capped at the
	// token's issue time plus the maximum absolute lifetime.
	//
	// Returns ErrRenewalExceeded when the token already reached its absolute
	// lifetime and ErrInvalidCredentials for unknown, expired, or revoked tokens.
	Renew(ctx context.Context, tokenHash string) (*authDomain.RenewOutput, error)

	// AuthenticateToken validates a session token hash and returns the associated
	// role. Used by the HTTP authentication middleware on every request.
	AuthenticateToken(ctx context.Context, tokenHash string) (*authDomain.Role, error)

	// DeleteExpired removes session tokens that expired before now and returns
	// the number of deleted rows.
	DeleteExpired(ctx context.Context) (int64, error)
}

// AuditLogUseCase records and reads signed audit log entries.
type AuditLogUseCase interface {
	// Create signs and persists one audit log entry.
	Create(
		ctx context.Context,
		requestID uuid.UUID,
		roleID uuid.UUID,
		operation string,
		path string,
		outcome authDomain.Outcome,
		metadata map[string]any,
	) error

	// List retrieves audit logs with pagination, newest first.
	List(ctx context.Context, offset, limit int) ([]*authDomain.AuditLog, error)

	// Verify re-computes signatures for entries created at or after the cutoff
	// and returns the verification summary.
	Verify(ctx context.Context, cutoff time.Time) (*VerifyResult, error)
}

// VerifyResult summarizes an audit log signature verification sweep.
type VerifyResult struct {
	Checked  int         // Total entries verified
	Invalid  int         // Entries whose signature did not match
	Tampered []uuid.UUID // IDs of entries that failed verification
}

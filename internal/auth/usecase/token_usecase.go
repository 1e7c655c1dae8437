package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/rotorlabs/rotor/internal/auth/domain"
	authService "github.com/rotorlabs/rotor/internal/auth/service"
	"github.com/rotorlabs/rotor/internal/config"
	"github.com/rotorlabs/rotor/internal/contextutil"
)

// tokenUseCase implements TokenUseCase for the identity exchange.
type tokenUseCase struct {
	config          *config.Config
	roleRepo        RoleRepository
	tokenRepo       TokenRepository
	secretService   authService.SecretService
	tokenService    authService.TokenService
	auditLogUseCase AuditLogUseCase
}

// Authenticate exchanges a role credential pair for a new session token.
//
// This method:
// 1. Validates the role exists, is active, and is not locked out
// 2. Verifies the role secret matches and its single-use window has not elapsed
// 3. On failure, increments the failed-attempt counter and locks the role when
//    the threshold is reached
// 4. On success, resets the failed-attempt state and issues a token whose
//    issue time anchors the maximum absolute lifetime
// 5. Writes one audit log entry per attempt regardless of outcome
//
// Security Notes:
//   - Returns ErrInvalidCredentials for non-existent roles, wrong secrets, and
//     expired role secrets to prevent role enumeration
//   - Returns ErrRoleLocked while the lockout window is active
//   - The plain token is only returned once and should be transmitted securely
func (t *tokenUseCase) Authenticate(
	ctx context.Context,
	authenticateInput *authDomain.AuthenticateInput,
) (*authDomain.AuthenticateOutput, error) {
	now := time.Now().UTC()

	// Get the role by ID
	role, err := t.roleRepo.Get(ctx, authenticateInput.RoleID)
	if err != nil {
		// If role not found, return generic error to prevent enumeration
		if errors.Is(err, authDomain.ErrRoleNotFound) {
			t.auditAttempt(ctx, authenticateInput.RoleID, authDomain.OutcomeDenied, "unknown_role")
			return nil, authDomain.ErrInvalidCredentials
		}
		return nil, err
	}

	// Check the lockout window before touching the secret
	if role.IsLocked(now) {
		t.auditAttempt(ctx, role.ID, authDomain.OutcomeDenied, "role_locked")
		return nil, authDomain.ErrRoleLocked
	}

	// Check if role is active
	if !role.IsActive {
		t.auditAttempt(ctx, role.ID, authDomain.OutcomeDenied, "role_inactive")
		return nil, authDomain.ErrRoleInactive
	}

	// An expired role secret is indistinguishable from a wrong one
	if role.SecretExpired(now) {
		t.auditAttempt(ctx, role.ID, authDomain.OutcomeDenied, "secret_expired")
		return nil, authDomain.ErrInvalidCredentials
	}

	// Verify the role secret
	if !t.secretService.CompareSecret(authenticateInput.RoleSecret, role.SecretHash) {
		return nil, t.recordFailedAttempt(ctx, role, now)
	}

	// Successful authentication clears prior failed-attempt state
	if role.FailedAttempts > 0 || role.LockedUntil != nil {
		role.FailedAttempts = 0
		role.LockedUntil = nil
		if err := t.roleRepo.Update(ctx, role); err != nil {
			return nil, err
		}
	}

	// Generate a new token
	plainToken, tokenHash, err := t.tokenService.GenerateToken()
	if err != nil {
		return nil, err
	}

	token := &authDomain.Token{
		ID:        uuid.Must(uuid.NewV7()),
		TokenHash: tokenHash,
		RoleID:    role.ID,
		IssuedAt:  now,
		ExpiresAt: now.Add(t.config.TokenTTL),
		RevokedAt: nil,
		CreatedAt: now,
	}

	if err := t.tokenRepo.Create(ctx, token); err != nil {
		return nil, err
	}

	if err := t.auditLogUseCase.Create(
		ctx,
		contextutil.GetRequestID(ctx),
		role.ID,
		authDomain.OpAuthenticate,
		"",
		authDomain.OutcomeSuccess,
		nil,
	); err != nil {
		return nil, err
	}

	return &authDomain.AuthenticateOutput{
		PlainToken: plainToken,
		TTL:        t.config.TokenTTL,
	}, nil
}

// recordFailedAttempt increments the role's failed-attempt counter, locking the
// role when the configured threshold is reached. Returns the error the caller
// should surface: ErrRoleLocked when this attempt triggered the lockout,
// ErrInvalidCredentials otherwise.
func (t *tokenUseCase) recordFailedAttempt(
	ctx context.Context,
	role *authDomain.Role,
	now time.Time,
) error {
	role.FailedAttempts++

	locked := role.FailedAttempts >= t.config.LockoutMaxAttempts
	if locked {
		lockedUntil := now.Add(t.config.LockoutDuration)
		role.LockedUntil = &lockedUntil
	}

	if err := t.roleRepo.Update(ctx, role); err != nil {
		return err
	}

	if locked {
		t.auditAttempt(ctx, role.ID, authDomain.OutcomeDenied, "lockout_triggered")
		return authDomain.ErrRoleLocked
	}

	t.auditAttempt(ctx, role.ID, authDomain.OutcomeDenied, "invalid_secret")
	return authDomain.ErrInvalidCredentials
}

// auditAttempt records a denied authentication attempt. Audit failures on the
// denial path must not mask the authentication error being returned.
func (t *tokenUseCase) auditAttempt(
	ctx context.Context,
	roleID uuid.UUID,
	outcome authDomain.Outcome,
	reason string,
) {
	_ = t.auditLogUseCase.Create(
		ctx,
		contextutil.GetRequestID(ctx),
		roleID,
		authDomain.OpAuthenticate,
		"",
		outcome,
		map[string]any{"reason": reason},
	)
}

// Renew extends a session token's expiry by the configured TTL, capped at the
// token's issue time plus the maximum absolute lifetime.
//
// The renewed expiry is min(now + TTL, IssuedAt + TokenMaxLifetime). When the
// token already reached its absolute lifetime cap the renewal is refused with
// ErrRenewalExceeded and the caller must authenticate again.
func (t *tokenUseCase) Renew(ctx context.Context, tokenHash string) (*authDomain.RenewOutput, error) {
	now := time.Now().UTC()

	token, err := t.tokenRepo.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, authDomain.ErrTokenNotFound) {
			return nil, authDomain.ErrInvalidCredentials
		}
		return nil, err
	}

	if token.Expired(now) || token.Revoked() {
		return nil, authDomain.ErrInvalidCredentials
	}

	maxExpiry := token.IssuedAt.Add(t.config.TokenMaxLifetime)

	newExpiry := now.Add(t.config.TokenTTL)
	if newExpiry.After(maxExpiry) {
		newExpiry = maxExpiry
	}

	// A renewal that cannot move the expiry forward means the token already
	// sits at its absolute lifetime cap
	if !newExpiry.After(token.ExpiresAt) {
		t.auditRenew(ctx, token.RoleID, authDomain.OutcomeDenied)
		return nil, authDomain.ErrRenewalExceeded
	}

	token.ExpiresAt = newExpiry
	if err := t.tokenRepo.Update(ctx, token); err != nil {
		return nil, err
	}

	if err := t.auditLogUseCase.Create(
		ctx,
		contextutil.GetRequestID(ctx),
		token.RoleID,
		authDomain.OpRenew,
		"",
		authDomain.OutcomeSuccess,
		nil,
	); err != nil {
		return nil, err
	}

	return &authDomain.RenewOutput{
		TTL: newExpiry.Sub(now),
	}, nil
}

func (t *tokenUseCase) auditRenew(ctx context.Context, roleID uuid.UUID, outcome authDomain.Outcome) {
	_ = t.auditLogUseCase.Create(
		ctx,
		contextutil.GetRequestID(ctx),
		roleID,
		authDomain.OpRenew,
		"",
		outcome,
		map[string]any{"reason": "renewal_exceeded"},
	)
}

// AuthenticateToken validates a session token hash and returns the associated role.
//
// Returns ErrInvalidCredentials for token not found, expired, or revoked to
// prevent enumeration, and ErrRoleInactive if the role was disabled after the
// token was issued. Token validation itself is not audited; the authenticated
// operation produces the audit entry.
func (t *tokenUseCase) AuthenticateToken(ctx context.Context, tokenHash string) (*authDomain.Role, error) {
	now := time.Now().UTC()

	token, err := t.tokenRepo.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, authDomain.ErrTokenNotFound) {
			return nil, authDomain.ErrInvalidCredentials
		}
		return nil, err
	}

	if token.Expired(now) || token.Revoked() {
		return nil, authDomain.ErrInvalidCredentials
	}

	role, err := t.roleRepo.Get(ctx, token.RoleID)
	if err != nil {
		// Shouldn't happen due to FK, but handle gracefully
		if errors.Is(err, authDomain.ErrRoleNotFound) {
			return nil, authDomain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !role.IsActive {
		return nil, authDomain.ErrRoleInactive
	}

	return role, nil
}

// DeleteExpired removes session tokens that expired before now.
func (t *tokenUseCase) DeleteExpired(ctx context.Context) (int64, error) {
	return t.tokenRepo.DeleteExpired(ctx, time.Now().UTC())
}

// NewTokenUseCase creates a new TokenUseCase with the provided dependencies.
func NewTokenUseCase(
	config *config.Config,
	roleRepo RoleRepository,
	tokenRepo TokenRepository,
	secretService authService.SecretService,
	tokenService authService.TokenService,
	auditLogUseCase AuditLogUseCase,
) TokenUseCase {
	return &tokenUseCase{
		config:          config,
		roleRepo:        roleRepo,
		tokenRepo:       tokenRepo,
		secretService:   secretService,
		tokenService:    tokenService,
		auditLogUseCase: auditLogUseCase,
	}
}

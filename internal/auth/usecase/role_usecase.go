// Package usecase implements business logic orchestration for authentication operations.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/rotorlabs/rotor/internal/auth/domain"
	authService "github.com/rotorlabs/rotor/internal/auth/service"
	"github.com/rotorlabs/rotor/internal/config"
)

// roleUseCase implements RoleUseCase interface for managing service roles.
type roleUseCase struct {
	config        *config.Config
	roleRepo      RoleRepository
	secretService authService.SecretService
}

// Create generates a new role with a cryptographically secure secret.
//
// The plain secret is only returned once and should be transmitted securely to
// the consuming service. The Argon2id hash is stored in the database, and the
// secret expires at the end of the configured single-use window whether or not
// it has been used.
func (r *roleUseCase) Create(
	ctx context.Context,
	createRoleInput *authDomain.CreateRoleInput,
) (*authDomain.CreateRoleOutput, error) {
	// Generate a new secret pair
	plainSecret, hashedSecret, err := r.secretService.GenerateSecret()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	role := &authDomain.Role{
		ID:              uuid.Must(uuid.NewV7()),
		SecretHash:      hashedSecret,
		SecretExpiresAt: now.Add(r.config.RoleSecretWindow),
		Name:            createRoleInput.Name,
		IsActive:        createRoleInput.IsActive,
		Policies:        createRoleInput.Policies,
		CreatedAt:       now,
	}

	if err := r.roleRepo.Create(ctx, role); err != nil {
		return nil, err
	}

	return &authDomain.CreateRoleOutput{
		ID:          role.ID,
		PlainSecret: plainSecret,
	}, nil
}

// Update modifies an existing role's name, active status, and policies.
// The role's secret, ID, and creation timestamp are preserved.
func (r *roleUseCase) Update(
	ctx context.Context,
	roleID uuid.UUID,
	updateRoleInput *authDomain.UpdateRoleInput,
) error {
	role, err := r.roleRepo.Get(ctx, roleID)
	if err != nil {
		return err
	}

	role.Name = updateRoleInput.Name
	role.IsActive = updateRoleInput.IsActive
	role.Policies = updateRoleInput.Policies

	return r.roleRepo.Update(ctx, role)
}

// Get retrieves a role by ID.
func (r *roleUseCase) Get(ctx context.Context, roleID uuid.UUID) (*authDomain.Role, error) {
	return r.roleRepo.Get(ctx, roleID)
}

// Delete soft deletes a role by setting IsActive to false. The role record is
// preserved so existing audit log entries keep a valid reference.
func (r *roleUseCase) Delete(ctx context.Context, roleID uuid.UUID) error {
	role, err := r.roleRepo.Get(ctx, roleID)
	if err != nil {
		return err
	}

	role.IsActive = false

	return r.roleRepo.Update(ctx, role)
}

// RotateSecret replaces the role's secret with a freshly generated one and
// restarts the single-use window. Failed-attempt state is reset so the
// consuming service can authenticate with the new secret immediately.
func (r *roleUseCase) RotateSecret(
	ctx context.Context,
	roleID uuid.UUID,
) (*authDomain.CreateRoleOutput, error) {
	role, err := r.roleRepo.Get(ctx, roleID)
	if err != nil {
		return nil, err
	}

	plainSecret, hashedSecret, err := r.secretService.GenerateSecret()
	if err != nil {
		return nil, err
	}

	role.SecretHash = hashedSecret
	role.SecretExpiresAt = time.Now().UTC().Add(r.config.RoleSecretWindow)
	role.FailedAttempts = 0
	role.LockedUntil = nil

	if err := r.roleRepo.Update(ctx, role); err != nil {
		return nil, err
	}

	return &authDomain.CreateRoleOutput{
		ID:          role.ID,
		PlainSecret: plainSecret,
	}, nil
}

// NewRoleUseCase creates a new RoleUseCase with the provided dependencies.
func NewRoleUseCase(
	config *config.Config,
	roleRepo RoleRepository,
	secretService authService.SecretService,
) RoleUseCase {
	return &roleUseCase{
		config:        config,
		roleRepo:      roleRepo,
		secretService: secretService,
	}
}

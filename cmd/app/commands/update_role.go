package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/rotorlabs/rotor/internal/app"
	authDomain "github.com/rotorlabs/rotor/internal/auth/domain"
	authUseCase "github.com/rotorlabs/rotor/internal/auth/usecase"
	"github.com/rotorlabs/rotor/internal/config"
)

// RunUpdateRole updates an existing role's name, active status, and policies.
// Supports both interactive mode (when policiesJSON is empty) and non-interactive
// mode (when policiesJSON is provided).
//
// Requirements: Database must be migrated and accessible.
func RunUpdateRole(
	ctx context.Context,
	roleID string,
	name string,
	isActive bool,
	policiesJSON string,
	io IOTuple,
) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	roleUseCase, err := container.RoleUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize role use case: %w", err)
	}

	return updateRole(ctx, roleUseCase, logger, roleID, name, isActive, policiesJSON, io)
}

// updateRole performs the role update against the provided use case.
func updateRole(
	ctx context.Context,
	roleUseCase authUseCase.RoleUseCase,
	logger *slog.Logger,
	roleID string,
	name string,
	isActive bool,
	policiesJSON string,
	io IOTuple,
) error {
	id, err := uuid.Parse(roleID)
	if err != nil {
		return fmt.Errorf("invalid role ID: %w", err)
	}

	logger.Info("updating role", slog.String("role_id", roleID))

	// Parse or prompt for policies
	var policies []authDomain.PolicyDocument

	if policiesJSON == "" {
		// Interactive mode
		policies, err = promptForPolicies(io)
		if err != nil {
			return fmt.Errorf("failed to get policies: %w", err)
		}
	} else {
		// Non-interactive mode: parse JSON
		if err := json.Unmarshal([]byte(policiesJSON), &policies); err != nil {
			return fmt.Errorf("failed to parse policies JSON: %w", err)
		}
	}

	if len(policies) == 0 {
		return fmt.Errorf("at least one policy is required")
	}

	input := &authDomain.UpdateRoleInput{
		Name:     name,
		IsActive: isActive,
		Policies: policies,
	}

	if err := roleUseCase.Update(ctx, id, input); err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}

	_, _ = fmt.Fprintln(io.Writer, "Role updated successfully!")

	logger.Info("role updated successfully",
		slog.String("role_id", roleID),
		slog.String("name", name),
		slog.Bool("is_active", isActive),
	)

	return nil
}

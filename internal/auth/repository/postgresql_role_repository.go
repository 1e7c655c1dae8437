// Package repository implements data persistence for authentication and authorization entities.
//
// Provides PostgreSQL and MySQL implementations with transaction support via database.GetTx().
// PostgreSQL uses native UUID types, MySQL uses BINARY(16) types. Role policies are stored
// as a JSON document on the roles row.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	authDomain "github.com/rotorlabs/rotor/internal/auth/domain"
	"github.com/rotorlabs/rotor/internal/database"
	apperrors "github.com/rotorlabs/rotor/internal/errors"
)

// PostgreSQLRoleRepository implements Role persistence for PostgreSQL.
// Uses native UUID types with transaction support via database.GetTx().
type PostgreSQLRoleRepository struct {
	db *sql.DB
}

// Create inserts a new Role into the PostgreSQL database.
func (p *PostgreSQLRoleRepository) Create(ctx context.Context, role *authDomain.Role) error {
	querier := database.GetTx(ctx, p.db)

	policiesJSON, err := json.Marshal(role.Policies)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal role policies")
	}

	query := `INSERT INTO roles (id, secret_hash, secret_expires_at, name, is_active, policies,
			  failed_attempts, locked_until, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = querier.ExecContext(
		ctx,
		query,
		role.ID,
		role.SecretHash,
		role.SecretExpiresAt,
		role.Name,
		role.IsActive,
		policiesJSON,
		role.FailedAttempts,
		role.LockedUntil,
		role.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create role")
	}
	return nil
}

// Update modifies an existing Role in the PostgreSQL database.
func (p *PostgreSQLRoleRepository) Update(ctx context.Context, role *authDomain.Role) error {
	querier := database.GetTx(ctx, p.db)

	policiesJSON, err := json.Marshal(role.Policies)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal role policies")
	}

	query := `UPDATE roles
			  SET secret_hash = $1,
			  	  secret_expires_at = $2,
				  name = $3,
				  is_active = $4,
				  policies = $5,
				  failed_attempts = $6,
				  locked_until = $7
			  WHERE id = $8`

	_, err = querier.ExecContext(
		ctx,
		query,
		role.SecretHash,
		role.SecretExpiresAt,
		role.Name,
		role.IsActive,
		policiesJSON,
		role.FailedAttempts,
		role.LockedUntil,
		role.ID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update role")
	}

	return nil
}

// Get retrieves a Role by ID from the PostgreSQL database.
// Returns ErrRoleNotFound if the role doesn't exist.
func (p *PostgreSQLRoleRepository) Get(
	ctx context.Context,
	roleID uuid.UUID,
) (*authDomain.Role, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, secret_hash, secret_expires_at, name, is_active, policies,
			  failed_attempts, locked_until, created_at
			  FROM roles WHERE id = $1`

	var role authDomain.Role
	var policiesJSON []byte

	err := querier.QueryRowContext(ctx, query, roleID).Scan(
		&role.ID,
		&role.SecretHash,
		&role.SecretExpiresAt,
		&role.Name,
		&role.IsActive,
		&policiesJSON,
		&role.FailedAttempts,
		&role.LockedUntil,
		&role.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authDomain.ErrRoleNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get role")
	}

	if policiesJSON != nil {
		if err := json.Unmarshal(policiesJSON, &role.Policies); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal role policies")
		}
	}

	return &role, nil
}

// NewPostgreSQLRoleRepository creates a new PostgreSQL Role repository.
func NewPostgreSQLRoleRepository(db *sql.DB) *PostgreSQLRoleRepository {
	return &PostgreSQLRoleRepository{db: db}
}

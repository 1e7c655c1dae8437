// Package mysql implements MySQL data persistence for authentication and
// authorization entities. Uses BINARY(16) for UUID columns with transaction
// support via database.GetTx().
package mysql

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

// MySQLRoleRepository implements Role persistence for MySQL.
// Uses BINARY(16) for UUIDs with transaction support via database.GetTx().
type MySQLRoleRepository struct {
	db *sql.DB
}

// Create inserts a new Role into the MySQL database using BINARY(16) for UUIDs.
func (m *MySQLRoleRepository) Create(ctx context.Context, role *authDomain.Role) error {
	querier := database.GetTx(ctx, m.db)

	id, err := role.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal role id")
	}

	policiesJSON, err := json.Marshal(role.Policies)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal role policies")
	}

	query := `INSERT INTO roles (id, secret_hash, secret_expires_at, name, is_active, policies,
			  failed_attempts, locked_until, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
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

// Update modifies an existing Role in the MySQL database using BINARY(16) for UUIDs.
func (m *MySQLRoleRepository) Update(ctx context.Context, role *authDomain.Role) error {
	querier := database.GetTx(ctx, m.db)

	id, err := role.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal role id")
	}

	policiesJSON, err := json.Marshal(role.Policies)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal role policies")
	}

	query := `UPDATE roles
			  SET secret_hash = ?,
			  	  secret_expires_at = ?,
				  name = ?,
				  is_active = ?,
				  policies = ?,
				  failed_attempts = ?,
				  locked_until = ?
			  WHERE id = ?`

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
		id,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update role")
	}

	return nil
}

// Get retrieves a Role by ID from the MySQL database using BINARY(16) for UUIDs.
// Returns ErrRoleNotFound if the role doesn't exist.
func (m *MySQLRoleRepository) Get(
	ctx context.Context,
	roleID uuid.UUID,
) (*authDomain.Role, error) {
	querier := database.GetTx(ctx, m.db)

	id, err := roleID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal role id")
	}

	query := `SELECT id, secret_hash, secret_expires_at, name, is_active, policies,
			  failed_attempts, locked_until, created_at
			  FROM roles WHERE id = ?`

	var role authDomain.Role
	var idBytes []byte
	var policiesJSON []byte

	err = querier.QueryRowContext(ctx, query, id).Scan(
		&idBytes,
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

	if err := role.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal role id")
	}

	if policiesJSON != nil {
		if err := json.Unmarshal(policiesJSON, &role.Policies); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal role policies")
		}
	}

	return &role, nil
}

// NewMySQLRoleRepository creates a new MySQL Role repository.
func NewMySQLRoleRepository(db *sql.DB) *MySQLRoleRepository {
	return &MySQLRoleRepository{db: db}
}

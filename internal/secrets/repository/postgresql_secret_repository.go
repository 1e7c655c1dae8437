// Package repository implements data persistence for the versioned secret store.
// Repositories support both PostgreSQL and MySQL with immutable versioning,
// status transitions, and soft deletion.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/rotorlabs/rotor/internal/database"
	apperrors "github.com/rotorlabs/rotor/internal/errors"
	secretsDomain "github.com/rotorlabs/rotor/internal/secrets/domain"
)

// PostgreSQLSecretRepository implements secret version persistence for PostgreSQL databases.
type PostgreSQLSecretRepository struct {
	db *sql.DB
}

// NewPostgreSQLSecretRepository creates a new PostgreSQL secret repository.
func NewPostgreSQLSecretRepository(db *sql.DB) *PostgreSQLSecretRepository {
	return &PostgreSQLSecretRepository{db: db}
}

const postgresSecretColumns = `id, path, version, status, ciphertext, nonce, rotated_by, created_at, deleted_at`

// Create inserts a new secret version. A concurrent insert on the same
// (path, version) pair returns ErrVersionConflict.
func (p *PostgreSQLSecretRepository) Create(ctx context.Context, version *secretsDomain.SecretVersion) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO secret_versions (id, path, version, status, ciphertext, nonce, rotated_by, created_at, deleted_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := querier.ExecContext(
		ctx,
		query,
		version.ID,
		version.Path,
		version.Version,
		version.Status,
		version.Ciphertext,
		version.Nonce,
		version.RotatedBy,
		version.CreatedAt,
		version.DeletedAt,
	)
	if err != nil {
		if isPostgreSQLUniqueViolation(err) {
			return secretsDomain.ErrVersionConflict
		}
		return apperrors.Wrap(err, "failed to create secret version")
	}
	return nil
}

// GetActive retrieves the active version for a path.
func (p *PostgreSQLSecretRepository) GetActive(
	ctx context.Context,
	path string,
) (*secretsDomain.SecretVersion, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + postgresSecretColumns + `
			  FROM secret_versions
			  WHERE path = $1 AND status = $2
			  LIMIT 1`

	return p.scanOne(querier.QueryRowContext(ctx, query, path, secretsDomain.StatusActive))
}

// GetActiveForUpdate retrieves the active version for a path with a row lock,
// serializing concurrent puts on the same path. Must run inside a transaction.
func (p *PostgreSQLSecretRepository) GetActiveForUpdate(
	ctx context.Context,
	path string,
) (*secretsDomain.SecretVersion, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + postgresSecretColumns + `
			  FROM secret_versions
			  WHERE path = $1 AND status = $2
			  LIMIT 1
			  FOR UPDATE`

	return p.scanOne(querier.QueryRowContext(ctx, query, path, secretsDomain.StatusActive))
}

// GetByVersion retrieves a specific version of a secret by path and version number.
func (p *PostgreSQLSecretRepository) GetByVersion(
	ctx context.Context,
	path string,
	version uint,
) (*secretsDomain.SecretVersion, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + postgresSecretColumns + `
			  FROM secret_versions
			  WHERE path = $1 AND version = $2
			  LIMIT 1`

	return p.scanOne(querier.QueryRowContext(ctx, query, path, version))
}

// GetByStatus retrieves the version in the given status for a path.
func (p *PostgreSQLSecretRepository) GetByStatus(
	ctx context.Context,
	path string,
	status secretsDomain.Status,
) (*secretsDomain.SecretVersion, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + postgresSecretColumns + `
			  FROM secret_versions
			  WHERE path = $1 AND status = $2
			  ORDER BY version DESC
			  LIMIT 1`

	return p.scanOne(querier.QueryRowContext(ctx, query, path, status))
}

// MaxVersion returns the highest version number ever used for a path, zero
// when the path has no versions. Destroyed versions still count: version
// numbers are never reused.
func (p *PostgreSQLSecretRepository) MaxVersion(ctx context.Context, path string) (uint, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT COALESCE(MAX(version), 0) FROM secret_versions WHERE path = $1`

	var maxVersion uint
	if err := querier.QueryRowContext(ctx, query, path).Scan(&maxVersion); err != nil {
		return 0, apperrors.Wrap(err, "failed to get max secret version")
	}
	return maxVersion, nil
}

// SetStatus updates a version's lifecycle status.
func (p *PostgreSQLSecretRepository) SetStatus(
	ctx context.Context,
	versionID uuid.UUID,
	status secretsDomain.Status,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE secret_versions SET status = $1 WHERE id = $2`

	result, err := querier.ExecContext(ctx, query, status, versionID)
	if err != nil {
		return apperrors.Wrap(err, "failed to update secret version status")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to check secret version status update")
	}
	if rows == 0 {
		return secretsDomain.ErrSecretNotFound
	}
	return nil
}

// SetDeletedAt sets or clears a version's soft-delete timestamp.
func (p *PostgreSQLSecretRepository) SetDeletedAt(
	ctx context.Context,
	versionID uuid.UUID,
	deletedAt sql.NullTime,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE secret_versions SET deleted_at = $1 WHERE id = $2`

	result, err := querier.ExecContext(ctx, query, deletedAt, versionID)
	if err != nil {
		return apperrors.Wrap(err, "failed to update secret version deleted_at")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to check secret version deleted_at update")
	}
	if rows == 0 {
		return secretsDomain.ErrSecretNotFound
	}
	return nil
}

// Destroy irreversibly removes a version: its status becomes destroyed and
// the ciphertext and nonce are erased in place.
func (p *PostgreSQLSecretRepository) Destroy(ctx context.Context, versionID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE secret_versions
			  SET status = $1, ciphertext = NULL, nonce = NULL
			  WHERE id = $2`

	result, err := querier.ExecContext(ctx, query, secretsDomain.StatusDestroyed, versionID)
	if err != nil {
		return apperrors.Wrap(err, "failed to destroy secret version")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to check secret version destroy")
	}
	if rows == 0 {
		return secretsDomain.ErrSecretNotFound
	}
	return nil
}

// ListPaths returns the distinct child paths under a prefix with pagination,
// ordered lexicographically. Paths whose every version is destroyed are skipped.
func (p *PostgreSQLSecretRepository) ListPaths(
	ctx context.Context,
	prefix string,
	offset, limit int,
) ([]string, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT DISTINCT path
			  FROM secret_versions
			  WHERE path LIKE $1 AND status != $2
			  ORDER BY path ASC
			  LIMIT $3 OFFSET $4`

	rows, err := querier.QueryContext(ctx, query, prefix+"%", secretsDomain.StatusDestroyed, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list secret paths")
	}
	defer func() { _ = rows.Close() }()

	paths := make([]string, 0)
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan secret path")
		}
		paths = append(paths, path)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate secret paths")
	}
	return paths, nil
}

// scanOne scans a single secret version row.
func (p *PostgreSQLSecretRepository) scanOne(row *sql.Row) (*secretsDomain.SecretVersion, error) {
	var version secretsDomain.SecretVersion
	err := row.Scan(
		&version.ID,
		&version.Path,
		&version.Version,
		&version.Status,
		&version.Ciphertext,
		&version.Nonce,
		&version.RotatedBy,
		&version.CreatedAt,
		&version.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, secretsDomain.ErrSecretNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get secret version")
	}
	return &version, nil
}

// isPostgreSQLUniqueViolation checks if the error is a PostgreSQL unique constraint violation.
func isPostgreSQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	// PostgreSQL: "duplicate key value violates unique constraint" or "pq: duplicate key"
	return strings.Contains(errMsg, "duplicate key") || strings.Contains(errMsg, "unique constraint")
}

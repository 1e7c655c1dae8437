// Package mysql implements secret version persistence for MySQL databases.
// UUIDs are stored as BINARY(16) for compact indexes.
package mysql

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

// MySQLSecretRepository implements secret version persistence for MySQL databases.
type MySQLSecretRepository struct {
	db *sql.DB
}

// NewMySQLSecretRepository creates a new MySQL secret repository.
func NewMySQLSecretRepository(db *sql.DB) *MySQLSecretRepository {
	return &MySQLSecretRepository{db: db}
}

const mysqlSecretColumns = `id, path, version, status, ciphertext, nonce, rotated_by, created_at, deleted_at`

// Create inserts a new secret version. A concurrent insert on the same
// (path, version) pair returns ErrVersionConflict.
func (m *MySQLSecretRepository) Create(ctx context.Context, version *secretsDomain.SecretVersion) error {
	querier := database.GetTx(ctx, m.db)

	idBytes, err := version.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	query := `INSERT INTO secret_versions (id, path, version, status, ciphertext, nonce, rotated_by, created_at, deleted_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		idBytes,
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
		if isMySQLUniqueViolation(err) {
			return secretsDomain.ErrVersionConflict
		}
		return apperrors.Wrap(err, "failed to create secret version")
	}
	return nil
}

// GetActive retrieves the active version for a path.
func (m *MySQLSecretRepository) GetActive(
	ctx context.Context,
	path string,
) (*secretsDomain.SecretVersion, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlSecretColumns + `
			  FROM secret_versions
			  WHERE path = ? AND status = ?
			  LIMIT 1`

	return scanSecretVersion(querier.QueryRowContext(ctx, query, path, secretsDomain.StatusActive))
}

// GetActiveForUpdate retrieves the active version for a path with a row lock,
// serializing concurrent puts on the same path. Must run inside a transaction.
func (m *MySQLSecretRepository) GetActiveForUpdate(
	ctx context.Context,
	path string,
) (*secretsDomain.SecretVersion, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlSecretColumns + `
			  FROM secret_versions
			  WHERE path = ? AND status = ?
			  LIMIT 1
			  FOR UPDATE`

	return scanSecretVersion(querier.QueryRowContext(ctx, query, path, secretsDomain.StatusActive))
}

// GetByVersion retrieves a specific version of a secret by path and version number.
func (m *MySQLSecretRepository) GetByVersion(
	ctx context.Context,
	path string,
	version uint,
) (*secretsDomain.SecretVersion, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlSecretColumns + `
			  FROM secret_versions
			  WHERE path = ? AND version = ?
			  LIMIT 1`

	return scanSecretVersion(querier.QueryRowContext(ctx, query, path, version))
}

// GetByStatus retrieves the version in the given status for a path.
func (m *MySQLSecretRepository) GetByStatus(
	ctx context.Context,
	path string,
	status secretsDomain.Status,
) (*secretsDomain.SecretVersion, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlSecretColumns + `
			  FROM secret_versions
			  WHERE path = ? AND status = ?
			  ORDER BY version DESC
			  LIMIT 1`

	return scanSecretVersion(querier.QueryRowContext(ctx, query, path, status))
}

// MaxVersion returns the highest version number ever used for a path, zero
// when the path has no versions.
func (m *MySQLSecretRepository) MaxVersion(ctx context.Context, path string) (uint, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT COALESCE(MAX(version), 0) FROM secret_versions WHERE path = ?`

	var maxVersion uint
	if err := querier.QueryRowContext(ctx, query, path).Scan(&maxVersion); err != nil {
		return 0, apperrors.Wrap(err, "failed to get max secret version")
	}
	return maxVersion, nil
}

// SetStatus updates a version's lifecycle status.
func (m *MySQLSecretRepository) SetStatus(
	ctx context.Context,
	versionID uuid.UUID,
	status secretsDomain.Status,
) error {
	querier := database.GetTx(ctx, m.db)

	idBytes, err := versionID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	query := `UPDATE secret_versions SET status = ? WHERE id = ?`

	result, err := querier.ExecContext(ctx, query, status, idBytes)
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
func (m *MySQLSecretRepository) SetDeletedAt(
	ctx context.Context,
	versionID uuid.UUID,
	deletedAt sql.NullTime,
) error {
	querier := database.GetTx(ctx, m.db)

	idBytes, err := versionID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	query := `UPDATE secret_versions SET deleted_at = ? WHERE id = ?`

	result, err := querier.ExecContext(ctx, query, deletedAt, idBytes)
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
func (m *MySQLSecretRepository) Destroy(ctx context.Context, versionID uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	idBytes, err := versionID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	query := `UPDATE secret_versions
			  SET status = ?, ciphertext = NULL, nonce = NULL
			  WHERE id = ?`

	result, err := querier.ExecContext(ctx, query, secretsDomain.StatusDestroyed, idBytes)
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
func (m *MySQLSecretRepository) ListPaths(
	ctx context.Context,
	prefix string,
	offset, limit int,
) ([]string, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT DISTINCT path
			  FROM secret_versions
			  WHERE path LIKE ? AND status != ?
			  ORDER BY path ASC
			  LIMIT ? OFFSET ?`

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

// scanSecretVersion scans a single secret version row, converting the
// BINARY(16) id back to a UUID.
func scanSecretVersion(row *sql.Row) (*secretsDomain.SecretVersion, error) {
	var version secretsDomain.SecretVersion
	var idBytes []byte
	err := row.Scan(
		&idBytes,
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
	if err := version.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal UUID")
	}
	return &version, nil
}

// isMySQLUniqueViolation checks if the error is a MySQL unique constraint violation.
func isMySQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	// MySQL: "Error 1062: Duplicate entry"
	return strings.Contains(errMsg, "duplicate entry") || strings.Contains(errMsg, "1062")
}

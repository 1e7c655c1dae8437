package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	authDomain "github.com/rotorlabs/rotor/internal/auth/domain"
	"github.com/rotorlabs/rotor/internal/database"
	apperrors "github.com/rotorlabs/rotor/internal/errors"
)

// PostgreSQLAuditLogRepository implements AuditLog persistence for PostgreSQL.
// The audit log is append-only: entries are inserted and read, never updated
// or deleted.
type PostgreSQLAuditLogRepository struct {
	db *sql.DB
}

// Create inserts a new AuditLog into the PostgreSQL database. Handles nil metadata
// as database NULL. Returns an error if metadata marshaling or database insertion fails.
func (p *PostgreSQLAuditLogRepository) Create(ctx context.Context, auditLog *authDomain.AuditLog) error {
	querier := database.GetTx(ctx, p.db)

	var metadataJSON []byte
	var err error

	// Handle nil metadata as NULL
	if auditLog.Metadata != nil {
		metadataJSON, err = json.Marshal(auditLog.Metadata)
		if err != nil {
			return apperrors.Wrap(err, "failed to marshal audit log metadata")
		}
	}

	query := `INSERT INTO audit_logs (id, request_id, role_id, operation, path, outcome, metadata, signature, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = querier.ExecContext(
		ctx,
		query,
		auditLog.ID,
		auditLog.RequestID,
		auditLog.RoleID,
		auditLog.Operation,
		auditLog.Path,
		string(auditLog.Outcome),
		metadataJSON,
		auditLog.Signature,
		auditLog.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create audit log")
	}

	return nil
}

// List retrieves audit logs ordered by ID descending (newest first) with pagination.
// Uses offset and limit for pagination control. Returns empty slice if no audit logs found.
// Handles NULL metadata gracefully by returning nil map for those entries.
func (p *PostgreSQLAuditLogRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*authDomain.AuditLog, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, request_id, role_id, operation, path, outcome, metadata, signature, created_at
			  FROM audit_logs
			  ORDER BY id DESC
			  LIMIT $1 OFFSET $2`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit logs")
	}
	defer func() {
		_ = rows.Close()
	}()

	// Initialize empty slice to avoid returning nil for empty results
	auditLogs := make([]*authDomain.AuditLog, 0)
	for rows.Next() {
		auditLog, err := scanAuditLog(rows)
		if err != nil {
			return nil, err
		}
		auditLogs = append(auditLogs, auditLog)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate audit logs")
	}

	return auditLogs, nil
}

// ListAfter retrieves audit logs created at or after the cutoff, ordered by ID
// ascending with pagination. Used for signature verification sweeps.
func (p *PostgreSQLAuditLogRepository) ListAfter(
	ctx context.Context,
	cutoff time.Time,
	offset, limit int,
) ([]*authDomain.AuditLog, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, request_id, role_id, operation, path, outcome, metadata, signature, created_at
			  FROM audit_logs
			  WHERE created_at >= $1
			  ORDER BY id ASC
			  LIMIT $2 OFFSET $3`

	rows, err := querier.QueryContext(ctx, query, cutoff, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit logs")
	}
	defer func() {
		_ = rows.Close()
	}()

	auditLogs := make([]*authDomain.AuditLog, 0)
	for rows.Next() {
		auditLog, err := scanAuditLog(rows)
		if err != nil {
			return nil, err
		}
		auditLogs = append(auditLogs, auditLog)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate audit logs")
	}

	return auditLogs, nil
}

func scanAuditLog(rows *sql.Rows) (*authDomain.AuditLog, error) {
	var auditLog authDomain.AuditLog
	var metadataJSON []byte
	var outcome string

	err := rows.Scan(
		&auditLog.ID,
		&auditLog.RequestID,
		&auditLog.RoleID,
		&auditLog.Operation,
		&auditLog.Path,
		&outcome,
		&metadataJSON,
		&auditLog.Signature,
		&auditLog.CreatedAt,
	)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to scan audit log")
	}

	auditLog.Outcome = authDomain.Outcome(outcome)

	// Unmarshal metadata if not NULL
	if metadataJSON != nil {
		if err := json.Unmarshal(metadataJSON, &auditLog.Metadata); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal audit log metadata")
		}
	}

	return &auditLog, nil
}

// NewPostgreSQLAuditLogRepository creates a new PostgreSQL AuditLog repository.
func NewPostgreSQLAuditLogRepository(db *sql.DB) *PostgreSQLAuditLogRepository {
	return &PostgreSQLAuditLogRepository{db: db}
}

package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	authDomain "github.com/rotorlabs/rotor/internal/auth/domain"
	"github.com/rotorlabs/rotor/internal/database"
	apperrors "github.com/rotorlabs/rotor/internal/errors"
)

// MySQLAuditLogRepository implements AuditLog persistence for MySQL.
// The audit log is append-only: entries are inserted and read, never updated
// or deleted.
type MySQLAuditLogRepository struct {
	db *sql.DB
}

// Create inserts a new AuditLog into the MySQL database using BINARY(16) for UUIDs.
// Handles nil metadata as database NULL.
func (m *MySQLAuditLogRepository) Create(ctx context.Context, auditLog *authDomain.AuditLog) error {
	querier := database.GetTx(ctx, m.db)

	id, err := auditLog.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal audit log id")
	}

	requestID, err := auditLog.RequestID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal request id")
	}

	roleID, err := auditLog.RoleID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal role id")
	}

	var metadataJSON []byte
	if auditLog.Metadata != nil {
		metadataJSON, err = json.Marshal(auditLog.Metadata)
		if err != nil {
			return apperrors.Wrap(err, "failed to marshal audit log metadata")
		}
	}

	query := `INSERT INTO audit_logs (id, request_id, role_id, operation, path, outcome, metadata, signature, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		requestID,
		roleID,
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
func (m *MySQLAuditLogRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*authDomain.AuditLog, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, request_id, role_id, operation, path, outcome, metadata, signature, created_at
			  FROM audit_logs
			  ORDER BY id DESC
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
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

// ListAfter retrieves audit logs created at or after the cutoff, ordered by ID
// ascending with pagination. Used for signature verification sweeps.
func (m *MySQLAuditLogRepository) ListAfter(
	ctx context.Context,
	cutoff time.Time,
	offset, limit int,
) ([]*authDomain.AuditLog, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, request_id, role_id, operation, path, outcome, metadata, signature, created_at
			  FROM audit_logs
			  WHERE created_at >= ?
			  ORDER BY id ASC
			  LIMIT ? OFFSET ?`

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
	var idBytes []byte
	var requestIDBytes []byte
	var roleIDBytes []byte
	var metadataJSON []byte
	var outcome string

	err := rows.Scan(
		&idBytes,
		&requestIDBytes,
		&roleIDBytes,
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

	if err := auditLog.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal audit log id")
	}

	if err := auditLog.RequestID.UnmarshalBinary(requestIDBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal request id")
	}

	if err := auditLog.RoleID.UnmarshalBinary(roleIDBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal role id")
	}

	auditLog.Outcome = authDomain.Outcome(outcome)

	if metadataJSON != nil {
		if err := json.Unmarshal(metadataJSON, &auditLog.Metadata); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal audit log metadata")
		}
	}

	return &auditLog, nil
}

// NewMySQLAuditLogRepository creates a new MySQL AuditLog repository.
func NewMySQLAuditLogRepository(db *sql.DB) *MySQLAuditLogRepository {
	return &MySQLAuditLogRepository{db: db}
}

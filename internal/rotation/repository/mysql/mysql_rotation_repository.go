// Package mysql implements rotation record persistence for MySQL databases.
// UUIDs are stored as BINARY(16) for compact indexes.
package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"github.com/rotorlabs/rotor/internal/database"
	apperrors "github.com/rotorlabs/rotor/internal/errors"
	rotationDomain "github.com/rotorlabs/rotor/internal/rotation/domain"
)

// MySQLRotationRepository implements rotation record persistence for MySQL databases.
type MySQLRotationRepository struct {
	db *sql.DB
}

// NewMySQLRotationRepository creates a new MySQL rotation repository.
func NewMySQLRotationRepository(db *sql.DB) *MySQLRotationRepository {
	return &MySQLRotationRepository{db: db}
}

const mysqlRotationColumns = `id, path, secret_class, previous_version, new_version, state,
	adapter_outcome, health_outcome, requested_by, error_text, last_known_good,
	requested_at, staged_at, applied_at, verified_at, finished_at, created_at, updated_at`

// Create stores a new rotation record.
func (m *MySQLRotationRepository) Create(ctx context.Context, record *rotationDomain.RotationRecord) error {
	querier := database.GetTx(ctx, m.db)

	idBytes, err := record.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}
	lastKnownGood, err := marshalLastKnownGood(record.LastKnownGood)
	if err != nil {
		return err
	}

	query := `INSERT INTO rotation_records (` + mysqlRotationColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		idBytes,
		record.Path,
		record.SecretClass,
		record.PreviousVersion,
		record.NewVersion,
		record.State,
		record.AdapterOutcome,
		record.HealthOutcome,
		record.RequestedBy,
		record.Error,
		lastKnownGood,
		record.RequestedAt,
		record.StagedAt,
		record.AppliedAt,
		record.VerifiedAt,
		record.FinishedAt,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create rotation record")
	}
	return nil
}

// Update persists the record's current state and phase timestamps.
func (m *MySQLRotationRepository) Update(ctx context.Context, record *rotationDomain.RotationRecord) error {
	querier := database.GetTx(ctx, m.db)

	idBytes, err := record.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}
	lastKnownGood, err := marshalLastKnownGood(record.LastKnownGood)
	if err != nil {
		return err
	}

	query := `UPDATE rotation_records
			  SET previous_version = ?, new_version = ?, state = ?, adapter_outcome = ?,
				  health_outcome = ?, error_text = ?, last_known_good = ?, staged_at = ?,
				  applied_at = ?, verified_at = ?, finished_at = ?, updated_at = ?
			  WHERE id = ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		record.PreviousVersion,
		record.NewVersion,
		record.State,
		record.AdapterOutcome,
		record.HealthOutcome,
		record.Error,
		lastKnownGood,
		record.StagedAt,
		record.AppliedAt,
		record.VerifiedAt,
		record.FinishedAt,
		record.UpdatedAt,
		idBytes,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update rotation record")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to check rotation record update")
	}
	if rows == 0 {
		return rotationDomain.ErrRotationNotFound
	}
	return nil
}

// Get retrieves a rotation record by ID.
func (m *MySQLRotationRepository) Get(ctx context.Context, recordID uuid.UUID) (*rotationDomain.RotationRecord, error) {
	querier := database.GetTx(ctx, m.db)

	idBytes, err := recordID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal UUID")
	}

	query := `SELECT ` + mysqlRotationColumns + `
			  FROM rotation_records
			  WHERE id = ?
			  LIMIT 1`

	record, err := scanRotationRecord(querier.QueryRowContext(ctx, query, idBytes).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, rotationDomain.ErrRotationNotFound
		}
		return nil, err
	}
	return record, nil
}

// List retrieves rotation records with pagination, newest first.
func (m *MySQLRotationRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*rotationDomain.RotationRecord, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlRotationColumns + `
			  FROM rotation_records
			  ORDER BY created_at DESC
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list rotation records")
	}
	defer func() { _ = rows.Close() }()

	records := make([]*rotationDomain.RotationRecord, 0)
	for rows.Next() {
		record, err := scanRotationRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate rotation records")
	}
	return records, nil
}

// scanRotationRecord scans one row via the given scan function.
func scanRotationRecord(scan func(dest ...any) error) (*rotationDomain.RotationRecord, error) {
	var record rotationDomain.RotationRecord
	var idBytes []byte
	var lastKnownGood []byte

	err := scan(
		&idBytes,
		&record.Path,
		&record.SecretClass,
		&record.PreviousVersion,
		&record.NewVersion,
		&record.State,
		&record.AdapterOutcome,
		&record.HealthOutcome,
		&record.RequestedBy,
		&record.Error,
		&lastKnownGood,
		&record.RequestedAt,
		&record.StagedAt,
		&record.AppliedAt,
		&record.VerifiedAt,
		&record.FinishedAt,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, apperrors.Wrap(err, "failed to scan rotation record")
	}

	if err := record.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal UUID")
	}
	if len(lastKnownGood) > 0 {
		if err := json.Unmarshal(lastKnownGood, &record.LastKnownGood); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal last known good credential")
		}
	}
	return &record, nil
}

// marshalLastKnownGood serializes the last-known-good credential fields;
// empty maps persist as NULL.
func marshalLastKnownGood(fields map[string]string) ([]byte, error) {
	if len(fields) == 0 {
		return nil, nil
	}
	encoded, err := json.Marshal(fields)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal last known good credential")
	}
	return encoded, nil
}

// Package repository implements rotation record persistence. Records are
// immutable once the attempt they track concludes; the engine only appends
// and advances state.
package repository

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

// PostgreSQLRotationRepository implements rotation record persistence for PostgreSQL databases.
type PostgreSQLRotationRepository struct {
	db *sql.DB
}

// NewPostgreSQLRotationRepository creates a new PostgreSQL rotation repository.
func NewPostgreSQLRotationRepository(db *sql.DB) *PostgreSQLRotationRepository {
	return &PostgreSQLRotationRepository{db: db}
}

const postgresRotationColumns = `id, path, secret_class, previous_version, new_version, state,
	adapter_outcome, health_outcome, requested_by, error_text, last_known_good,
	requested_at, staged_at, applied_at, verified_at, finished_at, created_at, updated_at`

// Create stores a new rotation record.
func (p *PostgreSQLRotationRepository) Create(ctx context.Context, record *rotationDomain.RotationRecord) error {
	querier := database.GetTx(ctx, p.db)

	lastKnownGood, err := marshalLastKnownGood(record.LastKnownGood)
	if err != nil {
		return err
	}

	query := `INSERT INTO rotation_records (` + postgresRotationColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`

	_, err = querier.ExecContext(
		ctx,
		query,
		record.ID,
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
func (p *PostgreSQLRotationRepository) Update(ctx context.Context, record *rotationDomain.RotationRecord) error {
	querier := database.GetTx(ctx, p.db)

	lastKnownGood, err := marshalLastKnownGood(record.LastKnownGood)
	if err != nil {
		return err
	}

	query := `UPDATE rotation_records
			  SET previous_version = $1, new_version = $2, state = $3, adapter_outcome = $4,
				  health_outcome = $5, error_text = $6, last_known_good = $7, staged_at = $8,
				  applied_at = $9, verified_at = $10, finished_at = $11, updated_at = $12
			  WHERE id = $13`

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
		record.ID,
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
func (p *PostgreSQLRotationRepository) Get(ctx context.Context, recordID uuid.UUID) (*rotationDomain.RotationRecord, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + postgresRotationColumns + `
			  FROM rotation_records
			  WHERE id = $1
			  LIMIT 1`

	return p.scanOne(querier.QueryRowContext(ctx, query, recordID))
}

// List retrieves rotation records with pagination, newest first.
func (p *PostgreSQLRotationRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*rotationDomain.RotationRecord, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + postgresRotationColumns + `
			  FROM rotation_records
			  ORDER BY created_at DESC
			  LIMIT $1 OFFSET $2`

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

// scanOne scans a single rotation record row.
func (p *PostgreSQLRotationRepository) scanOne(row *sql.Row) (*rotationDomain.RotationRecord, error) {
	record, err := scanRotationRecord(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, rotationDomain.ErrRotationNotFound
		}
		return nil, err
	}
	return record, nil
}

// scanRotationRecord scans one row via the given scan function.
func scanRotationRecord(scan func(dest ...any) error) (*rotationDomain.RotationRecord, error) {
	var record rotationDomain.RotationRecord
	var lastKnownGood []byte

	err := scan(
		&record.ID,
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

package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/rotorlabs/rotor/internal/metrics"
	rotationDomain "github.com/rotorlabs/rotor/internal/rotation/domain"
)

// rotationUseCaseWithMetrics decorates RotationUseCase with metrics instrumentation.
type rotationUseCaseWithMetrics struct {
	next    RotationUseCase
	metrics metrics.BusinessMetrics
}

// NewRotationUseCaseWithMetrics wraps a RotationUseCase with metrics recording.
func NewRotationUseCaseWithMetrics(useCase RotationUseCase, m metrics.BusinessMetrics) RotationUseCase {
	return &rotationUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (r *rotationUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	r.metrics.RecordOperation(ctx, "rotation", operation, status)
	r.metrics.RecordDuration(ctx, "rotation", operation, time.Since(start), status)
}

// Rotate records metrics for rotation attempts; the status label carries the
// terminal state when a record exists.
func (r *rotationUseCaseWithMetrics) Rotate(
	ctx context.Context,
	input *RotateInput,
) (*rotationDomain.RotationRecord, error) {
	start := time.Now()
	record, err := r.next.Rotate(ctx, input)

	status := "error"
	if record != nil {
		status = string(record.State)
	}
	r.metrics.RecordOperation(ctx, "rotation", "rotate", status)
	r.metrics.RecordDuration(ctx, "rotation", "rotate", time.Since(start), status)
	return record, err
}

// Get records metrics for rotation record retrieval operations.
func (r *rotationUseCaseWithMetrics) Get(
	ctx context.Context,
	recordID uuid.UUID,
) (*rotationDomain.RotationRecord, error) {
	start := time.Now()
	record, err := r.next.Get(ctx, recordID)
	r.record(ctx, "rotation_get", start, err)
	return record, err
}

// List records metrics for rotation record listing operations.
func (r *rotationUseCaseWithMetrics) List(
	ctx context.Context,
	offset, limit int,
) ([]*rotationDomain.RotationRecord, error) {
	start := time.Now()
	records, err := r.next.List(ctx, offset, limit)
	r.record(ctx, "rotation_list", start, err)
	return records, err
}

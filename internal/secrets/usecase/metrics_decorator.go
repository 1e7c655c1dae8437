package usecase

import (
	"context"
	"time"

	"github.com/rotorlabs/rotor/internal/metrics"
	secretsDomain "github.com/rotorlabs/rotor/internal/secrets/domain"
)

// secretUseCaseWithMetrics decorates SecretUseCase with metrics instrumentation.
type secretUseCaseWithMetrics struct {
	next    SecretUseCase
	metrics metrics.BusinessMetrics
}

// NewSecretUseCaseWithMetrics wraps a SecretUseCase with metrics recording.
func NewSecretUseCaseWithMetrics(useCase SecretUseCase, m metrics.BusinessMetrics) SecretUseCase {
	return &secretUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (s *secretUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, "secrets", operation, status)
	s.metrics.RecordDuration(ctx, "secrets", operation, time.Since(start), status)
}

// Put records metrics for secret version creation operations.
func (s *secretUseCaseWithMetrics) Put(
	ctx context.Context,
	path string,
	fields map[string]string,
	rotatedBy string,
) (*secretsDomain.SecretVersion, error) {
	start := time.Now()
	version, err := s.next.Put(ctx, path, fields, rotatedBy)
	s.record(ctx, "secret_put", start, err)
	return version, err
}

// Get records metrics for secret retrieval operations.
func (s *secretUseCaseWithMetrics) Get(ctx context.Context, path string) (*secretsDomain.SecretVersion, error) {
	start := time.Now()
	version, err := s.next.Get(ctx, path)
	s.record(ctx, "secret_get", start, err)
	return version, err
}

// GetVersion records metrics for versioned secret retrieval operations.
func (s *secretUseCaseWithMetrics) GetVersion(
	ctx context.Context,
	path string,
	versionNumber uint,
) (*secretsDomain.SecretVersion, error) {
	start := time.Now()
	version, err := s.next.GetVersion(ctx, path, versionNumber)
	s.record(ctx, "secret_get_version", start, err)
	return version, err
}

// List records metrics for secret path listing operations.
func (s *secretUseCaseWithMetrics) List(
	ctx context.Context,
	prefix string,
	offset, limit int,
) ([]string, error) {
	start := time.Now()
	paths, err := s.next.List(ctx, prefix, offset, limit)
	s.record(ctx, "secret_list", start, err)
	return paths, err
}

// SoftDelete records metrics for secret soft-delete operations.
func (s *secretUseCaseWithMetrics) SoftDelete(ctx context.Context, path string, versionNumber uint) error {
	start := time.Now()
	err := s.next.SoftDelete(ctx, path, versionNumber)
	s.record(ctx, "secret_soft_delete", start, err)
	return err
}

// Undelete records metrics for secret undelete operations.
func (s *secretUseCaseWithMetrics) Undelete(ctx context.Context, path string, versionNumber uint) error {
	start := time.Now()
	err := s.next.Undelete(ctx, path, versionNumber)
	s.record(ctx, "secret_undelete", start, err)
	return err
}

// Destroy records metrics for secret destroy operations.
func (s *secretUseCaseWithMetrics) Destroy(ctx context.Context, path string, versionNumber uint) error {
	start := time.Now()
	err := s.next.Destroy(ctx, path, versionNumber)
	s.record(ctx, "secret_destroy", start, err)
	return err
}

// Restore records metrics for rotation rollback restore operations.
func (s *secretUseCaseWithMetrics) Restore(
	ctx context.Context,
	path string,
	priorVersion, stagedVersion uint,
) error {
	start := time.Now()
	err := s.next.Restore(ctx, path, priorVersion, stagedVersion)
	s.record(ctx, "secret_restore", start, err)
	return err
}

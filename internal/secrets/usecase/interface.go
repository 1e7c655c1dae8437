// Package usecase defines the interfaces and implementations for the versioned
// secret store. Use cases orchestrate encryption, status transitions, and
// per-path write serialization on top of the repositories.
package usecase

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	secretsDomain "github.com/rotorlabs/rotor/internal/secrets/domain"
)

// SecretRepository defines the interface for secret version persistence operations.
// Implementations must support transaction-aware operations via context propagation.
type SecretRepository interface {
	// Create inserts a new version. Returns ErrVersionConflict when the
	// (path, version) pair already exists.
	Create(ctx context.Context, version *secretsDomain.SecretVersion) error

	// GetActive retrieves the active version for a path.
	GetActive(ctx context.Context, path string) (*secretsDomain.SecretVersion, error)

	// GetActiveForUpdate retrieves the active version with a row lock. Must
	// run inside a transaction; serializes concurrent puts on one path.
	GetActiveForUpdate(ctx context.Context, path string) (*secretsDomain.SecretVersion, error)

	// GetByVersion retrieves a specific version by path and version number.
	GetByVersion(ctx context.Context, path string, version uint) (*secretsDomain.SecretVersion, error)

	// GetByStatus retrieves the newest version in the given status for a path.
	GetByStatus(ctx context.Context, path string, status secretsDomain.Status) (*secretsDomain.SecretVersion, error)

	// MaxVersion returns the highest version number ever used for a path.
	MaxVersion(ctx context.Context, path string) (uint, error)

	// SetStatus updates a version's lifecycle status.
	SetStatus(ctx context.Context, versionID uuid.UUID, status secretsDomain.Status) error

	// SetDeletedAt sets or clears a version's soft-delete timestamp.
	SetDeletedAt(ctx context.Context, versionID uuid.UUID, deletedAt sql.NullTime) error

	// Destroy marks a version destroyed and erases its ciphertext.
	Destroy(ctx context.Context, versionID uuid.UUID) error

	// ListPaths returns the distinct child paths under a prefix with pagination.
	ListPaths(ctx context.Context, prefix string, offset, limit int) ([]string, error)
}

// SecretUseCase defines the business logic for the versioned secret store.
// Every returned version with field data carries decrypted plaintext in
// Fields; callers must not persist or log it.
type SecretUseCase interface {
	// Put appends a new version for the path in one transaction: the prior
	// previous version is archived, the prior active version is demoted to
	// previous, and the new version becomes active with the next consecutive
	// version number. Concurrent puts on the same path serialize; none is lost.
	Put(ctx context.Context, path string, fields map[string]string, rotatedBy string) (*secretsDomain.SecretVersion, error)

	// Get retrieves and decrypts the active version for a path. Destroyed and
	// soft-deleted versions read as ErrSecretNotFound.
	Get(ctx context.Context, path string) (*secretsDomain.SecretVersion, error)

	// GetVersion retrieves and decrypts a specific version.
	GetVersion(ctx context.Context, path string, version uint) (*secretsDomain.SecretVersion, error)

	// List returns the child paths under a prefix with pagination.
	List(ctx context.Context, prefix string, offset, limit int) ([]string, error)

	// SoftDelete hides a version from reads without removing it. The active
	// version is refused with ErrActiveVersion.
	SoftDelete(ctx context.Context, path string, version uint) error

	// Undelete makes a soft-deleted version readable again.
	Undelete(ctx context.Context, path string, version uint) error

	// Destroy irreversibly removes a version. Reads on it fail with
	// ErrSecretNotFound forever after. The active version is refused with
	// ErrActiveVersion.
	Destroy(ctx context.Context, path string, version uint) error

	// Restore rolls a path back after a failed rotation: the prior version
	// returns to active and the staged version is destroyed, in one
	// transaction.
	Restore(ctx context.Context, path string, priorVersion, stagedVersion uint) error
}

// Package domain defines the core domain models and types for the versioned
// secret store. Secrets are addressed by hierarchical path and hold an ordered
// sequence of immutable versions; a put never rewrites an existing version, it
// appends a new one and demotes the prior statuses.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Status describes a secret version's position in its path's lifecycle.
type Status string

const (
	// StatusActive marks the single version currently served for a path.
	StatusActive Status = "active"

	// StatusPrevious marks the version demoted by the most recent put.
	// It is the rollback target for rotations.
	StatusPrevious Status = "previous"

	// StatusArchived marks versions older than previous, retained until an
	// explicit destroy removes them.
	StatusArchived Status = "archived"

	// StatusDestroyed marks irreversibly removed versions. Their ciphertext
	// is erased and reads fail with NotFound.
	StatusDestroyed Status = "destroyed"
)

// SecretVersion represents one immutable snapshot of a secret's field values.
// Field data is sealed with AEAD before persistence; the path is bound as
// associated data so ciphertext cannot be replayed across paths.
type SecretVersion struct {
	// ID is the unique identifier for this specific version (UUIDv7).
	ID uuid.UUID
	// Path is the hierarchical key addressing the secret (e.g. "shop/database/password").
	Path string
	// Version is the monotonically increasing version number for this path.
	Version uint
	// Status is the version's lifecycle status.
	Status Status
	// Ciphertext contains the AEAD-sealed JSON encoding of the field map.
	Ciphertext []byte
	// Nonce is the random value used during AEAD encryption.
	Nonce []byte
	// Fields holds the decrypted field map in memory only; never persisted.
	Fields map[string]string `json:"-"`
	// RotatedBy records who or what triggered the version, empty for manual puts.
	RotatedBy string
	// CreatedAt is the UTC timestamp when this version was created.
	CreatedAt time.Time
	// DeletedAt marks when this version was soft-deleted (nil if visible).
	DeletedAt *time.Time
}

// Readable reports whether the version can be served: destroyed and
// soft-deleted versions read as NotFound.
func (s *SecretVersion) Readable() bool {
	return s.Status != StatusDestroyed && s.DeletedAt == nil
}

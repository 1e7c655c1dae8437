// Package usecase implements business logic orchestration for the versioned
// secret store. It coordinates AEAD encryption, the status demotion chain, and
// per-path write serialization.
package usecase

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/rotorlabs/rotor/internal/crypto/domain"
	cryptoService "github.com/rotorlabs/rotor/internal/crypto/service"
	"github.com/rotorlabs/rotor/internal/database"
	apperrors "github.com/rotorlabs/rotor/internal/errors"
	secretsDomain "github.com/rotorlabs/rotor/internal/secrets/domain"
)

// putRetries bounds how often a put retries after losing a version-number
// race to a concurrent put on the same path.
const putRetries = 3

// secretUseCase implements the SecretUseCase interface.
type secretUseCase struct {
	txManager   database.TxManager
	secretRepo  SecretRepository
	aeadManager cryptoService.AEADManager
	rootKey     []byte
	algorithm   cryptoDomain.Algorithm
}

// NewSecretUseCase creates a new secret use case instance with the provided
// dependencies. The root key must be the unwrapped root encryption key.
func NewSecretUseCase(
	txManager database.TxManager,
	secretRepo SecretRepository,
	aeadManager cryptoService.AEADManager,
	rootKey []byte,
	algorithm cryptoDomain.Algorithm,
) SecretUseCase {
	return &secretUseCase{
		txManager:   txManager,
		secretRepo:  secretRepo,
		aeadManager: aeadManager,
		rootKey:     rootKey,
		algorithm:   algorithm,
	}
}

// Put appends a new version for the path, demoting the prior statuses in the
// same transaction. A version-number collision with a concurrent put is
// retried; the loser lands on the next consecutive number.
func (s *secretUseCase) Put(
	ctx context.Context,
	path string,
	fields map[string]string,
	rotatedBy string,
) (*secretsDomain.SecretVersion, error) {
	var newVersion *secretsDomain.SecretVersion

	for attempt := 0; attempt < putRetries; attempt++ {
		err := s.txManager.WithTx(ctx, func(txCtx context.Context) error {
			// Lock the active row to serialize same-path puts. First put on a
			// path has nothing to lock; the unique (path, version) index
			// breaks that tie.
			active, err := s.secretRepo.GetActiveForUpdate(txCtx, path)
			if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
				return err
			}

			// Version numbers never regress, even past destroyed versions.
			maxVersion, err := s.secretRepo.MaxVersion(txCtx, path)
			if err != nil {
				return err
			}

			if active != nil {
				// Demote previous to archived, then active to previous.
				previous, err := s.secretRepo.GetByStatus(txCtx, path, secretsDomain.StatusPrevious)
				if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
					return err
				}
				if previous != nil {
					if err := s.secretRepo.SetStatus(txCtx, previous.ID, secretsDomain.StatusArchived); err != nil {
						return err
					}
				}
				if err := s.secretRepo.SetStatus(txCtx, active.ID, secretsDomain.StatusPrevious); err != nil {
					return err
				}
			}

			ciphertext, nonce, err := s.seal(path, fields)
			if err != nil {
				return err
			}

			newVersion = &secretsDomain.SecretVersion{
				ID:         uuid.Must(uuid.NewV7()),
				Path:       path,
				Version:    maxVersion + 1,
				Status:     secretsDomain.StatusActive,
				Ciphertext: ciphertext,
				Nonce:      nonce,
				Fields:     fields,
				RotatedBy:  rotatedBy,
				CreatedAt:  time.Now().UTC(),
			}

			return s.secretRepo.Create(txCtx, newVersion)
		})

		if errors.Is(err, secretsDomain.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return newVersion, nil
	}

	return nil, secretsDomain.ErrVersionConflict
}

// Get retrieves and decrypts the active version for a path.
func (s *secretUseCase) Get(ctx context.Context, path string) (*secretsDomain.SecretVersion, error) {
	version, err := s.secretRepo.GetActive(ctx, path)
	if err != nil {
		return nil, err
	}
	return s.open(version)
}

// GetVersion retrieves and decrypts a specific version.
func (s *secretUseCase) GetVersion(
	ctx context.Context,
	path string,
	versionNumber uint,
) (*secretsDomain.SecretVersion, error) {
	version, err := s.secretRepo.GetByVersion(ctx, path, versionNumber)
	if err != nil {
		return nil, err
	}
	return s.open(version)
}

// List returns the child paths under a prefix with pagination.
func (s *secretUseCase) List(ctx context.Context, prefix string, offset, limit int) ([]string, error) {
	return s.secretRepo.ListPaths(ctx, prefix, offset, limit)
}

// SoftDelete hides a version from reads without removing it. The active
// version cannot be soft-deleted; every path keeps exactly one readable
// active version until a write or rotation replaces it.
func (s *secretUseCase) SoftDelete(ctx context.Context, path string, versionNumber uint) error {
	version, err := s.secretRepo.GetByVersion(ctx, path, versionNumber)
	if err != nil {
		return err
	}
	if version.Status == secretsDomain.StatusDestroyed {
		return secretsDomain.ErrSecretNotFound
	}
	if version.Status == secretsDomain.StatusActive {
		return secretsDomain.ErrActiveVersion
	}
	return s.secretRepo.SetDeletedAt(ctx, version.ID, sql.NullTime{Time: time.Now().UTC(), Valid: true})
}

// Undelete makes a soft-deleted version readable again.
func (s *secretUseCase) Undelete(ctx context.Context, path string, versionNumber uint) error {
	version, err := s.secretRepo.GetByVersion(ctx, path, versionNumber)
	if err != nil {
		return err
	}
	if version.Status == secretsDomain.StatusDestroyed {
		return secretsDomain.ErrSecretNotFound
	}
	return s.secretRepo.SetDeletedAt(ctx, version.ID, sql.NullTime{})
}

// Destroy irreversibly removes a version. The active version cannot be
// destroyed; rotation rollback destroys a staged version through Restore,
// which reactivates the prior version in the same transaction.
func (s *secretUseCase) Destroy(ctx context.Context, path string, versionNumber uint) error {
	version, err := s.secretRepo.GetByVersion(ctx, path, versionNumber)
	if err != nil {
		return err
	}
	if version.Status == secretsDomain.StatusActive {
		return secretsDomain.ErrActiveVersion
	}
	return s.secretRepo.Destroy(ctx, version.ID)
}

// Restore rolls a path back after a failed rotation: the prior version returns
// to active and the staged version is destroyed, in one transaction.
func (s *secretUseCase) Restore(
	ctx context.Context,
	path string,
	priorVersion, stagedVersion uint,
) error {
	return s.txManager.WithTx(ctx, func(txCtx context.Context) error {
		staged, err := s.secretRepo.GetByVersion(txCtx, path, stagedVersion)
		if err != nil {
			return err
		}
		prior, err := s.secretRepo.GetByVersion(txCtx, path, priorVersion)
		if err != nil {
			return err
		}

		if err := s.secretRepo.Destroy(txCtx, staged.ID); err != nil {
			return err
		}
		return s.secretRepo.SetStatus(txCtx, prior.ID, secretsDomain.StatusActive)
	})
}

// seal encrypts the field map with the path bound as associated data.
func (s *secretUseCase) seal(path string, fields map[string]string) (ciphertext, nonce []byte, err error) {
	plaintext, err := json.Marshal(fields)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, "failed to marshal secret fields")
	}
	defer cryptoDomain.Zero(plaintext)

	cipher, err := s.aeadManager.CreateCipher(s.rootKey, s.algorithm)
	if err != nil {
		return nil, nil, err
	}

	return cipher.Encrypt(plaintext, []byte(path))
}

// open decrypts a version's ciphertext into its Fields map. Destroyed and
// soft-deleted versions read as not found.
func (s *secretUseCase) open(version *secretsDomain.SecretVersion) (*secretsDomain.SecretVersion, error) {
	if !version.Readable() {
		return nil, secretsDomain.ErrSecretNotFound
	}

	cipher, err := s.aeadManager.CreateCipher(s.rootKey, s.algorithm)
	if err != nil {
		return nil, err
	}

	plaintext, err := cipher.Decrypt(version.Ciphertext, version.Nonce, []byte(version.Path))
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}
	defer cryptoDomain.Zero(plaintext)

	fields := make(map[string]string)
	if err := json.Unmarshal(plaintext, &fields); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal secret fields")
	}

	version.Fields = fields
	return version, nil
}

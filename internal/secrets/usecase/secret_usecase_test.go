package usecase

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/rotorlabs/rotor/internal/crypto/domain"
	cryptoService "github.com/rotorlabs/rotor/internal/crypto/service"
	secretsDomain "github.com/rotorlabs/rotor/internal/secrets/domain"
)

// MockTxManager is a mock implementation of database.TxManager.
type MockTxManager struct {
	mock.Mock
}

func (m *MockTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Get(0) != nil {
		return args.Error(0)
	}
	// Execute the function to test the logic inside
	return fn(ctx)
}

// mockSecretRepository is a mock implementation of SecretRepository.
type mockSecretRepository struct {
	mock.Mock
}

func (m *mockSecretRepository) Create(ctx context.Context, version *secretsDomain.SecretVersion) error {
	args := m.Called(ctx, version)
	return args.Error(0)
}

func (m *mockSecretRepository) GetActive(ctx context.Context, path string) (*secretsDomain.SecretVersion, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*secretsDomain.SecretVersion), args.Error(1)
}

func (m *mockSecretRepository) GetActiveForUpdate(ctx context.Context, path string) (*secretsDomain.SecretVersion, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*secretsDomain.SecretVersion), args.Error(1)
}

func (m *mockSecretRepository) GetByVersion(
	ctx context.Context,
	path string,
	version uint,
) (*secretsDomain.SecretVersion, error) {
	args := m.Called(ctx, path, version)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*secretsDomain.SecretVersion), args.Error(1)
}

func (m *mockSecretRepository) GetByStatus(
	ctx context.Context,
	path string,
	status secretsDomain.Status,
) (*secretsDomain.SecretVersion, error) {
	args := m.Called(ctx, path, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*secretsDomain.SecretVersion), args.Error(1)
}

func (m *mockSecretRepository) MaxVersion(ctx context.Context, path string) (uint, error) {
	args := m.Called(ctx, path)
	return args.Get(0).(uint), args.Error(1)
}

func (m *mockSecretRepository) SetStatus(ctx context.Context, versionID uuid.UUID, status secretsDomain.Status) error {
	args := m.Called(ctx, versionID, status)
	return args.Error(0)
}

func (m *mockSecretRepository) SetDeletedAt(ctx context.Context, versionID uuid.UUID, deletedAt sql.NullTime) error {
	args := m.Called(ctx, versionID, deletedAt)
	return args.Error(0)
}

func (m *mockSecretRepository) Destroy(ctx context.Context, versionID uuid.UUID) error {
	args := m.Called(ctx, versionID)
	return args.Error(0)
}

func (m *mockSecretRepository) ListPaths(
	ctx context.Context,
	prefix string,
	offset, limit int,
) ([]string, error) {
	args := m.Called(ctx, prefix, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func someTime() time.Time {
	return time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
}

func testRootKey() []byte {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	return key
}

func setupSecretUseCase(t *testing.T) (SecretUseCase, *mockSecretRepository, *MockTxManager) {
	t.Helper()

	mockRepo := &mockSecretRepository{}
	mockTx := &MockTxManager{}

	uc := NewSecretUseCase(mockTx, mockRepo, cryptoService.NewAEADManager(), testRootKey(), cryptoDomain.AESGCM)

	return uc, mockRepo, mockTx
}

// sealFields encrypts a field map the way the use case does, for seeding
// repository mocks with readable ciphertext.
func sealFields(t *testing.T, path string, fields map[string]string) (ciphertext, nonce []byte) {
	t.Helper()

	cipher, err := cryptoService.NewAEADManager().CreateCipher(testRootKey(), cryptoDomain.AESGCM)
	require.NoError(t, err)

	plaintext := []byte(`{"password":"` + fields["password"] + `"}`)
	ciphertext, nonce, err = cipher.Encrypt(plaintext, []byte(path))
	require.NoError(t, err)
	return ciphertext, nonce
}

func TestSecretUseCase_Put(t *testing.T) {
	ctx := context.Background()

	t.Run("FirstVersionStartsAtOne", func(t *testing.T) {
		uc, mockRepo, mockTx := setupSecretUseCase(t)

		mockTx.On("WithTx", ctx, mock.Anything).Return(nil).Once()
		mockRepo.On("GetActiveForUpdate", ctx, "shop/database/password").
			Return(nil, secretsDomain.ErrSecretNotFound).
			Once()
		mockRepo.On("MaxVersion", ctx, "shop/database/password").Return(uint(0), nil).Once()
		mockRepo.On("Create", ctx, mock.AnythingOfType("*domain.SecretVersion")).Return(nil).Once()

		version, err := uc.Put(ctx, "shop/database/password", map[string]string{"password": "hunter2"}, "")

		assert.NoError(t, err)
		assert.Equal(t, uint(1), version.Version)
		assert.Equal(t, secretsDomain.StatusActive, version.Status)
		assert.NotEmpty(t, version.Ciphertext)
		assert.NotEmpty(t, version.Nonce)
		assert.NotEqual(t, uuid.Nil, version.ID)

		mockRepo.AssertExpectations(t)
		mockRepo.AssertNotCalled(t, "SetStatus")
	})

	t.Run("DemotesPriorStatuses", func(t *testing.T) {
		uc, mockRepo, mockTx := setupSecretUseCase(t)

		previous := &secretsDomain.SecretVersion{
			ID:      uuid.Must(uuid.NewV7()),
			Path:    "shop/database/password",
			Version: 1,
			Status:  secretsDomain.StatusPrevious,
		}
		active := &secretsDomain.SecretVersion{
			ID:      uuid.Must(uuid.NewV7()),
			Path:    "shop/database/password",
			Version: 2,
			Status:  secretsDomain.StatusActive,
		}

		mockTx.On("WithTx", ctx, mock.Anything).Return(nil).Once()
		mockRepo.On("GetActiveForUpdate", ctx, "shop/database/password").Return(active, nil).Once()
		mockRepo.On("MaxVersion", ctx, "shop/database/password").Return(uint(2), nil).Once()
		mockRepo.On("GetByStatus", ctx, "shop/database/password", secretsDomain.StatusPrevious).
			Return(previous, nil).
			Once()
		mockRepo.On("SetStatus", ctx, previous.ID, secretsDomain.StatusArchived).Return(nil).Once()
		mockRepo.On("SetStatus", ctx, active.ID, secretsDomain.StatusPrevious).Return(nil).Once()
		mockRepo.On("Create", ctx, mock.AnythingOfType("*domain.SecretVersion")).Return(nil).Once()

		version, err := uc.Put(ctx, "shop/database/password", map[string]string{"password": "hunter3"}, "rotation")

		assert.NoError(t, err)
		assert.Equal(t, uint(3), version.Version)
		assert.Equal(t, "rotation", version.RotatedBy)

		mockRepo.AssertExpectations(t)
	})

	t.Run("VersionNumbersNeverRegressPastDestroyed", func(t *testing.T) {
		uc, mockRepo, mockTx := setupSecretUseCase(t)

		// All versions destroyed: no active row, but max version is 5.
		mockTx.On("WithTx", ctx, mock.Anything).Return(nil).Once()
		mockRepo.On("GetActiveForUpdate", ctx, "shop/api-key").
			Return(nil, secretsDomain.ErrSecretNotFound).
			Once()
		mockRepo.On("MaxVersion", ctx, "shop/api-key").Return(uint(5), nil).Once()
		mockRepo.On("Create", ctx, mock.AnythingOfType("*domain.SecretVersion")).Return(nil).Once()

		version, err := uc.Put(ctx, "shop/api-key", map[string]string{"key": "abc"}, "")

		assert.NoError(t, err)
		assert.Equal(t, uint(6), version.Version)

		mockRepo.AssertExpectations(t)
	})

	t.Run("RetriesOnVersionConflict", func(t *testing.T) {
		uc, mockRepo, mockTx := setupSecretUseCase(t)

		mockTx.On("WithTx", ctx, mock.Anything).Return(nil).Times(2)
		mockRepo.On("GetActiveForUpdate", ctx, "shop/api-key").
			Return(nil, secretsDomain.ErrSecretNotFound).
			Times(2)
		mockRepo.On("MaxVersion", ctx, "shop/api-key").Return(uint(0), nil).Once()
		mockRepo.On("MaxVersion", ctx, "shop/api-key").Return(uint(1), nil).Once()
		mockRepo.On("Create", ctx, mock.Anything).Return(secretsDomain.ErrVersionConflict).Once()
		mockRepo.On("Create", ctx, mock.Anything).Return(nil).Once()

		version, err := uc.Put(ctx, "shop/api-key", map[string]string{"key": "abc"}, "")

		assert.NoError(t, err)
		assert.Equal(t, uint(2), version.Version)

		mockRepo.AssertExpectations(t)
	})

	t.Run("GivesUpAfterBoundedRetries", func(t *testing.T) {
		uc, mockRepo, mockTx := setupSecretUseCase(t)

		mockTx.On("WithTx", ctx, mock.Anything).Return(nil).Times(putRetries)
		mockRepo.On("GetActiveForUpdate", ctx, "shop/api-key").
			Return(nil, secretsDomain.ErrSecretNotFound).
			Times(putRetries)
		mockRepo.On("MaxVersion", ctx, "shop/api-key").Return(uint(0), nil).Times(putRetries)
		mockRepo.On("Create", ctx, mock.Anything).Return(secretsDomain.ErrVersionConflict).Times(putRetries)

		_, err := uc.Put(ctx, "shop/api-key", map[string]string{"key": "abc"}, "")

		assert.ErrorIs(t, err, secretsDomain.ErrVersionConflict)
		mockRepo.AssertExpectations(t)
	})
}

func TestSecretUseCase_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("DecryptsActiveVersion", func(t *testing.T) {
		uc, mockRepo, _ := setupSecretUseCase(t)

		ciphertext, nonce := sealFields(t, "shop/database/password", map[string]string{"password": "hunter2"})
		stored := &secretsDomain.SecretVersion{
			ID:         uuid.Must(uuid.NewV7()),
			Path:       "shop/database/password",
			Version:    1,
			Status:     secretsDomain.StatusActive,
			Ciphertext: ciphertext,
			Nonce:      nonce,
		}

		mockRepo.On("GetActive", ctx, "shop/database/password").Return(stored, nil).Once()

		version, err := uc.Get(ctx, "shop/database/password")

		assert.NoError(t, err)
		assert.Equal(t, "hunter2", version.Fields["password"])

		mockRepo.AssertExpectations(t)
	})

	t.Run("IdenticalFieldDataOnRepeatedReads", func(t *testing.T) {
		uc, mockRepo, _ := setupSecretUseCase(t)

		ciphertext, nonce := sealFields(t, "shop/database/password", map[string]string{"password": "hunter2"})

		// Fresh struct per call: decrypting mutates Fields only, never ciphertext.
		mockRepo.On("GetByVersion", ctx, "shop/database/password", uint(1)).
			Return(&secretsDomain.SecretVersion{
				ID:         uuid.Must(uuid.NewV7()),
				Path:       "shop/database/password",
				Version:    1,
				Status:     secretsDomain.StatusPrevious,
				Ciphertext: ciphertext,
				Nonce:      nonce,
			}, nil).
			Times(2)

		first, err := uc.GetVersion(ctx, "shop/database/password", 1)
		require.NoError(t, err)
		second, err := uc.GetVersion(ctx, "shop/database/password", 1)
		require.NoError(t, err)

		assert.Equal(t, first.Fields, second.Fields)
	})

	t.Run("DestroyedVersionReadsAsNotFound", func(t *testing.T) {
		uc, mockRepo, _ := setupSecretUseCase(t)

		mockRepo.On("GetByVersion", ctx, "shop/database/password", uint(1)).
			Return(&secretsDomain.SecretVersion{
				ID:      uuid.Must(uuid.NewV7()),
				Path:    "shop/database/password",
				Version: 1,
				Status:  secretsDomain.StatusDestroyed,
			}, nil).
			Times(2)

		// Idempotent: both reads fail identically.
		_, err := uc.GetVersion(ctx, "shop/database/password", 1)
		assert.ErrorIs(t, err, secretsDomain.ErrSecretNotFound)
		_, err = uc.GetVersion(ctx, "shop/database/password", 1)
		assert.ErrorIs(t, err, secretsDomain.ErrSecretNotFound)
	})

	t.Run("SoftDeletedVersionReadsAsNotFound", func(t *testing.T) {
		uc, mockRepo, _ := setupSecretUseCase(t)

		deletedAt := someTime()
		ciphertext, nonce := sealFields(t, "shop/database/password", map[string]string{"password": "hunter2"})

		mockRepo.On("GetActive", ctx, "shop/database/password").
			Return(&secretsDomain.SecretVersion{
				ID:         uuid.Must(uuid.NewV7()),
				Path:       "shop/database/password",
				Version:    1,
				Status:     secretsDomain.StatusActive,
				Ciphertext: ciphertext,
				Nonce:      nonce,
				DeletedAt:  &deletedAt,
			}, nil).
			Once()

		_, err := uc.Get(ctx, "shop/database/password")
		assert.ErrorIs(t, err, secretsDomain.ErrSecretNotFound)
	})

	t.Run("WrongPathAADFailsDecryption", func(t *testing.T) {
		uc, mockRepo, _ := setupSecretUseCase(t)

		// Ciphertext sealed for another path must not open here.
		ciphertext, nonce := sealFields(t, "billing/database/password", map[string]string{"password": "hunter2"})

		mockRepo.On("GetActive", ctx, "shop/database/password").
			Return(&secretsDomain.SecretVersion{
				ID:         uuid.Must(uuid.NewV7()),
				Path:       "shop/database/password",
				Version:    1,
				Status:     secretsDomain.StatusActive,
				Ciphertext: ciphertext,
				Nonce:      nonce,
			}, nil).
			Once()

		_, err := uc.Get(ctx, "shop/database/password")
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
	})
}

func TestSecretUseCase_SoftDeleteUndelete(t *testing.T) {
	ctx := context.Background()

	t.Run("SoftDeleteSetsTimestamp", func(t *testing.T) {
		uc, mockRepo, _ := setupSecretUseCase(t)

		versionID := uuid.Must(uuid.NewV7())
		mockRepo.On("GetByVersion", ctx, "shop/api-key", uint(2)).
			Return(&secretsDomain.SecretVersion{ID: versionID, Version: 2, Status: secretsDomain.StatusArchived}, nil).
			Once()
		mockRepo.On("SetDeletedAt", ctx, versionID, mock.MatchedBy(func(nt sql.NullTime) bool {
			return nt.Valid
		})).Return(nil).Once()

		err := uc.SoftDelete(ctx, "shop/api-key", 2)

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("UndeleteClearsTimestamp", func(t *testing.T) {
		uc, mockRepo, _ := setupSecretUseCase(t)

		versionID := uuid.Must(uuid.NewV7())
		deletedAt := someTime()
		mockRepo.On("GetByVersion", ctx, "shop/api-key", uint(2)).
			Return(&secretsDomain.SecretVersion{
				ID:        versionID,
				Version:   2,
				Status:    secretsDomain.StatusArchived,
				DeletedAt: &deletedAt,
			}, nil).
			Once()
		mockRepo.On("SetDeletedAt", ctx, versionID, sql.NullTime{}).Return(nil).Once()

		err := uc.Undelete(ctx, "shop/api-key", 2)

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("SoftDeleteActiveVersionFails", func(t *testing.T) {
		uc, mockRepo, _ := setupSecretUseCase(t)

		mockRepo.On("GetByVersion", ctx, "shop/api-key", uint(3)).
			Return(&secretsDomain.SecretVersion{
				ID:      uuid.Must(uuid.NewV7()),
				Version: 3,
				Status:  secretsDomain.StatusActive,
			}, nil).
			Once()

		err := uc.SoftDelete(ctx, "shop/api-key", 3)

		assert.ErrorIs(t, err, secretsDomain.ErrActiveVersion)
		mockRepo.AssertNotCalled(t, "SetDeletedAt")
	})

	t.Run("SoftDeleteDestroyedVersionFails", func(t *testing.T) {
		uc, mockRepo, _ := setupSecretUseCase(t)

		mockRepo.On("GetByVersion", ctx, "shop/api-key", uint(2)).
			Return(&secretsDomain.SecretVersion{
				ID:      uuid.Must(uuid.NewV7()),
				Version: 2,
				Status:  secretsDomain.StatusDestroyed,
			}, nil).
			Once()

		err := uc.SoftDelete(ctx, "shop/api-key", 2)

		assert.ErrorIs(t, err, secretsDomain.ErrSecretNotFound)
		mockRepo.AssertNotCalled(t, "SetDeletedAt")
	})
}

func TestSecretUseCase_Destroy(t *testing.T) {
	ctx := context.Background()

	t.Run("ArchivedVersionDestroyed", func(t *testing.T) {
		uc, mockRepo, _ := setupSecretUseCase(t)

		versionID := uuid.Must(uuid.NewV7())
		mockRepo.On("GetByVersion", ctx, "shop/api-key", uint(1)).
			Return(&secretsDomain.SecretVersion{ID: versionID, Version: 1, Status: secretsDomain.StatusArchived}, nil).
			Once()
		mockRepo.On("Destroy", ctx, versionID).Return(nil).Once()

		err := uc.Destroy(ctx, "shop/api-key", 1)

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("ActiveVersionRefused", func(t *testing.T) {
		uc, mockRepo, _ := setupSecretUseCase(t)

		mockRepo.On("GetByVersion", ctx, "shop/api-key", uint(3)).
			Return(&secretsDomain.SecretVersion{
				ID:      uuid.Must(uuid.NewV7()),
				Version: 3,
				Status:  secretsDomain.StatusActive,
			}, nil).
			Once()

		err := uc.Destroy(ctx, "shop/api-key", 3)

		assert.ErrorIs(t, err, secretsDomain.ErrActiveVersion)
		mockRepo.AssertNotCalled(t, "Destroy")
	})
}

func TestSecretUseCase_Restore(t *testing.T) {
	ctx := context.Background()

	t.Run("PriorBackToActiveStagedDestroyed", func(t *testing.T) {
		uc, mockRepo, mockTx := setupSecretUseCase(t)

		prior := &secretsDomain.SecretVersion{
			ID:      uuid.Must(uuid.NewV7()),
			Version: 3,
			Status:  secretsDomain.StatusPrevious,
		}
		staged := &secretsDomain.SecretVersion{
			ID:      uuid.Must(uuid.NewV7()),
			Version: 4,
			Status:  secretsDomain.StatusActive,
		}

		mockTx.On("WithTx", ctx, mock.Anything).Return(nil).Once()
		mockRepo.On("GetByVersion", ctx, "shop/database/password", uint(4)).Return(staged, nil).Once()
		mockRepo.On("GetByVersion", ctx, "shop/database/password", uint(3)).Return(prior, nil).Once()
		mockRepo.On("Destroy", ctx, staged.ID).Return(nil).Once()
		mockRepo.On("SetStatus", ctx, prior.ID, secretsDomain.StatusActive).Return(nil).Once()

		err := uc.Restore(ctx, "shop/database/password", 3, 4)

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("UnknownStagedVersionFails", func(t *testing.T) {
		uc, mockRepo, mockTx := setupSecretUseCase(t)

		mockTx.On("WithTx", ctx, mock.Anything).Return(nil).Once()
		mockRepo.On("GetByVersion", ctx, "shop/database/password", uint(4)).
			Return(nil, secretsDomain.ErrSecretNotFound).
			Once()

		err := uc.Restore(ctx, "shop/database/password", 3, 4)

		assert.ErrorIs(t, err, secretsDomain.ErrSecretNotFound)
		mockRepo.AssertNotCalled(t, "Destroy")
	})
}

func TestSecretUseCase_List(t *testing.T) {
	ctx := context.Background()

	uc, mockRepo, _ := setupSecretUseCase(t)

	mockRepo.On("ListPaths", ctx, "shop/", 0, 50).
		Return([]string{"shop/api-key", "shop/database/password"}, nil).
		Once()

	paths, err := uc.List(ctx, "shop/", 0, 50)

	assert.NoError(t, err)
	assert.Equal(t, []string{"shop/api-key", "shop/database/password"}, paths)
	mockRepo.AssertExpectations(t)
}

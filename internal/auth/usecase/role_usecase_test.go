package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/rotorlabs/rotor/internal/auth/domain"
	"github.com/rotorlabs/rotor/internal/config"
)

// mockRoleRepository is a mock implementation of RoleRepository for testing.
type mockRoleRepository struct {
	mock.Mock
}

func (m *mockRoleRepository) Create(ctx context.Context, role *authDomain.Role) error {
	args := m.Called(ctx, role)
	return args.Error(0)
}

func (m *mockRoleRepository) Update(ctx context.Context, role *authDomain.Role) error {
	args := m.Called(ctx, role)
	return args.Error(0)
}

func (m *mockRoleRepository) Get(ctx context.Context, roleID uuid.UUID) (*authDomain.Role, error) {
	args := m.Called(ctx, roleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.Role), args.Error(1)
}

// mockSecretService is a mock implementation of SecretService for testing.
type mockSecretService struct {
	mock.Mock
}

func (m *mockSecretService) GenerateSecret() (plainSecret string, hashedSecret string, error error) {
	args := m.Called()
	return args.String(0), args.String(1), args.Error(2)
}

func (m *mockSecretService) HashSecret(plainSecret string) (hashedSecret string, error error) {
	args := m.Called(plainSecret)
	return args.String(0), args.Error(1)
}

func (m *mockSecretService) CompareSecret(plainSecret string, hashedSecret string) bool {
	args := m.Called(plainSecret, hashedSecret)
	return args.Bool(0)
}

func testRoleConfig() *config.Config {
	return &config.Config{
		RoleSecretWindow: 720 * time.Hour,
	}
}

func TestRoleUseCase_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_CreatesRoleWithGeneratedSecret", func(t *testing.T) {
		mockRepo := &mockRoleRepository{}
		mockSecretSvc := &mockSecretService{}

		mockSecretSvc.On("GenerateSecret").Return("plain-secret", "hashed-secret", nil)
		mockRepo.On("Create", ctx, mock.AnythingOfType("*domain.Role")).Return(nil)

		useCase := NewRoleUseCase(testRoleConfig(), mockRepo, mockSecretSvc)

		output, err := useCase.Create(ctx, &authDomain.CreateRoleInput{
			Name:     "payments-service",
			IsActive: true,
			Policies: []authDomain.PolicyDocument{
				{Path: "prod/payments/*", Capabilities: []authDomain.Capability{authDomain.ReadCapability}},
			},
		})

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, output.ID)
		assert.Equal(t, "plain-secret", output.PlainSecret)

		createdRole := mockRepo.Calls[0].Arguments.Get(1).(*authDomain.Role)
		assert.Equal(t, "hashed-secret", createdRole.SecretHash)
		assert.Equal(t, "payments-service", createdRole.Name)
		assert.True(t, createdRole.IsActive)
		// Secret window starts at creation time
		assert.WithinDuration(
			t,
			time.Now().UTC().Add(720*time.Hour),
			createdRole.SecretExpiresAt,
			time.Second,
		)

		mockRepo.AssertExpectations(t)
		mockSecretSvc.AssertExpectations(t)
	})
}

func TestRoleUseCase_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_UpdatesMutableFields", func(t *testing.T) {
		mockRepo := &mockRoleRepository{}
		mockSecretSvc := &mockSecretService{}

		role := activeTestRole("hashed-secret")

		mockRepo.On("Get", ctx, role.ID).Return(role, nil)
		mockRepo.On("Update", ctx, role).Return(nil)

		useCase := NewRoleUseCase(testRoleConfig(), mockRepo, mockSecretSvc)

		newPolicies := []authDomain.PolicyDocument{
			{Path: "staging/*", Capabilities: []authDomain.Capability{authDomain.WriteCapability}},
		}
		err := useCase.Update(ctx, role.ID, &authDomain.UpdateRoleInput{
			Name:     "renamed-role",
			IsActive: false,
			Policies: newPolicies,
		})

		require.NoError(t, err)
		assert.Equal(t, "renamed-role", role.Name)
		assert.False(t, role.IsActive)
		assert.Equal(t, newPolicies, role.Policies)
		// Secret is untouched by updates
		assert.Equal(t, "hashed-secret", role.SecretHash)
	})

	t.Run("Error_RoleNotFound", func(t *testing.T) {
		mockRepo := &mockRoleRepository{}
		mockSecretSvc := &mockSecretService{}

		roleID := uuid.Must(uuid.NewV7())
		mockRepo.On("Get", ctx, roleID).Return(nil, authDomain.ErrRoleNotFound)

		useCase := NewRoleUseCase(testRoleConfig(), mockRepo, mockSecretSvc)

		err := useCase.Update(ctx, roleID, &authDomain.UpdateRoleInput{Name: "x"})

		assert.ErrorIs(t, err, authDomain.ErrRoleNotFound)
	})
}

func TestRoleUseCase_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_SoftDeletesRole", func(t *testing.T) {
		mockRepo := &mockRoleRepository{}
		mockSecretSvc := &mockSecretService{}

		role := activeTestRole("hashed-secret")

		mockRepo.On("Get", ctx, role.ID).Return(role, nil)
		mockRepo.On("Update", ctx, role).Return(nil)

		useCase := NewRoleUseCase(testRoleConfig(), mockRepo, mockSecretSvc)

		err := useCase.Delete(ctx, role.ID)

		require.NoError(t, err)
		assert.False(t, role.IsActive)
	})
}

func TestRoleUseCase_RotateSecret(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_ReplacesSecretAndResetsLockout", func(t *testing.T) {
		mockRepo := &mockRoleRepository{}
		mockSecretSvc := &mockSecretService{}

		role := activeTestRole("old-hash")
		lockedUntil := time.Now().UTC().Add(10 * time.Minute)
		role.FailedAttempts = 5
		role.LockedUntil = &lockedUntil

		mockRepo.On("Get", ctx, role.ID).Return(role, nil)
		mockRepo.On("Update", ctx, role).Return(nil)
		mockSecretSvc.On("GenerateSecret").Return("new-plain", "new-hash", nil)

		useCase := NewRoleUseCase(testRoleConfig(), mockRepo, mockSecretSvc)

		output, err := useCase.RotateSecret(ctx, role.ID)

		require.NoError(t, err)
		assert.Equal(t, role.ID, output.ID)
		assert.Equal(t, "new-plain", output.PlainSecret)
		assert.Equal(t, "new-hash", role.SecretHash)
		assert.Equal(t, 0, role.FailedAttempts)
		assert.Nil(t, role.LockedUntil)
		assert.WithinDuration(
			t,
			time.Now().UTC().Add(720*time.Hour),
			role.SecretExpiresAt,
			time.Second,
		)
	})

	t.Run("Error_RoleNotFound", func(t *testing.T) {
		mockRepo := &mockRoleRepository{}
		mockSecretSvc := &mockSecretService{}

		roleID := uuid.Must(uuid.NewV7())
		mockRepo.On("Get", ctx, roleID).Return(nil, authDomain.ErrRoleNotFound)

		useCase := NewRoleUseCase(testRoleConfig(), mockRepo, mockSecretSvc)

		_, err := useCase.RotateSecret(ctx, roleID)

		assert.ErrorIs(t, err, authDomain.ErrRoleNotFound)
	})
}

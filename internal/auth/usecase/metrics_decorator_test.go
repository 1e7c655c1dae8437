package usecase

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/rotorlabs/rotor/internal/auth/domain"
	"github.com/rotorlabs/rotor/internal/metrics"
)

func TestRoleUseCaseWithMetrics_Create(t *testing.T) {
	ctx := context.Background()

	mockRepo := &mockRoleRepository{}
	mockSecretSvc := &mockSecretService{}

	mockSecretSvc.On("GenerateSecret").Return("plain", "hash", nil)
	mockRepo.On("Create", ctx, mock.AnythingOfType("*domain.Role")).Return(nil)

	useCase := NewRoleUseCaseWithMetrics(
		NewRoleUseCase(testRoleConfig(), mockRepo, mockSecretSvc),
		metrics.NewNoOpBusinessMetrics(),
	)

	output, err := useCase.Create(ctx, &authDomain.CreateRoleInput{
		Name:     "metrics-role",
		IsActive: true,
	})

	require.NoError(t, err)
	assert.Equal(t, "plain", output.PlainSecret)
}

func TestTokenUseCaseWithMetrics_Authenticate_PropagatesError(t *testing.T) {
	ctx := context.Background()

	mockRoleRepo := &mockRoleRepository{}
	mockTokenRepo := &mockTokenRepository{}
	mockSecretSvc := &mockSecretService{}
	mockTokenSvc := &mockTokenService{}
	mockAuditLog := &mockAuditLogUseCase{}

	roleID := uuid.Must(uuid.NewV7())
	mockRoleRepo.On("Get", ctx, roleID).Return(nil, authDomain.ErrRoleNotFound)
	mockAuditLog.On(
		"Create", ctx, mock.AnythingOfType("uuid.UUID"), roleID,
		authDomain.OpAuthenticate, "", authDomain.OutcomeDenied, mock.Anything,
	).Return(nil)

	useCase := NewTokenUseCaseWithMetrics(
		NewTokenUseCase(
			testAuthConfig(), mockRoleRepo, mockTokenRepo, mockSecretSvc, mockTokenSvc, mockAuditLog,
		),
		metrics.NewNoOpBusinessMetrics(),
	)

	_, err := useCase.Authenticate(ctx, &authDomain.AuthenticateInput{
		RoleID:     roleID,
		RoleSecret: "secret",
	})

	assert.ErrorIs(t, err, authDomain.ErrInvalidCredentials)
}

// Package mocks provides mock implementations for testing HTTP handlers.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	authDomain "github.com/rotorlabs/rotor/internal/auth/domain"
	authUseCase "github.com/rotorlabs/rotor/internal/auth/usecase"
)

// MockRoleUseCase is a mock implementation of RoleUseCase for testing.
type MockRoleUseCase struct {
	mock.Mock
}

// Create mocks the Create method of RoleUseCase.
func (m *MockRoleUseCase) Create(
	ctx context.Context,
	createRoleInput *authDomain.CreateRoleInput,
) (*authDomain.CreateRoleOutput, error) {
	args := m.Called(ctx, createRoleInput)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.CreateRoleOutput), args.Error(1)
}

// Update mocks the Update method of RoleUseCase.
func (m *MockRoleUseCase) Update(
	ctx context.Context,
	roleID uuid.UUID,
	updateRoleInput *authDomain.UpdateRoleInput,
) error {
	args := m.Called(ctx, roleID, updateRoleInput)
	return args.Error(0)
}

// Get mocks the Get method of RoleUseCase.
func (m *MockRoleUseCase) Get(ctx context.Context, roleID uuid.UUID) (*authDomain.Role, error) {
	args := m.Called(ctx, roleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.Role), args.Error(1)
}

// Delete mocks the Delete method of RoleUseCase.
func (m *MockRoleUseCase) Delete(ctx context.Context, roleID uuid.UUID) error {
	args := m.Called(ctx, roleID)
	return args.Error(0)
}

// RotateSecret mocks the RotateSecret method of RoleUseCase.
func (m *MockRoleUseCase) RotateSecret(
	ctx context.Context,
	roleID uuid.UUID,
) (*authDomain.CreateRoleOutput, error) {
	args := m.Called(ctx, roleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.CreateRoleOutput), args.Error(1)
}

// MockTokenUseCase is a mock implementation of TokenUseCase for testing.
type MockTokenUseCase struct {
	mock.Mock
}

// Authenticate mocks the Authenticate method of TokenUseCase.
func (m *MockTokenUseCase) Authenticate(
	ctx context.Context,
	authenticateInput *authDomain.AuthenticateInput,
) (*authDomain.AuthenticateOutput, error) {
	args := m.Called(ctx, authenticateInput)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.AuthenticateOutput), args.Error(1)
}

// Renew mocks the Renew method of TokenUseCase.
func (m *MockTokenUseCase) Renew(ctx context.Context, tokenHash string) (*authDomain.RenewOutput, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.RenewOutput), args.Error(1)
}

// AuthenticateToken mocks the AuthenticateToken method of TokenUseCase.
func (m *MockTokenUseCase) AuthenticateToken(
	ctx context.Context,
	tokenHash string,
) (*authDomain.Role, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.Role), args.Error(1)
}

// DeleteExpired mocks the DeleteExpired method of TokenUseCase.
func (m *MockTokenUseCase) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockAuditLogUseCase is a mock implementation of AuditLogUseCase for testing.
type MockAuditLogUseCase struct {
	mock.Mock
}

// Create mocks the Create method of AuditLogUseCase.
func (m *MockAuditLogUseCase) Create(
	ctx context.Context,
	requestID uuid.UUID,
	roleID uuid.UUID,
	operation string,
	path string,
	outcome authDomain.Outcome,
	metadata map[string]any,
) error {
	args := m.Called(ctx, requestID, roleID, operation, path, outcome, metadata)
	return args.Error(0)
}

// List mocks the List method of AuditLogUseCase.
func (m *MockAuditLogUseCase) List(
	ctx context.Context,
	offset, limit int,
) ([]*authDomain.AuditLog, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*authDomain.AuditLog), args.Error(1)
}

// Verify mocks the Verify method of AuditLogUseCase.
func (m *MockAuditLogUseCase) Verify(
	ctx context.Context,
	cutoff time.Time,
) (*authUseCase.VerifyResult, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authUseCase.VerifyResult), args.Error(1)
}

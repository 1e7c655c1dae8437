// Package mocks provides mock implementations of rotation use case interfaces for testing.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	rotationDomain "github.com/rotorlabs/rotor/internal/rotation/domain"
	rotationUseCase "github.com/rotorlabs/rotor/internal/rotation/usecase"
)

// MockRotationUseCase is a mock implementation of the RotationUseCase interface.
type MockRotationUseCase struct {
	mock.Mock
}

func (m *MockRotationUseCase) Rotate(
	ctx context.Context,
	input *rotationUseCase.RotateInput,
) (*rotationDomain.RotationRecord, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rotationDomain.RotationRecord), args.Error(1)
}

func (m *MockRotationUseCase) Get(
	ctx context.Context,
	recordID uuid.UUID,
) (*rotationDomain.RotationRecord, error) {
	args := m.Called(ctx, recordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rotationDomain.RotationRecord), args.Error(1)
}

func (m *MockRotationUseCase) List(
	ctx context.Context,
	offset, limit int,
) ([]*rotationDomain.RotationRecord, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*rotationDomain.RotationRecord), args.Error(1)
}

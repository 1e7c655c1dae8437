// Package mocks provides mock implementations of secret store use case interfaces for testing.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	secretsDomain "github.com/rotorlabs/rotor/internal/secrets/domain"
)

// MockSecretUseCase is a mock implementation of the SecretUseCase interface.
type MockSecretUseCase struct {
	mock.Mock
}

func (m *MockSecretUseCase) Put(
	ctx context.Context,
	path string,
	fields map[string]string,
	rotatedBy string,
) (*secretsDomain.SecretVersion, error) {
	args := m.Called(ctx, path, fields, rotatedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*secretsDomain.SecretVersion), args.Error(1)
}

func (m *MockSecretUseCase) Get(ctx context.Context, path string) (*secretsDomain.SecretVersion, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*secretsDomain.SecretVersion), args.Error(1)
}

func (m *MockSecretUseCase) GetVersion(
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

func (m *MockSecretUseCase) List(
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

func (m *MockSecretUseCase) SoftDelete(ctx context.Context, path string, version uint) error {
	args := m.Called(ctx, path, version)
	return args.Error(0)
}

func (m *MockSecretUseCase) Undelete(ctx context.Context, path string, version uint) error {
	args := m.Called(ctx, path, version)
	return args.Error(0)
}

func (m *MockSecretUseCase) Destroy(ctx context.Context, path string, version uint) error {
	args := m.Called(ctx, path, version)
	return args.Error(0)
}

func (m *MockSecretUseCase) Restore(
	ctx context.Context,
	path string,
	priorVersion, stagedVersion uint,
) error {
	args := m.Called(ctx, path, priorVersion, stagedVersion)
	return args.Error(0)
}

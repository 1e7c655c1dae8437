package commands

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	authDomain "github.com/rotorlabs/rotor/internal/auth/domain"
	authMocks "github.com/rotorlabs/rotor/internal/auth/http/mocks"
)

func TestCreateRole(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()
	roleID := uuid.New()
	plainSecret := "test-secret"

	t.Run("non-interactive-text", func(t *testing.T) {
		mockUseCase := &authMocks.MockRoleUseCase{}
		input := &authDomain.CreateRoleInput{
			Name:     "test-role",
			IsActive: true,
			Policies: []authDomain.PolicyDocument{
				{Path: "*", Capabilities: []authDomain.Capability{"read"}},
			},
		}
		output := &authDomain.CreateRoleOutput{
			ID:          roleID,
			PlainSecret: plainSecret,
		}

		mockUseCase.On("Create", ctx, input).Return(output, nil)

		var out bytes.Buffer
		io := IOTuple{
			Reader: nil,
			Writer: &out,
		}

		err := createRole(
			ctx,
			mockUseCase,
			logger,
			"test-role",
			true,
			`[{"path":"*","capabilities":["read"]}]`,
			"text",
			io,
		)

		require.NoError(t, err)
		require.Contains(t, out.String(), roleID.String())
		require.Contains(t, out.String(), plainSecret)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("interactive-json", func(t *testing.T) {
		mockUseCase := &authMocks.MockRoleUseCase{}
		input := &authDomain.CreateRoleInput{
			Name:     "test-role",
			IsActive: true,
			Policies: []authDomain.PolicyDocument{
				{Path: "db/*", Capabilities: []authDomain.Capability{"read", "rotate"}},
			},
		}
		output := &authDomain.CreateRoleOutput{
			ID:          roleID,
			PlainSecret: plainSecret,
		}

		mockUseCase.On("Create", ctx, input).Return(output, nil)

		// Simulate interactive input:
		// 1. Path: db/*
		// 2. Caps: read,rotate
		// 3. Add another: n
		userInput := "db/*\nread,rotate\nn\n"
		var out bytes.Buffer
		io := IOTuple{
			Reader: bytes.NewBufferString(userInput),
			Writer: &out,
		}

		err := createRole(ctx, mockUseCase, logger, "test-role", true, "", "json", io)

		require.NoError(t, err)
		require.Contains(t, out.String(), `"role_id"`)
		require.Contains(t, out.String(), plainSecret)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("invalid-policies-json", func(t *testing.T) {
		mockUseCase := &authMocks.MockRoleUseCase{}

		err := createRole(ctx, mockUseCase, logger, "test-role", true, "not-json", "text", IOTuple{Writer: &bytes.Buffer{}})

		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to parse policies JSON")
	})

	t.Run("empty-policies", func(t *testing.T) {
		mockUseCase := &authMocks.MockRoleUseCase{}

		err := createRole(ctx, mockUseCase, logger, "test-role", true, "[]", "text", IOTuple{Writer: &bytes.Buffer{}})

		require.Error(t, err)
		require.Contains(t, err.Error(), "at least one policy is required")
	})
}

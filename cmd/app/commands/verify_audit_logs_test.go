package commands

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	authMocks "github.com/rotorlabs/rotor/internal/auth/http/mocks"
	authUseCase "github.com/rotorlabs/rotor/internal/auth/usecase"
)

func TestVerifyAuditLogs(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()
	cutoff := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("passed-text", func(t *testing.T) {
		mockUseCase := &authMocks.MockAuditLogUseCase{}
		mockUseCase.On("Verify", ctx, cutoff).Return(&authUseCase.VerifyResult{
			Checked: 42,
			Invalid: 0,
		}, nil)

		var out bytes.Buffer
		err := verifyAuditLogs(ctx, mockUseCase, logger, &out, cutoff, "text")

		require.NoError(t, err)
		require.Contains(t, out.String(), "Total Checked:  42")
		require.Contains(t, out.String(), "Status: PASSED")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("tampered-entries-fail", func(t *testing.T) {
		tamperedID := uuid.New()
		mockUseCase := &authMocks.MockAuditLogUseCase{}
		mockUseCase.On("Verify", ctx, cutoff).Return(&authUseCase.VerifyResult{
			Checked:  10,
			Invalid:  1,
			Tampered: []uuid.UUID{tamperedID},
		}, nil)

		var out bytes.Buffer
		err := verifyAuditLogs(ctx, mockUseCase, logger, &out, cutoff, "text")

		require.Error(t, err)
		require.Contains(t, err.Error(), "integrity check failed: 1 invalid signature(s)")
		require.Contains(t, out.String(), tamperedID.String())
		require.Contains(t, out.String(), "Status: FAILED")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("json-output", func(t *testing.T) {
		mockUseCase := &authMocks.MockAuditLogUseCase{}
		mockUseCase.On("Verify", ctx, cutoff).Return(&authUseCase.VerifyResult{
			Checked: 7,
			Invalid: 0,
		}, nil)

		var out bytes.Buffer
		err := verifyAuditLogs(ctx, mockUseCase, logger, &out, cutoff, "json")

		require.NoError(t, err)
		require.Contains(t, out.String(), `"checked": 7`)
		require.Contains(t, out.String(), `"passed": true`)
		mockUseCase.AssertExpectations(t)
	})
}

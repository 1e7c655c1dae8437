package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	authDomain "github.com/rotorlabs/rotor/internal/auth/domain"
	"github.com/rotorlabs/rotor/internal/auth/http/dto"
	httpMocks "github.com/rotorlabs/rotor/internal/auth/http/mocks"
)

// setupAuditLogTestHandler creates a test audit log handler with mocked dependencies.
func setupAuditLogTestHandler(t *testing.T) (*AuditLogHandler, *httpMocks.MockAuditLogUseCase) {
	t.Helper()

	mockAuditLogUseCase := &httpMocks.MockAuditLogUseCase{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	handler := NewAuditLogHandler(mockAuditLogUseCase, logger)

	return handler, mockAuditLogUseCase
}

func TestAuditLogHandler_ListHandler(t *testing.T) {
	t.Run("Success_ReturnsEntries", func(t *testing.T) {
		handler, mockUseCase := setupAuditLogTestHandler(t)

		auditLogs := []*authDomain.AuditLog{
			{
				ID:        uuid.Must(uuid.NewV7()),
				RequestID: uuid.Must(uuid.NewV7()),
				RoleID:    uuid.Must(uuid.NewV7()),
				Operation: authDomain.OpAuthenticate,
				Path:      "auth/token",
				Outcome:   authDomain.OutcomeSuccess,
				CreatedAt: time.Now().UTC(),
			},
			{
				ID:        uuid.Must(uuid.NewV7()),
				RequestID: uuid.Must(uuid.NewV7()),
				RoleID:    uuid.Must(uuid.NewV7()),
				Operation: authDomain.OpAuthenticate,
				Path:      "auth/token",
				Outcome:   authDomain.OutcomeDenied,
				Metadata:  map[string]any{"reason": "invalid_secret"},
				CreatedAt: time.Now().UTC(),
			},
		}

		mockUseCase.On("List", mock.Anything, 0, 50).Return(auditLogs, nil).Once()

		c, w := createTestContext(http.MethodGet, "/v1/audit-logs", nil)

		handler.ListHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.ListAuditLogsResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Len(t, response.Data, 2)
		assert.Equal(t, "success", response.Data[0].Outcome)
		assert.Equal(t, "denied", response.Data[1].Outcome)
		assert.Equal(t, "invalid_secret", response.Data[1].Metadata["reason"])

		mockUseCase.AssertExpectations(t)
	})

	t.Run("Success_CustomPagination", func(t *testing.T) {
		handler, mockUseCase := setupAuditLogTestHandler(t)

		mockUseCase.On("List", mock.Anything, 10, 5).
			Return([]*authDomain.AuditLog{}, nil).
			Once()

		c, w := createTestContext(http.MethodGet, "/v1/audit-logs?offset=10&limit=5", nil)

		handler.ListHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_InvalidPagination", func(t *testing.T) {
		handler, _ := setupAuditLogTestHandler(t)

		c, w := createTestContext(http.MethodGet, "/v1/audit-logs?offset=abc", nil)

		handler.ListHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Error_UseCaseFailure", func(t *testing.T) {
		handler, mockUseCase := setupAuditLogTestHandler(t)

		mockUseCase.On("List", mock.Anything, 0, 50).
			Return(nil, assert.AnError).
			Once()

		c, w := createTestContext(http.MethodGet, "/v1/audit-logs", nil)

		handler.ListHandler(c)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		mockUseCase.AssertExpectations(t)
	})
}

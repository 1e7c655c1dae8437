// Package http provides HTTP handlers for rotation operations.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authDomain "github.com/rotorlabs/rotor/internal/auth/domain"
	authHTTP "github.com/rotorlabs/rotor/internal/auth/http"
	apperrors "github.com/rotorlabs/rotor/internal/errors"
	"github.com/rotorlabs/rotor/internal/httputil"
	"github.com/rotorlabs/rotor/internal/rotation/http/dto"
	rotationUseCase "github.com/rotorlabs/rotor/internal/rotation/usecase"
	customValidation "github.com/rotorlabs/rotor/internal/validation"
)

// RotationHandler handles HTTP requests for rotation operations.
type RotationHandler struct {
	rotationUseCase rotationUseCase.RotationUseCase
	logger          *slog.Logger
}

// NewRotationHandler creates a new rotation handler with required dependencies.
func NewRotationHandler(
	useCase rotationUseCase.RotationUseCase,
	logger *slog.Logger,
) *RotationHandler {
	return &RotationHandler{
		rotationUseCase: useCase,
		logger:          logger,
	}
}

// RotateHandler runs one rotation attempt to its terminal state.
// POST /v1/rotate - Requires RotateCapability on the requested path.
// The response carries the terminal rotation record whenever the attempt ran,
// including rolled-back and failed attempts; only requests rejected before an
// attempt started map to an error status.
func (h *RotationHandler) RotateHandler(c *gin.Context) {
	var req dto.RotateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	// The rotation target comes from the request body, so the path-based
	// authorization middleware cannot cover it; the capability is checked here.
	role, ok := authHTTP.GetRole(c.Request.Context())
	if !ok || !role.IsAllowed(req.Path, authDomain.RotateCapability) {
		httputil.HandleErrorGin(c,
			apperrors.Wrap(apperrors.ErrForbidden, "identity is not permitted to rotate this path"),
			h.logger)
		return
	}

	record, err := h.rotationUseCase.Rotate(c.Request.Context(), &rotationUseCase.RotateInput{
		Path:        req.Path,
		SecretClass: req.SecretClass,
		Role:        role,
		RequestedBy: role.Name,
	})
	if record == nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapRotationToResponse(record))
}

// GetHandler retrieves one rotation record by ID.
// GET /v1/rotations/:id
func (h *RotationHandler) GetHandler(c *gin.Context) {
	recordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			apperrors.Wrap(apperrors.ErrInvalidInput, "invalid rotation ID format"),
			h.logger)
		return
	}

	record, err := h.rotationUseCase.Get(c.Request.Context(), recordID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapRotationToResponse(record))
}

// ListHandler lists rotation records, newest first.
// GET /v1/rotations?offset=0&limit=50
func (h *RotationHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	records, err := h.rotationUseCase.List(c.Request.Context(), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapRotationsToListResponse(records))
}

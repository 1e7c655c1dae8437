// Package http provides HTTP handlers for authentication and role management operations.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authDomain "github.com/rotorlabs/rotor/internal/auth/domain"
	"github.com/rotorlabs/rotor/internal/auth/http/dto"
	authUseCase "github.com/rotorlabs/rotor/internal/auth/usecase"
	"github.com/rotorlabs/rotor/internal/httputil"
	customValidation "github.com/rotorlabs/rotor/internal/validation"
)

// RoleHandler handles HTTP requests for role management operations.
type RoleHandler struct {
	roleUseCase authUseCase.RoleUseCase
	logger      *slog.Logger
}

// NewRoleHandler creates a new role handler with required dependencies.
func NewRoleHandler(
	roleUseCase authUseCase.RoleUseCase,
	logger *slog.Logger,
) *RoleHandler {
	return &RoleHandler{
		roleUseCase: roleUseCase,
		logger:      logger,
	}
}

// CreateHandler creates a new service role with policies.
// POST /v1/roles - Requires WriteCapability on path roles.
// Returns 201 Created with ID and plain text role secret.
func (h *RoleHandler) CreateHandler(c *gin.Context) {
	var req dto.CreateRoleRequest

	// Parse and bind JSON
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	// Validate request
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	// Create input for use case
	input := &authDomain.CreateRoleInput{
		Name:     req.Name,
		IsActive: req.IsActive,
		Policies: req.Policies,
	}

	// Call use case
	output, err := h.roleUseCase.Create(c.Request.Context(), input)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	// Return response with plain secret
	response := dto.CreateRoleResponse{
		ID:     output.ID.String(),
		Secret: output.PlainSecret,
	}

	c.JSON(http.StatusCreated, response)
}

// GetHandler retrieves a role by ID.
// GET /v1/roles/:id - Requires ReadCapability on path roles.
// Returns 200 OK with role data (no secret material).
func (h *RoleHandler) GetHandler(c *gin.Context) {
	// Parse and validate UUID
	roleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid role ID format: must be a valid UUID"),
			h.logger)
		return
	}

	// Call use case
	role, err := h.roleUseCase.Get(c.Request.Context(), roleID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	// Return response
	c.JSON(http.StatusOK, dto.MapRoleToResponse(role))
}

// UpdateHandler updates an existing role's configuration.
// PUT /v1/roles/:id - Requires WriteCapability on path roles.
// Returns 200 OK with updated role data (no secret material).
func (h *RoleHandler) UpdateHandler(c *gin.Context) {
	// Parse and validate UUID
	roleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid role ID format: must be a valid UUID"),
			h.logger)
		return
	}

	var req dto.UpdateRoleRequest

	// Parse and bind JSON
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	// Validate request
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	// Create input for use case
	input := &authDomain.UpdateRoleInput{
		Name:     req.Name,
		IsActive: req.IsActive,
		Policies: req.Policies,
	}

	// Call use case
	if err := h.roleUseCase.Update(c.Request.Context(), roleID, input); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	// Get updated role to return
	role, err := h.roleUseCase.Get(c.Request.Context(), roleID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	// Return response
	c.JSON(http.StatusOK, dto.MapRoleToResponse(role))
}

// DeleteHandler soft deletes a role by setting IsActive to false.
// DELETE /v1/roles/:id - Requires DeleteCapability on path roles.
// Returns 204 No Content.
func (h *RoleHandler) DeleteHandler(c *gin.Context) {
	// Parse and validate UUID
	roleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid role ID format: must be a valid UUID"),
			h.logger)
		return
	}

	// Call use case
	if err := h.roleUseCase.Delete(c.Request.Context(), roleID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	// Return 204 No Content with empty body
	c.Data(http.StatusNoContent, "application/json", nil)
}

// RotateSecretHandler replaces the role's secret and restarts its usable window.
// POST /v1/roles/:id/rotate-secret - Requires WriteCapability on path roles.
// Returns 200 OK with the new plain text secret, returned once.
func (h *RoleHandler) RotateSecretHandler(c *gin.Context) {
	// Parse and validate UUID
	roleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid role ID format: must be a valid UUID"),
			h.logger)
		return
	}

	// Call use case
	output, err := h.roleUseCase.RotateSecret(c.Request.Context(), roleID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	// Return response with the new plain secret
	response := dto.CreateRoleResponse{
		ID:     output.ID.String(),
		Secret: output.PlainSecret,
	}

	c.JSON(http.StatusOK, response)
}

// Package http provides HTTP handlers for authentication and role management operations.
package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authDomain "github.com/rotorlabs/rotor/internal/auth/domain"
	"github.com/rotorlabs/rotor/internal/auth/http/dto"
	authService "github.com/rotorlabs/rotor/internal/auth/service"
	authUseCase "github.com/rotorlabs/rotor/internal/auth/usecase"
	apperrors "github.com/rotorlabs/rotor/internal/errors"
	"github.com/rotorlabs/rotor/internal/httputil"
	customValidation "github.com/rotorlabs/rotor/internal/validation"
)

// TokenHandler handles HTTP requests for the identity exchange.
// It coordinates token issuance and renewal with the TokenUseCase.
type TokenHandler struct {
	tokenUseCase authUseCase.TokenUseCase
	tokenService authService.TokenService
	logger       *slog.Logger
}

// NewTokenHandler creates a new token handler with required dependencies.
func NewTokenHandler(
	tokenUseCase authUseCase.TokenUseCase,
	tokenService authService.TokenService,
	logger *slog.Logger,
) *TokenHandler {
	return &TokenHandler{
		tokenUseCase: tokenUseCase,
		tokenService: tokenService,
		logger:       logger,
	}
}

// AuthenticateHandler exchanges a role credential pair for a session token.
// POST /v1/auth/token - No authentication required (this is the authentication endpoint).
// Returns 201 Created with the token and its time-to-live in seconds.
func (h *TokenHandler) AuthenticateHandler(c *gin.Context) {
	var req dto.AuthenticateRequest

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

	// Parse role ID as UUID
	roleID, err := uuid.Parse(req.RoleID)
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid role_id format: must be a valid UUID"),
			h.logger)
		return
	}

	// Create input for use case
	input := &authDomain.AuthenticateInput{
		RoleID:     roleID,
		RoleSecret: req.RoleSecret,
	}

	// Call use case
	output, err := h.tokenUseCase.Authenticate(c.Request.Context(), input)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	// Return response with token and time-to-live
	response := dto.AuthenticateResponse{
		Token: output.PlainToken,
		TTL:   int64(output.TTL.Seconds()),
	}

	c.JSON(http.StatusCreated, response)
}

// RenewHandler extends the expiry of the presented session token.
// POST /v1/auth/token/renew - Authenticates via the Bearer token itself.
// Returns 200 OK with the new time-to-live, or 403 Forbidden when the token
// already reached its maximum absolute lifetime.
func (h *TokenHandler) RenewHandler(c *gin.Context) {
	plainToken, ok := bearerToken(c)
	if !ok {
		httputil.HandleErrorGin(c, apperrors.Wrap(apperrors.ErrUnauthorized, "missing bearer token"), h.logger)
		return
	}

	// Call use case with the token hash (plain tokens are never stored or logged)
	output, err := h.tokenUseCase.Renew(c.Request.Context(), h.tokenService.HashToken(plainToken))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	response := dto.RenewResponse{
		TTL: int64(output.TTL.Seconds()),
	}

	c.JSON(http.StatusOK, response)
}

// bearerToken extracts the Bearer token from the Authorization header.
// The "Bearer" prefix is matched case-insensitively.
func bearerToken(c *gin.Context) (string, bool) {
	const bearerPrefix = "Bearer "

	authHeader := c.GetHeader("Authorization")
	if len(authHeader) <= len(bearerPrefix) ||
		!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}

	token := strings.TrimSpace(authHeader[len(bearerPrefix):])
	if token == "" {
		return "", false
	}
	return token, true
}

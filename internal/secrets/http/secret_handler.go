// Package http provides HTTP handlers for the versioned secret store.
package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	authDomain "github.com/rotorlabs/rotor/internal/auth/domain"
	authHTTP "github.com/rotorlabs/rotor/internal/auth/http"
	authUseCase "github.com/rotorlabs/rotor/internal/auth/usecase"
	"github.com/rotorlabs/rotor/internal/contextutil"
	apperrors "github.com/rotorlabs/rotor/internal/errors"
	"github.com/rotorlabs/rotor/internal/httputil"
	secretsDomain "github.com/rotorlabs/rotor/internal/secrets/domain"
	"github.com/rotorlabs/rotor/internal/secrets/http/dto"
	secretsUseCase "github.com/rotorlabs/rotor/internal/secrets/usecase"
	customValidation "github.com/rotorlabs/rotor/internal/validation"
)

// SecretHandler handles HTTP requests for secret store operations.
// Every store mutation and read is recorded in the audit log with the
// authenticated role and request ID.
type SecretHandler struct {
	secretUseCase   secretsUseCase.SecretUseCase
	auditLogUseCase authUseCase.AuditLogUseCase
	logger          *slog.Logger
}

// NewSecretHandler creates a new secret handler with required dependencies.
func NewSecretHandler(
	secretUseCase secretsUseCase.SecretUseCase,
	auditLogUseCase authUseCase.AuditLogUseCase,
	logger *slog.Logger,
) *SecretHandler {
	return &SecretHandler{
		secretUseCase:   secretUseCase,
		auditLogUseCase: auditLogUseCase,
		logger:          logger,
	}
}

// PutHandler writes a new version of a secret.
// PUT /v1/secrets/*path - Requires WriteCapability on the path.
// Returns 200 OK with the new version number; field data is not echoed back.
func (h *SecretHandler) PutHandler(c *gin.Context) {
	path := wildcardParam(c, "path")

	var req dto.PutSecretRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	version, err := h.secretUseCase.Put(c.Request.Context(), path, req.Fields, h.callerName(c))
	if err != nil {
		h.audit(c, authDomain.OpSecretPut, path, authDomain.OutcomeFailure, nil)
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.audit(c, authDomain.OpSecretPut, path, authDomain.OutcomeSuccess, map[string]any{
		"version": version.Version,
	})
	c.JSON(http.StatusOK, dto.MapSecretToPutResponse(version))
}

// GetHandler reads and decrypts a secret version.
// GET /v1/secrets/*path?version=N - Requires ReadCapability on the path.
// Returns the active version when the version parameter is omitted.
func (h *SecretHandler) GetHandler(c *gin.Context) {
	path := wildcardParam(c, "path")

	versionNumber, ok, err := optionalVersionParam(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	var version *secretsDomain.SecretVersion
	if ok {
		version, err = h.secretUseCase.GetVersion(c.Request.Context(), path, versionNumber)
	} else {
		version, err = h.secretUseCase.Get(c.Request.Context(), path)
	}
	if err != nil {
		h.audit(c, authDomain.OpSecretGet, path, authDomain.OutcomeFailure, nil)
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.audit(c, authDomain.OpSecretGet, path, authDomain.OutcomeSuccess, map[string]any{
		"version": version.Version,
	})
	c.JSON(http.StatusOK, dto.MapSecretToResponse(version))
}

// DeleteHandler soft-deletes a secret version, hiding it from reads.
// DELETE /v1/secrets/*path?version=N - Requires DeleteCapability on the path.
func (h *SecretHandler) DeleteHandler(c *gin.Context) {
	path := wildcardParam(c, "path")

	versionNumber, err := requiredVersionParam(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := h.secretUseCase.SoftDelete(c.Request.Context(), path, versionNumber); err != nil {
		h.audit(c, authDomain.OpSecretSoftDelete, path, authDomain.OutcomeFailure, nil)
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.audit(c, authDomain.OpSecretSoftDelete, path, authDomain.OutcomeSuccess, map[string]any{
		"version": versionNumber,
	})
	c.Data(http.StatusNoContent, "application/json", nil)
}

// UndeleteHandler makes a soft-deleted version readable again.
// POST /v1/secrets-undelete/*path?version=N - Requires DeleteCapability on the path.
func (h *SecretHandler) UndeleteHandler(c *gin.Context) {
	path := wildcardParam(c, "path")

	versionNumber, err := requiredVersionParam(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := h.secretUseCase.Undelete(c.Request.Context(), path, versionNumber); err != nil {
		h.audit(c, authDomain.OpSecretUndelete, path, authDomain.OutcomeFailure, nil)
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.audit(c, authDomain.OpSecretUndelete, path, authDomain.OutcomeSuccess, map[string]any{
		"version": versionNumber,
	})
	c.Data(http.StatusNoContent, "application/json", nil)
}

// DestroyHandler irreversibly removes a secret version and its ciphertext.
// POST /v1/secrets-destroy/*path?version=N - Requires DeleteCapability on the path.
func (h *SecretHandler) DestroyHandler(c *gin.Context) {
	path := wildcardParam(c, "path")

	versionNumber, err := requiredVersionParam(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := h.secretUseCase.Destroy(c.Request.Context(), path, versionNumber); err != nil {
		h.audit(c, authDomain.OpSecretDestroy, path, authDomain.OutcomeFailure, nil)
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.audit(c, authDomain.OpSecretDestroy, path, authDomain.OutcomeSuccess, map[string]any{
		"version": versionNumber,
	})
	c.Data(http.StatusNoContent, "application/json", nil)
}

// ListHandler lists the secret paths under a prefix.
// GET /v1/secrets-list/*prefix?offset=0&limit=50 - Requires ListCapability on the prefix.
func (h *SecretHandler) ListHandler(c *gin.Context) {
	prefix := wildcardParam(c, "prefix")

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	paths, err := h.secretUseCase.List(c.Request.Context(), prefix, offset, limit)
	if err != nil {
		h.audit(c, authDomain.OpSecretList, prefix, authDomain.OutcomeFailure, nil)
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.audit(c, authDomain.OpSecretList, prefix, authDomain.OutcomeSuccess, nil)
	c.JSON(http.StatusOK, dto.ListSecretsResponse{Data: paths})
}

// callerName returns the authenticated role's name for version attribution.
func (h *SecretHandler) callerName(c *gin.Context) string {
	if role, ok := authHTTP.GetRole(c.Request.Context()); ok {
		return role.Name
	}
	return ""
}

// audit records one audit log entry for a store operation. Audit failures are
// logged but do not fail the request.
func (h *SecretHandler) audit(
	c *gin.Context,
	operation string,
	path string,
	outcome authDomain.Outcome,
	metadata map[string]any,
) {
	ctx := c.Request.Context()
	role, ok := authHTTP.GetRole(ctx)
	if !ok {
		return
	}
	if err := h.auditLogUseCase.Create(
		ctx,
		contextutil.GetRequestID(ctx),
		role.ID,
		operation,
		path,
		outcome,
		metadata,
	); err != nil {
		h.logger.Error("failed to write audit log entry",
			slog.String("operation", operation),
			slog.String("path", path),
			slog.Any("error", err),
		)
	}
}

// wildcardParam extracts a gin wildcard route parameter without its leading slash.
func wildcardParam(c *gin.Context, name string) string {
	return strings.TrimPrefix(c.Param(name), "/")
}

// optionalVersionParam parses the version query parameter when present.
func optionalVersionParam(c *gin.Context) (uint, bool, error) {
	raw := c.Query("version")
	if raw == "" {
		return 0, false, nil
	}
	parsed, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || parsed == 0 {
		return 0, false, apperrors.Wrap(apperrors.ErrInvalidInput, "version must be a positive integer")
	}
	return uint(parsed), true, nil
}

// requiredVersionParam parses the version query parameter, rejecting its absence.
func requiredVersionParam(c *gin.Context) (uint, error) {
	versionNumber, ok, err := optionalVersionParam(c)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, apperrors.Wrap(apperrors.ErrInvalidInput, "version query parameter is required")
	}
	return versionNumber, nil
}

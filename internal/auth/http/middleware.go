package http

import (
	"log/slog"
	"strings"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authDomain "github.com/rotorlabs/rotor/internal/auth/domain"
	authService "github.com/rotorlabs/rotor/internal/auth/service"
	authUseCase "github.com/rotorlabs/rotor/internal/auth/usecase"
	"github.com/rotorlabs/rotor/internal/contextutil"
	apperrors "github.com/rotorlabs/rotor/internal/errors"
	"github.com/rotorlabs/rotor/internal/httputil"
)

// RequestIDMiddleware propagates the request ID from the requestid header
// middleware into the request context, so use cases can attach it to audit
// log entries. Non-UUID request IDs supplied by clients are replaced.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID, err := uuid.Parse(requestid.Get(c))
		if err != nil {
			requestID = uuid.Must(uuid.NewV7())
		}

		ctx := contextutil.WithRequestID(c.Request.Context(), requestID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// AuthenticationMiddleware provides authentication via Bearer token in the Authorization header.
//
// The middleware:
// 1. Extracts the Bearer token from the Authorization header (case-insensitive)
// 2. Hashes the token using tokenService.HashToken()
// 3. Validates the token using tokenUseCase.AuthenticateToken()
// 4. Stores the authenticated role in the request context
// 5. Allows downstream handlers to access the role via GetRole()
//
// Authorization header format: "Bearer <token>" (case-insensitive "bearer")
//
// Error handling:
//   - Missing Authorization header → 401 Unauthorized
//   - Malformed Authorization header → 401 Unauthorized
//   - Invalid/expired/revoked token → 401 Unauthorized (from TokenUseCase.AuthenticateToken)
//   - Inactive role → 403 Forbidden (from TokenUseCase.AuthenticateToken)
//   - Other errors → 500 Internal Server Error
func AuthenticationMiddleware(
	tokenUseCase authUseCase.TokenUseCase,
	tokenService authService.TokenService,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Extract Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Debug("authentication failed: missing authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		// Parse Bearer token (case-insensitive)
		const bearerPrefix = "bearer "
		if len(authHeader) < len(bearerPrefix) ||
			!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
			logger.Debug("authentication failed: malformed authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		plainToken := authHeader[len(bearerPrefix):]
		if plainToken == "" {
			logger.Debug("authentication failed: empty bearer token")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		// Hash the token for lookup
		tokenHash := tokenService.HashToken(plainToken)

		// Validate the token and resolve the role
		role, err := tokenUseCase.AuthenticateToken(c.Request.Context(), tokenHash)
		if err != nil {
			logger.Debug("authentication failed",
				slog.String("error", err.Error()))
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		// Store authenticated role in context
		ctx := WithRole(c.Request.Context(), role)
		c.Request = c.Request.WithContext(ctx)

		logger.Debug("authentication successful",
			slog.String("role_id", role.ID.String()),
			slog.String("role_name", role.Name))

		c.Next()
	}
}

// AuthorizationMiddleware provides capability-based authorization for authenticated roles.
//
// This middleware MUST be used after AuthenticationMiddleware, as it requires an
// authenticated role to be present in the request context. Policy paths describe
// secret paths, so the check runs against the wildcard route parameter "path"
// when present (e.g. PUT /v1/secrets/*path). Routes without a path parameter are
// authorized against the route name with the version prefix stripped (e.g.
// "audit-logs"), which lets admin policies grant access to the non-path surfaces.
//
// Evaluation is deny-by-default via Role.IsAllowed: a role with no matching
// policy grant gets 403 Forbidden.
func AuthorizationMiddleware(
	capability authDomain.Capability,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Retrieve authenticated role from context
		role, ok := GetRole(c.Request.Context())
		if !ok || role == nil {
			logger.Debug("authorization failed: no authenticated role in context")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		path := authorizationPath(c)

		// Check if role is allowed to perform the capability on the path
		if !role.IsAllowed(path, capability) {
			logger.Debug("authorization failed: insufficient permissions",
				slog.String("role_id", role.ID.String()),
				slog.String("role_name", role.Name),
				slog.String("path", path),
				slog.String("capability", string(capability)))
			httputil.HandleErrorGin(c, apperrors.ErrForbidden, logger)
			c.Abort()
			return
		}

		logger.Debug("authorization successful",
			slog.String("role_id", role.ID.String()),
			slog.String("role_name", role.Name),
			slog.String("path", path),
			slog.String("capability", string(capability)))

		c.Next()
	}
}

// authorizationPath resolves the policy path for the current request: the
// wildcard "path" or "prefix" route parameter when the route has one, the
// route name with the "/v1/" prefix stripped otherwise.
func authorizationPath(c *gin.Context) string {
	for _, name := range []string{"path", "prefix"} {
		if path := strings.TrimPrefix(c.Param(name), "/"); path != "" {
			return path
		}
	}

	path := strings.TrimPrefix(c.Request.URL.Path, "/v1/")
	return strings.Trim(path, "/")
}

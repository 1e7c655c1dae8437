// Package http provides the API server, route setup, and server middleware.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authDomain "github.com/rotorlabs/rotor/internal/auth/domain"
	authHTTP "github.com/rotorlabs/rotor/internal/auth/http"
	authService "github.com/rotorlabs/rotor/internal/auth/service"
	authUseCase "github.com/rotorlabs/rotor/internal/auth/usecase"
	"github.com/rotorlabs/rotor/internal/config"
	"github.com/rotorlabs/rotor/internal/metrics"
	rotationHTTP "github.com/rotorlabs/rotor/internal/rotation/http"
	secretsHTTP "github.com/rotorlabs/rotor/internal/secrets/http"
)

// Server is the API server. The router is assembled with SetupRouter before
// Start; without it only the health endpoints are served.
type Server struct {
	server *http.Server
	router *gin.Engine
	db     *sql.DB
	logger *slog.Logger
}

// NewServer creates a new API server.
func NewServer(db *sql.DB, host string, port int, logger *slog.Logger) *Server {
	return &Server{
		db:     db,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// RouterConfig bundles the handlers and settings needed to assemble the router.
type RouterConfig struct {
	Config          *config.Config
	TokenHandler    *authHTTP.TokenHandler
	RoleHandler     *authHTTP.RoleHandler
	AuditLogHandler *authHTTP.AuditLogHandler
	SecretHandler   *secretsHTTP.SecretHandler
	RotationHandler *rotationHTTP.RotationHandler
	TokenUseCase    authUseCase.TokenUseCase
	TokenService    authService.TokenService
	MetricsProvider *metrics.Provider
}

// SetupRouter assembles the full route table with its middleware chains.
func (s *Server) SetupRouter(cfg RouterConfig) {
	router := s.baseRouter()

	if corsMiddleware := createCORSMiddleware(
		cfg.Config.CORSEnabled,
		cfg.Config.CORSAllowOrigins,
		s.logger,
	); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}
	if cfg.MetricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(
			cfg.MetricsProvider.MeterProvider(),
			cfg.Config.MetricsNamespace,
		))
	}

	v1 := router.Group("/v1")

	// Identity exchange. Unauthenticated; rate limited per client IP. Renewal
	// authenticates via the presented token itself.
	identity := v1.Group("/auth")
	if cfg.Config.RateLimitTokenEnabled {
		identity.Use(authHTTP.TokenRateLimitMiddleware(
			cfg.Config.RateLimitTokenRequestsPerSec,
			cfg.Config.RateLimitTokenBurst,
			s.logger,
		))
	}
	identity.POST("/token", cfg.TokenHandler.AuthenticateHandler)
	identity.POST("/token/renew", cfg.TokenHandler.RenewHandler)

	// Everything else requires a valid session token.
	authenticated := v1.Group("")
	authenticated.Use(authHTTP.AuthenticationMiddleware(cfg.TokenUseCase, cfg.TokenService, s.logger))
	if cfg.Config.RateLimitEnabled {
		authenticated.Use(authHTTP.RateLimitMiddleware(
			cfg.Config.RateLimitRequestsPerSec,
			cfg.Config.RateLimitBurst,
			s.logger,
		))
	}

	requireRead := authHTTP.AuthorizationMiddleware(authDomain.ReadCapability, s.logger)
	requireWrite := authHTTP.AuthorizationMiddleware(authDomain.WriteCapability, s.logger)
	requireDelete := authHTTP.AuthorizationMiddleware(authDomain.DeleteCapability, s.logger)
	requireList := authHTTP.AuthorizationMiddleware(authDomain.ListCapability, s.logger)

	// Secret store.
	authenticated.PUT("/secrets/*path", requireWrite, cfg.SecretHandler.PutHandler)
	authenticated.GET("/secrets/*path", requireRead, cfg.SecretHandler.GetHandler)
	authenticated.DELETE("/secrets/*path", requireDelete, cfg.SecretHandler.DeleteHandler)
	authenticated.POST("/secrets-undelete/*path", requireDelete, cfg.SecretHandler.UndeleteHandler)
	authenticated.POST("/secrets-destroy/*path", requireDelete, cfg.SecretHandler.DestroyHandler)
	authenticated.GET("/secrets-list/*prefix", requireList, cfg.SecretHandler.ListHandler)

	// Rotation. The rotate endpoint takes its target path from the request
	// body, so the handler performs the capability check itself.
	authenticated.POST("/rotate", cfg.RotationHandler.RotateHandler)
	authenticated.GET("/rotations", requireRead, cfg.RotationHandler.ListHandler)
	authenticated.GET("/rotations/:id", requireRead, cfg.RotationHandler.GetHandler)

	// Role management.
	authenticated.POST("/roles", requireWrite, cfg.RoleHandler.CreateHandler)
	authenticated.GET("/roles/:id", requireRead, cfg.RoleHandler.GetHandler)
	authenticated.PUT("/roles/:id", requireWrite, cfg.RoleHandler.UpdateHandler)
	authenticated.DELETE("/roles/:id", requireDelete, cfg.RoleHandler.DeleteHandler)
	authenticated.POST("/roles/:id/rotate-secret", requireWrite, cfg.RoleHandler.RotateSecretHandler)

	// Audit log.
	authenticated.GET("/audit-logs", requireRead, cfg.AuditLogHandler.ListHandler)

	s.router = router
}

// baseRouter creates the router with the middleware every route shares.
func (s *Server) baseRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(authHTTP.RequestIDMiddleware())
	router.Use(CustomLoggerMiddleware(s.logger))

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)
	return router
}

// Start starts the API server and blocks until it stops.
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		s.router = s.baseRouter()
	}
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

// healthHandler reports process liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports whether the server can take traffic, checking the
// database connection.
func (s *Server) readinessHandler(c *gin.Context) {
	components := gin.H{"database": "ok"}

	ready := s.db != nil
	if ready {
		pingCtx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.PingContext(pingCtx); err != nil {
			ready = false
		}
	}

	if !ready {
		components["database"] = "error"
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": components,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": components,
	})
}

package app

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"

	"github.com/rotorlabs/rotor/internal/rotation/adapter"
	rotationHTTP "github.com/rotorlabs/rotor/internal/rotation/http"
	rotationRepository "github.com/rotorlabs/rotor/internal/rotation/repository"
	rotationMySQL "github.com/rotorlabs/rotor/internal/rotation/repository/mysql"
	rotationService "github.com/rotorlabs/rotor/internal/rotation/service"
	rotationUseCase "github.com/rotorlabs/rotor/internal/rotation/usecase"
)

// KeyRing returns the process-local signing key ring rotated by the
// signing-key adapter. It boots with a random key; the first committed
// rotation replaces it with a stored, versioned one.
func (c *Container) KeyRing() (*adapter.KeyRing, error) {
	var err error
	c.keyRingInit.Do(func() {
		initial := make([]byte, 32)
		if _, randErr := rand.Read(initial); randErr != nil {
			err = fmt.Errorf("failed to generate initial signing key: %w", randErr)
			c.initErrors["keyRing"] = err
			return
		}
		c.keyRing = adapter.NewKeyRing(initial)
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyRing"]; exists {
		return nil, storedErr
	}
	return c.keyRing, nil
}

// AdapterRegistry returns the target adapter registry. Adapters are
// registered for every target configured in the environment; the signing-key
// adapter is always available.
func (c *Container) AdapterRegistry() (*adapter.Registry, error) {
	var err error
	c.adapterRegistryInit.Do(func() {
		c.adapterRegistry, err = c.initAdapterRegistry()
		if err != nil {
			c.initErrors["adapterRegistry"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["adapterRegistry"]; exists {
		return nil, storedErr
	}
	return c.adapterRegistry, nil
}

// RotationRepository returns the rotation record repository based on database driver.
func (c *Container) RotationRepository() (rotationUseCase.RotationRepository, error) {
	var err error
	c.rotationRepositoryInit.Do(func() {
		c.rotationRepository, err = c.initRotationRepository()
		if err != nil {
			c.initErrors["rotationRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["rotationRepository"]; exists {
		return nil, storedErr
	}
	return c.rotationRepository, nil
}

// RotationUseCase returns the rotation orchestrator.
func (c *Container) RotationUseCase() (rotationUseCase.RotationUseCase, error) {
	var err error
	c.rotationUseCaseInit.Do(func() {
		c.rotationUseCase, err = c.initRotationUseCase()
		if err != nil {
			c.initErrors["rotationUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["rotationUseCase"]; exists {
		return nil, storedErr
	}
	return c.rotationUseCase, nil
}

// RotationHandler returns the HTTP handler for rotation operations.
func (c *Container) RotationHandler() (*rotationHTTP.RotationHandler, error) {
	var err error
	c.rotationHandlerInit.Do(func() {
		c.rotationHandler, err = c.initRotationHandler()
		if err != nil {
			c.initErrors["rotationHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["rotationHandler"]; exists {
		return nil, storedErr
	}
	return c.rotationHandler, nil
}

// initAdapterRegistry builds the adapter registry from the configured targets.
func (c *Container) initAdapterRegistry() (*adapter.Registry, error) {
	logger := c.Logger()
	notifier := c.rotationNotifier()
	registry := adapter.NewRegistry()

	if dsn := c.config.TargetPostgresDSN; dsn != "" {
		adminDB, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres rotation target: %w", err)
		}
		c.targetDBs = append(c.targetDBs, adminDB)

		probeDSN, err := postgresProbeDSN(dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to parse postgres rotation target dsn: %w", err)
		}
		registry.Register(adapter.NewPostgresAdapter(adminDB, probeDSN, notifier, logger))
	}

	if dsn := c.config.TargetMySQLDSN; dsn != "" {
		adminDB, err := sql.Open("mysql", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open mysql rotation target: %w", err)
		}
		c.targetDBs = append(c.targetDBs, adminDB)

		probeDSN, err := mysqlProbeDSN(dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to parse mysql rotation target dsn: %w", err)
		}
		registry.Register(adapter.NewMySQLAdapter(adminDB, probeDSN, notifier, logger))
	}

	if addr := c.config.TargetRedisAddr; addr != "" {
		c.targetRedis = redis.NewClient(&redis.Options{Addr: addr})
		registry.Register(adapter.NewRedisAdapter(c.targetRedis, addr, notifier, logger))
	}

	keyRing, err := c.KeyRing()
	if err != nil {
		return nil, fmt.Errorf("failed to get key ring for adapter registry: %w", err)
	}
	registry.Register(adapter.NewSigningKeyAdapter(keyRing, notifier, logger))

	return registry, nil
}

// rotationNotifier signals dependent consumers that a credential changed.
// Out of process consumers poll the store; the signal here is a log line
// that ops tooling can alert on.
func (c *Container) rotationNotifier() adapter.Notifier {
	logger := c.Logger()
	return func(_ context.Context, secretClass, path string) error {
		logger.Info("credential refresh signal",
			slog.String("secret_class", secretClass),
			slog.String("path", path),
		)
		return nil
	}
}

// postgresProbeDSN builds probe connection strings by swapping the user info
// in the admin DSN. The DSN must be in URL form (postgres://...).
func postgresProbeDSN(adminDSN string) (func(username, password string) string, error) {
	parsed, err := url.Parse(adminDSN)
	if err != nil {
		return nil, err
	}
	if parsed.Scheme != "postgres" && parsed.Scheme != "postgresql" {
		return nil, fmt.Errorf("postgres target dsn must be in URL form, got scheme %q", parsed.Scheme)
	}

	return func(username, password string) string {
		probe := *parsed
		probe.User = url.UserPassword(username, password)
		return probe.String()
	}, nil
}

// mysqlProbeDSN builds probe connection strings by swapping the credentials
// in the admin DSN.
func mysqlProbeDSN(adminDSN string) (func(username, password string) string, error) {
	parsed, err := mysqlDriver.ParseDSN(adminDSN)
	if err != nil {
		return nil, err
	}

	return func(username, password string) string {
		probe := *parsed
		probe.User = username
		probe.Passwd = password
		return probe.FormatDSN()
	}, nil
}

// initRotationRepository creates the rotation repository based on the database driver.
func (c *Container) initRotationRepository() (rotationUseCase.RotationRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for rotation repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return rotationRepository.NewPostgreSQLRotationRepository(db), nil
	case "mysql":
		return rotationMySQL.NewMySQLRotationRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initRotationUseCase creates the rotation orchestrator with all its dependencies.
func (c *Container) initRotationUseCase() (rotationUseCase.RotationUseCase, error) {
	rotationRepo, err := c.RotationRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get rotation repository for rotation use case: %w", err)
	}

	secretUseCase, err := c.SecretUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get secret use case for rotation use case: %w", err)
	}

	registry, err := c.AdapterRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to get adapter registry for rotation use case: %w", err)
	}

	auditLogUseCase, err := c.AuditLogUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit log use case for rotation use case: %w", err)
	}

	generator := rotationService.NewCredentialGenerator(c.config.RotationPasswordLength)
	settings := rotationUseCase.Settings{
		PhaseTimeout:  c.config.RotationPhaseTimeout,
		ProbeAttempts: c.config.RotationProbeAttempts,
		ProbeBackoff:  c.config.RotationProbeBackoff,
		ProbeBudget:   c.config.RotationProbeBudget,
	}

	baseUseCase := rotationUseCase.NewRotationUseCase(
		rotationRepo,
		secretUseCase,
		registry,
		generator,
		auditLogUseCase,
		settings,
		c.Logger(),
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for rotation use case: %w", err)
		}
		return rotationUseCase.NewRotationUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initRotationHandler creates the rotation HTTP handler with all its dependencies.
func (c *Container) initRotationHandler() (*rotationHTTP.RotationHandler, error) {
	rotationUC, err := c.RotationUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get rotation use case for rotation handler: %w", err)
	}

	return rotationHTTP.NewRotationHandler(rotationUC, c.Logger()), nil
}

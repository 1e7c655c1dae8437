package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	"github.com/lib/pq"

	apperrors "github.com/rotorlabs/rotor/internal/errors"
	rotationDomain "github.com/rotorlabs/rotor/internal/rotation/domain"
)

// ClassPostgres is the secret class served by the postgres adapter.
const ClassPostgres = "postgres"

// PostgresAdapter rotates a PostgreSQL role's password. Apply runs an
// ALTER ROLE statement over an administrative connection; the health probe
// opens a fresh connection as the rotated role.
type PostgresAdapter struct {
	adminDB  *sql.DB
	probeDSN func(username, password string) string
	notifier Notifier
	logger   *slog.Logger

	mu          sync.Mutex
	lastApplied *Credential
}

// NewPostgresAdapter creates a postgres target adapter. probeDSN builds the
// connection string the health probe uses to connect as the rotated role.
func NewPostgresAdapter(
	adminDB *sql.DB,
	probeDSN func(username, password string) string,
	notifier Notifier,
	logger *slog.Logger,
) *PostgresAdapter {
	return &PostgresAdapter{
		adminDB:  adminDB,
		probeDSN: probeDSN,
		notifier: notifier,
		logger:   logger,
	}
}

func (a *PostgresAdapter) Class() string {
	return ClassPostgres
}

// Apply changes the database role's password to the new credential and
// signals dependent consumers to reload.
func (a *PostgresAdapter) Apply(ctx context.Context, cred *Credential) error {
	if err := a.alterRole(ctx, cred); err != nil {
		return apperrors.Wrap(rotationDomain.ErrAdapterApplyFailed, err.Error())
	}

	a.mu.Lock()
	a.lastApplied = cred
	a.mu.Unlock()

	a.logger.Info("postgres credential applied", slog.String("path", cred.Path))
	return a.notify(ctx, cred.Path)
}

// HealthProbe connects as the rotated role with the most recently applied
// credential and pings.
func (a *PostgresAdapter) HealthProbe(ctx context.Context) error {
	a.mu.Lock()
	cred := a.lastApplied
	a.mu.Unlock()

	if cred == nil {
		return apperrors.Wrap(rotationDomain.ErrHealthCheckFailed, "no credential applied yet")
	}

	db, err := sql.Open("postgres", a.probeDSN(cred.Fields["username"], cred.Fields["password"]))
	if err != nil {
		return apperrors.Wrap(rotationDomain.ErrHealthCheckFailed, err.Error())
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return apperrors.Wrap(rotationDomain.ErrHealthCheckFailed, err.Error())
	}
	return nil
}

// Revert restores the previous credential on the database role.
func (a *PostgresAdapter) Revert(ctx context.Context, cred *Credential) error {
	if err := a.alterRole(ctx, cred); err != nil {
		return apperrors.Wrap(rotationDomain.ErrRollbackFailed, err.Error())
	}

	a.mu.Lock()
	a.lastApplied = cred
	a.mu.Unlock()

	a.logger.Warn("postgres credential reverted", slog.String("path", cred.Path))
	return a.notify(ctx, cred.Path)
}

// alterRole changes the role's password. ALTER ROLE does not accept bind
// parameters, so the identifier and literal are quoted explicitly.
func (a *PostgresAdapter) alterRole(ctx context.Context, cred *Credential) error {
	username := cred.Fields["username"]
	password := cred.Fields["password"]
	if username == "" || password == "" {
		return fmt.Errorf("credential for %q is missing username or password fields", cred.Path)
	}

	query := fmt.Sprintf(
		"ALTER ROLE %s WITH PASSWORD %s",
		pq.QuoteIdentifier(username),
		pq.QuoteLiteral(password),
	)
	_, err := a.adminDB.ExecContext(ctx, query)
	return err
}

func (a *PostgresAdapter) notify(ctx context.Context, path string) error {
	if a.notifier == nil {
		return nil
	}
	if err := a.notifier(ctx, ClassPostgres, path); err != nil {
		return apperrors.Wrap(rotationDomain.ErrAdapterApplyFailed, "consumer refresh signal failed: "+err.Error())
	}
	return nil
}

package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	apperrors "github.com/rotorlabs/rotor/internal/errors"
	rotationDomain "github.com/rotorlabs/rotor/internal/rotation/domain"
)

// ClassMySQL is the secret class served by the mysql adapter.
const ClassMySQL = "mysql"

// MySQLAdapter rotates a MySQL user's password with ALTER USER over an
// administrative connection.
type MySQLAdapter struct {
	adminDB  *sql.DB
	probeDSN func(username, password string) string
	notifier Notifier
	logger   *slog.Logger

	mu          sync.Mutex
	lastApplied *Credential
}

// NewMySQLAdapter creates a mysql target adapter. probeDSN builds the
// connection string the health probe uses to connect as the rotated user.
func NewMySQLAdapter(
	adminDB *sql.DB,
	probeDSN func(username, password string) string,
	notifier Notifier,
	logger *slog.Logger,
) *MySQLAdapter {
	return &MySQLAdapter{
		adminDB:  adminDB,
		probeDSN: probeDSN,
		notifier: notifier,
		logger:   logger,
	}
}

func (a *MySQLAdapter) Class() string {
	return ClassMySQL
}

// Apply changes the database user's password to the new credential and
// signals dependent consumers to reload.
func (a *MySQLAdapter) Apply(ctx context.Context, cred *Credential) error {
	if err := a.alterUser(ctx, cred); err != nil {
		return apperrors.Wrap(rotationDomain.ErrAdapterApplyFailed, err.Error())
	}

	a.mu.Lock()
	a.lastApplied = cred
	a.mu.Unlock()

	a.logger.Info("mysql credential applied", slog.String("path", cred.Path))
	return a.notify(ctx, cred.Path)
}

// HealthProbe connects as the rotated user with the most recently applied
// credential and pings.
func (a *MySQLAdapter) HealthProbe(ctx context.Context) error {
	a.mu.Lock()
	cred := a.lastApplied
	a.mu.Unlock()

	if cred == nil {
		return apperrors.Wrap(rotationDomain.ErrHealthCheckFailed, "no credential applied yet")
	}

	db, err := sql.Open("mysql", a.probeDSN(cred.Fields["username"], cred.Fields["password"]))
	if err != nil {
		return apperrors.Wrap(rotationDomain.ErrHealthCheckFailed, err.Error())
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return apperrors.Wrap(rotationDomain.ErrHealthCheckFailed, err.Error())
	}
	return nil
}

// Revert restores the previous credential on the database user.
func (a *MySQLAdapter) Revert(ctx context.Context, cred *Credential) error {
	if err := a.alterUser(ctx, cred); err != nil {
		return apperrors.Wrap(rotationDomain.ErrRollbackFailed, err.Error())
	}

	a.mu.Lock()
	a.lastApplied = cred
	a.mu.Unlock()

	a.logger.Warn("mysql credential reverted", slog.String("path", cred.Path))
	return a.notify(ctx, cred.Path)
}

// alterUser changes the user's password. ALTER USER does not accept bind
// parameters, so the literals are escaped explicitly.
func (a *MySQLAdapter) alterUser(ctx context.Context, cred *Credential) error {
	username := cred.Fields["username"]
	password := cred.Fields["password"]
	if username == "" || password == "" {
		return fmt.Errorf("credential for %q is missing username or password fields", cred.Path)
	}

	query := fmt.Sprintf(
		"ALTER USER '%s'@'%%' IDENTIFIED BY '%s'",
		escapeMySQLString(username),
		escapeMySQLString(password),
	)
	_, err := a.adminDB.ExecContext(ctx, query)
	return err
}

// escapeMySQLString escapes backslashes and single quotes for use inside a
// single-quoted MySQL string literal.
func escapeMySQLString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}

func (a *MySQLAdapter) notify(ctx context.Context, path string) error {
	if a.notifier == nil {
		return nil
	}
	if err := a.notifier(ctx, ClassMySQL, path); err != nil {
		return apperrors.Wrap(rotationDomain.ErrAdapterApplyFailed, "consumer refresh signal failed: "+err.Error())
	}
	return nil
}

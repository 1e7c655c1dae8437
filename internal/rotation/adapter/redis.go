package adapter

import (
	"context"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/rotorlabs/rotor/internal/errors"
	rotationDomain "github.com/rotorlabs/rotor/internal/rotation/domain"
)

// ClassRedis is the secret class served by the redis adapter.
const ClassRedis = "redis"

// RedisAdapter rotates a Redis server's requirepass. The administrative
// connection stays authenticated after the change, so Revert works even
// when the new password turns out to be broken.
type RedisAdapter struct {
	adminClient *redis.Client
	addr        string
	notifier    Notifier
	logger      *slog.Logger

	mu          sync.Mutex
	lastApplied *Credential
}

// NewRedisAdapter creates a redis target adapter. addr is the address the
// health probe dials with the rotated password.
func NewRedisAdapter(
	adminClient *redis.Client,
	addr string,
	notifier Notifier,
	logger *slog.Logger,
) *RedisAdapter {
	return &RedisAdapter{
		adminClient: adminClient,
		addr:        addr,
		notifier:    notifier,
		logger:      logger,
	}
}

func (a *RedisAdapter) Class() string {
	return ClassRedis
}

// Apply sets the server's requirepass to the new credential and signals
// dependent consumers to reload.
func (a *RedisAdapter) Apply(ctx context.Context, cred *Credential) error {
	password := cred.Fields["password"]
	if password == "" {
		return apperrors.Wrap(rotationDomain.ErrAdapterApplyFailed, "credential is missing the password field")
	}

	if err := a.adminClient.ConfigSet(ctx, "requirepass", password).Err(); err != nil {
		return apperrors.Wrap(rotationDomain.ErrAdapterApplyFailed, err.Error())
	}

	a.mu.Lock()
	a.lastApplied = cred
	a.mu.Unlock()

	a.logger.Info("redis credential applied", slog.String("path", cred.Path))
	return a.notify(ctx, cred.Path)
}

// HealthProbe dials the server with the most recently applied password and pings.
func (a *RedisAdapter) HealthProbe(ctx context.Context) error {
	a.mu.Lock()
	cred := a.lastApplied
	a.mu.Unlock()

	if cred == nil {
		return apperrors.Wrap(rotationDomain.ErrHealthCheckFailed, "no credential applied yet")
	}

	probe := redis.NewClient(&redis.Options{
		Addr:     a.addr,
		Password: cred.Fields["password"],
	})
	defer probe.Close()

	if err := probe.Ping(ctx).Err(); err != nil {
		return apperrors.Wrap(rotationDomain.ErrHealthCheckFailed, err.Error())
	}
	return nil
}

// Revert restores the previous requirepass.
func (a *RedisAdapter) Revert(ctx context.Context, cred *Credential) error {
	if err := a.adminClient.ConfigSet(ctx, "requirepass", cred.Fields["password"]).Err(); err != nil {
		return apperrors.Wrap(rotationDomain.ErrRollbackFailed, err.Error())
	}

	a.mu.Lock()
	a.lastApplied = cred
	a.mu.Unlock()

	a.logger.Warn("redis credential reverted", slog.String("path", cred.Path))
	return a.notify(ctx, cred.Path)
}

func (a *RedisAdapter) notify(ctx context.Context, path string) error {
	if a.notifier == nil {
		return nil
	}
	if err := a.notifier(ctx, ClassRedis, path); err != nil {
		return apperrors.Wrap(rotationDomain.ErrAdapterApplyFailed, "consumer refresh signal failed: "+err.Error())
	}
	return nil
}

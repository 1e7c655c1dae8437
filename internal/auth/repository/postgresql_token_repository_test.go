package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authDomain "github.com/rotorlabs/rotor/internal/auth/domain"
	"github.com/rotorlabs/rotor/internal/testutil"
)

func TestNewPostgreSQLTokenRepository(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)

	repo := NewPostgreSQLTokenRepository(db)
	assert.NotNil(t, repo)
	assert.IsType(t, &PostgreSQLTokenRepository{}, repo)
}

func TestPostgreSQLTokenRepository_Create(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLTokenRepository(db)
	ctx := context.Background()

	roleID := testutil.CreateTestRole(t, db, "postgres", "token-role")

	now := time.Now().UTC()
	token := &authDomain.Token{
		ID:        uuid.Must(uuid.NewV7()),
		TokenHash: "test-token-hash",
		RoleID:    roleID,
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
		CreatedAt: now,
	}

	err := repo.Create(ctx, token)
	require.NoError(t, err)

	retrievedToken, err := repo.Get(ctx, token.ID)
	require.NoError(t, err)

	assert.Equal(t, token.ID, retrievedToken.ID)
	assert.Equal(t, token.TokenHash, retrievedToken.TokenHash)
	assert.Equal(t, token.RoleID, retrievedToken.RoleID)
	assert.Nil(t, retrievedToken.RevokedAt)
	assert.WithinDuration(t, token.IssuedAt, retrievedToken.IssuedAt, time.Second)
	assert.WithinDuration(t, token.ExpiresAt, retrievedToken.ExpiresAt, time.Second)
}

func TestPostgreSQLTokenRepository_Update(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLTokenRepository(db)
	ctx := context.Background()

	roleID := testutil.CreateTestRole(t, db, "postgres", "update-token-role")

	now := time.Now().UTC()
	token := &authDomain.Token{
		ID:        uuid.Must(uuid.NewV7()),
		TokenHash: "update-token-hash",
		RoleID:    roleID,
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
		CreatedAt: now,
	}

	err := repo.Create(ctx, token)
	require.NoError(t, err)

	// Renew: extend expiry without moving the issued-at anchor
	token.ExpiresAt = now.Add(2 * time.Hour)

	err = repo.Update(ctx, token)
	require.NoError(t, err)

	retrievedToken, err := repo.Get(ctx, token.ID)
	require.NoError(t, err)

	assert.WithinDuration(t, now.Add(2*time.Hour), retrievedToken.ExpiresAt, time.Second)
	assert.WithinDuration(t, now, retrievedToken.IssuedAt, time.Second)
}

func TestPostgreSQLTokenRepository_GetByTokenHash(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLTokenRepository(db)
	ctx := context.Background()

	roleID := testutil.CreateTestRole(t, db, "postgres", "hash-lookup-role")

	now := time.Now().UTC()
	token := &authDomain.Token{
		ID:        uuid.Must(uuid.NewV7()),
		TokenHash: "lookup-token-hash",
		RoleID:    roleID,
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
		CreatedAt: now,
	}

	err := repo.Create(ctx, token)
	require.NoError(t, err)

	retrievedToken, err := repo.GetByTokenHash(ctx, "lookup-token-hash")
	require.NoError(t, err)
	assert.Equal(t, token.ID, retrievedToken.ID)

	_, err = repo.GetByTokenHash(ctx, "unknown-hash")
	assert.ErrorIs(t, err, authDomain.ErrTokenNotFound)
}

func TestPostgreSQLTokenRepository_Get_NotFound(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLTokenRepository(db)
	ctx := context.Background()

	_, err := repo.Get(ctx, uuid.Must(uuid.NewV7()))
	assert.ErrorIs(t, err, authDomain.ErrTokenNotFound)
}

func TestPostgreSQLTokenRepository_DeleteExpired(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLTokenRepository(db)
	ctx := context.Background()

	roleID := testutil.CreateTestRole(t, db, "postgres", "cleanup-role")

	now := time.Now().UTC()

	expiredToken := &authDomain.Token{
		ID:        uuid.Must(uuid.NewV7()),
		TokenHash: "expired-token-hash",
		RoleID:    roleID,
		IssuedAt:  now.Add(-2 * time.Hour),
		ExpiresAt: now.Add(-time.Hour),
		CreatedAt: now.Add(-2 * time.Hour),
	}
	require.NoError(t, repo.Create(ctx, expiredToken))

	liveToken := &authDomain.Token{
		ID:        uuid.Must(uuid.NewV7()),
		TokenHash: "live-token-hash",
		RoleID:    roleID,
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
		CreatedAt: now,
	}
	require.NoError(t, repo.Create(ctx, liveToken))

	deleted, err := repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	// Expired token is gone, live token survives
	_, err = repo.Get(ctx, expiredToken.ID)
	assert.ErrorIs(t, err, authDomain.ErrTokenNotFound)

	_, err = repo.Get(ctx, liveToken.ID)
	assert.NoError(t, err)
}

package mysql

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

func TestNewMySQLTokenRepository(t *testing.T) {
	db := testutil.SetupMySQLDB(t)
	defer testutil.TeardownDB(t, db)

	repo := NewMySQLTokenRepository(db)
	assert.NotNil(t, repo)
	assert.IsType(t, &MySQLTokenRepository{}, repo)
}

func TestMySQLTokenRepository_CreateAndGet(t *testing.T) {
	db := testutil.SetupMySQLDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupMySQLDB(t, db)

	repo := NewMySQLTokenRepository(db)
	ctx := context.Background()

	roleID := testutil.CreateTestRole(t, db, "mysql", "token-role")

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
	assert.WithinDuration(t, token.IssuedAt, retrievedToken.IssuedAt, time.Second)
	assert.WithinDuration(t, token.ExpiresAt, retrievedToken.ExpiresAt, time.Second)
}

func TestMySQLTokenRepository_GetByTokenHash(t *testing.T) {
	db := testutil.SetupMySQLDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupMySQLDB(t, db)

	repo := NewMySQLTokenRepository(db)
	ctx := context.Background()

	roleID := testutil.CreateTestRole(t, db, "mysql", "hash-lookup-role")

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

func TestMySQLTokenRepository_DeleteExpired(t *testing.T) {
	db := testutil.SetupMySQLDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupMySQLDB(t, db)

	repo := NewMySQLTokenRepository(db)
	ctx := context.Background()

	roleID := testutil.CreateTestRole(t, db, "mysql", "cleanup-role")

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

	_, err = repo.Get(ctx, expiredToken.ID)
	assert.ErrorIs(t, err, authDomain.ErrTokenNotFound)

	_, err = repo.Get(ctx, liveToken.ID)
	assert.NoError(t, err)
}

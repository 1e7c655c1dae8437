package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rotationDomain "github.com/rotorlabs/rotor/internal/rotation/domain"
	"github.com/rotorlabs/rotor/internal/testutil"
)

func newTestRecord(path string) *rotationDomain.RotationRecord {
	return rotationDomain.NewRotationRecord(path, "postgres", "scheduler")
}

func TestPostgreSQLRotationRepository_CreateAndGet(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLRotationRepository(db)
	ctx := context.Background()

	record := newTestRecord("shop/database/password")
	record.PreviousVersion = 3
	record.NewVersion = 4
	require.NoError(t, repo.Create(ctx, record))

	retrieved, err := repo.Get(ctx, record.ID)
	require.NoError(t, err)

	assert.Equal(t, record.ID, retrieved.ID)
	assert.Equal(t, "shop/database/password", retrieved.Path)
	assert.Equal(t, "postgres", retrieved.SecretClass)
	assert.Equal(t, uint(3), retrieved.PreviousVersion)
	assert.Equal(t, uint(4), retrieved.NewVersion)
	assert.Equal(t, rotationDomain.StateRequested, retrieved.State)
	assert.Equal(t, "scheduler", retrieved.RequestedBy)
	assert.Nil(t, retrieved.StagedAt)
	assert.Nil(t, retrieved.FinishedAt)
	assert.Nil(t, retrieved.LastKnownGood)
}

func TestPostgreSQLRotationRepository_Get_NotFound(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLRotationRepository(db)

	_, err := repo.Get(context.Background(), uuid.Must(uuid.NewV7()))
	assert.ErrorIs(t, err, rotationDomain.ErrRotationNotFound)
}

func TestPostgreSQLRotationRepository_Update(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLRotationRepository(db)
	ctx := context.Background()

	record := newTestRecord("shop/database/password")
	require.NoError(t, repo.Create(ctx, record))

	require.NoError(t, record.Transition(rotationDomain.StateAuthenticated))
	require.NoError(t, record.Transition(rotationDomain.StateGenerated))
	require.NoError(t, record.Transition(rotationDomain.StateStaged))
	record.NewVersion = 2
	record.AdapterOutcome = rotationDomain.OutcomeOK
	require.NoError(t, repo.Update(ctx, record))

	retrieved, err := repo.Get(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, rotationDomain.StateStaged, retrieved.State)
	assert.Equal(t, uint(2), retrieved.NewVersion)
	assert.Equal(t, rotationDomain.OutcomeOK, retrieved.AdapterOutcome)
	require.NotNil(t, retrieved.StagedAt)
	assert.WithinDuration(t, *record.StagedAt, *retrieved.StagedAt, time.Second)
}

func TestPostgreSQLRotationRepository_Update_NotFound(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLRotationRepository(db)

	record := newTestRecord("shop/database/password")
	err := repo.Update(context.Background(), record)
	assert.ErrorIs(t, err, rotationDomain.ErrRotationNotFound)
}

func TestPostgreSQLRotationRepository_LastKnownGoodRoundTrip(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLRotationRepository(db)
	ctx := context.Background()

	record := newTestRecord("shop/database/password")
	require.NoError(t, repo.Create(ctx, record))

	require.NoError(t, record.Transition(rotationDomain.StateAuthenticated))
	require.NoError(t, record.Transition(rotationDomain.StateGenerated))
	require.NoError(t, record.Transition(rotationDomain.StateStaged))
	require.NoError(t, record.Transition(rotationDomain.StateRollbackFailed))
	record.Error = "admin connection lost"
	record.LastKnownGood = map[string]string{"username": "app", "password": "old-password"}
	require.NoError(t, repo.Update(ctx, record))

	retrieved, err := repo.Get(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, rotationDomain.StateRollbackFailed, retrieved.State)
	assert.Equal(t, "admin connection lost", retrieved.Error)
	assert.Equal(t, record.LastKnownGood, retrieved.LastKnownGood)
	require.NotNil(t, retrieved.FinishedAt)
}

func TestPostgreSQLRotationRepository_List(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLRotationRepository(db)
	ctx := context.Background()

	for i, path := range []string{"shop/db/one", "shop/db/two", "shop/db/three"} {
		record := newTestRecord(path)
		record.CreatedAt = time.Now().UTC().Add(time.Duration(i) * time.Second)
		require.NoError(t, repo.Create(ctx, record))
	}

	records, err := repo.List(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "shop/db/three", records[0].Path)
	assert.Equal(t, "shop/db/one", records[2].Path)

	page, err := repo.List(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "shop/db/two", page[0].Path)
}

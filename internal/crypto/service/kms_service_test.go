package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	cryptoDomain "github.com/rotorlabs/rotor/internal/crypto/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// base64KeeperURI builds a localsecrets keeper URI from a random 32-byte key.
func base64KeeperURI(t *testing.T) string {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return "base64key://" + base64.URLEncoding.EncodeToString(key)
}

func TestOpenKeeper(t *testing.T) {
	ctx := context.Background()
	service := NewKMSService()

	t.Run("opens local keeper", func(t *testing.T) {
		keeper, err := service.OpenKeeper(ctx, base64KeeperURI(t))
		require.NoError(t, err)
		defer keeper.Close()

		assert.NotNil(t, keeper)
	})

	t.Run("fails on invalid URI", func(t *testing.T) {
		_, err := service.OpenKeeper(ctx, "bogus://nope")
		assert.Error(t, err)
	})
}

func TestUnwrapRootKey(t *testing.T) {
	ctx := context.Background()
	service := NewKMSService()

	keeper, err := service.OpenKeeper(ctx, base64KeeperURI(t))
	require.NoError(t, err)
	defer keeper.Close()

	t.Run("round trip", func(t *testing.T) {
		rootKey := make([]byte, cryptoDomain.RootKeySize)
		_, err := rand.Read(rootKey)
		require.NoError(t, err)

		wrapped, err := keeper.Encrypt(ctx, rootKey)
		require.NoError(t, err)

		unwrapped, err := UnwrapRootKey(ctx, keeper, base64.StdEncoding.EncodeToString(wrapped))
		require.NoError(t, err)
		assert.Equal(t, rootKey, unwrapped)
	})

	t.Run("rejects invalid base64", func(t *testing.T) {
		_, err := UnwrapRootKey(ctx, keeper, "not-base64!!!")
		assert.Error(t, err)
	})

	t.Run("rejects wrong key size", func(t *testing.T) {
		wrapped, err := keeper.Encrypt(ctx, []byte("too-short"))
		require.NoError(t, err)

		_, err = UnwrapRootKey(ctx, keeper, base64.StdEncoding.EncodeToString(wrapped))
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidKeySize)
	})
}

package service

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/rotorlabs/rotor/internal/crypto/domain"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, cryptoDomain.RootKeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return key
}

func TestAEADManagerCreateCipher(t *testing.T) {
	manager := NewAEADManager()
	key := testKey(t)

	t.Run("aes-gcm", func(t *testing.T) {
		cipher, err := manager.CreateCipher(key, cryptoDomain.AESGCM)
		require.NoError(t, err)
		assert.IsType(t, &AESGCMCipher{}, cipher)
	})

	t.Run("chacha20-poly1305", func(t *testing.T) {
		cipher, err := manager.CreateCipher(key, cryptoDomain.ChaCha20)
		require.NoError(t, err)
		assert.IsType(t, &ChaCha20Poly1305Cipher{}, cipher)
	})

	t.Run("unsupported algorithm", func(t *testing.T) {
		_, err := manager.CreateCipher(key, cryptoDomain.Algorithm("des"))
		assert.ErrorIs(t, err, cryptoDomain.ErrUnsupportedAlgorithm)
	})

	t.Run("invalid key size", func(t *testing.T) {
		_, err := manager.CreateCipher([]byte("short"), cryptoDomain.AESGCM)
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidKeySize)
	})
}

func TestCipherRoundTrip(t *testing.T) {
	manager := NewAEADManager()
	key := testKey(t)

	for _, alg := range []cryptoDomain.Algorithm{cryptoDomain.AESGCM, cryptoDomain.ChaCha20} {
		t.Run(string(alg), func(t *testing.T) {
			cipher, err := manager.CreateCipher(key, alg)
			require.NoError(t, err)

			plaintext := []byte(`{"username":"app","password":"hunter2"}`)
			aad := []byte("shop/database/app-password")

			ciphertext, nonce, err := cipher.Encrypt(plaintext, aad)
			require.NoError(t, err)
			assert.NotEqual(t, plaintext, ciphertext)

			decrypted, err := cipher.Decrypt(ciphertext, nonce, aad)
			require.NoError(t, err)
			assert.Equal(t, plaintext, decrypted)
		})
	}
}

func TestCipherRejectsWrongAAD(t *testing.T) {
	manager := NewAEADManager()
	cipher, err := manager.CreateCipher(testKey(t), cryptoDomain.AESGCM)
	require.NoError(t, err)

	ciphertext, nonce, err := cipher.Encrypt([]byte("payload"), []byte("path/a"))
	require.NoError(t, err)

	_, err = cipher.Decrypt(ciphertext, nonce, []byte("path/b"))
	assert.Error(t, err)
}

func TestCipherRejectsTamperedCiphertext(t *testing.T) {
	manager := NewAEADManager()
	cipher, err := manager.CreateCipher(testKey(t), cryptoDomain.ChaCha20)
	require.NoError(t, err)

	ciphertext, nonce, err := cipher.Encrypt([]byte("payload"), nil)
	require.NoError(t, err)

	ciphertext[0] ^= 0xff

	_, err = cipher.Decrypt(ciphertext, nonce, nil)
	assert.Error(t, err)
}

func TestCipherNoncesAreUnique(t *testing.T) {
	cipher, err := NewAESGCM(testKey(t))
	require.NoError(t, err)

	_, nonce1, err := cipher.Encrypt([]byte("a"), nil)
	require.NoError(t, err)
	_, nonce2, err := cipher.Encrypt([]byte("a"), nil)
	require.NoError(t, err)

	assert.NotEqual(t, nonce1, nonce2)
}

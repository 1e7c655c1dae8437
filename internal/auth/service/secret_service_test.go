package service

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSecretService(t *testing.T) {
	service := NewSecretService()
	assert.NotNil(t, service)
	assert.IsType(t, &secretService{}, service)
}

func TestSecretService_GenerateSecret(t *testing.T) {
	service := NewSecretService()

	t.Run("Success_GeneratesValidSecret", func(t *testing.T) {
		plainSecret, hashedSecret, err := service.GenerateSecret()
		require.NoError(t, err)

		// Verify plain secret is not empty
		assert.NotEmpty(t, plainSecret)

		// Verify plain secret is valid base64
		decoded, err := base64.URLEncoding.DecodeString(plainSecret)
		require.NoError(t, err)
		assert.Len(t, decoded, 32) // 32 bytes

		// Verify hashed secret is not empty
		assert.NotEmpty(t, hashedSecret)

		// Verify hashed secret is different from plain secret
		assert.NotEqual(t, plainSecret, hashedSecret)

		// Verify hashed secret uses PHC format
		assert.Contains(t, hashedSecret, "$argon2id$")
	})

	t.Run("Success_GeneratesUniqueSecrets", func(t *testing.T) {
		plainSecret1, hashedSecret1, err := service.GenerateSecret()
		require.NoError(t, err)

		plainSecret2, hashedSecret2, err := service.GenerateSecret()
		require.NoError(t, err)

		// Verify each call generates different secrets
		assert.NotEqual(t, plainSecret1, plainSecret2)
		assert.NotEqual(t, hashedSecret1, hashedSecret2)
	})

	t.Run("Success_GeneratedSecretCanBeVerified", func(t *testing.T) {
		plainSecret, hashedSecret, err := service.GenerateSecret()
		require.NoError(t, err)

		matches := service.CompareSecret(plainSecret, hashedSecret)
		assert.True(t, matches)
	})
}

func TestSecretService_HashSecret(t *testing.T) {
	service := NewSecretService()

	t.Run("Success_HashesSecret", func(t *testing.T) {
		plainSecret := "my-test-secret"

		hashedSecret, err := service.HashSecret(plainSecret)
		require.NoError(t, err)

		assert.NotEmpty(t, hashedSecret)
		assert.NotEqual(t, plainSecret, hashedSecret)
		assert.Contains(t, hashedSecret, "$argon2id$")
	})

	t.Run("Success_SameSecretProducesDifferentHashes", func(t *testing.T) {
		plainSecret := "my-test-secret"

		// Argon2id uses a random salt, so hashing the same input twice
		// produces different hashes
		hash1, err := service.HashSecret(plainSecret)
		require.NoError(t, err)

		hash2, err := service.HashSecret(plainSecret)
		require.NoError(t, err)

		assert.NotEqual(t, hash1, hash2)

		// Both hashes must still verify against the original secret
		assert.True(t, service.CompareSecret(plainSecret, hash1))
		assert.True(t, service.CompareSecret(plainSecret, hash2))
	})
}

func TestSecretService_CompareSecret(t *testing.T) {
	service := NewSecretService()

	t.Run("Success_MatchingSecret", func(t *testing.T) {
		plainSecret := "correct-secret"
		hashedSecret, err := service.HashSecret(plainSecret)
		require.NoError(t, err)

		assert.True(t, service.CompareSecret(plainSecret, hashedSecret))
	})

	t.Run("Failure_WrongSecret", func(t *testing.T) {
		hashedSecret, err := service.HashSecret("correct-secret")
		require.NoError(t, err)

		assert.False(t, service.CompareSecret("wrong-secret", hashedSecret))
	})

	t.Run("Failure_InvalidHashFormat", func(t *testing.T) {
		assert.False(t, service.CompareSecret("any-secret", "not-a-valid-hash"))
	})

	t.Run("Failure_EmptyHash", func(t *testing.T) {
		assert.False(t, service.CompareSecret("any-secret", ""))
	})
}

// Package service provides cryptographic services for encryption at rest.
// Implements AEAD ciphers (AES-256-GCM, ChaCha20-Poly1305) keyed by a KMS-wrapped
// root key.
package service

import (
	"context"

	cryptoDomain "github.com/rotorlabs/rotor/internal/crypto/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
type AEAD interface {
	// Encrypt encrypts plaintext with optional AAD and returns ciphertext and nonce.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Decrypt decrypts ciphertext using the provided nonce and AAD.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)
}

// AEADManager defines the interface for creating AEAD cipher instances.
type AEADManager interface {
	// CreateCipher creates an AEAD cipher instance for the specified algorithm.
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error)
}

// KMSKeeper abstracts the KMS keeper that wraps and unwraps the root key.
// *gocloud.dev/secrets.Keeper implements this interface.
type KMSKeeper interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}

// KMSService opens KMS keepers for root key wrapping.
type KMSService interface {
	// OpenKeeper opens a keeper for the configured KMS provider.
	// Supports gcpkms://, awskms://, azurekeyvault://, hashivault://, base64key:// URIs.
	OpenKeeper(ctx context.Context, keyURI string) (KMSKeeper, error)
}

// Package domain defines cryptographic domain types for encryption at rest.
package domain

// Algorithm represents the cryptographic algorithm used for encryption.
//
// All supported algorithms provide Authenticated Encryption with Associated Data
// (AEAD), ensuring both confidentiality and authenticity of encrypted data.
type Algorithm string

const (
	// AESGCM represents the AES-256-GCM authenticated encryption algorithm.
	// Uses a 256-bit key, 12-byte nonce, and 16-byte authentication tag.
	// Best choice on CPUs with AES-NI hardware acceleration.
	AESGCM Algorithm = "aes-gcm"

	// ChaCha20 represents the ChaCha20-Poly1305 authenticated encryption algorithm.
	// Uses a 256-bit key, 12-byte nonce, and 16-byte authentication tag.
	// Constant-time in software; best on platforms without AES-NI.
	ChaCha20 Algorithm = "chacha20-poly1305"
)

// RootKeySize is the required size in bytes of the unwrapped root encryption key.
const RootKeySize = 32

// Package service provides technical services for authentication operations.
//
// This package implements reusable services for role secret generation, hashing,
// token generation, and audit log signing using standard cryptographic practices.
package service

import (
	authDomain "github.com/rotorlabs/rotor/internal/auth/domain"
)

// SecretService defines operations for role secret generation and validation.
// Implementations must use cryptographically secure random generation and
// industry-standard hashing algorithms (e.g., argon2).
type SecretService interface {
	// GenerateSecret creates a new cryptographically secure random secret.
	// Returns both the plain text secret (to be shared with the role's service)
	// and the hashed version (to be stored in the database).
	GenerateSecret() (plainSecret string, hashedSecret string, error error)

	// HashSecret hashes a plain text secret using a secure hashing algorithm.
	HashSecret(plainSecret string) (hashedSecret string, error error)

	// CompareSecret compares a plain text secret against a hashed secret.
	// Returns true if the plain secret matches the hash, false otherwise.
	// This is constant-time to prevent timing attacks.
	CompareSecret(plainSecret string, hashedSecret string) bool
}

// TokenService defines operations for session token generation and hashing.
type TokenService interface {
	// GenerateToken creates a new cryptographically secure random token.
	// Returns both the plain text token (shared with the caller exactly once)
	// and the hashed version (stored in the database).
	GenerateToken() (plainToken string, tokenHash string, error error)

	// HashToken hashes a plain text token using SHA-256.
	// Used for token validation by comparing hashes.
	HashToken(plainToken string) string
}

// AuditSigner signs and verifies audit log entries so that tampering with the
// append-only log is detectable.
type AuditSigner interface {
	// Sign generates an HMAC-SHA256 signature for the audit log entry.
	Sign(signingRoot []byte, log *authDomain.AuditLog) ([]byte, error)

	// Verify checks the entry's signature. Returns nil if valid,
	// ErrSignatureInvalid if the entry was tampered with.
	Verify(signingRoot []byte, log *authDomain.AuditLog) error
}

package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	authDomain "github.com/rotorlabs/rotor/internal/auth/domain"
)

type auditSigner struct{}

// NewAuditSigner creates a new HMAC-based audit log signer using HKDF-SHA256
// for key derivation and HMAC-SHA256 for signature generation.
func NewAuditSigner() AuditSigner {
	return &auditSigner{}
}

// deriveSigningKey uses HKDF-SHA256 to derive a 32-byte signing key from the
// root key, separating encryption key usage from signing key usage.
// Info parameter: "audit-log-signing-v1" (versioned for future algorithm changes).
func (a *auditSigner) deriveSigningKey(rootKey []byte) ([]byte, error) {
	info := []byte("audit-log-signing-v1")
	hkdfReader := hkdf.New(sha256.New, rootKey, nil, info)

	signingKey := make([]byte, 32)
	if _, err := io.ReadFull(hkdfReader, signingKey); err != nil {
		return nil, err
	}

	return signingKey, nil
}

// canonicalizeLog converts an audit log to a canonical byte representation for
// signing. Format: request_id || role_id || operation || path || outcome ||
// metadata || created_at. Uses length-prefixed encoding for variable-length
// fields to prevent ambiguity.
func (a *auditSigner) canonicalizeLog(log *authDomain.AuditLog) ([]byte, error) {
	// Typical entry is well under 1KB
	buf := make([]byte, 0, 1024)

	// Append UUIDs (16 bytes each)
	buf = append(buf, log.RequestID[:]...)
	buf = append(buf, log.RoleID[:]...)

	buf = appendLengthPrefixed(buf, []byte(log.Operation))
	buf = appendLengthPrefixed(buf, []byte(log.Path))
	buf = appendLengthPrefixed(buf, []byte(string(log.Outcome)))

	if log.Metadata != nil {
		// Serialize metadata to JSON for deterministic representation
		metadataBytes, err := json.Marshal(log.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal metadata: %w", err)
		}
		buf = appendLengthPrefixed(buf, metadataBytes)
	} else {
		buf = appendLengthPrefixed(buf, nil)
	}

	// Append timestamp (Unix nano for precision)
	timeBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(timeBytes, uint64(log.CreatedAt.UnixNano()))
	buf = append(buf, timeBytes...)

	return buf, nil
}

// appendLengthPrefixed adds a 4-byte big-endian length prefix followed by data.
// Panics if data length exceeds uint32 max to prevent integer overflow.
func appendLengthPrefixed(buf []byte, data []byte) []byte {
	dataLen := len(data)
	if dataLen > 0xFFFFFFFF {
		panic("data length exceeds uint32 max")
	}
	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(dataLen))
	buf = append(buf, length...)
	buf = append(buf, data...)
	return buf
}

// Sign generates an HMAC-SHA256 signature for the audit log.
func (a *auditSigner) Sign(signingRoot []byte, log *authDomain.AuditLog) ([]byte, error) {
	signingKey, err := a.deriveSigningKey(signingRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to derive signing key: %w", err)
	}
	defer zero(signingKey)

	canonical, err := a.canonicalizeLog(log)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize log: %w", err)
	}

	mac := hmac.New(sha256.New, signingKey)
	mac.Write(canonical)
	return mac.Sum(nil), nil
}

// Verify checks if the audit log signature is valid.
// Returns nil if valid, ErrSignatureInvalid if tampered or invalid.
func (a *auditSigner) Verify(signingRoot []byte, log *authDomain.AuditLog) error {
	expectedSig, err := a.Sign(signingRoot, log)
	if err != nil {
		return fmt.Errorf("failed to compute expected signature: %w", err)
	}

	if !hmac.Equal(log.Signature, expectedSig) {
		return authDomain.ErrSignatureInvalid
	}

	return nil
}

// zero overwrites sensitive data in memory with zeros.
func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

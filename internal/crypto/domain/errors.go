package domain

import (
	"github.com/rotorlabs/rotor/internal/errors"
)

// Cryptographic error definitions.
var (
	// ErrUnsupportedAlgorithm indicates an unknown or unsupported cipher algorithm.
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrInvalidKeySize indicates the key does not match the required size.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrDecryptionFailed indicates AEAD authentication or decryption failure.
	ErrDecryptionFailed = errors.New("decryption failed")
)

// Package service provides credential generation for rotations.
package service

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"

	apperrors "github.com/rotorlabs/rotor/internal/errors"
	"github.com/rotorlabs/rotor/internal/rotation/adapter"
)

// passwordCharset excludes characters that routinely break connection strings
// and shell quoting.
const passwordCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-_.~"

// minPasswordLength is the floor the generator enforces regardless of
// configuration.
const minPasswordLength = 16

// signingKeySize is the generated HMAC signing key size in bytes.
const signingKeySize = 32

// CredentialGenerator produces a replacement credential for a secret class,
// preserving the non-rotated fields of the current value.
type CredentialGenerator interface {
	Generate(secretClass string, current map[string]string) (map[string]string, error)
}

type credentialGenerator struct {
	passwordLength int
}

// NewCredentialGenerator creates a generator producing passwords of the given
// length. Lengths below the enforced minimum are raised to it.
func NewCredentialGenerator(passwordLength int) CredentialGenerator {
	if passwordLength < minPasswordLength {
		passwordLength = minPasswordLength
	}
	return &credentialGenerator{passwordLength: passwordLength}
}

// Generate returns a copy of the current fields with the class's rotated
// field replaced by a freshly generated value. Password classes rotate the
// "password" field; the signing key class rotates the hex-encoded "key" field.
func (g *credentialGenerator) Generate(secretClass string, current map[string]string) (map[string]string, error) {
	fields := make(map[string]string, len(current)+1)
	for key, value := range current {
		fields[key] = value
	}

	switch secretClass {
	case adapter.ClassSigningKey:
		key := make([]byte, signingKeySize)
		if _, err := rand.Read(key); err != nil {
			return nil, apperrors.Wrap(err, "failed to generate signing key")
		}
		fields["key"] = hex.EncodeToString(key)

	default:
		password, err := g.generatePassword()
		if err != nil {
			return nil, err
		}
		fields["password"] = password
	}

	return fields, nil
}

// generatePassword draws each character uniformly from the charset using a
// cryptographically strong source.
func (g *credentialGenerator) generatePassword() (string, error) {
	charsetSize := big.NewInt(int64(len(passwordCharset)))
	password := make([]byte, g.passwordLength)
	for i := range password {
		index, err := rand.Int(rand.Reader, charsetSize)
		if err != nil {
			return "", apperrors.Wrap(err, "failed to generate random password")
		}
		password[i] = passwordCharset[index.Int64()]
	}
	return string(password), nil
}

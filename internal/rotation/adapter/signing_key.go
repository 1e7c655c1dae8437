package adapter

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	apperrors "github.com/rotorlabs/rotor/internal/errors"
	rotationDomain "github.com/rotorlabs/rotor/internal/rotation/domain"
)

// ClassSigningKey is the secret class served by the signing key adapter.
const ClassSigningKey = "signing-key"

// KeyRing holds a process-local HMAC signing key behind an atomic swap, so
// signers read a consistent key without locking.
type KeyRing struct {
	key atomic.Pointer[[]byte]
}

// NewKeyRing creates a key ring holding the initial key.
func NewKeyRing(initial []byte) *KeyRing {
	ring := &KeyRing{}
	ring.Swap(initial)
	return ring
}

// Active returns the current signing key.
func (k *KeyRing) Active() []byte {
	key := k.key.Load()
	if key == nil {
		return nil
	}
	return *key
}

// Swap replaces the current signing key.
func (k *KeyRing) Swap(key []byte) {
	k.key.Store(&key)
}

// SigningKeyAdapter rotates an in-process HMAC signing key. The downstream
// system here is the process itself: Apply swaps the key ring, the probe
// runs a sign/verify round trip against the active key.
type SigningKeyAdapter struct {
	ring     *KeyRing
	notifier Notifier
	logger   *slog.Logger
}

// NewSigningKeyAdapter creates a signing key target adapter over the given ring.
func NewSigningKeyAdapter(ring *KeyRing, notifier Notifier, logger *slog.Logger) *SigningKeyAdapter {
	return &SigningKeyAdapter{
		ring:     ring,
		notifier: notifier,
		logger:   logger,
	}
}

func (a *SigningKeyAdapter) Class() string {
	return ClassSigningKey
}

// Apply swaps the ring to the new key and signals dependent consumers.
func (a *SigningKeyAdapter) Apply(ctx context.Context, cred *Credential) error {
	key, err := decodeSigningKey(cred)
	if err != nil {
		return apperrors.Wrap(rotationDomain.ErrAdapterApplyFailed, err.Error())
	}

	a.ring.Swap(key)
	a.logger.Info("signing key swapped", slog.String("path", cred.Path))
	return a.notify(ctx, cred.Path)
}

// HealthProbe runs a sign/verify round trip with the active key.
func (a *SigningKeyAdapter) HealthProbe(_ context.Context) error {
	key := a.ring.Active()
	if len(key) == 0 {
		return apperrors.Wrap(rotationDomain.ErrHealthCheckFailed, "no signing key active")
	}

	payload := []byte("signing-key-probe")
	mac := hmac.New(sha256.New, key)
	mac.Write(payload)
	signature := mac.Sum(nil)

	check := hmac.New(sha256.New, key)
	check.Write(payload)
	if !hmac.Equal(signature, check.Sum(nil)) {
		return apperrors.Wrap(rotationDomain.ErrHealthCheckFailed, "sign/verify round trip failed")
	}
	return nil
}

// Revert swaps the ring back to the previous key.
func (a *SigningKeyAdapter) Revert(ctx context.Context, cred *Credential) error {
	key, err := decodeSigningKey(cred)
	if err != nil {
		return apperrors.Wrap(rotationDomain.ErrRollbackFailed, err.Error())
	}

	a.ring.Swap(key)
	a.logger.Warn("signing key reverted", slog.String("path", cred.Path))
	return a.notify(ctx, cred.Path)
}

func decodeSigningKey(cred *Credential) ([]byte, error) {
	encoded := cred.Fields["key"]
	if encoded == "" {
		return nil, apperrors.New("credential is missing the key field")
	}
	return hex.DecodeString(encoded)
}

func (a *SigningKeyAdapter) notify(ctx context.Context, path string) error {
	if a.notifier == nil {
		return nil
	}
	if err := a.notifier(ctx, ClassSigningKey, path); err != nil {
		return apperrors.Wrap(rotationDomain.ErrAdapterApplyFailed, "consumer refresh signal failed: "+err.Error())
	}
	return nil
}

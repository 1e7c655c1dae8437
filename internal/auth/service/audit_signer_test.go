package service

import (
	"crypto/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authDomain "github.com/rotorlabs/rotor/internal/auth/domain"
)

func TestAuditSigner_SignAndVerify(t *testing.T) {
	signer := NewAuditSigner()

	rootKey := make([]byte, 32)
	_, err := rand.Read(rootKey)
	require.NoError(t, err)

	log := &authDomain.AuditLog{
		ID:        uuid.Must(uuid.NewV7()),
		RequestID: uuid.Must(uuid.NewV7()),
		RoleID:    uuid.Must(uuid.NewV7()),
		Operation: authDomain.OpSecretGet,
		Path:      "prod/db/password",
		Outcome:   authDomain.OutcomeSuccess,
		Metadata:  map[string]any{"version": 3},
		CreatedAt: time.Now().UTC(),
	}

	signature, err := signer.Sign(rootKey, log)
	require.NoError(t, err)
	assert.Len(t, signature, 32, "HMAC-SHA256 should produce 32-byte signature")

	log.Signature = signature

	err = signer.Verify(rootKey, log)
	assert.NoError(t, err)
}

func TestAuditSigner_VerifyDetectsTampering(t *testing.T) {
	signer := NewAuditSigner()
	rootKey := make([]byte, 32)
	if _, err := rand.Read(rootKey); err != nil {
		t.Fatal(err)
	}

	log := &authDomain.AuditLog{
		ID:        uuid.Must(uuid.NewV7()),
		RequestID: uuid.Must(uuid.NewV7()),
		RoleID:    uuid.Must(uuid.NewV7()),
		Operation: authDomain.OpSecretPut,
		Path:      "prod/db/password",
		Outcome:   authDomain.OutcomeSuccess,
		CreatedAt: time.Now().UTC(),
	}

	signature, _ := signer.Sign(rootKey, log)
	log.Signature = signature

	// Tamper with the log path
	log.Path = "prod/db/tampered"

	err := signer.Verify(rootKey, log)
	assert.ErrorIs(t, err, authDomain.ErrSignatureInvalid)
}

func TestAuditSigner_VerifyDetectsOutcomeTampering(t *testing.T) {
	signer := NewAuditSigner()
	rootKey := make([]byte, 32)
	if _, err := rand.Read(rootKey); err != nil {
		t.Fatal(err)
	}

	log := &authDomain.AuditLog{
		ID:        uuid.Must(uuid.NewV7()),
		RequestID: uuid.Must(uuid.NewV7()),
		RoleID:    uuid.Must(uuid.NewV7()),
		Operation: authDomain.OpAuthenticate,
		Outcome:   authDomain.OutcomeDenied,
		CreatedAt: time.Now().UTC(),
	}

	signature, _ := signer.Sign(rootKey, log)
	log.Signature = signature

	// Flip a denied attempt to a success
	log.Outcome = authDomain.OutcomeSuccess

	err := signer.Verify(rootKey, log)
	assert.ErrorIs(t, err, authDomain.ErrSignatureInvalid)
}

func TestAuditSigner_VerifyDetectsMetadataTampering(t *testing.T) {
	signer := NewAuditSigner()
	rootKey := make([]byte, 32)
	if _, err := rand.Read(rootKey); err != nil {
		t.Fatal(err)
	}

	log := &authDomain.AuditLog{
		ID:        uuid.Must(uuid.NewV7()),
		RequestID: uuid.Must(uuid.NewV7()),
		RoleID:    uuid.Must(uuid.NewV7()),
		Operation: authDomain.OpRotation,
		Path:      "prod/db/password",
		Outcome:   authDomain.OutcomeSuccess,
		Metadata:  map[string]any{"state": "committed"},
		CreatedAt: time.Now().UTC(),
	}

	signature, _ := signer.Sign(rootKey, log)
	log.Signature = signature

	log.Metadata = map[string]any{"state": "rolled_back"}

	err := signer.Verify(rootKey, log)
	assert.ErrorIs(t, err, authDomain.ErrSignatureInvalid)
}

func TestAuditSigner_VerifyFailsWithWrongKey(t *testing.T) {
	signer := NewAuditSigner()

	rootKey := make([]byte, 32)
	wrongKey := make([]byte, 32)
	require.NoError(t, func() error { _, err := rand.Read(rootKey); return err }())
	require.NoError(t, func() error { _, err := rand.Read(wrongKey); return err }())

	log := &authDomain.AuditLog{
		ID:        uuid.Must(uuid.NewV7()),
		RequestID: uuid.Must(uuid.NewV7()),
		RoleID:    uuid.Must(uuid.NewV7()),
		Operation: authDomain.OpRenew,
		Outcome:   authDomain.OutcomeSuccess,
		CreatedAt: time.Now().UTC(),
	}

	signature, err := signer.Sign(rootKey, log)
	require.NoError(t, err)
	log.Signature = signature

	err = signer.Verify(wrongKey, log)
	assert.ErrorIs(t, err, authDomain.ErrSignatureInvalid)
}

func TestAuditSigner_SignIsDeterministic(t *testing.T) {
	signer := NewAuditSigner()
	rootKey := make([]byte, 32)
	if _, err := rand.Read(rootKey); err != nil {
		t.Fatal(err)
	}

	log := &authDomain.AuditLog{
		ID:        uuid.Must(uuid.NewV7()),
		RequestID: uuid.Must(uuid.NewV7()),
		RoleID:    uuid.Must(uuid.NewV7()),
		Operation: authDomain.OpSecretList,
		Path:      "prod/db",
		Outcome:   authDomain.OutcomeSuccess,
		CreatedAt: time.Now().UTC(),
	}

	sig1, err := signer.Sign(rootKey, log)
	require.NoError(t, err)
	sig2, err := signer.Sign(rootKey, log)
	require.NoError(t, err)

	assert.Equal(t, sig1, sig2)
}

func TestAuditSigner_NilMetadata(t *testing.T) {
	signer := NewAuditSigner()
	rootKey := make([]byte, 32)
	if _, err := rand.Read(rootKey); err != nil {
		t.Fatal(err)
	}

	log := &authDomain.AuditLog{
		ID:        uuid.Must(uuid.NewV7()),
		RequestID: uuid.Must(uuid.NewV7()),
		RoleID:    uuid.Must(uuid.NewV7()),
		Operation: authDomain.OpSecretDestroy,
		Path:      "prod/db/password",
		Outcome:   authDomain.OutcomeSuccess,
		Metadata:  nil,
		CreatedAt: time.Now().UTC(),
	}

	signature, err := signer.Sign(rootKey, log)
	require.NoError(t, err)
	log.Signature = signature

	assert.NoError(t, signer.Verify(rootKey, log))
}

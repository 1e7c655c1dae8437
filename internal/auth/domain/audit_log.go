package domain

import (
	"time"

	"github.com/google/uuid"
)

// Audited operation names. One audit entry is written per authentication
// attempt, per store mutation, and per rotation state transition.
const (
	OpAuthenticate     = "authenticate"
	OpRenew            = "renew"
	OpSecretPut        = "secret_put"
	OpSecretGet        = "secret_get"
	OpSecretList       = "secret_list"
	OpSecretSoftDelete = "secret_soft_delete"
	OpSecretUndelete   = "secret_undelete"
	OpSecretDestroy    = "secret_destroy"
	OpRotation         = "rotation"
)

// AuditLog is one append-only record of an authentication event or store
// mutation. Entries are HMAC-signed at write time and never mutated or
// deleted by the engine itself.
type AuditLog struct {
	ID        uuid.UUID
	RequestID uuid.UUID
	RoleID    uuid.UUID // Acting (or attempting) role; safe to log
	Operation string
	Path      string
	Outcome   Outcome
	Metadata  map[string]any
	Signature []byte
	CreatedAt time.Time
}

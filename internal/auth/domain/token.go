package domain

import (
	"time"

	"github.com/google/uuid"
)

// Token is a short-lived session token issued after a successful authentication.
// Only the SHA-256 hash of the token is stored. IssuedAt anchors the maximum
// absolute lifetime: renewals may move ExpiresAt forward but never past
// IssuedAt plus the configured maximum lifetime.
type Token struct {
	ID        uuid.UUID
	TokenHash string
	RoleID    uuid.UUID
	IssuedAt  time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}

// Expired reports whether the token is past its expiry.
func (t *Token) Expired(now time.Time) bool {
	return t.ExpiresAt.Before(now)
}

// Revoked reports whether the token has been revoked.
func (t *Token) Revoked() bool {
	return t.RevokedAt != nil
}

// AuthenticateInput contains the role credential pair presented to the
// identity exchange.
type AuthenticateInput struct {
	RoleID     uuid.UUID
	RoleSecret string
}

// AuthenticateOutput contains the issued session token. The plain token is
// returned exactly once.
type AuthenticateOutput struct {
	PlainToken string
	TTL        time.Duration
}

// RenewOutput contains the extended time-to-live of a renewed session token.
type RenewOutput struct {
	TTL time.Duration
}

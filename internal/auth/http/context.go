// Package http provides HTTP middleware and utilities for authentication.
package http

import (
	"context"

	authDomain "github.com/rotorlabs/rotor/internal/auth/domain"
)

// roleKey is a context key type for storing authenticated roles.
type roleKey struct{}

// WithRole stores an authenticated role in the context.
// This is typically called by the authentication middleware after successful token validation.
func WithRole(ctx context.Context, role *authDomain.Role) context.Context {
	return context.WithValue(ctx, roleKey{}, role)
}

// GetRole retrieves an authenticated role from the context.
// Returns (role, true) if a role is present, or (nil, false) if no role was set.
// This is typically called by handlers or subsequent middleware that need the authenticated role.
func GetRole(ctx context.Context) (*authDomain.Role, bool) {
	role, ok := ctx.Value(roleKey{}).(*authDomain.Role)
	return role, ok
}

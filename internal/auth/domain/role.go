package domain

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PolicyDocument defines access control rules for a secret path pattern.
// Policies use prefix matching with wildcard support for flexible authorization.
type PolicyDocument struct {
	Path         string       `json:"path"`         // Resource path pattern (supports "*" and "/*" wildcards)
	Capabilities []Capability `json:"capabilities"` // List of allowed operations on the resource
}

// Role represents a service identity with an associated credential pair and
// authorization policies. The role ID is long-lived and safe to log; the role
// secret is sensitive, stored only as an Argon2id hash, and expires at the end
// of its single-use window whether or not it has been used.
type Role struct {
	ID              uuid.UUID        // Unique identifier (UUIDv7), safe to log
	SecretHash      string           //nolint:gosec // hashed role secret (not plaintext)
	SecretExpiresAt time.Time        // End of the role secret's usable window
	Name            string           // Human-readable role name
	IsActive        bool             // Whether the role can authenticate
	Policies        []PolicyDocument // Authorization policies for this role
	FailedAttempts  int              // Number of consecutive failed authentication attempts
	LockedUntil     *time.Time       // Time until which the role is locked (nil if not locked)
	CreatedAt       time.Time
}

// IsLocked reports whether the role is currently locked out.
func (r *Role) IsLocked(now time.Time) bool {
	return r.LockedUntil != nil && now.Before(*r.LockedUntil)
}

// SecretExpired reports whether the role secret's single-use window has elapsed.
func (r *Role) SecretExpired(now time.Time) bool {
	return now.After(r.SecretExpiresAt)
}

// matchPath checks if the request path matches the policy path pattern.
// Supports three types of wildcards:
//  1. Full wildcard: "*" matches any path
//  2. Trailing wildcard: "prefix/*" matches any path starting with "prefix/" (greedy)
//  3. Mid-path wildcard: "shop/*/password" matches paths with * as single segment
func matchPath(policyPath, requestPath string) bool {
	// Special case: full wildcard matches everything
	if policyPath == "*" {
		return true
	}

	// No wildcard: exact match required
	if !strings.Contains(policyPath, "*") {
		return policyPath == requestPath
	}

	// Trailing wildcard (/*): prefix match (greedy - matches remaining path)
	if strings.HasSuffix(policyPath, "/*") {
		prefix := strings.TrimSuffix(policyPath, "/*")
		return strings.HasPrefix(requestPath, prefix+"/")
	}

	// Mid-path wildcards: segment-by-segment matching.
	// Each * matches exactly one segment.
	policyParts := strings.Split(policyPath, "/")
	requestParts := strings.Split(requestPath, "/")

	if len(policyParts) != len(requestParts) {
		return false
	}

	for i := 0; i < len(policyParts); i++ {
		if policyParts[i] == "*" {
			continue
		}
		if policyParts[i] != requestParts[i] {
			return false
		}
	}

	return true
}

// IsAllowed checks if the role's policies permit the given capability on the
// specified path. Evaluation is deny-by-default: any matching policy granting
// the capability is sufficient, and absence of a grant is the only deny
// mechanism (no explicit-deny precedence is modeled).
//
// Wildcard patterns:
//   - "*" matches everything (admin mode)
//   - "secret/*" matches any path starting with "secret/" (trailing wildcard - greedy)
//   - "shop/*/password" matches "shop/database/password" (single-segment wildcard)
//
// Matching is case-sensitive.
func (r *Role) IsAllowed(path string, capability Capability) bool {
	// Edge case: empty path or capability
	if path == "" || capability == "" {
		return false
	}

	for _, policy := range r.Policies {
		if matchPath(policy.Path, path) {
			if slices.Contains(policy.Capabilities, capability) {
				return true
			}
		}
	}

	return false
}

// CreateRoleInput contains the parameters for creating a new role.
// The role secret will be automatically generated and cannot be specified by the caller.
type CreateRoleInput struct {
	Name     string           // Human-readable name for identifying the role
	IsActive bool             // Whether the role can authenticate immediately after creation
	Policies []PolicyDocument // Authorization policies defining resource access permissions
}

// CreateRoleOutput contains the result of creating a new role.
// SECURITY: The PlainSecret is only returned once and must be securely
// transmitted to the consuming service. It is never retrievable again.
type CreateRoleOutput struct {
	ID          uuid.UUID // Unique identifier for the created role (UUIDv7)
	PlainSecret string    // Plain text role secret (transmit securely, never log)
}

// UpdateRoleInput contains the mutable fields for updating an existing role.
// The role ID and secret cannot be modified through updates.
type UpdateRoleInput struct {
	Name     string           // Updated human-readable name
	IsActive bool             // Updated active status (false prevents authentication)
	Policies []PolicyDocument // Updated authorization policies
}

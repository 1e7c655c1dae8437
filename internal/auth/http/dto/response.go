// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"time"

	authDomain "github.com/rotorlabs/rotor/internal/auth/domain"
)

// CreateRoleResponse contains the result of creating a new role.
// SECURITY: The secret is only returned once and must be saved securely.
type CreateRoleResponse struct {
	ID     string `json:"id"`
	Secret string `json:"secret"` //nolint:gosec // returned once on creation
}

// RoleResponse represents a role in API responses (excludes secret material).
type RoleResponse struct {
	ID              string                      `json:"id"`
	Name            string                      `json:"name"`
	IsActive        bool                        `json:"is_active"`
	Policies        []authDomain.PolicyDocument `json:"policies"`
	SecretExpiresAt time.Time                   `json:"secret_expires_at"`
	CreatedAt       time.Time                   `json:"created_at"`
}

// MapRoleToResponse converts a domain role to an API response.
func MapRoleToResponse(role *authDomain.Role) RoleResponse {
	return RoleResponse{
		ID:              role.ID.String(),
		Name:            role.Name,
		IsActive:        role.IsActive,
		Policies:        role.Policies,
		SecretExpiresAt: role.SecretExpiresAt,
		CreatedAt:       role.CreatedAt,
	}
}

// AuthenticateResponse contains the result of a successful identity exchange.
// SECURITY: The token is only returned once and must be saved securely.
type AuthenticateResponse struct {
	Token string `json:"token"`
	TTL   int64  `json:"ttl"` // Seconds until expiry
}

// RenewResponse contains the extended time-to-live of a renewed session token.
type RenewResponse struct {
	TTL int64 `json:"ttl"` // Seconds until the new expiry
}

// AuditLogResponse represents an audit log entry in API responses.
type AuditLogResponse struct {
	ID        string         `json:"id"`
	RequestID string         `json:"request_id"`
	RoleID    string         `json:"role_id"`
	Operation string         `json:"operation"`
	Path      string         `json:"path"`
	Outcome   string         `json:"outcome"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// MapAuditLogToResponse converts a domain audit log to an API response.
func MapAuditLogToResponse(auditLog *authDomain.AuditLog) AuditLogResponse {
	return AuditLogResponse{
		ID:        auditLog.ID.String(),
		RequestID: auditLog.RequestID.String(),
		RoleID:    auditLog.RoleID.String(),
		Operation: auditLog.Operation,
		Path:      auditLog.Path,
		Outcome:   string(auditLog.Outcome),
		Metadata:  auditLog.Metadata,
		CreatedAt: auditLog.CreatedAt,
	}
}

// ListAuditLogsResponse represents a paginated list of audit logs in API responses.
type ListAuditLogsResponse struct {
	Data []AuditLogResponse `json:"data"`
}

// MapAuditLogsToListResponse converts a slice of domain audit logs to a list API response.
func MapAuditLogsToListResponse(auditLogs []*authDomain.AuditLog) ListAuditLogsResponse {
	auditLogResponses := make([]AuditLogResponse, 0, len(auditLogs))
	for _, auditLog := range auditLogs {
		auditLogResponses = append(auditLogResponses, MapAuditLogToResponse(auditLog))
	}
	return ListAuditLogsResponse{
		Data: auditLogResponses,
	}
}

// Package dto provides data transfer objects for secret store HTTP handling.
package dto

import (
	"time"

	secretsDomain "github.com/rotorlabs/rotor/internal/secrets/domain"
)

// SecretResponse represents a decrypted secret version in API responses.
type SecretResponse struct {
	Path      string            `json:"path"`
	Version   uint              `json:"version"`
	Status    string            `json:"status"`
	Fields    map[string]string `json:"fields,omitempty"`
	RotatedBy string            `json:"rotated_by,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// MapSecretToResponse converts a domain secret version to an API response.
func MapSecretToResponse(version *secretsDomain.SecretVersion) SecretResponse {
	return SecretResponse{
		Path:      version.Path,
		Version:   version.Version,
		Status:    string(version.Status),
		Fields:    version.Fields,
		RotatedBy: version.RotatedBy,
		CreatedAt: version.CreatedAt,
	}
}

// PutSecretResponse contains the result of writing a new secret version.
// Field data is not echoed back.
type PutSecretResponse struct {
	Path      string    `json:"path"`
	Version   uint      `json:"version"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// MapSecretToPutResponse converts a freshly written version to an API response.
func MapSecretToPutResponse(version *secretsDomain.SecretVersion) PutSecretResponse {
	return PutSecretResponse{
		Path:      version.Path,
		Version:   version.Version,
		Status:    string(version.Status),
		CreatedAt: version.CreatedAt,
	}
}

// ListSecretsResponse contains the child paths under a prefix.
type ListSecretsResponse struct {
	Data []string `json:"data"`
}

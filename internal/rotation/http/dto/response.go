// Package dto provides data transfer objects for rotation HTTP handling.
package dto

import (
	"time"

	"github.com/google/uuid"

	rotationDomain "github.com/rotorlabs/rotor/internal/rotation/domain"
)

// RotationRecordResponse represents a rotation record in API responses. The
// last-known-good credential is intentionally absent; it is only reachable
// through operator tooling.
type RotationRecordResponse struct {
	ID              uuid.UUID  `json:"id"`
	Path            string     `json:"path"`
	SecretClass     string     `json:"secret_class"`
	PreviousVersion uint       `json:"previous_version"`
	NewVersion      uint       `json:"new_version"`
	State           string     `json:"state"`
	AdapterOutcome  string     `json:"adapter_outcome,omitempty"`
	HealthOutcome   string     `json:"health_outcome,omitempty"`
	RequestedBy     string     `json:"requested_by"`
	Error           string     `json:"error,omitempty"`
	RequestedAt     time.Time  `json:"requested_at"`
	StagedAt        *time.Time `json:"staged_at,omitempty"`
	AppliedAt       *time.Time `json:"applied_at,omitempty"`
	VerifiedAt      *time.Time `json:"verified_at,omitempty"`
	FinishedAt      *time.Time `json:"finished_at,omitempty"`
}

// MapRotationToResponse converts a domain rotation record to an API response.
func MapRotationToResponse(record *rotationDomain.RotationRecord) RotationRecordResponse {
	return RotationRecordResponse{
		ID:              record.ID,
		Path:            record.Path,
		SecretClass:     record.SecretClass,
		PreviousVersion: record.PreviousVersion,
		NewVersion:      record.NewVersion,
		State:           string(record.State),
		AdapterOutcome:  record.AdapterOutcome,
		HealthOutcome:   record.HealthOutcome,
		RequestedBy:     record.RequestedBy,
		Error:           record.Error,
		RequestedAt:     record.RequestedAt,
		StagedAt:        record.StagedAt,
		AppliedAt:       record.AppliedAt,
		VerifiedAt:      record.VerifiedAt,
		FinishedAt:      record.FinishedAt,
	}
}

// ListRotationsResponse contains a page of rotation records.
type ListRotationsResponse struct {
	Data []RotationRecordResponse `json:"data"`
}

// MapRotationsToListResponse converts domain rotation records to an API response.
func MapRotationsToListResponse(records []*rotationDomain.RotationRecord) ListRotationsResponse {
	data := make([]RotationRecordResponse, len(records))
	for i, record := range records {
		data[i] = MapRotationToResponse(record)
	}
	return ListRotationsResponse{Data: data}
}

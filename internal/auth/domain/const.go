// Package domain defines authentication and authorization domain models.
// Implements capability-based access control with roles, session tokens,
// policies, and an append-only audit log.
package domain

// Capability defines the types of operations that can be performed on resources.
// Capabilities are used in policy documents to control role authorization.
type Capability string

const (
	// ReadCapability allows reading secret data.
	ReadCapability Capability = "read"

	// WriteCapability allows creating or updating secret data.
	WriteCapability Capability = "write"

	// DeleteCapability allows soft-deleting, undeleting, and destroying secret versions.
	DeleteCapability Capability = "delete"

	// ListCapability allows listing secret paths under a prefix.
	ListCapability Capability = "list"

	// RotateCapability allows triggering credential rotations.
	RotateCapability Capability = "rotate"
)

// Outcome records the result of an audited operation.
type Outcome string

const (
	// OutcomeSuccess indicates the operation completed.
	OutcomeSuccess Outcome = "success"

	// OutcomeDenied indicates the operation was rejected by authentication or authorization.
	OutcomeDenied Outcome = "denied"

	// OutcomeFailure indicates the operation was permitted but failed.
	OutcomeFailure Outcome = "failure"
)

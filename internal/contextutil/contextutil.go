// Package contextutil provides context propagation helpers shared between the
// HTTP layer and use cases.
package contextutil

import (
	"context"

	"github.com/google/uuid"
)

// requestIDKey is a context key type for storing request identifiers.
type requestIDKey struct{}

// WithRequestID stores a request identifier in the context. Set by the HTTP
// middleware so use cases can attach the request ID to audit log entries.
func WithRequestID(ctx context.Context, requestID uuid.UUID) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// GetRequestID retrieves the request identifier from the context. Returns a
// new UUIDv7 when no request ID was set, so CLI-originated operations still
// produce audit entries with a usable correlation ID.
func GetRequestID(ctx context.Context) uuid.UUID {
	if requestID, ok := ctx.Value(requestIDKey{}).(uuid.UUID); ok {
		return requestID
	}
	return uuid.Must(uuid.NewV7())
}

package metrics

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider(t *testing.T) {
	provider, err := NewProvider("rotor")
	require.NoError(t, err)
	defer func() { _ = provider.Shutdown(context.Background()) }()

	assert.NotNil(t, provider.MeterProvider())
	assert.NotNil(t, provider.Handler())
}

func TestProviderHandlerServesMetrics(t *testing.T) {
	provider, err := NewProvider("rotor")
	require.NoError(t, err)
	defer func() { _ = provider.Shutdown(context.Background()) }()

	business, err := NewBusinessMetrics(provider.MeterProvider(), "rotor")
	require.NoError(t, err)

	ctx := context.Background()
	business.RecordOperation(ctx, "rotation", "rotate", "success")
	business.RecordDuration(ctx, "rotation", "rotate", 250*time.Millisecond, "success")
	business.RecordRotation(ctx, "database", "committed")

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/metrics", nil)
	provider.Handler().ServeHTTP(recorder, request)

	assert.Equal(t, 200, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "rotor_operations_total")
	assert.Contains(t, recorder.Body.String(), "rotor_rotations_total")
}

func TestNoOpBusinessMetrics(t *testing.T) {
	business := NewNoOpBusinessMetrics()

	// Must not panic
	ctx := context.Background()
	business.RecordOperation(ctx, "auth", "authenticate", "error")
	business.RecordDuration(ctx, "auth", "authenticate", time.Second, "error")
	business.RecordRotation(ctx, "cache", "rolled_back")
}

package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vzahanych/weather-dashboard/internal/config"
)

func TestDisabledTelemetryIsNoop(t *testing.T) {
	tele, err := New(context.Background(), config.TelemetryConfig{Enabled: false})
	require.NoError(t, err)

	assert.False(t, tele.IsEnabled())

	ctx, span := tele.GetTracer().Start(context.Background(), "test")
	assert.False(t, span.SpanContext().IsValid())
	span.End()

	tele.RecordError(errors.New("ignored"), ctx, map[string]interface{}{"city": "Prague"})
	assert.NoError(t, tele.Shutdown(context.Background()))
}

func TestNilTelemetry(t *testing.T) {
	var tele *Telemetry

	assert.False(t, tele.IsEnabled())
	assert.NotNil(t, tele.GetTracer())
}

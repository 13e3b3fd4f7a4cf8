package tracing

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func restoreGlobals(t *testing.T) {
	t.Helper()
	tp := otel.GetTracerProvider()
	prop := otel.GetTextMapPropagator()
	t.Cleanup(func() {
		otel.SetTracerProvider(tp)
		otel.SetTextMapPropagator(prop)
	})
}

func TestInitTracer_Disabled(t *testing.T) {
	restoreGlobals(t)

	shutdown, err := InitTracer(context.Background(), DefaultConfig("marketplace"))
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))

	assert.Contains(t, otel.GetTextMapPropagator().Fields(), "traceparent")
}

func TestInitTracer_Enabled(t *testing.T) {
	restoreGlobals(t)

	cfg := DefaultConfig("marketplace")
	cfg.Enabled = true
	cfg.OTLPEndpoint = "127.0.0.1:0"
	cfg.SampleRate = 0.5

	shutdown, err := InitTracer(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = shutdown(context.Background()) })

	_, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider)
	assert.True(t, ok, "global provider should be the SDK provider")
}

func TestSampler(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1, "AlwaysOnSampler"},
		{7, "AlwaysOnSampler"},
		{0, "AlwaysOffSampler"},
		{-1, "AlwaysOffSampler"},
		{0.25, "TraceIDRatioBased{0.25}"},
	}

	for _, tt := range tests {
		assert.True(t, strings.HasPrefix(Sampler(tt.rate).Description(), "ParentBased{root:"+tt.want), "rate %v", tt.rate)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("marketplace")
	assert.Equal(t, "marketplace", cfg.ServiceName)
	assert.False(t, cfg.Enabled)
	assert.Equal(t, 1.0, cfg.SampleRate)
	assert.Equal(t, "localhost:4318", cfg.OTLPEndpoint)
}

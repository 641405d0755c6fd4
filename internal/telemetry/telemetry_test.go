package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Isira-Kodikara/Kango-bus-app-sub000/internal/telemetry"
)

func TestInit_Disabled(t *testing.T) {
	ctx := context.Background()

	provider, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    "kango-api",
		ServiceVersion: "1.0.0",
		Environment:    "test",
		OTLPEndpoint:   "localhost:4317",
		Enabled:        false,
	})

	require.NoError(t, err)
	assert.NotNil(t, provider)
	assert.NotNil(t, provider.Tracer)
	assert.NotNil(t, provider.Meter)

	// Noop provider should have nil TracerProvider and MeterProvider
	assert.Nil(t, provider.TracerProvider)
	assert.Nil(t, provider.MeterProvider)

	// Shutdown should not error
	err = provider.Shutdown(ctx)
	assert.NoError(t, err)
}

func TestProvider_Shutdown_NilProviders(t *testing.T) {
	provider := &telemetry.Provider{}
	err := provider.Shutdown(context.Background())
	assert.NoError(t, err)
}

func TestTracer_ReturnsGlobalTracer(t *testing.T) {
	tracer := telemetry.Tracer("test-tracer")
	assert.NotNil(t, tracer)
}

func TestMeter_ReturnsGlobalMeter(t *testing.T) {
	meter := telemetry.Meter("test-meter")
	assert.NotNil(t, meter)
}

func TestInit_InvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     telemetry.Config
		wantMsg string
	}{
		{
			name:    "missing endpoint",
			cfg:     telemetry.Config{ServiceName: "kango-api", Enabled: true},
			wantMsg: "OTLP endpoint is required",
		},
		{
			name:    "missing service name",
			cfg:     telemetry.Config{OTLPEndpoint: "localhost:4317", Enabled: true},
			wantMsg: "service name is required",
		},
		{
			name:    "sample ratio above one",
			cfg:     telemetry.Config{ServiceName: "kango-api", OTLPEndpoint: "localhost:4317", Enabled: true, SampleRatio: 1.5},
			wantMsg: "sample ratio 1.5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := telemetry.Init(context.Background(), tt.cfg)

			require.Error(t, err)
			assert.Nil(t, provider)
			assert.ErrorIs(t, err, telemetry.ErrInvalidConfig)
			assert.Contains(t, err.Error(), "init telemetry")
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestInit_DisabledSkipsValidation(t *testing.T) {
	provider, err := telemetry.Init(context.Background(), telemetry.Config{})
	require.NoError(t, err)
	assert.NoError(t, provider.Shutdown(context.Background()))
}

func TestConfig_Validate_ReportsEveryProblem(t *testing.T) {
	err := telemetry.Config{SampleRatio: -1}.Validate()

	require.Error(t, err)
	assert.True(t, errors.Is(err, telemetry.ErrInvalidConfig))
	assert.Contains(t, err.Error(), "service name is required")
	assert.Contains(t, err.Error(), "OTLP endpoint is required")
	assert.Contains(t, err.Error(), "sample ratio -1")
}

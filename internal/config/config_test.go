package config

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PLANNER_TIMEZONE", "UTC")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 1.4, cfg.Planner.WalkingSpeedMPS)
	assert.Equal(t, 3, cfg.Planner.NearestStopLimit)
	assert.Equal(t, 20.0, cfg.Planner.SearchRadiusKm)
	assert.Equal(t, 2.0, cfg.Planner.SafetyBufferMinutes)
	assert.Equal(t, 3, cfg.Planner.MaxETACandidates)
	assert.Equal(t, 3*time.Second, cfg.DirectionsTimeout)
	assert.Equal(t, time.UTC, cfg.Planner.Location)
	assert.Equal(t, "journey-plans", cfg.PubSubTopic)
}

func TestLoad_DefaultTimeZone(t *testing.T) {
	t.Setenv("PLANNER_TIMEZONE", "")

	cfg, err := Load()
	require.NoError(t, err)

	require.NotNil(t, cfg.Planner.Location)
	assert.Equal(t, "Asia/Colombo", cfg.Planner.Location.String())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PLANNER_TIMEZONE", "UTC")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("APP_ENV", "Production")
	t.Setenv("OTEL_ENABLED", "yes")
	t.Setenv("PLANNER_SEARCH_RADIUS_KM", "15.5")
	t.Setenv("PLANNER_NEAREST_STOP_LIMIT", "5")
	t.Setenv("DIRECTIONS_TIMEOUT", "750ms")
	t.Setenv("REDIS_ADDR", "redis:6379")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.True(t, cfg.TelemetryEnabled)
	assert.Equal(t, 15.5, cfg.Planner.SearchRadiusKm)
	assert.Equal(t, 5, cfg.Planner.NearestStopLimit)
	assert.Equal(t, 750*time.Millisecond, cfg.DirectionsTimeout)
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
}

func TestLoad_ZeroSafetyBuffer(t *testing.T) {
	t.Setenv("PLANNER_TIMEZONE", "UTC")
	t.Setenv("PLANNER_SAFETY_BUFFER_MINUTES", "0")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Zero(t, cfg.Planner.SafetyBufferMinutes)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"PLANNER_WALKING_SPEED_MPS", "fast"},
		{"PLANNER_WALKING_SPEED_MPS", "0"},
		{"PLANNER_NEAREST_STOP_LIMIT", "0"},
		{"PLANNER_SEARCH_RADIUS_KM", "-1"},
		{"PLANNER_SAFETY_BUFFER_MINUTES", "-0.5"},
		{"DIRECTIONS_TIMEOUT", "soon"},
		{"RATE_LIMIT_PER_MINUTE", "0"},
		{"PLANNER_TIMEZONE", "Mars/Olympus_Mons"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv("PLANNER_TIMEZONE", "UTC")
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Isira-Kodikara/Kango-bus-app-sub000/internal/api/models"
)

func TestRoundMinutes(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{35.4, 35.4},
		{8.04, 8.0},
		{5.6000000001, 5.6},
		{12.25, 12.3},
		{0, 0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, models.RoundMinutes(tt.in), 1e-9, "RoundMinutes(%v)", tt.in)
	}
}

func TestTimestamp_RoundTrip(t *testing.T) {
	loc := time.FixedZone("+0530", 5*3600+1800)
	ts := models.Timestamp(time.Date(2024, 3, 12, 8, 15, 0, 0, loc))

	data, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-12T08:15:00+05:30"`, string(data))

	var back models.Timestamp
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.Time().Equal(ts.Time()))
}

func TestTimestamp_UnmarshalRejectsUnquoted(t *testing.T) {
	var ts models.Timestamp
	assert.Error(t, json.Unmarshal([]byte(`12345`), &ts))
	assert.NoError(t, json.Unmarshal([]byte(`null`), &ts))
}

func TestNextBusResponse_OmitsBusWhenNoneUpcoming(t *testing.T) {
	data, err := json.Marshal(models.NextBusResponse{Upcoming: false})
	require.NoError(t, err)
	assert.JSONEq(t, `{"upcoming": false}`, string(data))
}

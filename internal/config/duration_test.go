package config

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"0ms", 0},
		{"500ms", 500 * time.Millisecond},
		{"1000", time.Second}, // bare number is milliseconds
		{"1s", time.Second},
		{"2s", 2 * time.Second},
		{"5m", 5 * time.Minute},
		{"5S", 5 * time.Second},  // case-insensitive
		{" 2m ", 2 * time.Minute}, // whitespace trimmed
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDuration(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Std())
		})
	}
}

func TestParseDurationErrors(t *testing.T) {
	for _, in := range []string{"", "abc", "1000x", "-1000ms", "-5s", "1.5s", "ms", "99999999999999m", "99999999999999999999s"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseDuration(in)
			assert.Error(t, err)
		})
	}
}

func TestDurationString(t *testing.T) {
	tests := []struct {
		in   Duration
		want string
	}{
		{Duration(250 * time.Millisecond), "250ms"},
		{Duration(1500 * time.Millisecond), "1500ms"},
		{Duration(time.Second), "1s"},
		{Duration(30 * time.Second), "30s"},
		{Duration(90 * time.Second), "90s"},
		{Duration(time.Minute), "1m"},
		{Duration(5 * time.Minute), "5m"},
		{Duration(0), "0ms"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.in.String())
	}
}

// Canonical forms survive a parse/format round trip.
func TestDurationRoundTrip(t *testing.T) {
	for _, canonical := range []string{"1ms", "750ms", "1500ms", "1s", "30s", "90s", "1m", "5m"} {
		t.Run(canonical, func(t *testing.T) {
			d, err := ParseDuration(canonical)
			require.NoError(t, err)
			assert.Equal(t, canonical, d.String())
		})
	}
}

func TestDurationJSON(t *testing.T) {
	var d Duration

	require.NoError(t, json.Unmarshal([]byte(`"2s"`), &d))
	assert.Equal(t, 2*time.Second, d.Std())

	require.NoError(t, json.Unmarshal([]byte(`1500`), &d))
	assert.Equal(t, 1500*time.Millisecond, d.Std())

	assert.Error(t, json.Unmarshal([]byte(`"1h"`), &d))
	assert.Error(t, json.Unmarshal([]byte(`-100`), &d))
	assert.Error(t, json.Unmarshal([]byte(`true`), &d))
	assert.Error(t, json.Unmarshal([]byte(`1e30`), &d))

	out, err := json.Marshal(Duration(2 * time.Second))
	require.NoError(t, err)
	assert.Equal(t, `"2s"`, string(out))
}

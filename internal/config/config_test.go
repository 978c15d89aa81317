package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromViper_LayersOverridesOverDefaults(t *testing.T) {
	v := NewEmptyViper()
	v.Set("detector.brand", "example")
	cfg := NewFromViper(v)

	assert.Equal(t, "example", cfg.GetString("detector.brand"))
	assert.Equal(t, 0.85, cfg.GetFloat64("detector.similarity_threshold"))
	assert.Equal(t, 5, cfg.GetInt("detector.burst_threshold"))
	assert.Equal(t, []string{"gibthub.com"}, cfg.GetStringSlice("blocklist.pending"))
	assert.True(t, cfg.GetBool("metrics.enabled"))
}

func TestGetDuration(t *testing.T) {
	cfg := NewFromViper(NewEmptyViper())

	window, err := cfg.GetDuration("detector.burst_window")
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, window)

	cfg.GetViper().Set("detector.burst_window", "soon")
	_, err = cfg.GetDuration("detector.burst_window")
	assert.Error(t, err)
}

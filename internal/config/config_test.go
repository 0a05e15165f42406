package config

import (
	"testing"
	"time"

	"github.com/abelzeko/water-alert/internal/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "exponential", cfg.Prediction.Model)
	assert.Equal(t, 168*time.Hour, cfg.Prediction.Window)
	assert.Equal(t, 10*time.Second, cfg.Delivery.Timeout)
	assert.Equal(t, "0 * * * *", cfg.Ingest.Schedule)
	assert.Equal(t, map[string]float64{"Varanasi": 72, "Haridwar": 293, "Prayagraj": 84}, cfg.DangerLevels)
	assert.False(t, cfg.Email.Enabled())

	th, err := cfg.Thresholds()
	require.NoError(t, err)
	loc, err := th.Lookup("varanasi")
	require.NoError(t, err)
	assert.Equal(t, 72.0, loc.DangerLevel)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DANGER_LEVELS", "Patna:48.5,Varanasi:70")
	t.Setenv("PREDICTION_MODEL", "linear")
	t.Setenv("DELIVERY_TIMEOUT", "3s")
	t.Setenv("INGEST_SOURCES", "Patna=https://gauges.example.org/patna?period=7; Varanasi=http://localhost:9000/v")
	t.Setenv("EMAIL_USER", "alerts@example.com")
	t.Setenv("EMAIL_PASS", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, map[string]float64{"Patna": 48.5, "Varanasi": 70}, cfg.DangerLevels)
	assert.Equal(t, "linear", cfg.Prediction.Model)
	assert.Equal(t, 3*time.Second, cfg.Delivery.Timeout)
	assert.True(t, cfg.Email.Enabled())
	assert.Equal(t, SourceList{
		{Location: "Patna", URL: "https://gauges.example.org/patna?period=7"},
		{Location: "Varanasi", URL: "http://localhost:9000/v"},
	}, cfg.Ingest.Sources)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string][2]string{
		"unknown model":      {"PREDICTION_MODEL", "arima"},
		"non-positive level": {"DANGER_LEVELS", "Varanasi:0"},
		"bad source":         {"INGEST_SOURCES", "Varanasi"},
		"bad log level":      {"LOG_LEVEL", "verbose"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestThresholdsRejectDuplicateCase(t *testing.T) {
	cfg := &Config{DangerLevels: map[string]float64{"Varanasi": 72, "VARANASI": 70}}
	_, err := cfg.Thresholds()
	assert.Error(t, err)

	cfg = &Config{DangerLevels: map[string]float64{"Varanasi": 72}}
	th, err := cfg.Thresholds()
	require.NoError(t, err)
	_, err = th.Lookup("Patna")
	assert.ErrorIs(t, err, entities.ErrUnknownLocation)
}

package usecases

import (
	"strings"
	"testing"
	"time"

	"github.com/abelzeko/water-alert/internal/entities"
	"github.com/stretchr/testify/assert"
)

func TestFormatPrediction(t *testing.T) {
	now := t0
	later := t0.Add(3 * time.Hour)
	earlier := t0.Add(-2 * time.Hour)

	tests := []struct {
		name   string
		model  string
		result entities.PredictionResult
		want   []string
	}{
		{"constant", "exponential", entities.Constant(), []string{"constant"}},
		{"rising", "exponential", entities.Rising(), []string{"rising", "not applicable"}},
		{"already safe exponential", "exponential", entities.AlreadySafe(), []string{"already below danger"}},
		{"already safe linear", "linear", entities.AlreadySafe(), []string{"decreasing", "No danger expected"}},
		{"recession", "exponential", entities.CrossingAt(later), []string{"fall below danger", "2025-07-14 09:00 UTC", "3 hours from now"}},
		{"rise", "linear", entities.CrossingAt(later), []string{"reach danger", "3 hours from now"}},
		{"exceeded", "linear", entities.Exceeded(earlier), []string{"exceeded danger since", "2 hours ago"}},
		{"error", "exponential", entities.PredictionFailed("insufficient data"), []string{"unavailable", "insufficient data"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatPrediction(tt.model, "Varanasi", tt.result, now)
			assert.Contains(t, got, "Varanasi")
			for _, w := range tt.want {
				assert.Contains(t, got, w)
			}
		})
	}
}

func TestFormatStatus(t *testing.T) {
	f := newFixture(t, nil)

	st := LocationStatus{
		Location:   entities.Location{Name: "Varanasi", DangerLevel: 80},
		Latest:     entities.Reading{Location: "Varanasi", Timestamp: t0, Level: 85.5},
		HasReading: true,
		Status:     entities.StatusDanger,
		Prediction: entities.Rising(),
	}
	out := f.uc.FormatStatus(st)
	assert.Contains(t, out, "📍 Varanasi")
	assert.Contains(t, out, "85.5 cm 🔴 Danger")
	assert.Contains(t, out, "Danger Level: 80 cm")
	assert.Contains(t, out, "rising")

	out = f.uc.FormatStatus(LocationStatus{Location: entities.Location{Name: "Haridwar", DangerLevel: 293}, Prediction: entities.PredictionFailed("insufficient data")})
	assert.Contains(t, out, "no readings yet")

	assert.Equal(t, "No locations are configured.", f.uc.FormatOverview(nil))
	assert.True(t, strings.HasPrefix(f.uc.FormatDangerLevels(), "Configured danger levels:"))
	assert.Contains(t, f.uc.FormatDangerLevels(), "Haridwar: 293 cm")
}

func TestRenderChart(t *testing.T) {
	assert.Empty(t, RenderChart(entities.Series{{Timestamp: t0, Level: 90}}, 80))

	series := entities.Series{
		{Timestamp: t0, Level: 90},
		{Timestamp: t0.Add(time.Hour), Level: 81},
		{Timestamp: t0.Add(2 * time.Hour), Level: 72.9},
	}
	chart := RenderChart(series, 80)
	assert.Contains(t, chart, "danger 80")
	assert.Greater(t, strings.Count(chart, "\n"), 3)
}

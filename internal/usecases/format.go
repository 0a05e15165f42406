package usecases

import (
	"fmt"
	"strings"
	"time"

	"github.com/abelzeko/water-alert/internal/entities"
	"github.com/abelzeko/water-alert/internal/prediction"
	"github.com/dustin/go-humanize"
	"github.com/guptarohit/asciigraph"
)

// DisplayTimeLayout is used for timestamps shown to users
const DisplayTimeLayout = "2006-01-02 15:04 MST"

const (
	chartHeight = 8
	chartWidth  = 48
)

// FormatPrediction renders a prediction result for display. The meaning of
// a crossing depends on the model: the exponential model predicts when the
// level falls back under the danger level, the linear one when it rises
// above it.
func (uc *MonitorUseCase) FormatPrediction(location string, result entities.PredictionResult) string {
	return formatPrediction(uc.ModelName(), location, result, uc.now())
}

func formatPrediction(model, location string, result entities.PredictionResult, now time.Time) string {
	switch result.Kind {
	case entities.PredictionConstant:
		return fmt.Sprintf("Water level at %s is constant.", location)
	case entities.PredictionRising:
		return fmt.Sprintf("Water level at %s is rising. Recession model not applicable.", location)
	case entities.PredictionAlreadySafe:
		if model == prediction.ModelLinear {
			return fmt.Sprintf("Water level at %s is decreasing. No danger expected.", location)
		}
		return fmt.Sprintf("Water level at %s is already below danger.", location)
	case entities.PredictionCrossingAt:
		when := fmt.Sprintf("%s (%s)", result.At.Format(DisplayTimeLayout), humanize.RelTime(result.At, now, "ago", "from now"))
		if model == prediction.ModelLinear {
			return fmt.Sprintf("Water level at %s is expected to reach danger at %s.", location, when)
		}
		return fmt.Sprintf("Water level at %s is expected to fall below danger at %s.", location, when)
	case entities.PredictionExceeded:
		return fmt.Sprintf("Water level at %s has exceeded danger since %s (%s).",
			location, result.At.Format(DisplayTimeLayout), humanize.RelTime(result.At, now, "ago", "from now"))
	default:
		return fmt.Sprintf("Prediction for %s unavailable: %s.", location, result.Reason)
	}
}

// FormatStatus formats the status of one location for display
func (uc *MonitorUseCase) FormatStatus(st LocationStatus) string {
	var b strings.Builder

	marker := "🟢"
	if st.Status == entities.StatusDanger {
		marker = "🔴"
	}

	b.WriteString(fmt.Sprintf("📍 %s\n", st.Location.Name))
	if st.HasReading {
		b.WriteString(fmt.Sprintf("💧 Water Level: %s cm %s %s\n", humanize.Ftoa(st.Latest.Level), marker, st.Status))
		b.WriteString(fmt.Sprintf("🕒 Last update: %s (%s)\n",
			st.Latest.Timestamp.Format(DisplayTimeLayout), humanize.RelTime(st.Latest.Timestamp, uc.now(), "ago", "from now")))
	} else {
		b.WriteString("💧 Water Level: no readings yet\n")
	}
	b.WriteString(fmt.Sprintf("⚠️ Danger Level: %s cm\n", humanize.Ftoa(st.Location.DangerLevel)))
	b.WriteString("📈 " + uc.FormatPrediction(st.Location.Name, st.Prediction))

	return b.String()
}

// FormatOverview formats the status of several locations
func (uc *MonitorUseCase) FormatOverview(statuses []LocationStatus) string {
	if len(statuses) == 0 {
		return "No locations are configured."
	}
	parts := make([]string, 0, len(statuses))
	for _, st := range statuses {
		parts = append(parts, uc.FormatStatus(st))
	}
	return strings.Join(parts, "\n\n")
}

// RenderChart draws the series as a text chart with the danger level as
// caption. It returns "" for fewer than two readings.
func RenderChart(series entities.Series, dangerLevel float64) string {
	if len(series) < 2 {
		return ""
	}
	return asciigraph.Plot(series.Levels(),
		asciigraph.Height(chartHeight),
		asciigraph.Width(chartWidth),
		asciigraph.Precision(1),
		asciigraph.Caption(fmt.Sprintf("level, cm (danger %s)", humanize.Ftoa(dangerLevel))),
	)
}

// FormatDangerLevels lists the configured thresholds
func (uc *MonitorUseCase) FormatDangerLevels() string {
	var b strings.Builder
	b.WriteString("Configured danger levels:\n")
	for _, loc := range uc.DangerLevels() {
		b.WriteString(fmt.Sprintf("• %s: %s cm\n", loc.Name, humanize.Ftoa(loc.DangerLevel)))
	}
	return strings.TrimRight(b.String(), "\n")
}

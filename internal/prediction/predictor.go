// Package prediction fits trend models to a reading series and estimates
// when the water level crosses a location's danger level.
package prediction

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/abelzeko/water-alert/internal/entities"
)

// Model names accepted by New
const (
	ModelExponential = "exponential"
	ModelLinear      = "linear"
)

// Stable reasons carried by error results. They are shown to users as-is.
const (
	ReasonInsufficientData = "insufficient data"
	ReasonNonPositiveLevel = "non-positive level"
	ReasonPredictionError  = "prediction error"
)

// maxHorizonHours keeps crossing offsets inside time.Duration range
const maxHorizonHours = 1_000_000

// Predictor fits a trend to a series and derives a threshold crossing.
// Implementations never panic; every failure is an error result.
type Predictor interface {
	Name() string
	Predict(series entities.Series, dangerLevel float64) entities.PredictionResult
}

// New returns the predictor registered under name
func New(name string) (Predictor, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", ModelExponential:
		return Exponential{}, nil
	case ModelLinear:
		return Linear{}, nil
	}
	return nil, fmt.Errorf("unknown prediction model %q", name)
}

// axes converts a series to hours since the first reading and levels
func axes(series entities.Series) (hours, levels []float64) {
	start := series[0].Timestamp
	hours = make([]float64, len(series))
	levels = make([]float64, len(series))
	for i, r := range series {
		hours[i] = r.Timestamp.Sub(start).Hours()
		levels[i] = r.Level
	}
	return hours, levels
}

func isConstant(levels []float64) bool {
	for _, l := range levels[1:] {
		if l != levels[0] {
			return false
		}
	}
	return true
}

// offset turns an hour count into an instant relative to start
func offset(start time.Time, hours float64) (time.Time, bool) {
	if math.IsNaN(hours) || math.IsInf(hours, 0) || math.Abs(hours) > maxHorizonHours {
		return time.Time{}, false
	}
	return start.Add(time.Duration(hours * float64(time.Hour))), true
}

// guard converts a panic inside a model into an error result
func guard(result *entities.PredictionResult) {
	if r := recover(); r != nil {
		*result = entities.PredictionFailed(ReasonPredictionError)
	}
}

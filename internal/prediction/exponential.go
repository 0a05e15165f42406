package prediction

import (
	"math"

	"github.com/abelzeko/water-alert/internal/entities"
)

// minDecayRate is the smallest per-hour decay treated as a real recession
const minDecayRate = 1e-12

// Exponential models a recession: level(t) = Q0 * exp(-k*t) with t in hours
// since the first reading. A series that ends higher than it starts is not a
// recession and is reported as Rising rather than fitted.
type Exponential struct{}

// Name returns the model name accepted by New
func (Exponential) Name() string { return ModelExponential }

// Predict fits ln(level) against hours and solves Q0*exp(-k*t) = dangerLevel.
// Levels must be positive once the series is known to be falling.
func (Exponential) Predict(series entities.Series, dangerLevel float64) (result entities.PredictionResult) {
	defer guard(&result)

	if len(series) == 0 {
		return entities.PredictionFailed(ReasonInsufficientData)
	}

	hours, levels := axes(series)
	if isConstant(levels) {
		return entities.Constant()
	}
	if levels[len(levels)-1] > levels[0] {
		return entities.Rising()
	}

	logLevels := make([]float64, len(levels))
	for i, l := range levels {
		if !(l > 0) || math.IsInf(l, 0) {
			return entities.PredictionFailed(ReasonNonPositiveLevel)
		}
		logLevels[i] = math.Log(l)
	}

	slope, logQ0, err := fitLine(hours, logLevels)
	if err != nil {
		return entities.PredictionFailed(ReasonPredictionError)
	}
	q0 := math.Exp(logQ0)

	if dangerLevel >= q0 {
		return entities.AlreadySafe()
	}

	k := -slope
	if math.Abs(k) < minDecayRate {
		return entities.PredictionFailed(ReasonPredictionError)
	}

	t := -math.Log(dangerLevel/q0) / k
	at, ok := offset(series[0].Timestamp, t)
	if !ok {
		return entities.PredictionFailed(ReasonPredictionError)
	}
	return entities.CrossingAt(at)
}

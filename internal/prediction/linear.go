package prediction

import (
	"github.com/abelzeko/water-alert/internal/entities"
)

// Linear fits level(t) = m*t + c and projects when the line reaches the
// danger level. A flat or falling line never reaches it.
type Linear struct{}

// Name returns the model name accepted by New
func (Linear) Name() string { return ModelLinear }

// Predict fits a line to the series. A crossing at or before the last
// reading is reported as Exceeded, a later one as CrossingAt.
func (Linear) Predict(series entities.Series, dangerLevel float64) (result entities.PredictionResult) {
	defer guard(&result)

	if len(series) == 0 {
		return entities.PredictionFailed(ReasonInsufficientData)
	}

	hours, levels := axes(series)
	if isConstant(levels) {
		return entities.Constant()
	}

	m, c, err := fitLine(hours, levels)
	if err != nil {
		return entities.PredictionFailed(ReasonPredictionError)
	}
	if m <= 0 {
		return entities.AlreadySafe()
	}

	h := (dangerLevel - c) / m
	at, ok := offset(series[0].Timestamp, h)
	if !ok {
		return entities.PredictionFailed(ReasonPredictionError)
	}
	if h <= hours[len(hours)-1] {
		return entities.Exceeded(at)
	}
	return entities.CrossingAt(at)
}

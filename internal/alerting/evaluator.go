package alerting

import (
	"github.com/abelzeko/water-alert/internal/entities"
)

// Evaluator compares observed levels with configured danger levels
type Evaluator struct {
	thresholds *entities.Thresholds
}

// NewEvaluator creates an evaluator over a static threshold table
func NewEvaluator(thresholds *entities.Thresholds) *Evaluator {
	return &Evaluator{thresholds: thresholds}
}

// Evaluate returns Danger when level is at or above the location's danger
// level. The comparison is exact: a reading equal to the threshold is Danger.
func (e *Evaluator) Evaluate(location string, level float64) (entities.Status, error) {
	loc, err := e.thresholds.Lookup(location)
	if err != nil {
		return "", err
	}
	if level >= loc.DangerLevel {
		return entities.StatusDanger, nil
	}
	return entities.StatusSafe, nil
}

// Thresholds exposes the table the evaluator was built with
func (e *Evaluator) Thresholds() *entities.Thresholds {
	return e.thresholds
}

package prediction

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"
)

var errDegenerateFit = errors.New("degenerate fit")

// fitLine returns the ordinary least squares slope and intercept of y over x.
// All x equal or a non-finite result is a degenerate fit.
func fitLine(x, y []float64) (slope, intercept float64, err error) {
	if len(x) < 2 || len(x) != len(y) || isConstant(x) {
		return 0, 0, errDegenerateFit
	}

	intercept, slope = stat.LinearRegression(x, y, nil, false)
	if math.IsNaN(slope) || math.IsInf(slope, 0) || math.IsNaN(intercept) || math.IsInf(intercept, 0) {
		return 0, 0, errDegenerateFit
	}
	return slope, intercept, nil
}

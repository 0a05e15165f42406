package alerting

import (
	"math"
	"testing"

	"github.com/abelzeko/water-alert/internal/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateBoundaryIsDanger(t *testing.T) {
	e := NewEvaluator(testThresholds(t))

	for _, loc := range e.Thresholds().Locations() {
		status, err := e.Evaluate(loc.Name, loc.DangerLevel)
		require.NoError(t, err)
		assert.Equal(t, entities.StatusDanger, status, loc.Name)

		for _, eps := range []float64{1e-9, 0.01, 1, 50} {
			status, err = e.Evaluate(loc.Name, loc.DangerLevel-eps)
			require.NoError(t, err)
			assert.Equal(t, entities.StatusSafe, status, "%s minus %v", loc.Name, eps)
		}

		below := math.Nextafter(loc.DangerLevel, 0)
		status, err = e.Evaluate(loc.Name, below)
		require.NoError(t, err)
		assert.Equal(t, entities.StatusSafe, status)
	}
}

func TestEvaluateIgnoresCase(t *testing.T) {
	e := NewEvaluator(testThresholds(t))

	status, err := e.Evaluate("  VARANASI ", 75)
	require.NoError(t, err)
	assert.Equal(t, entities.StatusDanger, status)

	status, err = e.Evaluate("haridwar", 290)
	require.NoError(t, err)
	assert.Equal(t, entities.StatusSafe, status)
}

func TestEvaluateUnknownLocation(t *testing.T) {
	e := NewEvaluator(testThresholds(t))

	_, err := e.Evaluate("Patna", 100)
	assert.ErrorIs(t, err, entities.ErrUnknownLocation)
}

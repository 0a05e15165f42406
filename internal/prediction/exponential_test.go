package prediction

import (
	"math"
	"testing"
	"time"

	"github.com/abelzeko/water-alert/internal/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, time.July, 14, 6, 0, 0, 0, time.UTC)

// hourly builds a series with one reading per hour starting at t0
func hourly(levels ...float64) entities.Series {
	series := make(entities.Series, len(levels))
	for i, l := range levels {
		series[i] = entities.Reading{
			Location:  "Varanasi",
			Timestamp: t0.Add(time.Duration(i) * time.Hour),
			Level:     l,
		}
	}
	return series
}

func TestExponentialConstant(t *testing.T) {
	for _, series := range []entities.Series{
		hourly(75),
		hourly(75, 75),
		hourly(60, 60, 60, 60, 60),
	} {
		got := Exponential{}.Predict(series, 80)
		assert.Equal(t, entities.PredictionConstant, got.Kind)
	}
}

func TestExponentialRising(t *testing.T) {
	got := Exponential{}.Predict(hourly(70, 65, 71), 80)
	assert.Equal(t, entities.PredictionRising, got.Kind)

	got = Exponential{}.Predict(hourly(50, 90), 80)
	assert.Equal(t, entities.PredictionRising, got.Kind)
}

func TestExponentialNonPositiveLevel(t *testing.T) {
	for _, series := range []entities.Series{
		hourly(90, 0, 10),
		hourly(90, -5, 30),
		hourly(90, 40, math.NaN()),
	} {
		var got entities.PredictionResult
		require.NotPanics(t, func() {
			got = Exponential{}.Predict(series, 80)
		})
		assert.Equal(t, entities.PredictionError, got.Kind)
	}
	assert.Equal(t, ReasonNonPositiveLevel, Exponential{}.Predict(hourly(90, 0), 80).Reason)
}

// The rising check runs before the log-domain check, so a net-rising
// series reports Rising even when it holds a non-positive level.
func TestExponentialRisingWinsOverNonPositiveLevel(t *testing.T) {
	got := Exponential{}.Predict(hourly(-5, 10), 80)
	assert.Equal(t, entities.PredictionRising, got.Kind)

	got = Exponential{}.Predict(hourly(0, 3, 20), 80)
	assert.Equal(t, entities.PredictionRising, got.Kind)
}

func TestExponentialEmptySeries(t *testing.T) {
	got := Exponential{}.Predict(nil, 80)
	assert.Equal(t, entities.PredictionError, got.Kind)
	assert.Equal(t, ReasonInsufficientData, got.Reason)
}

func TestExponentialAlreadySafe(t *testing.T) {
	got := Exponential{}.Predict(hourly(90, 81, 72.9), 95)
	assert.Equal(t, entities.PredictionAlreadySafe, got.Kind)

	got = Exponential{}.Predict(hourly(64, 32, 16), 70)
	assert.Equal(t, entities.PredictionAlreadySafe, got.Kind)
}

func TestExponentialRecessionScenario(t *testing.T) {
	got := Exponential{}.Predict(hourly(90, 81, 72.9), 80)

	require.Equal(t, entities.PredictionCrossingAt, got.Kind)
	assert.True(t, got.At.After(t0.Add(time.Hour)), "crossing %v should be after t0+1h", got.At)
	assert.True(t, got.At.Before(t0.Add(2*time.Hour)), "crossing %v should be before t0+2h", got.At)

	want := math.Log(80.0/90.0) / math.Log(0.9)
	assert.InEpsilon(t, want, got.At.Sub(t0).Hours(), 1e-6)
}

func TestExponentialMatchesAnalyticCrossing(t *testing.T) {
	cases := []struct {
		q0, rate, threshold float64
		points              int
	}{
		{q0: 150, rate: 0.05, threshold: 100, points: 24},
		{q0: 320, rate: 0.01, threshold: 293, points: 168},
		{q0: 95, rate: 0.2, threshold: 72, points: 6},
	}

	for _, tc := range cases {
		levels := make([]float64, tc.points)
		for i := range levels {
			levels[i] = tc.q0 * math.Exp(-tc.rate*float64(i))
		}

		got := Exponential{}.Predict(hourly(levels...), tc.threshold)
		require.Equal(t, entities.PredictionCrossingAt, got.Kind)

		want := -math.Log(tc.threshold/tc.q0) / tc.rate
		assert.InEpsilon(t, want, got.At.Sub(t0).Hours(), 1e-6)
	}
}

func TestExponentialDegenerateTimestamps(t *testing.T) {
	series := entities.Series{
		{Timestamp: t0, Level: 90},
		{Timestamp: t0, Level: 80},
	}
	got := Exponential{}.Predict(series, 50)
	assert.Equal(t, entities.PredictionError, got.Kind)
	assert.Equal(t, ReasonPredictionError, got.Reason)
}

func TestExponentialNoDecay(t *testing.T) {
	// first and last equal with a dip in between: fitted slope is zero
	got := Exponential{}.Predict(hourly(90, 80, 90), 50)
	assert.Equal(t, entities.PredictionError, got.Kind)
}

func TestNew(t *testing.T) {
	p, err := New("")
	require.NoError(t, err)
	assert.Equal(t, ModelExponential, p.Name())

	p, err = New(" Linear ")
	require.NoError(t, err)
	assert.Equal(t, ModelLinear, p.Name())

	_, err = New("arima")
	assert.Error(t, err)
}

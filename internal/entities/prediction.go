package entities

import (
	"errors"
	"time"
)

// PredictionKind tags the variant held by a PredictionResult
type PredictionKind int

const (
	PredictionConstant    PredictionKind = iota // every level is the same
	PredictionRising                            // series rose, recession model not applicable
	PredictionAlreadySafe                       // fitted baseline already under the danger level
	PredictionCrossingAt                        // level crosses the danger level at At
	PredictionExceeded                          // linear model: danger level was crossed at At
	PredictionError                             // fit failed, see Reason
)

func (k PredictionKind) String() string {
	switch k {
	case PredictionConstant:
		return "constant"
	case PredictionRising:
		return "rising"
	case PredictionAlreadySafe:
		return "already_safe"
	case PredictionCrossingAt:
		return "crossing_at"
	case PredictionExceeded:
		return "exceeded"
	case PredictionError:
		return "error"
	}
	return "unknown"
}

// PredictionResult is the verdict of a trend model
type PredictionResult struct {
	Kind   PredictionKind
	At     time.Time // set for PredictionCrossingAt and PredictionExceeded
	Reason string    // set for PredictionError
}

// Result constructors, one per kind
func Constant() PredictionResult    { return PredictionResult{Kind: PredictionConstant} }
func Rising() PredictionResult      { return PredictionResult{Kind: PredictionRising} }
func AlreadySafe() PredictionResult { return PredictionResult{Kind: PredictionAlreadySafe} }

// CrossingAt reports a future crossing at the given instant
func CrossingAt(at time.Time) PredictionResult {
	return PredictionResult{Kind: PredictionCrossingAt, At: at}
}

// Exceeded reports a crossing at or before the last reading
func Exceeded(at time.Time) PredictionResult {
	return PredictionResult{Kind: PredictionExceeded, At: at}
}

// PredictionFailed reports an error result with a user facing reason
func PredictionFailed(reason string) PredictionResult {
	return PredictionResult{Kind: PredictionError, Reason: reason}
}

// Err maps an error result to its sentinel error. It returns nil for every
// other kind.
func (p PredictionResult) Err() error {
	if p.Kind != PredictionError {
		return nil
	}
	switch p.Reason {
	case ErrInsufficientData.Error():
		return ErrInsufficientData
	case ErrNonPositiveLevel.Error():
		return ErrNonPositiveLevel
	}
	return errors.New(p.Reason)
}

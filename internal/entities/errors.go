package entities

import "errors"

var (
	// ErrUnknownLocation is returned when a location has no configured danger level
	ErrUnknownLocation = errors.New("unknown location")
	// ErrInsufficientData marks a trend fit requested on too few readings
	ErrInsufficientData = errors.New("insufficient data")
	// ErrNonPositiveLevel marks a level the exponential model cannot take the log of
	ErrNonPositiveLevel = errors.New("non-positive level")
	// ErrNonFiniteLevel is returned for a NaN or infinite water level
	ErrNonFiniteLevel = errors.New("level is not a finite number")
	// ErrDeliveryFailure wraps a failed notification attempt
	ErrDeliveryFailure = errors.New("delivery failure")
	// ErrPersistenceFailure wraps a failed append to a durable log
	ErrPersistenceFailure = errors.New("persistence failure")
	// ErrOutOfOrderReading is returned when a reading is older than the stored series
	ErrOutOfOrderReading = errors.New("reading older than latest stored reading")
)

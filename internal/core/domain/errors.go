package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the not-found family. Callers wrap these with the
// missing entity's key, e.g. fmt.Errorf("%w: trip-123", ErrTripNotFound),
// so errors.Is still matches while the message names the entity.
var (
	ErrTripNotFound          = errors.New("trip not found")
	ErrVehicleTariffNotFound = errors.New("vehicle tariff not found")
	ErrGuideTariffNotFound   = errors.New("guide tariff not found")
)

// IsNotFound reports whether err belongs to the not-found family.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTripNotFound) ||
		errors.Is(err, ErrVehicleTariffNotFound) ||
		errors.Is(err, ErrGuideTariffNotFound)
}

// ValidationError indicates client-correctable bad input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// CoordinateOutOfRangeError indicates a coordinate outside WGS 84 bounds.
type CoordinateOutOfRangeError struct {
	Lat float64
	Lng float64
}

func (e *CoordinateOutOfRangeError) Error() string {
	return fmt.Sprintf("coordinate out of range: lat=%.6f lng=%.6f", e.Lat, e.Lng)
}

// CalculationError indicates an internal inconsistency in stored data, such
// as a day-count mismatch or an unroutable point. Not retryable as-is; it
// signals upstream data corruption that needs operator attention.
type CalculationError struct {
	Detail string
	Err    error
}

func (e *CalculationError) Error() string {
	if e.Err != nil {
		return "route calculation failed: " + e.Detail + ": " + e.Err.Error()
	}
	return "route calculation failed: " + e.Detail
}

func (e *CalculationError) Unwrap() error { return e.Err }

// PersistenceError indicates the result write failed. The whole computation
// is side-effect-free, so the caller may safely retry the request.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return "persistence failed during " + e.Op + ": " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error { return e.Err }

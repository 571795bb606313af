package ode

import (
	"errors"
	"fmt"
)

// Domain errors for integration operations.
var (
	// ErrDimensionMismatch indicates an input array whose length disagrees
	// with the dimensions of the problem.
	ErrDimensionMismatch = errors.New("ode: dimension mismatch")

	// ErrStepTooSmall indicates the adaptive step size fell below the
	// minimum before the requested accuracy was reached.
	ErrStepTooSmall = errors.New("ode: step size below minimum")

	// ErrMaxStepsExceeded indicates the integrator gave up before reaching
	// the target time.
	ErrMaxStepsExceeded = errors.New("ode: maximum step count exceeded")

	// ErrTruncatedSnapshot indicates a malformed or truncated interpolator
	// snapshot stream.
	ErrTruncatedSnapshot = errors.New("ode: truncated interpolator snapshot")
)

// DimensionError reports the expected and actual size of a mismatched input.
type DimensionError struct {
	Quantity string
	Want     int
	Got      int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("ode: %s dimension mismatch: want %d, got %d", e.Quantity, e.Want, e.Got)
}

func (e *DimensionError) Unwrap() error {
	return ErrDimensionMismatch
}

// CheckDimension returns a DimensionError unless got equals want.
func CheckDimension(quantity string, want, got int) error {
	if got != want {
		return &DimensionError{Quantity: quantity, Want: want, Got: got}
	}
	return nil
}

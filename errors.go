package flylsh

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidFormat is matched by *InvalidFormatError.
	ErrInvalidFormat = errors.New("invalid matrix format")
	// ErrDimensionMismatch is matched by *DimensionMismatchError.
	ErrDimensionMismatch = errors.New("dimension mismatch")
	// ErrLengthMismatch is matched by *LengthMismatchError.
	ErrLengthMismatch = errors.New("length mismatch")
	// ErrRange is matched by *RangeError.
	ErrRange = errors.New("value out of range")
)

// InvalidFormatError reports sparse input that is not a well formed CSR matrix.
type InvalidFormatError struct {
	Reason string
}

func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("invalid format: %s", e.Reason)
}

func (e *InvalidFormatError) Is(target error) bool { return target == ErrInvalidFormat }

// DimensionMismatchError reports a shape conflict between the point set,
// the projection and the requested hash length.
type DimensionMismatchError struct {
	What     string
	Expected int
	Actual   int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("dimension mismatch (%s): expected %d, got %d", e.What, e.Expected, e.Actual)
}

func (e *DimensionMismatchError) Is(target error) bool { return target == ErrDimensionMismatch }

// LengthMismatchError is returned by AP when predictions and truth differ in length.
type LengthMismatchError struct {
	Predictions int
	Truth       int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("length mismatch: %d predictions, %d truth", e.Predictions, e.Truth)
}

func (e *LengthMismatchError) Is(target error) bool { return target == ErrLengthMismatch }

// RangeError reports an argument outside [Min, Max].
type RangeError struct {
	Name  string
	Value float64
	Min   float64
	Max   float64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s out of range: %v not in [%v, %v]", e.Name, e.Value, e.Min, e.Max)
}

func (e *RangeError) Is(target error) bool { return target == ErrRange }

func checkRange(name string, v, lo, hi int) error {
	if v < lo || v > hi {
		return &RangeError{Name: name, Value: float64(v), Min: float64(lo), Max: float64(hi)}
	}
	return nil
}

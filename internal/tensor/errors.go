package tensor

import (
	"errors"
	"fmt"
)

// Error kinds. Every error produced by the engine wraps exactly one of these,
// so callers can classify failures with errors.Is.
var (
	// ErrLogic reports malformed input, use of an invalid container or
	// channel/depth mismatches between connected layers.
	ErrLogic = errors.New("logic error")

	// ErrNumeric reports dimension mismatches, convolution parameter
	// violations, out-of-range indices and invalid one-hot labels.
	ErrNumeric = errors.New("numeric error")

	// ErrMemory reports a buffer allocation that cannot be satisfied.
	ErrMemory = errors.New("memory error")
)

// DimensionError indicates that two connected operands disagree on a size.
//
// It is a numeric error: errors.Is(err, ErrNumeric) reports true.
type DimensionError struct {
	Op       string
	Expected int
	Actual   int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("%s: dimension mismatch: expected %d, got %d", e.Op, e.Expected, e.Actual)
}

// Is reports whether target is ErrNumeric.
func (e *DimensionError) Is(target error) bool { return target == ErrNumeric }

// MemoryError indicates that a buffer of Requested bytes exceeds Limit.
type MemoryError struct {
	Requested int64
	Limit     int64
}

func (e *MemoryError) Error() string {
	return fmt.Sprintf("failed to allocate %d bytes (limit %d)", e.Requested, e.Limit)
}

// Is reports whether target is ErrMemory.
func (e *MemoryError) Is(target error) bool { return target == ErrMemory }

// Logicf formats a logic error.
func Logicf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrLogic, fmt.Sprintf(format, args...))
}

// Numericf formats a numeric error.
func Numericf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNumeric, fmt.Sprintf(format, args...))
}

// Mismatch returns a DimensionError for op.
func Mismatch(op string, expected, actual int) error {
	return &DimensionError{Op: op, Expected: expected, Actual: actual}
}

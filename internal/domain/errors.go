package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrIO marks environment failures: unreadable sources, failed backup,
	// write or restore of a target file.
	ErrIO = errors.New("i/o error")
	// ErrValidation marks bad input such as an out-of-range mutation line.
	ErrValidation = errors.New("validation error")
	// ErrTimeout marks a test command that exceeded its time budget.
	ErrTimeout = errors.New("test command timed out")
	// ErrNoMutations is returned when the target files yield nothing to evolve.
	ErrNoMutations = errors.New("no mutations found in target files")
)

func ioError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrIO, op, err)
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

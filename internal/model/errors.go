package model

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks input that fails a field rule.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidTransition marks a lifecycle change the current status does not allow.
	ErrInvalidTransition = errors.New("invalid status transition")
)

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

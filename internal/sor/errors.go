package sor

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput        = errors.New("invalid swap input")
	ErrStateNotInitialized = errors.New("pool state not initialized: call FetchAndCachePools first")
)

// InputValidationError explains why a request was rejected before any traversal.
type InputValidationError struct {
	Reason string
}

func (e *InputValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidInput, e.Reason)
}

func (e *InputValidationError) Unwrap() error { return ErrInvalidInput }

func invalid(format string, args ...any) error {
	return &InputValidationError{Reason: fmt.Sprintf(format, args...)}
}

package errs

import (
	"errors"
	"fmt"
)

var (
	ErrConfiguration      = errors.New("configuration error")
	ErrGeneration         = errors.New("generation error")
	ErrVerificationFailed = errors.New("verification failed")

	ErrContractNotFound  = errors.New("contract not found")
	ErrCandidateNotFound = errors.New("candidate not found")
	ErrContractMismatch  = errors.New("candidate does not match contract")
	ErrDuplicateContract = errors.New("contract already registered")
	ErrInvalidContract   = errors.New("invalid contract declaration")

	ErrRunNotFound       = errors.New("run not found")
	ErrRunNotCancellable = errors.New("run cannot be cancelled")
)

// ConfigurationError reports contradictory or missing run parameters. It is
// raised before any iteration runs.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("configuration error: %s", e.Reason)
	}
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

// GenerationError reports that no value could be generated for a declared type.
type GenerationError struct {
	Type   string
	Reason string
}

func (e *GenerationError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("generation error: %s", e.Reason)
	}
	return fmt.Sprintf("generation error: %s: %s", e.Type, e.Reason)
}

func (e *GenerationError) Unwrap() error {
	return ErrGeneration
}

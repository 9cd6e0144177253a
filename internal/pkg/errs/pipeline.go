package errs

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrValidation marks input the pipeline refuses to process. Never retried.
	ErrValidation = errors.New("validation failed")

	// ErrConfiguration marks a startup configuration problem.
	ErrConfiguration = errors.New("configuration is invalid")

	// ErrSerialSpaceExhausted marks a container id scope with no serials left.
	// Allocation stops until an operator widens the scheme.
	ErrSerialSpaceExhausted = errors.New("serial space exhausted")

	// ErrTransport marks a failed delivery attempt. Safe to retry.
	ErrTransport = errors.New("transport failed")
)

// ValidationError names the offending field and, for order data, the line number.
type ValidationError struct {
	Field  string
	Line   int
	Reason string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func NewLineValidationError(line int, field, reason string) *ValidationError {
	return &ValidationError{Field: field, Line: line, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: line %d: %s: %s", ErrValidation, e.Line, e.Field, sanitize(e.Reason))
	}
	return fmt.Sprintf("%s: %s: %s", ErrValidation, e.Field, sanitize(e.Reason))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// ConfigurationError is a ValidationError raised at startup; it matches both sentinels.
type ConfigurationError struct {
	Key    string
	Reason string
}

func NewConfigurationError(key, reason string) *ConfigurationError {
	return &ConfigurationError{Key: key, Reason: reason}
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrConfiguration, e.Key, sanitize(e.Reason))
}

func (e *ConfigurationError) Unwrap() []error {
	return []error{ErrConfiguration, ErrValidation}
}

type ExhaustionError struct {
	Scope  string
	Serial int64
	Max    int64
}

func NewExhaustionError(scope string, serial, maxSerial int64) *ExhaustionError {
	return &ExhaustionError{Scope: scope, Serial: serial, Max: maxSerial}
}

func (e *ExhaustionError) Error() string {
	return fmt.Sprintf("%s: scope %s: serial %d exceeds %d", ErrSerialSpaceExhausted, e.Scope, e.Serial, e.Max)
}

func (e *ExhaustionError) Unwrap() error {
	return ErrSerialSpaceExhausted
}

// TransportStage is the step of a delivery attempt that failed.
type TransportStage string

const (
	StageConnect TransportStage = "connect"
	StageAuth    TransportStage = "auth"
	StageWrite   TransportStage = "write"
	StageRename  TransportStage = "rename"
)

type TransportError struct {
	Stage    TransportStage
	Filename string
	Cause    error
}

func NewTransportError(stage TransportStage, filename string, cause error) *TransportError {
	return &TransportError{Stage: stage, Filename: filename, Cause: cause}
}

func (e *TransportError) Error() string {
	return withCause(fmt.Sprintf("%s: %s stage for %s", ErrTransport, e.Stage, e.Filename), e.Cause)
}

func (e *TransportError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrTransport}
	}
	return []error{ErrTransport, e.Cause}
}

// Retryable is always true: the tracker keeps the document eligible for another attempt.
func (e *TransportError) Retryable() bool {
	return true
}

// Timeout reports whether the attempt ran out of time or was cancelled.
func (e *TransportError) Timeout() bool {
	return errors.Is(e.Cause, context.DeadlineExceeded) || errors.Is(e.Cause, context.Canceled)
}

// IsFatal reports errors that must halt processing of an order: validation and exhaustion.
func IsFatal(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrSerialSpaceExhausted)
}

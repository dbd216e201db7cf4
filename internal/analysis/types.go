package analysis

import (
	"errors"
	"fmt"
)

const (
	StageLocation           = "location"
	StageNarrative          = "narrative"
	StageStructuredAnalysis = "structured_analysis"
)

// ErrorKind classifies a failure for transport mapping: bad input, a
// dependency we call, or a bug on our side.
type ErrorKind string

const (
	KindInput    ErrorKind = "input"
	KindExternal ErrorKind = "external_dependency"
	KindInternal ErrorKind = "internal"
)

type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

func inputErr(op string, err error) error    { return &Error{Kind: KindInput, Op: op, Err: err} }
func externalErr(op string, err error) error { return &Error{Kind: KindExternal, Op: op, Err: err} }

// KindOf extracts the classification from an error chain, defaulting to
// internal for anything unclassified.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// stageErr wraps an external failure so both the transport kind and the
// failing stage survive the error chain.
func stageErr(stage string, err error) error {
	return externalErr("analyze", &StageError{Stage: stage, Err: err})
}

type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s: %v", e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

func StageNameFromError(err error) string {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return "pipeline"
}

type StageAttemptMetrics struct {
	Attempts       int
	ContentRetries int
}

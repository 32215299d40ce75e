// Package models defines the domain entities and error types of the fill engine.
package models

import "errors"

// Sentinel errors returned by the domain and application layers.
var (
	ErrSheetNotFound  = errors.New("sheet not found")
	ErrColumnNotFound = errors.New("column not found")
	ErrCellNotFound   = errors.New("cell not found")
	ErrEventNotFound  = errors.New("event not found")

	ErrInvalidColumnPositions = errors.New("column positions must be 0..N-1 without gaps")
	ErrSeedColumnHasOperator  = errors.New("seed column (position 0) must not declare an operator")

	ErrEventNotPending    = errors.New("event is not in pending state")
	ErrEventNotProcessing = errors.New("event is not in processing state")

	ErrOperatorNotFound = errors.New("operator not found")
	ErrInvalidConfig    = errors.New("invalid configuration")
)

// ValidationError represents a validation error with details.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationErrors aggregates multiple validation failures.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	return e[0].Error()
}

// ErrorKind classifies why a pipeline step failed, driving the dispatcher's
// retry/reject/fail decision without string matching on error text.
type ErrorKind string

const (
	// ErrorKindTransientOperator covers network, vendor rate-limit, and timeout
	// failures. The dispatcher does not retry an operator call that fails
	// with this kind: the pipeline returns the error and the event is marked
	// failed. Its in-process retry runs only when the validator asks for one.
	ErrorKindTransientOperator ErrorKind = "transient_operator"
	// ErrorKindValidation covers hard format failures, e.g. non-numeric text
	// in a number column. Handled like a low-confidence result: retry with an
	// improvement prompt, then accept or fail.
	ErrorKindValidation ErrorKind = "validation"
	// ErrorKindRejectedWrite covers empty content, redirect URLs, and null
	// sentinels. Not retried; the cell is not written; the chain halts.
	ErrorKindRejectedWrite ErrorKind = "rejected_write"
	// ErrorKindSchema covers a structured_output result failing the caller's
	// schema. Treated identically to ErrorKindValidation.
	ErrorKindSchema ErrorKind = "schema"
	// ErrorKindConfiguration covers a missing operator for a referenced type,
	// an impossible column position, and similar setup errors. No retry.
	ErrorKindConfiguration ErrorKind = "configuration"
)

// PipelineError carries an ErrorKind alongside the underlying cause.
type PipelineError struct {
	Kind ErrorKind
	Err  error
}

func (e *PipelineError) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Err.Error()
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// NewPipelineError wraps err with the given classification.
func NewPipelineError(kind ErrorKind, err error) *PipelineError {
	return &PipelineError{Kind: kind, Err: err}
}

// IsRejectedWrite reports whether err (or something it wraps) is a rejected-write error.
func IsRejectedWrite(err error) bool {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind == ErrorKindRejectedWrite
	}
	return false
}

// IsTransientOperator reports whether err (or something it wraps) is a transient operator error.
func IsTransientOperator(err error) bool {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind == ErrorKindTransientOperator
	}
	return false
}

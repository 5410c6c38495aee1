package engine

import "fmt"

// RowErrorKind classifies why a row failed. Every kind here is row-scoped:
// it is captured into the row's outcome and never aborts the batch.
type RowErrorKind string

const (
	// ErrMalformedValue: a value failed coercion where the target field
	// requires strict parsing.
	ErrMalformedValue RowErrorKind = "malformed_value"
	// ErrReferenceResolution: a referenced entity could not be resolved or
	// was not permitted (e.g. a branch on a single-site tenant).
	ErrReferenceResolution RowErrorKind = "reference_resolution"
	// ErrParentLinkUnresolved: a dependent row could not determine its
	// parent employee.
	ErrParentLinkUnresolved RowErrorKind = "parent_link_unresolved"
	// ErrPersistence: the store rejected the write (constraint violation,
	// connectivity).
	ErrPersistence RowErrorKind = "persistence"
)

// RowError is a row-scoped failure with enough context for the outcome
// record.
type RowError struct {
	Kind  RowErrorKind
	Field string // offending column or concept, when known
	Err   error
}

func (e *RowError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s (%s): %v", e.Kind, e.Field, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

func rowErrorf(kind RowErrorKind, field, format string, args ...any) *RowError {
	return &RowError{Kind: kind, Field: field, Err: fmt.Errorf(format, args...)}
}

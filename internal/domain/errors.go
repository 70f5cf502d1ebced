package domain

import "fmt"

// NormalizationError marks a single source payload that cannot be turned
// into a canonical record. The batch continues; the record is counted and
// skipped.
type NormalizationError struct {
	Entity EntityType
	Reason string
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("normalize %s: %s", e.Entity, e.Reason)
}

// ValidationError marks a record with a malformed field (implausible year,
// negative citation count). The record is discarded and counted as invalid.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// SourceError wraps a per-area collection failure. It is recorded in the
// refresh result and never aborts sibling areas.
type SourceError struct {
	Area string
	Err  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("collect area %q: %v", e.Area, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

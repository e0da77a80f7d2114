// Package errors defines the categorized error kinds of the ingestion
// pipeline so the top-level supervisor can translate failures into a
// structured run result.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind represents the category of a pipeline error
type Kind string

const (
	// KindConfig represents missing or invalid configuration
	KindConfig Kind = "config"
	// KindUpstreamFetch represents an upstream API failure after retries
	KindUpstreamFetch Kind = "upstream_fetch"
	// KindSanityCheck represents fetched data failing the plausibility gate
	KindSanityCheck Kind = "sanity_check"
	// KindPersistence represents exhaustion of all upsert strategies
	KindPersistence Kind = "persistence"
	// KindMigrationRecord represents a per-record migration failure
	KindMigrationRecord Kind = "migration_record"
	// KindInternal represents an unclassified failure, including recovered panics
	KindInternal Kind = "internal"
)

// PipelineError is an error with a kind, a stable code and diagnostic details
type PipelineError struct {
	Kind    Kind
	Code    string
	Message string
	Details map[string]interface{}
	Cause   error
}

// Error implements the error interface
func (e *PipelineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause
func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// NewConfigError creates an error listing every missing environment value
func NewConfigError(missing []string) *PipelineError {
	return &PipelineError{
		Kind:    KindConfig,
		Code:    "MISSING_ENV",
		Message: fmt.Sprintf("missing required environment values: %s", strings.Join(missing, ", ")),
		Details: map[string]interface{}{
			"missing": missing,
		},
	}
}

// NewFetchError creates an upstream fetch error carrying the failing source
func NewFetchError(source, url string, cause error) *PipelineError {
	return &PipelineError{
		Kind:    KindUpstreamFetch,
		Code:    "UPSTREAM_FETCH_FAILED",
		Message: fmt.Sprintf("fetch from %s failed", source),
		Cause:   cause,
		Details: map[string]interface{}{
			"source": source,
			"url":    url,
		},
	}
}

// NewSanityError creates a sanity check error with the full missing set
func NewSanityError(missingFiat []string, benchmarkFound bool) *PipelineError {
	return &PipelineError{
		Kind:    KindSanityCheck,
		Code:    "SANITY_CHECK_FAILED",
		Message: "fetched data failed sanity check",
		Details: map[string]interface{}{
			"missingFiat":    missingFiat,
			"benchmarkFound": benchmarkFound,
		},
	}
}

// NewPersistenceError creates an error for an exhausted upsert
func NewPersistenceError(operation string, cause error) *PipelineError {
	return &PipelineError{
		Kind:    KindPersistence,
		Code:    "PERSISTENCE_FAILED",
		Message: fmt.Sprintf("persistence failed during %s", operation),
		Cause:   cause,
		Details: map[string]interface{}{
			"operation": operation,
		},
	}
}

// NewMigrationRecordError creates a per-record migration error
func NewMigrationRecordError(documentID string, cause error) *PipelineError {
	return &PipelineError{
		Kind:    KindMigrationRecord,
		Code:    "MIGRATION_RECORD_FAILED",
		Message: fmt.Sprintf("migration of record %s failed", documentID),
		Cause:   cause,
		Details: map[string]interface{}{
			"documentId": documentID,
		},
	}
}

// KindOf returns the kind of an error, or an empty kind for plain errors
func KindOf(err error) Kind {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

// AsPipelineError extracts a PipelineError from an error chain; plain
// errors are wrapped as internal
func AsPipelineError(err error) *PipelineError {
	if err == nil {
		return nil
	}
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe
	}
	return &PipelineError{
		Kind:    KindInternal,
		Code:    "INTERNAL_ERROR",
		Message: err.Error(),
		Cause:   err,
	}
}

// Package errors defines the typed error kinds manifold's core raises,
// per the error-handling table of the specification.
package errors

import (
	"fmt"
	"time"
)

// Kind classifies a manifold error so callers can branch on it with errors.As.
type Kind string

const (
	// KvUnavailable is raised when PING against the index store fails.
	KvUnavailable Kind = "kv_unavailable"
	// PathNotFound is raised when an ingest root or retrieval path is missing.
	PathNotFound Kind = "path_not_found"
	// TooShort is raised when input is smaller than the configured window.
	TooShort Kind = "too_short"
	// InvalidSignature is raised when a signature string fails the format regex.
	InvalidSignature Kind = "invalid_signature"
	// DecodeFailure is raised when zstd decode fails (core falls back to raw bytes).
	DecodeFailure Kind = "decode_failure"
	// ParseFailure is raised when the Python import extractor can't parse a file.
	ParseFailure Kind = "parse_failure"
	// PerFileIO is raised on a per-file read error during ingest.
	PerFileIO Kind = "per_file_io"
	// WatcherException covers any panic/error swallowed inside a watcher callback.
	WatcherException Kind = "watcher_exception"
)

// Error wraps an underlying error with the kind, operation, and optional
// path context needed to decide whether a caller should abort or continue.
type Error struct {
	Kind        Kind
	Operation   string
	Path        string
	Underlying  error
	Timestamp   time.Time
	Recoverable bool
}

// New creates a manifold error of the given kind.
func New(kind Kind, op string, err error) *Error {
	return &Error{
		Kind:       kind,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// WithPath attaches file/path context to the error.
func (e *Error) WithPath(path string) *Error {
	e.Path = path
	return e
}

// WithRecoverable marks whether the caller may continue past this error.
func (e *Error) WithRecoverable(recoverable bool) *Error {
	e.Recoverable = recoverable
	return e
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s failed for %s: %v", e.Kind, e.Operation, e.Path, e.Underlying)
	}
	return fmt.Sprintf("%s: %s failed: %v", e.Kind, e.Operation, e.Underlying)
}

func (e *Error) Unwrap() error {
	return e.Underlying
}

// IsRecoverable reports whether the operation that raised this error may
// continue processing other inputs (e.g. skip one bad file in an ingest).
func (e *Error) IsRecoverable() bool {
	return e.Recoverable
}

// Collector accumulates per-item errors without aborting the caller, the
// "collect and continue" discipline ingest/watcher/batch paths use.
type Collector struct {
	Errors []error
}

// Add appends a non-nil error to the collector.
func (c *Collector) Add(err error) {
	if err != nil {
		c.Errors = append(c.Errors, err)
	}
}

// Len reports how many errors have been collected.
func (c *Collector) Len() int {
	return len(c.Errors)
}

// Err returns nil if no errors were collected, the single error if exactly
// one was collected, or a MultiError otherwise.
func (c *Collector) Err() error {
	switch len(c.Errors) {
	case 0:
		return nil
	case 1:
		return c.Errors[0]
	default:
		return &MultiError{Errors: append([]error(nil), c.Errors...)}
	}
}

// MultiError aggregates independent per-item failures.
type MultiError struct {
	Errors []error
}

func (e *MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors (first: %v)", len(e.Errors), e.Errors[0])
}

func (e *MultiError) Unwrap() []error {
	return e.Errors
}

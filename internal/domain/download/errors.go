package download

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned for operations on unknown job ids.
var ErrNotFound = errors.New("job not found")

// ErrNotDownloading is returned when pause is requested outside the downloading state.
var ErrNotDownloading = errors.New("job is not downloading")

// ErrNotPaused is returned when resume is requested outside the paused state.
var ErrNotPaused = errors.New("job is not paused")

// ValidationError rejects a submission before any job record is created.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid submission: " + e.Reason
}

// ProbeError reports a failed metadata extraction.
type ProbeError struct {
	Detail string
	Err    error
}

func (e *ProbeError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("probe failed: %v: %s", e.Err, e.Detail)
	}
	return fmt.Sprintf("probe failed: %v", e.Err)
}

func (e *ProbeError) Unwrap() error { return e.Err }

// FetchError reports a failed retrieval, carrying the captured stderr.
type FetchError struct {
	Stderr string
	Err    error
}

func (e *FetchError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("fetch failed: %v: %s", e.Err, e.Stderr)
	}
	return fmt.Sprintf("fetch failed: %v", e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError reports malformed extractor output or info-file content.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// StorageError reports a failed artifact upload or job persistence.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

package apperrors

import (
	"fmt"
	"strings"
)

// ErrRequest represents a media request missing a field that a source requires.
type ErrRequest struct {
	Source string
	Field  string
	File   string
}

// Error implements the error interface.
func (e *ErrRequest) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("%s: %s is mandatory for file %q", e.Source, e.Field, e.File)
	}
	return fmt.Sprintf("%s is mandatory for file %q", e.Field, e.File)
}

// Is allows for error checking with errors.Is().
func (e *ErrRequest) Is(target error) bool {
	_, ok := target.(*ErrRequest)
	return ok
}

// NewRequestError creates a new ErrRequest.
func NewRequestError(source, field, file string) *ErrRequest {
	return &ErrRequest{Source: source, Field: field, File: file}
}

// ErrQueryEncoding is returned when a query string cannot be encoded into a source URL.
type ErrQueryEncoding struct {
	Source string
	Query  string
	Err    error
}

// Error implements the error interface.
func (e *ErrQueryEncoding) Error() string {
	msg := fmt.Sprintf("%s: cannot encode query %q", e.Source, e.Query)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is allows for error checking with errors.Is().
func (e *ErrQueryEncoding) Is(target error) bool {
	_, ok := target.(*ErrQueryEncoding)
	return ok
}

func (e *ErrQueryEncoding) Unwrap() error {
	return e.Err
}

// ErrFetch is returned when a URL cannot be reached or answers with a non-OK status.
type ErrFetch struct {
	URL        string
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *ErrFetch) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("failed to fetch %s: unexpected status code %d", e.URL, e.StatusCode)
}

// Is allows for error checking with errors.Is().
func (e *ErrFetch) Is(target error) bool {
	_, ok := target.(*ErrFetch)
	return ok
}

func (e *ErrFetch) Unwrap() error {
	return e.Err
}

// NewFetchError creates a new ErrFetch wrapping a transport error.
func NewFetchError(url string, err error) *ErrFetch {
	return &ErrFetch{URL: url, Err: err}
}

// NewFetchStatusError creates a new ErrFetch for a non-OK HTTP status.
func NewFetchStatusError(url string, statusCode int) *ErrFetch {
	return &ErrFetch{URL: url, StatusCode: statusCode}
}

// ErrParse is returned when a page assumed to have a known shape lacks an expected marker.
type ErrParse struct {
	Source string
	URL    string
	Marker string
}

// Error implements the error interface.
func (e *ErrParse) Error() string {
	return fmt.Sprintf("%s: expected %s on page %s", e.Source, e.Marker, e.URL)
}

// Is allows for error checking with errors.Is().
func (e *ErrParse) Is(target error) bool {
	_, ok := target.(*ErrParse)
	return ok
}

// NewParseError creates a new ErrParse.
func NewParseError(source, url, marker string) *ErrParse {
	return &ErrParse{Source: source, URL: url, Marker: marker}
}

// ErrNoResults marks a source search that completed without any match.
// It is a valid outcome, not a failure.
type ErrNoResults struct {
	Source string
}

// Error implements the error interface.
func (e *ErrNoResults) Error() string {
	return fmt.Sprintf("%s: no subtitles found", e.Source)
}

// Is allows for error checking with errors.Is().
func (e *ErrNoResults) Is(target error) bool {
	_, ok := target.(*ErrNoResults)
	return ok
}

// ErrArchive is returned when a downloaded archive holds no usable subtitle entry.
type ErrArchive struct {
	URL    string
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *ErrArchive) Error() string {
	msg := fmt.Sprintf("archive %s: %s", e.URL, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is allows for error checking with errors.Is().
func (e *ErrArchive) Is(target error) bool {
	_, ok := target.(*ErrArchive)
	return ok
}

func (e *ErrArchive) Unwrap() error {
	return e.Err
}

// ErrEncoding is returned when subtitle content cannot be transcoded.
type ErrEncoding struct {
	From string
	To   string
	Err  error
}

// Error implements the error interface.
func (e *ErrEncoding) Error() string {
	if e.From == "" {
		return fmt.Sprintf("cannot convert to %s: %v", e.To, e.Err)
	}
	return fmt.Sprintf("cannot convert from %s to %s: %v", e.From, e.To, e.Err)
}

// Is allows for error checking with errors.Is().
func (e *ErrEncoding) Is(target error) bool {
	_, ok := target.(*ErrEncoding)
	return ok
}

func (e *ErrEncoding) Unwrap() error {
	return e.Err
}

// ErrAggregate collects the ordered errors of every source when none succeeded.
type ErrAggregate struct {
	Errors []error
}

// Error implements the error interface.
func (e *ErrAggregate) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("all %d sources failed: %s", len(e.Errors), strings.Join(msgs, "; "))
}

// Is allows for error checking with errors.Is().
func (e *ErrAggregate) Is(target error) bool {
	_, ok := target.(*ErrAggregate)
	return ok
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (e *ErrAggregate) Unwrap() []error {
	return e.Errors
}

package errors

import (
	"errors"
	"fmt"
)

// Kind classifies operation failures so callers can pick the right surface
// for each one.
type Kind string

const (
	// KindNotFound means a scan or filter yielded zero items. User-facing,
	// non-fatal.
	KindNotFound Kind = "not_found"
	// KindCancelled means the user aborted the operation. Suppressed from
	// error surfaces and treated as normal early termination.
	KindCancelled Kind = "cancelled"
	// KindUnrecognized means the classifier couldn't parse a node. The node
	// is skipped and the scan continues.
	KindUnrecognized Kind = "unrecognized"
	// KindTransient means a single item's request failed. Logged, counted,
	// the loop continues.
	KindTransient Kind = "transient"
	// KindConfigurationMissing means a required collaborator or credential
	// isn't available. Fatal for the current operation.
	KindConfigurationMissing Kind = "configuration_missing"
)

// Error carries the failure taxonomy alongside the message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a taxonomy error.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates a taxonomy error around an underlying cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the kind from an error chain, or "" for untyped errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsCancelled reports whether the error chain is a user cancellation.
func IsCancelled(err error) bool {
	return KindOf(err) == KindCancelled
}

// IsNotFound reports whether the error chain is an empty-result failure.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// IsRetryable reports whether an operation hitting this error should be
// attempted again. Only transient per-item failures qualify.
func IsRetryable(err error) bool {
	return KindOf(err) == KindTransient
}

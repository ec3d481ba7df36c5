package errors

import (
	"errors"
	"fmt"
)

// Standard API-related errors
var (
	ErrAuthentication    = errors.New("opensubtitles: authentication failed")
	ErrSearch            = errors.New("opensubtitles: search failed")
	ErrTransport         = errors.New("opensubtitles: transport failure")
	ErrMalformedResponse = errors.New("opensubtitles: malformed response")

	// Application/Flow specific errors
	ErrUnsupportedQuery = errors.New("client: unsupported query type")
	ErrFileTooSmall     = errors.New("fileops: file too small for OSDb hashing")
)

// FaultError is an XML-RPC fault reported by the remote service.
// Kind is ErrAuthentication or ErrSearch depending on the call that faulted.
type FaultError struct {
	Kind    error
	Code    int
	Message string
}

func (e *FaultError) Error() string {
	return fmt.Sprintf("%v: xmlrpc fault %d: %s", e.Kind, e.Code, e.Message)
}

// Unwrap lets errors.Is match the call kind.
func (e *FaultError) Unwrap() error {
	return e.Kind
}

// RejectedError is returned when the envelope carried no fault but its status
// was not the success status.
type RejectedError struct {
	Kind   error
	Status string
}

func (e *RejectedError) Error() string {
	if e.Status == "" {
		return fmt.Sprintf("%v: missing status", e.Kind)
	}
	return fmt.Sprintf("%v: status %q", e.Kind, e.Status)
}

// Unwrap lets errors.Is match the call kind.
func (e *RejectedError) Unwrap() error {
	return e.Kind
}

// NewAuthenticationFault wraps a fault returned by LogIn.
func NewAuthenticationFault(code int, message string) *FaultError {
	return &FaultError{Kind: ErrAuthentication, Code: code, Message: message}
}

// NewAuthenticationRejected reports a LogIn reply with a non-success status.
func NewAuthenticationRejected(status string) *RejectedError {
	return &RejectedError{Kind: ErrAuthentication, Status: status}
}

// NewSearchFault wraps a fault returned by SearchSubtitles.
func NewSearchFault(code int, message string) *FaultError {
	return &FaultError{Kind: ErrSearch, Code: code, Message: message}
}

// NewSearchRejected reports a SearchSubtitles reply with a non-success status.
func NewSearchRejected(status string) *RejectedError {
	return &RejectedError{Kind: ErrSearch, Status: status}
}

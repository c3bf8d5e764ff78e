package api

import "fmt"

// ErrorKind categorizes a component failure for status mapping.
type ErrorKind string

const (
	// ErrorKindValidation marks malformed, missing, or conflicting input.
	ErrorKindValidation ErrorKind = "validation"

	// ErrorKindConfiguration marks a required external resource (such as
	// the identity pool or its app client) that could not be resolved.
	ErrorKindConfiguration ErrorKind = "configuration"

	// ErrorKindProtocol marks an unexpected step in the identity
	// challenge sequence.
	ErrorKindProtocol ErrorKind = "protocol"

	// ErrorKindNotFound marks a referenced entity that does not exist.
	ErrorKindNotFound ErrorKind = "not_found"

	// ErrorKindUpstream marks a failed store or identity-provider call.
	ErrorKindUpstream ErrorKind = "upstream"
)

// Error is a structured component error. Handlers convert it into the
// uniform error envelope; nothing above the dispatch boundary ever sees a
// bare error.
type Error struct {
	Kind    ErrorKind
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewValidationError creates an Error for invalid input.
func NewValidationError(message string) *Error {
	return &Error{Kind: ErrorKindValidation, Message: message}
}

// NewConfigurationError creates an Error for an unresolvable external resource.
func NewConfigurationError(message string) *Error {
	return &Error{Kind: ErrorKindConfiguration, Message: message}
}

// NewProtocolError creates an Error for an unexpected identity challenge.
func NewProtocolError(message string) *Error {
	return &Error{Kind: ErrorKindProtocol, Message: message}
}

// NewNotFoundError creates an Error for an absent entity.
func NewNotFoundError(message string) *Error {
	return &Error{Kind: ErrorKindNotFound, Message: message}
}

// NewUpstreamError creates an Error for a failed external call. The
// upstream message is passed through verbatim.
func NewUpstreamError(message string) *Error {
	return &Error{Kind: ErrorKindUpstream, Message: message}
}

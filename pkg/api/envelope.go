package api

import "fmt"

// ErrorEnvelope is the uniform JSON error body. Every component failure is
// rendered through it so that the caller always receives a status code and
// a message, never a bare transport fault.
type ErrorEnvelope struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

// MessageEnvelope is the body of plain informational responses such as
// GET /hello.
type MessageEnvelope struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

// NewErrorEnvelope builds the error body for a status code and detail.
// The message format "ERROR. <detail>." is part of the API contract.
func NewErrorEnvelope(statusCode int, detail string) ErrorEnvelope {
	return ErrorEnvelope{
		StatusCode: statusCode,
		Message:    fmt.Sprintf("ERROR. %s.", detail),
	}
}

// NewBadRouteEnvelope builds the body returned for an unmatched route. It
// names the offending path and method so a misrouted request is never
// silently dropped.
func NewBadRouteEnvelope(method, path string) ErrorEnvelope {
	return ErrorEnvelope{
		StatusCode: 400,
		Message: fmt.Sprintf(
			"Bad request syntax or unsupported method. Request path: %s. HTTP method: %s",
			path, method),
	}
}

// Package transport contains the protocol-independent request router and
// its middleware. Requests are dispatched by the exact (method, path) pair
// after path normalization; parameterized paths such as /tables/{tableId}
// are collapsed to a flat key before lookup. Every outcome, including an
// unmatched route or a panicking handler, is rendered as a JSON envelope
// with an embedded status code.
//
// The HTTP binding lives in transport/http.
package transport

// Package api defines the wire types of the booking gateway: table and
// reservation records, the signup/signin request schemas, the error
// taxonomy, and the uniform response envelope shared by every handler.
//
// The envelope mirrors the upstream API contract: every response body is
// JSON, successful bodies carry the operation payload directly, and error
// bodies carry a statusCode plus a message of the form "ERROR. <detail>.".
package api

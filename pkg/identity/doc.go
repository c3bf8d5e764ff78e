// Package identity defines the client contract for the remote user-pool
// service that owns accounts and credentials. The auth component drives
// the provider's challenge-response protocol through this interface and
// holds no user state of its own.
//
// Two implementations exist: identity/local, an in-process pool that mints
// real JWTs and backs tests and single-node deployments, and
// identity/cognito, an HTTP client speaking the Cognito identity-provider
// wire protocol.
package identity

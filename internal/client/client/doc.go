// Package client is the REST transport to the brokerage backend.
//
// # Overview
//
// The package provides:
//  1. Client: an HTTP client that injects the session token, decodes the
//     backend's {success, message, data} envelope and maps failures onto
//     sentinel errors.
//  2. Resource: typed CRUD calls for one resource path (list, get, create,
//     update, delete) including the list pagination block.
//  3. RetryPolicy: the single retry/backoff configuration used for reads.
//
// # Error Handling
//
// Transport failures (refused connection, DNS failure, timeout) wrap
// ErrUnavailable. HTTP error statuses are returned as *APIError, which keeps
// the status code and backend message and unwraps to ErrUnauthorized,
// ErrForbidden, ErrNotFound, ErrValidation or ErrServer, so callers can use
// errors.Is for the class and errors.As for the details.
//
// Client is safe for concurrent use.
package client

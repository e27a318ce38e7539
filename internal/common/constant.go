// Package common contains shared constants, sentinel errors and small helpers
// used across brokerdesk components.
package common

// AuthorizationHeaderName carries the session token on outbound REST calls.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the session token in the Authorization header.
const BearerPrefix = "Bearer "

// FallbackTokenPrefix marks session tokens synthesized locally when the
// backend could not authenticate the operator.
const FallbackTokenPrefix = "mock_"

// LocalIDPrefix marks identifiers assigned by the local store. The backend
// never issues identifiers with this prefix.
const LocalIDPrefix = "local-"

package common

import "errors"

var (
	// Store-level errors.
	ErrorNotFound = errors.New("not found")

	// Generic flow control.
	ErrorInternal = errors.New("internal error")

	// Credential errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

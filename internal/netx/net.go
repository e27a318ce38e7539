// Package netx classifies transport failures, separating "the backend could
// not be reached" from "the backend answered with an error".
package netx

import (
	"context"
	"errors"
	"net"
	"net/url"
	"syscall"
)

// IsUnreachable reports whether err means the request never got an HTTP
// answer: connection refused or reset, unreachable network or host, DNS
// failure, or a timeout (client timeout or context deadline).
func IsUnreachable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ENETUNREACH) ||
		errors.Is(err, syscall.EHOSTUNREACH) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return false
}

package services

import "errors"

var (
	ErrPermissionDenied      = errors.New("permission denied")
	ErrAuth                  = errors.New("authentication failed")
	ErrNotAuthenticated      = errors.New("not authenticated")
	ErrLocalDataNotAvailable = errors.New("local data not available")
)

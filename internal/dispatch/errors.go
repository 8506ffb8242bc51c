package dispatch

import "fmt"

// StatusError carries the HTTP status a downstream transport answered with,
// so the dispatcher can tell a transient 503 from a permanent 400.
type StatusError struct {
	error
	Code int
}

func NewStatusError(code int, format string, args ...any) *StatusError {
	return &StatusError{error: fmt.Errorf(format, args...), Code: code}
}

package generate

import "fmt"

// ErrUpstream reports a failed call to the content-generation service.
// Status is zero when the transport itself failed before any response.
type ErrUpstream struct {
	error
	Status int
}

func NewErrUpstream(status int, body string) *ErrUpstream {
	return &ErrUpstream{error: fmt.Errorf("content generation failed with status %d: %s", status, body), Status: status}
}

func NewErrUpstreamTransport(err error) *ErrUpstream {
	return &ErrUpstream{error: fmt.Errorf("content generation request failed: %w", err)}
}

package pipeline

import "fmt"

// ErrParse reports that a collaborator answered with text the stage could
// not decode. It is deliberately distinct from generate.ErrUpstream so a
// bad prompt is diagnosable apart from a bad network day.
type ErrParse struct {
	error
}

func NewErrParse(stage string, err error) *ErrParse {
	return &ErrParse{fmt.Errorf("stage %s returned malformed output: %w", stage, err)}
}

type ErrMissingInput struct {
	error
}

func NewErrMissingInput(field string) *ErrMissingInput {
	return &ErrMissingInput{fmt.Errorf("missing required input: %s", field)}
}

package services

import (
	"errors"
	"fmt"
)

var (
	ErrNotAHeader     = errors.New("line is not a section header")
	ErrMissingSection = errors.New("missing section")
	ErrInvalidCharge  = errors.New("invalid charge expression")
)

// ParseError is a recoverable failure for a single issue: the issue is left
// out of the story set and the run goes on.
type ParseError struct {
	Issue int
	Err   error
}

func (e *ParseError) Error() string { return fmt.Sprintf("issue #%d: %v", e.Issue, e.Err) }
func (e *ParseError) Unwrap() error { return e.Err }

// ChargeError reports a charge expression that is not a usable number.
type ChargeError struct {
	Text string
	Part string
	Err  error
}

func (e *ChargeError) Error() string {
	if e.Part != "" && e.Part != e.Text {
		return fmt.Sprintf("%v: %q in %q", ErrInvalidCharge, e.Part, e.Text)
	}
	return fmt.Sprintf("%v: %q", ErrInvalidCharge, e.Text)
}

func (e *ChargeError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidCharge}
	}
	return []error{ErrInvalidCharge, e.Err}
}

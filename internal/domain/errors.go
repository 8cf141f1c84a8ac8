package domain

import "errors"

// Request-level failures. The HTTP boundary reports each of them as 400 with Error() as message.
var (
	ErrInvalidLocation   = errors.New("Invalid location")
	ErrMissingLocation   = errors.New("Location is required")
	ErrMissingReviewBody = errors.New("ReviewBody is required")
	ErrParse             = errors.New("parse error")
)

// ParseError carries the offending parameter and the underlying conversion error.
type ParseError struct {
	Param string
	Err   error
}

func (e *ParseError) Error() string {
	return "invalid " + e.Param + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// IsRequestError reports whether err is one of the client-input failures above.
func IsRequestError(err error) bool {
	return errors.Is(err, ErrInvalidLocation) ||
		errors.Is(err, ErrMissingLocation) ||
		errors.Is(err, ErrMissingReviewBody) ||
		errors.Is(err, ErrParse)
}

package transfers

import (
	"errors"
	"fmt"
)

// Kind classifies a transfer failure. Callers branch on the kind, never on the message.
type Kind int

const (
	Internal Kind = iota
	InvalidArgument
	NotFound
	FailedPrecondition
	Expired
	PermissionDenied
	RateLimited
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "invalid_argument"
	case NotFound:
		return "not_found"
	case FailedPrecondition:
		return "failed_precondition"
	case Expired:
		return "expired"
	case PermissionDenied:
		return "permission_denied"
	case RateLimited:
		return "rate_limited"
	default:
		return "internal"
	}
}

// Error is returned by every Service operation.
// Message is safe to show to the caller; Err carries the underlying cause for logging.
type Error struct {
	Kind    Kind
	Message string
	Err     error

	// RetryAfter is set for RateLimited errors, in seconds.
	RetryAfter int
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf reports the kind of err. Errors that did not come from this package are Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

func newError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

func internalError(cause error) *Error {
	return newError(Internal, "internal error", cause)
}

// outcome is the metrics label for the result of an operation.
func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return KindOf(err).String()
}

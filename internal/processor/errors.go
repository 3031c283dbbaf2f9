package processor

import (
	"errors"
	"fmt"
)

// ValidationReason classifies why a declaration failed validation.
type ValidationReason int

const (
	// ReasonMissingState means the declaration's state name is empty.
	ReasonMissingState ValidationReason = iota

	// ReasonMissingHandler means neither an explicit nor a fallback handler
	// name was given.
	ReasonMissingHandler

	// ReasonHandlerNotFound means the resolved name does not correspond to a
	// usable callable in the owner's table.
	ReasonHandlerNotFound
)

// String returns the reason's message text.
func (r ValidationReason) String() string {
	switch r {
	case ReasonMissingState:
		return "missing state"
	case ReasonMissingHandler:
		return "missing handler"
	case ReasonHandlerNotFound:
		return "handler not found"
	default:
		return "invalid declaration"
	}
}

// ValidationError reports a declaration that failed setup.
// Setup-time failures are fatal to the single declaration only; the registry
// is never touched on the failure path.
type ValidationError struct {
	// Reason classifies the failure.
	Reason ValidationReason

	// Owner is the declaring owner's name.
	Owner string

	// State is the declared state name (may be empty).
	State string

	// Handler is the resolved handler name (may be empty).
	Handler string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("%s: owner %q state %q handler %q", e.Reason, e.Owner, e.State, e.Handler)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *ValidationError) Unwrap() error { return e.Err }

// Sentinel errors for the processor lifecycle.
var (
	// ErrNilSource is returned when a processor is created without a
	// notification source.
	ErrNilSource = errors.New("notification source cannot be nil")

	// ErrNilOwner is returned when setup or teardown is called with a nil owner.
	ErrNilOwner = errors.New("owner cannot be nil")
)

package dispatch

import "time"

// Result describes the outcome of a single handler execution.
type Result struct {
	// Success is true if the handler completed without error or panic.
	Success bool

	// Error is the error returned by the handler, if any.
	Error error

	// Panicked is true if the handler panicked.
	Panicked bool

	// PanicValue is the value passed to panic(), if Panicked.
	PanicValue any

	// PanicStack is the stack trace captured at recovery, if Panicked.
	PanicStack []byte

	// Skipped is true if the handler was never run (context cancelled).
	Skipped bool

	// Duration is how long the handler ran.
	Duration time.Duration
}

// IsSuccess reports whether the handler ran and completed cleanly.
func (r Result) IsSuccess() bool {
	return r.Success && !r.Panicked && r.Error == nil
}

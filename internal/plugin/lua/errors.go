package lua

import "errors"

// Sentinel errors for the Lua runtime.
var (
	// ErrStateClosed is returned when a closed state is used.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrNotFunction is returned when a named global is not a function.
	ErrNotFunction = errors.New("global is not a function")
)

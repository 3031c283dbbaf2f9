package route

import "errors"

// Sentinel errors for binding construction.
var (
	// ErrEmptyState is returned when a binding is created with no state name.
	ErrEmptyState = errors.New("binding state name is empty")

	// ErrNilCallable is returned when a binding is created with a nil callable.
	ErrNilCallable = errors.New("binding callable is nil")

	// ErrUnsupportedCallable is returned when a callable does not match any
	// accepted signature.
	ErrUnsupportedCallable = errors.New("callable has an unsupported signature")
)

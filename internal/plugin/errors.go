package plugin

import "errors"

// Sentinel errors for plugin loading.
var (
	// ErrAlreadyLoaded is returned when loading a plugin whose name is taken.
	ErrAlreadyLoaded = errors.New("plugin already loaded")

	// ErrNotLoaded is returned when unloading an unknown plugin.
	ErrNotLoaded = errors.New("plugin not loaded")

	// ErrHostClosed is returned when a closed host is called.
	ErrHostClosed = errors.New("plugin host is closed")
)

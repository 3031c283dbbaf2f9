// Package route maintains the state-change handler registry.
//
// A Binding associates a state name with a resolved callable and a priority.
// The Registry keeps bindings grouped by state name, ordered by ascending
// priority with stable insertion order for ties, and dispatches incoming
// notifications to every binding for the matching state.
//
// The registry never resolves handler names itself: callers hand it
// already-resolved callables (see the processor package for the resolution
// and validation step). Dispatch iterates a snapshot taken at dispatch start,
// so handlers are free to add or remove bindings mid-dispatch. Per-handler
// failures are caught, reported to the configured sink, and never prevent
// later handlers from running.
package route

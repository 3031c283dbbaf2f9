package route

import (
	"context"

	"github.com/dshills/statewire/internal/notify"
)

// Priority determines handler execution order.
// Lower values execute first. The default for new bindings is 0.
type Priority int

const (
	// PriorityFirst is for handlers that must observe a state change before
	// anything else reacts to it.
	PriorityFirst Priority = -100

	// PriorityDefault is the priority of bindings that do not declare one.
	PriorityDefault Priority = 0

	// PriorityNormal is for ordinary application handlers.
	PriorityNormal Priority = 100

	// PriorityLast is for cleanup and bookkeeping handlers that run last.
	PriorityLast Priority = 200
)

// String returns a human-readable priority name.
func (p Priority) String() string {
	switch {
	case p <= PriorityFirst:
		return "first"
	case p <= PriorityDefault:
		return "default"
	case p <= PriorityNormal:
		return "normal"
	default:
		return "last"
	}
}

// CallMode classifies a callable's declared signature.
// The mode is fixed at bind time and never re-inspected per call.
type CallMode int

const (
	// CallModeNone means the callable takes no notification argument.
	CallModeNone CallMode = iota

	// CallModeNotification means the callable receives the full notification.
	CallModeNotification

	// CallModeParams means the callable receives only the notification payload.
	CallModeParams
)

// String returns a human-readable call mode name.
func (m CallMode) String() string {
	switch m {
	case CallModeNone:
		return "none"
	case CallModeNotification:
		return "notification"
	case CallModeParams:
		return "params"
	default:
		return "unknown"
	}
}

// The accepted callable shapes. A handler declares exactly one of these;
// classification happens once, in NewBinding.
type (
	// NoArgFunc is a callable invoked without notification data.
	NoArgFunc func(ctx context.Context) error

	// NotificationFunc is a callable that receives the full notification.
	NotificationFunc func(ctx context.Context, n notify.Notification) error

	// ParamsFunc is a callable that receives only the notification payload.
	ParamsFunc func(ctx context.Context, params any) error
)

// Sink receives diagnostic output from the registry.
// It matches the logger in internal/log; any leveled printf logger will do.
type Sink interface {
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// nopSink discards all diagnostics.
type nopSink struct{}

func (nopSink) Warn(string, ...any)  {}
func (nopSink) Error(string, ...any) {}

// NopSink is a Sink that discards all diagnostics.
var NopSink Sink = nopSink{}

// DispatchStats summarizes one Dispatch call.
type DispatchStats struct {
	// Matched is the number of bindings registered for the state at
	// dispatch start.
	Matched int

	// Delivered is the number of handlers that completed cleanly.
	Delivered int

	// Failed is the number of handlers that returned an error.
	Failed int

	// Panicked is the number of handlers that panicked.
	Panicked int
}

package route

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dshills/statewire/internal/notify"
)

// Binding associates a state name with a resolved callable and a priority.
// Bindings are immutable once created; the binding value itself is the
// identity used for removal.
type Binding struct {
	id       string
	state    string
	priority Priority
	mode     CallMode

	// invoke is the callable normalized to the notification shape.
	// The original signature is recorded in mode; the wrapper passes the
	// callable exactly what it declared.
	invoke NotificationFunc
}

// NewBinding creates a binding for the given state and callable.
//
// The callable must be one of the accepted shapes (NoArgFunc,
// NotificationFunc, ParamsFunc, or their underlying func types); anything
// else fails with ErrUnsupportedCallable. Classification happens here, once.
func NewBinding(state string, callable any, priority Priority) (*Binding, error) {
	if state == "" {
		return nil, ErrEmptyState
	}
	if callable == nil {
		return nil, ErrNilCallable
	}

	b := &Binding{
		id:       uuid.NewString(),
		state:    state,
		priority: priority,
	}

	switch fn := callable.(type) {
	case NoArgFunc:
		b.mode = CallModeNone
		b.invoke = func(ctx context.Context, _ notify.Notification) error { return fn(ctx) }
	case func(ctx context.Context) error:
		b.mode = CallModeNone
		b.invoke = func(ctx context.Context, _ notify.Notification) error { return fn(ctx) }
	case NotificationFunc:
		b.mode = CallModeNotification
		b.invoke = fn
	case func(ctx context.Context, n notify.Notification) error:
		b.mode = CallModeNotification
		b.invoke = fn
	case ParamsFunc:
		b.mode = CallModeParams
		b.invoke = func(ctx context.Context, n notify.Notification) error { return fn(ctx, n.Params) }
	case func(ctx context.Context, params any) error:
		b.mode = CallModeParams
		b.invoke = func(ctx context.Context, n notify.Notification) error { return fn(ctx, n.Params) }
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedCallable, callable)
	}

	return b, nil
}

// ID returns the unique binding identifier.
func (b *Binding) ID() string { return b.id }

// State returns the state name this binding responds to.
func (b *Binding) State() string { return b.state }

// Priority returns the binding's priority.
func (b *Binding) Priority() Priority { return b.priority }

// Mode returns the callable's declared call mode.
func (b *Binding) Mode() CallMode { return b.mode }

// Invoke calls the bound callable with the notification, passing whatever
// the callable's declared signature asks for.
func (b *Binding) Invoke(ctx context.Context, n notify.Notification) error {
	return b.invoke(ctx, n)
}

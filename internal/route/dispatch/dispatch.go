package dispatch

import "context"

// Handler is the type-erased callable the dispatch layer executes.
type Handler interface {
	// Handle processes one notification. The notification parameter is
	// type-erased; handlers type-assert what they need.
	Handle(ctx context.Context, notification any) error
}

// HandlerFunc is a function adapter for Handler.
type HandlerFunc func(ctx context.Context, notification any) error

// Handle implements the Handler interface.
func (f HandlerFunc) Handle(ctx context.Context, notification any) error {
	return f(ctx, notification)
}

// PanicHandler is called when a handler panics.
// The stack is captured at recovery time.
type PanicHandler func(notification any, panicValue any, stack []byte)

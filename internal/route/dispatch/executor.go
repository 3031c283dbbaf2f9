package dispatch

import (
	"context"
	"runtime/debug"
	"time"
)

// Executor runs handlers with panic recovery and timing.
type Executor struct {
	panicHandler PanicHandler
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithPanicHandler sets the panic handler for the executor.
func WithPanicHandler(h PanicHandler) ExecutorOption {
	return func(e *Executor) {
		e.panicHandler = h
	}
}

// NewExecutor creates a new executor with the given options.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs one handler and returns the result.
// Panics are recovered and reported through the panic handler; they never
// escape to the caller.
func (e *Executor) Execute(ctx context.Context, notification any, handler Handler) (result Result) {
	select {
	case <-ctx.Done():
		return Result{Error: ctx.Err(), Skipped: true}
	default:
	}

	start := time.Now()

	defer func() {
		result.Duration = time.Since(start)

		if r := recover(); r != nil {
			stack := debug.Stack()

			result.Success = false
			result.Panicked = true
			result.PanicValue = r
			result.PanicStack = stack

			if e.panicHandler != nil {
				// The panic handler itself must not crash the process.
				func() {
					defer func() { _ = recover() }()
					e.panicHandler(notification, r, stack)
				}()
			}
		}
	}()

	if err := handler.Handle(ctx, notification); err != nil {
		result.Error = err
		return result
	}

	result.Success = true
	return result
}

// ExecuteAll runs handlers sequentially and returns all results in order.
// Handlers remaining after context cancellation are marked skipped.
func (e *Executor) ExecuteAll(ctx context.Context, notification any, handlers []Handler) []Result {
	results := make([]Result, len(handlers))

	for i, handler := range handlers {
		select {
		case <-ctx.Done():
			for j := i; j < len(handlers); j++ {
				results[j] = Result{Error: ctx.Err(), Skipped: true}
			}
			return results
		default:
		}

		results[i] = e.Execute(ctx, notification, handler)
	}

	return results
}

package route

import (
	"context"
	"sort"
	"sync"

	"github.com/dshills/statewire/internal/notify"
	"github.com/dshills/statewire/internal/route/dispatch"
)

// Registry maps state names to priority-ordered handler bindings.
// It is thread-safe for concurrent access.
type Registry struct {
	mu      sync.RWMutex
	byState map[string][]*Binding
	byID    map[string]*Binding

	exec *dispatch.Executor
	sink Sink
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithSink sets the diagnostic sink for dispatch reporting.
func WithSink(s Sink) RegistryOption {
	return func(r *Registry) {
		if s != nil {
			r.sink = s
		}
	}
}

// NewRegistry creates an empty handler registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		byState: make(map[string][]*Binding),
		byID:    make(map[string]*Binding),
		exec:    dispatch.NewExecutor(),
		sink:    NopSink,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Add registers a binding.
// The binding is inserted at the position that keeps the state's sequence
// sorted by ascending priority, after any existing binding with the same
// priority (stable insertion order).
func (r *Registry) Add(b *Binding) {
	r.mu.Lock()
	defer r.mu.Unlock()

	seq := r.byState[b.state]

	// First index whose priority is strictly greater: equal priorities keep
	// their insertion order.
	idx := sort.Search(len(seq), func(i int) bool {
		return seq[i].priority > b.priority
	})

	seq = append(seq, nil)
	copy(seq[idx+1:], seq[idx:])
	seq[idx] = b

	r.byState[b.state] = seq
	r.byID[b.id] = b
}

// Remove deregisters a binding. Returns whether a removal occurred.
// When the state's sequence becomes empty its map entry is dropped.
func (r *Registry) Remove(b *Binding) bool {
	if b == nil {
		return false
	}
	return r.RemoveByID(b.id)
}

// RemoveByID deregisters a binding by its identifier.
func (r *Registry) RemoveByID(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, exists := r.byID[id]
	if !exists {
		return false
	}

	seq := r.byState[b.state]
	for i, s := range seq {
		if s.id == id {
			r.byState[b.state] = append(seq[:i], seq[i+1:]...)
			break
		}
	}

	if len(r.byState[b.state]) == 0 {
		delete(r.byState, b.state)
	}

	delete(r.byID, id)
	return true
}

// Get returns the bindings for a state in dispatch order.
// The returned slice is a copy.
func (r *Registry) Get(state string) []*Binding {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seq := r.byState[state]
	if len(seq) == 0 {
		return nil
	}

	result := make([]*Binding, len(seq))
	copy(result, seq)
	return result
}

// Count returns the total number of live bindings.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.byID)
}

// CountByState returns the number of bindings for one state.
func (r *Registry) CountByState(state string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.byState[state])
}

// States returns all state names with at least one binding.
func (r *Registry) States() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.byState) == 0 {
		return nil
	}

	states := make([]string, 0, len(r.byState))
	for s := range r.byState {
		states = append(states, s)
	}
	return states
}

// Clear removes all bindings.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byState = make(map[string][]*Binding)
	r.byID = make(map[string]*Binding)
}

// Dispatch invokes every binding registered for the notification's state, in
// priority order.
//
// The sequence is snapshotted at dispatch start, so handlers may add or
// remove bindings without affecting the in-flight dispatch. A handler error
// or panic is reported to the sink and never stops later handlers. A state
// with no bindings produces a warning on the sink, not an error.
func (r *Registry) Dispatch(ctx context.Context, n notify.Notification) DispatchStats {
	snapshot := r.Get(n.State)
	if len(snapshot) == 0 {
		r.sink.Warn("no handlers for state %q", n.State)
		return DispatchStats{}
	}

	stats := DispatchStats{Matched: len(snapshot)}

	handlers := make([]dispatch.Handler, len(snapshot))
	for i, b := range snapshot {
		handlers[i] = bindingHandler{b}
	}

	for i, result := range r.exec.ExecuteAll(ctx, n, handlers) {
		b := snapshot[i]

		switch {
		case result.Skipped:
			// Context cancelled; neither delivered nor a handler failure.
		case result.Panicked:
			stats.Panicked++
			r.sink.Error("handler %s for state %q panicked: %v", b.id, n.State, result.PanicValue)
		case result.Error != nil:
			stats.Failed++
			r.sink.Error("handler %s for state %q failed: %v", b.id, n.State, result.Error)
		case result.Success:
			stats.Delivered++
		}
	}

	return stats
}

// bindingHandler adapts a Binding to the dispatch.Handler interface.
type bindingHandler struct {
	b *Binding
}

// Handle implements dispatch.Handler.
func (h bindingHandler) Handle(ctx context.Context, notification any) error {
	n, ok := notification.(notify.Notification)
	if !ok {
		return nil
	}
	return h.b.Invoke(ctx, n)
}

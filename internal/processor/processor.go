package processor

import (
	"context"
	"fmt"
	"sync"

	"github.com/dshills/statewire/internal/notify"
	"github.com/dshills/statewire/internal/route"
)

// bindingKey identifies the binding created for one (owner, declaration)
// pair, so teardown can find exactly what setup registered.
type bindingKey struct {
	owner   string
	state   string
	handler string
}

// Processor wires declarative handler declarations to a registry and gates
// its subscription to the notification source on the live-binding count.
type Processor struct {
	reg    *route.Registry
	source notify.Source
	sink   route.Sink

	mu    sync.Mutex
	sub   notify.Subscription
	bound map[bindingKey]*route.Binding
}

// Option configures a Processor.
type Option func(*Processor)

// WithProcessorSink sets the diagnostic sink for the processor and its registry.
func WithProcessorSink(s route.Sink) Option {
	return func(p *Processor) {
		if s != nil {
			p.sink = s
		}
	}
}

// New creates a processor attached to the given notification source.
// The source is injected; the processor holds no ambient references.
func New(source notify.Source, opts ...Option) (*Processor, error) {
	if source == nil {
		return nil, ErrNilSource
	}

	p := &Processor{
		source: source,
		sink:   route.NopSink,
		bound:  make(map[bindingKey]*route.Binding),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.reg = route.NewRegistry(route.WithSink(p.sink))
	return p, nil
}

// OnSetup validates a declaration against its owner's callable table and
// registers the resulting binding.
//
// Validation failures return a *ValidationError and leave the registry
// untouched. A repeated setup of the same (owner, state, handler) replaces
// the earlier binding.
func (p *Processor) OnSetup(decl Declaration, owner CallableSource) (*route.Binding, error) {
	if owner == nil {
		return nil, ErrNilOwner
	}

	if decl.State == "" {
		return nil, &ValidationError{Reason: ReasonMissingState, Owner: owner.Name()}
	}

	name := decl.handlerName()
	if name == "" {
		return nil, &ValidationError{Reason: ReasonMissingHandler, Owner: owner.Name(), State: decl.State}
	}

	callable, ok := owner.Callable(name)
	if !ok {
		return nil, &ValidationError{Reason: ReasonHandlerNotFound, Owner: owner.Name(), State: decl.State, Handler: name}
	}

	b, err := route.NewBinding(decl.State, callable, decl.Priority)
	if err != nil {
		// Resolved to something that is not a usable callable.
		return nil, &ValidationError{Reason: ReasonHandlerNotFound, Owner: owner.Name(), State: decl.State, Handler: name, Err: err}
	}

	key := bindingKey{owner: owner.Name(), state: decl.State, handler: name}

	p.mu.Lock()
	defer p.mu.Unlock()

	old, hadOld := p.bound[key]
	if hadOld {
		p.reg.Remove(old)
	}

	p.reg.Add(b)
	p.bound[key] = b

	if err := p.attachLocked(); err != nil {
		// Roll back so a failed attach leaves the registry exactly as it
		// was, including a replaced binding.
		p.reg.Remove(b)
		if hadOld {
			p.reg.Add(old)
			p.bound[key] = old
		} else {
			delete(p.bound, key)
		}
		return nil, fmt.Errorf("attach notification source: %w", err)
	}

	return b, nil
}

// OnTeardown removes the binding registered for the declaration by the
// matching OnSetup. Returns whether a removal occurred.
func (p *Processor) OnTeardown(decl Declaration, owner CallableSource) bool {
	if owner == nil {
		return false
	}

	name := decl.handlerName()
	key := bindingKey{owner: owner.Name(), state: decl.State, handler: name}

	p.mu.Lock()
	defer p.mu.Unlock()

	b, exists := p.bound[key]
	if !exists {
		return false
	}

	delete(p.bound, key)
	removed := p.reg.Remove(b)

	p.detachLocked()
	return removed
}

// TeardownOwner removes every binding registered by the named owner.
// Returns the number of bindings removed.
func (p *Processor) TeardownOwner(ownerName string) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	removed := 0
	for key, b := range p.bound {
		if key.owner == ownerName {
			delete(p.bound, key)
			if p.reg.Remove(b) {
				removed++
			}
		}
	}

	p.detachLocked()
	return removed
}

// HandlerCount returns the number of live bindings.
func (p *Processor) HandlerCount() int {
	return p.reg.Count()
}

// Attached reports whether the processor currently subscribes to its source.
func (p *Processor) Attached() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sub != nil
}

// Registry exposes the underlying handler registry.
func (p *Processor) Registry() *route.Registry {
	return p.reg
}

// HandleNotification implements notify.Handler: incoming notifications are
// dispatched to the registry. Handler failures are already isolated and
// reported there, so this never returns an error for them.
func (p *Processor) HandleNotification(ctx context.Context, n notify.Notification) error {
	p.reg.Dispatch(ctx, n)
	return nil
}

// attachLocked subscribes to the source on the 0->1 live-binding transition.
// Idempotent: an existing subscription is kept.
func (p *Processor) attachLocked() error {
	if p.sub != nil || p.reg.Count() == 0 {
		return nil
	}

	sub, err := p.source.Subscribe(p)
	if err != nil {
		return err
	}
	p.sub = sub
	return nil
}

// detachLocked unsubscribes on the 1->0 transition.
// Idempotent: no-op when not subscribed or bindings remain.
func (p *Processor) detachLocked() {
	if p.sub == nil || p.reg.Count() > 0 {
		return
	}

	if err := p.source.Unsubscribe(p.sub); err != nil {
		p.sink.Warn("detach notification source: %v", err)
	}
	p.sub = nil
}

package processor

import "github.com/dshills/statewire/internal/route"

// Declaration is one declarative state-handler registration.
// It is what a host's metadata (manifest entry, config record) distills to.
type Declaration struct {
	// State is the resolved state name the handler responds to. Required.
	State string

	// Handler is the explicit handler name in the owner's callable table.
	// May be empty when Fallback is set.
	Handler string

	// Fallback is the handler name derived from the host declaration,
	// used when Handler is empty (for example "on_login" for state "login").
	Fallback string

	// Priority orders handlers for the same state; lower runs first.
	Priority route.Priority
}

// handlerName resolves the effective handler name for the declaration.
func (d Declaration) handlerName() string {
	if d.Handler != "" {
		return d.Handler
	}
	return d.Fallback
}

// CallableSource is the explicit callable table an owner supplies at bind
// time. The processor never performs name-based member lookup beyond this.
type CallableSource interface {
	// Name identifies the owner, for diagnostics and binding bookkeeping.
	Name() string

	// Callable returns the named callable, if the owner has one.
	// The returned value must be one of the callable shapes accepted by
	// route.NewBinding.
	Callable(name string) (any, bool)
}

// CallableTable is a map-backed CallableSource for hosts that register
// their callables directly.
type CallableTable struct {
	// Owner is the table's name.
	Owner string

	// Callables maps handler names to callables.
	Callables map[string]any
}

// Name implements CallableSource.
func (t CallableTable) Name() string { return t.Owner }

// Callable implements CallableSource.
func (t CallableTable) Callable(name string) (any, bool) {
	c, ok := t.Callables[name]
	return c, ok
}

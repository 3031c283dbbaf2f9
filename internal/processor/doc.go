// Package processor turns declarative state-handler declarations into live
// registry bindings and manages their lifecycle.
//
// Hosts (plugins, application components) hand the processor a Declaration
// plus a callable table. OnSetup validates the declaration, resolves the
// named callable, and registers a binding; OnTeardown removes it again when
// the owner goes away. The processor subscribes to its notification source
// when the live-binding count first rises above zero and unsubscribes when it
// returns to zero, so an idle processor costs the source nothing.
package processor

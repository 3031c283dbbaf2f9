// Package dispatch executes handler callables with failure isolation.
//
// The Executor runs one handler at a time in the caller's goroutine,
// recovering panics and capturing timing, so that one misbehaving handler
// cannot take down the dispatch loop or the process. The SyncDispatcher adds
// aggregate counters on top.
//
// There is deliberately no timeout machinery here: routing is synchronous and
// non-blocking by contract, and handlers are expected to honor their context.
package dispatch

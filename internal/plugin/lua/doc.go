// Package lua provides the sandboxed Lua runtime behind scripted state
// handlers.
//
// Each plugin gets its own State: a gopher-lua LState with only the safe
// standard libraries opened (base, table, string, math) and a mutex guarding
// all access, since LState is not goroutine-safe. The Bridge converts values
// between Go and Lua so notification payloads can cross the boundary.
package lua

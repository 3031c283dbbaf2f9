// Package manifest loads and validates plugin manifests.
//
// A manifest declares a plugin's identity, its Lua entry point, and the
// state-handler bindings it contributes. Manifests are plain data: semantic
// validation of each declaration (does the handler exist, is the callable
// usable) happens later, in the processor, against the loaded plugin.
package manifest

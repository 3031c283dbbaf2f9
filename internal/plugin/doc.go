// Package plugin loads Lua plugins and exposes their functions as state
// handlers.
//
// A plugin is a directory holding a manifest (plugin.json or plugin.yaml)
// and a Lua entry point. The Host runs the entry point in a sandboxed Lua
// state and implements processor.CallableSource, so every global Lua
// function the script defines can back a declared state handler. The Loader
// scans a plugins directory, loads each plugin, and registers its manifest
// declarations with the processor; unloading tears all of them down again.
package plugin

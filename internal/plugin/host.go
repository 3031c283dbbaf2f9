package plugin

import (
	"context"
	"fmt"
	"sync"

	glua "github.com/yuin/gopher-lua"

	"github.com/dshills/statewire/internal/log"
	"github.com/dshills/statewire/internal/manifest"
	"github.com/dshills/statewire/internal/notify"
	plua "github.com/dshills/statewire/internal/plugin/lua"
	"github.com/dshills/statewire/internal/route"
)

// Host is one loaded plugin: its manifest plus a running Lua state.
//
// Host implements processor.CallableSource: every global function the
// plugin's script defines is available as a state-handler callable. Lua
// handlers receive the notification as a table
// {state=..., params=..., source=..., id=...} and signal failure by
// returning false (optionally with a message) or a non-empty string.
type Host struct {
	manifest *manifest.Manifest
	state    *plua.State
	bridge   *plua.Bridge
	logger   *log.Logger

	// mu serializes value conversion and calls; the Lua state is
	// single-threaded.
	mu sync.Mutex
}

// HostOption configures a Host.
type HostOption func(*Host)

// WithHostLogger sets the logger exposed to the plugin and used for
// diagnostics.
func WithHostLogger(l *log.Logger) HostOption {
	return func(h *Host) {
		if l != nil {
			h.logger = l
		}
	}
}

// NewHost loads a plugin from its manifest: it creates a sandboxed Lua
// state, installs the host API, and runs the main script.
func NewHost(m *manifest.Manifest, opts ...HostOption) (*Host, error) {
	state, err := plua.NewState()
	if err != nil {
		return nil, fmt.Errorf("create lua state: %w", err)
	}

	h := &Host{
		manifest: m,
		state:    state,
		bridge:   plua.NewBridge(state.L),
		logger:   log.Nop,
	}
	for _, opt := range opts {
		opt(h)
	}

	h.installAPI()

	if err := state.DoFile(m.MainPath()); err != nil {
		_ = state.Close()
		return nil, fmt.Errorf("plugin %q: run %s: %w", m.Name, m.Main, err)
	}

	return h, nil
}

// installAPI registers the statewire module inside the Lua state.
func (h *Host) installAPI() {
	logger := h.logger.WithComponent("plugin." + h.manifest.Name)

	logFn := func(emit func(string, ...any)) glua.LGFunction {
		return func(L *glua.LState) int {
			emit("%s", L.CheckString(1))
			return 0
		}
	}

	h.state.RegisterModule("statewire", map[string]glua.LGFunction{
		"log_debug": logFn(logger.Debug),
		"log_info":  logFn(logger.Info),
		"log_warn":  logFn(logger.Warn),
		"log_error": logFn(logger.Error),
	})
}

// Name implements processor.CallableSource.
func (h *Host) Name() string {
	return h.manifest.Name
}

// Manifest returns the plugin's manifest.
func (h *Host) Manifest() *manifest.Manifest {
	return h.manifest
}

// HasFunction reports whether the plugin defines the named global function.
func (h *Host) HasFunction(name string) bool {
	return h.state.HasFunction(name)
}

// Call calls a global Lua function with Go arguments and returns Go values.
func (h *Host) Call(fn string, args ...any) ([]any, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state.IsClosed() {
		return nil, ErrHostClosed
	}

	lvArgs := make([]glua.LValue, len(args))
	for i, arg := range args {
		lvArgs[i] = h.bridge.ToLua(arg)
	}

	results, err := h.state.Call(fn, lvArgs...)
	if err != nil {
		return nil, err
	}

	out := make([]any, len(results))
	for i, lv := range results {
		out[i] = h.bridge.ToGo(lv)
	}
	return out, nil
}

// Callable implements processor.CallableSource. The returned callable
// receives the full notification; route classifies it accordingly.
func (h *Host) Callable(name string) (any, bool) {
	if !h.state.HasFunction(name) {
		return nil, false
	}

	fn := route.NotificationFunc(func(_ context.Context, n notify.Notification) error {
		results, err := h.Call(name, notificationTable(n))
		if err != nil {
			return fmt.Errorf("plugin %q: %s: %w", h.manifest.Name, name, err)
		}
		return interpretResult(h.manifest.Name, name, results)
	})
	return fn, true
}

// Close shuts down the plugin's Lua state.
func (h *Host) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state.Close()
}

// notificationTable flattens a notification into the table shape Lua
// handlers receive.
func notificationTable(n notify.Notification) map[string]any {
	return map[string]any{
		"state":  n.State,
		"params": n.Params,
		"source": n.Meta.Source,
		"id":     n.Meta.ID,
	}
}

// interpretResult converts a Lua handler's return values to a Go error.
//
// Conventions: no return or nil means success; false fails, with an optional
// second value as the message; a non-empty string fails with that message;
// a table fails when it carries a non-empty "error" field.
func interpretResult(pluginName, fn string, results []any) error {
	if len(results) == 0 || results[0] == nil {
		return nil
	}

	switch v := results[0].(type) {
	case bool:
		if v {
			return nil
		}
		if len(results) > 1 {
			if msg, ok := results[1].(string); ok && msg != "" {
				return fmt.Errorf("plugin %q: %s: %s", pluginName, fn, msg)
			}
		}
		return fmt.Errorf("plugin %q: %s returned failure", pluginName, fn)

	case string:
		if v != "" {
			return fmt.Errorf("plugin %q: %s: %s", pluginName, fn, v)
		}
		return nil

	case map[string]any:
		if msg, ok := v["error"].(string); ok && msg != "" {
			return fmt.Errorf("plugin %q: %s: %s", pluginName, fn, msg)
		}
		return nil

	default:
		return nil
	}
}

package plugin

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/dshills/statewire/internal/log"
	"github.com/dshills/statewire/internal/manifest"
	"github.com/dshills/statewire/internal/processor"
	"github.com/dshills/statewire/internal/route"
)

// Loader loads plugins and registers their state-handler declarations with
// a processor.
type Loader struct {
	proc   *processor.Processor
	logger *log.Logger

	mu    sync.Mutex
	hosts map[string]*Host
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLoaderLogger sets the loader's logger.
func WithLoaderLogger(l *log.Logger) LoaderOption {
	return func(ld *Loader) {
		if l != nil {
			ld.logger = l
		}
	}
}

// NewLoader creates a loader that registers handlers with proc.
func NewLoader(proc *processor.Processor, opts ...LoaderOption) *Loader {
	ld := &Loader{
		proc:   proc,
		logger: log.Nop,
		hosts:  make(map[string]*Host),
	}
	for _, opt := range opts {
		opt(ld)
	}
	return ld
}

// LoadDir loads every plugin directory under dir.
// Directories without a manifest are skipped; a plugin that fails to load is
// logged and skipped without aborting the rest. Returns the number of
// plugins loaded.
func (ld *Loader) LoadDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read plugins dir: %w", err)
	}

	loaded := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		pluginDir := filepath.Join(dir, entry.Name())
		if _, err := ld.Load(pluginDir); err != nil {
			if errors.Is(err, manifest.ErrNotFound) {
				continue
			}
			ld.logger.Warn("skipping plugin %s: %v", entry.Name(), err)
			continue
		}
		loaded++
	}

	return loaded, nil
}

// Load loads one plugin directory and registers its declarations.
//
// A declaration that fails validation is fatal to that declaration only: it
// is logged and skipped, and the plugin's remaining declarations still
// register.
func (ld *Loader) Load(dir string) (*Host, error) {
	m, err := manifest.LoadFromDir(dir)
	if err != nil {
		return nil, err
	}

	ld.mu.Lock()
	if _, exists := ld.hosts[m.Name]; exists {
		ld.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrAlreadyLoaded, m.Name)
	}
	ld.mu.Unlock()

	host, err := NewHost(m, WithHostLogger(ld.logger))
	if err != nil {
		return nil, err
	}

	registered := 0
	for _, decl := range m.Declarations() {
		d := processor.Declaration{
			State:    decl.State,
			Handler:  decl.Handler,
			Fallback: FallbackHandlerName(decl.State),
			Priority: route.Priority(decl.Priority),
		}
		if _, err := ld.proc.OnSetup(d, host); err != nil {
			ld.logger.Warn("plugin %s: skipping handler for state %q: %v", m.Name, decl.State, err)
			continue
		}
		registered++
	}

	ld.mu.Lock()
	ld.hosts[m.Name] = host
	ld.mu.Unlock()

	ld.logger.Info("loaded plugin %s (%d handlers)", m, registered)
	return host, nil
}

// Unload tears down all of a plugin's bindings and closes its Lua state.
func (ld *Loader) Unload(name string) error {
	ld.mu.Lock()
	host, exists := ld.hosts[name]
	if exists {
		delete(ld.hosts, name)
	}
	ld.mu.Unlock()

	if !exists {
		return fmt.Errorf("%w: %s", ErrNotLoaded, name)
	}

	removed := ld.proc.TeardownOwner(name)
	ld.logger.Info("unloaded plugin %s (%d handlers removed)", name, removed)
	return host.Close()
}

// Close unloads every plugin.
func (ld *Loader) Close() error {
	for _, name := range ld.Hosts() {
		if err := ld.Unload(name); err != nil {
			return err
		}
	}
	return nil
}

// Hosts returns the names of all loaded plugins, sorted.
func (ld *Loader) Hosts() []string {
	ld.mu.Lock()
	defer ld.mu.Unlock()

	names := make([]string, 0, len(ld.hosts))
	for name := range ld.hosts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns a loaded plugin by name.
func (ld *Loader) Get(name string) (*Host, bool) {
	ld.mu.Lock()
	defer ld.mu.Unlock()

	host, ok := ld.hosts[name]
	return host, ok
}

// FallbackHandlerName derives the conventional handler name for a state:
// "user.login" falls back to "on_user_login".
func FallbackHandlerName(state string) string {
	if state == "" {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("on_")
	for _, r := range strings.ToLower(state) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	return sb.String()
}

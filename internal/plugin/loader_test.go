package plugin

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dshills/statewire/internal/notify"
	"github.com/dshills/statewire/internal/processor"
)

func newTestLoader(t *testing.T) (*Loader, *processor.Processor, *notify.Bus) {
	t.Helper()
	bus := notify.NewBus()
	proc, err := processor.New(bus)
	if err != nil {
		t.Fatalf("processor.New: %v", err)
	}
	ld := NewLoader(proc)
	t.Cleanup(func() { _ = ld.Close() })
	return ld, proc, bus
}

func TestLoader_Load(t *testing.T) {
	ld, proc, bus := newTestLoader(t)

	dir := writePlugin(t, filepath.Join(t.TempDir(), "audit"), `{
		"name": "audit",
		"version": "1.0.0",
		"stateHandlers": [{"state": "login", "handler": "record"}]
	}`, `
hits = 0
function record(n) hits = hits + 1 return true end
function count() return hits end
`)

	host, err := ld.Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if proc.HandlerCount() != 1 {
		t.Fatalf("expected 1 handler, got %d", proc.HandlerCount())
	}

	if err := bus.Publish(context.Background(), notify.New("login", nil, "")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	results, err := host.Call("count")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results[0] != int64(1) {
		t.Errorf("expected 1 hit, got %v", results[0])
	}
}

func TestLoader_Load_FallbackHandler(t *testing.T) {
	ld, proc, bus := newTestLoader(t)

	// No explicit handler name: the loader falls back to on_<state>.
	dir := writePlugin(t, filepath.Join(t.TempDir(), "fallback"), `{
		"name": "fallback",
		"version": "1.0.0",
		"stateHandlers": [{"state": "user.login"}]
	}`, `
hit = false
function on_user_login(n) hit = true return true end
function was_hit() return hit end
`)

	host, err := ld.Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if proc.HandlerCount() != 1 {
		t.Fatalf("expected 1 handler, got %d", proc.HandlerCount())
	}

	if err := bus.Publish(context.Background(), notify.New("user.login", nil, "")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	results, err := host.Call("was_hit")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results[0] != true {
		t.Error("expected fallback handler to be invoked")
	}
}

func TestLoader_Load_SkipsInvalidDeclarations(t *testing.T) {
	ld, proc, _ := newTestLoader(t)

	// Second declaration names a missing function; the first still registers.
	dir := writePlugin(t, filepath.Join(t.TempDir(), "partial"), `{
		"name": "partial",
		"version": "1.0.0",
		"stateHandlers": [
			{"state": "login", "handler": "present"},
			{"state": "logout", "handler": "absent"}
		]
	}`, `function present(n) return true end`)

	if _, err := ld.Load(dir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if proc.HandlerCount() != 1 {
		t.Errorf("expected only the valid declaration to register, got %d", proc.HandlerCount())
	}
}

func TestLoader_Load_Duplicate(t *testing.T) {
	ld, _, _ := newTestLoader(t)

	dir := writePlugin(t, filepath.Join(t.TempDir(), "dup"),
		`{"name": "dup", "version": "1.0.0"}`, ``)

	if _, err := ld.Load(dir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ld.Load(dir); !errors.Is(err, ErrAlreadyLoaded) {
		t.Errorf("expected ErrAlreadyLoaded, got %v", err)
	}
}

func TestLoader_LoadDir(t *testing.T) {
	ld, proc, _ := newTestLoader(t)

	root := t.TempDir()
	writePlugin(t, filepath.Join(root, "one"), `{
		"name": "one",
		"version": "1.0.0",
		"stateHandlers": [{"state": "a", "handler": "h"}]
	}`, `function h(n) return true end`)
	writePlugin(t, filepath.Join(root, "two"), `{
		"name": "two",
		"version": "1.0.0",
		"stateHandlers": [{"state": "b", "handler": "h"}]
	}`, `function h(n) return true end`)

	// A directory without a manifest is skipped, not an error.
	if err := os.MkdirAll(filepath.Join(root, "not-a-plugin"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	// A broken plugin is skipped, not fatal.
	writePlugin(t, filepath.Join(root, "broken"),
		`{"name": "broken", "version": "1.0.0"}`, `not lua at all`)

	loaded, err := ld.LoadDir(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded != 2 {
		t.Errorf("expected 2 plugins loaded, got %d", loaded)
	}
	if proc.HandlerCount() != 2 {
		t.Errorf("expected 2 handlers, got %d", proc.HandlerCount())
	}

	hosts := ld.Hosts()
	if len(hosts) != 2 || hosts[0] != "one" || hosts[1] != "two" {
		t.Errorf("expected sorted host names [one two], got %v", hosts)
	}
}

func TestLoader_LoadDir_Missing(t *testing.T) {
	ld, _, _ := newTestLoader(t)

	if _, err := ld.LoadDir(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestLoader_Unload(t *testing.T) {
	ld, proc, bus := newTestLoader(t)

	dir := writePlugin(t, filepath.Join(t.TempDir(), "gone"), `{
		"name": "gone",
		"version": "1.0.0",
		"stateHandlers": [{"state": "login", "handler": "h"}]
	}`, `function h(n) return true end`)

	if _, err := ld.Load(dir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !proc.Attached() {
		t.Fatal("expected processor attached after load")
	}

	if err := ld.Unload("gone"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if proc.HandlerCount() != 0 {
		t.Errorf("expected 0 handlers after unload, got %d", proc.HandlerCount())
	}
	if proc.Attached() {
		t.Error("expected processor detached after last unload")
	}
	if _, ok := ld.Get("gone"); ok {
		t.Error("expected plugin to be forgotten")
	}

	// Publishing after unload is harmless.
	if err := bus.Publish(context.Background(), notify.New("login", nil, "")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := ld.Unload("gone"); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("expected ErrNotLoaded, got %v", err)
	}
}

func TestFallbackHandlerName(t *testing.T) {
	tests := []struct {
		state string
		want  string
	}{
		{"login", "on_login"},
		{"user.login", "on_user_login"},
		{"Session-End", "on_session_end"},
		{"a b", "on_a_b"},
		{"v2.ready", "on_v2_ready"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.state, func(t *testing.T) {
			if got := FallbackHandlerName(tt.state); got != tt.want {
				t.Errorf("FallbackHandlerName(%q) = %q, want %q", tt.state, got, tt.want)
			}
		})
	}
}

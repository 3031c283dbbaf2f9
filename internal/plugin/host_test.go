package plugin

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dshills/statewire/internal/manifest"
	"github.com/dshills/statewire/internal/notify"
	"github.com/dshills/statewire/internal/route"
)

// writePlugin creates a plugin directory with a manifest and main script.
func writePlugin(t *testing.T, dir, manifestJSON, script string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	if err := os.WriteFile(filepath.Join(dir, "plugin.json"), []byte(manifestJSON), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "init.lua"), []byte(script), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return dir
}

func loadHost(t *testing.T, manifestJSON, script string) *Host {
	t.Helper()
	dir := writePlugin(t, filepath.Join(t.TempDir(), "p"), manifestJSON, script)

	m, err := manifest.LoadFromDir(dir)
	if err != nil {
		t.Fatalf("load manifest: %v", err)
	}

	h, err := NewHost(m)
	if err != nil {
		t.Fatalf("NewHost: %v", err)
	}
	t.Cleanup(func() { _ = h.Close() })
	return h
}

func TestNewHost(t *testing.T) {
	h := loadHost(t, `{"name": "greeter", "version": "1.0.0"}`, `
function on_login(n)
  return true
end
`)

	if h.Name() != "greeter" {
		t.Errorf("expected name greeter, got %q", h.Name())
	}
	if !h.HasFunction("on_login") {
		t.Error("expected on_login to be defined")
	}
	if h.HasFunction("on_logout") {
		t.Error("expected on_logout to be absent")
	}
}

func TestNewHost_ScriptError(t *testing.T) {
	dir := writePlugin(t, filepath.Join(t.TempDir(), "p"),
		`{"name": "broken", "version": "1.0.0"}`,
		`this is not lua`)

	m, err := manifest.LoadFromDir(dir)
	if err != nil {
		t.Fatalf("load manifest: %v", err)
	}

	if _, err := NewHost(m); err == nil {
		t.Error("expected error for broken script")
	}
}

func TestHost_Call(t *testing.T) {
	h := loadHost(t, `{"name": "calc", "version": "1.0.0"}`, `
function add(a, b)
  return a + b
end
`)

	results, err := h.Call("add", 2, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0] != int64(5) {
		t.Errorf("expected [5], got %v", results)
	}
}

func TestHost_Callable_ReceivesNotification(t *testing.T) {
	h := loadHost(t, `{"name": "capture", "version": "1.0.0"}`, `
seen = nil
function on_login(n)
  seen = n
  return true
end
function dump()
  return seen
end
`)

	callable, ok := h.Callable("on_login")
	if !ok {
		t.Fatal("expected on_login callable")
	}

	fn, ok := callable.(route.NotificationFunc)
	if !ok {
		t.Fatalf("expected NotificationFunc, got %T", callable)
	}

	n := notify.New("login", map[string]any{"user": "ada"}, "auth")
	if err := fn(context.Background(), n); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	results, err := h.Call("dump")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	seen, ok := results[0].(map[string]any)
	if !ok {
		t.Fatalf("expected table result, got %T", results[0])
	}
	if seen["state"] != "login" || seen["source"] != "auth" {
		t.Errorf("unexpected notification table: %v", seen)
	}
	params, ok := seen["params"].(map[string]any)
	if !ok || params["user"] != "ada" {
		t.Errorf("unexpected params: %v", seen["params"])
	}
}

func TestHost_Callable_Missing(t *testing.T) {
	h := loadHost(t, `{"name": "empty", "version": "1.0.0"}`, ``)

	if _, ok := h.Callable("undefined"); ok {
		t.Error("expected no callable for undefined function")
	}
}

func TestHost_Callable_FailureConventions(t *testing.T) {
	h := loadHost(t, `{"name": "conventions", "version": "1.0.0"}`, `
function ok() return true end
function silent() end
function fails() return false end
function fails_msg() return false, "bad credentials" end
function fails_str() return "string failure" end
function fails_table() return {error = "table failure"} end
function throws() error("lua raised") end
`)

	tests := []struct {
		fn      string
		wantErr bool
		contain string
	}{
		{"ok", false, ""},
		{"silent", false, ""},
		{"fails", true, "returned failure"},
		{"fails_msg", true, "bad credentials"},
		{"fails_str", true, "string failure"},
		{"fails_table", true, "table failure"},
		{"throws", true, "lua raised"},
	}

	for _, tt := range tests {
		t.Run(tt.fn, func(t *testing.T) {
			callable, ok := h.Callable(tt.fn)
			if !ok {
				t.Fatalf("expected callable %s", tt.fn)
			}
			fn := callable.(route.NotificationFunc)

			err := fn(context.Background(), notify.New("s", nil, ""))
			if tt.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.contain != "" && !strings.Contains(err.Error(), tt.contain) {
				t.Errorf("expected error to contain %q, got %v", tt.contain, err)
			}
		})
	}
}

func TestHost_LogAPI(t *testing.T) {
	// The statewire module is available to scripts at load time.
	h := loadHost(t, `{"name": "noisy", "version": "1.0.0"}`, `
statewire.log_info("plugin loaded")
function on_login() return true end
`)

	if !h.HasFunction("on_login") {
		t.Error("expected script using the log API to load")
	}
}

func TestHost_Close(t *testing.T) {
	h := loadHost(t, `{"name": "closable", "version": "1.0.0"}`, `function f() return true end`)

	if err := h.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := h.Call("f"); err == nil {
		t.Error("expected error calling a closed host")
	}
}

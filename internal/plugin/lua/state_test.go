package lua

import (
	"errors"
	"testing"

	lua "github.com/yuin/gopher-lua"
)

func newTestState(t *testing.T) *State {
	t.Helper()
	s, err := NewState()
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestState_DoString(t *testing.T) {
	s := newTestState(t)

	if err := s.DoString(`x = 1 + 2`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := s.L.GetGlobal("x"); got != lua.LNumber(3) {
		t.Errorf("expected x == 3, got %v", got)
	}
}

func TestState_DoString_SyntaxError(t *testing.T) {
	s := newTestState(t)

	if err := s.DoString(`this is not lua`); err == nil {
		t.Error("expected syntax error")
	}
}

func TestState_HasFunction(t *testing.T) {
	s := newTestState(t)

	if err := s.DoString(`function on_login() end; not_a_function = 42`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !s.HasFunction("on_login") {
		t.Error("expected on_login to exist")
	}
	if s.HasFunction("not_a_function") {
		t.Error("expected non-function global to report false")
	}
	if s.HasFunction("undefined") {
		t.Error("expected undefined global to report false")
	}
}

func TestState_Call(t *testing.T) {
	s := newTestState(t)

	if err := s.DoString(`function add(a, b) return a + b end`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	results, err := s.Call("add", lua.LNumber(2), lua.LNumber(3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0] != lua.LNumber(5) {
		t.Errorf("expected [5], got %v", results)
	}
}

func TestState_Call_NoReturn(t *testing.T) {
	s := newTestState(t)

	if err := s.DoString(`function quiet() end`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	results, err := s.Call("quiet")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results == nil || len(results) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", results)
	}
}

func TestState_Call_MultipleReturns(t *testing.T) {
	s := newTestState(t)

	if err := s.DoString(`function pair() return false, "reason" end`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	results, err := s.Call("pair")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0] != lua.LFalse || results[1] != lua.LString("reason") {
		t.Errorf("unexpected results: %v", results)
	}
}

func TestState_Call_Errors(t *testing.T) {
	s := newTestState(t)

	if err := s.DoString(`scalar = 1; function throws() error("lua failure") end`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := s.Call("missing"); err == nil {
		t.Error("expected error for missing function")
	}
	if _, err := s.Call("scalar"); !errors.Is(err, ErrNotFunction) {
		t.Errorf("expected ErrNotFunction, got %v", err)
	}
	if _, err := s.Call("throws"); err == nil {
		t.Error("expected runtime error to propagate")
	}
}

func TestState_RegisterModule(t *testing.T) {
	s := newTestState(t)

	var got string
	s.RegisterModule("host", map[string]lua.LGFunction{
		"record": func(L *lua.LState) int {
			got = L.CheckString(1)
			return 0
		},
	})

	if err := s.DoString(`host.record("from lua")`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "from lua" {
		t.Errorf("expected registered function to run, got %q", got)
	}
}

func TestState_SandboxExcludesUnsafeLibs(t *testing.T) {
	s := newTestState(t)

	tests := []string{"io", "os", "debug", "package"}
	for _, lib := range tests {
		t.Run(lib, func(t *testing.T) {
			if got := s.L.GetGlobal(lib); got != lua.LNil {
				t.Errorf("expected %s to be absent, got %v", lib, got)
			}
		})
	}

	// Safe libraries remain usable.
	if err := s.DoString(`local _ = string.upper("ok") .. tostring(math.floor(1.5))`); err != nil {
		t.Errorf("expected safe libraries to work: %v", err)
	}
}

func TestState_Close(t *testing.T) {
	s, err := NewState()
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.IsClosed() {
		t.Error("expected IsClosed true")
	}

	// Idempotent.
	if err := s.Close(); err != nil {
		t.Errorf("expected second close to be a no-op, got %v", err)
	}

	if err := s.DoString(`x = 1`); !errors.Is(err, ErrStateClosed) {
		t.Errorf("expected ErrStateClosed, got %v", err)
	}
	if _, err := s.Call("anything"); !errors.Is(err, ErrStateClosed) {
		t.Errorf("expected ErrStateClosed, got %v", err)
	}
	if s.HasFunction("anything") {
		t.Error("expected HasFunction false on closed state")
	}
}

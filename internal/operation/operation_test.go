package operation

import (
	"context"
	"testing"

	"github.com/opsforge/sshops/internal/connector"
)

// mockOperation is a simple operation for testing
type mockOperation struct {
	name string
}

func (m *mockOperation) Name() string {
	return m.name
}

func (m *mockOperation) Run(ctx context.Context, conn connector.Connector, params map[string]any) (*Result, error) {
	return OK("mock executed"), nil
}

func TestRegisterAndGet(t *testing.T) {
	// Use a unique name to avoid conflicts with other registered operations
	op := &mockOperation{name: "test_mock_operation_unique"}

	Register(op)

	got := Get("test_mock_operation_unique")
	if got == nil {
		t.Fatal("expected to find registered operation")
	}
	if got.Name() != "test_mock_operation_unique" {
		t.Errorf("expected name 'test_mock_operation_unique', got %q", got.Name())
	}
}

func TestGetUnknown(t *testing.T) {
	got := Get("nonexistent_operation_xyz")
	if got != nil {
		t.Errorf("expected nil for unknown operation, got %v", got)
	}
}

func TestList(t *testing.T) {
	Register(&mockOperation{name: "test_list_operation"})

	names := List()
	if len(names) == 0 {
		t.Error("expected non-empty operation list")
	}

	found := false
	for _, name := range names {
		if name == "test_list_operation" {
			found = true
			break
		}
	}
	if !found {
		t.Error("test_list_operation not found in List()")
	}
}

func TestResultHelpers(t *testing.T) {
	t.Run("OK", func(t *testing.T) {
		r := OK("done")
		if r.Message != "done" {
			t.Errorf("expected message 'done', got %q", r.Message)
		}
		if r.Data != nil {
			t.Errorf("expected nil data, got %v", r.Data)
		}
	})

	t.Run("OKWithData", func(t *testing.T) {
		data := map[string]any{"key": "value"}
		r := OKWithData("with data", data)
		if r.Message != "with data" {
			t.Errorf("expected message 'with data', got %q", r.Message)
		}
		if r.Data["key"] != "value" {
			t.Errorf("expected data key 'value', got %v", r.Data["key"])
		}
	})
}

func TestParamHelpers(t *testing.T) {
	params := map[string]any{
		"name":  "value",
		"empty": "",
		"num":   7,
		"flag":  true,
	}

	t.Run("RequireString", func(t *testing.T) {
		v, err := RequireString(params, "name")
		if err != nil || v != "value" {
			t.Errorf("expected 'value', got %q (err: %v)", v, err)
		}
		if _, err := RequireString(params, "missing"); err == nil {
			t.Error("expected error for missing parameter")
		}
		if _, err := RequireString(params, "empty"); err == nil {
			t.Error("expected error for empty parameter")
		}
		if _, err := RequireString(params, "num"); err == nil {
			t.Error("expected error for non-string parameter")
		}
	})

	t.Run("GetString", func(t *testing.T) {
		if v := GetString(params, "name", "d"); v != "value" {
			t.Errorf("expected 'value', got %q", v)
		}
		if v := GetString(params, "missing", "d"); v != "d" {
			t.Errorf("expected default, got %q", v)
		}
	})

	t.Run("GetBool", func(t *testing.T) {
		if !GetBool(params, "flag", false) {
			t.Error("expected true")
		}
		if GetBool(params, "missing", false) {
			t.Error("expected default false")
		}
	})

	t.Run("GetInt", func(t *testing.T) {
		if v := GetInt(params, "num", 0); v != 7 {
			t.Errorf("expected 7, got %d", v)
		}
		if v := GetInt(params, "missing", 3); v != 3 {
			t.Errorf("expected default 3, got %d", v)
		}
	})
}

func TestShellQuote(t *testing.T) {
	cases := map[string]string{
		"simple":       "'simple'",
		"with space":   "'with space'",
		"it's":         `'it'"'"'s'`,
		"$HOME; rm -f": `'$HOME; rm -f'`,
	}

	for in, want := range cases {
		if got := ShellQuote(in); got != want {
			t.Errorf("ShellQuote(%q) = %q, want %q", in, got, want)
		}
	}
}

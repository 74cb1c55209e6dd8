package check

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestRegistry_ResolveUnknown(t *testing.T) {
	r := NewRegistry()

	_, err := r.Resolve("no-such-check", nil)
	if err == nil {
		t.Fatal("expected error for unknown check")
	}

	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("error %T is not *ConfigurationError", err)
	}
	if cfgErr.Identifier != "no-such-check" {
		t.Errorf("Identifier = %q", cfgErr.Identifier)
	}
	if !errors.Is(err, ErrUnknownCheck) {
		t.Error("error does not wrap ErrUnknownCheck")
	}
}

func TestRegistry_RegisterDuplicatePanics(t *testing.T) {
	r := NewRegistry()
	r.Register("x", stateless(HeaderLength{}))

	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	r.Register("x", stateless(HeaderLength{}))
}

func TestRegistry_BadParams(t *testing.T) {
	_, err := Default().Resolve("forbidden-value", Params{"values": []any{"x"}})
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("error = %v, want *ConfigurationError", err)
	}
}

func TestDefault_HasBuiltins(t *testing.T) {
	for _, id := range append(Builtins, "bare-number", "duplicate-row", "forbidden-value", "truncated-value") {
		if !Default().Has(id) {
			t.Errorf("default registry missing %q", id)
		}
	}

	checks, err := ResolveBuiltins(Default())
	if err != nil {
		t.Fatalf("ResolveBuiltins error = %v", err)
	}
	for i, c := range checks {
		if c.Type() != Builtins[i] {
			t.Errorf("builtin %d = %q, want %q", i, c.Type(), Builtins[i])
		}
	}
}

func TestRegistry_ExtensionCheck(t *testing.T) {
	r := NewRegistry()
	r.Register("always-empty", func(Params) (Check, error) { return TruncatedValue{}, nil })

	c, err := r.Resolve("always-empty", nil)
	if err != nil {
		t.Fatalf("Resolve error = %v", err)
	}
	if _, ok := c.(RowCheck); !ok {
		t.Errorf("resolved check %T is not a RowCheck", c)
	}
}

func TestDescriptor_UnmarshalJSON(t *testing.T) {
	var descs []Descriptor
	data := `[{"type":"forbidden-value","fieldName":"a","values":[1,"b"]},{"code":"bare-number"}]`
	if err := json.Unmarshal([]byte(data), &descs); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}
	if len(descs) != 2 {
		t.Fatalf("got %d descriptors, want 2", len(descs))
	}
	if descs[0].Type != "forbidden-value" || descs[1].Type != "bare-number" {
		t.Errorf("types = %q, %q", descs[0].Type, descs[1].Type)
	}
	if _, ok := descs[0].Params["type"]; ok {
		t.Error("type key left in params")
	}

	values, err := descs[0].Params.Strings("values")
	if err != nil || len(values) != 2 || values[0] != "1" {
		t.Errorf("values = %v, err = %v", values, err)
	}

	checks, err := Default().ResolveAll(descs)
	if err != nil {
		t.Fatalf("ResolveAll error = %v", err)
	}
	if len(checks) != 2 {
		t.Errorf("resolved %d checks, want 2", len(checks))
	}
}

func TestDescriptor_MissingType(t *testing.T) {
	var d Descriptor
	if err := json.Unmarshal([]byte(`{"fieldName":"a"}`), &d); err == nil {
		t.Error("expected error for descriptor without type")
	}
}

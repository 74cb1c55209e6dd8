package scan

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/JonMunkholm/tabcheck/internal/check"
)

func TestParseRawOptions(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		keys    int
		wantErr bool
	}{
		{"empty", ``, 0, false},
		{"null", `null`, 0, false},
		{"object", `{"dialect":{"delimiter":";"},"limitRows":5}`, 2, false},
		{"string encoded", `"{\"limitRows\": 5}"`, 1, false},
		{"malformed", `{"dialect":`, 0, true},
		{"malformed string", `"{oops"`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := ParseRawOptions([]byte(tt.in))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRawOptions error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				var ce *check.ConfigurationError
				if !errors.As(err, &ce) {
					t.Errorf("error %T is not a *check.ConfigurationError", err)
				}
				return
			}
			if len(o) != tt.keys {
				t.Errorf("len = %d, want %d", len(o), tt.keys)
			}
		})
	}
}

func TestMerge_OverrideWinsPerKey(t *testing.T) {
	defaults := RawOptions{
		"limitErrors": json.RawMessage(`10`),
		"dialect":     json.RawMessage(`{"delimiter":";"}`),
	}
	override := RawOptions{"dialect": json.RawMessage(`{"delimiter":"|"}`)}

	merged := Merge(defaults, override)

	if string(merged["limitErrors"]) != `10` {
		t.Errorf("limitErrors = %s, want 10", merged["limitErrors"])
	}
	if string(merged["dialect"]) != `{"delimiter":"|"}` {
		t.Errorf("dialect = %s, want the override", merged["dialect"])
	}
	if string(defaults["dialect"]) != `{"delimiter":";"}` {
		t.Error("Merge modified its input")
	}
}

func TestBuild(t *testing.T) {
	o := RawOptions{
		"dialect":   json.RawMessage(`{"delimiter":";"}`),
		"checks":    json.RawMessage(`[{"type":"bare-number"},{"code":"forbidden-value","fieldName":"a","values":["x"]}]`),
		"limitRows": json.RawMessage(`50`),
		"unknown":   json.RawMessage(`true`),
	}

	opts, err := o.Build()
	if err != nil {
		t.Fatalf("Build error = %v", err)
	}
	if opts.Dialect.Delimiter != ";" {
		t.Errorf("Delimiter = %q, want ';'", opts.Dialect.Delimiter)
	}
	if len(opts.Checks) != 2 || opts.Checks[1].Type != "forbidden-value" {
		t.Errorf("Checks = %+v", opts.Checks)
	}
	if opts.LimitRows != 50 {
		t.Errorf("LimitRows = %d, want 50", opts.LimitRows)
	}
	if opts.LimitErrors != DefaultLimitErrors {
		t.Errorf("LimitErrors = %d, want %d", opts.LimitErrors, DefaultLimitErrors)
	}
}

func TestBuild_Invalid(t *testing.T) {
	tests := []RawOptions{
		{"dialect": json.RawMessage(`{"delimiter":"ab"}`)},
		{"checks": json.RawMessage(`[{"fieldName":"a"}]`)},
		{"checks": json.RawMessage(`{"type":"bare-number"}`)},
		{"limitErrors": json.RawMessage(`-1`)},
		{"limitRows": json.RawMessage(`"ten"`)},
	}

	for _, o := range tests {
		_, err := o.Build()
		var ce *check.ConfigurationError
		if !errors.As(err, &ce) {
			t.Errorf("Build(%v) error = %v, want *check.ConfigurationError", o, err)
		}
	}
}

func TestLoadOptionsFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "options.yaml")
	content := `
dialect:
  delimiter: ";"
checks:
  - type: forbidden-value
    fieldName: status
    values: [draft, tbd]
limitErrors: 20
`
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	o, err := LoadOptionsFile(p)
	if err != nil {
		t.Fatalf("LoadOptionsFile error = %v", err)
	}
	opts, err := o.Build()
	if err != nil {
		t.Fatalf("Build error = %v", err)
	}
	if opts.Dialect.Delimiter != ";" || opts.LimitErrors != 20 {
		t.Errorf("opts = %+v", opts)
	}
	if len(opts.Checks) != 1 || opts.Checks[0].Type != "forbidden-value" {
		t.Errorf("Checks = %+v", opts.Checks)
	}
}

func TestLoadDefaults(t *testing.T) {
	p := filepath.Join(t.TempDir(), "options.yaml")
	if err := os.WriteFile(p, []byte("limitErrors: 20\nlimitRows: 5\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	o, err := LoadDefaults(`{"limitErrors": 3}`, p)
	if err != nil {
		t.Fatalf("LoadDefaults error = %v", err)
	}
	opts, err := o.Build()
	if err != nil {
		t.Fatalf("Build error = %v", err)
	}
	if opts.LimitErrors != 3 {
		t.Errorf("LimitErrors = %d, want the JSON value 3", opts.LimitErrors)
	}
	if opts.LimitRows != 5 {
		t.Errorf("LimitRows = %d, want the file value 5", opts.LimitRows)
	}

	if _, err := LoadDefaults(`{"limitRows": "ten"}`, ""); err == nil {
		t.Error("LoadDefaults should reject options that do not build")
	}
	if _, err := LoadDefaults("", filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadDefaults should fail on a missing file")
	}
}

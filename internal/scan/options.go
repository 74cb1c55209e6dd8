package scan

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/tabcheck/internal/check"
	"github.com/JonMunkholm/tabcheck/internal/table"
)

// DefaultLimitErrors caps the errors collected for one table.
const DefaultLimitErrors = 1000

// RawOptions is the declarative form of validation options: option name to
// its JSON value. Defaults and resource overrides are merged in this form.
type RawOptions map[string]json.RawMessage

// ParseRawOptions decodes a serialized options document. Empty input yields
// no options. A JSON string holding an object is unwrapped, since catalogs
// often store per-resource options as text.
func ParseRawOptions(data []byte) (RawOptions, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" || string(data) == `""` {
		return RawOptions{}, nil
	}
	if data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return nil, optionsErr(err)
		}
		return ParseRawOptions([]byte(text))
	}

	var o RawOptions
	if err := json.Unmarshal(data, &o); err != nil {
		return nil, optionsErr(err)
	}
	if o == nil {
		o = RawOptions{}
	}
	return o, nil
}

// LoadOptionsFile reads default options from a YAML (or JSON) file.
func LoadOptionsFile(path string) (RawOptions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read options file: %w", err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, optionsErr(fmt.Errorf("%s: %w", path, err))
	}

	o := make(RawOptions, len(doc))
	for k, v := range doc {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, optionsErr(fmt.Errorf("%s: option %q: %w", path, k, err))
		}
		o[k] = b
	}
	return o, nil
}

// LoadDefaults builds the process-wide default options from an optional
// YAML file and a JSON document. Keys in the JSON document win.
func LoadDefaults(jsonText, file string) (RawOptions, error) {
	fromFile := RawOptions{}
	if file != "" {
		var err error
		if fromFile, err = LoadOptionsFile(file); err != nil {
			return nil, err
		}
	}
	fromEnv, err := ParseRawOptions([]byte(jsonText))
	if err != nil {
		return nil, err
	}
	defaults := Merge(fromFile, fromEnv)

	// Fail on startup rather than on every run.
	if _, err := defaults.Build(); err != nil {
		return nil, err
	}
	return defaults, nil
}

// Merge returns base overridden per key by each of overrides in turn.
// Neither input is modified.
func Merge(base RawOptions, overrides ...RawOptions) RawOptions {
	out := make(RawOptions, len(base))
	for k, v := range base {
		out[k] = v
	}
	for _, o := range overrides {
		for k, v := range o {
			out[k] = v
		}
	}
	return out
}

// Options are the effective options of one run. They are built once per
// run and not modified afterwards.
type Options struct {
	Dialect     table.Dialect
	Checks      []check.Descriptor
	LimitErrors int
	LimitRows   int // 0 means no limit

	// Client fetches remote sources. It is injected by source resolution
	// and never read from declarative options.
	Client *http.Client
}

// Build decodes the recognized options. Unknown keys are ignored.
func (o RawOptions) Build() (Options, error) {
	opts := Options{LimitErrors: DefaultLimitErrors}

	if raw, ok := o["dialect"]; ok {
		d, err := table.ParseDialect(raw)
		if err != nil {
			return opts, &check.ConfigurationError{Op: "dialect", Err: err}
		}
		opts.Dialect = d
	}

	if raw, ok := o["checks"]; ok && !isNull(raw) {
		if err := json.Unmarshal(raw, &opts.Checks); err != nil {
			return opts, &check.ConfigurationError{Op: "checks", Err: err}
		}
	}

	for key, dst := range map[string]*int{"limitErrors": &opts.LimitErrors, "limitRows": &opts.LimitRows} {
		raw, ok := o[key]
		if !ok || isNull(raw) {
			continue
		}
		var n int
		if err := json.Unmarshal(raw, &n); err != nil || n < 0 {
			return opts, &check.ConfigurationError{Op: "options", Identifier: key, Err: fmt.Errorf("must be a non-negative integer, got %s", raw)}
		}
		*dst = n
	}
	if opts.LimitErrors == 0 {
		opts.LimitErrors = DefaultLimitErrors
	}
	return opts, nil
}

func isNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || string(bytes.TrimSpace(raw)) == "null"
}

func optionsErr(err error) error {
	return &check.ConfigurationError{Op: "options", Err: err}
}

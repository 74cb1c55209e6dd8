package check

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownCheck is wrapped by ConfigurationError when an identifier has no
// registered factory.
var ErrUnknownCheck = errors.New("unknown check")

// ConfigurationError reports declarative configuration the run cannot use:
// an unknown check identifier, bad check parameters, or malformed options.
type ConfigurationError struct {
	Op         string // what was being configured: "check", "options", "dialect", "schema"
	Identifier string
	Err        error
}

func (e *ConfigurationError) Error() string {
	if e.Identifier != "" {
		return fmt.Sprintf("configuration: %s %q: %v", e.Op, e.Identifier, e.Err)
	}
	return fmt.Sprintf("configuration: %s: %v", e.Op, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Factory builds a check from its descriptor parameters.
type Factory func(params Params) (Check, error)

// Registry maps check identifiers to factories.
// It is populated at startup and read-only afterwards.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under id.
// Panics if id is empty or already registered.
func (r *Registry) Register(id string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id == "" {
		panic("check: empty identifier")
	}
	if _, exists := r.factories[id]; exists {
		panic(fmt.Sprintf("check already registered: %s", id))
	}
	r.factories[id] = f
}

// Resolve builds the check registered under id.
// Returns a *ConfigurationError wrapping ErrUnknownCheck if id is unknown.
func (r *Registry) Resolve(id string, params Params) (Check, error) {
	r.mu.RLock()
	f, ok := r.factories[id]
	r.mu.RUnlock()

	if !ok {
		return nil, &ConfigurationError{Op: "check", Identifier: id, Err: ErrUnknownCheck}
	}
	c, err := f(params)
	if err != nil {
		return nil, &ConfigurationError{Op: "check", Identifier: id, Err: err}
	}
	return c, nil
}

// ResolveAll resolves descriptors in order, stopping at the first failure.
func (r *Registry) ResolveAll(descs []Descriptor) ([]Check, error) {
	checks := make([]Check, 0, len(descs))
	for _, d := range descs {
		c, err := r.Resolve(d.Type, d.Params)
		if err != nil {
			return nil, err
		}
		checks = append(checks, c)
	}
	return checks, nil
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[id]
	return ok
}

// IDs returns all registered identifiers, sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.factories))
	for id := range r.factories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry holding the built-in checks.
func Default() *Registry { return defaultRegistry }

// Register adds a factory to the process-wide registry.
// Extension packages call this from init.
func Register(id string, f Factory) { defaultRegistry.Register(id, f) }

// Descriptor names a check and its parameters, as found in the "checks"
// validation option: {"type": "forbidden-value", "fieldName": "x", ...}.
// The legacy key "code" is accepted in place of "type".
type Descriptor struct {
	Type   string
	Params Params
}

// UnmarshalJSON decodes a descriptor object.
func (d *Descriptor) UnmarshalJSON(b []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("check descriptor: %w", err)
	}

	id, _ := raw["type"].(string)
	if id == "" {
		id, _ = raw["code"].(string)
	}
	if id == "" {
		return errors.New("check descriptor: missing \"type\"")
	}
	delete(raw, "type")
	delete(raw, "code")

	d.Type = id
	d.Params = Params(raw)
	return nil
}

// MarshalJSON encodes the descriptor back to its flat object form.
func (d Descriptor) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(d.Params)+1)
	for k, v := range d.Params {
		out[k] = v
	}
	out["type"] = d.Type
	return json.Marshal(out)
}

// Params are the descriptor parameters of one check.
type Params map[string]any

// String returns a string parameter, or "" when absent.
func (p Params) String(key string) (string, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("parameter %q must be a string", key)
	}
	return s, nil
}

// Int returns an integer parameter, or def when absent.
func (p Params) Int(key string, def int) (int, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return def, nil
	}
	switch n := v.(type) {
	case float64:
		if n != float64(int(n)) {
			return 0, fmt.Errorf("parameter %q must be an integer", key)
		}
		return int(n), nil
	case int:
		return n, nil
	default:
		return 0, fmt.Errorf("parameter %q must be an integer", key)
	}
}

// Strings returns a list parameter rendered as strings.
func (p Params) Strings(key string) ([]string, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("parameter %q must be a list", key)
	}
	out := make([]string, len(list))
	for i, item := range list {
		out[i] = CellString(item)
	}
	return out, nil
}

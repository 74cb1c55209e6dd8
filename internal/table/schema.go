package table

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Field types understood by the caster.
const (
	TypeString   = "string"
	TypeInteger  = "integer"
	TypeNumber   = "number"
	TypeBoolean  = "boolean"
	TypeDate     = "date"
	TypeDatetime = "datetime"
	TypeAny      = "any"
)

// Schema is the subset of a Table Schema descriptor the scan enforces.
type Schema struct {
	Fields        []Field  `json:"fields"`
	MissingValues []string `json:"missingValues,omitempty"`
}

// Field describes one column.
type Field struct {
	Name        string      `json:"name"`
	Type        string      `json:"type,omitempty"`
	Format      string      `json:"format,omitempty"`
	Constraints Constraints `json:"constraints,omitempty"`

	pattern *regexp.Regexp
}

// Constraints restrict the values of a field.
type Constraints struct {
	Required  bool     `json:"required,omitempty"`
	Unique    bool     `json:"unique,omitempty"`
	Enum      []any    `json:"enum,omitempty"`
	MinLength *int     `json:"minLength,omitempty"`
	MaxLength *int     `json:"maxLength,omitempty"`
	Minimum   *float64 `json:"minimum,omitempty"`
	Maximum   *float64 `json:"maximum,omitempty"`
	Pattern   string   `json:"pattern,omitempty"`
}

// ParseSchema builds a Schema from a descriptor. The descriptor may be an
// object or a JSON string holding one, as catalogs often store it as text.
// An empty descriptor yields a nil schema.
func ParseSchema(raw json.RawMessage) (*Schema, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" || string(raw) == `""` || string(raw) == "{}" {
		return nil, nil
	}

	if raw[0] == '"' {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return nil, fmt.Errorf("schema descriptor: %w", err)
		}
		return ParseSchema(json.RawMessage(text))
	}

	var s Schema
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("schema descriptor: %w", err)
	}
	if err := s.compile(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Schema) compile() error {
	if len(s.Fields) == 0 {
		return errors.New("schema descriptor: no fields")
	}
	for i := range s.Fields {
		f := &s.Fields[i]
		if f.Name == "" {
			return fmt.Errorf("schema descriptor: field %d has no name", i+1)
		}
		if f.Type == "" {
			f.Type = TypeString
		}
		switch f.Type {
		case TypeString, TypeInteger, TypeNumber, TypeBoolean, TypeDate, TypeDatetime, TypeAny:
		default:
			return fmt.Errorf("schema descriptor: field %q has unsupported type %q", f.Name, f.Type)
		}
		if p := f.Constraints.Pattern; p != "" {
			re, err := regexp.Compile("^(?:" + p + ")$")
			if err != nil {
				return fmt.Errorf("schema descriptor: field %q pattern: %w", f.Name, err)
			}
			f.pattern = re
		}
	}
	if len(s.MissingValues) == 0 {
		s.MissingValues = []string{""}
	}
	return nil
}

// FieldNames returns the declared field names in order.
func (s *Schema) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// IsMissing reports whether raw is one of the schema's missing values.
func (s *Schema) IsMissing(raw string) bool {
	for _, mv := range s.MissingValues {
		if raw == mv {
			return true
		}
	}
	return false
}

// CheckConstraints returns the name and note of the first constraint the
// cast value v (raw text raw) violates. Required is checked by the caller
// because it applies to missing values.
func (f Field) CheckConstraints(v any, raw string) (string, string, bool) {
	c := f.Constraints

	if c.MinLength != nil && utf8.RuneCountInString(raw) < *c.MinLength {
		return "minLength", fmt.Sprintf("constraint \"minLength\" is \"%d\"", *c.MinLength), false
	}
	if c.MaxLength != nil && utf8.RuneCountInString(raw) > *c.MaxLength {
		return "maxLength", fmt.Sprintf("constraint \"maxLength\" is \"%d\"", *c.MaxLength), false
	}
	if n, ok := numeric(v); ok {
		if c.Minimum != nil && n < *c.Minimum {
			return "minimum", fmt.Sprintf("constraint \"minimum\" is \"%v\"", *c.Minimum), false
		}
		if c.Maximum != nil && n > *c.Maximum {
			return "maximum", fmt.Sprintf("constraint \"maximum\" is \"%v\"", *c.Maximum), false
		}
	}
	if f.pattern != nil && !f.pattern.MatchString(raw) {
		return "pattern", fmt.Sprintf("constraint \"pattern\" is \"%s\"", c.Pattern), false
	}
	if len(c.Enum) > 0 && !inEnum(raw, c.Enum) {
		vals := make([]string, len(c.Enum))
		for i, e := range c.Enum {
			vals[i] = fmt.Sprint(e)
		}
		return "enum", fmt.Sprintf("constraint \"enum\" is \"[%s]\"", strings.Join(vals, ", ")), false
	}
	return "", "", true
}

func inEnum(raw string, enum []any) bool {
	for _, e := range enum {
		if fmt.Sprint(e) == raw {
			return true
		}
	}
	return false
}

func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

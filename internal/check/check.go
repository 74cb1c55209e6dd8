// Package check defines the contract every table check implements, the
// structured findings checks emit, and the registry that resolves checks by
// identifier from declarative configuration.
//
// A check inspects the label row once before any data row is seen
// ([HeaderCheck]), every data row in order ([RowCheck]), or both. Findings
// never abort a scan; they accumulate into the report. A check that cannot
// evaluate a unit (an empty label, a non-text cell) skips it silently.
package check

import "fmt"

// Error kinds a check may emit. They classify findings in the report and
// are never used for control flow.
const (
	KindForbiddenLabel = "forbidden-label"
	KindForbiddenValue = "forbidden-value"
	KindDuplicateRow   = "duplicate-row"
	KindTruncatedValue = "truncated-value"
)

// Check is the common part of every check.
type Check interface {
	// Type returns the registry identifier of the check.
	Type() string
	// ErrorTypes lists the finding kinds the check can emit.
	ErrorTypes() []string
}

// HeaderCheck inspects the full label set exactly once per scan, before the
// first data row.
type HeaderCheck interface {
	Check
	ValidateHeader(h Header) []Finding
}

// RowCheck inspects one data row at a time, in file order.
type RowCheck interface {
	Check
	ValidateRow(row Row) []Finding
}

// Header is the label row as originally declared by the table.
type Header struct {
	Labels     []string
	RowNumbers []int // physical rows the header spans, 1-based
}

// Row is one data row delivered to row checks.
//
// Cells hold values cast by the schema (or by inference when no schema is
// declared): text cells are strings, numeric cells are int64 or float64,
// booleans are bool. A nil cell is an empty value.
type Row struct {
	Number     int // 1-based physical row number
	Labels     []string
	FieldNames []string
	Cells      []any
}

// Text returns the cell at position i when it is textual.
func (r Row) Text(i int) (string, bool) {
	if i < 0 || i >= len(r.Cells) {
		return "", false
	}
	s, ok := r.Cells[i].(string)
	return s, ok
}

// FieldName returns the field name at position i, falling back to the label.
func (r Row) FieldName(i int) string {
	if i < len(r.FieldNames) && r.FieldNames[i] != "" {
		return r.FieldNames[i]
	}
	if i < len(r.Labels) {
		return r.Labels[i]
	}
	return fmt.Sprintf("field%d", i+1)
}

// Finding is one structured violation reported by a check.
type Finding struct {
	Type        string   `json:"type"`
	Note        string   `json:"note"`
	Label       string   `json:"label,omitempty"`
	Labels      []string `json:"labels,omitempty"`
	RowNumbers  []int    `json:"rowNumbers,omitempty"`
	RowNumber   int      `json:"rowNumber,omitempty"`
	FieldNumber int      `json:"fieldNumber,omitempty"`
	FieldName   string   `json:"fieldName,omitempty"`
	Cell        string   `json:"cell,omitempty"`
	Cells       []string `json:"cells,omitempty"`
}

// labelFinding builds a forbidden-label finding for the label at position i.
func labelFinding(h Header, i int, note string) Finding {
	return Finding{
		Type:        KindForbiddenLabel,
		Note:        note,
		Label:       h.Labels[i],
		Labels:      append([]string(nil), h.Labels...),
		RowNumbers:  append([]int(nil), h.RowNumbers...),
		FieldNumber: i + 1,
		FieldName:   h.Labels[i],
	}
}

// cellFinding builds a finding for the cell at position i of row.
func cellFinding(kind string, row Row, i int, note string) Finding {
	return Finding{
		Type:        kind,
		Note:        note,
		RowNumber:   row.Number,
		FieldNumber: i + 1,
		FieldName:   row.FieldName(i),
		Cell:        CellString(row.Cells[i]),
		Cells:       cellStrings(row.Cells),
	}
}

// CellString renders a cell value the way it appears in a report.
func CellString(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	default:
		return fmt.Sprint(c)
	}
}

func cellStrings(cells []any) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = CellString(c)
	}
	return out
}

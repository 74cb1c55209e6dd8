package check

import "testing"

func textRow(cells ...any) Row {
	labels := make([]string, len(cells))
	for i := range cells {
		labels[i] = "col" + string(rune('a'+i))
	}
	return Row{Number: 2, Labels: labels, Cells: cells}
}

func TestForbiddenMarkers(t *testing.T) {
	tests := []struct {
		name  string
		cell  any
		fires bool
	}{
		{"plain", "hello world", false},
		{"tab", "a\tb", true},
		{"newline", "line one\nline two", true},
		{"bullet", "• item", true},
		{"leading dash", "- item", true},
		{"inner dash", "a - b", true},
		{"hyphenated", "well-known", false},
		{"asterisk list", "* item", true},
		{"lone asterisk", "5*3", false},
		{"em-dash artifact", "before â€” after", true},
		{"trailing newline trimmed", "value\n", false},
		{"trailing dash space trimmed", "value - ", false},
		{"integer cell", int64(42), false},
		{"float cell", 4.2, false},
		{"nil cell", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ForbiddenMarkers{}.ValidateRow(textRow(tt.cell))
			if fired := len(got) == 1; fired != tt.fires {
				t.Errorf("ForbiddenMarkers(%q) fired = %v, want %v", tt.cell, fired, tt.fires)
			}
		})
	}
}

func TestForbiddenMarkers_OnePerCell(t *testing.T) {
	row := textRow("• a\n- b\tc", "ok", "x\ty")

	got := ForbiddenMarkers{}.ValidateRow(row)
	if len(got) != 2 {
		t.Fatalf("got %d findings, want 2", len(got))
	}
	if got[0].FieldNumber != 1 || got[1].FieldNumber != 3 {
		t.Errorf("field numbers = %d,%d, want 1,3", got[0].FieldNumber, got[1].FieldNumber)
	}
	if got[0].RowNumber != 2 {
		t.Errorf("RowNumber = %d, want 2", got[0].RowNumber)
	}
	if got[0].Note != noteForbiddenMarkers {
		t.Errorf("Note = %q", got[0].Note)
	}
}

func TestBareNumber(t *testing.T) {
	tests := []struct {
		name  string
		cell  any
		fires bool
	}{
		{"spaced dollar", "$ 42.50", true},
		{"dollar", "$42", true},
		{"trailing dollar", "42$", true},
		{"zero", "$0", true},
		{"negative", "$-3.5", true},
		{"not a number", "$N/A", false},
		{"only symbol", "$", false},
		{"no symbol", "42.50", false},
		{"prose", "costs $5 each", false},
		{"numeric cell", 42.5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BareNumber{}.ValidateRow(textRow(tt.cell))
			if fired := len(got) == 1; fired != tt.fires {
				t.Errorf("BareNumber(%q) fired = %v, want %v", tt.cell, fired, tt.fires)
			}
			if tt.fires && got[0].Note != noteBareNumber {
				t.Errorf("Note = %q", got[0].Note)
			}
		})
	}
}

func TestDuplicateRow(t *testing.T) {
	c := NewDuplicateRow()

	first := Row{Number: 2, Cells: []any{"a", int64(1)}}
	other := Row{Number: 3, Cells: []any{"b", int64(1)}}
	again := Row{Number: 4, Cells: []any{"a", int64(1)}}

	if got := c.ValidateRow(first); len(got) != 0 {
		t.Errorf("first row flagged: %v", got)
	}
	if got := c.ValidateRow(other); len(got) != 0 {
		t.Errorf("distinct row flagged: %v", got)
	}
	got := c.ValidateRow(again)
	if len(got) != 1 {
		t.Fatalf("duplicate not flagged")
	}
	if got[0].Note != "the same as row at position 2" {
		t.Errorf("Note = %q", got[0].Note)
	}
}

func TestForbiddenValue(t *testing.T) {
	c, err := Default().Resolve("forbidden-value", Params{"fieldName": "status", "values": []any{"TBD", "n/a"}})
	if err != nil {
		t.Fatalf("Resolve error = %v", err)
	}
	rc := c.(RowCheck)

	row := Row{Number: 5, Labels: []string{"id", "status"}, Cells: []any{int64(1), "TBD"}}
	got := rc.ValidateRow(row)
	if len(got) != 1 || got[0].FieldName != "status" {
		t.Fatalf("findings = %+v, want one on status", got)
	}

	row.Cells[1] = "done"
	if got := rc.ValidateRow(row); len(got) != 0 {
		t.Errorf("allowed value flagged: %+v", got)
	}
}

func TestTruncatedValue(t *testing.T) {
	long := make([]rune, 255)
	for i := range long {
		long[i] = 'x'
	}
	row := textRow(string(long), int64(2147483647), "short", int64(7))

	got := TruncatedValue{}.ValidateRow(row)
	if len(got) != 2 {
		t.Fatalf("got %d findings, want 2", len(got))
	}
}

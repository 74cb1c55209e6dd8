package scan

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/JonMunkholm/tabcheck/internal/check"
	"github.com/JonMunkholm/tabcheck/internal/report"
	"github.com/JonMunkholm/tabcheck/internal/table"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func csvSource(p string) table.Source {
	return table.Source{Locator: p, Format: table.FormatCSV, Trusted: true}
}

func builtins(t *testing.T) []check.Check {
	t.Helper()
	checks, err := check.ResolveBuiltins(check.Default())
	if err != nil {
		t.Fatal(err)
	}
	return checks
}

func defaultOpts() Options {
	return Options{LimitErrors: DefaultLimitErrors}
}

func errorTypes(r *report.Report) []string {
	var types []string
	for _, e := range r.FlatErrors() {
		types = append(types, e.Type)
	}
	return types
}

func mustSchema(t *testing.T, raw string) *table.Schema {
	t.Helper()
	s, err := table.ParseSchema(json.RawMessage(raw))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestValidate_RegionNameHeader(t *testing.T) {
	p := writeCSV(t, "Region Name\nToronto\n")

	r := Validate(context.Background(), csvSource(p), nil, builtins(t), defaultOpts())

	errs := r.FlatErrors()
	if len(errs) != 1 {
		t.Fatalf("errors = %+v, want one snake-case finding", errs)
	}
	e := errs[0]
	if e.Type != check.KindForbiddenLabel || e.Label != "Region Name" {
		t.Errorf("error = %+v", e)
	}
	if e.Note != "Column name must all be in lower case, and for multiple words, separate them with an underscore." {
		t.Errorf("Note = %q", e.Note)
	}
	if !reflect.DeepEqual(e.RowNumbers, []int{1}) || e.FieldNumber != 1 {
		t.Errorf("location = %v / %d", e.RowNumbers, e.FieldNumber)
	}
}

func TestValidate_CleanTableWithSchema(t *testing.T) {
	p := writeCSV(t, "region_name,population\nToronto,2794356\n")
	schema := mustSchema(t, `{"fields":[{"name":"region_name"},{"name":"population","type":"integer"}]}`)

	r := Validate(context.Background(), csvSource(p), schema, builtins(t), defaultOpts())

	if !r.Valid {
		t.Fatalf("report invalid: %+v", r.FlatErrors())
	}
	if len(r.Warnings) != 0 {
		t.Errorf("Warnings = %v", r.Warnings)
	}
	task := r.Tasks[0]
	if task.Place != p || task.Name != "data" || task.Stats.Rows != 1 || task.Stats.Fields != 2 {
		t.Errorf("task = %+v", task)
	}
	if res := report.Normalize(report.Structured(r), "https://example.org/data.csv"); res.Status != report.StatusSuccess {
		t.Errorf("Status = %q, want success", res.Status)
	}
}

func TestValidate_InferredNumbersSkipTextChecks(t *testing.T) {
	p := writeCSV(t, "qty,note,price\n12,a - b,$ 4.50\n7,plain,$N/A\n")
	checks := append(builtins(t), check.BareNumber{})

	r := Validate(context.Background(), csvSource(p), nil, checks, defaultOpts())

	errs := r.FlatErrors()
	if len(errs) != 2 {
		t.Fatalf("errors = %+v, want markers on note and bare number on price", errs)
	}
	if errs[0].FieldName != "note" || errs[0].RowNumber != 2 {
		t.Errorf("errs[0] = %+v", errs[0])
	}
	if errs[1].FieldName != "price" || errs[1].Cell != "$ 4.50" {
		t.Errorf("errs[1] = %+v", errs[1])
	}
}

func TestValidate_Structure(t *testing.T) {
	p := writeCSV(t, "id,name\n1,a\n1,b\nx,c\n,d\n2\n3,e,extra\n,\n")
	schema := mustSchema(t, `{"fields":[{"name":"id","type":"integer","constraints":{"required":true,"unique":true}},{"name":"name"}]}`)

	r := Validate(context.Background(), csvSource(p), schema, nil, defaultOpts())

	want := []string{
		report.KindUnique,
		report.KindType,
		report.KindConstraint,
		report.KindMissCell,
		report.KindExtraCell,
		report.KindBlankRow,
	}
	if got := errorTypes(r); !reflect.DeepEqual(got, want) {
		t.Fatalf("error types = %v, want %v", got, want)
	}

	errs := r.FlatErrors()
	wantRows := []int{3, 4, 5, 6, 7, 8}
	for i, e := range errs {
		if e.RowNumber != wantRows[i] {
			t.Errorf("%s RowNumber = %d, want %d", e.Type, e.RowNumber, wantRows[i])
		}
	}
	if errs[0].Note != "the same as in the row at position 2" {
		t.Errorf("unique note = %q", errs[0].Note)
	}
}

func TestValidate_LabelErrors(t *testing.T) {
	p := writeCSV(t, "id,nme,,id,more\n1,a,b,c,d\n")
	schema := mustSchema(t, `{"fields":[{"name":"id"},{"name":"name"},{"name":"x"},{"name":"y"}]}`)

	r := Validate(context.Background(), csvSource(p), schema, nil, defaultOpts())

	want := []string{
		report.KindBadLabel,
		report.KindBlankLabel,
		report.KindDupLabel,
		report.KindBadLabel,
		report.KindExtraLabel,
		report.KindExtraCell,
	}
	if got := errorTypes(r); !reflect.DeepEqual(got, want) {
		t.Errorf("error types = %v, want %v", got, want)
	}
}

func TestValidate_MissingLabel(t *testing.T) {
	p := writeCSV(t, "id\n1\n")
	schema := mustSchema(t, `{"fields":[{"name":"id"},{"name":"name"}]}`)

	r := Validate(context.Background(), csvSource(p), schema, nil, defaultOpts())

	want := []string{report.KindMissLabel, report.KindMissCell}
	if got := errorTypes(r); !reflect.DeepEqual(got, want) {
		t.Errorf("error types = %v, want %v", got, want)
	}
}

func TestValidate_ErrorLimit(t *testing.T) {
	p := writeCSV(t, "A B,C D,E F\n1,2,3\n")
	opts := defaultOpts()
	opts.LimitErrors = 2

	r := Validate(context.Background(), csvSource(p), nil, builtins(t), opts)

	if got := len(r.FlatErrors()); got != 2 {
		t.Errorf("len(errors) = %d, want 2", got)
	}
	want := []string{`Table "` + p + `" reached the error limit of 2`}
	if !reflect.DeepEqual(r.Warnings, want) {
		t.Errorf("Warnings = %v, want %v", r.Warnings, want)
	}

	res := report.Normalize(report.Structured(r), "https://example.org/data.csv")
	if res.Status != report.StatusError {
		t.Errorf("Status = %q, want error", res.Status)
	}
	if res.Report.Warnings[0] != "Table reached the error limit of 2" {
		t.Errorf("normalized warning = %q", res.Report.Warnings[0])
	}
}

func TestValidate_RowLimit(t *testing.T) {
	p := writeCSV(t, "a\n1\n2\n3\n")
	opts := defaultOpts()
	opts.LimitRows = 1

	r := Validate(context.Background(), csvSource(p), nil, nil, opts)

	if got := r.Tasks[0].Stats.Rows; got != 1 {
		t.Errorf("Rows = %d, want 1", got)
	}
	if len(r.Warnings) != 1 {
		t.Errorf("Warnings = %v, want one row limit warning", r.Warnings)
	}
}

type panicky struct{}

func (panicky) Type() string                                { return "panicky" }
func (panicky) ErrorTypes() []string                        { return nil }
func (panicky) ValidateRow(check.Row) []check.Finding       { panic("boom") }
func (panicky) ValidateHeader(check.Header) []check.Finding { return nil }

func TestValidate_CheckPanicIsCaptured(t *testing.T) {
	p := writeCSV(t, "a\nx\ny\n")

	r := Validate(context.Background(), csvSource(p), nil, []check.Check{panicky{}}, defaultOpts())

	errs := r.FlatErrors()
	if len(errs) != 1 || errs[0].Type != report.KindCheck {
		t.Fatalf("errors = %+v, want a single check-error", errs)
	}
	if errs[0].Note != `check "panicky" failed: boom` {
		t.Errorf("Note = %q", errs[0].Note)
	}
	if got := r.Tasks[0].Stats.Rows; got != 2 {
		t.Errorf("Rows = %d, scan should continue past the failing check", got)
	}
}

func TestValidate_SourceFailure(t *testing.T) {
	src := table.Source{Locator: filepath.Join(t.TempDir(), "missing.csv"), Format: table.FormatCSV, Trusted: true}

	r := Validate(context.Background(), src, nil, builtins(t), defaultOpts())

	if r.Valid {
		t.Error("a source failure must not be valid")
	}
	if got := errorTypes(r); !reflect.DeepEqual(got, []string{table.KindSource}) {
		t.Errorf("error types = %v", got)
	}
}

func TestValidate_EncodingError(t *testing.T) {
	p := writeCSV(t, "name\ncaf\xe9\n")

	r := Validate(context.Background(), csvSource(p), nil, nil, defaultOpts())
	if got := errorTypes(r); !reflect.DeepEqual(got, []string{table.KindEncoding}) {
		t.Errorf("error types = %v", got)
	}

	src := csvSource(p)
	src.Dialect.Encoding = "latin1"
	if r := Validate(context.Background(), src, nil, nil, defaultOpts()); !r.Valid {
		t.Errorf("latin1 table invalid: %+v", r.FlatErrors())
	}
}

func TestTaskName(t *testing.T) {
	tests := map[string]string{
		"https://example.org/files/data.csv?x=1": "data",
		"/tmp/xyz123.csv":                         "xyz123",
		"relative/name":                           "name",
		"":                                        "table",
	}
	for in, want := range tests {
		if got := taskName(in); got != want {
			t.Errorf("taskName(%q) = %q, want %q", in, got, want)
		}
	}
}

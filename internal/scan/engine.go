package scan

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/JonMunkholm/tabcheck/internal/check"
	"github.com/JonMunkholm/tabcheck/internal/report"
	"github.com/JonMunkholm/tabcheck/internal/table"
)

// Validate reads src and validates it: label and row structure, the schema
// (inferred when nil), then checks in order. It always returns a report;
// source failures and check panics are recorded as task errors.
func Validate(ctx context.Context, src table.Source, schema *table.Schema, checks []check.Check, opts Options) *report.Report {
	start := time.Now()
	task := report.NewTask(taskName(src.Locator), src.Locator)

	tbl, err := table.Read(ctx, src)
	if err != nil {
		task.AddError(sourceError(err))
		task.Finish(time.Since(start))
		return report.FromTasks(time.Since(start), task)
	}

	e := newEngine(tbl, schema, checks, opts, &task)
	e.run()

	task.Finish(time.Since(start))
	return report.FromTasks(time.Since(start), task)
}

func sourceError(err error) report.Error {
	var se *table.SourceError
	if errors.As(err, &se) {
		return report.NewError(se.Kind, se.Err.Error())
	}
	return report.NewError(table.KindSource, err.Error())
}

func taskName(locator string) string {
	p := locator
	if u, err := url.Parse(locator); err == nil && u.Scheme != "" && u.Host != "" {
		p = u.Path
	}
	base := path.Base(strings.ReplaceAll(p, "\\", "/"))
	if base == "." || base == "/" {
		return "table"
	}
	return strings.TrimSuffix(base, path.Ext(base))
}

type engine struct {
	tbl     *table.Table
	schema  *table.Schema
	fields  []table.Field
	names   []string
	headers []check.HeaderCheck
	rows    []check.RowCheck
	opts    Options
	task    *report.Task

	unique map[int]map[string]int
	full   bool
}

func newEngine(tbl *table.Table, schema *table.Schema, checks []check.Check, opts Options, task *report.Task) *engine {
	e := &engine{
		tbl:    tbl,
		schema: schema,
		opts:   opts,
		task:   task,
		unique: make(map[int]map[string]int),
	}

	if schema != nil {
		e.fields = schema.Fields
	} else {
		sample := make([][]string, 0, min(len(tbl.Rows), table.InferenceSampleRows))
		for i := 0; i < len(tbl.Rows) && i < table.InferenceSampleRows; i++ {
			sample = append(sample, tbl.Rows[i].Cells)
		}
		e.fields = table.InferFields(tbl.Labels, sample)
	}
	e.names = make([]string, len(e.fields))
	for i, f := range e.fields {
		e.names[i] = f.Name
	}

	for _, c := range checks {
		if hc, ok := c.(check.HeaderCheck); ok {
			e.headers = append(e.headers, hc)
		}
		if rc, ok := c.(check.RowCheck); ok {
			e.rows = append(e.rows, rc)
		}
	}

	task.Labels = append([]string{}, tbl.Labels...)
	task.Stats.Bytes = tbl.Bytes
	task.Stats.Fields = len(e.fields)
	return e
}

func (e *engine) run() {
	if e.tbl.Replaced > 0 {
		note := fmt.Sprintf("%d byte(s) are not valid in the declared encoding", e.tbl.Replaced)
		if e.add(report.NewError(table.KindEncoding, note)) {
			return
		}
	}

	if len(e.tbl.HeaderRows) > 0 {
		if e.validateLabels() {
			return
		}
		if e.runHeaderChecks() {
			return
		}
	}

	for i, rec := range e.tbl.Rows {
		if e.opts.LimitRows > 0 && i >= e.opts.LimitRows {
			e.task.AddWarning(fmt.Sprintf("Table %q reached the row limit of %d", e.tbl.Place, e.opts.LimitRows))
			break
		}
		e.task.Stats.Rows++
		if e.validateRow(rec) {
			return
		}
	}
}

// add records err and reports whether the error limit has been reached.
func (e *engine) add(err report.Error) bool {
	if e.full {
		return true
	}
	e.task.AddError(err)
	if len(e.task.Errors) >= e.opts.LimitErrors {
		e.full = true
		e.task.AddWarning(fmt.Sprintf("Table %q reached the error limit of %d", e.tbl.Place, e.opts.LimitErrors))
		return true
	}
	return false
}

func (e *engine) fieldName(i int) string {
	if i < len(e.names) && e.names[i] != "" {
		return e.names[i]
	}
	if i < len(e.tbl.Labels) && e.tbl.Labels[i] != "" {
		return e.tbl.Labels[i]
	}
	return fmt.Sprintf("field%d", i+1)
}

func (e *engine) validateLabels() bool {
	labels := e.tbl.Labels
	rows := e.tbl.HeaderRows
	seen := make(map[string]int, len(labels))

	for i, label := range labels {
		pos := i + 1
		name := e.fieldName(i)

		if label == "" {
			if e.add(report.LabelError(report.KindBlankLabel, labels, rows, pos, label, name, "")) {
				return true
			}
			continue
		}

		if first, dup := seen[label]; dup {
			note := fmt.Sprintf("at position %q", fmt.Sprint(first))
			if e.add(report.LabelError(report.KindDupLabel, labels, rows, pos, label, name, note)) {
				return true
			}
		} else {
			seen[label] = pos
		}

		if e.schema == nil {
			continue
		}
		if i >= len(e.fields) {
			if e.add(report.LabelError(report.KindExtraLabel, labels, rows, pos, label, label, "")) {
				return true
			}
			continue
		}
		if label != e.fields[i].Name {
			if e.add(report.LabelError(report.KindBadLabel, labels, rows, pos, label, e.fields[i].Name, "")) {
				return true
			}
		}
	}

	if e.schema != nil {
		for i := len(labels); i < len(e.fields); i++ {
			if e.add(report.LabelError(report.KindMissLabel, labels, rows, i+1, "", e.fields[i].Name, "")) {
				return true
			}
		}
	}
	return false
}

// runHeaderChecks evaluates header checks once against the labels as read.
func (e *engine) runHeaderChecks() bool {
	h := check.Header{
		Labels:     append([]string(nil), e.tbl.Labels...),
		RowNumbers: append([]int(nil), e.tbl.HeaderRows...),
	}
	for i, c := range e.headers {
		if c == nil {
			continue
		}
		findings, failure := safeHeader(c, h)
		if failure != nil {
			e.headers[i] = nil
			if e.add(*failure) {
				return true
			}
			continue
		}
		for _, f := range findings {
			if e.add(report.FromFinding(f)) {
				return true
			}
		}
	}
	return false
}

func (e *engine) validateRow(rec table.Record) bool {
	if isBlank(rec.Cells) {
		return e.add(report.RowError(report.KindBlankRow, rec.Number, rec.Cells, 0, "", "", ""))
	}

	width := len(e.fields)
	values := make([]any, width)

	for i, raw := range rec.Cells {
		if i >= width {
			if e.add(report.RowError(report.KindExtraCell, rec.Number, rec.Cells, i+1, e.fieldName(i), raw, "")) {
				return true
			}
			continue
		}
		v, stop := e.castCell(rec, i, raw)
		if stop {
			return true
		}
		values[i] = v
	}
	for i := len(rec.Cells); i < width; i++ {
		if e.add(report.RowError(report.KindMissCell, rec.Number, rec.Cells, i+1, e.fieldName(i), "", "")) {
			return true
		}
	}

	row := check.Row{
		Number:     rec.Number,
		Labels:     e.tbl.Labels,
		FieldNames: e.names,
		Cells:      values,
	}
	for i, c := range e.rows {
		if c == nil {
			continue
		}
		findings, failure := safeRow(c, row)
		if failure != nil {
			e.rows[i] = nil
			if e.add(*failure) {
				return true
			}
			continue
		}
		for _, f := range findings {
			if e.add(report.FromFinding(f)) {
				return true
			}
		}
	}
	return false
}

// castCell casts one cell and records type, constraint and unique errors.
// A cell that fails to cast is passed on to row checks as its raw text.
func (e *engine) castCell(rec table.Record, i int, raw string) (any, bool) {
	f := e.fields[i]
	name := e.fieldName(i)

	if e.missing(raw) {
		if f.Constraints.Required {
			note := `constraint "required" is "True"`
			return nil, e.add(report.RowError(report.KindConstraint, rec.Number, rec.Cells, i+1, name, raw, note))
		}
		return nil, false
	}

	v, err := table.Cast(raw, f)
	if err != nil {
		return raw, e.add(report.RowError(report.KindType, rec.Number, rec.Cells, i+1, name, raw, err.Error()))
	}

	if _, note, ok := f.CheckConstraints(v, raw); !ok {
		if e.add(report.RowError(report.KindConstraint, rec.Number, rec.Cells, i+1, name, raw, note)) {
			return v, true
		}
	}

	if f.Constraints.Unique {
		seen := e.unique[i]
		if seen == nil {
			seen = make(map[string]int)
			e.unique[i] = seen
		}
		if first, dup := seen[raw]; dup {
			note := fmt.Sprintf("the same as in the row at position %d", first)
			if e.add(report.RowError(report.KindUnique, rec.Number, rec.Cells, i+1, name, raw, note)) {
				return v, true
			}
		} else {
			seen[raw] = rec.Number
		}
	}
	return v, false
}

func (e *engine) missing(raw string) bool {
	if e.schema != nil {
		return e.schema.IsMissing(raw)
	}
	return raw == ""
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func safeHeader(c check.HeaderCheck, h check.Header) (findings []check.Finding, failure *report.Error) {
	defer func() {
		if r := recover(); r != nil {
			failure = checkFailure(c, r)
		}
	}()
	return c.ValidateHeader(h), nil
}

func safeRow(c check.RowCheck, row check.Row) (findings []check.Finding, failure *report.Error) {
	defer func() {
		if r := recover(); r != nil {
			failure = checkFailure(c, r)
		}
	}()
	return c.ValidateRow(row), nil
}

func checkFailure(c check.Check, r any) *report.Error {
	e := report.NewError(report.KindCheck, fmt.Sprintf("check %q failed: %v", c.Type(), r))
	return &e
}

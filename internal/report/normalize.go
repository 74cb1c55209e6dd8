package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Validation record statuses.
const (
	StatusCreated = "created"
	StatusRunning = "running"
	StatusSuccess = "success"
	StatusFailure = "failure"
	StatusError   = "error"
)

// GenericErrorMessage is recorded when a result carries neither a validity
// flag nor any error.
const GenericErrorMessage = "Errors validating the data"

var quotedTable = regexp.MustCompile(`Table ".*"`)

// Raw is a scan result in one of its two historical shapes. Exactly one
// field is set: Structured for a report with a validity flag, Loose for a
// mapping that exposes top-level "errors" instead.
type Raw struct {
	Structured *Report
	Loose      map[string]any
}

// Structured wraps a report.
func Structured(r *Report) Raw { return Raw{Structured: r} }

// Loose wraps a loose mapping.
func Loose(m map[string]any) Raw { return Raw{Loose: m} }

// LooseError is the loose shape of a failure that happened before any
// table was read.
func LooseError(err error) Raw {
	return Loose(map[string]any{"errors": []any{err.Error()}})
}

// ParseRaw decodes a serialized result. A document with a "valid" key is
// read as a structured report, anything else as a loose mapping.
func ParseRaw(data []byte) (Raw, error) {
	var m map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&m); err != nil {
		return Raw{}, fmt.Errorf("decode report: %w", err)
	}
	if _, ok := m["valid"]; !ok {
		return Loose(m), nil
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return Raw{}, fmt.Errorf("decode report: %w", err)
	}
	return Structured(&r), nil
}

// ErrorPayload is the aggregated message list of a record in error.
type ErrorPayload struct {
	Message []string `json:"message"`
}

// Result is a normalized scan result ready to persist.
type Result struct {
	Report *Report
	Status string
	Error  *ErrorPayload // set only when Status is StatusError
}

// Normalize converts raw into the canonical report and derives the record
// status. Local filesystem places are replaced by originalURL and quoted
// table names are removed from warnings so storage paths never reach the
// persisted report. Any warning forces StatusError.
func Normalize(raw Raw, originalURL string) Result {
	var (
		rep      *Report
		status   string
		messages []string
	)

	if raw.Structured != nil {
		rep = clone(raw.Structured)
		if rep.Valid {
			status = StatusSuccess
		} else {
			status = StatusFailure
		}
	} else {
		var errs []any
		rep, errs = fromLoose(raw.Loose)
		status = StatusError
		if len(errs) > 0 {
			for _, e := range errs {
				messages = append(messages, stringify(e))
			}
		} else {
			messages = []string{GenericErrorMessage}
		}
	}

	for i := range rep.Tasks {
		if isLocalPath(rep.Tasks[i].Place) {
			rep.Tasks[i].Place = originalURL
		}
		rep.Tasks[i].Warnings = scrubWarnings(rep.Tasks[i].Warnings)
	}

	if len(rep.Warnings) > 0 {
		rep.Warnings = scrubWarnings(rep.Warnings)
		status = StatusError
		if len(messages) == 0 {
			messages = append(messages, rep.Warnings...)
		}
	}

	res := Result{Report: rep, Status: status}
	if status == StatusError {
		res.Error = &ErrorPayload{Message: messages}
	}
	return res
}

func scrubWarnings(ws []string) []string {
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = quotedTable.ReplaceAllString(w, "Table")
	}
	return out
}

func isLocalPath(place string) bool {
	return strings.HasPrefix(place, "/") || filepath.IsAbs(place)
}

func clone(r *Report) *Report {
	c := *r
	c.Warnings = append([]string{}, r.Warnings...)
	c.Errors = append([]Error{}, r.Errors...)
	c.Tasks = make([]Task, len(r.Tasks))
	for i, t := range r.Tasks {
		t.Warnings = append([]string{}, t.Warnings...)
		t.Errors = append([]Error{}, t.Errors...)
		c.Tasks[i] = t
	}
	return &c
}

// fromLoose builds a canonical report from a loose mapping. Entries that
// cannot be decoded as errors or tasks are kept as check errors.
func fromLoose(m map[string]any) (*Report, []any) {
	rep := &Report{Warnings: []string{}, Errors: []Error{}, Tasks: []Task{}}

	errs, _ := m["errors"].([]any)
	for _, e := range errs {
		rep.Errors = append(rep.Errors, looseError(e))
	}

	if ws, ok := m["warnings"].([]any); ok {
		for _, w := range ws {
			rep.Warnings = append(rep.Warnings, stringify(w))
		}
	}

	if ts, ok := m["tasks"]; ok {
		if data, err := json.Marshal(ts); err == nil {
			var tasks []Task
			if json.Unmarshal(data, &tasks) == nil {
				rep.Tasks = append(rep.Tasks, tasks...)
			}
		}
	}

	rep.Stats.Tasks = len(rep.Tasks)
	rep.Stats.Errors = len(rep.Errors)
	rep.Stats.Warnings = len(rep.Warnings)
	return rep, errs
}

func looseError(v any) Error {
	if obj, ok := v.(map[string]any); ok {
		if data, err := json.Marshal(obj); err == nil {
			var e Error
			if json.Unmarshal(data, &e) == nil && e.Type != "" {
				if e.Message == "" {
					e = complete(e)
				}
				return e
			}
		}
	}
	return NewError(KindCheck, stringify(v))
}

// stringify renders a loose entry as a message.
func stringify(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case map[string]any:
		if msg, ok := x["message"].(string); ok && msg != "" {
			return msg
		}
	case nil:
		return ""
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

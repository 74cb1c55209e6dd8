// Package report holds the canonical validation report, the catalog of
// error kinds it can carry, and the normalizer that turns a raw scan result
// into the persisted report and a record status.
package report

import (
	"encoding/json"
	"time"
)

// Report is the combined result of one scan.
type Report struct {
	Valid    bool     `json:"valid"`
	Stats    Stats    `json:"stats"`
	Warnings []string `json:"warnings"`
	Errors   []Error  `json:"errors"`
	Tasks    []Task   `json:"tasks"`
}

// Stats summarises a report or a task.
type Stats struct {
	Tasks    int     `json:"tasks,omitempty"`
	Errors   int     `json:"errors"`
	Warnings int     `json:"warnings"`
	Seconds  float64 `json:"seconds"`
	Bytes    int64   `json:"bytes,omitempty"`
	Fields   int     `json:"fields,omitempty"`
	Rows     int     `json:"rows,omitempty"`
}

// Task is the result for one table. A scan validates a single table, so a
// report normally holds exactly one task.
type Task struct {
	Valid    bool     `json:"valid"`
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	Place    string   `json:"place"`
	Labels   []string `json:"labels"`
	Stats    Stats    `json:"stats"`
	Warnings []string `json:"warnings"`
	Errors   []Error  `json:"errors"`
}

// NewTask returns an empty valid task for the table at place.
func NewTask(name, place string) Task {
	return Task{
		Valid:    true,
		Name:     name,
		Type:     "table",
		Place:    place,
		Labels:   []string{},
		Warnings: []string{},
		Errors:   []Error{},
	}
}

// AddError appends e and marks the task invalid.
func (t *Task) AddError(e Error) {
	t.Errors = append(t.Errors, e)
	t.Valid = false
}

// AddWarning appends a warning; warnings do not affect validity.
func (t *Task) AddWarning(w string) {
	t.Warnings = append(t.Warnings, w)
}

// Finish fills the task stats.
func (t *Task) Finish(elapsed time.Duration) {
	t.Stats.Errors = len(t.Errors)
	t.Stats.Warnings = len(t.Warnings)
	t.Stats.Seconds = seconds(elapsed)
}

// FromTasks assembles a report. The report is valid when every task is and
// no report-level error was recorded.
func FromTasks(elapsed time.Duration, tasks ...Task) *Report {
	r := &Report{
		Valid:    true,
		Warnings: []string{},
		Errors:   []Error{},
		Tasks:    tasks,
	}
	if r.Tasks == nil {
		r.Tasks = []Task{}
	}
	for _, t := range tasks {
		if !t.Valid {
			r.Valid = false
		}
		r.Stats.Errors += len(t.Errors)
		r.Warnings = append(r.Warnings, t.Warnings...)
	}
	r.Stats.Tasks = len(tasks)
	r.Stats.Warnings = len(r.Warnings)
	r.Stats.Seconds = seconds(elapsed)
	return r
}

// FlatErrors returns report-level errors followed by every task error.
func (r *Report) FlatErrors() []Error {
	out := append([]Error(nil), r.Errors...)
	for _, t := range r.Tasks {
		out = append(out, t.Errors...)
	}
	return out
}

// JSON returns the serialized report.
func (r *Report) JSON() (json.RawMessage, error) {
	return json.Marshal(r)
}

func seconds(d time.Duration) float64 {
	return float64(d.Milliseconds()) / 1000
}

package core

import (
	"context"
	"errors"
	"time"

	"github.com/JonMunkholm/tabcheck/internal/report"
)

// ErrRecordNotFound is returned when a resource has no validation record.
var ErrRecordNotFound = errors.New("validation record not found")

// Record is the persisted outcome of the latest validation of a resource.
// There is at most one record per resource id.
type Record struct {
	ID         string               `json:"id"`
	ResourceID string               `json:"resource_id"`
	Status     string               `json:"status"`
	Report     *report.Report       `json:"report"`
	Error      *report.ErrorPayload `json:"error"`
	Created    time.Time            `json:"created"`
	Finished   *time.Time           `json:"finished"`
}

// Terminal reports whether the record holds the result of a completed run.
func (r *Record) Terminal() bool {
	switch r.Status {
	case report.StatusSuccess, report.StatusFailure, report.StatusError:
		return true
	}
	return false
}

// Store persists validation records.
type Store interface {
	// StartRun looks up the record for resourceID, creating it if needed,
	// and commits it with status running. The previous report stays in
	// place until FinishRun overwrites it.
	StartRun(ctx context.Context, resourceID string) (*Record, error)

	// FinishRun stores the status, report, error and finished time of rec.
	FinishRun(ctx context.Context, rec *Record) error

	Get(ctx context.Context, resourceID string) (*Record, error)
	Delete(ctx context.Context, resourceID string) error

	// CountByStatus returns the number of records per status.
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

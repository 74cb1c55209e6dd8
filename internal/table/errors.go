package table

import "fmt"

// Source error kinds, as they appear in a report.
const (
	KindSource   = "source-error"
	KindScheme   = "scheme-error"
	KindFormat   = "format-error"
	KindEncoding = "encoding-error"
)

// SourceError reports a table that could not be fetched or parsed.
// The scan captures it into the report instead of propagating it.
type SourceError struct {
	Kind  string
	Place string
	Err   error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Place, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

func sourceErr(kind, place string, err error) *SourceError {
	return &SourceError{Kind: kind, Place: place, Err: err}
}

// Package catalog is the boundary to the hosting data catalog: the resource
// and dataset metadata a run consumes and the actions it calls back with.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"time"
)

// URL types of a resource.
const (
	URLTypeUpload = "upload"
)

// ErrNotFound is returned when the catalog has no such object.
var ErrNotFound = errors.New("catalog: not found")

// Resource is the resource descriptor handed to a validation job.
type Resource struct {
	ID                string          `json:"id"`
	PackageID         string          `json:"package_id"`
	URL               string          `json:"url"`
	URLType           string          `json:"url_type,omitempty"`
	Format            string          `json:"format"`
	ValidationOptions json.RawMessage `json:"validation_options,omitempty"`
	Schema            json.RawMessage `json:"schema,omitempty"`
	UIDict            json.RawMessage `json:"ui_dict,omitempty"`
}

// IsUpload reports whether the resource file is held by catalog storage.
func (r Resource) IsUpload() bool {
	return r.URLType == URLTypeUpload
}

// SchemaDescriptor returns the UI-entered schema when it is non-empty,
// else the stored schema.
func (r Resource) SchemaDescriptor() json.RawMessage {
	if !emptyDescriptor(r.UIDict) {
		return r.UIDict
	}
	return r.Schema
}

func emptyDescriptor(raw json.RawMessage) bool {
	switch string(bytes.TrimSpace(raw)) {
	case "", "null", "{}", "[]", `""`:
		return true
	}
	return false
}

// Dataset is the parent dataset of a resource.
type Dataset struct {
	ID      string `json:"id"`
	Name    string `json:"name,omitempty"`
	Private bool   `json:"private"`
}

// SiteUser is the catalog's privileged system account.
type SiteUser struct {
	Name   string `json:"name"`
	APIKey string `json:"apikey"`
}

// Patch is the resource update sent when a run finishes.
type Patch struct {
	ID                  string    `json:"id"`
	ValidationStatus    string    `json:"validation_status"`
	ValidationTimestamp time.Time `json:"-"`

	// SkipNextValidation stops the patch from scheduling another run.
	SkipNextValidation bool `json:"_skip_next_validation,omitempty"`
}

// MarshalJSON renders the timestamp the way the catalog stores it.
func (p Patch) MarshalJSON() ([]byte, error) {
	type plain Patch
	return json.Marshal(struct {
		plain
		ValidationTimestamp string `json:"validation_timestamp"`
	}{plain(p), p.ValidationTimestamp.UTC().Format("2006-01-02T15:04:05.000000")})
}

// PatchContext is the action context of a patch. Patches always run as the
// site user and are marked as validation-originated.
type PatchContext struct {
	User                string `json:"user"`
	IgnoreAuth          bool   `json:"ignore_auth"`
	ValidationPerformed bool   `json:"_validation_performed"`
}

// Client calls the catalog with system-level credentials, never the end
// user's.
type Client interface {
	PackageShow(ctx context.Context, id string) (Dataset, error)
	ResourcePatch(ctx context.Context, pc PatchContext, p Patch) error
	SiteUser(ctx context.Context) (SiteUser, error)
}

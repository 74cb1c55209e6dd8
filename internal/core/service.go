package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/JonMunkholm/tabcheck/internal/catalog"
	"github.com/JonMunkholm/tabcheck/internal/logging"
	"github.com/JonMunkholm/tabcheck/internal/report"
	"github.com/google/uuid"
)

// FinishTimeout bounds storing the terminal status of a run and the
// catalog notification that follows it.
const FinishTimeout = 30 * time.Second

// UpdateMode controls how a finished run is reported to the catalog.
type UpdateMode string

const (
	// UpdateSync runs validation inside the catalog's own resource update,
	// so the finishing patch must not trigger another run.
	UpdateSync UpdateMode = "sync"
	// UpdateAsync runs validation on a background worker.
	UpdateAsync UpdateMode = "async"
)

// ParseUpdateMode parses "sync" or "async".
func ParseUpdateMode(s string) (UpdateMode, error) {
	switch UpdateMode(s) {
	case UpdateSync, UpdateAsync:
		return UpdateMode(s), nil
	}
	return "", fmt.Errorf("update mode must be %q or %q, got %q", UpdateSync, UpdateAsync, s)
}

// Scanner produces the raw report for one resource.
type Scanner interface {
	Run(ctx context.Context, res catalog.Resource, ds catalog.Dataset) (report.Raw, error)
}

// Service owns the validation record lifecycle and the job runner.
type Service struct {
	store   Store
	scanner Scanner
	catalog catalog.Client
	mode    UpdateMode
	now     func() time.Time
}

// NewService creates a Service. An empty mode means UpdateAsync.
func NewService(store Store, scanner Scanner, cat catalog.Client, mode UpdateMode) *Service {
	if mode == "" {
		mode = UpdateAsync
	}
	return &Service{
		store:   store,
		scanner: scanner,
		catalog: cat,
		mode:    mode,
		now:     time.Now,
	}
}

// Mode returns the configured update mode.
func (s *Service) Mode() UpdateMode {
	return s.mode
}

// Start marks the record for resourceID as running, creating it if needed.
// The record is committed before Start returns so status queries observe
// the running state.
func (s *Service) Start(ctx context.Context, resourceID string) (*Record, error) {
	if resourceID == "" {
		return nil, errors.New("resource id is required")
	}
	return s.store.StartRun(ctx, resourceID)
}

// Finish stores the normalized result on rec and notifies the catalog.
// A failed notification is logged; the stored record is authoritative.
// The write does not inherit cancellation from ctx: a run whose request
// went away still reaches its terminal status, bounded by FinishTimeout.
func (s *Service) Finish(ctx context.Context, rec *Record, result report.Result) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), FinishTimeout)
	defer cancel()

	finished := s.now().UTC()

	rec.Report = result.Report
	rec.Status = result.Status
	rec.Error = result.Error
	rec.Finished = &finished

	if err := s.store.FinishRun(ctx, rec); err != nil {
		return fmt.Errorf("finish run: %w", err)
	}

	if err := s.notify(ctx, rec); err != nil {
		logging.FromContext(ctx).Warn("catalog not updated",
			"resource_id", rec.ResourceID,
			"status", rec.Status,
			"error", err,
		)
	}
	return nil
}

// notify patches the resource as the site user.
func (s *Service) notify(ctx context.Context, rec *Record) error {
	if s.catalog == nil {
		return nil
	}

	user, err := s.catalog.SiteUser(ctx)
	if err != nil {
		return fmt.Errorf("site user: %w", err)
	}

	pc := catalog.PatchContext{
		User:                user.Name,
		IgnoreAuth:          true,
		ValidationPerformed: true,
	}
	patch := catalog.Patch{
		ID:                  rec.ResourceID,
		ValidationStatus:    rec.Status,
		ValidationTimestamp: *rec.Finished,
		SkipNextValidation:  s.mode == UpdateSync,
	}
	return s.catalog.ResourcePatch(ctx, pc, patch)
}

// RunValidationJob validates one resource end to end and returns its
// record. Any failure after the record is started, including a panic,
// is stored as status error so the record never stays running. The
// returned error is only set when the record itself could not be
// written.
func (s *Service) RunValidationJob(ctx context.Context, res catalog.Resource) (*Record, error) {
	logger := logging.WithFields(ctx,
		"resource_id", res.ID,
		"package_id", res.PackageID,
		"run_id", uuid.NewString(),
	)
	ctx = logging.NewContext(ctx, logger)
	start := time.Now()

	rec, err := s.Start(ctx, res.ID)
	if err != nil {
		logger.Error("validation not started", "error", err)
		return nil, err
	}
	logger.Info("validation started")

	raw, err := s.scan(ctx, res)
	if err != nil {
		logger.Error("validation failed", "error", err)
		raw = report.LooseError(err)
	}

	result := report.Normalize(raw, res.URL)
	if err := s.Finish(ctx, rec, result); err != nil {
		logger.Error("validation not stored", "error", err)
		return nil, err
	}

	logger.Info("validation finished",
		"status", rec.Status,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return rec, nil
}

// scan fetches the dataset and runs the scanner, converting a panic into
// an error.
func (s *Service) scan(ctx context.Context, res catalog.Resource) (raw report.Raw, err error) {
	defer func() {
		if r := recover(); r != nil {
			logging.FromContext(ctx).Error("validation panicked",
				"panic", r,
				"stack", string(debug.Stack()),
			)
			err = fmt.Errorf("validation run panicked: %v", r)
		}
	}()

	var ds catalog.Dataset
	if s.catalog != nil {
		ds, err = s.catalog.PackageShow(ctx, res.PackageID)
		if err != nil {
			return report.Raw{}, fmt.Errorf("package_show %q: %w", res.PackageID, err)
		}
	}

	return s.scanner.Run(ctx, res, ds)
}

// Show returns the validation record of a resource.
func (s *Service) Show(ctx context.Context, resourceID string) (*Record, error) {
	if resourceID == "" {
		return nil, errors.New("resource id is required")
	}
	return s.store.Get(ctx, resourceID)
}

// Delete removes the validation record of a resource.
func (s *Service) Delete(ctx context.Context, resourceID string) error {
	if resourceID == "" {
		return errors.New("resource id is required")
	}
	if err := s.store.Delete(ctx, resourceID); err != nil {
		return err
	}
	slog.Info("validation deleted", "resource_id", resourceID)
	return nil
}

// StatusCounts returns the number of records per status.
func (s *Service) StatusCounts(ctx context.Context) (map[string]int64, error) {
	return s.store.CountByStatus(ctx)
}

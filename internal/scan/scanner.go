// Package scan runs one validation pass over a resource's table: it builds
// the effective options, resolves the source, schema, dialect and checks,
// and validates the table into a single combined report.
package scan

import (
	"context"
	"fmt"
	"time"

	"github.com/JonMunkholm/tabcheck/internal/catalog"
	"github.com/JonMunkholm/tabcheck/internal/check"
	"github.com/JonMunkholm/tabcheck/internal/logging"
	"github.com/JonMunkholm/tabcheck/internal/report"
	"github.com/JonMunkholm/tabcheck/internal/source"
	"github.com/JonMunkholm/tabcheck/internal/table"
)

// SourceResolver resolves where a resource's table is read from.
type SourceResolver interface {
	Resolve(ctx context.Context, res catalog.Resource, ds catalog.Dataset) source.Resolved
}

// Scanner runs scans. It holds no per-run state.
type Scanner struct {
	registry *check.Registry
	resolver SourceResolver
	defaults RawOptions
	maxBytes int64
}

// NewScanner returns a scanner resolving checks from registry and sources
// through resolver. defaults are the process-wide options every resource
// override is merged over.
func NewScanner(registry *check.Registry, resolver SourceResolver, defaults RawOptions, maxBytes int64) *Scanner {
	if registry == nil {
		registry = check.Default()
	}
	return &Scanner{
		registry: registry,
		resolver: resolver,
		defaults: defaults,
		maxBytes: maxBytes,
	}
}

// Run validates the table of res. Configuration problems (malformed
// options, unknown checks, bad schema) are returned as
// *check.ConfigurationError; anything that goes wrong reading or checking
// the table is recorded in the returned report instead.
func (s *Scanner) Run(ctx context.Context, res catalog.Resource, ds catalog.Dataset) (report.Raw, error) {
	logger := logging.FromContext(ctx)

	override, err := ParseRawOptions(res.ValidationOptions)
	if err != nil {
		return report.Raw{}, err
	}
	opts, err := Merge(s.defaults, override).Build()
	if err != nil {
		return report.Raw{}, err
	}

	resolved := s.resolver.Resolve(ctx, res, ds)
	if resolved.Client != nil {
		opts.Client = resolved.Client
	}
	logger.Info("source resolved", "kind", resolved.Kind, "authorized", resolved.Authorized)

	schema, err := table.ParseSchema(res.SchemaDescriptor())
	if err != nil {
		return report.Raw{}, &check.ConfigurationError{Op: "schema", Err: err}
	}

	checks, err := s.Checks(opts.Checks)
	if err != nil {
		return report.Raw{}, err
	}

	src := table.Source{
		Locator:  resolved.Locator,
		Format:   table.NormalizeFormat(res.Format, resolved.Locator),
		Dialect:  opts.Dialect,
		Trusted:  true,
		Client:   opts.Client,
		MaxBytes: s.maxBytes,
	}

	start := time.Now()
	rep := Validate(ctx, src, schema, checks, opts)
	logger.Debug("scan complete",
		"format", src.Format,
		"valid", rep.Valid,
		"errors", rep.Stats.Errors,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return report.Structured(rep), nil
}

// Checks returns the built-in sequence followed by the configured checks
// not already part of it, each resolved through the registry.
func (s *Scanner) Checks(configured []check.Descriptor) ([]check.Check, error) {
	checks, err := check.ResolveBuiltins(s.registry)
	if err != nil {
		return nil, err
	}

	builtin := make(map[string]bool, len(check.Builtins))
	for _, id := range check.Builtins {
		builtin[id] = true
	}

	for _, d := range configured {
		if builtin[d.Type] && len(d.Params) == 0 {
			continue
		}
		c, err := s.registry.Resolve(d.Type, d.Params)
		if err != nil {
			return nil, err
		}
		checks = append(checks, c)
	}
	return checks, nil
}

// ValidateFile scans a local file or URL outside any catalog, with the
// same checks and options a catalog resource gets.
func (s *Scanner) ValidateFile(ctx context.Context, locator, format string, schema *table.Schema, override RawOptions) (*report.Report, error) {
	opts, err := Merge(s.defaults, override).Build()
	if err != nil {
		return nil, err
	}
	checks, err := s.Checks(opts.Checks)
	if err != nil {
		return nil, err
	}
	if format = table.NormalizeFormat(format, locator); format == "" {
		return nil, fmt.Errorf("cannot tell the format of %q, set it explicitly", locator)
	}

	if s.resolver != nil && table.IsRemote(locator) {
		opts.Client = s.resolver.Resolve(ctx, catalog.Resource{URL: locator}, catalog.Dataset{}).Client
	}

	src := table.Source{
		Locator:  locator,
		Format:   format,
		Dialect:  opts.Dialect,
		Trusted:  true,
		Client:   opts.Client,
		MaxBytes: s.maxBytes,
	}
	return Validate(ctx, src, schema, checks, opts), nil
}

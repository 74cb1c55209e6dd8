package table

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// DefaultMaxBytes bounds how much of a table is read into memory.
const DefaultMaxBytes = 100 * 1024 * 1024

// Source describes where a table comes from and how to read it.
type Source struct {
	Locator string // local path or http(s) URL
	Format  string // canonical token, see NormalizeFormat
	Dialect Dialect

	// Trusted allows arbitrary local paths, including absolute ones. The
	// host catalog has already authorised the resolved source.
	Trusted bool

	// Client fetches remote locators; http.DefaultClient when nil.
	Client *http.Client

	MaxBytes int64
}

// IsRemote reports whether locator is an http(s) URL.
func IsRemote(locator string) bool {
	scheme, _, ok := strings.Cut(locator, "://")
	if !ok {
		return false
	}
	scheme = strings.ToLower(scheme)
	return scheme == "http" || scheme == "https"
}

// fetch returns the raw bytes of the source.
func (s Source) fetch(ctx context.Context) ([]byte, error) {
	rc, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	limit := s.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}

	data, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return nil, sourceErr(KindSource, s.Locator, fmt.Errorf("read: %w", err))
	}
	if int64(len(data)) > limit {
		return nil, sourceErr(KindSource, s.Locator, fmt.Errorf("table exceeds %d bytes", limit))
	}
	return data, nil
}

func (s Source) open(ctx context.Context) (io.ReadCloser, error) {
	loc := s.Locator
	if loc == "" {
		return nil, sourceErr(KindSource, loc, errors.New("empty source"))
	}

	if IsRemote(loc) {
		return s.openRemote(ctx)
	}

	if scheme, rest, ok := strings.Cut(loc, "://"); ok {
		if !strings.EqualFold(scheme, "file") {
			return nil, sourceErr(KindScheme, loc, fmt.Errorf("scheme %q is not supported", scheme))
		}
		loc = rest
	}

	if !s.Trusted && !isSafePath(loc) {
		return nil, sourceErr(KindSource, loc, errors.New("path is not safe"))
	}

	f, err := os.Open(loc)
	if err != nil {
		return nil, sourceErr(KindSource, s.Locator, err)
	}
	return f, nil
}

func (s Source) openRemote(ctx context.Context) (io.ReadCloser, error) {
	if _, err := url.Parse(s.Locator); err != nil {
		return nil, sourceErr(KindScheme, s.Locator, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.Locator, nil)
	if err != nil {
		return nil, sourceErr(KindSource, s.Locator, err)
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, sourceErr(KindSource, s.Locator, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, sourceErr(KindSource, s.Locator, fmt.Errorf("HTTP %d %s", resp.StatusCode, http.StatusText(resp.StatusCode)))
	}
	return resp.Body, nil
}

// isSafePath rejects absolute paths and paths escaping the working directory.
func isSafePath(p string) bool {
	if filepath.IsAbs(p) || strings.HasPrefix(p, "~") {
		return false
	}
	clean := filepath.Clean(p)
	return clean != ".." && !strings.HasPrefix(clean, ".."+string(filepath.Separator))
}

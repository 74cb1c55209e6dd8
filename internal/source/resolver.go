// Package source decides where the bytes of a resource's table come from:
// the local upload path, or the resource URL fetched through a transport
// that may be proxied and may carry an Authorization header.
package source

import (
	"context"
	"net/http"
	"time"

	"github.com/JonMunkholm/tabcheck/internal/catalog"
	"github.com/JonMunkholm/tabcheck/internal/logging"
	"github.com/JonMunkholm/tabcheck/internal/storage"
)

// Config configures a Resolver.
type Config struct {
	// Proxy is the download proxy URL for remote sources.
	Proxy string

	// PassAuthHeader enables the Authorization header for private datasets.
	PassAuthHeader bool

	// AuthHeaderValue is the credential sent. When empty the site user's
	// API key is used.
	AuthHeaderValue string

	// Timeout bounds one remote fetch. Zero means no timeout.
	Timeout time.Duration
}

// Kinds of resolved sources.
const (
	KindLocal  = "local"
	KindRemote = "remote"
)

// Resolved is where a table is read from.
type Resolved struct {
	Locator string
	Kind    string

	// Client fetches a remote locator. It carries the proxy and, for
	// private datasets, the Authorization header.
	Client *http.Client

	Authorized bool
}

// Resolver resolves table sources. It is safe for concurrent use.
type Resolver struct {
	cfg      Config
	uploads  storage.Uploader
	catalog  catalog.Client
	base     http.RoundTripper
	fallback *http.Client
}

// NewResolver returns a resolver. uploads and cat may be nil: without
// uploads every resource is read from its URL, without cat no site user
// credential can be obtained.
func NewResolver(cfg Config, uploads storage.Uploader, cat catalog.Client) (*Resolver, error) {
	t, err := newTransport(cfg.Proxy)
	if err != nil {
		return nil, err
	}
	return &Resolver{
		cfg:      cfg,
		uploads:  uploads,
		catalog:  cat,
		base:     t,
		fallback: newClient(t, cfg.Timeout),
	}, nil
}

// Resolve returns the source of res. An uploaded resource whose file is
// present in local storage is read from disk. Anything else is read from the
// resource URL; for a private dataset with PassAuthHeader set, the client
// sends an Authorization header. Resolve never fails: a missing
// credential degrades to an unauthenticated fetch.
func (r *Resolver) Resolve(ctx context.Context, res catalog.Resource, ds catalog.Dataset) Resolved {
	if res.IsUpload() {
		if path := r.localPath(ctx, res.ID); path != "" {
			return Resolved{Locator: path, Kind: KindLocal}
		}
	}

	out := Resolved{Locator: res.URL, Kind: KindRemote, Client: r.fallback}

	if ds.Private && r.cfg.PassAuthHeader {
		if cred := r.credential(ctx); cred != "" {
			h := http.Header{}
			h.Set("Authorization", cred)
			out.Client = newClient(&headerTransport{base: r.base, header: h}, r.cfg.Timeout)
			out.Authorized = true
		}
	}
	return out
}

// localPath returns the stored file of an upload, or "" when the storage
// is opaque or holds no file for the resource.
func (r *Resolver) localPath(ctx context.Context, resourceID string) string {
	p, ok := r.uploads.(storage.LocalPather)
	if !ok {
		return ""
	}
	path := p.Path(resourceID)
	if path == "" {
		return ""
	}
	found, err := p.Exists(ctx, resourceID)
	if err != nil || !found {
		logging.FromContext(ctx).Warn("upload not in storage, reading resource URL",
			"resource_id", resourceID,
			"error", err,
		)
		return ""
	}
	return path
}

func (r *Resolver) credential(ctx context.Context) string {
	if r.cfg.AuthHeaderValue != "" {
		return r.cfg.AuthHeaderValue
	}

	logger := logging.FromContext(ctx)
	if r.catalog == nil {
		logger.Warn("no catalog client for site user credential, fetching unauthenticated")
		return ""
	}
	u, err := r.catalog.SiteUser(ctx)
	if err != nil {
		logger.Warn("site user lookup failed, fetching unauthenticated", "error", err)
		return ""
	}
	if u.APIKey == "" {
		logger.Warn("site user has no API key, fetching unauthenticated")
	}
	return u.APIKey
}

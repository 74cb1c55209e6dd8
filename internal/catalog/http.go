package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// HTTPConfig configures an HTTPClient.
type HTTPConfig struct {
	BaseURL     string
	APIKey      string
	SiteUserTTL time.Duration
	Timeout     time.Duration
}

// HTTPClient calls the catalog action API (/api/3/action/<name>).
type HTTPClient struct {
	base   string
	apiKey string
	http   *http.Client

	// site user lookups are two catalog calls; cache them for SiteUserTTL
	siteUsers *expirable.LRU[string, SiteUser]
}

// NewHTTPClient returns a client for the catalog at cfg.BaseURL.
func NewHTTPClient(cfg HTTPConfig) (*HTTPClient, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("catalog: invalid base URL %q", cfg.BaseURL)
	}
	ttl := cfg.SiteUserTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		base:      strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:    cfg.APIKey,
		http:      &http.Client{Timeout: timeout},
		siteUsers: expirable.NewLRU[string, SiteUser](4, nil, ttl),
	}, nil
}

// actionResponse is the envelope every action returns.
type actionResponse struct {
	Success bool            `json:"success"`
	Result  json.RawMessage `json:"result"`
	Error   *struct {
		Type    string `json:"__type"`
		Message string `json:"message"`
	} `json:"error"`
}

// ActionError is a failed action call.
type ActionError struct {
	Action string
	Status int
	Type   string
	Msg    string
}

func (e *ActionError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("catalog %s: %s: %s", e.Action, e.Type, e.Msg)
	}
	return fmt.Sprintf("catalog %s: HTTP %d", e.Action, e.Status)
}

// Is maps a "Not Found Error" to ErrNotFound.
func (e *ActionError) Is(target error) bool {
	return target == ErrNotFound && (e.Status == http.StatusNotFound || e.Type == "Not Found Error")
}

func (c *HTTPClient) call(ctx context.Context, action string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("catalog %s: encode: %w", action, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/api/3/action/"+action, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("catalog %s: %w", action, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("catalog %s: %w", action, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return fmt.Errorf("catalog %s: read: %w", action, err)
	}

	var env actionResponse
	if err := json.Unmarshal(data, &env); err != nil {
		return &ActionError{Action: action, Status: resp.StatusCode}
	}
	if !env.Success || resp.StatusCode >= 300 {
		ae := &ActionError{Action: action, Status: resp.StatusCode}
		if env.Error != nil {
			ae.Type = env.Error.Type
			ae.Msg = env.Error.Message
		}
		return ae
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return fmt.Errorf("catalog %s: decode result: %w", action, err)
	}
	return nil
}

// PackageShow returns the dataset with the given id or name.
func (c *HTTPClient) PackageShow(ctx context.Context, id string) (Dataset, error) {
	var ds Dataset
	err := c.call(ctx, "package_show", map[string]string{"id": id}, &ds)
	return ds, err
}

// ResourcePatch updates the validation fields of a resource.
func (c *HTTPClient) ResourcePatch(ctx context.Context, pc PatchContext, p Patch) error {
	body := map[string]any{}
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("catalog resource_patch: encode: %w", err)
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return fmt.Errorf("catalog resource_patch: encode: %w", err)
	}
	if pc.ValidationPerformed {
		body["_validation_performed"] = true
	}
	return c.call(ctx, "resource_patch", body, nil)
}

// SiteUser returns the catalog's site user and its API key.
func (c *HTTPClient) SiteUser(ctx context.Context) (SiteUser, error) {
	const key = "site_user"
	if u, ok := c.siteUsers.Get(key); ok {
		return u, nil
	}

	var name SiteUser
	if err := c.call(ctx, "get_site_user", map[string]any{}, &name); err != nil {
		return SiteUser{}, err
	}
	var u SiteUser
	if err := c.call(ctx, "get_site_user", map[string]string{"id": name.Name}, &u); err != nil {
		return SiteUser{}, err
	}

	c.siteUsers.Add(key, u)
	return u, nil
}

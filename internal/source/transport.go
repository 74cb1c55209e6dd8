package source

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/http/httpproxy"
)

// newTransport returns a transport that sends every request through proxy
// when one is configured.
func newTransport(proxy string) (*http.Transport, error) {
	t := http.DefaultTransport.(*http.Transport).Clone()
	proxy = strings.TrimSpace(proxy)
	if proxy == "" {
		return t, nil
	}

	if u, err := url.Parse(proxy); err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid download proxy %q", proxy)
	}

	proxyFor := (&httpproxy.Config{HTTPProxy: proxy, HTTPSProxy: proxy}).ProxyFunc()
	t.Proxy = func(req *http.Request) (*url.URL, error) {
		return proxyFor(req.URL)
	}
	return t, nil
}

// headerTransport sets fixed headers on every request.
type headerTransport struct {
	base   http.RoundTripper
	header http.Header
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	for k, vs := range t.header {
		r.Header[k] = append([]string(nil), vs...)
	}
	return t.base.RoundTrip(r)
}

func newClient(rt http.RoundTripper, timeout time.Duration) *http.Client {
	return &http.Client{Transport: rt, Timeout: timeout}
}

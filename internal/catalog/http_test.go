package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCatalog serves a minimal action API.
func fakeCatalog(t *testing.T, calls *atomic.Int32, patches chan<- map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "sysadmin-key", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/3/action/package_show":
			if body["id"] != "ds-1" {
				w.WriteHeader(http.StatusNotFound)
				w.Write([]byte(`{"success":false,"error":{"__type":"Not Found Error","message":"Not found"}}`))
				return
			}
			w.Write([]byte(`{"success":true,"result":{"id":"ds-1","name":"roads","private":true}}`))
		case "/api/3/action/get_site_user":
			if body["id"] == nil {
				w.Write([]byte(`{"success":true,"result":{"name":"site_user"}}`))
				return
			}
			w.Write([]byte(`{"success":true,"result":{"name":"site_user","apikey":"site-key"}}`))
		case "/api/3/action/resource_patch":
			patches <- body
			w.Write([]byte(`{"success":true,"result":{}}`))
		default:
			http.NotFound(w, r)
		}
	}))
}

func newTestClient(t *testing.T, srv *httptest.Server) *HTTPClient {
	t.Helper()
	c, err := NewHTTPClient(HTTPConfig{BaseURL: srv.URL + "/", APIKey: "sysadmin-key", SiteUserTTL: time.Minute})
	require.NoError(t, err)
	return c
}

func TestHTTPClient_PackageShow(t *testing.T) {
	var calls atomic.Int32
	srv := fakeCatalog(t, &calls, nil)
	defer srv.Close()
	c := newTestClient(t, srv)

	ds, err := c.PackageShow(context.Background(), "ds-1")
	require.NoError(t, err)
	assert.Equal(t, Dataset{ID: "ds-1", Name: "roads", Private: true}, ds)

	_, err = c.PackageShow(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestHTTPClient_SiteUserCached(t *testing.T) {
	var calls atomic.Int32
	srv := fakeCatalog(t, &calls, nil)
	defer srv.Close()
	c := newTestClient(t, srv)

	for i := 0; i < 3; i++ {
		u, err := c.SiteUser(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "site-key", u.APIKey)
	}
	assert.Equal(t, int32(2), calls.Load())
}

func TestHTTPClient_ResourcePatch(t *testing.T) {
	var calls atomic.Int32
	patches := make(chan map[string]any, 1)
	srv := fakeCatalog(t, &calls, patches)
	defer srv.Close()
	c := newTestClient(t, srv)

	finished := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	err := c.ResourcePatch(context.Background(),
		PatchContext{User: "site_user", IgnoreAuth: true, ValidationPerformed: true},
		Patch{ID: "res-1", ValidationStatus: "success", ValidationTimestamp: finished, SkipNextValidation: true},
	)
	require.NoError(t, err)

	body := <-patches
	assert.Equal(t, "res-1", body["id"])
	assert.Equal(t, "success", body["validation_status"])
	assert.Equal(t, "2024-03-01T12:30:00.000000", body["validation_timestamp"])
	assert.Equal(t, true, body["_skip_next_validation"])
	assert.Equal(t, true, body["_validation_performed"])
}

func TestNewHTTPClient_InvalidURL(t *testing.T) {
	_, err := NewHTTPClient(HTTPConfig{BaseURL: "not a url"})
	assert.Error(t, err)
}

func TestResource_SchemaDescriptor(t *testing.T) {
	tests := []struct {
		name string
		res  Resource
		want string
	}{
		{"ui dict wins", Resource{UIDict: json.RawMessage(`{"fields":[]}`), Schema: json.RawMessage(`{"a":1}`)}, `{"fields":[]}`},
		{"empty ui dict", Resource{UIDict: json.RawMessage(`{}`), Schema: json.RawMessage(`{"a":1}`)}, `{"a":1}`},
		{"no ui dict", Resource{Schema: json.RawMessage(`"text"`)}, `"text"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(tt.res.SchemaDescriptor()))
		})
	}
}

package npm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/thanhnhan2tn/package-updater/pkg/cache"
	"github.com/thanhnhan2tn/package-updater/pkg/integrations"
)

func testClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)

	c := NewClient(cache.NewMemoryCache(), time.Hour).WithBaseURL(server.URL)
	c.SetHTTPClient(server.Client())
	return c
}

func TestFetchPackage(t *testing.T) {
	var gotPath string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		json.NewEncoder(w).Encode(map[string]any{
			"name":      "react",
			"dist-tags": map[string]string{"latest": "18.2.0"},
			"versions": map[string]any{
				"18.2.0": map[string]any{
					"repository": map[string]string{"type": "git", "url": "git+https://github.com/facebook/react.git"},
					"homepage":   "https://react.dev",
				},
			},
		})
	})

	info, err := c.FetchPackage(context.Background(), "React", false)
	if err != nil {
		t.Fatalf("FetchPackage() error: %v", err)
	}
	if gotPath != "/react" {
		t.Errorf("path = %q, want /react", gotPath)
	}
	if info.Version != "18.2.0" {
		t.Errorf("Version = %q, want 18.2.0", info.Version)
	}
	if info.Repository != "https://github.com/facebook/react" {
		t.Errorf("Repository = %q", info.Repository)
	}
}

func TestFetchPackageScoped(t *testing.T) {
	var gotPath string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		json.NewEncoder(w).Encode(map[string]any{
			"name":      "@types/node",
			"dist-tags": map[string]string{"latest": "20.11.5"},
		})
	})

	info, err := c.FetchPackage(context.Background(), "@types/node", false)
	if err != nil {
		t.Fatalf("FetchPackage() error: %v", err)
	}
	if gotPath != "/@types%2Fnode" {
		t.Errorf("path = %q, want /@types%%2Fnode", gotPath)
	}
	if info.Version != "20.11.5" {
		t.Errorf("Version = %q", info.Version)
	}
}

func TestFetchPackageNotFound(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.FetchPackage(context.Background(), "does-not-exist", false)
	if !errors.Is(err, integrations.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestFetchPackageCached(t *testing.T) {
	calls := 0
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode(map[string]any{
			"name":      "lodash",
			"dist-tags": map[string]string{"latest": "4.17.21"},
		})
	})

	for range 3 {
		if _, err := c.FetchPackage(context.Background(), "lodash", false); err != nil {
			t.Fatalf("FetchPackage() error: %v", err)
		}
	}
	if calls != 1 {
		t.Errorf("registry calls = %d, want 1", calls)
	}
}

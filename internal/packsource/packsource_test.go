// SPDX-License-Identifier: MPL-2.0

package packsource

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modbreeze/modbreeze/internal/testutil"
	"github.com/modbreeze/modbreeze/pkg/pack"
	"github.com/modbreeze/modbreeze/pkg/registry"
)

const packText = `loader = "fabric"
mc_version = "1.20.1"

[mods.common]
sodium = "AANobbMI"
`

func TestLoad_File(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "pack.toml")
	testutil.MustWriteFile(t, path, packText)

	data, err := NewLoader().Load(context.Background(), pack.Source{Path: path})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if string(data) != packText {
		t.Errorf("Load() = %q", data)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := NewLoader().Load(context.Background(), pack.Source{Path: filepath.Join(t.TempDir(), "nope.toml")})
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Load() error = %v, want fs.ErrNotExist", err)
	}
}

func TestLoad_InvalidSource(t *testing.T) {
	t.Parallel()

	for _, src := range []pack.Source{{}, {Path: "a", URL: "https://b"}, {URL: "ftp://host/pack.toml"}} {
		if _, err := NewLoader().Load(context.Background(), src); !errors.Is(err, pack.ErrInvalidSource) {
			t.Errorf("Load(%+v) error = %v, want ErrInvalidSource", src, err)
		}
	}
}

func TestLoad_URL(t *testing.T) {
	t.Parallel()

	headers := make(chan http.Header, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers <- r.Header.Clone()
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprint(w, packText)
	}))
	defer srv.Close()

	l := NewLoader(WithHTTPClient(srv.Client()), WithUserAgent("pack-tester/1"))
	data, err := l.Load(context.Background(), pack.Source{URL: srv.URL + "/pack.toml"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if string(data) != packText {
		t.Errorf("Load() = %q", data)
	}
	h := <-headers
	if h.Get("User-Agent") != "pack-tester/1" || h.Get("Accept") != "text/plain" {
		t.Errorf("headers: User-Agent %q, Accept %q", h.Get("User-Agent"), h.Get("Accept"))
	}
}

func TestLoad_URLErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		contentType string
		status      int
		body        string
		check       func(t *testing.T, err error)
	}{
		{
			name:        "html page",
			contentType: "text/html; charset=utf-8",
			status:      http.StatusOK,
			body:        "<html></html>",
			check: func(t *testing.T, err error) {
				t.Helper()
				var npt *NonPlainTextError
				if !errors.As(err, &npt) || !errors.Is(err, ErrNonPlainText) {
					t.Fatalf("expected NonPlainTextError, got %v", err)
				}
				if npt.ContentType != "text/html; charset=utf-8" {
					t.Errorf("ContentType = %q", npt.ContentType)
				}
				if !strings.Contains(err.Error(), "check the url") {
					t.Errorf("message should ask to check the url: %q", err)
				}
			},
		},
		{
			name:   "not found",
			status: http.StatusNotFound,
			check: func(t *testing.T, err error) {
				t.Helper()
				var se *registry.StatusError
				if !errors.As(err, &se) || se.StatusCode != http.StatusNotFound {
					t.Fatalf("expected StatusError 404, got %v", err)
				}
			},
		},
		{
			name:        "too large",
			contentType: "text/plain",
			status:      http.StatusOK,
			body:        strings.Repeat("#", pack.MaxPackFileSize+1),
			check: func(t *testing.T, err error) {
				t.Helper()
				if err == nil || !strings.Contains(err.Error(), "limit") {
					t.Fatalf("expected a size error, got %v", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				if tt.contentType != "" {
					w.Header().Set("Content-Type", tt.contentType)
				}
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			_, err := NewLoader(WithHTTPClient(srv.Client())).Load(context.Background(), pack.Source{URL: srv.URL + "/pack.toml?token=hunter2"})
			tt.check(t, err)
			if err != nil && strings.Contains(err.Error(), "hunter2") {
				t.Errorf("error %q leaks the query string", err)
			}
		})
	}
}

func TestLoad_UnreachableHostDoesNotLeakQuery(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewLoader().Load(context.Background(), pack.Source{URL: url + "/pack.toml?token=hunter2"})
	if err == nil {
		t.Fatal("expected a connection error")
	}
	if strings.Contains(err.Error(), "hunter2") {
		t.Errorf("error %q leaks the query string", err)
	}
}

// SPDX-License-Identifier: MPL-2.0

// Package packsource reads pack definition text from a local file or an
// HTTP(S) URL.
package packsource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/modbreeze/modbreeze/pkg/pack"
	"github.com/modbreeze/modbreeze/pkg/registry"
)

// ErrNonPlainText is the sentinel error wrapped by NonPlainTextError.
var ErrNonPlainText = errors.New("pack url does not serve plain text")

type (
	// NonPlainTextError is returned when a URL answers with a Content-Type
	// other than text/plain, usually an HTML page showing the pack.
	NonPlainTextError struct {
		URL         string
		ContentType string
	}

	// Loader fetches pack definitions.
	Loader struct {
		client    *http.Client
		userAgent string
		maxSize   int64
	}

	// Option configures a Loader.
	Option func(*Loader)
)

// Error implements the error interface for NonPlainTextError.
func (e *NonPlainTextError) Error() string {
	ct := e.ContentType
	if ct == "" {
		ct = "none"
	}
	return fmt.Sprintf("%s answered with content type %s instead of text/plain, check the url", e.URL, ct)
}

// Unwrap returns ErrNonPlainText for errors.Is() compatibility.
func (e *NonPlainTextError) Unwrap() error { return ErrNonPlainText }

// WithHTTPClient sets the client used for URL sources.
func WithHTTPClient(c *http.Client) Option {
	return func(l *Loader) {
		if c != nil {
			l.client = c
		}
	}
}

// WithUserAgent sets the User-Agent header of URL requests.
func WithUserAgent(ua string) Option {
	return func(l *Loader) {
		if ua != "" {
			l.userAgent = ua
		}
	}
}

// NewLoader creates a Loader accepting definitions up to pack.MaxPackFileSize.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		client:    http.DefaultClient,
		userAgent: registry.DefaultUserAgent,
		maxSize:   pack.MaxPackFileSize,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load returns the raw definition text of src.
func (l *Loader) Load(ctx context.Context, src pack.Source) ([]byte, error) {
	if valid, errs := src.IsValid(); !valid {
		return nil, errs[0]
	}
	if src.IsURL() {
		return l.fetch(ctx, src.URL)
	}
	return l.readFile(src.Path)
}

func (l *Loader) readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening pack definition: %w", err)
	}
	defer func() { _ = f.Close() }() // read-only file

	return l.readLimited(f, path)
}

func (l *Loader) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	redacted := registry.RedactURL(rawURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request for %s: %w", redacted, err)
	}
	req.Header.Set("User-Agent", l.userAgent)
	req.Header.Set("Accept", "text/plain")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", redacted, registry.ScrubURLError(err))
	}
	defer func() { _ = resp.Body.Close() }() // read-only response body

	if resp.StatusCode != http.StatusOK {
		return nil, &registry.StatusError{URL: redacted, StatusCode: resp.StatusCode}
	}

	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "text/plain") {
		return nil, &NonPlainTextError{URL: redacted, ContentType: ct}
	}

	return l.readLimited(resp.Body, redacted)
}

// readLimited reads at most maxSize bytes and fails on anything larger.
func (l *Loader) readLimited(r io.Reader, name string) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, l.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	if int64(len(data)) > l.maxSize {
		return nil, fmt.Errorf("%s is larger than the %d byte limit", name, l.maxSize)
	}
	return data, nil
}

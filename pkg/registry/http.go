// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultUserAgent is sent when no user agent is configured.
	DefaultUserAgent = "modbreeze/dev"

	// maxJSONResponseBytes is the upper bound on JSON API response size (16 MB).
	maxJSONResponseBytes = 16 << 20
)

type (
	// RateLimitError is returned when a registry reports an exhausted request quota.
	RateLimitError struct {
		Registry  string
		Limit     int
		Remaining int
		ResetAt   time.Time
	}

	// StatusError is returned for unexpected HTTP status codes.
	StatusError struct {
		URL        string
		StatusCode int
	}

	// Option configures a registry client during construction.
	Option func(*options)

	options struct {
		httpClient *http.Client
		baseURL    string
		userAgent  string
		apiKey     string
		now        func() time.Time
	}

	// transport is the HTTP plumbing shared by the registry clients.
	transport struct {
		name string
		options
		headers map[string]string
	}
)

// Error formats the rate limit details as a human-readable message.
func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s API rate limit exceeded (%d remaining, resets at %s)",
		e.Registry, e.Remaining, e.ResetAt.UTC().Format("15:04:05 UTC"))
}

// Error implements the error interface for StatusError.
func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}

// WithHTTPClient sets a custom HTTP client, useful for tests or proxy configurations.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// WithBaseURL overrides the registry API base URL, primarily for test servers.
func WithBaseURL(base string) Option {
	return func(o *options) {
		o.baseURL = strings.TrimRight(base, "/")
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(o *options) {
		if ua != "" {
			o.userAgent = ua
		}
	}
}

// WithAPIKey sets the API key. Only CurseForge requires one.
func WithAPIKey(key string) Option {
	return func(o *options) {
		o.apiKey = key
	}
}

func newTransport(name, baseURL string, opts []Option) *transport {
	t := &transport{
		name: name,
		options: options{
			httpClient: http.DefaultClient,
			baseURL:    baseURL,
			userAgent:  DefaultUserAgent,
			now:        time.Now,
		},
	}
	for _, opt := range opts {
		opt(&t.options)
	}
	return t
}

// getJSON performs a GET request and decodes a JSON body into out.
func (t *transport) getJSON(ctx context.Context, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", t.userAgent)
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", redactURL(reqURL), ScrubURLError(err))
	}
	defer func() { _ = resp.Body.Close() }() // read-only response body

	if err := t.checkRateLimit(resp); err != nil {
		return err
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w", redactURL(reqURL), ErrNotFound)
	default:
		return &StatusError{URL: redactURL(reqURL), StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxJSONResponseBytes)).Decode(out); err != nil {
		return fmt.Errorf("decoding response from %s: %w", redactURL(reqURL), err)
	}
	return nil
}

// checkRateLimit inspects the X-Ratelimit-* response headers and returns a
// RateLimitError when the remaining quota is zero and the request was refused.
func (t *transport) checkRateLimit(resp *http.Response) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}
	remaining := resp.Header.Get("X-Ratelimit-Remaining")
	if remaining == "" {
		if resp.StatusCode == http.StatusTooManyRequests {
			return &RateLimitError{Registry: t.name, ResetAt: t.now()}
		}
		return nil
	}

	rem, err := strconv.Atoi(remaining)
	if err != nil || rem > 0 {
		return nil //nolint:nilerr // Non-numeric header is non-fatal.
	}

	limit, _ := strconv.Atoi(resp.Header.Get("X-Ratelimit-Limit"))  //nolint:errcheck // Best-effort header parsing.
	reset, _ := strconv.Atoi(resp.Header.Get("X-Ratelimit-Reset")) //nolint:errcheck // Best-effort header parsing.

	return &RateLimitError{
		Registry:  t.name,
		Limit:     limit,
		Remaining: 0,
		ResetAt:   t.now().Add(time.Duration(reset) * time.Second),
	}
}

// redactURL strips query parameters and fragments from a URL for safe inclusion
// in error messages.
func redactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid-url>"
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}

// RedactURL is redactURL for callers outside the package.
func RedactURL(rawURL string) string { return redactURL(rawURL) }

// ScrubURLError unwraps a *url.Error, whose message repeats the full request
// URL, so that callers can report the redacted URL instead.
func ScrubURLError(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Err != nil {
		return uerr.Err
	}
	return err
}

// SPDX-License-Identifier: MPL-2.0

package modsync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/modbreeze/modbreeze/pkg/registry"
)

// HTTPTransferer downloads artifacts over HTTP(S).
type HTTPTransferer struct {
	client    *http.Client
	userAgent string
}

// progressWriter forwards the size of every write to a callback.
type progressWriter struct {
	onProgress func(int64)
}

func (w progressWriter) Write(p []byte) (int, error) {
	w.onProgress(int64(len(p)))
	return len(p), nil
}

// NewHTTPTransferer creates an HTTPTransferer. A nil client means
// http.DefaultClient; an empty user agent means registry.DefaultUserAgent.
func NewHTTPTransferer(client *http.Client, userAgent string) *HTTPTransferer {
	if client == nil {
		client = http.DefaultClient
	}
	if userAgent == "" {
		userAgent = registry.DefaultUserAgent
	}
	return &HTTPTransferer{client: client, userAgent: userAgent}
}

// Transfer streams url into dest+".part" and renames it to dest on success.
func (h *HTTPTransferer) Transfer(ctx context.Context, url, dest string, onProgress func(int64)) (err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", h.userAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", registry.RedactURL(url), registry.ScrubURLError(err))
	}
	defer func() { _ = resp.Body.Close() }() // read-only response body

	if resp.StatusCode != http.StatusOK {
		return &registry.StatusError{URL: registry.RedactURL(url), StatusCode: resp.StatusCode}
	}

	part := dest + PartialSuffix
	f, err := os.Create(part)
	if err != nil {
		return fmt.Errorf("creating %s: %w", part, err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(part) // best-effort cleanup of the partial file
		}
	}()

	var w io.Writer = f
	if onProgress != nil {
		w = io.MultiWriter(f, progressWriter{onProgress: onProgress})
	}
	if _, copyErr := io.Copy(w, resp.Body); copyErr != nil {
		return errors.Join(fmt.Errorf("writing %s: %w", part, copyErr), f.Close())
	}
	if closeErr := f.Close(); closeErr != nil {
		return fmt.Errorf("closing %s: %w", part, closeErr)
	}
	if renameErr := os.Rename(part, dest); renameErr != nil {
		return fmt.Errorf("renaming %s: %w", part, renameErr)
	}
	return nil
}

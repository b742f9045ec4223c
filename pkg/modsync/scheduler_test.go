// SPDX-License-Identifier: MPL-2.0

package modsync

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// recordingProgress is a ProgressReporter that records what it receives.
type recordingProgress struct {
	total    atomic.Int64
	added    atomic.Int64
	finished atomic.Bool
}

func (p *recordingProgress) Start(total int64) { p.total.Store(total) }
func (p *recordingProgress) Add(delta int64)   { p.added.Add(delta) }
func (p *recordingProgress) Finish()           { p.finished.Store(true) }

// fakeTransferer writes the URL into dest, failing for URLs listed in fail.
type fakeTransferer struct {
	mu        sync.Mutex
	fail      map[string]bool
	completed []string
	delay     time.Duration
}

func (f *fakeTransferer) Transfer(_ context.Context, url, dest string, onProgress func(int64)) error {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.fail[url] {
		return fmt.Errorf("simulated failure for %s", url)
	}
	if err := os.WriteFile(dest, []byte(url), 0o644); err != nil {
		return err
	}
	onProgress(int64(len(url)))
	f.mu.Lock()
	f.completed = append(f.completed, url)
	f.mu.Unlock()
	return nil
}

func TestScheduler_ExecuteWritesAllTargets(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	progress := &recordingProgress{}
	tr := &fakeTransferer{}
	targets := []Artifact{art("mods/a.jar"), art("resourcepacks/b.zip"), art("shaderpacks/c.zip")}

	if err := NewScheduler(tr, WithProgress(progress)).Execute(context.Background(), root, targets); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	for _, a := range targets {
		if !exists(filepath.Join(root, filepath.FromSlash(a.OutputPath))) {
			t.Errorf("%s was not written", a.OutputPath)
		}
	}
	if progress.total.Load() != 30 {
		t.Errorf("total = %d, want 30", progress.total.Load())
	}
	if !progress.finished.Load() {
		t.Error("progress should be finished")
	}
	if progress.added.Load() == 0 {
		t.Error("progress should receive deltas")
	}
}

func TestScheduler_FailureWaitsForSiblings(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	tr := &fakeTransferer{delay: 5 * time.Millisecond}
	var targets []Artifact
	for i := range 8 {
		targets = append(targets, art(fmt.Sprintf("mods/m%d.jar", i)))
	}
	tr.fail = map[string]bool{targets[0].DownloadURL: true}

	err := NewScheduler(tr, WithConcurrency(2)).Execute(context.Background(), root, targets)

	var transferErr *TransferError
	if !errors.As(err, &transferErr) {
		t.Fatalf("expected TransferError, got %v", err)
	}
	if transferErr.Path != "mods/m0.jar" {
		t.Errorf("Path = %q, want mods/m0.jar", transferErr.Path)
	}
	if !errors.Is(err, ErrTransferFailed) {
		t.Error("TransferError should unwrap to ErrTransferFailed")
	}
	if len(tr.completed) != 7 {
		t.Errorf("completed = %d, want every sibling to finish (7)", len(tr.completed))
	}
}

func TestScheduler_EmptyTargets(t *testing.T) {
	t.Parallel()

	progress := &recordingProgress{}
	if err := NewScheduler(&fakeTransferer{}, WithProgress(progress)).Execute(context.Background(), t.TempDir(), nil); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !progress.finished.Load() {
		t.Error("Finish must be called even with nothing to do")
	}
}

func TestHTTPTransferer_Success(t *testing.T) {
	t.Parallel()

	body := strings.Repeat("x", 64<<10)
	var gotUA atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA.Store(r.Header.Get("User-Agent"))
		fmt.Fprint(w, body)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "mod.jar")
	var received atomic.Int64
	tr := NewHTTPTransferer(srv.Client(), "modbreeze/test")
	if err := tr.Transfer(context.Background(), srv.URL+"/mod.jar", dest, func(d int64) { received.Add(d) }); err != nil {
		t.Fatalf("Transfer() error = %v", err)
	}

	data, err := os.ReadFile(dest)
	if err != nil || string(data) != body {
		t.Fatalf("dest content mismatch (len %d), err %v", len(data), err)
	}
	if exists(dest + PartialSuffix) {
		t.Error("partial file must be renamed away")
	}
	if received.Load() != int64(len(body)) {
		t.Errorf("progress = %d, want %d", received.Load(), len(body))
	}
	if ua, _ := gotUA.Load().(string); ua != "modbreeze/test" {
		t.Errorf("User-Agent = %q", ua)
	}
}

func TestHTTPTransferer_NonOKLeavesNothing(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "mod.jar")
	err := NewHTTPTransferer(srv.Client(), "").Transfer(context.Background(), srv.URL+"/mod.jar?token=secret", dest, nil)
	if err == nil {
		t.Fatal("expected an error for 403")
	}
	if strings.Contains(err.Error(), "secret") {
		t.Errorf("error %q must not leak the query string", err)
	}
	if exists(dest) || exists(dest+PartialSuffix) {
		t.Error("a failed transfer must not leave files behind")
	}
}

func TestHTTPTransferer_TruncatedBodyRemovesPartial(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Length", "1000")
		fmt.Fprint(w, "short")
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "mod.jar")
	if err := NewHTTPTransferer(srv.Client(), "").Transfer(context.Background(), srv.URL, dest, nil); err == nil {
		t.Fatal("expected an error for a truncated body")
	}
	if exists(dest) || exists(dest+PartialSuffix) {
		t.Error("a failed transfer must not leave files behind")
	}
}

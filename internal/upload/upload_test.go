package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

const testKey = "secret"

const squatBlock = `{"Title":"Squat Focus","NumberOfWeeks":2,"Days":[
	{"name":"A","exercises":[{"name":"Squat","setsReps":"5x5"}]}]}`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// fakeServer accepts block uploads, rejecting any body containing "BAD".
type fakeServer struct {
	uploads atomic.Int32
	failing atomic.Int32
}

func (f *fakeServer) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /api/v1/blocks", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-Key") != testKey {
			t.Errorf("X-API-Key = %q, want %q", r.Header.Get("X-API-Key"), testKey)
		}
		if f.failing.Load() > 0 {
			f.failing.Add(-1)
			http.Error(w, `{"error":"database unavailable"}`, http.StatusServiceUnavailable)
			return
		}
		body, _ := io.ReadAll(r.Body)
		if strings.Contains(string(body), "BAD") {
			http.Error(w, `{"error":"parsing block"}`, http.StatusBadRequest)
			return
		}
		n := f.uploads.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		fmt.Fprintf(w, `{"block_id":"block-%d","title":"x","format":"authoring","sessions_created":2}`, n)
	})
	return mux
}

func newTestClient(url string) *Client {
	c := NewClient(url, testKey)
	c.backoff = time.Millisecond
	return c
}

// TestStateDB verifies upload records match on path, size and hash.
func TestStateDB(t *testing.T) {
	state, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer state.Close()
	ctx := context.Background()

	ok, err := state.IsUploaded(ctx, "a.json", 10, "abc")
	if err != nil || ok {
		t.Fatalf("IsUploaded before mark = %v, %v; want false", ok, err)
	}
	if err := state.MarkUploaded(ctx, "a.json", 10, "abc", "block-1"); err != nil {
		t.Fatal(err)
	}
	if ok, _ := state.IsUploaded(ctx, "a.json", 10, "abc"); !ok {
		t.Error("IsUploaded after mark = false, want true")
	}
	if ok, _ := state.IsUploaded(ctx, "a.json", 10, "changed"); ok {
		t.Error("IsUploaded with new hash = true, want false")
	}
	if id, _ := state.BlockID(ctx, "a.json"); id != "block-1" {
		t.Errorf("BlockID = %q, want block-1", id)
	}
	if id, err := state.BlockID(ctx, "missing.json"); err != nil || id != "" {
		t.Errorf("BlockID(missing) = %q, %v; want empty", id, err)
	}
}

// TestHashFile verifies the hash changes with content.
func TestHashFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.json", "one")
	writeFile(t, dir, "b.json", "two")

	a, err := HashFile(filepath.Join(dir, "a.json"))
	if err != nil {
		t.Fatal(err)
	}
	b, _ := HashFile(filepath.Join(dir, "b.json"))
	if a == b || len(a) != 64 {
		t.Errorf("hashes %q and %q, want distinct sha256 hex", a, b)
	}
}

// TestUploadBlockRetries verifies server errors are retried.
func TestUploadBlockRetries(t *testing.T) {
	fs := &fakeServer{}
	fs.failing.Store(2)
	ts := httptest.NewServer(fs.handler(t))
	defer ts.Close()

	result, err := newTestClient(ts.URL).UploadBlock(context.Background(), "a.json", []byte(squatBlock))
	if err != nil {
		t.Fatalf("UploadBlock: %v", err)
	}
	if result.BlockID != "block-1" || result.SessionsCreated != 2 {
		t.Errorf("result = %+v", result)
	}
}

// TestUploadBlockRejected verifies a 4xx answer fails without retrying.
func TestUploadBlockRejected(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"error":"bad"}`, http.StatusUnprocessableEntity)
	}))
	defer ts.Close()

	_, err := newTestClient(ts.URL).UploadBlock(context.Background(), "a.txt", []byte("Title: x"))
	if !errors.Is(err, ErrRejected) {
		t.Errorf("err = %v, want ErrRejected", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

// TestRun verifies new files are uploaded once, unchanged files are skipped
// on the next run and a rejected file is reported without stopping the rest.
func TestRun(t *testing.T) {
	fs := &fakeServer{}
	ts := httptest.NewServer(fs.handler(t))
	defer ts.Close()

	dir := t.TempDir()
	writeFile(t, dir, "squat.json", squatBlock)
	writeFile(t, dir, "more/bench.json", strings.Replace(squatBlock, "Squat", "Bench", -1))
	writeFile(t, dir, "broken.json", `{"Title":"BAD"}`)
	writeFile(t, dir, "notes.md", "ignored")

	state, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer state.Close()

	stats, err := New(newTestClient(ts.URL), state, dir, false, 2, discardLogger()).Run(context.Background())
	if !errors.Is(err, ErrRejected) {
		t.Errorf("err = %v, want ErrRejected for broken.json", err)
	}
	if stats.FilesTotal != 3 || stats.FilesUploaded != 2 || stats.FilesErrored != 1 {
		t.Errorf("first run stats = %+v, want 3 total, 2 uploaded, 1 errored", stats)
	}
	if stats.SessionsCreated != 4 {
		t.Errorf("SessionsCreated = %d, want 4", stats.SessionsCreated)
	}

	stats, _ = New(newTestClient(ts.URL), state, dir, false, 2, discardLogger()).Run(context.Background())
	if stats.FilesSkipped != 2 || stats.FilesUploaded != 0 {
		t.Errorf("second run stats = %+v, want 2 skipped, 0 uploaded", stats)
	}
	if fs.uploads.Load() != 2 {
		t.Errorf("server saw %d uploads, want 2", fs.uploads.Load())
	}

	writeFile(t, dir, "squat.json", strings.Replace(squatBlock, "5x5", "3x5", 1))
	stats, _ = New(newTestClient(ts.URL), state, dir, false, 2, discardLogger()).Run(context.Background())
	if stats.FilesUploaded != 1 || stats.FilesReplaced != 1 || stats.FilesSkipped != 1 {
		t.Errorf("third run stats = %+v, want 1 uploaded and replaced, 1 skipped", stats)
	}
	if id, _ := state.BlockID(context.Background(), "squat.json"); id != "block-3" {
		t.Errorf("squat.json block = %q, want block-3", id)
	}
}

// TestRunDryRun verifies documents are validated locally and nothing is sent.
func TestRunDryRun(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "squat.json", squatBlock)

	state, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer state.Close()

	stats, err := New(nil, state, dir, true, 0, discardLogger()).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.FilesUploaded != 1 || stats.SessionsCreated != 2 {
		t.Errorf("dry run stats = %+v, want 1 file and 2 sessions", stats)
	}
	if ok, _ := state.IsUploaded(context.Background(), "squat.json", int64(len(squatBlock)), mustHash(t, filepath.Join(dir, "squat.json"))); ok {
		t.Error("dry run marked the file uploaded")
	}
}

func mustHash(t *testing.T, path string) string {
	t.Helper()
	h, err := HashFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return h
}

package cli

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/archviz/pkg/cache"
	"github.com/matzehuels/archviz/pkg/errors"
	"github.com/matzehuels/archviz/pkg/observability"
	"github.com/matzehuels/archviz/pkg/pipeline"
)

func newTestServer(t *testing.T) (*httptest.Server, *fakeEngine) {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	runner := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
	eng := &fakeEngine{}
	runner.Engine = eng

	ts := httptest.NewServer(newServer(runner, pipeline.Options{}, logger).routes())
	t.Cleanup(ts.Close)
	return ts, eng
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func TestServeRoutes(t *testing.T) {
	ts, _ := newTestServer(t)

	tests := []struct {
		path        string
		status      int
		contentType string
		contains    string
	}{
		{"/healthz", http.StatusOK, "text/plain", "ok"},
		{"/", http.StatusOK, "text/html", `<img src="/diagram.svg"`},
		{"/diagram.dot", http.StatusOK, "text/vnd.graphviz", "digraph G {"},
		{"/diagram.mermaid", http.StatusOK, "text/plain", "flowchart TB"},
		{"/diagram.json", http.StatusOK, "application/json", `"name": "Stock Market Microservice"`},
		{"/diagram.toml", http.StatusOK, "application/toml", `name = "Stock Market Microservice"`},
		{"/diagram.png", http.StatusOK, "image/png", "\x89PNG"},
		{"/diagram.svg?engine=neato", http.StatusOK, "image/svg+xml", "fake svg"},
		{"/diagram.gif", http.StatusBadRequest, "text/plain", "invalid format"},
		{"/diagram.png?engine=nope", http.StatusBadRequest, "text/plain", "invalid engine"},
		{"/missing", http.StatusNotFound, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, body := get(t, ts.URL+tt.path)
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d (%s)", resp.StatusCode, tt.status, body)
			}
			if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, tt.contentType) {
				t.Errorf("Content-Type = %q, want prefix %q", ct, tt.contentType)
			}
			if !strings.Contains(body, tt.contains) {
				t.Errorf("body missing %q", tt.contains)
			}
		})
	}
}

func TestServeEngineFailure(t *testing.T) {
	ts, eng := newTestServer(t)
	eng.err = errors.New(errors.ErrCodeRender, "graphviz unavailable")

	resp, _ := get(t, ts.URL+"/diagram.png")
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", resp.StatusCode)
	}
}

func TestServeRequestID(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, _ := get(t, ts.URL+"/healthz")
	if resp.Header.Get(requestIDHeader) == "" {
		t.Error("response should carry a generated request ID")
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	resp2, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp2.Body.Close()
	if got := resp2.Header.Get(requestIDHeader); got != "abc-123" {
		t.Errorf("request ID = %q, want the caller's", got)
	}
}

type recordingServerHooks struct {
	observability.NoopServerHooks
	statuses chan int
}

func (h *recordingServerHooks) OnResponse(_ context.Context, _, _ string, status int, _ time.Duration) {
	h.statuses <- status
}

func TestServeObserve(t *testing.T) {
	t.Cleanup(observability.Reset)
	hooks := &recordingServerHooks{statuses: make(chan int, 4)}
	observability.SetServerHooks(hooks)

	ts, _ := newTestServer(t)
	get(t, ts.URL+"/healthz")
	get(t, ts.URL+"/diagram.gif")

	for _, want := range []int{http.StatusOK, http.StatusBadRequest} {
		select {
		case got := <-hooks.statuses:
			if got != want {
				t.Errorf("observed status %d, want %d", got, want)
			}
		case <-time.After(time.Second):
			t.Fatal("server hook not called")
		}
	}
}

func TestServeCaches(t *testing.T) {
	logger := log.NewWithOptions(io.Discard, log.Options{})
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := pipeline.NewRunner(fc, nil, logger)
	eng := &fakeEngine{}
	runner.Engine = eng
	ts := httptest.NewServer(newServer(runner, pipeline.Options{}, logger).routes())
	defer ts.Close()

	_, first := get(t, ts.URL+"/diagram.png")
	_, second := get(t, ts.URL+"/diagram.png")
	if !bytes.Equal([]byte(first), []byte(second)) {
		t.Error("cached response differs")
	}
	if eng.calls.Load() != 1 {
		t.Errorf("engine calls = %d, want 1", eng.calls.Load())
	}
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	h := &logHooks{logger: newLogger(&buf, log.DebugLevel)}
	ctx := context.Background()

	h.OnLoad(ctx, "stock-market", 9, 10, time.Millisecond, nil)
	h.OnRenderComplete(ctx, "png", 100, time.Millisecond, nil)
	h.OnCacheHit(ctx, "artifact")

	for _, want := range []string{"source=stock-market", "format=png", "cache hit"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("log missing %q:\n%s", want, buf.String())
		}
	}
}

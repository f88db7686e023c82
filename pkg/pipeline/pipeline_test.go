package pipeline

import (
	"bytes"
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/archviz/pkg/architecture"
	"github.com/matzehuels/archviz/pkg/cache"
	"github.com/matzehuels/archviz/pkg/errors"
	"github.com/matzehuels/archviz/pkg/render"
)

// fakeEngine stands in for Graphviz and counts calls.
type fakeEngine struct {
	calls atomic.Int32
	err   error
}

func (f *fakeEngine) Render(_ context.Context, dot string, format render.Format) ([]byte, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return []byte(string(format) + ":" + cache.Hash([]byte(dot))), nil
}

// brokenCache fails every operation, like an unreachable backend.
type brokenCache struct{}

var errBackendDown = stderrors.New("backend down")

func (brokenCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errBackendDown
}
func (brokenCache) Set(context.Context, string, []byte, time.Duration) error { return errBackendDown }
func (brokenCache) Delete(context.Context, string) error                     { return errBackendDown }
func (brokenCache) Close() error                                             { return nil }

func newTestRunner(t *testing.T, c cache.Cache) (*Runner, *fakeEngine) {
	t.Helper()
	r := NewRunner(c, nil, nil)
	eng := &fakeEngine{}
	r.Engine = eng
	return r, eng
}

func TestValidateAndSetDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error: %v", err)
	}
	if opts.Diagram != architecture.DefaultName {
		t.Errorf("Diagram = %q, want %q", opts.Diagram, architecture.DefaultName)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != render.FormatPNG {
		t.Errorf("Formats = %v, want [png]", opts.Formats)
	}
	if opts.Engine != "dot" {
		t.Errorf("Engine = %q, want dot", opts.Engine)
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Errorf("second call error: %v", err)
	}
}

func TestValidateAndSetDefaultsErrors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"unknown diagram", Options{Diagram: "nope"}, errors.ErrCodeDiagramNotFound},
		{"bad format", Options{Formats: []render.Format{"gif"}}, errors.ErrCodeInvalidFormat},
		{"bad engine", Options{Engine: "sfdp2"}, errors.ErrCodeInvalidEngine},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestExecuteDefault(t *testing.T) {
	r, eng := newTestRunner(t, nil)

	result, err := r.Execute(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if len(result.Artifacts[render.FormatPNG]) == 0 {
		t.Fatal("missing png artifact")
	}
	if eng.calls.Load() != 1 {
		t.Errorf("engine calls = %d, want 1", eng.calls.Load())
	}
	if result.Stats.NodeCount != 9 || result.Stats.EdgeCount != 10 || result.Stats.ClusterCount != 5 {
		t.Errorf("stats = %+v", result.Stats)
	}
	if result.DOTHash != cache.Hash([]byte(result.DOT)) {
		t.Error("DOTHash does not match DOT")
	}
}

func TestExecuteAllFormats(t *testing.T) {
	r, eng := newTestRunner(t, nil)

	result, err := r.Execute(context.Background(), Options{Formats: render.Formats})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	for _, f := range render.Formats {
		if len(result.Artifacts[f]) == 0 {
			t.Errorf("missing %s artifact", f)
		}
	}
	if got := eng.calls.Load(); got != 3 {
		t.Errorf("engine calls = %d, want 3 (png, svg, jpg)", got)
	}
	if string(result.Artifacts[render.FormatDOT]) != result.DOT {
		t.Error("dot artifact should be the emitted DOT source")
	}
}

func TestExecuteCache(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r, eng := newTestRunner(t, c)
	ctx := context.Background()
	opts := Options{Formats: []render.Format{render.FormatPNG, render.FormatSVG}}

	first, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("first Execute() error: %v", err)
	}
	if first.CacheInfo.Hits != 0 || first.CacheInfo.Misses != 2 {
		t.Errorf("first run cache info = %+v", first.CacheInfo)
	}

	second, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("second Execute() error: %v", err)
	}
	if second.CacheInfo.Hits != 2 {
		t.Errorf("second run hits = %d, want 2", second.CacheInfo.Hits)
	}
	if eng.calls.Load() != 2 {
		t.Errorf("engine calls = %d, want 2", eng.calls.Load())
	}
	if !bytes.Equal(first.Artifacts[render.FormatPNG], second.Artifacts[render.FormatPNG]) {
		t.Error("cached artifact differs from rendered one")
	}

	opts.Refresh = true
	if _, err := r.Execute(ctx, opts); err != nil {
		t.Fatalf("refresh Execute() error: %v", err)
	}
	if eng.calls.Load() != 4 {
		t.Errorf("engine calls after refresh = %d, want 4", eng.calls.Load())
	}
}

func TestExecuteCacheErrors(t *testing.T) {
	var logs bytes.Buffer
	r := NewRunner(brokenCache{}, nil, log.NewWithOptions(&logs, log.Options{Level: log.WarnLevel}))
	eng := &fakeEngine{}
	r.Engine = eng

	result, err := r.Execute(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if len(result.Artifacts[render.FormatPNG]) == 0 {
		t.Error("png artifact missing")
	}
	if result.CacheInfo.Hits != 0 || result.CacheInfo.Misses != 1 {
		t.Errorf("cache info = %+v, want 1 miss", result.CacheInfo)
	}
	if eng.calls.Load() != 1 {
		t.Errorf("engine calls = %d, want 1", eng.calls.Load())
	}
	for _, msg := range []string{"cache read failed", "cache write failed", "backend down"} {
		if !strings.Contains(logs.String(), msg) {
			t.Errorf("logs missing %q:\n%s", msg, logs.String())
		}
	}
}

func TestExecuteEngineChangesKey(t *testing.T) {
	c, _ := cache.NewFileCache(t.TempDir())
	r, eng := newTestRunner(t, c)
	ctx := context.Background()

	if _, err := r.Execute(ctx, Options{Engine: "dot"}); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Execute(ctx, Options{Engine: "neato"}); err != nil {
		t.Fatal(err)
	}
	if eng.calls.Load() != 2 {
		t.Errorf("engine calls = %d, want 2", eng.calls.Load())
	}
}

func TestExecuteEngineFailure(t *testing.T) {
	r, eng := newTestRunner(t, nil)
	eng.err = errors.New(errors.ErrCodeRender, "graphviz unavailable")

	_, err := r.Execute(context.Background(), Options{})
	if err == nil {
		t.Fatal("Execute() should fail when the engine fails")
	}
	if !errors.Is(err, errors.ErrCodeRender) {
		t.Errorf("error code = %s, want RENDER_FAILED", errors.GetCode(err))
	}
}

func TestExecuteFailureNotCached(t *testing.T) {
	c, _ := cache.NewFileCache(t.TempDir())
	r, eng := newTestRunner(t, c)
	eng.err = stderrors.New("boom")

	if _, err := r.Execute(context.Background(), Options{}); err == nil {
		t.Fatal("expected error")
	}
	eng.err = nil
	result, err := r.Execute(context.Background(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if result.CacheInfo.Hits != 0 {
		t.Error("a failed render must not populate the cache")
	}
}

func TestExecuteFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiny.toml")
	def := `
name = "Tiny"
filename = "tiny"

[[nodes]]
id = "web"

[[nodes]]
id = "db"
kind = "postgresql"

[[edges]]
from = "web"
to = "db"
`
	if err := os.WriteFile(path, []byte(def), 0o644); err != nil {
		t.Fatal(err)
	}

	r, _ := newTestRunner(t, nil)
	result, err := r.Execute(context.Background(), Options{File: path, Formats: []render.Format{render.FormatMermaid}})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if result.Diagram.Name != "Tiny" || result.Stats.NodeCount != 2 {
		t.Errorf("loaded %q with %d nodes", result.Diagram.Name, result.Stats.NodeCount)
	}
}

func TestExecuteFileErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.toml")
	_ = os.WriteFile(bad, []byte("[[edges]]\nfrom = \"a\"\nto = \"b\"\n"), 0o644)

	tests := []struct {
		name string
		path string
		code errors.Code
	}{
		{"missing", filepath.Join(dir, "missing.toml"), errors.ErrCodeFileNotFound},
		{"unknown endpoints", bad, errors.ErrCodeInvalidDefinition},
		{"extension", filepath.Join(dir, "x.yaml"), errors.ErrCodeUnsupported},
	}
	r, _ := newTestRunner(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Execute(context.Background(), Options{File: tt.path})
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestWriteArtifacts(t *testing.T) {
	r, _ := newTestRunner(t, nil)
	result, err := r.Execute(context.Background(), Options{
		Formats: []render.Format{render.FormatPNG, render.FormatMermaid},
	})
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	paths, err := WriteArtifacts(result, dir, "")
	if err != nil {
		t.Fatalf("WriteArtifacts() error: %v", err)
	}
	want := []string{filepath.Join(dir, "architecture.png"), filepath.Join(dir, "architecture.mmd")}
	if len(paths) != len(want) {
		t.Fatalf("paths = %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("paths[%d] = %q, want %q", i, paths[i], want[i])
		}
	}

	paths, err = WriteArtifacts(result, filepath.Join(dir, "out"), "custom")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(paths[0]) != "custom.png" {
		t.Errorf("custom base path = %q", paths[0])
	}
}

func TestGenerateWithGraphviz(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	dir := t.TempDir()
	path := filepath.Join(dir, "architecture.png")

	// Generating twice must rewrite the file both times.
	for i := range 2 {
		result, err := r.Execute(context.Background(), Options{})
		if err != nil {
			t.Fatalf("run %d: Execute() error: %v", i, err)
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			t.Fatal(err)
		}
		if _, err := WriteArtifacts(result, dir, ""); err != nil {
			t.Fatalf("run %d: WriteArtifacts() error: %v", i, err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		if !bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")) {
			t.Errorf("run %d: architecture.png is not a PNG", i)
		}
	}
}

package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/archviz/pkg/architecture"
	"github.com/matzehuels/archviz/pkg/cache"
	"github.com/matzehuels/archviz/pkg/diagram"
	"github.com/matzehuels/archviz/pkg/errors"
	"github.com/matzehuels/archviz/pkg/io"
	"github.com/matzehuels/archviz/pkg/observability"
	"github.com/matzehuels/archviz/pkg/render"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner holds no per-run state, so one Runner can serve concurrent
// Execute calls (the preview server does this).
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	Engine render.Engine
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// The engine is the in-process Graphviz; tests may replace it.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		Engine: render.Graphviz{},
	}
}

// Execute runs the complete load → emit → render pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	loadStart := time.Now()
	d, err := r.Load(ctx, opts)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Diagram:   d,
		Formats:   opts.Formats,
		Artifacts: make(map[render.Format][]byte, len(opts.Formats)),
	}
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.NodeCount = d.NodeCount()
	result.Stats.EdgeCount = d.EdgeCount()
	result.Stats.ClusterCount = d.ClusterCount()

	result.DOT = diagram.ToDOT(d, diagram.Options{Engine: opts.Engine})
	result.DOTHash = cache.Hash([]byte(result.DOT))

	renderStart := time.Now()
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, format := range opts.Formats {
		g.Go(func() error {
			data, hit, err := r.renderFormat(gctx, result, format, opts)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			result.Artifacts[format] = data
			if format.NeedsEngine() {
				if hit {
					result.CacheInfo.Hits++
				} else {
					result.CacheInfo.Misses++
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	result.Stats.RenderTime = time.Since(renderStart)

	r.Logger.Debug("rendered outputs",
		"formats", opts.Formats,
		"cache_hits", result.CacheInfo.Hits,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Load builds or imports the diagram selected by opts and validates it.
func (r *Runner) Load(ctx context.Context, opts Options) (*diagram.Diagram, error) {
	start := time.Now()
	d, err := load(opts)
	if err == nil {
		if verr := d.Validate(); verr != nil {
			err = errors.Wrap(errors.ErrCodeInvalidDiagram, verr, "validate %s", opts.Source())
		}
	}

	var nodes, edges int
	if d != nil {
		nodes, edges = d.NodeCount(), d.EdgeCount()
	}
	observability.Pipeline().OnLoad(ctx, opts.Source(), nodes, edges, time.Since(start), err)

	if err != nil {
		return nil, err
	}
	return d, nil
}

func load(opts Options) (*diagram.Diagram, error) {
	if opts.File != "" {
		return io.ImportFile(opts.File)
	}
	build, ok := architecture.Builtin[opts.Diagram]
	if !ok {
		return nil, errors.New(errors.ErrCodeDiagramNotFound, "unknown diagram: %s", opts.Diagram)
	}
	d, err := build()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "build %s", opts.Diagram)
	}
	return d, nil
}

// renderFormat produces one artifact. Image formats go through the artifact
// cache; the returned bool reports a cache hit.
func (r *Runner) renderFormat(ctx context.Context, res *Result, format render.Format, opts Options) ([]byte, bool, error) {
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, string(format))
	start := time.Now()

	if !format.NeedsEngine() {
		data, err := render.Text(res.Diagram, res.DOT, format)
		hooks.OnRenderComplete(ctx, string(format), len(data), time.Since(start), err)
		return data, false, err
	}

	key := r.Keyer.ArtifactKey(res.DOTHash, opts.ArtifactKeyOpts(format))
	if !opts.Refresh {
		data, hit, err := r.Cache.Get(ctx, key)
		switch {
		case err != nil:
			r.Logger.Warn("cache read failed", "format", format, "error", err)
		case hit:
			observability.Cache().OnCacheHit(ctx, "artifact")
			hooks.OnRenderComplete(ctx, string(format), len(data), time.Since(start), nil)
			return data, true, nil
		default:
			observability.Cache().OnCacheMiss(ctx, "artifact")
		}
	}

	data, err := r.Engine.Render(ctx, res.DOT, format)
	hooks.OnRenderComplete(ctx, string(format), len(data), time.Since(start), err)
	if err != nil {
		return nil, false, fmt.Errorf("render %s: %w", format, err)
	}

	if err := r.Cache.Set(ctx, key, data, TTLArtifact); err != nil {
		r.Logger.Warn("cache write failed", "format", format, "error", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}
	return data, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// Package pipeline provides the diagram generation pipeline for archviz.
//
// The pipeline is shared by the CLI commands and the preview server so that
// every entry point loads, validates, caches and renders diagrams the same
// way.
//
// # Stages
//
//  1. Load: build a registered diagram or import a TOML/JSON definition
//  2. Emit: validate the diagram and convert it to DOT source
//  3. Render: produce every requested format, image formats through the
//     layout engine (concurrently, with the artifact cache in front)
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Formats: []render.Format{render.FormatPNG, render.FormatSVG},
//	})
//	if err != nil {
//	    return err
//	}
//	paths, err := pipeline.WriteArtifacts(result, ".", "")
package pipeline

import (
	"slices"
	"time"

	"github.com/matzehuels/archviz/pkg/architecture"
	"github.com/matzehuels/archviz/pkg/cache"
	"github.com/matzehuels/archviz/pkg/diagram"
	"github.com/matzehuels/archviz/pkg/errors"
	"github.com/matzehuels/archviz/pkg/render"
)

// TTLArtifact is how long rendered images stay cached. Artifacts are keyed by
// content, so expiry only bounds disk usage.
const TTLArtifact = 30 * 24 * time.Hour

// Options configures a pipeline run.
type Options struct {
	// Diagram names a registered diagram. Empty means
	// architecture.DefaultName. Ignored when File is set.
	Diagram string `json:"diagram,omitempty"`

	// File is a TOML or JSON diagram definition to import instead.
	File string `json:"file,omitempty"`

	// Formats to render. Empty means [render.DefaultFormat].
	Formats []render.Format `json:"formats,omitempty"`

	// Engine is the Graphviz layout engine. Empty means diagram.DefaultEngine.
	Engine string `json:"engine,omitempty"`

	// Refresh skips cache reads; fresh artifacts are still written back.
	Refresh bool `json:"refresh,omitempty"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Diagram is the loaded and validated diagram.
	Diagram *diagram.Diagram

	// DOT is the emitted Graphviz source and DOTHash its content hash.
	DOT     string
	DOTHash string

	// Formats lists the rendered formats in request order.
	Formats []render.Format

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[render.Format][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount    int
	EdgeCount    int
	ClusterCount int
	LoadTime     time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks artifact cache usage for a run.
type CacheInfo struct {
	Hits   int // image artifacts served from cache
	Misses int // image artifacts rendered by the engine
}

// ValidateAndSetDefaults checks the options and fills in defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.File == "" && o.Diagram == "" {
		o.Diagram = architecture.DefaultName
	}
	if o.File == "" {
		if _, ok := architecture.Builtin[o.Diagram]; !ok {
			return errors.New(errors.ErrCodeDiagramNotFound, "unknown diagram: %s", o.Diagram)
		}
	}

	if len(o.Formats) == 0 {
		o.Formats = []render.Format{render.DefaultFormat}
	}
	formats := make([]render.Format, 0, len(o.Formats))
	for _, f := range o.Formats {
		parsed, err := render.ParseFormat(string(f))
		if err != nil {
			return err
		}
		if !slices.Contains(formats, parsed) {
			formats = append(formats, parsed)
		}
	}
	o.Formats = formats

	if o.Engine == "" {
		o.Engine = diagram.DefaultEngine
	}
	if !diagram.Engines[o.Engine] {
		return errors.New(errors.ErrCodeInvalidEngine, "invalid engine: %s (must be one of dot, neato, fdp, circo, twopi)", o.Engine)
	}
	return nil
}

// Source describes where the diagram comes from, for logs and hooks.
func (o *Options) Source() string {
	if o.File != "" {
		return o.File
	}
	return o.Diagram
}

// ArtifactKeyOpts returns cache key options for one rendered format.
func (o *Options) ArtifactKeyOpts(format render.Format) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{Format: string(format), Engine: o.Engine}
}

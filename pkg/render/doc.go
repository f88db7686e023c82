// Package render turns diagram descriptions into output artifacts.
//
// # Formats
//
// Raster and vector images are produced by Graphviz:
//
//   - png: raster image (the default)
//   - svg: vector image, with the viewBox normalized to start at the origin
//   - jpg: raster image without transparency
//
// Text formats are produced without a layout engine:
//
//   - dot: the Graphviz source itself
//   - mermaid: a Mermaid flowchart of the same graph
//   - json, toml: diagram definitions that can be re-imported with --file
//
// # Engine
//
// Graphviz runs in-process through [github.com/goccy/go-graphviz], so no
// external dot binary is needed. The [Engine] interface is the seam between
// the pipeline and the layout engine:
//
//	data, err := render.Graphviz{}.Render(ctx, dot, render.FormatPNG)
//
// Engine failures (malformed DOT, engine start-up errors) are returned as
// RENDER_FAILED errors; nothing is retried.
package render

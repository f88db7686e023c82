// Package pkg provides the libraries behind archviz architecture diagrams.
//
// # Overview
//
// archviz describes a system as nodes grouped into nested clusters and joined
// by labeled, styled edges, then hands the description to Graphviz for
// layout. The pkg directory is organized as:
//
//  1. [diagram] - The diagram model and its DOT emitter
//  2. [architecture] - Built-in diagrams (the stock-market microservice)
//  3. [io] - TOML and JSON diagram definitions
//  4. [render] - Output formats: Graphviz images, Mermaid, DOT, definitions
//  5. [pipeline] - Orchestration (load → emit → render) with caching
//  6. [cache] - Artifact cache backends (file, Redis, null)
//  7. [errors], [observability], [buildinfo] - Shared infrastructure
//
// # Architecture
//
// The typical data flow through archviz:
//
//	built-in constructor / definition file
//	         ↓
//	    [diagram] package (nodes, clusters, edges)
//	         ↓
//	    DOT source
//	         ↓
//	    [render] package (Graphviz or text formats)
//	         ↓
//	    PNG/SVG/JPG/DOT/Mermaid/JSON/TOML output
//
// # Quick Start
//
// Build a diagram and render it to PNG:
//
//	d := diagram.New("Shop", diagram.WithDirection(diagram.LeftRight))
//	_ = d.AddNode(diagram.Node{ID: "web", Label: "Web"})
//	_ = d.AddNode(diagram.Node{ID: "db", Label: "Orders", Kind: diagram.KindPostgreSQL})
//	_ = d.Connect("web", diagram.EdgeStyle{Label: "SQL"}, "db")
//
//	png, err := render.Render(ctx, render.Graphviz{}, d, render.FormatPNG, diagram.Options{})
//
// Or let the pipeline load, cache and write everything:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{File: "shop.toml"})
//	paths, err := pipeline.WriteArtifacts(result, "out", "")
package pkg

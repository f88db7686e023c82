// Package io reads and writes diagram definition documents.
//
// A definition describes a [diagram.Diagram] as data so diagrams other than
// the built-in ones can be rendered without recompiling. Two encodings are
// supported: TOML (the format meant for hand editing) and JSON.
//
// # TOML Format
//
//	name = "Shop"
//	filename = "shop"
//	direction = "LR"
//
//	[graph_attr]
//	bgcolor = "transparent"
//
//	[[clusters]]
//	id = "backend"
//	label = "Backend"
//	[clusters.attrs]
//	bgcolor = "lightblue"
//
//	[[nodes]]
//	id = "api"
//	label = "API"
//	kind = "spring"
//	cluster = "backend"
//
//	[[edges]]
//	from = "web"
//	to = "api"
//	label = "HTTPS"
//	color = "blue"
//	style = "bold"
//
// Clusters must list parents before children, and nodes must reference
// declared clusters. Decoding reports the first offending entry.
//
// # Files
//
// [ImportFile] and [ExportFile] pick the encoding from the file extension
// (.toml, .json).
//
// [diagram.Diagram]: github.com/matzehuels/archviz/pkg/diagram.Diagram
package io

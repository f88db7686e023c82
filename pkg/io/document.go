package io

import (
	"fmt"

	"github.com/matzehuels/archviz/pkg/diagram"
)

// Document is the serialized form of a diagram.
type Document struct {
	Name      string            `json:"name" toml:"name"`
	Filename  string            `json:"filename,omitempty" toml:"filename,omitempty"`
	Direction string            `json:"direction,omitempty" toml:"direction,omitempty"`
	GraphAttr map[string]string `json:"graph_attr,omitempty" toml:"graph_attr,omitempty"`
	Clusters  []Cluster         `json:"clusters,omitempty" toml:"clusters,omitempty"`
	Nodes     []Node            `json:"nodes" toml:"nodes"`
	Edges     []Edge            `json:"edges,omitempty" toml:"edges,omitempty"`
}

type Cluster struct {
	ID     string            `json:"id" toml:"id"`
	Label  string            `json:"label,omitempty" toml:"label,omitempty"`
	Parent string            `json:"parent,omitempty" toml:"parent,omitempty"`
	Attrs  map[string]string `json:"attrs,omitempty" toml:"attrs,omitempty"`
}

type Node struct {
	ID      string            `json:"id" toml:"id"`
	Label   string            `json:"label,omitempty" toml:"label,omitempty"`
	Kind    string            `json:"kind,omitempty" toml:"kind,omitempty"`
	Cluster string            `json:"cluster,omitempty" toml:"cluster,omitempty"`
	Attrs   map[string]string `json:"attrs,omitempty" toml:"attrs,omitempty"`
}

type Edge struct {
	From  string            `json:"from" toml:"from"`
	To    string            `json:"to" toml:"to"`
	Label string            `json:"label,omitempty" toml:"label,omitempty"`
	Color string            `json:"color,omitempty" toml:"color,omitempty"`
	Style string            `json:"style,omitempty" toml:"style,omitempty"`
	Attrs map[string]string `json:"attrs,omitempty" toml:"attrs,omitempty"`
}

// FromDiagram converts d into its serialized form.
func FromDiagram(d *diagram.Diagram) Document {
	doc := Document{
		Name:      d.Name,
		Filename:  d.Filename,
		Direction: string(d.Direction),
		GraphAttr: nonEmpty(d.GraphAttr),
	}
	for _, c := range d.Clusters() {
		doc.Clusters = append(doc.Clusters, Cluster{
			ID:     c.ID,
			Label:  c.Label,
			Parent: c.Parent,
			Attrs:  nonEmpty(c.Attrs),
		})
	}
	doc.Nodes = make([]Node, 0, d.NodeCount())
	for _, n := range d.Nodes() {
		kind := string(n.Kind)
		if n.Kind == diagram.KindGeneric {
			kind = ""
		}
		doc.Nodes = append(doc.Nodes, Node{
			ID:      n.ID,
			Label:   n.Label,
			Kind:    kind,
			Cluster: n.Cluster,
			Attrs:   nonEmpty(n.Attrs),
		})
	}
	for _, e := range d.Edges() {
		doc.Edges = append(doc.Edges, Edge{
			From:  e.From,
			To:    e.To,
			Label: e.Label,
			Color: e.Color,
			Style: e.Style,
			Attrs: nonEmpty(e.Attrs),
		})
	}
	return doc
}

// Diagram builds a validated diagram from the document.
func (doc Document) Diagram() (*diagram.Diagram, error) {
	dir, err := diagram.ParseDirection(doc.Direction)
	if err != nil {
		return nil, err
	}
	opts := []diagram.Option{diagram.WithDirection(dir), diagram.WithGraphAttr(doc.GraphAttr)}
	if doc.Filename != "" {
		opts = append(opts, diagram.WithFilename(doc.Filename))
	}
	d := diagram.New(doc.Name, opts...)

	for _, c := range doc.Clusters {
		if err := d.AddCluster(diagram.Cluster{ID: c.ID, Label: c.Label, Parent: c.Parent, Attrs: c.Attrs}); err != nil {
			return nil, fmt.Errorf("cluster %s: %w", c.ID, err)
		}
	}
	for _, n := range doc.Nodes {
		kind, err := diagram.ParseKind(n.Kind)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", n.ID, err)
		}
		node := diagram.Node{ID: n.ID, Label: n.Label, Kind: kind, Cluster: n.Cluster, Attrs: n.Attrs}
		if err := d.AddNode(node); err != nil {
			return nil, fmt.Errorf("node %s: %w", n.ID, err)
		}
	}
	for _, e := range doc.Edges {
		edge := diagram.Edge{From: e.From, To: e.To, Label: e.Label, Color: e.Color, Style: e.Style, Attrs: e.Attrs}
		if err := d.AddEdge(edge); err != nil {
			return nil, fmt.Errorf("edge %s->%s: %w", e.From, e.To, err)
		}
	}
	return d, d.Validate()
}

func nonEmpty(a diagram.Attrs) map[string]string {
	if len(a) == 0 {
		return nil
	}
	return a.Clone()
}

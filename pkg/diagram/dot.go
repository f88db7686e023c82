package diagram

import (
	"bytes"
	"fmt"
	"maps"
	"strings"
)

// Engines is the set of Graphviz layout engines accepted by [Options.Engine].
var Engines = map[string]bool{
	"dot":   true,
	"neato": true,
	"fdp":   true,
	"circo": true,
	"twopi": true,
}

// DefaultEngine is the hierarchical layout used when no engine is set.
const DefaultEngine = "dot"

// Options configures DOT emission.
type Options struct {
	// Engine selects the Graphviz layout engine via the "layout" graph
	// attribute. Empty means [DefaultEngine].
	Engine string
}

var (
	defaultGraphAttr = Attrs{
		"pad":       "2.0",
		"splines":   "ortho",
		"nodesep":   "0.60",
		"ranksep":   "0.75",
		"fontname":  "Sans-Serif",
		"fontsize":  "15",
		"fontcolor": "#2D3436",
		"labelloc":  "t",
		"compound":  "true",
	}

	defaultNodeAttr = Attrs{
		"shape":     "box",
		"style":     "rounded,filled",
		"fillcolor": "white",
		"margin":    "0.25,0.12",
		"fontname":  "Sans-Serif",
		"fontsize":  "13",
		"fontcolor": "#2D3436",
		"color":     "#AEB5BD",
	}

	defaultEdgeAttr = Attrs{
		"color":    "#7B8894",
		"fontname": "Sans-Serif",
		"fontsize": "11",
	}

	defaultClusterAttr = Attrs{
		"shape":     "box",
		"style":     "rounded",
		"labeljust": "l",
		"pencolor":  "#AEB5BD",
		"fontname":  "Sans-Serif",
		"fontsize":  "12",
	}

	// clusterBackgrounds cycles by nesting depth.
	clusterBackgrounds = []string{"#E5F5FD", "#EBF3E7", "#ECE8F6", "#FDF7E3"}
)

// kindAttrs replaces the provider icons with a shape and fill per kind.
var kindAttrs = map[Kind]Attrs{
	KindGeneric:    {},
	KindUsers:      {"shape": "ellipse", "style": "filled", "fillcolor": "#DCEBFA"},
	KindVault:      {"shape": "octagon", "style": "filled", "fillcolor": "#F7E9C6"},
	KindSpring:     {"fillcolor": "#D8F0CC"},
	KindJava:       {"fillcolor": "#FBE3CF"},
	KindPostgreSQL: {"shape": "cylinder", "style": "filled", "fillcolor": "#D3E1F3"},
	KindInternet:   {"shape": "ellipse", "style": "filled", "fillcolor": "#ECECEC"},
}

// ToDOT converts a diagram to Graphviz DOT source. Output is deterministic:
// clusters, nodes and edges keep declaration order and attribute lists are
// sorted by name.
func ToDOT(d *Diagram, opts Options) string {
	engine := opts.Engine
	if engine == "" {
		engine = DefaultEngine
	}

	graphAttr := defaultGraphAttr.Clone()
	graphAttr["label"] = d.Name
	graphAttr["rankdir"] = string(d.Direction)
	graphAttr["layout"] = engine
	maps.Copy(graphAttr, d.GraphAttr)

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	writeAttrLines(&buf, "  ", graphAttr)
	fmt.Fprintf(&buf, "  node [%s];\n", fmtAttrs(defaultNodeAttr))
	fmt.Fprintf(&buf, "  edge [%s];\n", fmtAttrs(defaultEdgeAttr))
	buf.WriteString("\n")

	for _, n := range d.Members("") {
		writeNode(&buf, "  ", n)
	}
	for _, c := range d.Subclusters("") {
		writeCluster(&buf, d, c, "  ")
	}

	buf.WriteString("\n")
	for _, e := range d.edges {
		fmt.Fprintf(&buf, "  %s -> %s [%s];\n", quote(e.From), quote(e.To), fmtAttrs(edgeAttrs(e)))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeCluster(buf *bytes.Buffer, d *Diagram, c *Cluster, indent string) {
	depth := d.Depth(c.ID)
	attrs := defaultClusterAttr.Clone()
	attrs["label"] = c.Label
	attrs["bgcolor"] = clusterBackgrounds[(depth-1)%len(clusterBackgrounds)]
	maps.Copy(attrs, c.Attrs)

	fmt.Fprintf(buf, "%ssubgraph %s {\n", indent, quote("cluster_"+c.ID))
	inner := indent + "  "
	writeAttrLines(buf, inner, attrs)
	for _, n := range d.Members(c.ID) {
		writeNode(buf, inner, n)
	}
	for _, sub := range d.Subclusters(c.ID) {
		writeCluster(buf, d, sub, inner)
	}
	fmt.Fprintf(buf, "%s}\n", indent)
}

func writeNode(buf *bytes.Buffer, indent string, n *Node) {
	fmt.Fprintf(buf, "%s%s [%s];\n", indent, quote(n.ID), fmtAttrs(nodeAttrs(n)))
}

func nodeAttrs(n *Node) Attrs {
	attrs := Attrs{"label": n.DisplayLabel()}
	maps.Copy(attrs, kindAttrs[n.Kind])
	maps.Copy(attrs, n.Attrs)
	return attrs
}

func edgeAttrs(e Edge) Attrs {
	attrs := Attrs{}
	if e.Label != "" {
		attrs["label"] = e.Label
	}
	if e.Color != "" {
		attrs["color"] = e.Color
		attrs["fontcolor"] = e.Color
	}
	if e.Style != "" {
		attrs["style"] = e.Style
	}
	maps.Copy(attrs, e.Attrs)
	return attrs
}

func writeAttrLines(buf *bytes.Buffer, indent string, attrs Attrs) {
	for _, k := range attrs.Keys() {
		fmt.Fprintf(buf, "%s%s=%s;\n", indent, k, quote(attrs[k]))
	}
}

func fmtAttrs(attrs Attrs) string {
	parts := make([]string, 0, len(attrs))
	for _, k := range attrs.Keys() {
		parts = append(parts, fmt.Sprintf("%s=%s", k, quote(attrs[k])))
	}
	return strings.Join(parts, ", ")
}

// quote renders s as a DOT double-quoted string. Newlines become the \n
// escape, which Graphviz draws as a centered line break.
func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\r", "", "\n", `\n`)
	return `"` + r.Replace(s) + `"`
}

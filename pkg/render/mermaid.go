package render

import (
	"fmt"
	"strings"

	"github.com/matzehuels/archviz/pkg/diagram"
)

// mermaidShapes maps node kinds to Mermaid node delimiters.
var mermaidShapes = map[diagram.Kind][2]string{
	diagram.KindUsers:      {"([", "])"},
	diagram.KindVault:      {"{{", "}}"},
	diagram.KindPostgreSQL: {"[(", ")]"},
	diagram.KindInternet:   {"((", "))"},
}

// ToMermaid converts a diagram to a Mermaid flowchart. Clusters become
// nested subgraphs, bold edges become thick links (==>) and dashed or
// dotted edges become dotted links (-.->). Edge and cluster colors are
// carried over with linkStyle and style statements.
func ToMermaid(d *diagram.Diagram) string {
	var b strings.Builder
	fmt.Fprintf(&b, "---\ntitle: %s\n---\n", mermaidText(d.Name))
	fmt.Fprintf(&b, "flowchart %s\n", d.Direction)

	for _, n := range d.Members("") {
		writeMermaidNode(&b, "  ", n)
	}
	for _, c := range d.Subclusters("") {
		writeMermaidCluster(&b, d, c, "  ")
	}

	edges := d.Edges()
	for _, e := range edges {
		arrow := "-->"
		switch e.Style {
		case "bold":
			arrow = "==>"
		case "dashed", "dotted":
			arrow = "-.->"
		}
		if e.Label != "" {
			fmt.Fprintf(&b, "  %s %s|\"%s\"| %s\n", e.From, arrow, mermaidText(e.Label), e.To)
		} else {
			fmt.Fprintf(&b, "  %s %s %s\n", e.From, arrow, e.To)
		}
	}
	for i, e := range edges {
		if e.Color != "" {
			fmt.Fprintf(&b, "  linkStyle %d stroke:%s\n", i, e.Color)
		}
	}
	for _, c := range d.Clusters() {
		if bg := c.Attrs["bgcolor"]; bg != "" {
			fmt.Fprintf(&b, "  style %s fill:%s\n", c.ID, bg)
		}
	}
	return b.String()
}

func writeMermaidCluster(b *strings.Builder, d *diagram.Diagram, c *diagram.Cluster, indent string) {
	fmt.Fprintf(b, "%ssubgraph %s[\"%s\"]\n", indent, c.ID, mermaidText(c.Label))
	inner := indent + "  "
	for _, n := range d.Members(c.ID) {
		writeMermaidNode(b, inner, n)
	}
	for _, sub := range d.Subclusters(c.ID) {
		writeMermaidCluster(b, d, sub, inner)
	}
	fmt.Fprintf(b, "%send\n", indent)
}

func writeMermaidNode(b *strings.Builder, indent string, n *diagram.Node) {
	shape, ok := mermaidShapes[n.Kind]
	if !ok {
		shape = [2]string{"[", "]"}
	}
	fmt.Fprintf(b, "%s%s%s\"%s\"%s\n", indent, n.ID, shape[0], mermaidText(n.DisplayLabel()), shape[1])
}

// mermaidText escapes a label for use inside a quoted Mermaid string.
func mermaidText(s string) string {
	r := strings.NewReplacer(`"`, "#quot;", "\r", "", "\n", "<br/>")
	return r.Replace(s)
}

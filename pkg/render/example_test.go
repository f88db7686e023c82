package render_test

import (
	"fmt"

	"github.com/matzehuels/archviz/pkg/diagram"
	"github.com/matzehuels/archviz/pkg/render"
)

func ExampleToMermaid() {
	d := diagram.New("Tiny", diagram.WithDirection(diagram.LeftRight))
	_ = d.AddNode(diagram.Node{ID: "web", Label: "Web"})
	_ = d.AddNode(diagram.Node{ID: "db", Label: "DB", Kind: diagram.KindPostgreSQL})
	_ = d.Connect("web", diagram.EdgeStyle{Label: "SQL", Style: "dashed"}, "db")

	fmt.Print(render.ToMermaid(d))
	// Output:
	// ---
	// title: Tiny
	// ---
	// flowchart LR
	//   web["Web"]
	//   db[("DB")]
	//   web -.->|"SQL"| db
}

func ExampleParseFormats() {
	formats, _ := render.ParseFormats("png,svg,mermaid")
	for _, f := range formats {
		fmt.Println(f, f.Ext())
	}
	// Output:
	// png png
	// svg svg
	// mermaid mmd
}

// Package diagram describes node-and-edge architecture pictures.
//
// A [Diagram] is a flat, declarative description: labeled nodes, nested
// clusters that group them, and labeled directed edges. Nothing is laid out
// here. [ToDOT] turns the description into Graphviz DOT source, which the
// render package hands to a layout engine.
//
// # Building
//
//	d := diagram.New("Shop", diagram.WithFilename("shop"))
//	_ = d.AddCluster(diagram.Cluster{ID: "backend", Label: "Backend"})
//	_ = d.AddNode(diagram.Node{ID: "web", Label: "Web", Kind: diagram.KindUsers})
//	_ = d.AddNode(diagram.Node{ID: "api", Label: "API", Cluster: "backend"})
//	_ = d.AddNode(diagram.Node{ID: "db", Label: "DB", Kind: diagram.KindPostgreSQL, Cluster: "backend"})
//	_ = d.Connect("web", diagram.EdgeStyle{Label: "HTTPS", Color: "blue"}, "api")
//	_ = d.Connect("api", diagram.EdgeStyle{Style: "dashed"}, "db")
//
// Parents must be declared before the clusters and nodes placed in them, and
// edges may only reference declared nodes. [Diagram.Connect] fans a single
// source out to several targets with one shared style.
//
// # Node kinds
//
// A [Kind] selects the shape and fill a node is drawn with (ellipse for
// users, cylinder for databases, and so on).
package diagram

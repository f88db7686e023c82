// Package architecture holds the built-in architecture diagrams.
package architecture

import (
	"github.com/matzehuels/archviz/pkg/diagram"
)

// StockMarketFilename is the base name of the rendered stock-market diagram.
const StockMarketFilename = "architecture"

// Node IDs of the stock-market diagram.
const (
	Clients      = "clients"
	Security     = "security"
	AuthAPI      = "auth_api"
	StockAPI     = "stock_api"
	StockService = "stock_service"
	AuthService  = "auth_service"
	JPARepo      = "jpa_repo"
	JDBCRepo     = "jdbc_repo"
	Database     = "database"
)

// Cluster IDs of the stock-market diagram.
const (
	Microservice  = "microservice"
	RESTAPIs      = "rest_apis"
	BusinessLayer = "business"
	DataAccess    = "data_access"
	DatabaseLayer = "database_layer"
)

func rounded(bg string) diagram.Attrs {
	return diagram.Attrs{"bgcolor": bg, "style": "rounded"}
}

// StockMarket declares the stock-market microservice diagram: API clients
// pass a JWT security gateway into a Spring Boot service made of REST
// controllers, a business layer and a data access layer, which reads and
// writes a PostgreSQL database.
func StockMarket() (*diagram.Diagram, error) {
	d := diagram.New("Stock Market Microservice",
		diagram.WithFilename(StockMarketFilename),
		diagram.WithDirection(diagram.TopBottom),
		diagram.WithGraphAttr(diagram.Attrs{
			"fontsize": "24",
			"bgcolor":  "transparent",
			"pad":      "0.5",
			"ranksep":  "1.2",
			"nodesep":  "0.8",
		}),
	)

	clusters := []diagram.Cluster{
		{ID: Microservice, Label: "Spring Boot Microservice", Attrs: rounded("lightblue")},
		{ID: RESTAPIs, Label: "REST APIs", Parent: Microservice, Attrs: rounded("lightgreen")},
		{ID: BusinessLayer, Label: "Business Layer", Parent: Microservice, Attrs: rounded("lightyellow")},
		{ID: DataAccess, Label: "Data Access Layer", Parent: Microservice, Attrs: rounded("lightcoral")},
		{ID: DatabaseLayer, Label: "Database Layer", Attrs: rounded("lightpink")},
	}
	for _, c := range clusters {
		if err := d.AddCluster(c); err != nil {
			return nil, err
		}
	}

	nodes := []diagram.Node{
		{ID: Clients, Label: "API Clients\n(Mobile, Web, Postman)", Kind: diagram.KindUsers},
		{ID: Security, Label: "JWT Security\n(Authentication & Authorization)", Kind: diagram.KindVault},
		{ID: AuthAPI, Label: "Auth Controller\n• Register\n• Login\n• Validate", Kind: diagram.KindVault, Cluster: RESTAPIs},
		{ID: StockAPI, Label: "Stock Controller\n• CRUD Operations\n• Search & Analytics\n• Batch Processing", Kind: diagram.KindSpring, Cluster: RESTAPIs},
		{ID: StockService, Label: "Stock Service\n(Business Logic)", Kind: diagram.KindJava, Cluster: BusinessLayer},
		{ID: AuthService, Label: "User Service\n(Authentication)", Kind: diagram.KindVault, Cluster: BusinessLayer},
		{ID: JPARepo, Label: "JPA Repositories\n(Write Operations)", Kind: diagram.KindJava, Cluster: DataAccess},
		{ID: JDBCRepo, Label: "JDBC Repositories\n(Read Operations)", Kind: diagram.KindJava, Cluster: DataAccess},
		{ID: Database, Label: "PostgreSQL\n• Production Data\n• Connection Pool", Kind: diagram.KindPostgreSQL, Cluster: DatabaseLayer},
	}
	for _, n := range nodes {
		if err := d.AddNode(n); err != nil {
			return nil, err
		}
	}

	links := []struct {
		from  string
		style diagram.EdgeStyle
		to    []string
	}{
		{Clients, diagram.EdgeStyle{Label: "HTTPS Requests", Color: "blue", Style: "bold"}, []string{Security}},
		{Security, diagram.EdgeStyle{Label: "Authorized", Color: "green", Style: "bold"}, []string{AuthAPI, StockAPI}},
		{AuthAPI, diagram.EdgeStyle{Label: "User Auth", Color: "orange", Style: "dashed"}, []string{AuthService}},
		{StockAPI, diagram.EdgeStyle{Label: "Business Logic", Color: "purple", Style: "dashed"}, []string{StockService}},
		{AuthService, diagram.EdgeStyle{Label: "User Data", Color: "red", Style: "bold"}, []string{JPARepo}},
		{StockService, diagram.EdgeStyle{Label: "Stock Data", Color: "red", Style: "bold"}, []string{JPARepo, JDBCRepo}},
		{JPARepo, diagram.EdgeStyle{Label: "Write SQL", Color: "darkgreen", Style: "bold"}, []string{Database}},
		{JDBCRepo, diagram.EdgeStyle{Label: "Read SQL", Color: "darkgreen", Style: "dashed"}, []string{Database}},
	}
	for _, l := range links {
		if err := d.Connect(l.from, l.style, l.to...); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// Builtin maps the names accepted by --diagram to their constructors.
var Builtin = map[string]func() (*diagram.Diagram, error){
	"stock-market": StockMarket,
}

// DefaultName is the built-in diagram rendered when nothing else is selected.
const DefaultName = "stock-market"

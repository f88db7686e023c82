package diagram

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

var (
	// ErrInvalidID is returned by [Diagram.AddNode] and [Diagram.AddCluster]
	// when the identifier is empty.
	ErrInvalidID = errors.New("identifier must not be empty")

	// ErrDuplicateNode is returned by [Diagram.AddNode] when a node with the
	// same ID already exists.
	ErrDuplicateNode = errors.New("duplicate node ID")

	// ErrDuplicateCluster is returned by [Diagram.AddCluster] when a cluster
	// with the same ID already exists.
	ErrDuplicateCluster = errors.New("duplicate cluster ID")

	// ErrUnknownCluster is returned when a node or cluster names a parent
	// cluster that has not been declared yet.
	ErrUnknownCluster = errors.New("unknown cluster")

	// ErrUnknownSourceNode is returned by [Diagram.AddEdge] when the From node
	// does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Diagram.AddEdge] when the To node
	// does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrNoTargets is returned by [Diagram.Connect] when called without targets.
	ErrNoTargets = errors.New("connect requires at least one target")

	// ErrInvalidDirection is returned by [ParseDirection] and [Diagram.Validate]
	// for an unsupported rank direction.
	ErrInvalidDirection = errors.New("invalid direction")

	// ErrClusterCycle is returned by [Diagram.Validate] when cluster parents
	// form a loop, which is only possible by editing a *Cluster in place.
	ErrClusterCycle = errors.New("cluster nesting contains a cycle")

	// ErrUnknownKind is returned by [ParseKind] for an unrecognized node kind.
	ErrUnknownKind = errors.New("unknown node kind")
)

// Attrs holds raw Graphviz attributes (bgcolor, style, fontsize, ...).
type Attrs map[string]string

// Clone returns a copy of a. A nil receiver yields an empty map.
func (a Attrs) Clone() Attrs {
	out := make(Attrs, len(a))
	maps.Copy(out, a)
	return out
}

// Keys returns the attribute names in sorted order.
func (a Attrs) Keys() []string {
	return slices.Sorted(maps.Keys(a))
}

// Direction is the rank direction of the layout.
type Direction string

const (
	TopBottom Direction = "TB"
	BottomTop Direction = "BT"
	LeftRight Direction = "LR"
	RightLeft Direction = "RL"
)

// ParseDirection validates s as a rank direction. An empty string yields TopBottom.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(s); d {
	case "":
		return TopBottom, nil
	case TopBottom, BottomTop, LeftRight, RightLeft:
		return d, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
	}
}

// Kind is the visual category of a node. It stands in for the provider icon
// a node would carry and selects shape and colors during DOT emission.
type Kind string

const (
	KindGeneric    Kind = "generic"
	KindUsers      Kind = "users"
	KindVault      Kind = "vault"
	KindSpring     Kind = "spring"
	KindJava       Kind = "java"
	KindPostgreSQL Kind = "postgresql"
	KindInternet   Kind = "internet"
)

// Kinds lists every known node kind.
var Kinds = []Kind{KindGeneric, KindUsers, KindVault, KindSpring, KindJava, KindPostgreSQL, KindInternet}

// ParseKind validates s as a node kind. An empty string yields KindGeneric.
func ParseKind(s string) (Kind, error) {
	if s == "" {
		return KindGeneric, nil
	}
	k := Kind(strings.ToLower(s))
	if !slices.Contains(Kinds, k) {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return k, nil
}

// Cluster is a named visual grouping of nodes. Clusters nest via Parent;
// an empty Parent places the cluster at the top level.
type Cluster struct {
	ID     string
	Label  string
	Parent string
	Attrs  Attrs
}

// Node is a labeled box in the diagram. An empty Cluster places the node at
// the top level.
type Node struct {
	ID      string
	Label   string
	Kind    Kind
	Cluster string
	Attrs   Attrs
}

// DisplayLabel returns Label, falling back to the node ID.
func (n Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Edge is a directed connection between two nodes.
type Edge struct {
	From  string
	To    string
	Label string
	Color string
	Style string // solid, dashed, dotted, bold
	Attrs Attrs
}

// EdgeStyle is the shared decoration applied by [Diagram.Connect].
type EdgeStyle struct {
	Label string
	Color string
	Style string
}

// Diagram is a declarative description of a node-and-edge picture.
// Declaration order is preserved so emitted output is deterministic.
//
// The zero value is not usable; create diagrams with [New].
// Diagram is not safe for concurrent mutation.
type Diagram struct {
	Name      string
	Filename  string
	Direction Direction
	GraphAttr Attrs

	nodes        map[string]*Node
	nodeOrder    []string
	clusters     map[string]*Cluster
	clusterOrder []string
	edges        []Edge
}

// Option configures a Diagram created by [New].
type Option func(*Diagram)

// WithFilename sets the output base name (without extension).
func WithFilename(name string) Option {
	return func(d *Diagram) { d.Filename = name }
}

// WithDirection sets the rank direction.
func WithDirection(dir Direction) Option {
	return func(d *Diagram) { d.Direction = dir }
}

// WithGraphAttr merges attrs into the top-level graph attributes.
func WithGraphAttr(attrs Attrs) Option {
	return func(d *Diagram) { maps.Copy(d.GraphAttr, attrs) }
}

// DefaultFilename is used when no filename is configured.
const DefaultFilename = "diagram"

// New creates an empty diagram titled name.
func New(name string, opts ...Option) *Diagram {
	d := &Diagram{
		Name:      name,
		Filename:  DefaultFilename,
		Direction: TopBottom,
		GraphAttr: Attrs{},
		nodes:     make(map[string]*Node),
		clusters:  make(map[string]*Cluster),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// AddCluster declares a cluster. Its parent, if any, must already exist.
func (d *Diagram) AddCluster(c Cluster) error {
	if c.ID == "" {
		return ErrInvalidID
	}
	if _, ok := d.clusters[c.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateCluster, c.ID)
	}
	if c.Parent != "" {
		if _, ok := d.clusters[c.Parent]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownCluster, c.Parent)
		}
	}
	c.Attrs = c.Attrs.Clone()
	d.clusters[c.ID] = &c
	d.clusterOrder = append(d.clusterOrder, c.ID)
	return nil
}

// AddNode declares a node. Its cluster, if any, must already exist.
// An empty Kind becomes KindGeneric.
func (d *Diagram) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidID
	}
	if _, ok := d.nodes[n.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateNode, n.ID)
	}
	if n.Cluster != "" {
		if _, ok := d.clusters[n.Cluster]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownCluster, n.Cluster)
		}
	}
	if n.Kind == "" {
		n.Kind = KindGeneric
	}
	n.Attrs = n.Attrs.Clone()
	d.nodes[n.ID] = &n
	d.nodeOrder = append(d.nodeOrder, n.ID)
	return nil
}

// AddEdge declares a directed edge between two existing nodes.
// Parallel edges are allowed.
func (d *Diagram) AddEdge(e Edge) error {
	if _, ok := d.nodes[e.From]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSourceNode, e.From)
	}
	if _, ok := d.nodes[e.To]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTargetNode, e.To)
	}
	e.Attrs = e.Attrs.Clone()
	d.edges = append(d.edges, e)
	return nil
}

// Connect adds one edge from from to each target, all sharing style.
// Nothing is added if any endpoint is unknown.
func (d *Diagram) Connect(from string, style EdgeStyle, targets ...string) error {
	if len(targets) == 0 {
		return ErrNoTargets
	}
	if _, ok := d.nodes[from]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSourceNode, from)
	}
	for _, to := range targets {
		if _, ok := d.nodes[to]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownTargetNode, to)
		}
	}
	for _, to := range targets {
		d.edges = append(d.edges, Edge{
			From:  from,
			To:    to,
			Label: style.Label,
			Color: style.Color,
			Style: style.Style,
			Attrs: Attrs{},
		})
	}
	return nil
}

// Node returns the node with the given ID.
func (d *Diagram) Node(id string) (*Node, bool) {
	n, ok := d.nodes[id]
	return n, ok
}

// Cluster returns the cluster with the given ID.
func (d *Diagram) Cluster(id string) (*Cluster, bool) {
	c, ok := d.clusters[id]
	return c, ok
}

// Nodes returns all nodes in declaration order.
func (d *Diagram) Nodes() []*Node {
	out := make([]*Node, len(d.nodeOrder))
	for i, id := range d.nodeOrder {
		out[i] = d.nodes[id]
	}
	return out
}

// Clusters returns all clusters in declaration order.
func (d *Diagram) Clusters() []*Cluster {
	out := make([]*Cluster, len(d.clusterOrder))
	for i, id := range d.clusterOrder {
		out[i] = d.clusters[id]
	}
	return out
}

// Edges returns a copy of all edges in declaration order.
func (d *Diagram) Edges() []Edge {
	return slices.Clone(d.edges)
}

func (d *Diagram) NodeCount() int    { return len(d.nodes) }
func (d *Diagram) EdgeCount() int    { return len(d.edges) }
func (d *Diagram) ClusterCount() int { return len(d.clusters) }

// Members returns the nodes placed directly in cluster id, in declaration
// order. An empty id returns the top-level nodes.
func (d *Diagram) Members(id string) []*Node {
	var out []*Node
	for _, nid := range d.nodeOrder {
		if n := d.nodes[nid]; n.Cluster == id {
			out = append(out, n)
		}
	}
	return out
}

// Subclusters returns the clusters whose parent is id, in declaration order.
// An empty id returns the top-level clusters.
func (d *Diagram) Subclusters(id string) []*Cluster {
	var out []*Cluster
	for _, cid := range d.clusterOrder {
		if c := d.clusters[cid]; c.Parent == id {
			out = append(out, c)
		}
	}
	return out
}

// Depth returns the nesting depth of cluster id: 1 for a top-level cluster.
// Unknown clusters have depth 0.
func (d *Diagram) Depth(id string) int {
	depth := 0
	seen := make(map[string]bool)
	for id != "" && !seen[id] {
		c, ok := d.clusters[id]
		if !ok {
			break
		}
		seen[id] = true
		depth++
		id = c.Parent
	}
	return depth
}

// Validate checks the diagram for structural errors. Diagrams built only
// through the Add methods are always valid unless Direction was set to an
// unsupported value.
func (d *Diagram) Validate() error {
	if _, err := ParseDirection(string(d.Direction)); err != nil {
		return err
	}
	for _, c := range d.Clusters() {
		seen := map[string]bool{c.ID: true}
		for p := c.Parent; p != ""; {
			parent, ok := d.clusters[p]
			if !ok {
				return fmt.Errorf("%w: %s", ErrUnknownCluster, p)
			}
			if seen[p] {
				return fmt.Errorf("%w: %s", ErrClusterCycle, c.ID)
			}
			seen[p] = true
			p = parent.Parent
		}
	}
	for _, n := range d.Nodes() {
		if n.Cluster == "" {
			continue
		}
		if _, ok := d.clusters[n.Cluster]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownCluster, n.Cluster)
		}
	}
	for _, e := range d.edges {
		if _, ok := d.nodes[e.From]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownSourceNode, e.From)
		}
		if _, ok := d.nodes[e.To]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownTargetNode, e.To)
		}
	}
	return nil
}
